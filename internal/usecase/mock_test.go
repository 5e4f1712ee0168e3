package usecase

import (
	"context"
	"sync"

	"github.com/hitoshi/bucket/internal/model"
)

// --- モック ---

type mockAuthRepo struct {
	currentUserID    string
	signInFn         func(ctx context.Context, email, password string) (*model.Session, error)
	signUpFn         func(ctx context.Context, email, password string) (string, error)
	signOutFn        func(ctx context.Context) error
	forgotPasswordFn func(ctx context.Context, email string) error
	resetPasswordFn  func(ctx context.Context, token, newPassword string) error
	deleteFn         func(ctx context.Context, userID string) error

	deleted []string
}

func (m *mockAuthRepo) GetCurrentUserID(ctx context.Context) (string, error) {
	return m.currentUserID, nil
}
func (m *mockAuthRepo) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	return m.signInFn(ctx, email, password)
}
func (m *mockAuthRepo) SignUp(ctx context.Context, email, password string) (string, error) {
	return m.signUpFn(ctx, email, password)
}
func (m *mockAuthRepo) SignOut(ctx context.Context) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx)
	}
	return nil
}
func (m *mockAuthRepo) ForgotPassword(ctx context.Context, email string) error {
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(ctx, email)
	}
	return nil
}
func (m *mockAuthRepo) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, token, newPassword)
	}
	return nil
}

func (m *mockAuthRepo) DeleteCredential(ctx context.Context, userID string) error {
	m.deleted = append(m.deleted, userID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

type mockUserRepo struct {
	updateUserFn    func(ctx context.Context, data model.UpdateUserBO) (*model.UserBO, error)
	createUserFn    func(ctx context.Context, data model.CreateUserBO) (*model.UserBO, error)
	getUserFn       func(ctx context.Context, userID string) (*model.UserBO, error)
	suggestionsFn   func(ctx context.Context) ([]model.UserBO, error)
	checkUsernameFn func(ctx context.Context, username string) (bool, error)
	followUserFn    func(ctx context.Context, targetUserID string) (bool, error)
	searchUsersFn   func(ctx context.Context, term string) ([]model.UserBO, error)
	followingFn     func(ctx context.Context, userID string) ([]model.UserBO, error)
	followersFn     func(ctx context.Context, userID string) ([]model.UserBO, error)
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, data model.UpdateUserBO) (*model.UserBO, error) {
	return m.updateUserFn(ctx, data)
}
func (m *mockUserRepo) CreateUser(ctx context.Context, data model.CreateUserBO) (*model.UserBO, error) {
	return m.createUserFn(ctx, data)
}
func (m *mockUserRepo) GetUser(ctx context.Context, userID string) (*model.UserBO, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, userID)
	}
	return &model.UserBO{UserID: userID, Username: userID}, nil
}
func (m *mockUserRepo) GetSuggestions(ctx context.Context) ([]model.UserBO, error) {
	return m.suggestionsFn(ctx)
}
func (m *mockUserRepo) CheckUsernameAvailability(ctx context.Context, username string) (bool, error) {
	if m.checkUsernameFn != nil {
		return m.checkUsernameFn(ctx, username)
	}
	return true, nil
}
func (m *mockUserRepo) FollowUser(ctx context.Context, targetUserID string) (bool, error) {
	return m.followUserFn(ctx, targetUserID)
}
func (m *mockUserRepo) SearchUsers(ctx context.Context, term string) ([]model.UserBO, error) {
	return m.searchUsersFn(ctx, term)
}
func (m *mockUserRepo) GetFollowing(ctx context.Context, userID string) ([]model.UserBO, error) {
	return m.followingFn(ctx, userID)
}
func (m *mockUserRepo) GetFollowers(ctx context.Context, userID string) ([]model.UserBO, error) {
	return m.followersFn(ctx, userID)
}

type mockGoalRepo struct {
	uploadGoalFn     func(ctx context.Context, data model.CreateGoalBO) (*model.GoalBO, error)
	getGoalFn        func(ctx context.Context, goalID string) (*model.GoalBO, error)
	fetchUserGoalsFn func(ctx context.Context, userID string) ([]model.GoalBO, error)
	fetchOwnGoalsFn  func(ctx context.Context) ([]model.GoalBO, error)
	deleteGoalFn     func(ctx context.Context, goalID string) error
}

func (m *mockGoalRepo) UploadGoal(ctx context.Context, data model.CreateGoalBO) (*model.GoalBO, error) {
	return m.uploadGoalFn(ctx, data)
}
func (m *mockGoalRepo) GetGoal(ctx context.Context, goalID string) (*model.GoalBO, error) {
	return m.getGoalFn(ctx, goalID)
}
func (m *mockGoalRepo) FetchUserGoals(ctx context.Context, userID string) ([]model.GoalBO, error) {
	return m.fetchUserGoalsFn(ctx, userID)
}
func (m *mockGoalRepo) FetchOwnGoals(ctx context.Context) ([]model.GoalBO, error) {
	return m.fetchOwnGoalsFn(ctx)
}
func (m *mockGoalRepo) DeleteGoal(ctx context.Context, goalID string) error {
	return m.deleteGoalFn(ctx, goalID)
}

type mockUpdateRepo struct {
	uploadUpdateFn  func(ctx context.Context, data model.CreateProgressUpdateBO) (*model.ProgressUpdateBO, error)
	feedFn          func(ctx context.Context) ([]model.ProgressUpdateBO, error)
	byGoalFn        func(ctx context.Context, goalID string) ([]model.ProgressUpdateBO, error)
	likeUpdateFn    func(ctx context.Context, updateID string) (*model.ProgressUpdateBO, bool, error)
	uploadUpdateCnt int
}

func (m *mockUpdateRepo) UploadUpdate(ctx context.Context, data model.CreateProgressUpdateBO) (*model.ProgressUpdateBO, error) {
	m.uploadUpdateCnt++
	return m.uploadUpdateFn(ctx, data)
}
func (m *mockUpdateRepo) FetchFeedUpdates(ctx context.Context) ([]model.ProgressUpdateBO, error) {
	return m.feedFn(ctx)
}
func (m *mockUpdateRepo) FetchUpdatesByGoal(ctx context.Context, goalID string) ([]model.ProgressUpdateBO, error) {
	return m.byGoalFn(ctx, goalID)
}
func (m *mockUpdateRepo) LikeUpdate(ctx context.Context, updateID string) (*model.ProgressUpdateBO, bool, error) {
	return m.likeUpdateFn(ctx, updateID)
}

type createdNotification struct {
	owner   string
	typ     model.NotificationType
	title   string
	message string
}

type mockNotificationRepo struct {
	mu       sync.Mutex
	fetchFn  func(ctx context.Context, userID string) ([]model.NotificationBO, error)
	markFn   func(ctx context.Context, notificationID string) error
	deleteFn func(ctx context.Context, notificationID string) error
	createFn func(ctx context.Context, owner string, t model.NotificationType, title, message string) error

	marked  []string
	created []createdNotification
}

func (m *mockNotificationRepo) FetchUserNotifications(ctx context.Context, userID string) ([]model.NotificationBO, error) {
	return m.fetchFn(ctx, userID)
}
func (m *mockNotificationRepo) MarkNotificationAsRead(ctx context.Context, notificationID string) error {
	m.mu.Lock()
	m.marked = append(m.marked, notificationID)
	m.mu.Unlock()
	if m.markFn != nil {
		return m.markFn(ctx, notificationID)
	}
	return nil
}
func (m *mockNotificationRepo) DeleteNotification(ctx context.Context, notificationID string) error {
	return m.deleteFn(ctx, notificationID)
}
func (m *mockNotificationRepo) CreateNotification(ctx context.Context, owner string, t model.NotificationType, title, message string) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, owner, t, title, message); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, createdNotification{owner: owner, typ: t, title: title, message: message})
	return nil
}

type countingRecorder struct {
	emitted map[string]int
}

func (r *countingRecorder) RecordNotificationEmitted(notificationType string) {
	if r.emitted == nil {
		r.emitted = map[string]int{}
	}
	r.emitted[notificationType]++
}

func strPtr(s string) *string { return &s }
