package usecase

import (
	"context"

	"github.com/hitoshi/bucket/internal/model"
)

// CurrentUserProvider は閲覧ユーザーIDを提供する。未認証の場合は空文字を返す。
type CurrentUserProvider interface {
	GetCurrentUserID(ctx context.Context) (string, error)
}

// AuthenticationRepository は認証操作のリポジトリ。
type AuthenticationRepository interface {
	CurrentUserProvider
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignUp(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	DeleteCredential(ctx context.Context, userID string) error
}

// UserProfileRepository はユーザープロフィールのリポジトリ。
type UserProfileRepository interface {
	UpdateUser(ctx context.Context, data model.UpdateUserBO) (*model.UserBO, error)
	CreateUser(ctx context.Context, data model.CreateUserBO) (*model.UserBO, error)
	GetUser(ctx context.Context, userID string) (*model.UserBO, error)
	GetSuggestions(ctx context.Context) ([]model.UserBO, error)
	CheckUsernameAvailability(ctx context.Context, username string) (bool, error)
	FollowUser(ctx context.Context, targetUserID string) (bool, error)
	SearchUsers(ctx context.Context, term string) ([]model.UserBO, error)
	GetFollowing(ctx context.Context, userID string) ([]model.UserBO, error)
	GetFollowers(ctx context.Context, userID string) ([]model.UserBO, error)
}

// GoalRepository は目標のリポジトリ。
type GoalRepository interface {
	UploadGoal(ctx context.Context, data model.CreateGoalBO) (*model.GoalBO, error)
	GetGoal(ctx context.Context, goalID string) (*model.GoalBO, error)
	FetchUserGoals(ctx context.Context, userID string) ([]model.GoalBO, error)
	FetchOwnGoals(ctx context.Context) ([]model.GoalBO, error)
	DeleteGoal(ctx context.Context, goalID string) error
}

// ProgressUpdateRepository は進捗投稿のリポジトリ。
type ProgressUpdateRepository interface {
	UploadUpdate(ctx context.Context, data model.CreateProgressUpdateBO) (*model.ProgressUpdateBO, error)
	FetchFeedUpdates(ctx context.Context) ([]model.ProgressUpdateBO, error)
	FetchUpdatesByGoal(ctx context.Context, goalID string) ([]model.ProgressUpdateBO, error)
	LikeUpdate(ctx context.Context, updateID string) (*model.ProgressUpdateBO, bool, error)
}

// NotificationRepository は通知のリポジトリ。
type NotificationRepository interface {
	FetchUserNotifications(ctx context.Context, userID string) ([]model.NotificationBO, error)
	MarkNotificationAsRead(ctx context.Context, notificationID string) error
	DeleteNotification(ctx context.Context, notificationID string) error
	CreateNotification(ctx context.Context, ownerUserID string, notificationType model.NotificationType, title, message string) error
}

// NotificationRecorder は通知の発行を記録する。
type NotificationRecorder interface {
	RecordNotificationEmitted(notificationType string)
}

type noopNotificationRecorder struct{}

func (noopNotificationRecorder) RecordNotificationEmitted(string) {}
