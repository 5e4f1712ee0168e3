package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/security"
)

func TestUpdateUserUseCase(t *testing.T) {
	var got model.UpdateUserBO
	users := &mockUserRepo{
		updateUserFn: func(ctx context.Context, data model.UpdateUserBO) (*model.UserBO, error) {
			got = data
			return &model.UserBO{UserID: data.UserID, Fullname: data.Fullname}, nil
		},
	}
	uc := NewUpdateUserUseCase(&mockAuthRepo{currentUserID: "u1"}, users, security.NewTextSanitizer())

	_, err := uc.Execute(context.Background(), UpdateUserParams{
		Fullname:         "Alice <i>A.</i>",
		Bio:              strPtr("<script>x()</script>"),
		Link:             strPtr(" https://example.com/alice "),
		ProfileImageURL:  strPtr(""),
		IsPrivateProfile: true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got.UserID != "u1" || got.Fullname != "Alice A." || !got.IsPrivateProfile {
		t.Errorf("update = %+v", got)
	}
	if got.Bio != nil {
		t.Errorf("bio = %q, want nil", *got.Bio)
	}
	if got.Link == nil || *got.Link != "https://example.com/alice" {
		t.Errorf("link = %v", got.Link)
	}
	if got.ProfileImageURL != nil {
		t.Errorf("profile image = %q, want nil", *got.ProfileImageURL)
	}
}

func TestUpdateUserUseCase_RejectsUnsafeLink(t *testing.T) {
	uc := NewUpdateUserUseCase(&mockAuthRepo{currentUserID: "u1"}, &mockUserRepo{}, security.NewTextSanitizer())
	_, err := uc.Execute(context.Background(), UpdateUserParams{Fullname: "Alice", Link: strPtr("javascript:alert(1)")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
	if !strings.Contains(InvalidInputReason(err), "link") {
		t.Errorf("reason = %q", InvalidInputReason(err))
	}
}

func TestGetUserUseCase_DefaultsToViewer(t *testing.T) {
	var requested []string
	users := &mockUserRepo{
		getUserFn: func(ctx context.Context, userID string) (*model.UserBO, error) {
			requested = append(requested, userID)
			return &model.UserBO{UserID: userID}, nil
		},
	}
	uc := NewGetUserUseCase(&mockAuthRepo{currentUserID: "me"}, users)

	if _, err := uc.Execute(context.Background(), GetUserParams{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, err := uc.Execute(context.Background(), GetUserParams{UserID: "other"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(requested) != 2 || requested[0] != "me" || requested[1] != "other" {
		t.Errorf("requested = %v", requested)
	}
}

// TestUseCases_RequireViewer は閲覧ユーザーがいない場合にリポジトリを呼ばずに失敗することを検証する。
func TestUseCases_RequireViewer(t *testing.T) {
	ctx := context.Background()
	anon := &mockAuthRepo{}
	users := &mockUserRepo{}
	goals := &mockGoalRepo{}
	updates := &mockUpdateRepo{}
	notifications := &mockNotificationRepo{}
	sanitizer := security.NewTextSanitizer()

	calls := map[string]func() error{
		"GetUser": func() error {
			_, err := NewGetUserUseCase(anon, users).Execute(ctx, GetUserParams{UserID: "x"})
			return err
		},
		"GetSuggestions": func() error {
			_, err := NewGetSuggestionsUseCase(anon, users).Execute(ctx)
			return err
		},
		"SearchUsers": func() error {
			_, err := NewSearchUsersUseCase(anon, users).Execute(ctx, SearchUsersParams{Term: "a"})
			return err
		},
		"FollowUser": func() error {
			_, err := NewFollowUserUseCase(anon, users, notifications, nil).Execute(ctx, FollowUserParams{TargetUserID: "x"})
			return err
		},
		"UpdateUser": func() error {
			_, err := NewUpdateUserUseCase(anon, users, sanitizer).Execute(ctx, UpdateUserParams{Fullname: "x"})
			return err
		},
		"CreateGoal": func() error {
			_, err := NewCreateGoalUseCase(anon, goals, sanitizer).Execute(ctx, CreateGoalParams{Title: "x"})
			return err
		},
		"FetchOwnGoals": func() error {
			_, err := NewFetchOwnGoalsUseCase(anon, goals).Execute(ctx)
			return err
		},
		"DeleteGoal": func() error {
			return NewDeleteGoalUseCase(anon, goals).Execute(ctx, DeleteGoalParams{GoalID: "g"})
		},
		"FetchFeed": func() error {
			_, err := NewFetchFeedUpdatesUseCase(anon, updates).Execute(ctx)
			return err
		},
		"LikeUpdate": func() error {
			_, err := NewLikeProgressUpdateUseCase(anon, updates, users, notifications, nil).Execute(ctx, LikeProgressUpdateParams{UpdateID: "p"})
			return err
		},
		"FetchNotifications": func() error {
			_, err := NewFetchNotificationsUseCase(anon, notifications).Execute(ctx)
			return err
		},
		"DeleteNotification": func() error {
			return NewDeleteNotificationUseCase(anon, notifications).Execute(ctx, NotificationParams{NotificationID: "n"})
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, ErrUserNotAuthenticated) {
				t.Errorf("error = %v, want ErrUserNotAuthenticated", err)
			}
		})
	}
}

func TestFollowUserUseCase_EmitsNotificationOnFollow(t *testing.T) {
	following := true
	users := &mockUserRepo{
		followUserFn: func(ctx context.Context, targetUserID string) (bool, error) {
			return following, nil
		},
		getUserFn: func(ctx context.Context, userID string) (*model.UserBO, error) {
			return &model.UserBO{UserID: userID, Username: "alice"}, nil
		},
	}
	notifications := &mockNotificationRepo{}
	recorder := &countingRecorder{}
	uc := NewFollowUserUseCase(&mockAuthRepo{currentUserID: "u1"}, users, notifications, recorder)

	got, err := uc.Execute(context.Background(), FollowUserParams{TargetUserID: "u2"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !got.Following {
		t.Error("Following = false, want true")
	}
	if len(notifications.created) != 1 {
		t.Fatalf("created = %d notifications, want 1", len(notifications.created))
	}
	n := notifications.created[0]
	if n.owner != "u2" || n.typ != model.NotificationTypeFollow || !strings.Contains(n.message, "@alice") {
		t.Errorf("notification = %+v", n)
	}
	if recorder.emitted["follow"] != 1 {
		t.Errorf("emitted = %v", recorder.emitted)
	}

	// フォロー解除では通知しない
	following = false
	if _, err := uc.Execute(context.Background(), FollowUserParams{TargetUserID: "u2"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(notifications.created) != 1 {
		t.Errorf("unfollow created a notification")
	}
}

func TestFollowUserUseCase_NotificationFailureIsSwallowed(t *testing.T) {
	users := &mockUserRepo{
		followUserFn: func(ctx context.Context, targetUserID string) (bool, error) { return true, nil },
	}
	notifications := &mockNotificationRepo{
		createFn: func(ctx context.Context, owner string, typ model.NotificationType, title, message string) error {
			return errors.New("store down")
		},
	}
	recorder := &countingRecorder{}
	uc := NewFollowUserUseCase(&mockAuthRepo{currentUserID: "u1"}, users, notifications, recorder)

	if _, err := uc.Execute(context.Background(), FollowUserParams{TargetUserID: "u2"}); err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if recorder.emitted["follow"] != 0 {
		t.Errorf("emitted = %v, want none", recorder.emitted)
	}
}

func TestFollowUserUseCase_RejectsSelf(t *testing.T) {
	users := &mockUserRepo{
		followUserFn: func(ctx context.Context, targetUserID string) (bool, error) {
			t.Fatal("FollowUser should not be called")
			return false, nil
		},
	}
	uc := NewFollowUserUseCase(&mockAuthRepo{currentUserID: "u1"}, users, &mockNotificationRepo{}, nil)
	if _, err := uc.Execute(context.Background(), FollowUserParams{TargetUserID: "u1"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestFetchUserConnectionsUseCase(t *testing.T) {
	users := &mockUserRepo{
		followersFn: func(ctx context.Context, userID string) ([]model.UserBO, error) {
			return []model.UserBO{{UserID: "follower"}}, nil
		},
		followingFn: func(ctx context.Context, userID string) ([]model.UserBO, error) {
			return nil, model.NewDomainError(model.DomainUserProfile, model.KindFollowingFailed, "boom")
		},
	}
	uc := NewFetchUserConnectionsUseCase(&mockAuthRepo{currentUserID: "u1"}, users)

	got, err := uc.Execute(context.Background(), FetchUserConnectionsParams{UserID: "u2", Type: ConnectionFollowers})
	if err != nil {
		t.Fatalf("Execute(followers) error = %v", err)
	}
	if len(got) != 1 || got[0].UserID != "follower" {
		t.Errorf("followers = %+v", got)
	}

	if _, err := uc.Execute(context.Background(), FetchUserConnectionsParams{UserID: "u2", Type: ConnectionFollowing}); !errors.Is(err, model.ErrUserFollowingFailed) {
		t.Errorf("following error = %v, want ErrUserFollowingFailed", err)
	}
	if _, err := uc.Execute(context.Background(), FetchUserConnectionsParams{UserID: "u2", Type: "friends"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown type error = %v, want ErrInvalidInput", err)
	}
}

func TestCheckUsernameAvailabilityUseCase(t *testing.T) {
	users := &mockUserRepo{
		checkUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return username != "taken", nil
		},
	}
	uc := NewCheckUsernameAvailabilityUseCase(users)

	tests := []struct {
		username string
		want     bool
		wantErr  error
	}{
		{"free_name", true, nil},
		{"taken", false, nil},
		{"ab", false, ErrInvalidInput},
		{"has space", false, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			got, err := uc.Execute(context.Background(), CheckUsernameAvailabilityParams{Username: tt.username})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("available = %v, want %v", got, tt.want)
			}
		})
	}
}
