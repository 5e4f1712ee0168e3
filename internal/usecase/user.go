package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/security"
)

// UpdateUserParams はプロフィール更新の入力。
type UpdateUserParams struct {
	Fullname         string  `validate:"required,max=100"`
	Bio              *string `validate:"omitempty,max=500"`
	Link             *string `validate:"omitempty,max=2048"`
	ProfileImageURL  *string `validate:"omitempty,max=2048"`
	IsPrivateProfile bool
}

// UpdateUserUseCase は閲覧ユーザー自身のプロフィールを更新する。
type UpdateUserUseCase struct {
	auth      CurrentUserProvider
	users     UserProfileRepository
	sanitizer security.TextSanitizer
}

// NewUpdateUserUseCase はUpdateUserUseCaseを生成する。
func NewUpdateUserUseCase(auth CurrentUserProvider, users UserProfileRepository, sanitizer security.TextSanitizer) *UpdateUserUseCase {
	return &UpdateUserUseCase{auth: auth, users: users, sanitizer: sanitizer}
}

// Execute はプロフィールを更新する。
// リンクと画像URLはhttp(s)の絶対URLのみ受け付け、空文字は未設定として扱う。
func (uc *UpdateUserUseCase) Execute(ctx context.Context, params UpdateUserParams) (*model.UserBO, error) {
	userID, err := currentUserID(ctx, uc.auth)
	if err != nil {
		return nil, err
	}

	params.Fullname = uc.sanitizer.Sanitize(params.Fullname)
	params.Bio = uc.sanitizer.SanitizeOptional(params.Bio)
	if err := validateParams(params); err != nil {
		return nil, err
	}

	link, err := optionalURL("link", params.Link, uc.sanitizer)
	if err != nil {
		return nil, err
	}
	image, err := optionalURL("profile_image_url", params.ProfileImageURL, uc.sanitizer)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.UpdateUser(ctx, model.UpdateUserBO{
		UserID:           userID,
		Fullname:         params.Fullname,
		Bio:              params.Bio,
		Link:             link,
		ProfileImageURL:  image,
		IsPrivateProfile: params.IsPrivateProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}
	return user, nil
}

func optionalURL(field string, raw *string, sanitizer security.TextSanitizer) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	clean, ok := sanitizer.SanitizeURL(*raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an absolute http(s) URL", ErrInvalidInput, field)
	}
	return &clean, nil
}

// GetUserParams はユーザー取得の入力。UserIDが空の場合は閲覧ユーザー自身を返す。
type GetUserParams struct {
	UserID string
}

// GetUserUseCase はユーザーを閲覧ユーザー基準で取得する。
type GetUserUseCase struct {
	auth  CurrentUserProvider
	users UserProfileRepository
}

// NewGetUserUseCase はGetUserUseCaseを生成する。
func NewGetUserUseCase(auth CurrentUserProvider, users UserProfileRepository) *GetUserUseCase {
	return &GetUserUseCase{auth: auth, users: users}
}

// Execute はユーザーを取得する。
func (uc *GetUserUseCase) Execute(ctx context.Context, params GetUserParams) (*model.UserBO, error) {
	viewer, err := currentUserID(ctx, uc.auth)
	if err != nil {
		return nil, err
	}
	userID := params.UserID
	if userID == "" {
		userID = viewer
	}
	user, err := uc.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	return user, nil
}

// GetSuggestionsUseCase はおすすめユーザーを返す。
type GetSuggestionsUseCase struct {
	auth  CurrentUserProvider
	users UserProfileRepository
}

// NewGetSuggestionsUseCase はGetSuggestionsUseCaseを生成する。
func NewGetSuggestionsUseCase(auth CurrentUserProvider, users UserProfileRepository) *GetSuggestionsUseCase {
	return &GetSuggestionsUseCase{auth: auth, users: users}
}

// Execute はおすすめユーザーを取得する。
func (uc *GetSuggestionsUseCase) Execute(ctx context.Context) ([]model.UserBO, error) {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return nil, err
	}
	users, err := uc.users.GetSuggestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("おすすめユーザーの取得に失敗しました: %w", err)
	}
	return users, nil
}

// SearchUsersParams はユーザー検索の入力。
type SearchUsersParams struct {
	Term string `validate:"max=100"`
}

// SearchUsersUseCase はユーザー名または氏名でユーザーを検索する。
type SearchUsersUseCase struct {
	auth  CurrentUserProvider
	users UserProfileRepository
}

// NewSearchUsersUseCase はSearchUsersUseCaseを生成する。
func NewSearchUsersUseCase(auth CurrentUserProvider, users UserProfileRepository) *SearchUsersUseCase {
	return &SearchUsersUseCase{auth: auth, users: users}
}

// Execute は検索する。空の検索語は空の結果を返す。
func (uc *SearchUsersUseCase) Execute(ctx context.Context, params SearchUsersParams) ([]model.UserBO, error) {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return nil, err
	}
	params.Term = strings.TrimSpace(params.Term)
	if err := validateParams(params); err != nil {
		return nil, err
	}
	users, err := uc.users.SearchUsers(ctx, params.Term)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	return users, nil
}

// FollowUserParams はフォロー切り替えの入力。
type FollowUserParams struct {
	TargetUserID string `validate:"required"`
}

// FollowResult はフォロー切り替え後の状態。
type FollowResult struct {
	Following bool
}

// FollowUserUseCase はフォロー状態を切り替え、フォローした場合は相手に通知する。
type FollowUserUseCase struct {
	auth    CurrentUserProvider
	users   UserProfileRepository
	emitter *notificationEmitter
}

// NewFollowUserUseCase はFollowUserUseCaseを生成する。
func NewFollowUserUseCase(
	auth CurrentUserProvider,
	users UserProfileRepository,
	notifications NotificationRepository,
	recorder NotificationRecorder,
) *FollowUserUseCase {
	return &FollowUserUseCase{
		auth:    auth,
		users:   users,
		emitter: newNotificationEmitter(notifications, users, recorder),
	}
}

// Execute はフォロー状態を切り替える。自分自身はフォローできない。
func (uc *FollowUserUseCase) Execute(ctx context.Context, params FollowUserParams) (*FollowResult, error) {
	viewer, err := currentUserID(ctx, uc.auth)
	if err != nil {
		return nil, err
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if params.TargetUserID == viewer {
		return nil, fmt.Errorf("%w: cannot follow yourself", ErrInvalidInput)
	}

	following, err := uc.users.FollowUser(ctx, params.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("フォローの切り替えに失敗しました: %w", err)
	}
	if following {
		uc.emitter.emit(ctx, viewer, params.TargetUserID, model.NotificationTypeFollow)
	}
	return &FollowResult{Following: following}, nil
}

// ConnectionType はフォロー関係の向き。
type ConnectionType string

const (
	ConnectionFollowers ConnectionType = "followers"
	ConnectionFollowing ConnectionType = "following"
)

// FetchUserConnectionsParams はフォロー関係一覧の入力。
type FetchUserConnectionsParams struct {
	UserID string         `validate:"required"`
	Type   ConnectionType `validate:"required,oneof=followers following"`
}

// FetchUserConnectionsUseCase は指定ユーザーのフォロワーまたはフォロー中のユーザーを返す。
type FetchUserConnectionsUseCase struct {
	auth  CurrentUserProvider
	users UserProfileRepository
}

// NewFetchUserConnectionsUseCase はFetchUserConnectionsUseCaseを生成する。
func NewFetchUserConnectionsUseCase(auth CurrentUserProvider, users UserProfileRepository) *FetchUserConnectionsUseCase {
	return &FetchUserConnectionsUseCase{auth: auth, users: users}
}

// Execute はフォロー関係の一覧を取得する。
func (uc *FetchUserConnectionsUseCase) Execute(ctx context.Context, params FetchUserConnectionsParams) ([]model.UserBO, error) {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return nil, err
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}

	var (
		users []model.UserBO
		err   error
	)
	switch params.Type {
	case ConnectionFollowers:
		users, err = uc.users.GetFollowers(ctx, params.UserID)
	default:
		users, err = uc.users.GetFollowing(ctx, params.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("%sの取得に失敗しました: %w", params.Type, err)
	}
	return users, nil
}

// CheckUsernameAvailabilityParams はユーザー名確認の入力。
type CheckUsernameAvailabilityParams struct {
	Username string `validate:"required,min=3,max=30,username"`
}

// CheckUsernameAvailabilityUseCase はユーザー名が使用可能かを返す。
// サインアップ前に呼ばれるため認証は不要。
type CheckUsernameAvailabilityUseCase struct {
	users UserProfileRepository
}

// NewCheckUsernameAvailabilityUseCase はCheckUsernameAvailabilityUseCaseを生成する。
func NewCheckUsernameAvailabilityUseCase(users UserProfileRepository) *CheckUsernameAvailabilityUseCase {
	return &CheckUsernameAvailabilityUseCase{users: users}
}

// Execute はユーザー名の空きを確認する。
func (uc *CheckUsernameAvailabilityUseCase) Execute(ctx context.Context, params CheckUsernameAvailabilityParams) (bool, error) {
	params.Username = strings.TrimSpace(params.Username)
	if err := validateParams(params); err != nil {
		return false, err
	}
	available, err := uc.users.CheckUsernameAvailability(ctx, params.Username)
	if err != nil {
		return false, fmt.Errorf("ユーザー名の確認に失敗しました: %w", err)
	}
	return available, nil
}
