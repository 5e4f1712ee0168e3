package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/security"
)

// CreateProgressUpdateParams は進捗投稿の入力。
type CreateProgressUpdateParams struct {
	GoalID   string  `validate:"required"`
	Content  string  `validate:"required,max=5000"`
	ImageURL *string `validate:"omitempty,max=2048"`
}

// CreateProgressUpdateUseCase は自分の目標に進捗を投稿する。
type CreateProgressUpdateUseCase struct {
	auth      CurrentUserProvider
	goals     GoalRepository
	updates   ProgressUpdateRepository
	sanitizer security.TextSanitizer
	newID     func() string
}

// NewCreateProgressUpdateUseCase はCreateProgressUpdateUseCaseを生成する。
func NewCreateProgressUpdateUseCase(
	auth CurrentUserProvider,
	goals GoalRepository,
	updates ProgressUpdateRepository,
	sanitizer security.TextSanitizer,
) *CreateProgressUpdateUseCase {
	return &CreateProgressUpdateUseCase{
		auth:      auth,
		goals:     goals,
		updates:   updates,
		sanitizer: sanitizer,
		newID:     uuid.NewString,
	}
}

// Execute は進捗を投稿する。他人の目標への投稿はFORBIDDENとなる。
func (uc *CreateProgressUpdateUseCase) Execute(ctx context.Context, params CreateProgressUpdateParams) (*model.ProgressUpdateBO, error) {
	userID, err := currentUserID(ctx, uc.auth)
	if err != nil {
		return nil, err
	}

	params.Content = uc.sanitizer.Sanitize(params.Content)
	if err := validateParams(params); err != nil {
		return nil, err
	}
	image, err := optionalURL("image_url", params.ImageURL, uc.sanitizer)
	if err != nil {
		return nil, err
	}

	goal, err := uc.goals.GetGoal(ctx, params.GoalID)
	if err != nil {
		return nil, fmt.Errorf("目標の取得に失敗しました: %w", err)
	}
	if goal.User.UserID != userID {
		return nil, model.NewDomainError(model.DomainGoal, model.KindForbidden, "goal %s is not owned by the current user", params.GoalID)
	}

	update, err := uc.updates.UploadUpdate(ctx, model.CreateProgressUpdateBO{
		UpdateID: uc.newID(),
		GoalID:   params.GoalID,
		UserID:   userID,
		Content:  params.Content,
		ImageURL: image,
	})
	if err != nil {
		return nil, fmt.Errorf("進捗の投稿に失敗しました: %w", err)
	}
	return update, nil
}

// FetchFeedUpdatesUseCase は閲覧ユーザーのフィードを返す。
type FetchFeedUpdatesUseCase struct {
	auth    CurrentUserProvider
	updates ProgressUpdateRepository
}

// NewFetchFeedUpdatesUseCase はFetchFeedUpdatesUseCaseを生成する。
func NewFetchFeedUpdatesUseCase(auth CurrentUserProvider, updates ProgressUpdateRepository) *FetchFeedUpdatesUseCase {
	return &FetchFeedUpdatesUseCase{auth: auth, updates: updates}
}

// Execute はフィードを取得する。
func (uc *FetchFeedUpdatesUseCase) Execute(ctx context.Context) ([]model.ProgressUpdateBO, error) {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return nil, err
	}
	updates, err := uc.updates.FetchFeedUpdates(ctx)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}
	return updates, nil
}

// FetchProgressUpdatesByGoalParams は目標別投稿一覧の入力。
type FetchProgressUpdatesByGoalParams struct {
	GoalID string `validate:"required"`
}

// FetchProgressUpdatesByGoalUseCase は目標の進捗投稿を古い順に返す。
type FetchProgressUpdatesByGoalUseCase struct {
	auth    CurrentUserProvider
	updates ProgressUpdateRepository
}

// NewFetchProgressUpdatesByGoalUseCase はFetchProgressUpdatesByGoalUseCaseを生成する。
func NewFetchProgressUpdatesByGoalUseCase(auth CurrentUserProvider, updates ProgressUpdateRepository) *FetchProgressUpdatesByGoalUseCase {
	return &FetchProgressUpdatesByGoalUseCase{auth: auth, updates: updates}
}

// Execute は目標の進捗投稿を取得する。
func (uc *FetchProgressUpdatesByGoalUseCase) Execute(ctx context.Context, params FetchProgressUpdatesByGoalParams) ([]model.ProgressUpdateBO, error) {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return nil, err
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}
	updates, err := uc.updates.FetchUpdatesByGoal(ctx, params.GoalID)
	if err != nil {
		return nil, fmt.Errorf("進捗投稿の取得に失敗しました: %w", err)
	}
	return updates, nil
}

// LikeProgressUpdateParams はいいね切り替えの入力。
type LikeProgressUpdateParams struct {
	UpdateID string `validate:"required"`
}

// LikeResult はいいね切り替え後の投稿と状態。
type LikeResult struct {
	Update *model.ProgressUpdateBO
	Liked  bool
}

// LikeProgressUpdateUseCase はいいねを切り替え、他人の投稿にいいねした場合は投稿者に通知する。
type LikeProgressUpdateUseCase struct {
	auth    CurrentUserProvider
	updates ProgressUpdateRepository
	emitter *notificationEmitter
}

// NewLikeProgressUpdateUseCase はLikeProgressUpdateUseCaseを生成する。
func NewLikeProgressUpdateUseCase(
	auth CurrentUserProvider,
	updates ProgressUpdateRepository,
	users UserProfileRepository,
	notifications NotificationRepository,
	recorder NotificationRecorder,
) *LikeProgressUpdateUseCase {
	return &LikeProgressUpdateUseCase{
		auth:    auth,
		updates: updates,
		emitter: newNotificationEmitter(notifications, users, recorder),
	}
}

// Execute はいいねを切り替える。
func (uc *LikeProgressUpdateUseCase) Execute(ctx context.Context, params LikeProgressUpdateParams) (*LikeResult, error) {
	viewer, err := currentUserID(ctx, uc.auth)
	if err != nil {
		return nil, err
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}

	update, liked, err := uc.updates.LikeUpdate(ctx, params.UpdateID)
	if err != nil {
		return nil, fmt.Errorf("いいねの切り替えに失敗しました: %w", err)
	}
	if liked && update.User.UserID != viewer {
		uc.emitter.emit(ctx, viewer, update.User.UserID, model.NotificationTypeLike)
	}
	return &LikeResult{Update: update, Liked: liked}, nil
}
