package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/security"
)

// CreateGoalParams は目標作成の入力。
type CreateGoalParams struct {
	Title       string  `validate:"required,max=200"`
	Description *string `validate:"omitempty,max=2000"`
	Category    *string `validate:"omitempty,max=50"`
}

// CreateGoalUseCase は閲覧ユーザーの目標を作成する。
type CreateGoalUseCase struct {
	auth      CurrentUserProvider
	goals     GoalRepository
	sanitizer security.TextSanitizer
	newID     func() string
}

// NewCreateGoalUseCase はCreateGoalUseCaseを生成する。
func NewCreateGoalUseCase(auth CurrentUserProvider, goals GoalRepository, sanitizer security.TextSanitizer) *CreateGoalUseCase {
	return &CreateGoalUseCase{
		auth:      auth,
		goals:     goals,
		sanitizer: sanitizer,
		newID:     uuid.NewString,
	}
}

// Execute は目標を作成する。
func (uc *CreateGoalUseCase) Execute(ctx context.Context, params CreateGoalParams) (*model.GoalBO, error) {
	userID, err := currentUserID(ctx, uc.auth)
	if err != nil {
		return nil, err
	}

	params.Title = uc.sanitizer.Sanitize(params.Title)
	params.Description = uc.sanitizer.SanitizeOptional(params.Description)
	params.Category = uc.sanitizer.SanitizeOptional(params.Category)
	if err := validateParams(params); err != nil {
		return nil, err
	}

	goal, err := uc.goals.UploadGoal(ctx, model.CreateGoalBO{
		GoalID:      uc.newID(),
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("目標の作成に失敗しました: %w", err)
	}
	return goal, nil
}

// FetchUserGoalsParams は目標一覧の入力。
type FetchUserGoalsParams struct {
	UserID string `validate:"required"`
}

// FetchUserGoalsUseCase は指定ユーザーの目標を新しい順に返す。
type FetchUserGoalsUseCase struct {
	auth  CurrentUserProvider
	goals GoalRepository
}

// NewFetchUserGoalsUseCase はFetchUserGoalsUseCaseを生成する。
func NewFetchUserGoalsUseCase(auth CurrentUserProvider, goals GoalRepository) *FetchUserGoalsUseCase {
	return &FetchUserGoalsUseCase{auth: auth, goals: goals}
}

// Execute は目標一覧を取得する。
func (uc *FetchUserGoalsUseCase) Execute(ctx context.Context, params FetchUserGoalsParams) ([]model.GoalBO, error) {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return nil, err
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}
	goals, err := uc.goals.FetchUserGoals(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("目標一覧の取得に失敗しました: %w", err)
	}
	return goals, nil
}

// FetchOwnGoalsUseCase は閲覧ユーザー自身の目標を返す。
type FetchOwnGoalsUseCase struct {
	auth  CurrentUserProvider
	goals GoalRepository
}

// NewFetchOwnGoalsUseCase はFetchOwnGoalsUseCaseを生成する。
func NewFetchOwnGoalsUseCase(auth CurrentUserProvider, goals GoalRepository) *FetchOwnGoalsUseCase {
	return &FetchOwnGoalsUseCase{auth: auth, goals: goals}
}

// Execute は自分の目標一覧を取得する。
func (uc *FetchOwnGoalsUseCase) Execute(ctx context.Context) ([]model.GoalBO, error) {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return nil, err
	}
	goals, err := uc.goals.FetchOwnGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("目標一覧の取得に失敗しました: %w", err)
	}
	return goals, nil
}

// DeleteGoalParams は目標削除の入力。
type DeleteGoalParams struct {
	GoalID string `validate:"required"`
}

// DeleteGoalUseCase は目標と、その進捗投稿を削除する。
type DeleteGoalUseCase struct {
	auth  CurrentUserProvider
	goals GoalRepository
}

// NewDeleteGoalUseCase はDeleteGoalUseCaseを生成する。
func NewDeleteGoalUseCase(auth CurrentUserProvider, goals GoalRepository) *DeleteGoalUseCase {
	return &DeleteGoalUseCase{auth: auth, goals: goals}
}

// Execute は目標を削除する。所有者以外はFORBIDDENとなる。
func (uc *DeleteGoalUseCase) Execute(ctx context.Context, params DeleteGoalParams) error {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return err
	}
	if err := validateParams(params); err != nil {
		return err
	}
	if err := uc.goals.DeleteGoal(ctx, params.GoalID); err != nil {
		return fmt.Errorf("目標の削除に失敗しました: %w", err)
	}
	return nil
}
