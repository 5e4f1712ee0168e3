package repository

import (
	"context"

	"github.com/hitoshi/bucket/internal/datasource"
	"github.com/hitoshi/bucket/internal/mapper"
	"github.com/hitoshi/bucket/internal/model"
)

// GoalRepository は目標の作成・取得・削除を扱う。
type GoalRepository struct {
	goals  datasource.GoalDataSource
	users  datasource.UserDataSource
	auth   CurrentUserProvider
	opts   Options
	mapper mapper.GoalMapper
	create mapper.CreateGoalMapper
}

// NewGoalRepository はGoalRepositoryを生成する。
func NewGoalRepository(goals datasource.GoalDataSource, users datasource.UserDataSource, auth CurrentUserProvider, opts Options) *GoalRepository {
	return &GoalRepository{
		goals: goals,
		users: users,
		auth:  auth,
		opts:  opts.withDefaults(),
	}
}

// UploadGoal は目標を作成し、所有者を閲覧ユーザーとしたGoalBOを返す。
func (r *GoalRepository) UploadGoal(ctx context.Context, data model.CreateGoalBO) (*model.GoalBO, error) {
	g, err := r.goals.UploadGoal(ctx, r.create.Map(data))
	if err != nil {
		return nil, model.NewDomainError(model.DomainGoal, model.KindUploadFailed, "%s", err.Error())
	}
	owner, err := r.users.GetUserByID(ctx, g.UserID)
	if err != nil {
		return nil, model.NewDomainError(model.DomainGoal, model.KindUploadFailed, "%s", err.Error())
	}
	bo := r.mapper.Map(mapper.GoalDataInput{GoalDTO: *g, UserDTO: *owner, AuthUserID: g.UserID})
	return &bo, nil
}

// GetGoal は指定目標を返す。
func (r *GoalRepository) GetGoal(ctx context.Context, goalID string) (*model.GoalBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainGoal)
	if err != nil {
		return nil, err
	}
	g, err := r.goals.GetGoalByID(ctx, goalID)
	if err != nil {
		return nil, domainError(model.DomainGoal, model.KindFetchFailed, err)
	}
	owner, err := r.users.GetUserByID(ctx, g.UserID)
	if err != nil {
		return nil, model.NewDomainError(model.DomainGoal, model.KindFetchFailed, "%s", err.Error())
	}
	bo := r.mapper.Map(mapper.GoalDataInput{GoalDTO: *g, UserDTO: *owner, AuthUserID: viewer})
	return &bo, nil
}

// FetchUserGoals は指定ユーザーの目標を新しい順に返す。
func (r *GoalRepository) FetchUserGoals(ctx context.Context, userID string) ([]model.GoalBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainGoal)
	if err != nil {
		return nil, err
	}
	return r.fetchGoals(ctx, userID, viewer)
}

// FetchOwnGoals は閲覧ユーザー自身の目標を返す。
func (r *GoalRepository) FetchOwnGoals(ctx context.Context) ([]model.GoalBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainGoal)
	if err != nil {
		return nil, err
	}
	return r.fetchGoals(ctx, viewer, viewer)
}

func (r *GoalRepository) fetchGoals(ctx context.Context, userID, viewer string) ([]model.GoalBO, error) {
	goals, err := r.goals.FetchUserGoals(ctx, userID)
	if err != nil {
		return nil, model.NewDomainError(model.DomainGoal, model.KindFetchFailed, "%s", err.Error())
	}

	resolver := newUserResolver(r.users, r.opts, model.DomainGoal)
	ids := make([]string, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.UserID)
	}
	resolver.prefetch(ctx, ids)

	result := make([]model.GoalBO, 0, len(goals))
	for _, g := range goals {
		owner, ok := resolver.get(g.UserID)
		if !ok {
			resolver.skip(g.GoalID, g.UserID)
			continue
		}
		result = append(result, r.mapper.Map(mapper.GoalDataInput{GoalDTO: g, UserDTO: owner, AuthUserID: viewer}))
	}
	return result, nil
}

// DeleteGoal は目標を削除する。所有者以外は削除できない。
// 目標に紐づく進捗投稿も削除される。
func (r *GoalRepository) DeleteGoal(ctx context.Context, goalID string) error {
	viewer, err := viewerID(ctx, r.auth, model.DomainGoal)
	if err != nil {
		return err
	}
	g, err := r.goals.GetGoalByID(ctx, goalID)
	if err != nil {
		return domainError(model.DomainGoal, model.KindDeleteFailed, err)
	}
	if g.UserID != viewer {
		return model.NewDomainError(model.DomainGoal, model.KindForbidden, "only the owner can delete this goal")
	}
	if err := r.goals.DeleteGoal(ctx, goalID); err != nil {
		return domainError(model.DomainGoal, model.KindDeleteFailed, err)
	}
	return nil
}
