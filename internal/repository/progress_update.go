package repository

import (
	"context"
	"log/slog"

	"github.com/hitoshi/bucket/internal/datasource"
	"github.com/hitoshi/bucket/internal/mapper"
	"github.com/hitoshi/bucket/internal/model"
)

// ProgressUpdateRepository は進捗投稿とフィードを扱う。
type ProgressUpdateRepository struct {
	updates datasource.ProgressUpdateDataSource
	goals   datasource.GoalDataSource
	users   datasource.UserDataSource
	auth    CurrentUserProvider
	opts    Options
	mapper  mapper.ProgressUpdateMapper
	create  mapper.CreateProgressUpdateMapper
}

// NewProgressUpdateRepository はProgressUpdateRepositoryを生成する。
func NewProgressUpdateRepository(
	updates datasource.ProgressUpdateDataSource,
	goals datasource.GoalDataSource,
	users datasource.UserDataSource,
	auth CurrentUserProvider,
	opts Options,
) *ProgressUpdateRepository {
	return &ProgressUpdateRepository{
		updates: updates,
		goals:   goals,
		users:   users,
		auth:    auth,
		opts:    opts.withDefaults(),
	}
}

// UploadUpdate は進捗投稿を作成し、目標の投稿数を1増やす。
// 投稿数の更新に失敗しても投稿自体は成功として返す。
func (r *ProgressUpdateRepository) UploadUpdate(ctx context.Context, data model.CreateProgressUpdateBO) (*model.ProgressUpdateBO, error) {
	p, err := r.updates.UploadUpdate(ctx, r.create.Map(data))
	if err != nil {
		return nil, model.NewDomainError(model.DomainProgressUpdate, model.KindUploadFailed, "%s", err.Error())
	}

	if err := r.goals.IncrementUpdateCount(ctx, p.GoalID); err != nil {
		slog.Warn("failed to increment goal update count",
			slog.String("goal_id", p.GoalID),
			slog.String("update_id", p.UpdateID),
			slog.String("error", err.Error()),
		)
	}

	owner, err := r.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return nil, model.NewDomainError(model.DomainProgressUpdate, model.KindUploadFailed, "%s", err.Error())
	}
	bo := r.mapper.Map(mapper.ProgressUpdateDataInput{UpdateDTO: *p, UserDTO: *owner, AuthUserID: p.UserID})
	return &bo, nil
}

// FetchFeedUpdates は閲覧ユーザーとフォロー中のユーザーの投稿を新しい順に返す。
func (r *ProgressUpdateRepository) FetchFeedUpdates(ctx context.Context) ([]model.ProgressUpdateBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainProgressUpdate)
	if err != nil {
		return nil, err
	}
	me, err := r.users.GetUserByID(ctx, viewer)
	if err != nil {
		return nil, model.NewDomainError(model.DomainProgressUpdate, model.KindFetchFailed, "%s", err.Error())
	}

	authors := make([]string, 0, len(me.Following)+1)
	authors = append(authors, me.Following...)
	authors = append(authors, viewer)

	updates, err := r.updates.FetchFeedUpdates(ctx, authors, r.opts.FeedLimit)
	if err != nil {
		return nil, model.NewDomainError(model.DomainProgressUpdate, model.KindFetchFailed, "%s", err.Error())
	}
	return r.resolve(ctx, updates, viewer), nil
}

// FetchUpdatesByGoal は指定目標の投稿を古い順に返す。
func (r *ProgressUpdateRepository) FetchUpdatesByGoal(ctx context.Context, goalID string) ([]model.ProgressUpdateBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainProgressUpdate)
	if err != nil {
		return nil, err
	}
	updates, err := r.updates.FetchUpdatesByGoal(ctx, goalID)
	if err != nil {
		return nil, model.NewDomainError(model.DomainProgressUpdate, model.KindFetchFailed, "%s", err.Error())
	}
	return r.resolve(ctx, updates, viewer), nil
}

func (r *ProgressUpdateRepository) resolve(ctx context.Context, updates []model.ProgressUpdateDTO, viewer string) []model.ProgressUpdateBO {
	resolver := newUserResolver(r.users, r.opts, model.DomainProgressUpdate)
	ids := make([]string, 0, len(updates))
	for _, p := range updates {
		ids = append(ids, p.UserID)
	}
	resolver.prefetch(ctx, ids)

	result := make([]model.ProgressUpdateBO, 0, len(updates))
	for _, p := range updates {
		owner, ok := resolver.get(p.UserID)
		if !ok {
			resolver.skip(p.UpdateID, p.UserID)
			continue
		}
		result = append(result, r.mapper.Map(mapper.ProgressUpdateDataInput{UpdateDTO: p, UserDTO: owner, AuthUserID: viewer}))
	}
	return result
}

// LikeUpdate はいいね状態を反転し、反転後の投稿を返す。
func (r *ProgressUpdateRepository) LikeUpdate(ctx context.Context, updateID string) (*model.ProgressUpdateBO, bool, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainProgressUpdate)
	if err != nil {
		return nil, false, err
	}
	liked, err := r.updates.LikeUpdate(ctx, updateID, viewer)
	if err != nil {
		return nil, false, domainError(model.DomainProgressUpdate, model.KindLikeOperationFailed, err)
	}

	p, err := r.updates.GetUpdateByID(ctx, updateID)
	if err != nil {
		return nil, liked, domainError(model.DomainProgressUpdate, model.KindLikeOperationFailed, err)
	}
	owner, err := r.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return nil, liked, model.NewDomainError(model.DomainProgressUpdate, model.KindLikeOperationFailed, "%s", err.Error())
	}
	bo := r.mapper.Map(mapper.ProgressUpdateDataInput{UpdateDTO: *p, UserDTO: *owner, AuthUserID: viewer})
	return &bo, liked, nil
}
