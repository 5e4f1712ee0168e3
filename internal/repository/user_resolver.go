package repository

import (
	"context"
	"log/slog"

	"github.com/hitoshi/bucket/internal/datasource"
	"github.com/hitoshi/bucket/internal/model"
	"golang.org/x/sync/errgroup"
)

// userResolver は1回の呼び出しの間だけ有効な関連ユーザーのキャッシュ。
// 同じIDの取得は成功・失敗にかかわらず1回だけ行う。
type userResolver struct {
	users    datasource.UserDataSource
	limit    int
	recorder JoinRecorder
	domain   model.ErrorDomain

	cache map[string]*model.UserDTO // nilは取得失敗
}

func newUserResolver(users datasource.UserDataSource, opts Options, domain model.ErrorDomain) *userResolver {
	return &userResolver{
		users:    users,
		limit:    opts.UserFetchConcurrency,
		recorder: opts.Recorder,
		domain:   domain,
		cache:    make(map[string]*model.UserDTO),
	}
}

// prefetch は未取得のIDを並列数limitで取得し、キャッシュに格納する。
func (r *userResolver) prefetch(ctx context.Context, ids []string) {
	pending := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := r.cache[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		return
	}

	results := make([]*model.UserDTO, len(pending))
	var g errgroup.Group
	g.SetLimit(r.limit)
	for i, id := range pending {
		g.Go(func() error {
			u, err := r.users.GetUserByID(ctx, id)
			if err != nil {
				slog.Warn("failed to fetch related user",
					slog.String("domain", string(r.domain)),
					slog.String("user_id", id),
					slog.String("error", err.Error()),
				)
				r.recorder.RecordUserFetch(false)
				return nil
			}
			r.recorder.RecordUserFetch(true)
			results[i] = u
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range pending {
		r.cache[id] = results[i]
	}
}

// get はキャッシュ済みのユーザーを返す。取得に失敗していた場合はfalseを返す。
func (r *userResolver) get(id string) (model.UserDTO, bool) {
	u := r.cache[id]
	if u == nil {
		return model.UserDTO{}, false
	}
	return *u, true
}

// skip は関連ユーザーを解決できなかったレコードを記録する。
func (r *userResolver) skip(recordID, userID string) {
	slog.Warn("skipping record with unresolved user",
		slog.String("domain", string(r.domain)),
		slog.String("record_id", recordID),
		slog.String("user_id", userID),
	)
	r.recorder.RecordSkippedRecord(string(r.domain))
}
