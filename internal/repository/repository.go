// Package repository はデータソースを組み合わせ、閲覧ユーザー基準のBOを組み立てる。
//
// 返すエラーはすべて*model.DomainErrorで、下位層のエラーはメッセージとしてのみ保持する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/bucket/internal/datasource"
	"github.com/hitoshi/bucket/internal/model"
)

// CurrentUserProvider は閲覧ユーザーIDを提供する。未認証の場合は空文字を返す。
type CurrentUserProvider interface {
	GetCurrentUserID(ctx context.Context) (string, error)
}

// JoinRecorder は関連ユーザー解決の結果を記録する。
// metrics.Collectorが実装する。
type JoinRecorder interface {
	RecordUserFetch(success bool)
	RecordSkippedRecord(domain string)
}

type noopRecorder struct{}

func (noopRecorder) RecordUserFetch(bool)       {}
func (noopRecorder) RecordSkippedRecord(string) {}

// Options はリポジトリ共通の設定。
type Options struct {
	FeedLimit            int
	SuggestionLimit      int
	SearchLimit          int
	UserFetchConcurrency int
	Recorder             JoinRecorder
}

const (
	maxFeedLimit           = 50
	defaultSuggestionLimit = 20
	defaultSearchLimit     = 20
	defaultUserConcurrency = 4
)

func (o Options) withDefaults() Options {
	if o.FeedLimit <= 0 || o.FeedLimit > maxFeedLimit {
		o.FeedLimit = maxFeedLimit
	}
	if o.SuggestionLimit <= 0 {
		o.SuggestionLimit = defaultSuggestionLimit
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = defaultSearchLimit
	}
	if o.UserFetchConcurrency <= 0 {
		o.UserFetchConcurrency = defaultUserConcurrency
	}
	if o.Recorder == nil {
		o.Recorder = noopRecorder{}
	}
	return o
}

// viewerID は閲覧ユーザーIDを取得する。取得できない場合は指定領域のUNKNOWNエラーを返す。
func viewerID(ctx context.Context, auth CurrentUserProvider, domain model.ErrorDomain) (string, error) {
	id, err := auth.GetCurrentUserID(ctx)
	if err != nil {
		return "", model.NewDomainError(domain, model.KindUnknown, "failed to get current user: %s", err.Error())
	}
	if id == "" {
		return "", model.NewDomainError(domain, model.KindUnknown, "user is not signed in")
	}
	return id, nil
}

// domainError はデータソースのエラーをDomainErrorに変換する。
// ErrNotFoundはNOT_FOUND、それ以外は指定のkindになる。
func domainError(domain model.ErrorDomain, kind model.ErrorKind, err error) *model.DomainError {
	if errors.Is(err, datasource.ErrNotFound) {
		return model.NewDomainError(domain, model.KindNotFound, "%s", err.Error())
	}
	return model.NewDomainError(domain, kind, "%s", err.Error())
}
