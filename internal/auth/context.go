package auth

import (
	"context"

	"github.com/hitoshi/bucket/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var sessionContextKey = contextKey("session")

// ContextWithSession はコンテキストにセッションを注入する。
// 閲覧者IDはこのセッションから読み出される。
func ContextWithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// ContextWithUserID はユーザーIDのみを持つセッションをコンテキストに注入する。
// テストやバッチ処理など、HTTPセッションを経由しない呼び出しで使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return ContextWithSession(ctx, &model.Session{UserID: userID})
}

// UserIDFromContext はコンテキストから閲覧者IDを取得する。
// 未認証の場合は空文字とfalseを返す。
func UserIDFromContext(ctx context.Context) (string, bool) {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok || session == nil || session.UserID == "" {
		return "", false
	}
	return session.UserID, true
}

// SessionIDFromContext はコンテキストからセッションIDを取得する。
func SessionIDFromContext(ctx context.Context) (string, bool) {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok || session == nil || session.ID == "" {
		return "", false
	}
	return session.ID, true
}
