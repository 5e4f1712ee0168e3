// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/bucket/internal/auth"
	"github.com/hitoshi/bucket/internal/model"
)

// SessionCookieName はセッションIDを保持するCookieの名前。
const SessionCookieName = "session_id"

// SessionValidator はセッションの検証に必要なインターフェース。
// auth.Serviceが実装する。無効・期限切れの場合はnil, nilを返す。
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (*model.Session, error)
}

// AuthFailureRecorder は認証失敗を記録する。
type AuthFailureRecorder interface {
	RecordAuthFailure(reason string)
}

// 認証失敗の理由
const (
	authFailureMissing = "missing_session"
	authFailureInvalid = "invalid_session"
	authFailureLookup  = "lookup_error"
)

// SessionIDFromRequest はCookieまたはAuthorization: Bearerヘッダーからセッションを取り出す。
// fromCookieはCookie由来の場合にtrueとなる。
func SessionIDFromRequest(r *http.Request) (sessionID string, fromCookie bool) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token, false
		}
	}
	return "", false
}

// NewSessionMiddleware はセッションを検証し、閲覧ユーザーをリクエストコンテキストに注入する。
// 未認証リクエストには401を返す。recorderはnilでもよい。
func NewSessionMiddleware(validator SessionValidator, recorder AuthFailureRecorder) func(next http.Handler) http.Handler {
	record := func(reason string) {
		if recorder != nil {
			recorder.RecordAuthFailure(reason)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, _ := SessionIDFromRequest(r)
			if sessionID == "" {
				record(authFailureMissing)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			session, err := validator.ValidateSession(r.Context(), sessionID)
			if err != nil {
				slog.Error("failed to validate session",
					slog.String("error", err.Error()),
				)
				record(authFailureLookup)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			if session == nil {
				record(authFailureInvalid)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			setRequestUser(r.Context(), session.UserID)
			ctx := auth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
