package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/bucket/internal/auth"
)

// RequestRecorder はHTTPレスポンスのステータスとレイテンシを記録する。
type RequestRecorder interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// requestUser はセッションミドルウェアが解決したユーザーIDの保持先。
// セッションミドルウェアはロギングより内側で実行されるため、ポインタを共有する。
type requestUser struct {
	userID string
}

type requestUserContextKey struct{}

func setRequestUser(ctx context.Context, userID string) {
	if holder, ok := ctx.Value(requestUserContextKey{}).(*requestUser); ok {
		holder.userID = userID
	}
}

// requestUserID はコンテキストのセッションか、ロギングミドルウェアの保持先からユーザーIDを返す。
func requestUserID(ctx context.Context) (string, bool) {
	if userID, ok := auth.UserIDFromContext(ctx); ok {
		return userID, true
	}
	if holder, ok := ctx.Value(requestUserContextKey{}).(*requestUser); ok && holder.userID != "" {
		return holder.userID, true
	}
	return "", false
}

// NewLoggingMiddleware はリクエストごとにJSON構造化ログを1行出力するミドルウェアを返す。
// ログにはmethod、path、route、status、bytes、duration_ms、user_id（認証済みの場合）を含む。
// ログレベルは5xxでError、4xxでWarn、それ以外はInfo。
func NewLoggingMiddleware(logger *slog.Logger, recorder RequestRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			holder := &requestUser{}
			ctx := context.WithValue(r.Context(), requestUserContextKey{}, holder)
			if userID, ok := auth.UserIDFromContext(ctx); ok {
				holder.userID = userID
			}

			next.ServeHTTP(ww, r.WithContext(ctx))

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if recorder != nil {
				recorder.RecordHTTPStatus(status)
				recorder.RecordRequestLatency(duration)
			}

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Float64("duration_ms", float64(duration.Nanoseconds())/float64(time.Millisecond)),
			}
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					args = append(args, slog.String("route", pattern))
				}
			}
			if holder.userID != "" {
				args = append(args, slog.String("user_id", holder.userID))
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "http_request", args...)
		})
	}
}
