// Package handler はHTTPハンドラーを提供する。
//
// ハンドラーはリクエストの解析とユースケースの呼び出し、レスポンスの変換のみを行い、
// 業務ルールは持たない。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bucket/internal/middleware"
	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/usecase"
)

// UseCase は入力を受け取り結果を返すユースケース。
type UseCase[P, R any] interface {
	Execute(ctx context.Context, params P) (R, error)
}

// QueryUseCase は入力を取らず結果を返すユースケース。
type QueryUseCase[R any] interface {
	Execute(ctx context.Context) (R, error)
}

// CommandUseCase は入力を受け取り結果を返さないユースケース。
type CommandUseCase[P any] interface {
	Execute(ctx context.Context, params P) error
}

// ActionUseCase は入力も結果も持たないユースケース。
type ActionUseCase interface {
	Execute(ctx context.Context) error
}

// maxRequestBodyBytes はJSONリクエストボディの上限。
const maxRequestBodyBytes = 1 << 20

// decodeJSON はリクエストボディをdstにデコードする。失敗時は400を書き込みfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return false
	}
	return true
}

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleUseCaseError はユースケースから返されたエラーを適切なHTTPレスポンスに変換する。
func handleUseCaseError(w http.ResponseWriter, err error) {
	statusCode, apiErr := mapErrorToAPIError(err)
	if statusCode >= http.StatusInternalServerError {
		slog.Error("internal server error", slog.String("error", err.Error()))
	}
	writeAPIErrorResponse(w, statusCode, apiErr)
}

// mapErrorToAPIError はエラーをHTTPステータスコードとAPIErrorに変換する。
func mapErrorToAPIError(err error) (int, *model.APIError) {
	switch {
	case errors.Is(err, usecase.ErrUserNotAuthenticated):
		return http.StatusUnauthorized, model.NewUnauthorizedError()
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest, model.NewValidationError(usecase.InvalidInputReason(err))
	case errors.Is(err, usecase.ErrPasswordsDoNotMatch):
		return http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodePasswordsDoNotMatch,
			Message:  "パスワードと確認用パスワードが一致しません。",
			Category: "validation",
			Action:   "同じパスワードを入力してください。",
		}
	case errors.Is(err, usecase.ErrUsernameNotAvailable):
		return http.StatusConflict, &model.APIError{
			Code:     model.ErrCodeUsernameNotAvailable,
			Message:  "このユーザー名は既に使用されています。",
			Category: "user",
			Action:   "別のユーザー名を選んでください。",
		}
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return http.StatusUnauthorized, invalidCredentialsError()
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return middleware.StatusForAPIError(apiErr), apiErr
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return mapDomainError(domainErr)
	}

	return http.StatusInternalServerError, model.NewInternalError()
}

// mapDomainError はリポジトリのDomainErrorを種類に応じて変換する。
func mapDomainError(de *model.DomainError) (int, *model.APIError) {
	category := domainCategory(de.Domain)
	switch de.Kind {
	case model.KindNotFound:
		return http.StatusNotFound, &model.APIError{
			Code:     model.ErrCodeNotFound,
			Message:  de.Message,
			Category: category,
			Action:   "IDを確認してください。",
		}
	case model.KindForbidden:
		return http.StatusForbidden, &model.APIError{
			Code:     model.ErrCodeForbidden,
			Message:  de.Message,
			Category: category,
			Action:   "自分のリソースのみ操作できます。",
		}
	case model.KindInvalidCredentials:
		return http.StatusUnauthorized, invalidCredentialsError()
	case model.KindEmailAlreadyInUse:
		return http.StatusConflict, &model.APIError{
			Code:     model.ErrCodeEmailAlreadyInUse,
			Message:  "このメールアドレスは既に登録されています。",
			Category: "auth",
			Action:   "サインインするか、別のメールアドレスを使用してください。",
		}
	case model.KindPasswordResetFailed:
		return http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodePasswordResetFailed,
			Message:  "パスワードをリセットできませんでした。",
			Category: "auth",
			Action:   "リセットリンクを再発行してください。",
		}
	default:
		return http.StatusInternalServerError, model.NewInternalError()
	}
}

func domainCategory(d model.ErrorDomain) string {
	switch d {
	case model.DomainAuthentication:
		return "auth"
	case model.DomainUserProfile:
		return "user"
	case model.DomainNotification:
		return "notification"
	case model.DomainProgressUpdate:
		return "progress_update"
	default:
		return "goal"
	}
}

func invalidCredentialsError() *model.APIError {
	return &model.APIError{
		Code:     model.ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認してください。",
	}
}
