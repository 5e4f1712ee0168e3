// Package usecase はアプリケーションの操作を1操作1構造体で提供する。
//
// 各ユースケースは閲覧ユーザーの確認、入力検証、事前条件の確認を行い、
// リポジトリのエラーは%wでラップしてそのまま返す。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUserNotAuthenticated は閲覧ユーザーが存在しない場合に返される。
	ErrUserNotAuthenticated = errors.New("user is not authenticated")
	// ErrPasswordsDoNotMatch はパスワードと確認用パスワードが一致しない場合に返される。
	ErrPasswordsDoNotMatch = errors.New("passwords do not match")
	// ErrUsernameNotAvailable はユーザー名が使用済みの場合に返される。
	ErrUsernameNotAvailable = errors.New("username is not available")
	// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しない場合に返される。
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidInput は入力値が不正な場合に返される。
	ErrInvalidInput = errors.New("invalid input")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateParams は構造体タグに従って入力を検証し、失敗時はErrInvalidInputをラップして返す。
func validateParams(params any) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "username":
		return fmt.Sprintf("%s may only contain letters, digits, '_' and '.'", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// InvalidInputReason はErrInvalidInputに付随する理由を返す。
func InvalidInputReason(err error) string {
	msg := err.Error()
	prefix := ErrInvalidInput.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// currentUserID は閲覧ユーザーIDを返す。未認証の場合はErrUserNotAuthenticatedを返す。
func currentUserID(ctx context.Context, auth CurrentUserProvider) (string, error) {
	id, err := auth.GetCurrentUserID(ctx)
	if err != nil {
		return "", fmt.Errorf("閲覧ユーザーの取得に失敗しました: %w", err)
	}
	if id == "" {
		return "", ErrUserNotAuthenticated
	}
	return id, nil
}

