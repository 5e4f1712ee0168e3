package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/bucket/internal/auth"
	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/security"
)

// AuthResult はサインイン・サインアップの結果。
type AuthResult struct {
	Session *model.Session
	User    *model.UserBO
}

// SignInParams はサインインの入力。
type SignInParams struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// SignInUseCase はサインインしてログインユーザーのプロフィールを返す。
type SignInUseCase struct {
	auth  AuthenticationRepository
	users UserProfileRepository
}

// NewSignInUseCase はSignInUseCaseを生成する。
func NewSignInUseCase(auth AuthenticationRepository, users UserProfileRepository) *SignInUseCase {
	return &SignInUseCase{auth: auth, users: users}
}

// Execute はサインインを実行する。
func (uc *SignInUseCase) Execute(ctx context.Context, params SignInParams) (*AuthResult, error) {
	params.Email = normalizeEmail(params.Email)
	if err := validateParams(params); err != nil {
		return nil, err
	}

	session, err := uc.auth.SignIn(ctx, params.Email, params.Password)
	if errors.Is(err, model.ErrAuthInvalidCredentials) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("サインインに失敗しました: %w", err)
	}

	return signedInResult(ctx, uc.users, session)
}

// SignUpParams はサインアップの入力。
type SignUpParams struct {
	Email           string `validate:"required,email,max=254"`
	Password        string `validate:"required,min=8,max=72"`
	ConfirmPassword string `validate:"required"`
	Fullname        string `validate:"required,max=100"`
	Username        string `validate:"required,min=3,max=30,username"`
}

// SignUpUseCase はアカウントとプロフィールを作成してサインインする。
type SignUpUseCase struct {
	auth      AuthenticationRepository
	users     UserProfileRepository
	sanitizer security.TextSanitizer
}

// NewSignUpUseCase はSignUpUseCaseを生成する。
func NewSignUpUseCase(auth AuthenticationRepository, users UserProfileRepository, sanitizer security.TextSanitizer) *SignUpUseCase {
	return &SignUpUseCase{auth: auth, users: users, sanitizer: sanitizer}
}

// Execute はパスワード確認、ユーザー名の空き確認の後にアカウントを作成する。
// プロフィールの作成に失敗した場合は登録した資格情報を削除する。
func (uc *SignUpUseCase) Execute(ctx context.Context, params SignUpParams) (*AuthResult, error) {
	params.Email = normalizeEmail(params.Email)
	params.Username = strings.TrimSpace(params.Username)
	params.Fullname = uc.sanitizer.Sanitize(params.Fullname)
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if params.Password != params.ConfirmPassword {
		return nil, ErrPasswordsDoNotMatch
	}

	available, err := uc.users.CheckUsernameAvailability(ctx, params.Username)
	if err != nil {
		return nil, fmt.Errorf("ユーザー名の確認に失敗しました: %w", err)
	}
	if !available {
		return nil, ErrUsernameNotAvailable
	}

	userID, err := uc.auth.SignUp(ctx, params.Email, params.Password)
	if err != nil {
		return nil, fmt.Errorf("アカウントの作成に失敗しました: %w", err)
	}

	if _, err := uc.users.CreateUser(ctx, model.CreateUserBO{
		UserID:   userID,
		Email:    params.Email,
		Fullname: params.Fullname,
		Username: params.Username,
	}); err != nil {
		// 資格情報だけが残るとメールアドレスが再登録できなくなる
		if rbErr := uc.auth.DeleteCredential(context.WithoutCancel(ctx), userID); rbErr != nil {
			slog.Error("failed to roll back credential",
				slog.String("user_id", userID),
				slog.String("error", rbErr.Error()),
			)
		}
		if errors.Is(err, model.ErrUserUsernameTaken) {
			return nil, ErrUsernameNotAvailable
		}
		return nil, fmt.Errorf("プロフィールの作成に失敗しました: %w", err)
	}

	session, err := uc.auth.SignIn(ctx, params.Email, params.Password)
	if err != nil {
		return nil, fmt.Errorf("サインインに失敗しました: %w", err)
	}
	return signedInResult(ctx, uc.users, session)
}

func signedInResult(ctx context.Context, users UserProfileRepository, session *model.Session) (*AuthResult, error) {
	ctx = auth.ContextWithSession(ctx, session)
	user, err := users.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	return &AuthResult{Session: session, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignOutUseCase はコンテキストのセッションを破棄する。
type SignOutUseCase struct {
	auth AuthenticationRepository
}

// NewSignOutUseCase はSignOutUseCaseを生成する。
func NewSignOutUseCase(auth AuthenticationRepository) *SignOutUseCase {
	return &SignOutUseCase{auth: auth}
}

// Execute はサインアウトする。
func (uc *SignOutUseCase) Execute(ctx context.Context) error {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return err
	}
	if err := uc.auth.SignOut(ctx); err != nil {
		return fmt.Errorf("サインアウトに失敗しました: %w", err)
	}
	return nil
}

// ForgotPasswordParams はパスワードリセット要求の入力。
type ForgotPasswordParams struct {
	Email string `validate:"required,email"`
}

// ForgotPasswordUseCase はパスワードリセットリンクを送信する。
// 未登録のメールアドレスでも成功を返す。
type ForgotPasswordUseCase struct {
	auth AuthenticationRepository
}

// NewForgotPasswordUseCase はForgotPasswordUseCaseを生成する。
func NewForgotPasswordUseCase(auth AuthenticationRepository) *ForgotPasswordUseCase {
	return &ForgotPasswordUseCase{auth: auth}
}

// Execute はリセットを要求する。
func (uc *ForgotPasswordUseCase) Execute(ctx context.Context, params ForgotPasswordParams) error {
	params.Email = normalizeEmail(params.Email)
	if err := validateParams(params); err != nil {
		return err
	}
	if err := uc.auth.ForgotPassword(ctx, params.Email); err != nil {
		return fmt.Errorf("パスワードリセットの要求に失敗しました: %w", err)
	}
	return nil
}

// ResetPasswordParams はパスワード再設定の入力。
type ResetPasswordParams struct {
	Token           string `validate:"required"`
	Password        string `validate:"required,min=8,max=72"`
	ConfirmPassword string `validate:"required"`
}

// ResetPasswordUseCase はリセットトークンでパスワードを再設定する。
type ResetPasswordUseCase struct {
	auth AuthenticationRepository
}

// NewResetPasswordUseCase はResetPasswordUseCaseを生成する。
func NewResetPasswordUseCase(auth AuthenticationRepository) *ResetPasswordUseCase {
	return &ResetPasswordUseCase{auth: auth}
}

// Execute はパスワードを再設定する。
func (uc *ResetPasswordUseCase) Execute(ctx context.Context, params ResetPasswordParams) error {
	if err := validateParams(params); err != nil {
		return err
	}
	if params.Password != params.ConfirmPassword {
		return ErrPasswordsDoNotMatch
	}
	if err := uc.auth.ResetPassword(ctx, params.Token, params.Password); err != nil {
		return fmt.Errorf("パスワードの再設定に失敗しました: %w", err)
	}
	return nil
}
