package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/bucket/internal/auth"
	"github.com/hitoshi/bucket/internal/model"
)

// AuthService はAuthenticationRepositoryが利用する認証サービス。
// auth.Serviceが実装する。
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	DeleteCredential(ctx context.Context, userID string) error
}

// AuthenticationRepository は認証操作とコンテキスト上の閲覧ユーザーを扱う。
type AuthenticationRepository struct {
	service AuthService
}

// NewAuthenticationRepository はAuthenticationRepositoryを生成する。
func NewAuthenticationRepository(service AuthService) *AuthenticationRepository {
	return &AuthenticationRepository{service: service}
}

// SignIn はセッションを発行する。
func (r *AuthenticationRepository) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	session, err := r.service.SignIn(ctx, email, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return nil, model.NewDomainError(model.DomainAuthentication, model.KindInvalidCredentials, "%s", err.Error())
	}
	if err != nil {
		return nil, model.NewDomainError(model.DomainAuthentication, model.KindSignInFailed, "%s", err.Error())
	}
	return session, nil
}

// SignUp は資格情報を登録し、新しいユーザーIDを返す。
func (r *AuthenticationRepository) SignUp(ctx context.Context, email, password string) (string, error) {
	userID, err := r.service.SignUp(ctx, email, password)
	if errors.Is(err, auth.ErrEmailAlreadyInUse) {
		return "", model.NewDomainError(model.DomainAuthentication, model.KindEmailAlreadyInUse, "%s", err.Error())
	}
	if err != nil {
		return "", model.NewDomainError(model.DomainAuthentication, model.KindSignUpFailed, "%s", err.Error())
	}
	return userID, nil
}

// DeleteCredential はSignUpで登録した資格情報を削除する。
func (r *AuthenticationRepository) DeleteCredential(ctx context.Context, userID string) error {
	if err := r.service.DeleteCredential(ctx, userID); err != nil {
		return model.NewDomainError(model.DomainAuthentication, model.KindSignUpFailed, "%s", err.Error())
	}
	return nil
}

// SignOut はコンテキストのセッションを破棄する。
func (r *AuthenticationRepository) SignOut(ctx context.Context) error {
	sessionID, ok := auth.SessionIDFromContext(ctx)
	if !ok {
		return model.NewDomainError(model.DomainAuthentication, model.KindSignOutFailed, "no active session")
	}
	if err := r.service.SignOut(ctx, sessionID); err != nil {
		return model.NewDomainError(model.DomainAuthentication, model.KindSignOutFailed, "%s", err.Error())
	}
	return nil
}

// GetCurrentUserID はコンテキストの閲覧ユーザーIDを返す。未認証の場合は空文字を返す。
func (r *AuthenticationRepository) GetCurrentUserID(ctx context.Context) (string, error) {
	userID, _ := auth.UserIDFromContext(ctx)
	return userID, nil
}

// ForgotPassword はパスワードリセットを要求する。
func (r *AuthenticationRepository) ForgotPassword(ctx context.Context, email string) error {
	if err := r.service.ForgotPassword(ctx, email); err != nil {
		return model.NewDomainError(model.DomainAuthentication, model.KindPasswordResetFailed, "%s", err.Error())
	}
	return nil
}

// ResetPassword はリセットトークンを使ってパスワードを更新する。
func (r *AuthenticationRepository) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := r.service.ResetPassword(ctx, token, newPassword); err != nil {
		return model.NewDomainError(model.DomainAuthentication, model.KindPasswordResetFailed, "%s", err.Error())
	}
	return nil
}

// compile-time interface check
var _ AuthService = (*auth.Service)(nil)
var _ CurrentUserProvider = (*AuthenticationRepository)(nil)
