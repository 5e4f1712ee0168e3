// Package auth はパスワード認証、セッション管理、パスワードリセットを提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/bucket/internal/datasource"
	"github.com/hitoshi/bucket/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しない場合に返される。
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailAlreadyInUse はメールアドレスが登録済みの場合に返される。
	ErrEmailAlreadyInUse = errors.New("email already in use")
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge    int // セッション有効期間（秒）
	BcryptCost       int
	ResetTokenSecret []byte
	ResetTokenTTL    time.Duration
	BaseURL          string // リセットリンクの生成に使用
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	credentials datasource.CredentialDataSource
	sessions    datasource.SessionDataSource
	notifier    ResetNotifier
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceを生成する。notifierがnilの場合はLogNotifierを使用する。
func NewService(
	credentials datasource.CredentialDataSource,
	sessions datasource.SessionDataSource,
	notifier ResetNotifier,
	config ServiceConfig,
) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.ResetTokenTTL == 0 {
		config.ResetTokenTTL = defaultResetTokenTTL
	}
	return &Service{
		credentials: credentials,
		sessions:    sessions,
		notifier:    notifier,
		config:      config,
		now:         time.Now,
	}
}

// SetClock はテスト用に時刻取得関数を差し替える。
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SignUp は資格情報を登録し、新しいユーザーIDを返す。
// プロフィールの作成は呼び出し側が行う。
func (s *Service) SignUp(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	cred := &model.Credential{
		UserID:       uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.credentials.CreateCredential(ctx, cred); err != nil {
		if errors.Is(err, datasource.ErrConflict) {
			return "", ErrEmailAlreadyInUse
		}
		return "", fmt.Errorf("failed to create credential: %w", err)
	}

	slog.Info("credential created", slog.String("user_id", cred.UserID))
	return cred.UserID, nil
}

// SignIn はメールアドレスとパスワードを検証し、セッションを発行する。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	cred, err := s.credentials.FindCredentialByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, datasource.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, cred.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user signed in", slog.String("user_id", cred.UserID))
	return session, nil
}

// SignOut はセッションを破棄する。
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user signed out")
	return nil
}

// ValidateSession は有効なセッションを返す。存在しないか期限切れの場合はnil, nilを返す。
func (s *Service) ValidateSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, datasource.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, nil
	}
	return session, nil
}

// ForgotPassword はリセットトークンを発行し、ResetNotifierへ渡す。
// 未登録のメールアドレスでも成功を返す。
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	cred, err := s.credentials.FindCredentialByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, datasource.ErrNotFound) {
		slog.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find credential: %w", err)
	}

	token, err := s.issueResetToken(cred)
	if err != nil {
		return err
	}

	if err := s.notifier.SendPasswordReset(ctx, cred.Email, resetLink(s.config.BaseURL, token)); err != nil {
		return fmt.Errorf("failed to send password reset: %w", err)
	}
	return nil
}

// ResetPassword はトークンを検証してパスワードを更新し、対象ユーザーの全セッションを破棄する。
// トークンは発行時のパスワードに紐づくため、一度使うと無効になる。
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.parseResetToken(token)
	if err != nil {
		return err
	}
	userID := claims.Subject

	cred, err := s.credentials.FindCredentialByUserID(ctx, userID)
	if errors.Is(err, datasource.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("failed to find credential: %w", err)
	}
	if !claims.matchesCredential(cred) {
		slog.Warn("reset token no longer matches credential", slog.String("user_id", userID))
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.credentials.UpdatePasswordHash(ctx, userID, cred.PasswordHash, string(hash)); err != nil {
		if errors.Is(err, datasource.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("password reset completed", slog.String("user_id", userID))
	return nil
}

// DeleteCredential は資格情報と対象ユーザーのセッションを削除する。
// プロフィール作成に失敗したサインアップの取り消しに使う。
func (s *Service) DeleteCredential(ctx context.Context, userID string) error {
	if err := s.credentials.DeleteCredential(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("credential deleted", slog.String("user_id", userID))
	return nil
}

// CleanupExpiredSessions は期限切れセッションを削除し、削除件数を返す。
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
