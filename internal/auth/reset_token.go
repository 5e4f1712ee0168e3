package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/bucket/internal/model"
)

const resetPurpose = "password_reset"

// ErrInvalidResetToken はパスワードリセットトークンが不正または期限切れの場合に返される。
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// resetClaims のCredentialは発行時点のパスワードハッシュの指紋。
// パスワードが変わるとトークンは使えなくなる。
type resetClaims struct {
	Purpose    string `json:"purpose"`
	Credential string `json:"cred"`
	jwt.RegisteredClaims
}

// ResetNotifier はパスワードリセットリンクの送信先。
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// LogNotifier はリセット要求をログ出力するだけのResetNotifier。
// メール送信基盤を持たない環境向け。トークンはログに残さない。
type LogNotifier struct{}

// SendPasswordReset はトークンを伏せたリセットリンクをslogで出力する。
func (LogNotifier) SendPasswordReset(_ context.Context, email, link string) error {
	slog.Info("password reset requested",
		slog.String("email", email),
		slog.String("link", redactResetLink(link)),
	)
	return nil
}

// redactResetLink はリンクのtokenパラメータを伏せ字にする。
func redactResetLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "[REDACTED]"
	}
	q := u.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// credentialFingerprint はパスワードハッシュから指紋を求める。
func credentialFingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}

func (s *Service) issueResetToken(cred *model.Credential) (string, error) {
	now := s.now()
	claims := resetClaims{
		Purpose:    resetPurpose,
		Credential: credentialFingerprint(cred.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.ResetTokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.ResetTokenSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return token, nil
}

// parseResetToken は署名・有効期限・用途を検証し、クレームを返す。
func (s *Service) parseResetToken(tokenString string) (*resetClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &resetClaims{},
		func(*jwt.Token) (any, error) {
			return s.config.ResetTokenSecret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResetToken, err)
	}

	claims, ok := token.Claims.(*resetClaims)
	if !ok || !token.Valid || claims.Purpose != resetPurpose || claims.Subject == "" || claims.Credential == "" {
		return nil, ErrInvalidResetToken
	}
	return claims, nil
}

// matchesCredential はトークン発行後にパスワードが変更されていないかを確認する。
func (c *resetClaims) matchesCredential(cred *model.Credential) bool {
	want := credentialFingerprint(cred.PasswordHash)
	return subtle.ConstantTimeCompare([]byte(c.Credential), []byte(want)) == 1
}

func resetLink(baseURL, token string) string {
	return baseURL + "/reset-password?token=" + token
}

// defaultResetTokenTTL はResetTokenTTL未設定時の有効期間。
const defaultResetTokenTTL = 30 * time.Minute
