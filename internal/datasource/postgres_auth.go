package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/bucket/internal/model"
)

// PostgresCredentialDataSource はPostgreSQLを使用した資格情報データソース。
type PostgresCredentialDataSource struct {
	db *sql.DB
}

// NewPostgresCredentialDataSource はPostgresCredentialDataSourceを生成する。
func NewPostgresCredentialDataSource(db *sql.DB) *PostgresCredentialDataSource {
	return &PostgresCredentialDataSource{db: db}
}

// CreateCredential は資格情報を作成する。
func (d *PostgresCredentialDataSource) CreateCredential(ctx context.Context, cred *model.Credential) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO credentials (user_id, email, password_hash, created_at, updated_at)
		 VALUES ($1, lower($2), $3, $4, $5)`,
		cred.UserID, cred.Email, cred.PasswordHash, cred.CreatedAt, cred.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

// FindCredentialByEmail はメールアドレスで資格情報を検索する。
func (d *PostgresCredentialDataSource) FindCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	cred := &model.Credential{}
	err := d.db.QueryRowContext(ctx,
		`SELECT user_id, email, password_hash, created_at, updated_at
		 FROM credentials
		 WHERE email = lower($1)`,
		email,
	).Scan(&cred.UserID, &cred.Email, &cred.PasswordHash, &cred.CreatedAt, &cred.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	return cred, nil
}

// FindCredentialByUserID はユーザーIDで資格情報を検索する。
func (d *PostgresCredentialDataSource) FindCredentialByUserID(ctx context.Context, userID string) (*model.Credential, error) {
	cred := &model.Credential{}
	err := d.db.QueryRowContext(ctx,
		`SELECT user_id, email, password_hash, created_at, updated_at
		 FROM credentials
		 WHERE user_id = $1`,
		userID,
	).Scan(&cred.UserID, &cred.Email, &cred.PasswordHash, &cred.CreatedAt, &cred.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	return cred, nil
}

// UpdatePasswordHash はパスワードハッシュを更新する。
// 同じリセットトークンによる並行した更新は1件のみ成功する。
func (d *PostgresCredentialDataSource) UpdatePasswordHash(ctx context.Context, userID, currentHash, newHash string) error {
	result, err := d.db.ExecContext(ctx,
		`UPDATE credentials SET password_hash = $3, updated_at = now()
		 WHERE user_id = $1 AND password_hash = $2`,
		userID, currentHash, newHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	return requireAffected(result)
}

// DeleteCredential は資格情報を削除する。セッションとプロフィールはON DELETE CASCADEで削除される。
func (d *PostgresCredentialDataSource) DeleteCredential(ctx context.Context, userID string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return requireAffected(result)
}

// PostgresSessionDataSource はPostgreSQLを使用したセッションデータソース。
type PostgresSessionDataSource struct {
	db *sql.DB
}

// NewPostgresSessionDataSource はPostgresSessionDataSourceを生成する。
func NewPostgresSessionDataSource(db *sql.DB) *PostgresSessionDataSource {
	return &PostgresSessionDataSource{db: db}
}

// Create はセッションを作成する。
func (d *PostgresSessionDataSource) Create(ctx context.Context, session *model.Session) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		session.ID, session.UserID, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は有効期限内のセッションを取得する。
func (d *PostgresSessionDataSource) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	err := d.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, created_at
		 FROM sessions
		 WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&session.ID, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (d *PostgresSessionDataSource) DeleteByID(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (d *PostgresSessionDataSource) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除する。
func (d *PostgresSessionDataSource) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// compile-time interface check
var (
	_ CredentialDataSource = (*PostgresCredentialDataSource)(nil)
	_ SessionDataSource    = (*PostgresSessionDataSource)(nil)
)
