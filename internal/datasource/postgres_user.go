package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/bucket/internal/model"
	"github.com/lib/pq"
)

const userColumns = `id, email, fullname, username, bio, link, profile_image_url,
	followers_count, following_count, followers, following, is_private_profile`

// pqUniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const pqUniqueViolation = "23505"

// PostgresUserDataSource はPostgreSQLを使用したユーザーデータソース。
type PostgresUserDataSource struct {
	db *sql.DB
}

// NewPostgresUserDataSource はPostgresUserDataSourceを生成する。
func NewPostgresUserDataSource(db *sql.DB) *PostgresUserDataSource {
	return &PostgresUserDataSource{db: db}
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.UserDTO, error) {
	u := &model.UserDTO{}
	var bio, link, image sql.NullString
	err := row.Scan(
		&u.UserID, &u.Email, &u.Fullname, &u.Username, &bio, &link, &image,
		&u.FollowersCount, &u.FollowingCount,
		pq.Array(&u.Followers), pq.Array(&u.Following), &u.IsPrivateProfile,
	)
	if err != nil {
		return nil, err
	}
	u.Bio = nullStringPtr(bio)
	u.Link = nullStringPtr(link)
	u.ProfileImageURL = nullStringPtr(image)
	return u, nil
}

func scanUsers(rows *sql.Rows) ([]model.UserDTO, error) {
	defer rows.Close()

	users := []model.UserDTO{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// GetUserByID は指定IDのユーザーを取得する。
func (d *PostgresUserDataSource) GetUserByID(ctx context.Context, userID string) (*model.UserDTO, error) {
	u, err := scanUser(d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return u, nil
}

// GetUserByIDList は指定ID群のユーザーを引数の順序で返す。
func (d *PostgresUserDataSource) GetUserByIDList(ctx context.Context, userIDs []string) ([]model.UserDTO, error) {
	if len(userIDs) == 0 {
		return []model.UserDTO{}, nil
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`,
		pq.Array(userIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ID list: %w", err)
	}
	found, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.UserDTO, len(found))
	for _, u := range found {
		byID[u.UserID] = u
	}
	ordered := make([]model.UserDTO, 0, len(found))
	for _, id := range userIDs {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
			delete(byID, id)
		}
	}
	return ordered, nil
}

// CreateUser はユーザーを作成する。
func (d *PostgresUserDataSource) CreateUser(ctx context.Context, data model.CreateUserDTO) (*model.UserDTO, error) {
	u, err := scanUser(d.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, fullname, username)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		data.UserID, data.Email, data.Fullname, data.Username,
	))
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// UpdateUser はプロフィールを更新する。ProfileImageURLがnilの場合は既存の値を維持する。
func (d *PostgresUserDataSource) UpdateUser(ctx context.Context, data model.UpdateUserDTO) (*model.UserDTO, error) {
	u, err := scanUser(d.db.QueryRowContext(ctx,
		`UPDATE users
		 SET fullname = $2, link = $3, is_private_profile = $4, bio = $5,
		     profile_image_url = COALESCE($6, profile_image_url), updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		data.UserID, data.Fullname, data.Link, data.IsPrivateProfile, data.Bio, data.ProfileImageURL,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// GetSuggestions はフォローしていない他ユーザーを新しい順に返す。
func (d *PostgresUserDataSource) GetSuggestions(ctx context.Context, authUserID string, limit int) ([]model.UserDTO, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id <> $1 AND NOT ($1 = ANY(followers))
		 ORDER BY created_at DESC
		 LIMIT $2`,
		authUserID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	return scanUsers(rows)
}

// CheckUsernameAvailability はユーザー名が未使用かどうかを返す。
func (d *PostgresUserDataSource) CheckUsernameAvailability(ctx context.Context, username string) (bool, error) {
	var available bool
	err := d.db.QueryRowContext(ctx,
		`SELECT NOT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1))`,
		username,
	).Scan(&available)
	if err != nil {
		return false, fmt.Errorf("failed to check username availability: %w", err)
	}
	return available, nil
}

// FollowUser はフォロー状態を反転する。両ユーザーの行を同一トランザクションで更新する。
func (d *PostgresUserDataSource) FollowUser(ctx context.Context, authUserID, targetUserID string) (bool, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var following bool
	err = tx.QueryRowContext(ctx,
		`SELECT $1 = ANY(followers) FROM users WHERE id = $2 FOR UPDATE`,
		authUserID, targetUserID,
	).Scan(&following)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to read follow state: %w", err)
	}

	targetQuery := `UPDATE users SET followers = array_append(followers, $1) WHERE id = $2`
	authQuery := `UPDATE users SET following = array_append(following, $1) WHERE id = $2`
	if following {
		targetQuery = `UPDATE users SET followers = array_remove(followers, $1) WHERE id = $2`
		authQuery = `UPDATE users SET following = array_remove(following, $1) WHERE id = $2`
	}

	if _, err := tx.ExecContext(ctx, targetQuery, authUserID, targetUserID); err != nil {
		return false, fmt.Errorf("failed to update followers: %w", err)
	}
	result, err := tx.ExecContext(ctx, authQuery, targetUserID, authUserID)
	if err != nil {
		return false, fmt.Errorf("failed to update following: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return false, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return !following, nil
}

// SearchUsers はユーザー名または氏名の前方一致で検索する。
func (d *PostgresUserDataSource) SearchUsers(ctx context.Context, term string, limit int) ([]model.UserDTO, error) {
	pattern := escapeLike(strings.ToLower(term)) + "%"
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE lower(username) LIKE $1 OR lower(fullname) LIKE $1
		 ORDER BY username ASC
		 LIMIT $2`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return scanUsers(rows)
}

// escapeLike はLIKEパターンのメタ文字をエスケープする。
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// compile-time interface check
var _ UserDataSource = (*PostgresUserDataSource)(nil)
