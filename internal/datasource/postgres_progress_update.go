package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/bucket/internal/model"
	"github.com/lib/pq"
)

const updateColumns = `id, goal_id, user_id, content, image_url, "timestamp", liked_by, likes`

// PostgresProgressUpdateDataSource はPostgreSQLを使用した進捗投稿データソース。
type PostgresProgressUpdateDataSource struct {
	db *sql.DB
}

// NewPostgresProgressUpdateDataSource はPostgresProgressUpdateDataSourceを生成する。
func NewPostgresProgressUpdateDataSource(db *sql.DB) *PostgresProgressUpdateDataSource {
	return &PostgresProgressUpdateDataSource{db: db}
}

func scanUpdate(row rowScanner) (*model.ProgressUpdateDTO, error) {
	p := &model.ProgressUpdateDTO{}
	var image sql.NullString
	if err := row.Scan(&p.UpdateID, &p.GoalID, &p.UserID, &p.Content, &image, &p.Timestamp, pq.Array(&p.LikedBy), &p.Likes); err != nil {
		return nil, err
	}
	p.ImageURL = nullStringPtr(image)
	return p, nil
}

func (d *PostgresProgressUpdateDataSource) queryUpdates(ctx context.Context, query string, args ...any) ([]model.ProgressUpdateDTO, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updates := []model.ProgressUpdateDTO{}
	for rows.Next() {
		p, err := scanUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress update: %w", err)
		}
		updates = append(updates, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress updates: %w", err)
	}
	return updates, nil
}

// UploadUpdate は進捗投稿を作成する。timestampはDB側で付与する。
func (d *PostgresProgressUpdateDataSource) UploadUpdate(ctx context.Context, data model.CreateProgressUpdateDTO) (*model.ProgressUpdateDTO, error) {
	p, err := scanUpdate(d.db.QueryRowContext(ctx,
		`INSERT INTO progress_updates (id, goal_id, user_id, content, image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+updateColumns,
		data.UpdateID, data.GoalID, data.UserID, data.Content, data.ImageURL,
	))
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload progress update: %w", err)
	}
	return p, nil
}

// FetchFeedUpdates は指定ユーザー群の投稿を新しい順に最大limit件返す。
func (d *PostgresProgressUpdateDataSource) FetchFeedUpdates(ctx context.Context, userIDs []string, limit int) ([]model.ProgressUpdateDTO, error) {
	if len(userIDs) == 0 {
		return []model.ProgressUpdateDTO{}, nil
	}
	updates, err := d.queryUpdates(ctx,
		`SELECT `+updateColumns+` FROM progress_updates
		 WHERE user_id = ANY($1)
		 ORDER BY "timestamp" DESC
		 LIMIT $2`,
		pq.Array(userIDs), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed updates: %w", err)
	}
	return updates, nil
}

// FetchUpdatesByGoal は指定目標の投稿を古い順に返す。
func (d *PostgresProgressUpdateDataSource) FetchUpdatesByGoal(ctx context.Context, goalID string) ([]model.ProgressUpdateDTO, error) {
	updates, err := d.queryUpdates(ctx,
		`SELECT `+updateColumns+` FROM progress_updates
		 WHERE goal_id = $1
		 ORDER BY "timestamp" ASC`,
		goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goal updates: %w", err)
	}
	return updates, nil
}

// GetUpdateByID は指定IDの投稿を取得する。
func (d *PostgresProgressUpdateDataSource) GetUpdateByID(ctx context.Context, updateID string) (*model.ProgressUpdateDTO, error) {
	p, err := scanUpdate(d.db.QueryRowContext(ctx,
		`SELECT `+updateColumns+` FROM progress_updates WHERE id = $1`,
		updateID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress update by ID: %w", err)
	}
	return p, nil
}

// LikeUpdate はいいね状態を反転する。
// SET句は更新前の値、RETURNING句は更新後の値を参照する。
func (d *PostgresProgressUpdateDataSource) LikeUpdate(ctx context.Context, updateID, userID string) (bool, error) {
	var liked bool
	err := d.db.QueryRowContext(ctx,
		`UPDATE progress_updates
		 SET liked_by = CASE WHEN $2::text = ANY(liked_by) THEN array_remove(liked_by, $2::text) ELSE array_append(liked_by, $2::text) END,
		     likes    = CASE WHEN $2::text = ANY(liked_by) THEN likes - 1 ELSE likes + 1 END
		 WHERE id = $1
		 RETURNING $2::text = ANY(liked_by)`,
		updateID, userID,
	).Scan(&liked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

// compile-time interface check
var _ ProgressUpdateDataSource = (*PostgresProgressUpdateDataSource)(nil)
