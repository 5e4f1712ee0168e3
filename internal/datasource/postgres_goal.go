package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/bucket/internal/model"
)

const goalColumns = `id, user_id, title, description, category, created_at, update_count`

// PostgresGoalDataSource はPostgreSQLを使用した目標データソース。
type PostgresGoalDataSource struct {
	db *sql.DB
}

// NewPostgresGoalDataSource はPostgresGoalDataSourceを生成する。
func NewPostgresGoalDataSource(db *sql.DB) *PostgresGoalDataSource {
	return &PostgresGoalDataSource{db: db}
}

func scanGoal(row rowScanner) (*model.GoalDTO, error) {
	g := &model.GoalDTO{}
	var description, category sql.NullString
	if err := row.Scan(&g.GoalID, &g.UserID, &g.Title, &description, &category, &g.CreatedAt, &g.UpdateCount); err != nil {
		return nil, err
	}
	g.Description = nullStringPtr(description)
	g.Category = nullStringPtr(category)
	return g, nil
}

// UploadGoal は目標を作成する。created_atはDB側で付与する。
func (d *PostgresGoalDataSource) UploadGoal(ctx context.Context, data model.CreateGoalDTO) (*model.GoalDTO, error) {
	g, err := scanGoal(d.db.QueryRowContext(ctx,
		`INSERT INTO goals (id, user_id, title, description, category)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+goalColumns,
		data.GoalID, data.UserID, data.Title, data.Description, data.Category,
	))
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload goal: %w", err)
	}
	return g, nil
}

// FetchUserGoals は指定ユーザーの目標を作成日時の降順で返す。
func (d *PostgresGoalDataSource) FetchUserGoals(ctx context.Context, userID string) ([]model.GoalDTO, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user goals: %w", err)
	}
	defer rows.Close()

	goals := []model.GoalDTO{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	return goals, nil
}

// GetGoalByID は指定IDの目標を取得する。
func (d *PostgresGoalDataSource) GetGoalByID(ctx context.Context, goalID string) (*model.GoalDTO, error) {
	g, err := scanGoal(d.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = $1`,
		goalID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal by ID: %w", err)
	}
	return g, nil
}

// DeleteGoal は目標を削除する。progress_updatesはON DELETE CASCADEで削除される。
func (d *PostgresGoalDataSource) DeleteGoal(ctx context.Context, goalID string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, goalID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return requireAffected(result)
}

// IncrementUpdateCount は目標のupdate_countを1増やす。
func (d *PostgresGoalDataSource) IncrementUpdateCount(ctx context.Context, goalID string) error {
	result, err := d.db.ExecContext(ctx,
		`UPDATE goals SET update_count = update_count + 1 WHERE id = $1`,
		goalID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment update count: %w", err)
	}
	return requireAffected(result)
}

// requireAffected は更新対象が0件の場合にErrNotFoundを返す。
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ GoalDataSource = (*PostgresGoalDataSource)(nil)
