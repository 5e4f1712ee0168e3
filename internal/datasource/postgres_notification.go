package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/bucket/internal/model"
)

const notificationColumns = `id, title, message, owner_user_id, by_user_id, type, "timestamp", is_read`

// PostgresNotificationDataSource はPostgreSQLを使用した通知データソース。
type PostgresNotificationDataSource struct {
	db *sql.DB
}

// NewPostgresNotificationDataSource はPostgresNotificationDataSourceを生成する。
func NewPostgresNotificationDataSource(db *sql.DB) *PostgresNotificationDataSource {
	return &PostgresNotificationDataSource{db: db}
}

func scanNotification(row rowScanner) (*model.NotificationDTO, error) {
	n := &model.NotificationDTO{}
	if err := row.Scan(&n.ID, &n.Title, &n.Message, &n.OwnerUserID, &n.ByUserID, &n.Type, &n.Timestamp, &n.IsRead); err != nil {
		return nil, err
	}
	return n, nil
}

// FetchUserNotifications は指定ユーザー宛の通知を新しい順に返す。
func (d *PostgresNotificationDataSource) FetchUserNotifications(ctx context.Context, userID string) ([]model.NotificationDTO, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE owner_user_id = $1
		 ORDER BY "timestamp" DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user notifications: %w", err)
	}
	defer rows.Close()

	notifications := []model.NotificationDTO{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// GetNotificationByID は指定IDの通知を取得する。
func (d *PostgresNotificationDataSource) GetNotificationByID(ctx context.Context, notificationID string) (*model.NotificationDTO, error) {
	n, err := scanNotification(d.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`,
		notificationID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification by ID: %w", err)
	}
	return n, nil
}

// CreateNotification は通知を作成する。
func (d *PostgresNotificationDataSource) CreateNotification(ctx context.Context, data model.CreateNotificationDTO) (*model.NotificationDTO, error) {
	n, err := scanNotification(d.db.QueryRowContext(ctx,
		`INSERT INTO notifications (id, title, message, owner_user_id, by_user_id, type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+notificationColumns,
		data.ID, data.Title, data.Message, data.OwnerUserID, data.ByUserID, string(data.Type),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// MarkNotificationAsRead は通知を既読にする。
func (d *PostgresNotificationDataSource) MarkNotificationAsRead(ctx context.Context, notificationID string) error {
	result, err := d.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1`,
		notificationID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return requireAffected(result)
}

// DeleteNotification は通知を削除する。
func (d *PostgresNotificationDataSource) DeleteNotification(ctx context.Context, notificationID string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, notificationID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return requireAffected(result)
}

// compile-time interface check
var _ NotificationDataSource = (*PostgresNotificationDataSource)(nil)
