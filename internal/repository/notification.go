package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hitoshi/bucket/internal/datasource"
	"github.com/hitoshi/bucket/internal/mapper"
	"github.com/hitoshi/bucket/internal/model"
)

// NotificationRepository は通知の取得・既読化・削除・発行を扱う。
type NotificationRepository struct {
	notifications datasource.NotificationDataSource
	users         datasource.UserDataSource
	auth          CurrentUserProvider
	opts          Options
	mapper        mapper.NotificationMapper
}

// NewNotificationRepository はNotificationRepositoryを生成する。
func NewNotificationRepository(
	notifications datasource.NotificationDataSource,
	users datasource.UserDataSource,
	auth CurrentUserProvider,
	opts Options,
) *NotificationRepository {
	return &NotificationRepository{
		notifications: notifications,
		users:         users,
		auth:          auth,
		opts:          opts.withDefaults(),
	}
}

// FetchUserNotifications は指定ユーザー宛の通知を新しい順に返す。
// 受信者と起点ユーザーのどちらかを解決できない通知は除外する。
func (r *NotificationRepository) FetchUserNotifications(ctx context.Context, userID string) ([]model.NotificationBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainNotification)
	if err != nil {
		return nil, err
	}
	notifications, err := r.notifications.FetchUserNotifications(ctx, userID)
	if err != nil {
		return nil, model.NewDomainError(model.DomainNotification, model.KindFetchFailed, "%s", err.Error())
	}

	resolver := newUserResolver(r.users, r.opts, model.DomainNotification)
	ids := make([]string, 0, len(notifications)*2)
	for _, n := range notifications {
		ids = append(ids, n.OwnerUserID, n.ByUserID)
	}
	resolver.prefetch(ctx, ids)

	result := make([]model.NotificationBO, 0, len(notifications))
	for _, n := range notifications {
		owner, ok := resolver.get(n.OwnerUserID)
		if !ok {
			resolver.skip(n.ID, n.OwnerUserID)
			continue
		}
		by, ok := resolver.get(n.ByUserID)
		if !ok {
			resolver.skip(n.ID, n.ByUserID)
			continue
		}
		result = append(result, r.mapper.Map(mapper.NotificationDataInput{
			NotificationDTO: n,
			OwnerUserDTO:    owner,
			ByUserDTO:       by,
			AuthUserID:      viewer,
		}))
	}
	return result, nil
}

// MarkNotificationAsRead は通知を既読にする。受信者以外は操作できない。
func (r *NotificationRepository) MarkNotificationAsRead(ctx context.Context, notificationID string) error {
	if err := r.requireOwner(ctx, notificationID, model.KindMarkAsReadFailed); err != nil {
		return err
	}
	if err := r.notifications.MarkNotificationAsRead(ctx, notificationID); err != nil {
		return domainError(model.DomainNotification, model.KindMarkAsReadFailed, err)
	}
	return nil
}

// DeleteNotification は通知を削除する。受信者以外は操作できない。
func (r *NotificationRepository) DeleteNotification(ctx context.Context, notificationID string) error {
	if err := r.requireOwner(ctx, notificationID, model.KindDeleteFailed); err != nil {
		return err
	}
	if err := r.notifications.DeleteNotification(ctx, notificationID); err != nil {
		return domainError(model.DomainNotification, model.KindDeleteFailed, err)
	}
	return nil
}

func (r *NotificationRepository) requireOwner(ctx context.Context, notificationID string, kind model.ErrorKind) error {
	viewer, err := viewerID(ctx, r.auth, model.DomainNotification)
	if err != nil {
		return err
	}
	n, err := r.notifications.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return domainError(model.DomainNotification, kind, err)
	}
	if n.OwnerUserID != viewer {
		return model.NewDomainError(model.DomainNotification, model.KindForbidden, "notification belongs to another user")
	}
	return nil
}

// CreateNotification は閲覧ユーザーを起点とする通知をownerUserID宛に作成する。
func (r *NotificationRepository) CreateNotification(ctx context.Context, ownerUserID string, notificationType model.NotificationType, title, message string) error {
	viewer, err := viewerID(ctx, r.auth, model.DomainNotification)
	if err != nil {
		return err
	}
	_, err = r.notifications.CreateNotification(ctx, model.CreateNotificationDTO{
		ID:          uuid.New().String(),
		Title:       title,
		Message:     message,
		OwnerUserID: ownerUserID,
		ByUserID:    viewer,
		Type:        notificationType,
	})
	if err != nil {
		return model.NewDomainError(model.DomainNotification, model.KindUnknown, "%s", err.Error())
	}
	return nil
}
