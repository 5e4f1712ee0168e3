package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/bucket/internal/model"
)

// notificationEmitter はフォローやいいねを起点に通知を作成する。
// 失敗はログに記録するのみで呼び出し元には返さない。
type notificationEmitter struct {
	notifications NotificationRepository
	users         UserProfileRepository
	recorder      NotificationRecorder
}

func newNotificationEmitter(notifications NotificationRepository, users UserProfileRepository, recorder NotificationRecorder) *notificationEmitter {
	if recorder == nil {
		recorder = noopNotificationRecorder{}
	}
	return &notificationEmitter{notifications: notifications, users: users, recorder: recorder}
}

func (e *notificationEmitter) emit(ctx context.Context, actorID, ownerUserID string, notificationType model.NotificationType) {
	if e.notifications == nil {
		return
	}

	name := "Someone"
	if actor, err := e.users.GetUser(ctx, actorID); err == nil {
		name = "@" + actor.Username
	}

	var title, message string
	switch notificationType {
	case model.NotificationTypeLike:
		title = "New like"
		message = name + " liked your progress update"
	default:
		title = "New follower"
		message = name + " started following you"
	}

	if err := e.notifications.CreateNotification(ctx, ownerUserID, notificationType, title, message); err != nil {
		slog.Warn("failed to create notification",
			slog.String("type", string(notificationType)),
			slog.String("owner_user_id", ownerUserID),
			slog.String("by_user_id", actorID),
			slog.String("error", err.Error()),
		)
		return
	}
	e.recorder.RecordNotificationEmitted(string(notificationType))
}

// FetchNotificationsUseCase は閲覧ユーザーの通知を返し、未読の通知を既読にする。
type FetchNotificationsUseCase struct {
	auth          CurrentUserProvider
	notifications NotificationRepository
}

// NewFetchNotificationsUseCase はFetchNotificationsUseCaseを生成する。
func NewFetchNotificationsUseCase(auth CurrentUserProvider, notifications NotificationRepository) *FetchNotificationsUseCase {
	return &FetchNotificationsUseCase{auth: auth, notifications: notifications}
}

// Execute は通知一覧を取得する。
// 返却値のIsReadは取得時点の状態。既読化に1件でも失敗した場合はエラーを返す。
func (uc *FetchNotificationsUseCase) Execute(ctx context.Context) ([]model.NotificationBO, error) {
	userID, err := currentUserID(ctx, uc.auth)
	if err != nil {
		return nil, err
	}
	notifications, err := uc.notifications.FetchUserNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("通知の取得に失敗しました: %w", err)
	}

	for _, n := range notifications {
		if n.IsRead {
			continue
		}
		if err := uc.notifications.MarkNotificationAsRead(ctx, n.ID); err != nil {
			return nil, fmt.Errorf("通知の既読化に失敗しました: %w", err)
		}
	}
	return notifications, nil
}

// NotificationParams は通知を1件指定する入力。
type NotificationParams struct {
	NotificationID string `validate:"required"`
}

// MarkNotificationAsReadUseCase は通知を既読にする。
type MarkNotificationAsReadUseCase struct {
	auth          CurrentUserProvider
	notifications NotificationRepository
}

// NewMarkNotificationAsReadUseCase はMarkNotificationAsReadUseCaseを生成する。
func NewMarkNotificationAsReadUseCase(auth CurrentUserProvider, notifications NotificationRepository) *MarkNotificationAsReadUseCase {
	return &MarkNotificationAsReadUseCase{auth: auth, notifications: notifications}
}

// Execute は通知を既読にする。
func (uc *MarkNotificationAsReadUseCase) Execute(ctx context.Context, params NotificationParams) error {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return err
	}
	if err := validateParams(params); err != nil {
		return err
	}
	if err := uc.notifications.MarkNotificationAsRead(ctx, params.NotificationID); err != nil {
		return fmt.Errorf("通知の既読化に失敗しました: %w", err)
	}
	return nil
}

// DeleteNotificationUseCase は通知を削除する。
type DeleteNotificationUseCase struct {
	auth          CurrentUserProvider
	notifications NotificationRepository
}

// NewDeleteNotificationUseCase はDeleteNotificationUseCaseを生成する。
func NewDeleteNotificationUseCase(auth CurrentUserProvider, notifications NotificationRepository) *DeleteNotificationUseCase {
	return &DeleteNotificationUseCase{auth: auth, notifications: notifications}
}

// Execute は通知を削除する。
func (uc *DeleteNotificationUseCase) Execute(ctx context.Context, params NotificationParams) error {
	if _, err := currentUserID(ctx, uc.auth); err != nil {
		return err
	}
	if err := validateParams(params); err != nil {
		return err
	}
	if err := uc.notifications.DeleteNotification(ctx, params.NotificationID); err != nil {
		return fmt.Errorf("通知の削除に失敗しました: %w", err)
	}
	return nil
}
