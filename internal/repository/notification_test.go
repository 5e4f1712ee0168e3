package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/bucket/internal/model"
)

func TestNotificationRepository_CreateAndFetch(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t, "owner", "fan", "other")

	asFan := NewNotificationRepository(store.Notifications(), store.Users(), staticViewer("fan"), Options{})
	if err := asFan.CreateNotification(ctx, "owner", model.NotificationTypeFollow, "New follower", "fan started following you"); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}
	if err := asFan.CreateNotification(ctx, "owner", model.NotificationTypeLike, "New like", "fan liked your update"); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	asOwner := NewNotificationRepository(store.Notifications(), store.Users(), staticViewer("owner"), Options{})
	got, err := asOwner.FetchUserNotifications(ctx, "owner")
	if err != nil {
		t.Fatalf("FetchUserNotifications() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Type != model.NotificationTypeLike || got[1].Type != model.NotificationTypeFollow {
		t.Errorf("types = %v, %v; want like, follow (newest first)", got[0].Type, got[1].Type)
	}
	if got[0].OwnerUser.UserID != "owner" || got[0].ByUser.UserID != "fan" {
		t.Errorf("users = %s/%s", got[0].OwnerUser.UserID, got[0].ByUser.UserID)
	}

	empty, err := asOwner.FetchUserNotifications(ctx, "other")
	if err != nil {
		t.Fatalf("FetchUserNotifications(other) error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("FetchUserNotifications(other) = %v, want empty slice", empty)
	}
}

// TestFetchUserNotifications_SkipsUnresolvedByUser は起点ユーザーを解決できない通知を除外することを検証する。
func TestFetchUserNotifications_SkipsUnresolvedByUser(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t, "owner", "fan")
	for i, by := range []string{"fan", "deleted-user", "fan"} {
		if _, err := store.Notifications().CreateNotification(ctx, model.CreateNotificationDTO{
			ID: by + "-" + string(rune('a'+i)), OwnerUserID: "owner", ByUserID: by, Type: model.NotificationTypeFollow,
		}); err != nil {
			t.Fatalf("CreateNotification() error = %v", err)
		}
	}
	recorder := &recordingJoinRecorder{}
	repo := NewNotificationRepository(store.Notifications(), store.Users(), staticViewer("owner"), Options{Recorder: recorder})

	got, err := repo.FetchUserNotifications(ctx, "owner")
	if err != nil {
		t.Fatalf("FetchUserNotifications() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if recorder.skipped[string(model.DomainNotification)] != 1 {
		t.Errorf("skipped = %v", recorder.skipped)
	}
}

func TestMarkAndDeleteNotification_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t, "owner", "fan")
	if _, err := store.Notifications().CreateNotification(ctx, model.CreateNotificationDTO{
		ID: "n1", OwnerUserID: "owner", ByUserID: "fan", Type: model.NotificationTypeLike,
	}); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	asFan := NewNotificationRepository(store.Notifications(), store.Users(), staticViewer("fan"), Options{})
	if err := asFan.MarkNotificationAsRead(ctx, "n1"); !errors.Is(err, model.ErrNotificationForbidden) {
		t.Errorf("MarkNotificationAsRead() error = %v, want ErrNotificationForbidden", err)
	}
	if err := asFan.DeleteNotification(ctx, "n1"); !errors.Is(err, model.ErrNotificationForbidden) {
		t.Errorf("DeleteNotification() error = %v, want ErrNotificationForbidden", err)
	}

	asOwner := NewNotificationRepository(store.Notifications(), store.Users(), staticViewer("owner"), Options{})
	if err := asOwner.MarkNotificationAsRead(ctx, "n1"); err != nil {
		t.Fatalf("MarkNotificationAsRead() error = %v", err)
	}
	n, err := store.Notifications().GetNotificationByID(ctx, "n1")
	if err != nil || !n.IsRead {
		t.Errorf("notification not marked read: %+v, %v", n, err)
	}
	if err := asOwner.DeleteNotification(ctx, "n1"); err != nil {
		t.Fatalf("DeleteNotification() error = %v", err)
	}
	if err := asOwner.DeleteNotification(ctx, "n1"); !errors.Is(err, model.ErrNotificationNotFound) {
		t.Errorf("second delete error = %v, want ErrNotificationNotFound", err)
	}
}
