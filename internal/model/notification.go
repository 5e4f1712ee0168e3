package model

import (
	"strings"
	"time"
)

// NotificationType は通知の種類。
type NotificationType string

const (
	NotificationTypeFollow  NotificationType = "follow"
	NotificationTypeRepost  NotificationType = "repost"
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
)

// ParseNotificationType は保存値を大文字小文字を区別せずにNotificationTypeへ変換する。
// 未知の値はエラーにせずfollowとして扱う。
func ParseNotificationType(s string) NotificationType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "repost":
		return NotificationTypeRepost
	case "like":
		return NotificationTypeLike
	case "comment":
		return NotificationTypeComment
	default:
		return NotificationTypeFollow
	}
}

// NotificationDTO は保存されている通知レコードを表す。
// OwnerUserIDは受信者、ByUserIDは通知の起点となったユーザー。
type NotificationDTO struct {
	ID          string
	Title       string
	Message     string
	OwnerUserID string
	ByUserID    string
	Type        string
	Timestamp   time.Time
	IsRead      bool
}

// CreateNotificationDTO は通知作成時に保存するフィールド。
type CreateNotificationDTO struct {
	ID          string
	Title       string
	Message     string
	OwnerUserID string
	ByUserID    string
	Type        NotificationType
}

// NotificationBO は受信者と起点ユーザーの両方を解決済みの通知。
type NotificationBO struct {
	ID        string
	Title     string
	Message   string
	Type      NotificationType
	Timestamp time.Time
	IsRead    bool
	OwnerUser UserBO
	ByUser    UserBO
}
