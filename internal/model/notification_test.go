package model

import "testing"

// TestParseNotificationType は大文字小文字を区別せずに種類を判定し、未知の値はfollowになることを検証する。
func TestParseNotificationType(t *testing.T) {
	tests := []struct {
		in   string
		want NotificationType
	}{
		{"follow", NotificationTypeFollow},
		{"FOLLOW", NotificationTypeFollow},
		{"like", NotificationTypeLike},
		{"Like", NotificationTypeLike},
		{"REPOST", NotificationTypeRepost},
		{"comment", NotificationTypeComment},
		{" comment ", NotificationTypeComment},
		{"bogus", NotificationTypeFollow},
		{"", NotificationTypeFollow},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseNotificationType(tt.in); got != tt.want {
				t.Errorf("ParseNotificationType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
