package model

import "time"

// ProgressUpdateDTO は保存されている進捗投稿レコードを表す。
// LikedByが正、Likesは非正規化カウンタ。
type ProgressUpdateDTO struct {
	UpdateID  string
	GoalID    string
	UserID    string
	Content   string
	ImageURL  *string
	Timestamp time.Time
	LikedBy   []string
	Likes     int
}

// CreateProgressUpdateDTO は進捗投稿作成時に保存するフィールド。
// Timestampはストア側で付与し、Likesは0、LikedByは空で開始する。
type CreateProgressUpdateDTO struct {
	UpdateID string
	GoalID   string
	UserID   string
	Content  string
	ImageURL *string
}

// ProgressUpdateBO は投稿者を解決済みで、閲覧ユーザーのいいね状態を含む進捗投稿。
type ProgressUpdateBO struct {
	UpdateID          string
	GoalID            string
	Content           string
	ImageURL          *string
	Timestamp         time.Time
	LikedBy           []string
	Likes             int
	IsLikedByAuthUser bool
	User              UserBO
}

// CreateProgressUpdateBO は進捗投稿作成の入力。
type CreateProgressUpdateBO struct {
	UpdateID string
	GoalID   string
	UserID   string
	Content  string
	ImageURL *string
}
