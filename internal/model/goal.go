package model

import "time"

// GoalDTO は保存されている目標レコードを表す。
type GoalDTO struct {
	GoalID      string
	UserID      string
	Title       string
	Description *string
	Category    *string
	CreatedAt   time.Time
	UpdateCount int
}

// CreateGoalDTO は目標作成時に保存するフィールド。
// CreatedAtはストア側で付与し、UpdateCountは0で開始する。
type CreateGoalDTO struct {
	GoalID      string
	UserID      string
	Title       string
	Description *string
	Category    *string
}

// GoalBO は所有ユーザーを解決済みの目標を表す。
type GoalBO struct {
	GoalID      string
	Title       string
	Description *string
	Category    *string
	CreatedAt   time.Time
	UpdateCount int
	User        UserBO
}

// CreateGoalBO は目標作成の入力。
type CreateGoalBO struct {
	GoalID      string
	UserID      string
	Title       string
	Description *string
	Category    *string
}
