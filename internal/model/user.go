// Package model はドメインモデルを定義する。
//
// DTOは永続化層に保存されるレコードの形、BOは閲覧ユーザー（viewer）から見た
// 派生フィールドを含むアプリケーション層の表現を表す。
package model

import "time"

// UserDTO は保存されているユーザーレコードを表す。
// Followers/Followingが関係の正とし、FollowersCount/FollowingCountは非正規化カウンタとして扱う。
type UserDTO struct {
	UserID           string
	Email            string
	Fullname         string
	Username         string
	Bio              *string
	Link             *string
	ProfileImageURL  *string
	FollowersCount   int
	FollowingCount   int
	Followers        []string
	Following        []string
	IsPrivateProfile bool
}

// CreateUserDTO はユーザー作成時に保存するフィールド。
type CreateUserDTO struct {
	UserID   string
	Email    string
	Fullname string
	Username string
}

// UpdateUserDTO はプロフィール更新時に保存するフィールド。
// ProfileImageURLがnilの場合は既存の値を維持する。
type UpdateUserDTO struct {
	UserID           string
	Fullname         string
	Link             *string
	IsPrivateProfile bool
	Bio              *string
	ProfileImageURL  *string
}

// UserBO は閲覧ユーザーから見たユーザーを表す。
type UserBO struct {
	UserID               string
	Email                string
	Fullname             string
	Username             string
	Bio                  *string
	Link                 *string
	ProfileImageURL      *string
	FollowersCount       int
	FollowingCount       int
	Followers            []string
	Following            []string
	IsPrivateProfile     bool
	IsFollowedByAuthUser bool
}

// CreateUserBO はユーザー作成の入力。
type CreateUserBO struct {
	UserID   string
	Email    string
	Fullname string
	Username string
}

// UpdateUserBO はプロフィール更新の入力。
type UpdateUserBO struct {
	UserID           string
	Fullname         string
	Bio              *string
	Link             *string
	ProfileImageURL  *string
	IsPrivateProfile bool
}

// Credential はメールアドレスとパスワードハッシュの組を表す。
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
