// Package datasource はデータ永続化のインターフェースと実装を定義する。
//
// PostgreSQL実装と、テストおよびローカル起動用のインメモリ実装を提供する。
// 見つからない場合はErrNotFound、一意制約違反はErrConflictを返す。
package datasource

import (
	"context"
	"errors"

	"github.com/hitoshi/bucket/internal/model"
)

var (
	// ErrNotFound は対象レコードが存在しないことを表す。
	ErrNotFound = errors.New("record not found")
	// ErrConflict は一意制約に違反したことを表す。
	ErrConflict = errors.New("record already exists")
)

// UserDataSource はユーザーデータの永続化インターフェース。
type UserDataSource interface {
	// GetUserByID は指定IDのユーザーを取得する。
	GetUserByID(ctx context.Context, userID string) (*model.UserDTO, error)

	// GetUserByIDList は指定ID群のユーザーを取得する。
	// 結果は引数の順序に従い、存在しないIDは結果から除外される。
	GetUserByIDList(ctx context.Context, userIDs []string) ([]model.UserDTO, error)

	// CreateUser はユーザーを作成し、作成後のレコードを返す。
	CreateUser(ctx context.Context, data model.CreateUserDTO) (*model.UserDTO, error)

	// UpdateUser はプロフィールを更新し、更新後のレコードを返す。
	UpdateUser(ctx context.Context, data model.UpdateUserDTO) (*model.UserDTO, error)

	// GetSuggestions はauthUserIDがフォローしていない他ユーザーを新しい順に最大limit件返す。
	GetSuggestions(ctx context.Context, authUserID string, limit int) ([]model.UserDTO, error)

	// CheckUsernameAvailability はユーザー名が未使用かどうかを返す。大文字小文字は区別しない。
	CheckUsernameAvailability(ctx context.Context, username string) (bool, error)

	// FollowUser はフォロー状態を反転する。
	// authUserIDのfollowingとtargetUserIDのfollowersを同時に更新し、反転後にフォロー中ならtrueを返す。
	// フォロー数カウンタは更新しない。
	FollowUser(ctx context.Context, authUserID, targetUserID string) (bool, error)

	// SearchUsers はユーザー名または氏名の前方一致でユーザーを検索する。
	SearchUsers(ctx context.Context, term string, limit int) ([]model.UserDTO, error)
}

// GoalDataSource は目標データの永続化インターフェース。
type GoalDataSource interface {
	// UploadGoal は目標を作成し、作成後のレコードを返す。
	UploadGoal(ctx context.Context, data model.CreateGoalDTO) (*model.GoalDTO, error)

	// FetchUserGoals は指定ユーザーの目標を作成日時の降順で返す。
	FetchUserGoals(ctx context.Context, userID string) ([]model.GoalDTO, error)

	// GetGoalByID は指定IDの目標を取得する。
	GetGoalByID(ctx context.Context, goalID string) (*model.GoalDTO, error)

	// DeleteGoal は目標を削除する。紐づく進捗投稿も削除される。
	DeleteGoal(ctx context.Context, goalID string) error

	// IncrementUpdateCount は目標の進捗投稿数を1増やす。
	IncrementUpdateCount(ctx context.Context, goalID string) error
}

// ProgressUpdateDataSource は進捗投稿データの永続化インターフェース。
type ProgressUpdateDataSource interface {
	// UploadUpdate は進捗投稿を作成し、作成後のレコードを返す。
	UploadUpdate(ctx context.Context, data model.CreateProgressUpdateDTO) (*model.ProgressUpdateDTO, error)

	// FetchFeedUpdates は指定ユーザー群の投稿を新しい順に最大limit件返す。
	FetchFeedUpdates(ctx context.Context, userIDs []string, limit int) ([]model.ProgressUpdateDTO, error)

	// FetchUpdatesByGoal は指定目標の投稿を古い順に返す。
	FetchUpdatesByGoal(ctx context.Context, goalID string) ([]model.ProgressUpdateDTO, error)

	// GetUpdateByID は指定IDの投稿を取得する。
	GetUpdateByID(ctx context.Context, updateID string) (*model.ProgressUpdateDTO, error)

	// LikeUpdate はいいね状態を反転する。
	// likedByとlikesを同時に更新し、反転後にいいね済みならtrueを返す。
	LikeUpdate(ctx context.Context, updateID, userID string) (bool, error)
}

// NotificationDataSource は通知データの永続化インターフェース。
type NotificationDataSource interface {
	// FetchUserNotifications は指定ユーザー宛の通知を新しい順に返す。
	FetchUserNotifications(ctx context.Context, userID string) ([]model.NotificationDTO, error)

	// GetNotificationByID は指定IDの通知を取得する。
	GetNotificationByID(ctx context.Context, notificationID string) (*model.NotificationDTO, error)

	// CreateNotification は通知を作成する。
	CreateNotification(ctx context.Context, data model.CreateNotificationDTO) (*model.NotificationDTO, error)

	// MarkNotificationAsRead は通知を既読にする。
	MarkNotificationAsRead(ctx context.Context, notificationID string) error

	// DeleteNotification は通知を削除する。
	DeleteNotification(ctx context.Context, notificationID string) error
}

// CredentialDataSource はログイン資格情報の永続化インターフェース。
type CredentialDataSource interface {
	// CreateCredential は資格情報を作成する。メールアドレスが使用済みの場合はErrConflictを返す。
	CreateCredential(ctx context.Context, cred *model.Credential) error

	// FindCredentialByEmail はメールアドレスで資格情報を検索する。大文字小文字は区別しない。
	FindCredentialByEmail(ctx context.Context, email string) (*model.Credential, error)

	// FindCredentialByUserID はユーザーIDで資格情報を検索する。
	FindCredentialByUserID(ctx context.Context, userID string) (*model.Credential, error)

	// UpdatePasswordHash は現在のハッシュがcurrentHashと一致する場合のみ更新する。
	// 一致しない場合はErrNotFoundを返す。
	UpdatePasswordHash(ctx context.Context, userID, currentHash, newHash string) error

	// DeleteCredential は資格情報を削除する。
	DeleteCredential(ctx context.Context, userID string) error
}

// SessionDataSource はセッションデータの永続化インターフェース。
type SessionDataSource interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合もErrNotFoundを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
