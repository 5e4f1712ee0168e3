// Package mapper はDTOとBOの相互変換を提供する。
//
// すべてのマッパーは副作用を持たない純粋な変換で、エラーを返さない。
// 閲覧ユーザーに依存する派生フィールドは、入力に含まれるAuthUserIDから計算する。
package mapper

import (
	"slices"

	"github.com/hitoshi/bucket/internal/model"
)

// Mapper は入力Inを出力Outに変換する。
type Mapper[In, Out any] interface {
	Map(in In) Out
}

// UserDataInput はUserMapperの入力。
type UserDataInput struct {
	UserDTO    model.UserDTO
	AuthUserID string
}

// GoalDataInput はGoalMapperの入力。
type GoalDataInput struct {
	GoalDTO    model.GoalDTO
	UserDTO    model.UserDTO
	AuthUserID string
}

// ProgressUpdateDataInput はProgressUpdateMapperの入力。
type ProgressUpdateDataInput struct {
	UpdateDTO  model.ProgressUpdateDTO
	UserDTO    model.UserDTO
	AuthUserID string
}

// NotificationDataInput はNotificationMapperの入力。
type NotificationDataInput struct {
	NotificationDTO model.NotificationDTO
	OwnerUserDTO    model.UserDTO
	ByUserDTO       model.UserDTO
	AuthUserID      string
}

// UserMapper はUserDTOをUserBOに変換する。
type UserMapper struct{}

// Map はIsFollowedByAuthUserをFollowersにAuthUserIDが含まれるかで決定する。
func (UserMapper) Map(in UserDataInput) model.UserBO {
	u := in.UserDTO
	return model.UserBO{
		UserID:               u.UserID,
		Email:                u.Email,
		Fullname:             u.Fullname,
		Username:             u.Username,
		Bio:                  u.Bio,
		Link:                 u.Link,
		ProfileImageURL:      u.ProfileImageURL,
		FollowersCount:       u.FollowersCount,
		FollowingCount:       u.FollowingCount,
		Followers:            cloneIDs(u.Followers),
		Following:            cloneIDs(u.Following),
		IsPrivateProfile:     u.IsPrivateProfile,
		IsFollowedByAuthUser: slices.Contains(u.Followers, in.AuthUserID),
	}
}

// GoalMapper はGoalDTOと所有ユーザーをGoalBOに変換する。
type GoalMapper struct {
	Users UserMapper
}

// Map はGoalBOを生成する。
func (m GoalMapper) Map(in GoalDataInput) model.GoalBO {
	g := in.GoalDTO
	return model.GoalBO{
		GoalID:      g.GoalID,
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
		CreatedAt:   g.CreatedAt,
		UpdateCount: g.UpdateCount,
		User:        m.Users.Map(UserDataInput{UserDTO: in.UserDTO, AuthUserID: in.AuthUserID}),
	}
}

// ProgressUpdateMapper はProgressUpdateDTOと投稿者をProgressUpdateBOに変換する。
type ProgressUpdateMapper struct {
	Users UserMapper
}

// Map はProgressUpdateBOを生成する。Likesは再計算せずそのまま引き継ぐ。
func (m ProgressUpdateMapper) Map(in ProgressUpdateDataInput) model.ProgressUpdateBO {
	p := in.UpdateDTO
	return model.ProgressUpdateBO{
		UpdateID:          p.UpdateID,
		GoalID:            p.GoalID,
		Content:           p.Content,
		ImageURL:          p.ImageURL,
		Timestamp:         p.Timestamp,
		LikedBy:           cloneIDs(p.LikedBy),
		Likes:             p.Likes,
		IsLikedByAuthUser: slices.Contains(p.LikedBy, in.AuthUserID),
		User:              m.Users.Map(UserDataInput{UserDTO: in.UserDTO, AuthUserID: in.AuthUserID}),
	}
}

// NotificationMapper はNotificationDTOと受信者・起点ユーザーをNotificationBOに変換する。
type NotificationMapper struct {
	Users UserMapper
}

// Map はNotificationBOを生成する。2人のユーザーは同じAuthUserIDで個別に変換する。
func (m NotificationMapper) Map(in NotificationDataInput) model.NotificationBO {
	n := in.NotificationDTO
	return model.NotificationBO{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      model.ParseNotificationType(n.Type),
		Timestamp: n.Timestamp,
		IsRead:    n.IsRead,
		OwnerUser: m.Users.Map(UserDataInput{UserDTO: in.OwnerUserDTO, AuthUserID: in.AuthUserID}),
		ByUser:    m.Users.Map(UserDataInput{UserDTO: in.ByUserDTO, AuthUserID: in.AuthUserID}),
	}
}

// CreateGoalMapper はCreateGoalBOをCreateGoalDTOに変換する。
type CreateGoalMapper struct{}

func (CreateGoalMapper) Map(in model.CreateGoalBO) model.CreateGoalDTO {
	return model.CreateGoalDTO{
		GoalID:      in.GoalID,
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
	}
}

// CreateProgressUpdateMapper はCreateProgressUpdateBOをCreateProgressUpdateDTOに変換する。
type CreateProgressUpdateMapper struct{}

func (CreateProgressUpdateMapper) Map(in model.CreateProgressUpdateBO) model.CreateProgressUpdateDTO {
	return model.CreateProgressUpdateDTO{
		UpdateID: in.UpdateID,
		GoalID:   in.GoalID,
		UserID:   in.UserID,
		Content:  in.Content,
		ImageURL: in.ImageURL,
	}
}

// CreateUserMapper はCreateUserBOをCreateUserDTOに変換する。
type CreateUserMapper struct{}

func (CreateUserMapper) Map(in model.CreateUserBO) model.CreateUserDTO {
	return model.CreateUserDTO{
		UserID:   in.UserID,
		Email:    in.Email,
		Fullname: in.Fullname,
		Username: in.Username,
	}
}

// UpdateUserMapper はUpdateUserBOをUpdateUserDTOに変換する。
type UpdateUserMapper struct{}

func (UpdateUserMapper) Map(in model.UpdateUserBO) model.UpdateUserDTO {
	return model.UpdateUserDTO{
		UserID:           in.UserID,
		Fullname:         in.Fullname,
		Link:             in.Link,
		IsPrivateProfile: in.IsPrivateProfile,
		Bio:              in.Bio,
		ProfileImageURL:  in.ProfileImageURL,
	}
}

// cloneIDs はBOがDTOのスライスを共有しないように複製する。nilは空スライスにする。
func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}

var _ Mapper[UserDataInput, model.UserBO] = UserMapper{}
var _ Mapper[GoalDataInput, model.GoalBO] = GoalMapper{}
var _ Mapper[ProgressUpdateDataInput, model.ProgressUpdateBO] = ProgressUpdateMapper{}
var _ Mapper[NotificationDataInput, model.NotificationBO] = NotificationMapper{}
var _ Mapper[model.CreateGoalBO, model.CreateGoalDTO] = CreateGoalMapper{}
var _ Mapper[model.CreateProgressUpdateBO, model.CreateProgressUpdateDTO] = CreateProgressUpdateMapper{}
var _ Mapper[model.CreateUserBO, model.CreateUserDTO] = CreateUserMapper{}
var _ Mapper[model.UpdateUserBO, model.UpdateUserDTO] = UpdateUserMapper{}
