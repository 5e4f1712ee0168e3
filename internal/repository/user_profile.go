package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/bucket/internal/datasource"
	"github.com/hitoshi/bucket/internal/mapper"
	"github.com/hitoshi/bucket/internal/model"
)

// UserProfileRepository はユーザープロフィールとフォロー関係を扱う。
type UserProfileRepository struct {
	users  datasource.UserDataSource
	auth   CurrentUserProvider
	opts   Options
	mapper mapper.UserMapper
	create mapper.CreateUserMapper
	update mapper.UpdateUserMapper
}

// NewUserProfileRepository はUserProfileRepositoryを生成する。
func NewUserProfileRepository(users datasource.UserDataSource, auth CurrentUserProvider, opts Options) *UserProfileRepository {
	return &UserProfileRepository{
		users: users,
		auth:  auth,
		opts:  opts.withDefaults(),
	}
}

func (r *UserProfileRepository) mapAll(users []model.UserDTO, viewer string) []model.UserBO {
	result := make([]model.UserBO, 0, len(users))
	for _, u := range users {
		result = append(result, r.mapper.Map(mapper.UserDataInput{UserDTO: u, AuthUserID: viewer}))
	}
	return result
}

// UpdateUser はプロフィールを更新する。
func (r *UserProfileRepository) UpdateUser(ctx context.Context, data model.UpdateUserBO) (*model.UserBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainUserProfile)
	if err != nil {
		return nil, err
	}
	u, err := r.users.UpdateUser(ctx, r.update.Map(data))
	if err != nil {
		return nil, domainError(model.DomainUserProfile, model.KindUpdateProfileFailed, err)
	}
	bo := r.mapper.Map(mapper.UserDataInput{UserDTO: *u, AuthUserID: viewer})
	return &bo, nil
}

// CreateUser はプロフィールを作成する。作成直後は本人を閲覧ユーザーとして変換する。
// ユーザー名が先に使われていた場合はUSERNAME_TAKENを返す。
func (r *UserProfileRepository) CreateUser(ctx context.Context, data model.CreateUserBO) (*model.UserBO, error) {
	u, err := r.users.CreateUser(ctx, r.create.Map(data))
	if errors.Is(err, datasource.ErrConflict) {
		return nil, model.NewDomainError(model.DomainUserProfile, model.KindUsernameTaken, "username %q is already taken", data.Username)
	}
	if err != nil {
		return nil, model.NewDomainError(model.DomainUserProfile, model.KindCreateUserFailed, "%s", err.Error())
	}
	bo := r.mapper.Map(mapper.UserDataInput{UserDTO: *u, AuthUserID: u.UserID})
	return &bo, nil
}

// GetUser は指定ユーザーを閲覧ユーザー基準で返す。
func (r *UserProfileRepository) GetUser(ctx context.Context, userID string) (*model.UserBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainUserProfile)
	if err != nil {
		return nil, err
	}
	u, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domainError(model.DomainUserProfile, model.KindGetUserFailed, err)
	}
	bo := r.mapper.Map(mapper.UserDataInput{UserDTO: *u, AuthUserID: viewer})
	return &bo, nil
}

// GetSuggestions は閲覧ユーザーがフォローしていないユーザーを返す。
func (r *UserProfileRepository) GetSuggestions(ctx context.Context) ([]model.UserBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainUserProfile)
	if err != nil {
		return nil, err
	}
	users, err := r.users.GetSuggestions(ctx, viewer, r.opts.SuggestionLimit)
	if err != nil {
		return nil, model.NewDomainError(model.DomainUserProfile, model.KindSuggestionsFailed, "%s", err.Error())
	}
	return r.mapAll(users, viewer), nil
}

// CheckUsernameAvailability はユーザー名が未使用かどうかを返す。
func (r *UserProfileRepository) CheckUsernameAvailability(ctx context.Context, username string) (bool, error) {
	available, err := r.users.CheckUsernameAvailability(ctx, username)
	if err != nil {
		return false, model.NewDomainError(model.DomainUserProfile, model.KindCheckUsernameFailed, "%s", err.Error())
	}
	return available, nil
}

// FollowUser はフォロー状態を反転し、反転後にフォロー中かどうかを返す。
func (r *UserProfileRepository) FollowUser(ctx context.Context, targetUserID string) (bool, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainUserProfile)
	if err != nil {
		return false, err
	}
	following, err := r.users.FollowUser(ctx, viewer, targetUserID)
	if err != nil {
		return false, domainError(model.DomainUserProfile, model.KindFollowUserFailed, err)
	}
	return following, nil
}

// SearchUsers はユーザー名または氏名の前方一致で検索する。空の検索語は空の結果を返す。
func (r *UserProfileRepository) SearchUsers(ctx context.Context, term string) ([]model.UserBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainUserProfile)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return []model.UserBO{}, nil
	}
	users, err := r.users.SearchUsers(ctx, term, r.opts.SearchLimit)
	if err != nil {
		return nil, model.NewDomainError(model.DomainUserProfile, model.KindSearchUsersFailed, "%s", err.Error())
	}
	return r.mapAll(users, viewer), nil
}

// GetFollowing は指定ユーザーがフォローしているユーザーを返す。
func (r *UserProfileRepository) GetFollowing(ctx context.Context, userID string) ([]model.UserBO, error) {
	return r.connections(ctx, userID, model.KindFollowingFailed, func(u *model.UserDTO) []string { return u.Following })
}

// GetFollowers は指定ユーザーのフォロワーを返す。
func (r *UserProfileRepository) GetFollowers(ctx context.Context, userID string) ([]model.UserBO, error) {
	return r.connections(ctx, userID, model.KindFollowersFailed, func(u *model.UserDTO) []string { return u.Followers })
}

func (r *UserProfileRepository) connections(ctx context.Context, userID string, kind model.ErrorKind, ids func(*model.UserDTO) []string) ([]model.UserBO, error) {
	viewer, err := viewerID(ctx, r.auth, model.DomainUserProfile)
	if err != nil {
		return nil, err
	}
	u, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domainError(model.DomainUserProfile, kind, err)
	}
	list := ids(u)
	if len(list) == 0 {
		return []model.UserBO{}, nil
	}
	users, err := r.users.GetUserByIDList(ctx, list)
	if err != nil {
		return nil, model.NewDomainError(model.DomainUserProfile, kind, "%s", err.Error())
	}
	return r.mapAll(users, viewer), nil
}

// IsNotFound はエラーがいずれかの領域のNOT_FOUNDかどうかを返す。
func IsNotFound(err error) bool {
	var de *model.DomainError
	return errors.As(err, &de) && de.Kind == model.KindNotFound
}
