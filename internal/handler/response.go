package handler

import (
	"time"

	"github.com/hitoshi/bucket/internal/model"
)

// userResponse はユーザーのAPIレスポンス。メールアドレスは本人向けのレスポンスにのみ含める。
type userResponse struct {
	UserID               string   `json:"user_id"`
	Email                string   `json:"email,omitempty"`
	Fullname             string   `json:"fullname"`
	Username             string   `json:"username"`
	Bio                  *string  `json:"bio"`
	Link                 *string  `json:"link"`
	ProfileImageURL      *string  `json:"profile_image_url"`
	FollowersCount       int      `json:"followers_count"`
	FollowingCount       int      `json:"following_count"`
	Followers            []string `json:"followers"`
	Following            []string `json:"following"`
	IsPrivateProfile     bool     `json:"is_private_profile"`
	IsFollowedByAuthUser bool     `json:"is_followed_by_auth_user"`
}

// goalResponse は目標のAPIレスポンス。
type goalResponse struct {
	GoalID      string       `json:"goal_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdateCount int          `json:"update_count"`
	User        userResponse `json:"user"`
}

// progressUpdateResponse は進捗投稿のAPIレスポンス。
type progressUpdateResponse struct {
	UpdateID          string       `json:"update_id"`
	GoalID            string       `json:"goal_id"`
	Content           string       `json:"content"`
	ImageURL          *string      `json:"image_url"`
	Timestamp         time.Time    `json:"timestamp"`
	LikedBy           []string     `json:"liked_by"`
	Likes             int          `json:"likes"`
	IsLikedByAuthUser bool         `json:"is_liked_by_auth_user"`
	User              userResponse `json:"user"`
}

// notificationResponse は通知のAPIレスポンス。
type notificationResponse struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	IsRead    bool         `json:"is_read"`
	OwnerUser userResponse `json:"owner_user"`
	ByUser    userResponse `json:"by_user"`
}

// authResponse はサインイン・サインアップのAPIレスポンス。
// Cookieを使わないクライアントはtokenをBearerとして送る。
type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

// --- 変換 ---

func toUserResponse(u model.UserBO) userResponse {
	return userResponse{
		UserID:               u.UserID,
		Fullname:             u.Fullname,
		Username:             u.Username,
		Bio:                  u.Bio,
		Link:                 u.Link,
		ProfileImageURL:      u.ProfileImageURL,
		FollowersCount:       u.FollowersCount,
		FollowingCount:       u.FollowingCount,
		Followers:            nonNil(u.Followers),
		Following:            nonNil(u.Following),
		IsPrivateProfile:     u.IsPrivateProfile,
		IsFollowedByAuthUser: u.IsFollowedByAuthUser,
	}
}

// toSelfResponse は本人向けにメールアドレスを含めて変換する。
func toSelfResponse(u model.UserBO) userResponse {
	resp := toUserResponse(u)
	resp.Email = u.Email
	return resp
}

func toUserResponses(users []model.UserBO) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toGoalResponse(g model.GoalBO) goalResponse {
	return goalResponse{
		GoalID:      g.GoalID,
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
		CreatedAt:   g.CreatedAt,
		UpdateCount: g.UpdateCount,
		User:        toUserResponse(g.User),
	}
}

func toGoalResponses(goals []model.GoalBO) []goalResponse {
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	return out
}

func toProgressUpdateResponse(u model.ProgressUpdateBO) progressUpdateResponse {
	return progressUpdateResponse{
		UpdateID:          u.UpdateID,
		GoalID:            u.GoalID,
		Content:           u.Content,
		ImageURL:          u.ImageURL,
		Timestamp:         u.Timestamp,
		LikedBy:           nonNil(u.LikedBy),
		Likes:             u.Likes,
		IsLikedByAuthUser: u.IsLikedByAuthUser,
		User:              toUserResponse(u.User),
	}
}

func toProgressUpdateResponses(updates []model.ProgressUpdateBO) []progressUpdateResponse {
	out := make([]progressUpdateResponse, 0, len(updates))
	for _, u := range updates {
		out = append(out, toProgressUpdateResponse(u))
	}
	return out
}

func toNotificationResponses(notifications []model.NotificationBO) []notificationResponse {
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Type),
			Timestamp: n.Timestamp,
			IsRead:    n.IsRead,
			OwnerUser: toUserResponse(n.OwnerUser),
			ByUser:    toUserResponse(n.ByUser),
		})
	}
	return out
}

// nonNil はJSONでnullではなく[]を返すための変換。
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
