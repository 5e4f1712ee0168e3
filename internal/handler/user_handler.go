package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bucket/internal/auth"
	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/usecase"
)

// UserUseCases はユーザーハンドラーが呼び出すユースケース。
type UserUseCases struct {
	GetUser         UseCase[usecase.GetUserParams, *model.UserBO]
	UpdateUser      UseCase[usecase.UpdateUserParams, *model.UserBO]
	GetSuggestions  QueryUseCase[[]model.UserBO]
	SearchUsers     UseCase[usecase.SearchUsersParams, []model.UserBO]
	FollowUser      UseCase[usecase.FollowUserParams, *usecase.FollowResult]
	FetchConnection UseCase[usecase.FetchUserConnectionsParams, []model.UserBO]
}

// UserHandler はプロフィールとフォロー関係のHTTPハンドラー。
type UserHandler struct {
	useCases UserUseCases
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(useCases UserUseCases) *UserHandler {
	return &UserHandler{useCases: useCases}
}

// updateUserRequest はプロフィール更新リクエストのボディ。
type updateUserRequest struct {
	Fullname         string  `json:"fullname"`
	Bio              *string `json:"bio"`
	Link             *string `json:"link"`
	ProfileImageURL  *string `json:"profile_image_url"`
	IsPrivateProfile bool    `json:"is_private_profile"`
}

// Me はログインユーザーのプロフィールを返す。
// GET /api/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.useCases.GetUser.Execute(r.Context(), usecase.GetUserParams{})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSelfResponse(*user))
}

// UpdateMe はログインユーザーのプロフィールを更新する。
// PUT /api/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.useCases.UpdateUser.Execute(r.Context(), usecase.UpdateUserParams{
		Fullname:         req.Fullname,
		Bio:              req.Bio,
		Link:             req.Link,
		ProfileImageURL:  req.ProfileImageURL,
		IsPrivateProfile: req.IsPrivateProfile,
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSelfResponse(*user))
}

// GetUser はユーザーのプロフィールを返す。
// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	user, err := h.useCases.GetUser.Execute(r.Context(), usecase.GetUserParams{UserID: userID})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	if viewer, ok := auth.UserIDFromContext(r.Context()); ok && viewer == user.UserID {
		writeJSON(w, http.StatusOK, toSelfResponse(*user))
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// Suggestions はフォローしていないユーザーを返す。
// GET /api/users/suggestions
func (h *UserHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	users, err := h.useCases.GetSuggestions.Execute(r.Context())
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponses(users))
}

// Search はユーザー名または氏名の前方一致でユーザーを検索する。
// GET /api/users/search?q=xxx
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.useCases.SearchUsers.Execute(r.Context(), usecase.SearchUsersParams{
		Term: r.URL.Query().Get("q"),
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponses(users))
}

// Follow はフォロー状態を切り替える。
// POST /api/users/{id}/follow
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCases.FollowUser.Execute(r.Context(), usecase.FollowUserParams{
		TargetUserID: chi.URLParam(r, "id"),
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"following": result.Following})
}

// Followers はフォロワー一覧を返す。
// GET /api/users/{id}/followers
func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.connections(w, r, usecase.ConnectionFollowers)
}

// Following はフォロー中のユーザー一覧を返す。
// GET /api/users/{id}/following
func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.connections(w, r, usecase.ConnectionFollowing)
}

func (h *UserHandler) connections(w http.ResponseWriter, r *http.Request, connType usecase.ConnectionType) {
	users, err := h.useCases.FetchConnection.Execute(r.Context(), usecase.FetchUserConnectionsParams{
		UserID: chi.URLParam(r, "id"),
		Type:   connType,
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponses(users))
}
