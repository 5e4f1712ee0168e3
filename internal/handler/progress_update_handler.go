package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/usecase"
)

// ProgressUpdateUseCases は進捗投稿ハンドラーが呼び出すユースケース。
type ProgressUpdateUseCases struct {
	CreateUpdate UseCase[usecase.CreateProgressUpdateParams, *model.ProgressUpdateBO]
	FetchByGoal  UseCase[usecase.FetchProgressUpdatesByGoalParams, []model.ProgressUpdateBO]
	FetchFeed    QueryUseCase[[]model.ProgressUpdateBO]
	LikeUpdate   UseCase[usecase.LikeProgressUpdateParams, *usecase.LikeResult]
}

// ProgressUpdateHandler は進捗投稿とフィードのHTTPハンドラー。
type ProgressUpdateHandler struct {
	useCases ProgressUpdateUseCases
}

// NewProgressUpdateHandler はProgressUpdateHandlerを生成する。
func NewProgressUpdateHandler(useCases ProgressUpdateUseCases) *ProgressUpdateHandler {
	return &ProgressUpdateHandler{useCases: useCases}
}

// createProgressUpdateRequest は進捗投稿リクエストのボディ。
// 画像は外部でホストされたURLを受け取る。
type createProgressUpdateRequest struct {
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url"`
}

// likeResponse はいいね切り替えのAPIレスポンス。
type likeResponse struct {
	Liked  bool                   `json:"liked"`
	Update progressUpdateResponse `json:"update"`
}

// CreateUpdate は目標に進捗を投稿する。
// POST /api/goals/{id}/updates
func (h *ProgressUpdateHandler) CreateUpdate(w http.ResponseWriter, r *http.Request) {
	var req createProgressUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	update, err := h.useCases.CreateUpdate.Execute(r.Context(), usecase.CreateProgressUpdateParams{
		GoalID:   chi.URLParam(r, "id"),
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProgressUpdateResponse(*update))
}

// ListByGoal は目標の進捗投稿を新しい順に返す。
// GET /api/goals/{id}/updates
func (h *ProgressUpdateHandler) ListByGoal(w http.ResponseWriter, r *http.Request) {
	updates, err := h.useCases.FetchByGoal.Execute(r.Context(), usecase.FetchProgressUpdatesByGoalParams{
		GoalID: chi.URLParam(r, "id"),
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressUpdateResponses(updates))
}

// Feed はログインユーザーのフィードを返す。
// GET /api/feed
func (h *ProgressUpdateHandler) Feed(w http.ResponseWriter, r *http.Request) {
	updates, err := h.useCases.FetchFeed.Execute(r.Context())
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressUpdateResponses(updates))
}

// Like はいいねを切り替える。
// POST /api/updates/{id}/like
func (h *ProgressUpdateHandler) Like(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCases.LikeUpdate.Execute(r.Context(), usecase.LikeProgressUpdateParams{
		UpdateID: chi.URLParam(r, "id"),
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likeResponse{
		Liked:  result.Liked,
		Update: toProgressUpdateResponse(*result.Update),
	})
}
