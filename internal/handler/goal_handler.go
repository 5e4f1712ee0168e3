package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/usecase"
)

// GoalUseCases は目標ハンドラーが呼び出すユースケース。
type GoalUseCases struct {
	CreateGoal     UseCase[usecase.CreateGoalParams, *model.GoalBO]
	FetchUserGoals UseCase[usecase.FetchUserGoalsParams, []model.GoalBO]
	FetchOwnGoals  QueryUseCase[[]model.GoalBO]
	DeleteGoal     CommandUseCase[usecase.DeleteGoalParams]
}

// GoalHandler は目標のHTTPハンドラー。
type GoalHandler struct {
	useCases GoalUseCases
}

// NewGoalHandler はGoalHandlerを生成する。
func NewGoalHandler(useCases GoalUseCases) *GoalHandler {
	return &GoalHandler{useCases: useCases}
}

// createGoalRequest は目標作成リクエストのボディ。
type createGoalRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// CreateGoal は目標を作成する。
// POST /api/goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.useCases.CreateGoal.Execute(r.Context(), usecase.CreateGoalParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGoalResponse(*goal))
}

// OwnGoals はログインユーザーの目標一覧を返す。
// GET /api/me/goals
func (h *GoalHandler) OwnGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.useCases.FetchOwnGoals.Execute(r.Context())
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponses(goals))
}

// UserGoals はユーザーの目標一覧を返す。
// GET /api/users/{id}/goals
func (h *GoalHandler) UserGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.useCases.FetchUserGoals.Execute(r.Context(), usecase.FetchUserGoalsParams{
		UserID: chi.URLParam(r, "id"),
	})
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponses(goals))
}

// DeleteGoal は目標とその進捗投稿を削除する。
// DELETE /api/goals/{id}
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.useCases.DeleteGoal.Execute(r.Context(), usecase.DeleteGoalParams{
		GoalID: chi.URLParam(r, "id"),
	}); err != nil {
		handleUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
