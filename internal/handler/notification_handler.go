package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bucket/internal/model"
	"github.com/hitoshi/bucket/internal/usecase"
)

// NotificationUseCases は通知ハンドラーが呼び出すユースケース。
type NotificationUseCases struct {
	FetchNotifications QueryUseCase[[]model.NotificationBO]
	MarkAsRead         CommandUseCase[usecase.NotificationParams]
	DeleteNotification CommandUseCase[usecase.NotificationParams]
}

// NotificationHandler は通知のHTTPハンドラー。
type NotificationHandler struct {
	useCases NotificationUseCases
}

// NewNotificationHandler はNotificationHandlerを生成する。
func NewNotificationHandler(useCases NotificationUseCases) *NotificationHandler {
	return &NotificationHandler{useCases: useCases}
}

// List はログインユーザーの通知を返す。未読の通知は取得時に既読になる。
// GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.useCases.FetchNotifications.Execute(r.Context())
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNotificationResponses(notifications))
}

// MarkAsRead は通知を既読にする。
// PUT /api/notifications/{id}/read
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.useCases.MarkAsRead.Execute(r.Context(), usecase.NotificationParams{
		NotificationID: chi.URLParam(r, "id"),
	}); err != nil {
		handleUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete は通知を削除する。
// DELETE /api/notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.useCases.DeleteNotification.Execute(r.Context(), usecase.NotificationParams{
		NotificationID: chi.URLParam(r, "id"),
	}); err != nil {
		handleUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
