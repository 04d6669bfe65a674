package handler

import (
	"net/http"

	"github.com/technix/fittrack/internal/ctxkeys"
	"github.com/technix/fittrack/internal/service"
)

type notificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *notificationHandler {
	return &notificationHandler{notificationService: notificationService}
}

func (h *notificationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	notifications, err := h.notificationService.List(principal)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"notifications": notifications,
	})
}

func (h *notificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	notification, err := h.notificationService.MarkRead(r.PathValue("id"), principal)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"notification": notification,
	})
}

func (h *notificationHandler) ClearRead(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	count, err := h.notificationService.ClearRead(principal)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Read notifications cleared",
		"count":   count,
	})
}
