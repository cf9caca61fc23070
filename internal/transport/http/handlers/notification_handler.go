package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/maumlab/maum/internal/service"
	"github.com/maumlab/maum/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the user's notifications, newest first. ?types= is a
// comma-separated filter.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var types []string
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	limit := queryInt(r, "limit", 0)

	notifications, err := h.notificationService.List(r.Context(), userID, types, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidNotificationType) {
			writeError(w, http.StatusBadRequest, "INVALID_TYPE", "Invalid notification type")
		} else {
			log.Printf("ERROR list notifications: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}
