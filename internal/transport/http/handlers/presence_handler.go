package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/cache"
)

type PresenceHandler struct {
	presence *cache.PresenceStore
}

func NewPresenceHandler(presence *cache.PresenceStore) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// GetStatus reports a user's online status from the presence cache.
func (h *PresenceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	status, err := h.presence.GetStatus(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR get status: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"userId": userID.String(),
		"status": status,
	})
}
