package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/service"
	"github.com/maumlab/maum/internal/transport/http/middleware"
	"github.com/maumlab/maum/pkg/validator"
)

type MatchingHandler struct {
	matchingService *service.MatchingService
}

func NewMatchingHandler(matchingService *service.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingService: matchingService}
}

// GetCandidates returns prospective matches, distance-filtered when
// ?distanceKm= is given.
func (h *MatchingHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	distanceKm := queryInt(r, "distanceKm", 0)
	limit := queryInt(r, "limit", 0)

	candidates, err := h.matchingService.GetCandidates(r.Context(), userID, distanceKm, limit)
	if err != nil {
		log.Printf("ERROR get candidates: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

func (h *MatchingHandler) RecordAction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var body struct {
		TargetUserID  uuid.UUID `json:"targetUserId"`
		Action        string    `json:"action"`
		MatchScore    int       `json:"matchScore"`
		ViewedProfile bool      `json:"viewedProfile"`
		ViewDuration  *int      `json:"viewDuration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TargetUserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMatchingAction(body.Action); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	history, err := h.matchingService.RecordAction(r.Context(), service.RecordActionInput{
		UserID:        userID,
		TargetUserID:  body.TargetUserID,
		Action:        body.Action,
		MatchScore:    body.MatchScore,
		ViewedProfile: body.ViewedProfile,
		ViewDuration:  body.ViewDuration,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTarget):
			writeError(w, http.StatusBadRequest, "INVALID_TARGET", "Invalid target user")
		case errors.Is(err, service.ErrInvalidAction):
			writeError(w, http.StatusBadRequest, "INVALID_ACTION", "Invalid matching action")
		case errors.Is(err, service.ErrTargetNotFound):
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "Target user not found")
		case errors.Is(err, service.ErrBlocked):
			writeError(w, http.StatusConflict, "BLOCKED", "Cannot interact with this user")
		default:
			log.Printf("ERROR record action: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (h *MatchingHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	activity, err := h.matchingService.GetActivity(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR get activity: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

func (h *MatchingHandler) GetActionUsers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	action := r.URL.Query().Get("action")
	direction := r.URL.Query().Get("direction")
	limit := queryInt(r, "limit", 0)

	users, err := h.matchingService.GetActionUsers(r.Context(), userID, action, direction, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAction):
			writeError(w, http.StatusBadRequest, "INVALID_ACTION", "Invalid matching action")
		case errors.Is(err, service.ErrInvalidDirection):
			writeError(w, http.StatusBadRequest, "INVALID_DIRECTION", "Direction must be sent or received")
		default:
			log.Printf("ERROR get action users: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
