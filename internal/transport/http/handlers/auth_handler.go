package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/maumlab/maum/internal/service"
	"github.com/maumlab/maum/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	var input service.OAuthLoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateOAuthLogin(input.Provider, input.ProviderUserID, input.Email); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.OAuthLogin(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrAccountDeleted) {
			writeError(w, http.StatusUnauthorized, "ACCOUNT_DELETED", "This account has been deleted")
		} else {
			log.Printf("ERROR oauth login: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	resp, err := h.authService.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefresh):
			writeError(w, http.StatusUnauthorized, "INVALID_REFRESH", "Invalid or expired refresh token")
		case errors.Is(err, service.ErrAccountDeleted):
			writeError(w, http.StatusUnauthorized, "ACCOUNT_DELETED", "This account has been deleted")
		default:
			log.Printf("ERROR refresh: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}
