package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/service"
	"github.com/maumlab/maum/internal/transport/http/middleware"
	"github.com/maumlab/maum/pkg/validator"
)

type LocationHandler struct {
	locationService *service.LocationService
}

func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

type locationAreaBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	Radius    int     `json:"radius"`
	IsPrimary bool    `json:"isPrimary"`
}

func (b locationAreaBody) toInput() service.LocationAreaInput {
	return service.LocationAreaInput{
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
		Address:   b.Address,
		Radius:    b.Radius,
		IsPrimary: b.IsPrimary,
	}
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var body locationAreaBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateLocationArea(body.Address, body.Radius, body.Latitude, body.Longitude); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	area, err := h.locationService.CreateArea(r.Context(), userID, body.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAreas):
			writeError(w, http.StatusBadRequest, "TOO_MANY_AREAS", "Maximum 2 location areas allowed")
		case errors.Is(err, service.ErrInvalidRadius):
			writeError(w, http.StatusBadRequest, "INVALID_RADIUS", "Radius must be 10, 20, 30 or 40 km")
		default:
			log.Printf("ERROR create location area: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, area)
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	areas, err := h.locationService.ListAreas(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list location areas: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"areas": areas})
}

// Verify re-confirms the user is physically inside a saved area.
func (h *LocationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	areaID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid area ID")
		return
	}

	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateCoordinates(body.Latitude, body.Longitude); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	area, err := h.locationService.VerifyArea(r.Context(), areaID, userID, body.Latitude, body.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAreaNotFound):
			writeError(w, http.StatusNotFound, "AREA_NOT_FOUND", "Location area not found")
		case errors.Is(err, service.ErrTooFarAway):
			writeError(w, http.StatusBadRequest, "TOO_FAR_AWAY", "Current location is outside the saved area")
		default:
			log.Printf("ERROR verify location area: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, area)
}

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	areaID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid area ID")
		return
	}

	var body locationAreaBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateLocationArea(body.Address, body.Radius, body.Latitude, body.Longitude); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	area, err := h.locationService.UpdateArea(r.Context(), areaID, userID, body.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAreaNotFound):
			writeError(w, http.StatusNotFound, "AREA_NOT_FOUND", "Location area not found")
		case errors.Is(err, service.ErrInvalidRadius):
			writeError(w, http.StatusBadRequest, "INVALID_RADIUS", "Radius must be 10, 20, 30 or 40 km")
		default:
			log.Printf("ERROR update location area: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, area)
}

func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	areaID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid area ID")
		return
	}

	if err := h.locationService.DeleteArea(r.Context(), areaID, userID); err != nil {
		if errors.Is(err, service.ErrAreaNotFound) {
			writeError(w, http.StatusNotFound, "AREA_NOT_FOUND", "Location area not found")
		} else {
			log.Printf("ERROR delete location area: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
