package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/common"
	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// HorseHandler exposes a single horse and its accumulated records.
type HorseHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewHorseHandler creates a horse handler
func NewHorseHandler(storage interfaces.StorageManager, logger arbor.ILogger) *HorseHandler {
	return &HorseHandler{
		storage: storage,
		logger:  logger,
	}
}

type createHorseRequest struct {
	StablemateID string  `json:"stablemate_id"`
	Name         string  `json:"name"`
	ExternalRef  *string `json:"external_ref,omitempty"`
	YearOfBirth  int     `json:"year_of_birth,omitempty"`
	Retired      bool    `json:"retired,omitempty"`
}

// CreateHorseHandler handles POST /api/horses
func (h *HorseHandler) CreateHorseHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req createHorseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.StablemateID == "" {
		WriteError(w, http.StatusBadRequest, "stablemate_id is required")
		return
	}

	if _, err := h.storage.Stablemates().GetStablemate(r.Context(), req.StablemateID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "stablemate not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now()
	horse := &models.Horse{
		ID:           common.NewHorseID(),
		StablemateID: req.StablemateID,
		Name:         req.Name,
		ExternalRef:  req.ExternalRef,
		YearOfBirth:  req.YearOfBirth,
		Retired:      req.Retired,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.storage.Horses().SaveHorse(r.Context(), horse); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save horse")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Str("horse_id", horse.ID).Str("name", horse.Name).Msg("Horse created")
	WriteJSON(w, http.StatusCreated, horse)
}

// GetHorseHandler handles GET /api/horses/{id}
func (h *HorseHandler) GetHorseHandler(w http.ResponseWriter, r *http.Request, horseID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	horse, err := h.storage.Horses().GetHorse(r.Context(), horseID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "horse not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, horse)
}

// ListRacesHandler handles GET /api/horses/{id}/races
func (h *HorseHandler) ListRacesHandler(w http.ResponseWriter, r *http.Request, horseID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if !h.horseExists(w, r, horseID) {
		return
	}

	races, err := h.storage.RaceRecords().FindByHorse(r.Context(), horseID)
	if err != nil {
		h.logger.Error().Err(err).Str("horse_id", horseID).Msg("Failed to list race records")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"races": races,
		"count": len(races),
	})
}

// ListRegistrationsHandler handles GET /api/horses/{id}/registrations
func (h *HorseHandler) ListRegistrationsHandler(w http.ResponseWriter, r *http.Request, horseID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if !h.horseExists(w, r, horseID) {
		return
	}

	registrations, err := h.storage.Registrations().FindByHorse(r.Context(), horseID)
	if err != nil {
		h.logger.Error().Err(err).Str("horse_id", horseID).Msg("Failed to list registrations")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"registrations": registrations,
		"count":         len(registrations),
	})
}

// ListGallopsHandler handles GET /api/horses/{id}/gallops
func (h *HorseHandler) ListGallopsHandler(w http.ResponseWriter, r *http.Request, horseID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if !h.horseExists(w, r, horseID) {
		return
	}

	gallops, err := h.storage.GallopRecords().FindByHorse(r.Context(), horseID)
	if err != nil {
		h.logger.Error().Err(err).Str("horse_id", horseID).Msg("Failed to list gallop records")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"gallops": gallops,
		"count":   len(gallops),
	})
}

func (h *HorseHandler) horseExists(w http.ResponseWriter, r *http.Request, horseID string) bool {
	if _, err := h.storage.Horses().GetHorse(r.Context(), horseID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "horse not found")
			return false
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return false
	}
	return true
}
