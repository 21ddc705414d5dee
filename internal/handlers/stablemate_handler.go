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

// StablemateHandler exposes CRUD over stablemates and their horses.
type StablemateHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewStablemateHandler creates a stablemate handler
func NewStablemateHandler(storage interfaces.StorageManager, logger arbor.ILogger) *StablemateHandler {
	return &StablemateHandler{
		storage: storage,
		logger:  logger,
	}
}

type createStablemateRequest struct {
	Name string `json:"name"`
}

// ListStablematesHandler handles GET /api/stablemates
func (h *StablemateHandler) ListStablematesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stablemates, err := h.storage.Stablemates().ListStablemates(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list stablemates")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stablemates": stablemates,
		"count":       len(stablemates),
	})
}

// CreateStablemateHandler handles POST /api/stablemates
func (h *StablemateHandler) CreateStablemateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req createStablemateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now()
	stablemate := &models.Stablemate{
		ID:          common.NewStablemateID(),
		Name:        req.Name,
		FetchStatus: models.FetchStatusIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.storage.Stablemates().SaveStablemate(r.Context(), stablemate); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save stablemate")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Str("stablemate_id", stablemate.ID).Str("name", stablemate.Name).Msg("Stablemate created")
	WriteJSON(w, http.StatusCreated, stablemate)
}

// GetStablemateHandler handles GET /api/stablemates/{id}
func (h *StablemateHandler) GetStablemateHandler(w http.ResponseWriter, r *http.Request, stablemateID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stablemate, err := h.storage.Stablemates().GetStablemate(r.Context(), stablemateID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "stablemate not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, stablemate)
}

// ListStablemateHorsesHandler handles GET /api/stablemates/{id}/horses
func (h *StablemateHandler) ListStablemateHorsesHandler(w http.ResponseWriter, r *http.Request, stablemateID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if _, err := h.storage.Stablemates().GetStablemate(r.Context(), stablemateID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "stablemate not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	horses, err := h.storage.Horses().ListByStablemate(r.Context(), stablemateID)
	if err != nil {
		h.logger.Error().Err(err).Str("stablemate_id", stablemateID).Msg("Failed to list horses")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"horses": horses,
		"count":  len(horses),
	})
}
