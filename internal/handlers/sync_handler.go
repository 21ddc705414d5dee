package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/interfaces"
)

// SyncHandler exposes the background and interactive sync triggers.
// Both delegate to the same SyncService the websocket stream and the
// nightly batch use.
type SyncHandler struct {
	syncService interfaces.SyncService
	storage     interfaces.StorageManager
	logger      arbor.ILogger
}

// NewSyncHandler creates a sync handler
func NewSyncHandler(syncService interfaces.SyncService, storage interfaces.StorageManager, logger arbor.ILogger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		storage:     storage,
		logger:      logger,
	}
}

// StartStablemateSyncHandler handles POST /api/stablemates/{id}/sync.
// It returns immediately and runs the orchestration detached; clients
// poll /api/stablemates/{id}/status to follow it.
func (h *SyncHandler) StartStablemateSyncHandler(w http.ResponseWriter, r *http.Request, stablemateID string) {
	if !RequireMethod(w, r, http.MethodPost) {
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

	// Detached from the request context: the run outlives the response
	go func() {
		if _, err := h.syncService.SyncStablemate(context.Background(), stablemateID, interfaces.SyncOptions{}); err != nil {
			h.logger.Error().Err(err).Str("stablemate_id", stablemateID).Msg("Background sync failed")
		}
	}()

	WriteStarted(w, "sync started")
}

// SyncHorseHandler handles POST /api/horses/{id}/sync: an interactive
// single-horse fetch, retired horses included.
func (h *SyncHandler) SyncHorseHandler(w http.ResponseWriter, r *http.Request, horseID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	result, err := h.syncService.SyncHorse(r.Context(), horseID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "horse not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// StablemateStatusHandler handles GET /api/stablemates/{id}/status for
// the "is my import still running" poller.
func (h *SyncHandler) StablemateStatusHandler(w http.ResponseWriter, r *http.Request, stablemateID string) {
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

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stablemate_id":      stablemate.ID,
		"fetch_status":       stablemate.FetchStatus,
		"fetch_started_at":   stablemate.FetchStartedAt,
		"fetch_completed_at": stablemate.FetchCompletedAt,
	})
}
