package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/common"
	"github.com/safkanlabs/safkan/internal/services/scheduler"
)

type APIHandler struct {
	scheduler *scheduler.Service
	logger    arbor.ILogger
}

func NewAPIHandler(scheduler *scheduler.Service) *APIHandler {
	return &APIHandler{
		scheduler: scheduler,
		logger:    common.GetLogger(),
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.Build,
		"git_commit": common.GitCommit,
	})
}

// HealthHandler returns health check status
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// SchedulerStatusHandler handles GET /api/scheduler/status
func (h *APIHandler) SchedulerStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, h.scheduler.Status())
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
