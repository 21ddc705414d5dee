package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route - live sync progress streaming
	mux.HandleFunc("/ws/stablemates/", s.handleSyncStreamRoutes)

	// API routes - Stablemates
	mux.HandleFunc("/api/stablemates", s.handleStablematesRoute) // GET (list), POST (create)
	mux.HandleFunc("/api/stablemates/", s.handleStablemateRoutes)

	// API routes - Horses
	mux.HandleFunc("/api/horses", s.app.HorseHandler.CreateHorseHandler) // POST (create)
	mux.HandleFunc("/api/horses/", s.handleHorseRoutes)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/scheduler/status", s.app.APIHandler.SchedulerStatusHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleStablematesRoute dispatches the collection endpoint by method
func (s *Server) handleStablematesRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.StablemateHandler.ListStablematesHandler(w, r)
	case http.MethodPost:
		s.app.StablemateHandler.CreateStablemateHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleStablemateRoutes routes /api/stablemates/{id} and subpaths
func (s *Server) handleStablemateRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/stablemates/")
	if path == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	if id == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch sub {
	case "":
		s.app.StablemateHandler.GetStablemateHandler(w, r, id)
	case "horses":
		s.app.StablemateHandler.ListStablemateHorsesHandler(w, r, id)
	case "sync":
		s.app.SyncHandler.StartStablemateSyncHandler(w, r, id)
	case "status":
		s.app.SyncHandler.StablemateStatusHandler(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleHorseRoutes routes /api/horses/{id} and subpaths
func (s *Server) handleHorseRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/horses/")
	if path == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	if id == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch sub {
	case "":
		s.app.HorseHandler.GetHorseHandler(w, r, id)
	case "races":
		s.app.HorseHandler.ListRacesHandler(w, r, id)
	case "registrations":
		s.app.HorseHandler.ListRegistrationsHandler(w, r, id)
	case "gallops":
		s.app.HorseHandler.ListGallopsHandler(w, r, id)
	case "sync":
		s.app.SyncHandler.SyncHorseHandler(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleSyncStreamRoutes routes /ws/stablemates/{id}/sync
func (s *Server) handleSyncStreamRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/ws/stablemates/")
	id, sub, _ := strings.Cut(path, "/")
	if id == "" || sub != "sync" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	s.app.SyncStreamHandler.HandleSyncStream(w, r, id)
}
