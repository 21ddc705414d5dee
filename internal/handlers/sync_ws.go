package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// SyncStreamHandler streams live progress of a stablemate sync over a
// websocket. Each processed horse produces one progress frame; the
// connection ends with a single terminal frame carrying the run result.
type SyncStreamHandler struct {
	syncService interfaces.SyncService
	logger      arbor.ILogger
}

type wsFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type syncDoneFrame struct {
	Done    bool                        `json:"done"`
	Results *interfaces.RunResult       `json:"results,omitempty"`
	Errors  []interfaces.HorseSyncError `json:"errors,omitempty"`
	Error   string                      `json:"error,omitempty"`
}

// NewSyncStreamHandler creates a sync stream handler
func NewSyncStreamHandler(syncService interfaces.SyncService, logger arbor.ILogger) *SyncStreamHandler {
	return &SyncStreamHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// HandleSyncStream handles GET /ws/stablemates/{id}/sync. The sync runs
// on the request context, so a client that disconnects cancels the run.
func (h *SyncStreamHandler) HandleSyncStream(w http.ResponseWriter, r *http.Request, stablemateID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	// Serializes writes between the progress callback and the reader
	// drain goroutine below.
	var writeMu sync.Mutex
	writeFrame := func(frame wsFrame) error {
		data, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	// Drain client messages so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	opts := interfaces.SyncOptions{
		Progress: func(event interfaces.ProgressEvent) {
			if err := writeFrame(wsFrame{Type: "progress", Payload: event}); err != nil {
				h.logger.Warn().Err(err).Str("stablemate_id", stablemateID).Msg("Failed to send progress frame")
			}
		},
	}

	result, err := h.syncService.SyncStablemate(r.Context(), stablemateID, opts)

	done := syncDoneFrame{Done: true, Results: result}
	if result != nil {
		done.Errors = result.Errors
	}
	if err != nil {
		done.Error = err.Error()
	}

	if err := writeFrame(wsFrame{Type: "done", Payload: done}); err != nil {
		h.logger.Warn().Err(err).Str("stablemate_id", stablemateID).Msg("Failed to send terminal frame")
	}

	writeMu.Lock()
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	writeMu.Unlock()
}
