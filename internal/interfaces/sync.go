package interfaces

import (
	"context"
	"time"
)

// Delta summarizes the storage writes one reconciliation produced
type Delta struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Deleted  int `json:"deleted"`
}

// Add accumulates another delta into this one
func (d *Delta) Add(other Delta) {
	d.Inserted += other.Inserted
	d.Updated += other.Updated
	d.Deleted += other.Deleted
}

// HorseSyncError attributes a failure to a single horse within a run
type HorseSyncError struct {
	HorseID   string `json:"horse_id"`
	HorseName string `json:"horse_name"`
	Message   string `json:"message"`
}

// ProgressEvent is emitted once per horse as a run advances
type ProgressEvent struct {
	StablemateID string `json:"stablemate_id"`
	Current      int    `json:"current"`
	Total        int    `json:"total"`
	HorseName    string `json:"horse_name"`
	Status       string `json:"status"` // "synced" or "failed"
}

// ProgressFunc receives per-horse progress. A nil ProgressFunc is valid
// and means the caller does not care about intermediate progress.
type ProgressFunc func(event ProgressEvent)

// RunResult is the terminal report of a sync run
type RunResult struct {
	StablemateID  string           `json:"stablemate_id"`
	RunID         string           `json:"run_id"`
	Processed     int              `json:"processed"`
	Succeeded     int              `json:"succeeded"`
	Failed        int              `json:"failed"`
	Races         Delta            `json:"races"`
	Registrations Delta            `json:"registrations"`
	Gallops       Delta            `json:"gallops"`
	Errors        []HorseSyncError `json:"errors"`
	StartedAt     time.Time        `json:"started_at"`
	CompletedAt   time.Time        `json:"completed_at"`
}

// SyncOptions tunes a run
type SyncOptions struct {
	// IncludeRetired forces dead/retired horses into the run. Interactive
	// single-horse fetches set it; the nightly batch does not.
	IncludeRetired bool
	// Progress, when non-nil, is called once per horse
	Progress ProgressFunc
}

// SyncService drives the fetch/parse/reconcile pipeline. All three
// trigger transports (streaming, background, nightly batch) call the
// same implementation so results are identical regardless of trigger.
type SyncService interface {
	SyncStablemate(ctx context.Context, stablemateID string, opts SyncOptions) (*RunResult, error)
	SyncHorse(ctx context.Context, horseID string) (*RunResult, error)
	SyncAll(ctx context.Context) ([]*RunResult, error)
}
