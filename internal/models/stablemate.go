package models

import (
	"time"
)

// FetchStatus represents the state of a stablemate's import run.
// Transitions are monotonic: Idle -> InProgress -> Completed | Failed.
// A new run moves a terminal state back through InProgress, never
// directly between terminal states.
type FetchStatus string

const (
	FetchStatusIdle       FetchStatus = "IDLE"
	FetchStatusInProgress FetchStatus = "IN_PROGRESS"
	FetchStatusCompleted  FetchStatus = "COMPLETED"
	FetchStatusFailed     FetchStatus = "FAILED"
)

// CanTransitionTo reports whether moving to the given status is legal.
// IN_PROGRESS is never skipped on the way to a terminal state.
func (s FetchStatus) CanTransitionTo(next FetchStatus) bool {
	switch s {
	case FetchStatusIdle, FetchStatusCompleted, FetchStatusFailed:
		return next == FetchStatusInProgress
	case FetchStatusInProgress:
		return next == FetchStatusCompleted || next == FetchStatusFailed
	case "":
		// Unset status on a freshly created stablemate behaves as IDLE
		return next == FetchStatusInProgress
	}
	return false
}

// IsTerminal reports whether the status is a run end state
func (s FetchStatus) IsTerminal() bool {
	return s == FetchStatusCompleted || s == FetchStatusFailed
}

// Stablemate is the tenant grouping a batch of horses belongs to and
// the unit at which fetch status is tracked for the polling client.
type Stablemate struct {
	ID        string    `json:"id" badgerhold:"key"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Transient import state machine, consumed by the UI poller
	FetchStatus      FetchStatus `json:"fetch_status"`
	FetchStartedAt   *time.Time  `json:"fetch_started_at,omitempty"`
	FetchCompletedAt *time.Time  `json:"fetch_completed_at,omitempty"`
}
