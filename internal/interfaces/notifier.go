package interfaces

import (
	"context"
)

// RaceResultNotification is the minimal payload handed to the downstream
// notification collaborator after a new race result is stored.
type RaceResultNotification struct {
	HorseID   string `json:"horse_id"`
	HorseName string `json:"horse_name"`
	Summary   string `json:"summary"`
}

// Notifier is the outbound notification collaborator (email, push, etc.
// live behind it, outside this repo). Failures must never fail the
// reconciliation that triggered them.
type Notifier interface {
	NotifyNewRaceResult(ctx context.Context, notification RaceResultNotification) error
}
