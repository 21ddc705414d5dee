package interfaces

import (
	"context"
	"errors"

	"github.com/safkanlabs/safkan/internal/models"
)

// ErrStatusUpdateUnsupported is returned by storage implementations whose
// schema does not carry the stablemate fetch-status fields yet. Callers
// swallow it with a log line; a missing status column must never fail a run.
var ErrStatusUpdateUnsupported = errors.New("storage does not support fetch status updates")

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// HorseStorage persists horse identity and summary snapshots.
// Summary fields are written only by the reconciliation engine,
// identity fields only by user actions; the two never share a write.
type HorseStorage interface {
	SaveHorse(ctx context.Context, horse *models.Horse) error
	GetHorse(ctx context.Context, id string) (*models.Horse, error)
	ListByStablemate(ctx context.Context, stablemateID string) ([]*models.Horse, error)
	UpdateSummary(ctx context.Context, horseID string, summary models.HorseSummary) error
	RecordFetchError(ctx context.Context, horseID string, message string) error
	DeleteHorse(ctx context.Context, id string) error
}

// RaceRecordStorage holds append-only race history keyed by natural key
type RaceRecordStorage interface {
	FindByHorse(ctx context.Context, horseID string) ([]*models.RaceRecord, error)
	// CreateMany inserts rows, skipping any whose natural key already
	// exists, and returns the number actually inserted.
	CreateMany(ctx context.Context, records []*models.RaceRecord) (int, error)
}

// GallopRecordStorage holds append-only gallop history keyed by natural key
type GallopRecordStorage interface {
	FindByHorse(ctx context.Context, horseID string) ([]*models.GallopRecord, error)
	CreateMany(ctx context.Context, records []*models.GallopRecord) (int, error)
}

// RegistrationStorage holds pending race entries. Registrations are the
// only mutable record type: full-sync reconciliation inserts, updates in
// place, and deletes.
type RegistrationStorage interface {
	FindByHorse(ctx context.Context, horseID string) ([]*models.Registration, error)
	CreateMany(ctx context.Context, registrations []*models.Registration) (int, error)
	Update(ctx context.Context, registration *models.Registration) error
	DeleteMany(ctx context.Context, ids []string) (int, error)
}

// StablemateStorage persists stablemates and their fetch-status state machine
type StablemateStorage interface {
	SaveStablemate(ctx context.Context, stablemate *models.Stablemate) error
	GetStablemate(ctx context.Context, id string) (*models.Stablemate, error)
	ListStablemates(ctx context.Context) ([]*models.Stablemate, error)
	// UpdateFetchStatus applies a status transition. Illegal transitions
	// (see models.FetchStatus.CanTransitionTo) are rejected.
	UpdateFetchStatus(ctx context.Context, id string, status models.FetchStatus) error
}

// StorageManager bundles the per-record-type storages behind one handle
type StorageManager interface {
	Horses() HorseStorage
	RaceRecords() RaceRecordStorage
	GallopRecords() GallopRecordStorage
	Registrations() RegistrationStorage
	Stablemates() StablemateStorage
	Close() error
}
