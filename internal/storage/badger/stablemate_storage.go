package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// StablemateStorage implements the StablemateStorage interface for Badger
type StablemateStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewStablemateStorage creates a new StablemateStorage instance
func NewStablemateStorage(db *BadgerDB, logger arbor.ILogger) interfaces.StablemateStorage {
	return &StablemateStorage{
		db:     db,
		logger: logger,
	}
}

func (s *StablemateStorage) SaveStablemate(ctx context.Context, stablemate *models.Stablemate) error {
	if stablemate.ID == "" {
		return fmt.Errorf("stablemate ID is required")
	}

	now := time.Now()
	if stablemate.CreatedAt.IsZero() {
		stablemate.CreatedAt = now
	}
	stablemate.UpdatedAt = now
	if stablemate.FetchStatus == "" {
		stablemate.FetchStatus = models.FetchStatusIdle
	}

	if err := s.db.Store().Upsert(stablemate.ID, stablemate); err != nil {
		return fmt.Errorf("failed to save stablemate: %w", err)
	}
	return nil
}

func (s *StablemateStorage) GetStablemate(ctx context.Context, id string) (*models.Stablemate, error) {
	var stablemate models.Stablemate
	if err := s.db.Store().Get(id, &stablemate); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("stablemate %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get stablemate: %w", err)
	}
	return &stablemate, nil
}

func (s *StablemateStorage) ListStablemates(ctx context.Context) ([]*models.Stablemate, error) {
	var stablemates []models.Stablemate
	if err := s.db.Store().Find(&stablemates, nil); err != nil {
		return nil, fmt.Errorf("failed to list stablemates: %w", err)
	}

	result := make([]*models.Stablemate, len(stablemates))
	for i := range stablemates {
		result[i] = &stablemates[i]
	}
	return result, nil
}

// UpdateFetchStatus applies a monotonic state machine transition and
// stamps the start/completion times.
func (s *StablemateStorage) UpdateFetchStatus(ctx context.Context, id string, status models.FetchStatus) error {
	stablemate, err := s.GetStablemate(ctx, id)
	if err != nil {
		return err
	}

	if !stablemate.FetchStatus.CanTransitionTo(status) {
		return fmt.Errorf("illegal fetch status transition %s -> %s for stablemate %s",
			stablemate.FetchStatus, status, id)
	}

	now := time.Now()
	stablemate.FetchStatus = status
	switch status {
	case models.FetchStatusInProgress:
		stablemate.FetchStartedAt = &now
		stablemate.FetchCompletedAt = nil
	case models.FetchStatusCompleted, models.FetchStatusFailed:
		stablemate.FetchCompletedAt = &now
	}
	stablemate.UpdatedAt = now

	if err := s.db.Store().Update(id, stablemate); err != nil {
		return fmt.Errorf("failed to update fetch status: %w", err)
	}
	return nil
}
