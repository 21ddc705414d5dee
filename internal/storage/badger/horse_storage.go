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

// HorseStorage implements the HorseStorage interface for Badger
type HorseStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHorseStorage creates a new HorseStorage instance
func NewHorseStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HorseStorage {
	return &HorseStorage{
		db:     db,
		logger: logger,
	}
}

func (s *HorseStorage) SaveHorse(ctx context.Context, horse *models.Horse) error {
	if horse.ID == "" {
		return fmt.Errorf("horse ID is required")
	}

	now := time.Now()
	if horse.CreatedAt.IsZero() {
		horse.CreatedAt = now
	}
	horse.UpdatedAt = now

	// External reference is immutable once set
	if existing, err := s.GetHorse(ctx, horse.ID); err == nil && existing.Imported() {
		if horse.ExternalRef == nil || *horse.ExternalRef != *existing.ExternalRef {
			return fmt.Errorf("external reference of horse %s cannot be changed", horse.ID)
		}
	}

	if err := s.db.Store().Upsert(horse.ID, horse); err != nil {
		return fmt.Errorf("failed to save horse: %w", err)
	}
	return nil
}

func (s *HorseStorage) GetHorse(ctx context.Context, id string) (*models.Horse, error) {
	var horse models.Horse
	if err := s.db.Store().Get(id, &horse); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("horse %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get horse: %w", err)
	}
	return &horse, nil
}

func (s *HorseStorage) ListByStablemate(ctx context.Context, stablemateID string) ([]*models.Horse, error) {
	var horses []models.Horse
	err := s.db.Store().Find(&horses, badgerhold.Where("StablemateID").Eq(stablemateID).Index("StablemateID"))
	if err != nil {
		return nil, fmt.Errorf("failed to list horses for stablemate %s: %w", stablemateID, err)
	}

	result := make([]*models.Horse, len(horses))
	for i := range horses {
		result[i] = &horses[i]
	}
	return result, nil
}

// UpdateSummary overwrites the summary snapshot and stamps the fetch time.
// Identity fields are left untouched; this is the reconciliation engine's
// only write path into Horse.
func (s *HorseStorage) UpdateSummary(ctx context.Context, horseID string, summary models.HorseSummary) error {
	horse, err := s.GetHorse(ctx, horseID)
	if err != nil {
		return err
	}

	now := time.Now()
	summary.LastFetchedAt = &now
	summary.LastFetchError = ""
	horse.Summary = summary
	horse.UpdatedAt = now

	if err := s.db.Store().Update(horseID, horse); err != nil {
		return fmt.Errorf("failed to update horse summary: %w", err)
	}
	return nil
}

// RecordFetchError stores the error string on the horse without touching
// the prior summary values or the last successful fetch timestamp.
func (s *HorseStorage) RecordFetchError(ctx context.Context, horseID string, message string) error {
	horse, err := s.GetHorse(ctx, horseID)
	if err != nil {
		return err
	}

	horse.Summary.LastFetchError = message
	horse.UpdatedAt = time.Now()

	if err := s.db.Store().Update(horseID, horse); err != nil {
		return fmt.Errorf("failed to record fetch error: %w", err)
	}
	return nil
}

func (s *HorseStorage) DeleteHorse(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Horse{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete horse: %w", err)
	}
	return nil
}
