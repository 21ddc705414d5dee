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

// GallopRecordStorage implements append-only gallop history persistence
type GallopRecordStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewGallopRecordStorage creates a new GallopRecordStorage instance
func NewGallopRecordStorage(db *BadgerDB, logger arbor.ILogger) interfaces.GallopRecordStorage {
	return &GallopRecordStorage{
		db:     db,
		logger: logger,
	}
}

func (s *GallopRecordStorage) FindByHorse(ctx context.Context, horseID string) ([]*models.GallopRecord, error) {
	var records []models.GallopRecord
	err := s.db.Store().Find(&records, badgerhold.Where("HorseID").Eq(horseID).Index("HorseID"))
	if err != nil {
		return nil, fmt.Errorf("failed to find gallop records for horse %s: %w", horseID, err)
	}

	result := make([]*models.GallopRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *GallopRecordStorage) CreateMany(ctx context.Context, records []*models.GallopRecord) (int, error) {
	inserted := 0
	for _, record := range records {
		if record.Key == "" {
			return inserted, fmt.Errorf("gallop record natural key is required")
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now()
		}

		if err := s.db.Store().Insert(record.Key, record); err != nil {
			if err == badgerhold.ErrKeyExists {
				continue
			}
			return inserted, fmt.Errorf("failed to insert gallop record %s: %w", record.Key, err)
		}
		inserted++
	}
	return inserted, nil
}
