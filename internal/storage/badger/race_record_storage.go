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

// RaceRecordStorage implements append-only race history persistence.
// The natural key doubles as the badgerhold key, so duplicate inserts
// from overlapping runs surface as ErrKeyExists and are skipped.
type RaceRecordStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRaceRecordStorage creates a new RaceRecordStorage instance
func NewRaceRecordStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RaceRecordStorage {
	return &RaceRecordStorage{
		db:     db,
		logger: logger,
	}
}

func (s *RaceRecordStorage) FindByHorse(ctx context.Context, horseID string) ([]*models.RaceRecord, error) {
	var records []models.RaceRecord
	err := s.db.Store().Find(&records, badgerhold.Where("HorseID").Eq(horseID).Index("HorseID"))
	if err != nil {
		return nil, fmt.Errorf("failed to find race records for horse %s: %w", horseID, err)
	}

	result := make([]*models.RaceRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *RaceRecordStorage) CreateMany(ctx context.Context, records []*models.RaceRecord) (int, error) {
	inserted := 0
	for _, record := range records {
		if record.Key == "" {
			return inserted, fmt.Errorf("race record natural key is required")
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now()
		}

		if err := s.db.Store().Insert(record.Key, record); err != nil {
			if err == badgerhold.ErrKeyExists {
				continue // already observed, history never changes
			}
			return inserted, fmt.Errorf("failed to insert race record %s: %w", record.Key, err)
		}
		inserted++
	}
	return inserted, nil
}
