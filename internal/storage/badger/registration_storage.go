package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// RegistrationStorage implements pending race entry persistence.
// Rows carry a surrogate id because they are updated and deleted in
// place, but the natural key holds a unique index so overlapping runs
// cannot insert the same entry twice.
type RegistrationStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRegistrationStorage creates a new RegistrationStorage instance
func NewRegistrationStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RegistrationStorage {
	return &RegistrationStorage{
		db:     db,
		logger: logger,
	}
}

func (s *RegistrationStorage) FindByHorse(ctx context.Context, horseID string) ([]*models.Registration, error) {
	var registrations []models.Registration
	err := s.db.Store().Find(&registrations, badgerhold.Where("HorseID").Eq(horseID).Index("HorseID"))
	if err != nil {
		return nil, fmt.Errorf("failed to find registrations for horse %s: %w", horseID, err)
	}

	result := make([]*models.Registration, len(registrations))
	for i := range registrations {
		result[i] = &registrations[i]
	}
	return result, nil
}

func (s *RegistrationStorage) CreateMany(ctx context.Context, registrations []*models.Registration) (int, error) {
	inserted := 0
	for _, registration := range registrations {
		if registration.Key == "" {
			return inserted, fmt.Errorf("registration natural key is required")
		}
		if registration.ID == "" {
			registration.ID = "reg_" + uuid.New().String()
		}
		now := time.Now()
		if registration.CreatedAt.IsZero() {
			registration.CreatedAt = now
		}
		registration.UpdatedAt = now

		if err := s.db.Store().Insert(registration.ID, registration); err != nil {
			if err == badgerhold.ErrKeyExists || err == badgerhold.ErrUniqueExists {
				continue // another run won the race for this natural key
			}
			return inserted, fmt.Errorf("failed to insert registration %s: %w", registration.Key, err)
		}
		inserted++
	}
	return inserted, nil
}

func (s *RegistrationStorage) Update(ctx context.Context, registration *models.Registration) error {
	if registration.ID == "" {
		return fmt.Errorf("registration ID is required")
	}

	registration.UpdatedAt = time.Now()

	if err := s.db.Store().Update(registration.ID, registration); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("registration %s: %w", registration.ID, interfaces.ErrNotFound)
		}
		return fmt.Errorf("failed to update registration: %w", err)
	}
	return nil
}

func (s *RegistrationStorage) DeleteMany(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		if err := s.db.Store().Delete(id, &models.Registration{}); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			return deleted, fmt.Errorf("failed to delete registration %s: %w", id, err)
		}
		deleted++
	}
	return deleted, nil
}
