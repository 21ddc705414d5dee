package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/common"
	"github.com/safkanlabs/safkan/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db            *BadgerDB
	horses        interfaces.HorseStorage
	raceRecords   interfaces.RaceRecordStorage
	gallopRecords interfaces.GallopRecordStorage
	registrations interfaces.RegistrationStorage
	stablemates   interfaces.StablemateStorage
	logger        arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:            db,
		horses:        NewHorseStorage(db, logger),
		raceRecords:   NewRaceRecordStorage(db, logger),
		gallopRecords: NewGallopRecordStorage(db, logger),
		registrations: NewRegistrationStorage(db, logger),
		stablemates:   NewStablemateStorage(db, logger),
		logger:        logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// Horses returns the horse storage interface
func (m *Manager) Horses() interfaces.HorseStorage {
	return m.horses
}

// RaceRecords returns the race record storage interface
func (m *Manager) RaceRecords() interfaces.RaceRecordStorage {
	return m.raceRecords
}

// GallopRecords returns the gallop record storage interface
func (m *Manager) GallopRecords() interfaces.GallopRecordStorage {
	return m.gallopRecords
}

// Registrations returns the registration storage interface
func (m *Manager) Registrations() interfaces.RegistrationStorage {
	return m.registrations
}

// Stablemates returns the stablemate storage interface
func (m *Manager) Stablemates() interfaces.StablemateStorage {
	return m.stablemates
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
