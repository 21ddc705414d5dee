package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/common"
	"github.com/safkanlabs/safkan/internal/interfaces"
)

// Service runs the nightly batch on a cron schedule. There is no
// in-process deduplication against interactive runs: overlapping runs
// are safe because every write is keyed by natural key.
type Service struct {
	config      *common.Config
	syncService interfaces.SyncService
	cron        *cron.Cron
	logger      arbor.ILogger

	mu        sync.Mutex
	running   bool
	isSyncing bool
	lastRun   *time.Time
	lastError string
}

// NewService creates a scheduler service
func NewService(config *common.Config, syncService interfaces.SyncService, logger arbor.ILogger) *Service {
	return &Service{
		config:      config,
		syncService: syncService,
		cron:        cron.New(),
		logger:      logger,
	}
}

// Start registers the nightly job and starts the cron loop
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if !s.config.Sync.NightlyEnabled {
		s.logger.Info().Msg("Nightly sync disabled in configuration")
		return nil
	}

	schedule := s.config.Sync.NightlySchedule
	if schedule == "" {
		schedule = "0 3 * * *"
	}

	if _, err := s.cron.AddFunc(schedule, s.runNightly); err != nil {
		return fmt.Errorf("failed to register nightly sync: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().Str("schedule", schedule).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Nightly sync did not finish within shutdown timeout")
	}

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// runNightly executes one batch across all stablemates. A prior batch
// still in flight is not doubled up.
func (s *Service) runNightly() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous nightly sync still running, skipping this tick")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		now := time.Now()
		s.lastRun = &now
		s.mu.Unlock()
	}()

	s.logger.Info().Msg("Nightly sync starting")

	results, err := s.syncService.SyncAll(context.Background())
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		s.logger.Error().Err(err).Msg("Nightly sync failed")
		return
	}

	errorCount := 0
	for _, result := range results {
		errorCount += result.Failed
	}

	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()

	s.logger.Info().
		Int("stablemates", len(results)).
		Int("horse_errors", errorCount).
		Msg("Nightly sync completed")
}

// Status reports the scheduler's state for the status endpoint
func (s *Service) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":    s.running,
		"is_syncing": s.isSyncing,
		"schedule":   s.config.Sync.NightlySchedule,
	}
	if s.lastRun != nil {
		status["last_run"] = s.lastRun.Format(time.RFC3339)
	}
	if s.lastError != "" {
		status["last_error"] = s.lastError
	}
	return status
}
