package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/common"
	"github.com/safkanlabs/safkan/internal/handlers"
	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/services/events"
	"github.com/safkanlabs/safkan/internal/services/scheduler"
	"github.com/safkanlabs/safkan/internal/services/sync"
	"github.com/safkanlabs/safkan/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	EventService   interfaces.EventService
	Notifier       interfaces.Notifier
	SyncService    interfaces.SyncService
	Scheduler      *scheduler.Service

	// HTTP handlers
	APIHandler        *handlers.APIHandler
	StablemateHandler *handlers.StablemateHandler
	HorseHandler      *handlers.HorseHandler
	SyncHandler       *handlers.SyncHandler
	SyncStreamHandler *handlers.SyncStreamHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	app.EventService = events.NewService(logger)
	app.Notifier = sync.NewEventNotifier(app.EventService, logger)
	app.SyncService = sync.NewOrchestrator(cfg, app.StorageManager, app.EventService, app.Notifier, logger)
	app.Scheduler = scheduler.NewService(cfg, app.SyncService, logger)

	app.APIHandler = handlers.NewAPIHandler(app.Scheduler)
	app.StablemateHandler = handlers.NewStablemateHandler(app.StorageManager, logger)
	app.HorseHandler = handlers.NewHorseHandler(app.StorageManager, logger)
	app.SyncHandler = handlers.NewSyncHandler(app.SyncService, app.StorageManager, logger)
	app.SyncStreamHandler = handlers.NewSyncStreamHandler(app.SyncService, logger)

	logger.Info().
		Str("environment", cfg.Environment).
		Str("badger_path", cfg.Storage.Badger.Path).
		Msg("Application initialized")

	return app, nil
}

// Start starts background services
func (a *App) Start() error {
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// Close shuts down all services and releases resources
func (a *App) Close(ctx context.Context) error {
	if err := a.Scheduler.Stop(); err != nil {
		a.Logger.Warn().Err(err).Msg("Scheduler stop failed")
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Event service close failed")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application stopped")
	return nil
}
