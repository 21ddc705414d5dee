package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/common"
	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
	"github.com/safkanlabs/safkan/internal/services/fetcher"
	"github.com/safkanlabs/safkan/internal/services/parser"
)

// FetcherFactory opens a page fetcher for one run. The browser is a
// scarce resource: one session per run, closed on every exit path.
type FetcherFactory func(ctx context.Context) (interfaces.PageFetcher, error)

// Orchestrator drives fetch -> parse -> reconcile for whole stablemates
// and implements interfaces.SyncService. All three trigger transports
// share this one implementation, so results are identical regardless of
// how a run was started.
type Orchestrator struct {
	config     *common.Config
	storage    interfaces.StorageManager
	events     interfaces.EventService
	reconciler *Reconciler
	parser     *parser.Parser
	newFetcher FetcherFactory
	logger     arbor.ILogger
}

// NewOrchestrator creates the orchestrator with the real browser fetcher
func NewOrchestrator(config *common.Config, storage interfaces.StorageManager, eventService interfaces.EventService, notifier interfaces.Notifier, logger arbor.ILogger) *Orchestrator {
	o := &Orchestrator{
		config:     config,
		storage:    storage,
		events:     eventService,
		reconciler: NewReconciler(storage, notifier, logger),
		parser:     parser.New(logger),
		logger:     logger,
	}
	o.newFetcher = func(ctx context.Context) (interfaces.PageFetcher, error) {
		return fetcher.New(ctx, config.Source, logger)
	}
	return o
}

// WithFetcherFactory overrides how page fetchers are opened
func (o *Orchestrator) WithFetcherFactory(factory FetcherFactory) *Orchestrator {
	o.newFetcher = factory
	return o
}

// SyncStablemate runs a full import for one stablemate. Horses are
// processed sequentially to respect the fetch pacing and reuse the one
// browser session; any per-horse failure is recorded against that horse
// and never aborts its siblings. Only a failure during setup, before
// iteration begins, fails the run itself.
func (o *Orchestrator) SyncStablemate(ctx context.Context, stablemateID string, opts interfaces.SyncOptions) (*interfaces.RunResult, error) {
	result := &interfaces.RunResult{
		StablemateID: stablemateID,
		RunID:        common.NewRunID(),
		StartedAt:    time.Now(),
	}

	o.setStatus(ctx, stablemateID, models.FetchStatusInProgress)

	stablemate, err := o.storage.Stablemates().GetStablemate(ctx, stablemateID)
	if err != nil {
		o.setStatus(ctx, stablemateID, models.FetchStatusFailed)
		return nil, fmt.Errorf("resolving stablemate %s: %w", stablemateID, err)
	}

	horses, err := o.storage.Horses().ListByStablemate(ctx, stablemateID)
	if err != nil {
		o.setStatus(ctx, stablemateID, models.FetchStatusFailed)
		return nil, fmt.Errorf("listing horses for stablemate %s: %w", stablemateID, err)
	}

	eligible := make([]*models.Horse, 0, len(horses))
	for _, horse := range horses {
		if !horse.Imported() {
			continue
		}
		if horse.Retired && !opts.IncludeRetired {
			continue
		}
		eligible = append(eligible, horse)
	}

	pageFetcher, err := o.newFetcher(ctx)
	if err != nil {
		o.setStatus(ctx, stablemateID, models.FetchStatusFailed)
		return nil, fmt.Errorf("opening fetcher: %w", err)
	}
	defer pageFetcher.Close()

	o.logger.Info().
		Str("stablemate_id", stablemateID).
		Str("stablemate", stablemate.Name).
		Int("horses", len(eligible)).
		Str("run_id", result.RunID).
		Msg("Sync run started")

	for i, horse := range eligible {
		result.Processed++

		err := o.syncHorse(ctx, pageFetcher, horse, result)
		status := "synced"
		if err != nil {
			status = "failed"
			result.Failed++
			result.Errors = append(result.Errors, interfaces.HorseSyncError{
				HorseID:   horse.ID,
				HorseName: horse.Name,
				Message:   err.Error(),
			})

			// The error belongs to this horse, visible on its record;
			// the run carries on.
			if recErr := o.storage.Horses().RecordFetchError(ctx, horse.ID, err.Error()); recErr != nil {
				o.logger.Warn().Err(recErr).Str("horse_id", horse.ID).Msg("Failed to record fetch error on horse")
			}
			o.logger.Warn().Err(err).
				Str("horse_id", horse.ID).
				Str("horse", horse.Name).
				Msg("Horse sync failed")
		} else {
			result.Succeeded++
		}

		o.emitProgress(ctx, opts.Progress, interfaces.ProgressEvent{
			StablemateID: stablemateID,
			Current:      i + 1,
			Total:        len(eligible),
			HorseName:    horse.Name,
			Status:       status,
		})
	}

	// Horse-level errors are per-horse information, not a run failure
	o.setStatus(ctx, stablemateID, models.FetchStatusCompleted)

	result.CompletedAt = time.Now()

	o.events.Publish(ctx, interfaces.Event{Type: interfaces.EventSyncCompleted, Payload: result})
	o.logger.Info().
		Str("stablemate_id", stablemateID).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Sync run finished")

	return result, nil
}

// SyncHorse runs an interactive fetch for one horse. Retired horses are
// not skipped here; the user asked for this specific horse.
func (o *Orchestrator) SyncHorse(ctx context.Context, horseID string) (*interfaces.RunResult, error) {
	horse, err := o.storage.Horses().GetHorse(ctx, horseID)
	if err != nil {
		return nil, err
	}
	if !horse.Imported() {
		return nil, fmt.Errorf("horse %s has no external reference", horseID)
	}

	result := &interfaces.RunResult{
		StablemateID: horse.StablemateID,
		RunID:        common.NewRunID(),
		StartedAt:    time.Now(),
		Processed:    1,
	}

	pageFetcher, err := o.newFetcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening fetcher: %w", err)
	}
	defer pageFetcher.Close()

	if err := o.syncHorse(ctx, pageFetcher, horse, result); err != nil {
		result.Failed = 1
		result.Errors = append(result.Errors, interfaces.HorseSyncError{
			HorseID:   horse.ID,
			HorseName: horse.Name,
			Message:   err.Error(),
		})
		if recErr := o.storage.Horses().RecordFetchError(ctx, horse.ID, err.Error()); recErr != nil {
			o.logger.Warn().Err(recErr).Str("horse_id", horse.ID).Msg("Failed to record fetch error on horse")
		}
	} else {
		result.Succeeded = 1
	}

	result.CompletedAt = time.Now()
	return result, nil
}

// SyncAll runs the nightly batch across every stablemate. Individual
// stablemate failures are logged and do not stop the batch; the batch
// log carries only the aggregate error count.
func (o *Orchestrator) SyncAll(ctx context.Context) ([]*interfaces.RunResult, error) {
	stablemates, err := o.storage.Stablemates().ListStablemates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stablemates: %w", err)
	}

	var results []*interfaces.RunResult
	horseErrors := 0
	failedRuns := 0

	for _, stablemate := range stablemates {
		result, err := o.SyncStablemate(ctx, stablemate.ID, interfaces.SyncOptions{})
		if err != nil {
			failedRuns++
			o.logger.Error().Err(err).Str("stablemate_id", stablemate.ID).Msg("Stablemate sync failed")
			continue
		}
		horseErrors += result.Failed
		results = append(results, result)
	}

	o.logger.Info().
		Int("stablemates", len(stablemates)).
		Int("failed_runs", failedRuns).
		Int("horse_errors", horseErrors).
		Msg("Nightly batch finished")

	return results, nil
}

// syncHorse fetches, parses and reconciles every page kind for one
// horse. Schema drift on a page degrades that page to an empty result;
// fetch and storage failures surface as the horse's error. A panic in
// parsing is confined to the horse the same way.
func (o *Orchestrator) syncHorse(ctx context.Context, pageFetcher interfaces.PageFetcher, horse *models.Horse, result *interfaces.RunResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while syncing horse %s: %v", horse.ID, r)
		}
	}()

	externalRef := *horse.ExternalRef

	// Summary and pedigree merge into the horse record itself
	summary, pedigree, err := o.fetchProfile(ctx, pageFetcher, externalRef)
	if err != nil {
		return err
	}
	if summary != nil {
		if err := o.reconciler.ApplySummary(ctx, horse, summary, pedigree); err != nil {
			return err
		}
	}

	// Races: append-only
	races, err := o.parsePageRaces(ctx, pageFetcher, externalRef)
	if err != nil {
		return err
	}
	raceDelta, err := o.reconciler.ReconcileRaces(ctx, horse, races)
	result.Races.Add(raceDelta)
	if err != nil {
		return err
	}

	// Registrations: full sync against one fresh snapshot, never one
	// fetch per comparison
	registrations, err := o.parsePageRegistrations(ctx, pageFetcher, externalRef)
	if err != nil {
		return err
	}
	regDelta, err := o.reconciler.ReconcileRegistrations(ctx, horse, registrations)
	result.Registrations.Add(regDelta)
	if err != nil {
		return err
	}

	// Gallops: append-only
	gallops, err := o.parsePageGallops(ctx, pageFetcher, externalRef)
	if err != nil {
		return err
	}
	gallopDelta, err := o.reconciler.ReconcileGallops(ctx, horse, gallops)
	result.Gallops.Add(gallopDelta)
	if err != nil {
		return err
	}

	return nil
}

// fetchProfile fetches the summary and pedigree pages. Parse trouble
// is best-effort: a drifted profile page leaves the stored summary
// untouched. A hard summary fetch failure is the horse's error, like
// the history pages, so it ends up recorded on the horse; the pedigree
// page is merge-only input and degrades to no change.
func (o *Orchestrator) fetchProfile(ctx context.Context, pageFetcher interfaces.PageFetcher, externalRef string) (*models.HorseSummary, *models.Pedigree, error) {
	page, err := pageFetcher.Fetch(ctx, externalRef, interfaces.PageSummary)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching summary page: %w", err)
	}

	var summary *models.HorseSummary
	if parsed, err := o.parser.ParseSummary(page); err == nil {
		summary = parsed
	} else if !errors.Is(err, parser.ErrSchemaDrift) {
		o.logger.Warn().Err(err).Str("external_ref", externalRef).Msg("Summary parse failed")
	}

	var pedigree *models.Pedigree
	if page, err := pageFetcher.Fetch(ctx, externalRef, interfaces.PagePedigree); err == nil {
		if parsed, err := o.parser.ParsePedigree(page); err == nil {
			pedigree = parsed
		} else if !errors.Is(err, parser.ErrSchemaDrift) {
			o.logger.Warn().Err(err).Str("external_ref", externalRef).Msg("Pedigree parse failed")
		}
	} else {
		o.logger.Warn().Err(err).Str("external_ref", externalRef).Msg("Pedigree fetch failed")
	}

	return summary, pedigree, nil
}

func (o *Orchestrator) parsePageRaces(ctx context.Context, pageFetcher interfaces.PageFetcher, externalRef string) ([]*models.RaceRecord, error) {
	page, err := pageFetcher.Fetch(ctx, externalRef, interfaces.PageRaces)
	if err != nil {
		return nil, err
	}
	records, err := o.parser.ParseRaces(page)
	if errors.Is(err, parser.ErrSchemaDrift) {
		o.logger.Warn().Str("external_ref", externalRef).Msg("Races page drifted, treating as empty")
		return nil, nil
	}
	return records, err
}

func (o *Orchestrator) parsePageRegistrations(ctx context.Context, pageFetcher interfaces.PageFetcher, externalRef string) ([]*models.Registration, error) {
	page, err := pageFetcher.Fetch(ctx, externalRef, interfaces.PageRegistrations)
	if err != nil {
		return nil, err
	}
	registrations, err := o.parser.ParseRegistrations(page)
	if errors.Is(err, parser.ErrSchemaDrift) {
		o.logger.Warn().Str("external_ref", externalRef).Msg("Registrations page drifted, treating as empty")
		return nil, nil
	}
	return registrations, err
}

func (o *Orchestrator) parsePageGallops(ctx context.Context, pageFetcher interfaces.PageFetcher, externalRef string) ([]*models.GallopRecord, error) {
	page, err := pageFetcher.Fetch(ctx, externalRef, interfaces.PageGallops)
	if err != nil {
		return nil, err
	}
	records, err := o.parser.ParseGallops(page)
	if errors.Is(err, parser.ErrSchemaDrift) {
		o.logger.Warn().Str("external_ref", externalRef).Msg("Gallops page drifted, treating as empty")
		return nil, nil
	}
	return records, err
}

// setStatus applies a fetch-status transition, swallowing failures: a
// storage schema that cannot hold the status must never fail a run.
func (o *Orchestrator) setStatus(ctx context.Context, stablemateID string, status models.FetchStatus) {
	err := o.storage.Stablemates().UpdateFetchStatus(ctx, stablemateID, status)
	if err == nil {
		o.events.Publish(ctx, interfaces.Event{
			Type: interfaces.EventStatusChanged,
			Payload: map[string]interface{}{
				"stablemate_id": stablemateID,
				"status":        string(status),
			},
		})
		return
	}

	if errors.Is(err, interfaces.ErrStatusUpdateUnsupported) {
		o.logger.Info().Str("stablemate_id", stablemateID).Msg("Fetch status not supported by storage, skipping update")
		return
	}
	o.logger.Warn().Err(err).
		Str("stablemate_id", stablemateID).
		Str("status", string(status)).
		Msg("Fetch status update failed")
}

// emitProgress forwards a progress event to the run's callback and the
// event bus.
func (o *Orchestrator) emitProgress(ctx context.Context, progress interfaces.ProgressFunc, event interfaces.ProgressEvent) {
	if progress != nil {
		progress(event)
	}
	o.events.Publish(ctx, interfaces.Event{Type: interfaces.EventSyncProgress, Payload: event})
}
