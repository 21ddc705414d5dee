package sync

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// Reconciler compares freshly parsed records against the local store
// per natural key and issues insert/update/delete operations. All
// writes are keyed by natural key so overlapping runs stay correct:
// the worst outcome of two racing runs is a skipped duplicate insert.
type Reconciler struct {
	storage  interfaces.StorageManager
	notifier interfaces.Notifier
	logger   arbor.ILogger
}

// NewReconciler creates a reconciler
func NewReconciler(storage interfaces.StorageManager, notifier interfaces.Notifier, logger arbor.ILogger) *Reconciler {
	return &Reconciler{
		storage:  storage,
		notifier: notifier,
		logger:   logger,
	}
}

// ReconcileRaces applies the append-only policy: insert fresh records
// whose key is unknown, never touch existing rows. Running twice with
// an unchanged fresh set inserts zero rows the second time.
func (r *Reconciler) ReconcileRaces(ctx context.Context, horse *models.Horse, fresh []*models.RaceRecord) (interfaces.Delta, error) {
	var delta interfaces.Delta

	existing, err := r.storage.RaceRecords().FindByHorse(ctx, horse.ID)
	if err != nil {
		return delta, fmt.Errorf("loading race records: %w", err)
	}

	existingKeys := make(map[string]struct{}, len(existing))
	for _, record := range existing {
		existingKeys[record.Key] = struct{}{}
	}

	var toInsert []*models.RaceRecord
	seen := make(map[string]struct{})
	for _, record := range fresh {
		KeyRace(horse.ID, record)
		if _, ok := existingKeys[record.Key]; ok {
			continue
		}
		if _, ok := seen[record.Key]; ok {
			continue
		}
		seen[record.Key] = struct{}{}
		toInsert = append(toInsert, record)
	}

	inserted, err := r.storage.RaceRecords().CreateMany(ctx, toInsert)
	delta.Inserted = inserted
	if err != nil {
		return delta, fmt.Errorf("inserting race records: %w", err)
	}

	// New results fan out to the notification collaborator; its failures
	// never fail the reconciliation.
	for _, record := range toInsert {
		notification := interfaces.RaceResultNotification{
			HorseID:   horse.ID,
			HorseName: horse.Name,
			Summary:   fmt.Sprintf("%s, %s (%s)", record.RaceName, record.City, record.RaceDate.Format("02.01.2006")),
		}
		if err := r.notifier.NotifyNewRaceResult(ctx, notification); err != nil {
			r.logger.Warn().Err(err).Str("horse_id", horse.ID).Msg("Race result notification failed")
		}
	}

	return delta, nil
}

// ReconcileGallops applies the append-only policy to training sessions
func (r *Reconciler) ReconcileGallops(ctx context.Context, horse *models.Horse, fresh []*models.GallopRecord) (interfaces.Delta, error) {
	var delta interfaces.Delta

	existing, err := r.storage.GallopRecords().FindByHorse(ctx, horse.ID)
	if err != nil {
		return delta, fmt.Errorf("loading gallop records: %w", err)
	}

	existingKeys := make(map[string]struct{}, len(existing))
	for _, record := range existing {
		existingKeys[record.Key] = struct{}{}
	}

	var toInsert []*models.GallopRecord
	seen := make(map[string]struct{})
	for _, record := range fresh {
		KeyGallop(horse.ID, record)
		if _, ok := existingKeys[record.Key]; ok {
			continue
		}
		if _, ok := seen[record.Key]; ok {
			continue
		}
		seen[record.Key] = struct{}{}
		toInsert = append(toInsert, record)
	}

	inserted, err := r.storage.GallopRecords().CreateMany(ctx, toInsert)
	delta.Inserted = inserted
	if err != nil {
		return delta, fmt.Errorf("inserting gallop records: %w", err)
	}

	return delta, nil
}

// ReconcileRegistrations runs the full-sync three-way diff against one
// fresh snapshot:
//
//   - keys present only in the store are deleted (the race ran, turned
//     into history, or the entry was withdrawn);
//   - keys present in both move KAYIT -> DEKLARE in place, replacing
//     state and jockey on the same row and touching nothing else;
//   - keys present only in the snapshot are inserted.
//
// DEKLARE -> KAYIT never happens upstream; fresh data momentarily
// suggesting it is a source-side race and is ignored to avoid flicker.
func (r *Reconciler) ReconcileRegistrations(ctx context.Context, horse *models.Horse, fresh []*models.Registration) (interfaces.Delta, error) {
	var delta interfaces.Delta

	existing, err := r.storage.Registrations().FindByHorse(ctx, horse.ID)
	if err != nil {
		return delta, fmt.Errorf("loading registrations: %w", err)
	}

	existingByKey := make(map[string]*models.Registration, len(existing))
	for _, registration := range existing {
		existingByKey[registration.Key] = registration
	}

	freshByKey := make(map[string]*models.Registration, len(fresh))
	for _, registration := range fresh {
		KeyRegistration(horse.ID, registration)
		if _, ok := freshByKey[registration.Key]; !ok {
			freshByKey[registration.Key] = registration
		}
	}

	// Deletes: in store, gone from the snapshot
	var toDelete []string
	for key, registration := range existingByKey {
		if _, ok := freshByKey[key]; !ok {
			toDelete = append(toDelete, registration.ID)
		}
	}
	deleted, err := r.storage.Registrations().DeleteMany(ctx, toDelete)
	delta.Deleted = deleted
	if err != nil {
		return delta, fmt.Errorf("deleting registrations: %w", err)
	}

	// Updates and inserts
	var toInsert []*models.Registration
	for key, freshReg := range freshByKey {
		current, ok := existingByKey[key]
		if !ok {
			toInsert = append(toInsert, freshReg)
			continue
		}

		if current.Type == models.RegistrationKayit && freshReg.Type == models.RegistrationDeklare {
			current.Type = models.RegistrationDeklare
			current.Jockey = freshReg.Jockey
			if err := r.storage.Registrations().Update(ctx, current); err != nil {
				return delta, fmt.Errorf("updating registration %s: %w", key, err)
			}
			delta.Updated++
		}
		// Any other combination, including a fresh KAYIT over a stored
		// DEKLARE, is a no-op.
	}

	inserted, err := r.storage.Registrations().CreateMany(ctx, toInsert)
	delta.Inserted += inserted
	if err != nil {
		return delta, fmt.Errorf("inserting registrations: %w", err)
	}

	return delta, nil
}

// ApplySummary merges the pedigree slots under the name-completeness
// policy and then overwrites the aggregate stats wholesale with the
// latest fetch's values.
func (r *Reconciler) ApplySummary(ctx context.Context, horse *models.Horse, summary *models.HorseSummary, pedigree *models.Pedigree) error {
	merged := horse.Summary.Pedigree
	MergePedigree(&merged, pedigree)

	next := *summary
	next.Sire = MergePedigreeName(horse.Summary.Sire, summary.Sire)
	next.Dam = MergePedigreeName(horse.Summary.Dam, summary.Dam)
	next.Pedigree = merged

	if err := r.storage.Horses().UpdateSummary(ctx, horse.ID, next); err != nil {
		return fmt.Errorf("updating horse summary: %w", err)
	}
	return nil
}
