package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/models"
)

func newTestReconciler() (*Reconciler, *memStorage, *mockNotifier) {
	storage := newMemStorage()
	notifier := &mockNotifier{}
	return NewReconciler(storage, notifier, arbor.NewLogger()), storage, notifier
}

func testHorse() *models.Horse {
	ref := "12345"
	return &models.Horse{
		ID:           "hrs_1",
		StablemateID: "stb_1",
		Name:         "RÜZGAR",
		ExternalRef:  &ref,
	}
}

var day = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func TestReconcileRaces_AppendOnly(t *testing.T) {
	r, storage, notifier := newTestReconciler()
	horse := testHorse()
	ctx := context.Background()

	fresh := []*models.RaceRecord{
		{RaceDate: day, RaceName: "Handikap 15", City: "İstanbul", Position: 3},
		{RaceDate: day.AddDate(0, 0, -7), RaceName: "Maiden", City: "Ankara", Position: 1},
	}

	delta, err := r.ReconcileRaces(ctx, horse, fresh)
	require.NoError(t, err)
	assert.Equal(t, 2, delta.Inserted)
	assert.Len(t, notifier.notifications, 2)

	// a second run over the identical snapshot inserts nothing
	again := []*models.RaceRecord{
		{RaceDate: day, RaceName: "  handikap   15 ", City: "İstanbul", Position: 3},
		{RaceDate: day.AddDate(0, 0, -7), RaceName: "Maiden", City: "Ankara", Position: 1},
	}
	delta, err = r.ReconcileRaces(ctx, horse, again)
	require.NoError(t, err)
	assert.Equal(t, 0, delta.Inserted)
	assert.Len(t, notifier.notifications, 2)
	assert.Len(t, storage.races.records, 2)
}

func TestReconcileRaces_NeverUpdatesExisting(t *testing.T) {
	r, storage, _ := newTestReconciler()
	horse := testHorse()
	ctx := context.Background()

	_, err := r.ReconcileRaces(ctx, horse, []*models.RaceRecord{
		{RaceDate: day, RaceName: "Handikap", City: "İzmir", Position: 3, Jockey: "A. Çelik"},
	})
	require.NoError(t, err)

	// same key, different incidental fields: existing row wins
	_, err = r.ReconcileRaces(ctx, horse, []*models.RaceRecord{
		{RaceDate: day, RaceName: "Handikap", City: "İzmir", Position: 9, Jockey: "B. Demir"},
	})
	require.NoError(t, err)

	key := RaceKey(horse.ID, day, "Handikap", "İzmir")
	stored := storage.races.records[key]
	require.NotNil(t, stored)
	assert.Equal(t, 3, stored.Position)
	assert.Equal(t, "A. Çelik", stored.Jockey)
}

func TestReconcileRaces_DuplicateKeysInSnapshot(t *testing.T) {
	r, _, notifier := newTestReconciler()
	horse := testHorse()

	fresh := []*models.RaceRecord{
		{RaceDate: day, RaceName: "Handikap", City: "Bursa"},
		{RaceDate: day, RaceName: "HANDIKAP", City: "bursa"},
	}

	delta, err := r.ReconcileRaces(context.Background(), horse, fresh)
	require.NoError(t, err)
	assert.Equal(t, 1, delta.Inserted)
	assert.Len(t, notifier.notifications, 1)
}

func TestReconcileRaces_NotifierFailureIsSwallowed(t *testing.T) {
	r, storage, notifier := newTestReconciler()
	notifier.err = errors.New("bus down")
	horse := testHorse()

	delta, err := r.ReconcileRaces(context.Background(), horse, []*models.RaceRecord{
		{RaceDate: day, RaceName: "Handikap", City: "İzmir"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, delta.Inserted)
	assert.Len(t, storage.races.records, 1)
}

func TestReconcileGallops_AppendOnly(t *testing.T) {
	r, _, _ := newTestReconciler()
	horse := testHorse()
	ctx := context.Background()

	fresh := []*models.GallopRecord{
		{GallopDate: day, Racecourse: "Veliefendi", Time: "52.1"},
	}

	delta, err := r.ReconcileGallops(ctx, horse, fresh)
	require.NoError(t, err)
	assert.Equal(t, 1, delta.Inserted)

	delta, err = r.ReconcileGallops(ctx, horse, []*models.GallopRecord{
		{GallopDate: day, Racecourse: "veliefendi", Time: "52.1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, delta.Inserted)
}

func TestReconcileRegistrations_ThreeWayDiff(t *testing.T) {
	r, storage, _ := newTestReconciler()
	horse := testHorse()
	ctx := context.Background()

	// seed: one KAYIT entry that will be declared, one that will vanish
	_, err := r.ReconcileRegistrations(ctx, horse, []*models.Registration{
		{RaceDate: day, City: "Ankara", Distance: 1600, Type: models.RegistrationKayit},
		{RaceDate: day, City: "Ankara", Distance: 1400, Type: models.RegistrationKayit},
	})
	require.NoError(t, err)
	require.Len(t, storage.registrations.byID, 2)

	// fresh snapshot: 1600m declared with jockey, 1400m gone, 1200m new
	delta, err := r.ReconcileRegistrations(ctx, horse, []*models.Registration{
		{RaceDate: day, City: "Ankara", Distance: 1600, Type: models.RegistrationDeklare, Jockey: "C. Kaya"},
		{RaceDate: day, City: "Ankara", Distance: 1200, Type: models.RegistrationKayit},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, delta.Inserted)
	assert.Equal(t, 1, delta.Updated)
	assert.Equal(t, 1, delta.Deleted)
	assert.Len(t, storage.registrations.byID, 2)

	var declared *models.Registration
	for _, registration := range storage.registrations.byID {
		if registration.Distance == 1600 {
			declared = registration
		}
	}
	require.NotNil(t, declared)
	assert.Equal(t, models.RegistrationDeklare, declared.Type)
	assert.Equal(t, "C. Kaya", declared.Jockey)
}

func TestReconcileRegistrations_DeklareNeverReverts(t *testing.T) {
	r, storage, _ := newTestReconciler()
	horse := testHorse()
	ctx := context.Background()

	_, err := r.ReconcileRegistrations(ctx, horse, []*models.Registration{
		{RaceDate: day, City: "Ankara", Distance: 1600, Type: models.RegistrationDeklare, Jockey: "C. Kaya"},
	})
	require.NoError(t, err)

	// source momentarily serves the entry as KAYIT again
	delta, err := r.ReconcileRegistrations(ctx, horse, []*models.Registration{
		{RaceDate: day, City: "Ankara", Distance: 1600, Type: models.RegistrationKayit},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, delta.Updated)
	assert.Equal(t, 0, delta.Inserted)
	assert.Equal(t, 0, delta.Deleted)

	for _, registration := range storage.registrations.byID {
		assert.Equal(t, models.RegistrationDeklare, registration.Type)
		assert.Equal(t, "C. Kaya", registration.Jockey)
	}
}

func TestReconcileRegistrations_UpdateTouchesOnlyTypeAndJockey(t *testing.T) {
	r, storage, _ := newTestReconciler()
	horse := testHorse()
	ctx := context.Background()

	_, err := r.ReconcileRegistrations(ctx, horse, []*models.Registration{
		{RaceDate: day, City: "Ankara", Distance: 1600, Type: models.RegistrationKayit, RaceName: "Maiden", Weight: "58"},
	})
	require.NoError(t, err)

	_, err = r.ReconcileRegistrations(ctx, horse, []*models.Registration{
		{RaceDate: day, City: "Ankara", Distance: 1600, Type: models.RegistrationDeklare, Jockey: "C. Kaya", RaceName: "Renamed", Weight: "61"},
	})
	require.NoError(t, err)

	for _, registration := range storage.registrations.byID {
		assert.Equal(t, models.RegistrationDeklare, registration.Type)
		assert.Equal(t, "C. Kaya", registration.Jockey)
		assert.Equal(t, "Maiden", registration.RaceName)
		assert.Equal(t, "58", registration.Weight)
	}
}

func TestApplySummary_OverwritesStatsAndMergesPedigree(t *testing.T) {
	r, storage, _ := newTestReconciler()
	horse := testHorse()
	horse.Summary = models.HorseSummary{
		RaceCount: 20,
		Sire:      "GALILEO",
		Pedigree:  models.Pedigree{SireSire: "SADLER'S WELLS"},
	}
	require.NoError(t, storage.horses.SaveHorse(context.Background(), horse))

	fresh := &models.HorseSummary{
		RaceCount:     24,
		WinCount:      6,
		TotalEarnings: "1.250.000 TL",
		Sire:          "GAL", // truncated read, must not shorten the stored name
		Dam:           "URBAN SEA",
	}
	pedigree := &models.Pedigree{SireSire: "SAD", DamSire: "DANEHILL"}

	require.NoError(t, r.ApplySummary(context.Background(), horse, fresh, pedigree))

	stored, err := storage.horses.GetHorse(context.Background(), horse.ID)
	require.NoError(t, err)
	assert.Equal(t, 24, stored.Summary.RaceCount)
	assert.Equal(t, 6, stored.Summary.WinCount)
	assert.Equal(t, "1.250.000 TL", stored.Summary.TotalEarnings)
	assert.Equal(t, "GALILEO", stored.Summary.Sire)
	assert.Equal(t, "URBAN SEA", stored.Summary.Dam)
	assert.Equal(t, "SADLER'S WELLS", stored.Summary.Pedigree.SireSire)
	assert.Equal(t, "DANEHILL", stored.Summary.Pedigree.DamSire)
	assert.NotNil(t, stored.Summary.LastFetchedAt)
}
