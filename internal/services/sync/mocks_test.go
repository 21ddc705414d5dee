package sync

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

// In-memory storage fakes mirroring the badger layer's semantics:
// natural keys are unique, duplicate inserts are skipped not errored,
// and fetch-status transitions are validated.

type memHorseStorage struct {
	horses      map[string]*models.Horse
	fetchErrors map[string]string
	listErr     error
}

func newMemHorseStorage() *memHorseStorage {
	return &memHorseStorage{
		horses:      make(map[string]*models.Horse),
		fetchErrors: make(map[string]string),
	}
}

func (m *memHorseStorage) SaveHorse(ctx context.Context, horse *models.Horse) error {
	m.horses[horse.ID] = horse
	return nil
}

func (m *memHorseStorage) GetHorse(ctx context.Context, id string) (*models.Horse, error) {
	horse, ok := m.horses[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return horse, nil
}

func (m *memHorseStorage) ListByStablemate(ctx context.Context, stablemateID string) ([]*models.Horse, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var horses []*models.Horse
	for _, horse := range m.horses {
		if horse.StablemateID == stablemateID {
			horses = append(horses, horse)
		}
	}
	sort.Slice(horses, func(i, j int) bool { return horses[i].ID < horses[j].ID })
	return horses, nil
}

func (m *memHorseStorage) UpdateSummary(ctx context.Context, horseID string, summary models.HorseSummary) error {
	horse, ok := m.horses[horseID]
	if !ok {
		return interfaces.ErrNotFound
	}
	now := time.Now()
	summary.LastFetchedAt = &now
	summary.LastFetchError = ""
	horse.Summary = summary
	return nil
}

func (m *memHorseStorage) RecordFetchError(ctx context.Context, horseID string, message string) error {
	horse, ok := m.horses[horseID]
	if !ok {
		return interfaces.ErrNotFound
	}
	horse.Summary.LastFetchError = message
	m.fetchErrors[horseID] = message
	return nil
}

func (m *memHorseStorage) DeleteHorse(ctx context.Context, id string) error {
	delete(m.horses, id)
	return nil
}

type memRaceStorage struct {
	records map[string]*models.RaceRecord
	findErr error
}

func newMemRaceStorage() *memRaceStorage {
	return &memRaceStorage{records: make(map[string]*models.RaceRecord)}
}

func (m *memRaceStorage) FindByHorse(ctx context.Context, horseID string) ([]*models.RaceRecord, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var records []*models.RaceRecord
	for _, record := range m.records {
		if record.HorseID == horseID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (m *memRaceStorage) CreateMany(ctx context.Context, records []*models.RaceRecord) (int, error) {
	inserted := 0
	for _, record := range records {
		if _, ok := m.records[record.Key]; ok {
			continue
		}
		m.records[record.Key] = record
		inserted++
	}
	return inserted, nil
}

type memGallopStorage struct {
	records map[string]*models.GallopRecord
}

func newMemGallopStorage() *memGallopStorage {
	return &memGallopStorage{records: make(map[string]*models.GallopRecord)}
}

func (m *memGallopStorage) FindByHorse(ctx context.Context, horseID string) ([]*models.GallopRecord, error) {
	var records []*models.GallopRecord
	for _, record := range m.records {
		if record.HorseID == horseID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (m *memGallopStorage) CreateMany(ctx context.Context, records []*models.GallopRecord) (int, error) {
	inserted := 0
	for _, record := range records {
		if _, ok := m.records[record.Key]; ok {
			continue
		}
		m.records[record.Key] = record
		inserted++
	}
	return inserted, nil
}

type memRegistrationStorage struct {
	byID    map[string]*models.Registration
	nextID  int
	updates int
}

func newMemRegistrationStorage() *memRegistrationStorage {
	return &memRegistrationStorage{byID: make(map[string]*models.Registration)}
}

func (m *memRegistrationStorage) FindByHorse(ctx context.Context, horseID string) ([]*models.Registration, error) {
	var registrations []*models.Registration
	for _, registration := range m.byID {
		if registration.HorseID == horseID {
			registrations = append(registrations, registration)
		}
	}
	return registrations, nil
}

func (m *memRegistrationStorage) CreateMany(ctx context.Context, registrations []*models.Registration) (int, error) {
	inserted := 0
	for _, registration := range registrations {
		if m.hasKey(registration.Key) {
			continue
		}
		m.nextID++
		registration.ID = fmt.Sprintf("reg_%d", m.nextID)
		m.byID[registration.ID] = registration
		inserted++
	}
	return inserted, nil
}

func (m *memRegistrationStorage) Update(ctx context.Context, registration *models.Registration) error {
	if _, ok := m.byID[registration.ID]; !ok {
		return interfaces.ErrNotFound
	}
	m.byID[registration.ID] = registration
	m.updates++
	return nil
}

func (m *memRegistrationStorage) DeleteMany(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		if _, ok := m.byID[id]; ok {
			delete(m.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memRegistrationStorage) hasKey(key string) bool {
	for _, registration := range m.byID {
		if registration.Key == key {
			return true
		}
	}
	return false
}

type memStablemateStorage struct {
	stablemates map[string]*models.Stablemate
	history     []models.FetchStatus
	statusErr   error
}

func newMemStablemateStorage() *memStablemateStorage {
	return &memStablemateStorage{stablemates: make(map[string]*models.Stablemate)}
}

func (m *memStablemateStorage) SaveStablemate(ctx context.Context, stablemate *models.Stablemate) error {
	m.stablemates[stablemate.ID] = stablemate
	return nil
}

func (m *memStablemateStorage) GetStablemate(ctx context.Context, id string) (*models.Stablemate, error) {
	stablemate, ok := m.stablemates[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return stablemate, nil
}

func (m *memStablemateStorage) ListStablemates(ctx context.Context) ([]*models.Stablemate, error) {
	var stablemates []*models.Stablemate
	for _, stablemate := range m.stablemates {
		stablemates = append(stablemates, stablemate)
	}
	return stablemates, nil
}

func (m *memStablemateStorage) UpdateFetchStatus(ctx context.Context, id string, status models.FetchStatus) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	stablemate, ok := m.stablemates[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if !stablemate.FetchStatus.CanTransitionTo(status) {
		return fmt.Errorf("illegal fetch status transition %s -> %s", stablemate.FetchStatus, status)
	}
	stablemate.FetchStatus = status
	m.history = append(m.history, status)
	return nil
}

type memStorage struct {
	horses        *memHorseStorage
	races         *memRaceStorage
	gallops       *memGallopStorage
	registrations *memRegistrationStorage
	stablemates   *memStablemateStorage
}

func newMemStorage() *memStorage {
	return &memStorage{
		horses:        newMemHorseStorage(),
		races:         newMemRaceStorage(),
		gallops:       newMemGallopStorage(),
		registrations: newMemRegistrationStorage(),
		stablemates:   newMemStablemateStorage(),
	}
}

func (m *memStorage) Horses() interfaces.HorseStorage               { return m.horses }
func (m *memStorage) RaceRecords() interfaces.RaceRecordStorage     { return m.races }
func (m *memStorage) GallopRecords() interfaces.GallopRecordStorage { return m.gallops }
func (m *memStorage) Registrations() interfaces.RegistrationStorage { return m.registrations }
func (m *memStorage) Stablemates() interfaces.StablemateStorage     { return m.stablemates }
func (m *memStorage) Close() error                                  { return nil }

// mockNotifier records notifications; err makes every call fail
type mockNotifier struct {
	notifications []interfaces.RaceResultNotification
	err           error
}

func (m *mockNotifier) NotifyNewRaceResult(ctx context.Context, n interfaces.RaceResultNotification) error {
	m.notifications = append(m.notifications, n)
	return m.err
}

// stubFetcher serves canned HTML per page kind. failKinds makes a page
// kind return an error; failRefs makes every fetch for a horse fail.
type stubFetcher struct {
	pages     map[interfaces.PageKind]string
	failKinds map[interfaces.PageKind]error
	failRefs  map[string]error
	closed    bool
	fetches   int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages:     make(map[interfaces.PageKind]string),
		failKinds: make(map[interfaces.PageKind]error),
		failRefs:  make(map[string]error),
	}
}

func (f *stubFetcher) Fetch(ctx context.Context, externalRef string, kind interfaces.PageKind) (*interfaces.RenderedPage, error) {
	f.fetches++
	if err, ok := f.failRefs[externalRef]; ok {
		return nil, err
	}
	if err, ok := f.failKinds[kind]; ok {
		return nil, err
	}
	html, ok := f.pages[kind]
	if !ok {
		html = "<html><body></body></html>"
	}
	return &interfaces.RenderedPage{
		Kind:      kind,
		URL:       "https://example.org/" + externalRef + "/" + string(kind),
		HTML:      html,
		FetchedAt: time.Now(),
	}, nil
}

func (f *stubFetcher) Close() error {
	f.closed = true
	return nil
}

// tableHTML builds a minimal table page from a header row and body rows
func tableHTML(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("<html><body><table><thead><tr>")
	for _, h := range headers {
		b.WriteString("<th>" + h + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + cell + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}
