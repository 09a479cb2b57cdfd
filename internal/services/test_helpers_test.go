package services

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/kpitracker/internal/db"
	"gorm.io/gorm"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	putErr error
	puts   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (store *memoryStore) Get(key string) (string, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.getErr != nil {
		return "", false, store.getErr
	}
	value, ok := store.values[key]
	return value, ok, nil
}

func (store *memoryStore) Put(key string, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.putErr != nil {
		return store.putErr
	}
	store.values[key] = value
	store.puts++
	return nil
}

func (store *memoryStore) Delete(keys ...string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, key := range keys {
		delete(store.values, key)
	}
	return nil
}

var errStoreDown = errors.New("store down")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(value time.Time) *testClock {
	return &testClock{now: value}
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(delta)
	clock.mu.Unlock()
}

func mustParseTime(t *testing.T, raw string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatalf("parse time %q: %v", raw, err)
	}
	return parsed
}

func mustParseDay(t *testing.T, raw string) time.Time {
	t.Helper()

	parsed, err := ParseDay(raw, time.UTC)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return parsed
}

func floatPtr(value float64) *float64 {
	return &value
}

func intPtr(value int) *int {
	return &value
}

type storeFixture struct {
	database *gorm.DB
	repos    *db.Repositories
	clock    *testClock
	periods  *PeriodManager
	settings *SettingsService
	archive  *ArchiveService
	entries  *EntryService
}

func newStoreFixture(t *testing.T, now string) *storeFixture {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "kpi-services.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repos := db.NewRepositories(database)
	clock := newTestClock(mustParseTime(t, now))
	periods := NewPeriodManager(time.UTC, clock.Now)
	settings := NewSettingsService(repos.Settings, nil)
	archive := NewArchiveService(repos.PeriodLogs, repos.Entries, settings, periods, nil)
	entries := NewEntryService(repos.Entries, periods, archive, nil)

	return &storeFixture{
		database: database,
		repos:    repos,
		clock:    clock,
		periods:  periods,
		settings: settings,
		archive:  archive,
		entries:  entries,
	}
}
