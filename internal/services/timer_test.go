package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/terraincognita07/kpitracker/internal/models"
)

func seedTimerState(t *testing.T, store *memoryStore, state models.TimerState) {
	t.Helper()

	raw := fmt.Sprintf(`{"elapsed_seconds":%d,"running":%t,"paused":%t,"last_update":%d}`,
		state.ElapsedSeconds, state.Running, state.Paused, state.LastUpdate)
	if err := store.Put(models.SettingKeyTimer, raw); err != nil {
		t.Fatalf("seed timer state: %v", err)
	}
}

func TestTimerLoadAddsWallClockGapForRunningTimer(t *testing.T) {
	clock := newTestClock(mustParseTime(t, "2024-03-10T12:00:00Z"))
	store := newMemoryStore()
	seedTimerState(t, store, models.TimerState{ElapsedSeconds: 100, Running: true, LastUpdate: clock.Now().UnixMilli()})

	clock.Advance(7 * time.Second)
	engine := NewTimerEngine(store, clock.Now, nil)
	state := engine.Load()

	if state.ElapsedSeconds != 107 {
		t.Fatalf("expected elapsed=107 after reload, got %d", state.ElapsedSeconds)
	}
	if !state.Running || state.Paused {
		t.Fatalf("expected running unpaused timer, got %#v", state)
	}
}

func TestTimerLoadKeepsPausedAndStoppedStateVerbatim(t *testing.T) {
	testCases := []struct {
		name  string
		state models.TimerState
	}{
		{name: "paused", state: models.TimerState{ElapsedSeconds: 40, Running: true, Paused: true}},
		{name: "stopped", state: models.TimerState{ElapsedSeconds: 0}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			clock := newTestClock(mustParseTime(t, "2024-03-10T12:00:00Z"))
			store := newMemoryStore()
			seeded := testCase.state
			seeded.LastUpdate = clock.Now().UnixMilli()
			seedTimerState(t, store, seeded)

			clock.Advance(time.Hour)
			state := NewTimerEngine(store, clock.Now, nil).Load()
			if state.ElapsedSeconds != testCase.state.ElapsedSeconds {
				t.Fatalf("expected elapsed=%d, got %d", testCase.state.ElapsedSeconds, state.ElapsedSeconds)
			}
		})
	}
}

func TestTimerLoadIgnoresNegativeGap(t *testing.T) {
	clock := newTestClock(mustParseTime(t, "2024-03-10T12:00:00Z"))
	store := newMemoryStore()
	seedTimerState(t, store, models.TimerState{
		ElapsedSeconds: 30,
		Running:        true,
		LastUpdate:     clock.Now().Add(5 * time.Minute).UnixMilli(),
	})

	state := NewTimerEngine(store, clock.Now, nil).Load()
	if state.ElapsedSeconds != 30 {
		t.Fatalf("expected elapsed to stay at 30, got %d", state.ElapsedSeconds)
	}
}

func TestTimerLoadFallsBackToZeroStateOnMalformedValue(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	store := newMemoryStore()
	store.values[models.SettingKeyTimer] = "{not json"

	state := NewTimerEngine(store, time.Now, logger).Load()
	if state != (models.TimerState{}) {
		t.Fatalf("expected zero state, got %#v", state)
	}
	last := hook.LastEntry()
	if last == nil || last.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning to be logged, got %#v", last)
	}
}

func TestTimerLoadRejectsRunningStateWithoutLastUpdate(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "missing last_update", raw: `{"elapsed_seconds":5,"running":true,"paused":false}`},
		{name: "zero last_update", raw: `{"elapsed_seconds":5,"running":true,"paused":false,"last_update":0}`},
		{name: "negative last_update", raw: `{"elapsed_seconds":5,"running":true,"paused":true,"last_update":-10}`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			logger, hook := logtest.NewNullLogger()
			store := newMemoryStore()
			store.values[models.SettingKeyTimer] = testCase.raw

			engine := NewTimerEngine(store, newTestClock(mustParseTime(t, "2024-03-10T12:00:00Z")).Now, logger)
			if state := engine.Load(); state != (models.TimerState{}) {
				t.Fatalf("expected zero state, got %#v", state)
			}
			if minutes := engine.DefaultTimeSinceLast(); minutes != 0 {
				t.Fatalf("expected default minutes 0, got %d", minutes)
			}
			if last := hook.LastEntry(); last == nil || last.Level != logrus.WarnLevel {
				t.Fatalf("expected a warning to be logged, got %#v", last)
			}
		})
	}
}

func TestTimerLoadSurvivesStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errStoreDown

	logger, _ := logtest.NewNullLogger()
	state := NewTimerEngine(store, time.Now, logger).Load()
	if state != (models.TimerState{}) {
		t.Fatalf("expected zero state, got %#v", state)
	}
}

func TestTimerPauseFreezesElapsedTime(t *testing.T) {
	clock := newTestClock(mustParseTime(t, "2024-03-10T12:00:00Z"))
	store := newMemoryStore()
	engine := NewTimerEngine(store, clock.Now, nil)
	engine.Load()

	if err := engine.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		engine.Tick()
	}
	if err := engine.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	for i := 0; i < 10; i++ {
		clock.Advance(time.Second)
		engine.Tick()
	}

	reloaded := NewTimerEngine(store, clock.Now, nil).Load()
	if reloaded.ElapsedSeconds != 3 {
		t.Fatalf("expected paused reload to keep elapsed=3, got %d", reloaded.ElapsedSeconds)
	}

	if err := engine.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := engine.Snapshot().ElapsedSeconds; got != 3 {
		t.Fatalf("expected elapsed=3 after resume, got %d", got)
	}
}

func TestTimerTickAdoptsResetFromAnotherSession(t *testing.T) {
	clock := newTestClock(mustParseTime(t, "2024-03-10T12:00:00Z"))
	store := newMemoryStore()
	watcher := NewTimerEngine(store, clock.Now, nil)
	watcher.Load()
	if err := watcher.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		watcher.Tick()
	}

	clock.Advance(500 * time.Millisecond)
	other := NewTimerEngine(store, clock.Now, nil)
	if state := other.Load(); state.ElapsedSeconds != 5 {
		t.Fatalf("expected the other session to load elapsed=5, got %d", state.ElapsedSeconds)
	}
	if err := other.ResetAndStart(); err != nil {
		t.Fatalf("reset and start: %v", err)
	}

	clock.Advance(500 * time.Millisecond)
	watcher.Tick()
	if got := watcher.Snapshot(); got.ElapsedSeconds != 0 || !got.Running {
		t.Fatalf("expected the watcher to adopt the reset, got %#v", got)
	}

	clock.Advance(time.Second)
	watcher.Tick()
	if got := NewTimerEngine(store, clock.Now, nil).Load().ElapsedSeconds; got != 1 {
		t.Fatalf("expected stored elapsed=1 after the next tick, got %d", got)
	}
}

func TestTimerTransitionsRejectInvalidStates(t *testing.T) {
	engine := NewTimerEngine(newMemoryStore(), time.Now, nil)
	engine.Load()

	if err := engine.Pause(); !errors.Is(err, ErrTimerNotRunning) {
		t.Fatalf("expected ErrTimerNotRunning, got %v", err)
	}
	if err := engine.Resume(); !errors.Is(err, ErrTimerNotPaused) {
		t.Fatalf("expected ErrTimerNotPaused, got %v", err)
	}
	if err := engine.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := engine.Start(); !errors.Is(err, ErrTimerRunning) {
		t.Fatalf("expected ErrTimerRunning, got %v", err)
	}
	if err := engine.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := engine.Pause(); !errors.Is(err, ErrTimerNotRunning) {
		t.Fatalf("expected second pause to fail, got %v", err)
	}
	if err := engine.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if state := engine.Snapshot(); state.Running || state.Paused || state.ElapsedSeconds != 0 {
		t.Fatalf("expected stopped timer, got %#v", state)
	}
}

func TestTimerResetAndStartFromAnyState(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(engine *TimerEngine) error
	}{
		{name: "idle", setup: func(*TimerEngine) error { return nil }},
		{name: "running", setup: func(engine *TimerEngine) error { return engine.Start() }},
		{name: "paused", setup: func(engine *TimerEngine) error {
			if err := engine.Start(); err != nil {
				return err
			}
			return engine.Pause()
		}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			clock := newTestClock(mustParseTime(t, "2024-03-10T12:00:00Z"))
			store := newMemoryStore()
			engine := NewTimerEngine(store, clock.Now, nil)
			engine.Load()
			if err := testCase.setup(engine); err != nil {
				t.Fatalf("setup: %v", err)
			}
			clock.Advance(90 * time.Second)
			engine.Tick()

			if err := engine.ResetAndStart(); err != nil {
				t.Fatalf("reset and start: %v", err)
			}
			state := engine.Snapshot()
			if state.ElapsedSeconds != 0 || !state.Running || state.Paused {
				t.Fatalf("expected elapsed=0 running unpaused, got %#v", state)
			}
			if state.LastUpdate != clock.Now().UnixMilli() {
				t.Fatalf("expected last_update=%d, got %d", clock.Now().UnixMilli(), state.LastUpdate)
			}
		})
	}
}

func TestTimerDefaultTimeSinceLastUsesWholeMinutes(t *testing.T) {
	clock := newTestClock(mustParseTime(t, "2024-03-10T12:00:00Z"))
	store := newMemoryStore()
	seedTimerState(t, store, models.TimerState{ElapsedSeconds: 60*7 + 59, Running: true, Paused: true, LastUpdate: clock.Now().UnixMilli()})

	engine := NewTimerEngine(store, clock.Now, nil)
	engine.Load()
	if got := engine.DefaultTimeSinceLast(); got != 7 {
		t.Fatalf("expected 7 minutes, got %d", got)
	}
}

func TestTimerMutationReportsStoreFailure(t *testing.T) {
	store := newMemoryStore()
	engine := NewTimerEngine(store, time.Now, nil)
	engine.Load()

	store.putErr = errStoreDown
	if err := engine.Start(); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store failure, got %v", err)
	}
}

func TestFormatElapsed(t *testing.T) {
	testCases := map[int64]string{
		0:     "00:00:00",
		59:    "00:00:59",
		3661:  "01:01:01",
		-5:    "00:00:00",
		36000: "10:00:00",
	}
	for seconds, want := range testCases {
		if got := FormatElapsed(seconds); got != want {
			t.Fatalf("FormatElapsed(%d): expected %q, got %q", seconds, want, got)
		}
	}
}
