package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/kpitracker/internal/models"
)

const TimerTickInterval = time.Second

var (
	ErrTimerRunning    = errors.New("timer is already running")
	ErrTimerNotRunning = errors.New("timer is not running")
	ErrTimerNotPaused  = errors.New("timer is not paused")
)

// TimerEngine is the stopwatch measuring time since the last booking. Every
// mutation writes the full state back to the store so another session can
// pick it up after a restart.
type TimerEngine struct {
	mu     sync.Mutex
	store  KeyValueStore
	now    Clock
	logger logrus.FieldLogger
	state  models.TimerState
}

func NewTimerEngine(store KeyValueStore, now Clock, logger logrus.FieldLogger) *TimerEngine {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TimerEngine{
		store:  store,
		now:    now,
		logger: logger.WithField("component", "timer"),
	}
}

// Load restores the persisted state. A running, unpaused timer is advanced by
// the whole seconds that passed since it was last written. Unreadable state
// falls back to a stopped timer.
func (engine *TimerEngine) Load() models.TimerState {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	state, raw, err := engine.readStored()
	switch {
	case errors.Is(err, errMalformedTimerState):
		engine.logger.WithField("raw", raw).Warn("timer state malformed, starting stopped")
	case err != nil:
		engine.logger.WithError(err).Warn("timer state unavailable, starting stopped")
	}

	engine.state = engine.reconcile(state)
	return engine.state
}

var errMalformedTimerState = errors.New("malformed timer state")

// readStored returns the zero state alongside any error, and the zero state
// with a nil error when nothing is stored.
func (engine *TimerEngine) readStored() (models.TimerState, string, error) {
	raw, found, err := engine.store.Get(models.SettingKeyTimer)
	if err != nil || !found {
		return models.TimerState{}, "", err
	}
	state := models.TimerState{}
	if err := json.Unmarshal([]byte(raw), &state); err != nil || !plausibleTimerState(state) {
		return models.TimerState{}, raw, errMalformedTimerState
	}
	return state, raw, nil
}

func (engine *TimerEngine) reconcile(state models.TimerState) models.TimerState {
	if state.Running && !state.Paused {
		gapMillis := engine.now().UnixMilli() - state.LastUpdate
		if gapMillis > 0 {
			state.ElapsedSeconds += gapMillis / 1000
		}
	}
	return state
}

// plausibleTimerState rejects negative elapsed time and a running timer with no
// last update, whose gap would be measured from the epoch.
func plausibleTimerState(state models.TimerState) bool {
	if state.ElapsedSeconds < 0 {
		return false
	}
	return !state.Running || state.LastUpdate > 0
}

func (engine *TimerEngine) Snapshot() models.TimerState {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.state
}

// DefaultTimeSinceLast is the whole minutes elapsed, used when a booking is
// recorded without an explicit value.
func (engine *TimerEngine) DefaultTimeSinceLast() int {
	return int(engine.Snapshot().ElapsedSeconds / 60)
}

func (engine *TimerEngine) Start() error {
	return engine.mutate(func(state *models.TimerState) error {
		if state.Running {
			return ErrTimerRunning
		}
		state.Running = true
		state.Paused = false
		return nil
	})
}

func (engine *TimerEngine) Pause() error {
	return engine.mutate(func(state *models.TimerState) error {
		if !state.Running || state.Paused {
			return ErrTimerNotRunning
		}
		state.Paused = true
		return nil
	})
}

func (engine *TimerEngine) Resume() error {
	return engine.mutate(func(state *models.TimerState) error {
		if !state.Running || !state.Paused {
			return ErrTimerNotPaused
		}
		state.Paused = false
		return nil
	})
}

func (engine *TimerEngine) Stop() error {
	return engine.mutate(func(state *models.TimerState) error {
		*state = models.TimerState{}
		return nil
	})
}

func (engine *TimerEngine) ResetAndStart() error {
	return engine.mutate(func(state *models.TimerState) error {
		*state = models.TimerState{Running: true}
		return nil
	})
}

// Tick advances a running, unpaused timer by one second. When another session
// has written the timer since this engine last did, Tick adopts that state
// instead, so a reset or pause made elsewhere is not overwritten.
func (engine *TimerEngine) Tick() {
	if engine.adoptNewerState() {
		return
	}
	err := engine.mutate(func(state *models.TimerState) error {
		if !state.Running || state.Paused {
			return errTimerIdle
		}
		state.ElapsedSeconds++
		return nil
	})
	if err != nil && !errors.Is(err, errTimerIdle) {
		engine.logger.WithError(err).Warn("persist timer tick failed")
	}
}

func (engine *TimerEngine) adoptNewerState() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	stored, _, err := engine.readStored()
	if err != nil || stored.LastUpdate <= engine.state.LastUpdate {
		return false
	}
	engine.state = engine.reconcile(stored)
	return true
}

// Run ticks once per second until ctx is cancelled.
func (engine *TimerEngine) Run(ctx context.Context, onTick func(models.TimerState)) {
	ticker := time.NewTicker(TimerTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			engine.Tick()
			if onTick != nil {
				onTick(engine.Snapshot())
			}
		}
	}
}

var errTimerIdle = errors.New("timer idle")

func (engine *TimerEngine) mutate(apply func(state *models.TimerState) error) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	next := engine.state
	if err := apply(&next); err != nil {
		return err
	}
	next.LastUpdate = engine.now().UnixMilli()
	engine.state = next

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode timer state: %w", err)
	}
	if err := engine.store.Put(models.SettingKeyTimer, string(raw)); err != nil {
		return fmt.Errorf("save timer state: %w", err)
	}
	return nil
}

func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
