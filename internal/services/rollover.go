package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/kpitracker/internal/models"
)

const DefaultRolloverInterval = time.Minute

// DayRolloverDetector compares the persisted last-active date with today.
type DayRolloverDetector struct {
	store   KeyValueStore
	periods *PeriodManager
}

func NewDayRolloverDetector(store KeyValueStore, periods *PeriodManager) *DayRolloverDetector {
	return &DayRolloverDetector{store: store, periods: periods}
}

// Check rewrites the marker and reports whether the calendar day moved since
// the previous check. A missing marker is recorded without signalling.
func (detector *DayRolloverDetector) Check() (bool, string, error) {
	today := detector.periods.TodayKey()

	last, found, err := detector.store.Get(models.SettingKeyLastActiveDate)
	if err != nil {
		return false, today, fmt.Errorf("load last active date: %w", err)
	}
	if found && last == today {
		return false, today, nil
	}
	if err := detector.store.Put(models.SettingKeyLastActiveDate, today); err != nil {
		return false, today, fmt.Errorf("save last active date: %w", err)
	}
	return found, today, nil
}

// Watch polls Check until ctx is done and calls onRollover with the new day.
func (detector *DayRolloverDetector) Watch(ctx context.Context, interval time.Duration, logger logrus.FieldLogger, onRollover func(today string)) {
	if interval <= 0 {
		interval = DefaultRolloverInterval
	}

	check := func() {
		changed, today, err := detector.Check()
		if err != nil {
			logger.WithError(err).Warn("day rollover check failed")
			return
		}
		if changed && onRollover != nil {
			onRollover(today)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
