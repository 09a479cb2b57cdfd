package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultArchiveCheckInterval = time.Hour

type SchedulerStatus struct {
	Running            bool       `json:"running"`
	Interval           string     `json:"interval"`
	LastRun            *time.Time `json:"last_run"`
	NextRun            *time.Time `json:"next_run"`
	LastError          string     `json:"last_error,omitempty"`
	LastArchivedPeriod string     `json:"last_archived_period,omitempty"`
}

// ArchiveScheduler periodically closes the previous pay period.
type ArchiveScheduler struct {
	archive  *ArchiveService
	periods  *PeriodManager
	interval time.Duration
	logger   logrus.FieldLogger

	mu         sync.Mutex
	running    bool
	lastPeriod *Period
	status     SchedulerStatus
}

func NewArchiveScheduler(archive *ArchiveService, periods *PeriodManager, interval time.Duration, logger logrus.FieldLogger) *ArchiveScheduler {
	if interval <= 0 {
		interval = DefaultArchiveCheckInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ArchiveScheduler{
		archive:  archive,
		periods:  periods,
		interval: interval,
		logger:   logger.WithField("component", "archive_scheduler"),
	}
}

func (scheduler *ArchiveScheduler) Start(ctx context.Context) {
	scheduler.mu.Lock()
	if scheduler.running {
		scheduler.mu.Unlock()
		return
	}
	scheduler.running = true
	scheduler.mu.Unlock()

	ticker := time.NewTicker(scheduler.interval)
	go func() {
		defer ticker.Stop()
		defer scheduler.setStopped()

		scheduler.RunOnce()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scheduler.RunOnce()
			}
		}
	}()
}

// RunOnce archives the previous period when the active period changed since
// the last run, on boundary days, or when it holds entries but no log.
func (scheduler *ArchiveScheduler) RunOnce() {
	current := scheduler.periods.Current()

	scheduler.mu.Lock()
	changed := scheduler.lastPeriod != nil && PeriodChanged(*scheduler.lastPeriod, current)
	scheduler.lastPeriod = &current
	scheduler.mu.Unlock()

	if changed {
		scheduler.logger.WithField("period_id", current.ID).Info("pay period rollover detected")
	}

	requireEntries := !changed && !scheduler.periods.IsBoundaryDay()
	log, archived, err := scheduler.archive.closePrevious(requireEntries)

	now := scheduler.periods.Now()
	next := now.Add(scheduler.interval)

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.status.LastRun = &now
	scheduler.status.NextRun = &next
	scheduler.status.LastError = ""
	if err != nil {
		scheduler.status.LastError = err.Error()
		scheduler.logger.WithError(err).Error("scheduled archive failed")
		return
	}
	if archived {
		scheduler.status.LastArchivedPeriod = log.PeriodID
	}
}

func (scheduler *ArchiveScheduler) Status() SchedulerStatus {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	status := scheduler.status
	status.Running = scheduler.running
	status.Interval = scheduler.interval.String()
	return status
}

func (scheduler *ArchiveScheduler) setStopped() {
	scheduler.mu.Lock()
	scheduler.running = false
	scheduler.mu.Unlock()
}
