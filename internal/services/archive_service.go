package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/kpitracker/internal/models"
)

var (
	ErrPeriodAlreadyArchived = errors.New("period already archived")
	ErrPeriodLogNotFound     = errors.New("period log not found")
	ErrArchiveFailed         = errors.New("archive period failed")
)

type PeriodLogRepository interface {
	FindByPeriodID(periodID string) (models.PeriodLog, bool, error)
	List(limit int) ([]models.PeriodLog, error)
	CreateWithArchivedEntries(log *models.PeriodLog) error
	DeleteByPeriodID(periodID string) (bool, error)
}

type ArchiveEntryRepository interface {
	ListPeriodEntries(startDate string, endDate string, includeArchived bool) ([]models.DailyEntry, error)
	ListUnassigned() ([]models.DailyEntry, error)
	AssignPeriod(entryIDs []string, periodID string, archived bool) error
}

type GoalsSource interface {
	Goals() (models.GoalsConfig, error)
}

type LegacyMigrationResult struct {
	MigratedEntries int    `json:"migrated_entries"`
	PeriodsCreated  int    `json:"periods_created"`
	PeriodsFound    int    `json:"periods_found"`
	Message         string `json:"message"`
}

// ArchiveService closes pay periods into immutable period logs.
type ArchiveService struct {
	mu      sync.Mutex
	logs    PeriodLogRepository
	entries ArchiveEntryRepository
	goals   GoalsSource
	periods *PeriodManager
	logger  logrus.FieldLogger
}

func NewArchiveService(logs PeriodLogRepository, entries ArchiveEntryRepository, goals GoalsSource, periods *PeriodManager, logger logrus.FieldLogger) *ArchiveService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ArchiveService{
		logs:    logs,
		entries: entries,
		goals:   goals,
		periods: periods,
		logger:  logger.WithField("component", "archive"),
	}
}

// BuildPeriodLog summarizes the entries of a period against a goals snapshot.
func BuildPeriodLog(period Period, entries []models.DailyEntry, goals models.GoalsConfig, archivedAt time.Time) models.PeriodLog {
	totals := SumEntries(entries)
	combined := totals.Combined()

	return models.PeriodLog{
		PeriodID:   period.ID,
		StartDate:  period.StartKey(),
		EndDate:    period.EndKey(),
		Status:     models.PeriodStatusClosed,
		EntryCount: len(entries),
		Totals: models.PeriodTotals{
			Calls:                 totals.Calls,
			Reservations:          totals.Reservations,
			Profit:                roundTo(totals.Profit, 2),
			Spins:                 roundTo(totals.Spins, 2),
			Combined:              roundTo(combined, 2),
			Misc:                  roundTo(totals.Misc, 2),
			PrepaidCount:          totals.PrepaidCount,
			RefundProtectionCount: totals.RefundProtectionCount,
		},
		Goals: goals,
		GoalsMet: models.GoalsMet{
			Calls:        float64(totals.Calls) >= goals.CallsBiweekly,
			Reservations: float64(totals.Reservations) >= goals.ReservationsBiweekly,
			Profit:       totals.Profit >= goals.ProfitBiweekly,
			Spins:        totals.Spins >= goals.SpinsBiweekly,
			Combined:     combined >= goals.CombinedBiweekly,
			Misc:         totals.Misc >= goals.MiscBiweekly,
		},
		ConversionRate:    BuildConversionStat(totals.Reservations, totals.Calls, 0, 0).Rate,
		AvgTimePerBooking: BuildTimeStat(totals.BookingMinutes, goals.AvgTimePerBooking).Average,
		ArchivedAt:        archivedAt.UTC(),
	}
}

func (service *ArchiveService) ArchivePeriod(period Period) (models.PeriodLog, error) {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.archiveLocked(period)
}

func (service *ArchiveService) ArchiveCurrent() (models.PeriodLog, error) {
	return service.ArchivePeriod(service.periods.Current())
}

func (service *ArchiveService) ArchivePrevious() (models.PeriodLog, error) {
	return service.ArchivePeriod(service.periods.Previous())
}

// ForceArchivePrevious archives the previous period, or returns its existing
// log with alreadyArchived set.
func (service *ArchiveService) ForceArchivePrevious() (models.PeriodLog, bool, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	period := service.periods.Previous()
	existing, found, err := service.logs.FindByPeriodID(period.ID)
	if err != nil {
		return models.PeriodLog{}, false, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	if found {
		return existing, true, nil
	}
	log, err := service.archiveLocked(period)
	return log, false, err
}

// EnsurePreviousPeriodClosed archives the previous period on the first day of
// a new one when no log exists yet. Other days are a no-op.
func (service *ArchiveService) EnsurePreviousPeriodClosed() error {
	if !service.periods.IsBoundaryDay() {
		return nil
	}
	_, _, err := service.closePrevious(false)
	return err
}

// ClosePreviousIfOpen archives the previous period when it has entries but no
// log, which covers a boundary day that passed without any activity.
func (service *ArchiveService) ClosePreviousIfOpen() (models.PeriodLog, bool, error) {
	return service.closePrevious(true)
}

func (service *ArchiveService) closePrevious(requireEntries bool) (models.PeriodLog, bool, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	period := service.periods.Previous()
	_, found, err := service.logs.FindByPeriodID(period.ID)
	if err != nil {
		return models.PeriodLog{}, false, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	if found {
		return models.PeriodLog{}, false, nil
	}
	if requireEntries {
		entries, err := service.entries.ListPeriodEntries(period.StartKey(), period.EndKey(), true)
		if err != nil {
			return models.PeriodLog{}, false, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
		}
		if len(entries) == 0 {
			return models.PeriodLog{}, false, nil
		}
	}

	log, err := service.archiveLocked(period)
	if err != nil {
		return models.PeriodLog{}, false, err
	}
	return log, true, nil
}

func (service *ArchiveService) archiveLocked(period Period) (models.PeriodLog, error) {
	_, found, err := service.logs.FindByPeriodID(period.ID)
	if err != nil {
		return models.PeriodLog{}, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	if found {
		return models.PeriodLog{}, ErrPeriodAlreadyArchived
	}

	entries, err := service.entries.ListPeriodEntries(period.StartKey(), period.EndKey(), true)
	if err != nil {
		return models.PeriodLog{}, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	goals, err := service.goals.Goals()
	if err != nil {
		return models.PeriodLog{}, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	log := BuildPeriodLog(period, entries, goals, service.periods.Now())
	if err := service.logs.CreateWithArchivedEntries(&log); err != nil {
		return models.PeriodLog{}, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	service.logger.WithFields(logrus.Fields{
		"period_id": log.PeriodID,
		"entries":   log.EntryCount,
	}).Info("period archived")
	return log, nil
}

func (service *ArchiveService) ListLogs(limit int) ([]models.PeriodLog, error) {
	logs, err := service.logs.List(limit)
	if err != nil {
		return nil, fmt.Errorf("list period logs: %w", err)
	}
	return logs, nil
}

func (service *ArchiveService) FindLog(periodID string) (models.PeriodLog, error) {
	log, found, err := service.logs.FindByPeriodID(periodID)
	if err != nil {
		return models.PeriodLog{}, fmt.Errorf("load period log: %w", err)
	}
	if !found {
		return models.PeriodLog{}, ErrPeriodLogNotFound
	}
	return log, nil
}

// DeleteLog removes a period log. Entries keep their archived flag.
func (service *ArchiveService) DeleteLog(periodID string) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	deleted, err := service.logs.DeleteByPeriodID(periodID)
	if err != nil {
		return fmt.Errorf("delete period log: %w", err)
	}
	if !deleted {
		return ErrPeriodLogNotFound
	}
	return nil
}

// MigrateLegacyEntries assigns entries without a period id to the calendar
// period of their date. Past periods are archived and get a log; entries of
// the current period stay open.
func (service *ArchiveService) MigrateLegacyEntries() (LegacyMigrationResult, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	legacy, err := service.entries.ListUnassigned()
	if err != nil {
		return LegacyMigrationResult{}, fmt.Errorf("list legacy entries: %w", err)
	}
	if len(legacy) == 0 {
		return LegacyMigrationResult{Message: "No legacy entries found"}, nil
	}

	location := service.periods.Location()
	periods := make(map[string]Period)
	grouped := make(map[string][]string)
	for _, entry := range legacy {
		day, err := ParseDay(entry.Date, location)
		if err != nil {
			service.logger.WithField("date", entry.Date).Warn("skipping legacy entry with malformed date")
			continue
		}
		period := PeriodFor(day)
		periods[period.ID] = period
		grouped[period.ID] = append(grouped[period.ID], entry.ID)
	}

	periodIDs := make([]string, 0, len(grouped))
	for periodID := range grouped {
		periodIDs = append(periodIDs, periodID)
	}
	sort.Strings(periodIDs)

	currentID := service.periods.Current().ID
	result := LegacyMigrationResult{PeriodsFound: len(periodIDs)}
	for _, periodID := range periodIDs {
		entryIDs := grouped[periodID]
		past := periodID != currentID
		if err := service.entries.AssignPeriod(entryIDs, periodID, past); err != nil {
			return result, fmt.Errorf("assign legacy entries to %s: %w", periodID, err)
		}
		result.MigratedEntries += len(entryIDs)

		if !past {
			continue
		}
		if _, err := service.archiveLocked(periods[periodID]); err != nil {
			if errors.Is(err, ErrPeriodAlreadyArchived) {
				continue
			}
			service.logger.WithError(err).WithField("period_id", periodID).Error("create legacy period log failed")
			continue
		}
		result.PeriodsCreated++
	}

	result.Message = fmt.Sprintf("Migration complete. %d entries assigned to %d periods.", result.MigratedEntries, result.PeriodsFound)
	return result, nil
}
