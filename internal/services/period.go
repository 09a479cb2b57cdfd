package services

import (
	"fmt"
	"time"

	"github.com/terraincognita07/kpitracker/internal/models"
)

const secondPeriodStartDay = 16

// Period is a pay period: the 1st through the 15th, or the 16th through the
// last day of the month. Both bounds are inclusive calendar days.
type Period struct {
	ID    string
	Start time.Time
	End   time.Time
}

func (period Period) StartKey() string {
	return period.Start.Format(models.DateLayout)
}

func (period Period) EndKey() string {
	return period.End.Format(models.DateLayout)
}

func (period Period) Contains(day time.Time) bool {
	key := DayKey(day, period.Start.Location())
	return key >= period.StartKey() && key <= period.EndKey()
}

func PeriodID(start time.Time, end time.Time) string {
	return fmt.Sprintf("%s_to_%s", start.Format(models.DateLayout), end.Format(models.DateLayout))
}

// PeriodFor returns the pay period containing day, in day's location.
func PeriodFor(day time.Time) Period {
	location := day.Location()
	year, month, date := day.Date()

	var start, end time.Time
	if date < secondPeriodStartDay {
		start = time.Date(year, month, 1, 0, 0, 0, 0, location)
		end = time.Date(year, month, secondPeriodStartDay-1, 0, 0, 0, 0, location)
	} else {
		start = time.Date(year, month, secondPeriodStartDay, 0, 0, 0, 0, location)
		end = time.Date(year, month+1, 0, 0, 0, 0, 0, location)
	}

	return Period{ID: PeriodID(start, end), Start: start, End: end}
}

func PreviousPeriod(day time.Time) Period {
	return PeriodFor(PeriodFor(day).Start.AddDate(0, 0, -1))
}

// DaysRemaining counts today and every day up to and including the period end.
func DaysRemaining(period Period, today time.Time) int {
	remaining := daysBetween(today, period.End) + 1
	if remaining < 0 {
		return 0
	}
	return remaining
}

func IsPeriodBoundary(day time.Time) bool {
	date := day.Day()
	return date == 1 || date == secondPeriodStartDay
}

// PeriodChanged reports a period rollover by comparing end dates.
func PeriodChanged(previous Period, current Period) bool {
	return previous.EndKey() != current.EndKey()
}

type PeriodManager struct {
	location *time.Location
	now      Clock
}

func NewPeriodManager(location *time.Location, now Clock) *PeriodManager {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &PeriodManager{location: location, now: now}
}

func (manager *PeriodManager) Location() *time.Location {
	return manager.location
}

func (manager *PeriodManager) Now() time.Time {
	return manager.now()
}

func (manager *PeriodManager) Today() time.Time {
	return DateAtLocation(manager.now(), manager.location)
}

func (manager *PeriodManager) TodayKey() string {
	return manager.Today().Format(models.DateLayout)
}

func (manager *PeriodManager) Current() Period {
	return PeriodFor(manager.Today())
}

func (manager *PeriodManager) Previous() Period {
	return PreviousPeriod(manager.Today())
}

func (manager *PeriodManager) DaysRemaining() int {
	return DaysRemaining(manager.Current(), manager.Today())
}

func (manager *PeriodManager) IsBoundaryDay() bool {
	return IsPeriodBoundary(manager.Today())
}

func (manager *PeriodManager) PeriodForKey(dateKey string) (Period, error) {
	day, err := ParseDay(dateKey, manager.location)
	if err != nil {
		return Period{}, err
	}
	return PeriodFor(day), nil
}
