package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/kpitracker/internal/models"
)

var ErrInvalidDate = errors.New("invalid date")

// Clock returns the current wall-clock time. Services take one so tests can pin "now".
type Clock func() time.Time

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayKey(value time.Time, location *time.Location) string {
	return DateAtLocation(value, location).Format(models.DateLayout)
}

func ParseDay(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	parsed, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(raw), location)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed, nil
}

// daysBetween counts calendar days from a to b, ignoring clock time and DST shifts.
func daysBetween(a time.Time, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
