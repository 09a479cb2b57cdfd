package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/kpitracker/internal/models"
)

var (
	ErrEntryNotFound     = errors.New("entry not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrEntryLoadFailed   = errors.New("load entry failed")
	ErrEntryCreateFailed = errors.New("create entry failed")
	ErrEntryUpdateFailed = errors.New("update entry failed")
)

type EntryRepository interface {
	FindByDate(date string) (models.DailyEntry, bool, error)
	ListRange(startDate string, endDate string, archived *bool) ([]models.DailyEntry, error)
	ListPeriodEntries(startDate string, endDate string, includeArchived bool) ([]models.DailyEntry, error)
	EnsureByDate(date string, periodID string) (models.DailyEntry, error)
	SetCalls(entryID string, calls int) error
	IncrementCalls(entryID string) error
	AddBooking(entryID string, booking *models.Booking) error
	UpdateBooking(entryID string, booking models.Booking) (bool, error)
	DeleteBooking(entryID string, bookingID string) (bool, error)
	AddSpin(entryID string, spin *models.Spin) error
	DeleteSpin(entryID string, spinID string) (bool, error)
	AddMiscIncome(entryID string, misc *models.MiscIncome) error
	DeleteMiscIncome(entryID string, miscID string) (bool, error)
}

// PeriodCloser archives the previous pay period once the current one has begun.
type PeriodCloser interface {
	EnsurePreviousPeriodClosed() error
}

type EntryService struct {
	entries EntryRepository
	periods *PeriodManager
	closer  PeriodCloser
	logger  logrus.FieldLogger
}

func NewEntryService(entries EntryRepository, periods *PeriodManager, closer PeriodCloser, logger logrus.FieldLogger) *EntryService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EntryService{
		entries: entries,
		periods: periods,
		closer:  closer,
		logger:  logger.WithField("component", "entries"),
	}
}

func (service *EntryService) Today() (models.DailyEntry, error) {
	service.closePreviousPeriod()
	return service.ensureEntry(service.periods.TodayKey())
}

func (service *EntryService) ByDate(date string) (models.DailyEntry, error) {
	if _, err := ParseDay(date, service.periods.Location()); err != nil {
		return models.DailyEntry{}, err
	}
	entry, found, err := service.entries.FindByDate(date)
	if err != nil {
		return models.DailyEntry{}, fmt.Errorf("%w: %w", ErrEntryLoadFailed, err)
	}
	if !found {
		return models.DailyEntry{}, ErrEntryNotFound
	}
	return entry, nil
}

// FindOrEmpty returns the stored entry or an unsaved empty one for date.
func (service *EntryService) FindOrEmpty(date string) (models.DailyEntry, error) {
	entry, err := service.ByDate(date)
	if errors.Is(err, ErrEntryNotFound) {
		return models.DailyEntry{
			Date:       date,
			Bookings:   []models.Booking{},
			Spins:      []models.Spin{},
			MiscIncome: []models.MiscIncome{},
		}, nil
	}
	return entry, err
}

func (service *EntryService) List(startDate string, endDate string, archived *bool) ([]models.DailyEntry, error) {
	for _, bound := range []string{startDate, endDate} {
		if bound == "" {
			continue
		}
		if _, err := ParseDay(bound, service.periods.Location()); err != nil {
			return nil, err
		}
	}
	entries, err := service.entries.ListRange(startDate, endDate, archived)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntryLoadFailed, err)
	}
	return entries, nil
}

// CurrentPeriodEntries returns the open entries of the running pay period.
func (service *EntryService) CurrentPeriodEntries() (Period, []models.DailyEntry, error) {
	service.closePreviousPeriod()
	period := service.periods.Current()
	entries, err := service.entries.ListPeriodEntries(period.StartKey(), period.EndKey(), false)
	if err != nil {
		return period, nil, fmt.Errorf("%w: %w", ErrEntryLoadFailed, err)
	}
	return period, entries, nil
}

func (service *EntryService) SetCalls(date string, input CallsInput) (models.DailyEntry, error) {
	if err := ValidateInput(input); err != nil {
		return models.DailyEntry{}, err
	}
	return service.write(date, func(entry models.DailyEntry) error {
		return service.entries.SetCalls(entry.ID, *input.CallsReceived)
	})
}

func (service *EntryService) IncrementCalls(date string) (models.DailyEntry, error) {
	return service.write(date, func(entry models.DailyEntry) error {
		return service.entries.IncrementCalls(entry.ID)
	})
}

func (service *EntryService) AddBooking(date string, input BookingInput) (models.DailyEntry, error) {
	if err := ValidateInput(input); err != nil {
		return models.DailyEntry{}, err
	}
	booking := input.toModel()
	return service.write(date, func(entry models.DailyEntry) error {
		return service.entries.AddBooking(entry.ID, &booking)
	})
}

// UpdateBooking edits a booking in one transaction; a failed edit leaves the
// stored booking untouched.
func (service *EntryService) UpdateBooking(date string, bookingID string, input BookingInput) (models.DailyEntry, error) {
	if err := ValidateInput(input); err != nil {
		return models.DailyEntry{}, err
	}
	entry, err := service.ByDate(date)
	if err != nil {
		return models.DailyEntry{}, err
	}

	booking := input.toModel()
	booking.ID = bookingID
	updated, err := service.entries.UpdateBooking(entry.ID, booking)
	if err != nil {
		return models.DailyEntry{}, fmt.Errorf("%w: %w", ErrEntryUpdateFailed, err)
	}
	if !updated {
		return models.DailyEntry{}, ErrBookingNotFound
	}
	return service.ByDate(date)
}

func (service *EntryService) DeleteBooking(date string, bookingID string) (models.DailyEntry, error) {
	return service.deleteChild(date, func(entryID string) (bool, error) {
		return service.entries.DeleteBooking(entryID, bookingID)
	})
}

func (service *EntryService) AddSpin(date string, input SpinInput) (models.DailyEntry, error) {
	if err := ValidateInput(input); err != nil {
		return models.DailyEntry{}, err
	}
	spin := models.Spin{Amount: *input.Amount, IsMega: input.IsMega, BookingNumber: input.BookingNumber}
	return service.write(date, func(entry models.DailyEntry) error {
		return service.entries.AddSpin(entry.ID, &spin)
	})
}

func (service *EntryService) DeleteSpin(date string, spinID string) (models.DailyEntry, error) {
	return service.deleteChild(date, func(entryID string) (bool, error) {
		return service.entries.DeleteSpin(entryID, spinID)
	})
}

func (service *EntryService) AddMiscIncome(date string, input MiscIncomeInput) (models.DailyEntry, error) {
	if err := ValidateInput(input); err != nil {
		return models.DailyEntry{}, err
	}
	misc := models.MiscIncome{Amount: *input.Amount, Source: input.Source, Description: input.Description}
	if misc.Source == "" {
		misc.Source = models.MiscSourceRequestLead
	}
	return service.write(date, func(entry models.DailyEntry) error {
		return service.entries.AddMiscIncome(entry.ID, &misc)
	})
}

func (service *EntryService) DeleteMiscIncome(date string, miscID string) (models.DailyEntry, error) {
	return service.deleteChild(date, func(entryID string) (bool, error) {
		return service.entries.DeleteMiscIncome(entryID, miscID)
	})
}

func (service *EntryService) write(date string, apply func(entry models.DailyEntry) error) (models.DailyEntry, error) {
	service.closePreviousPeriod()

	entry, err := service.ensureEntry(date)
	if err != nil {
		return models.DailyEntry{}, err
	}
	if err := apply(entry); err != nil {
		return models.DailyEntry{}, fmt.Errorf("%w: %w", ErrEntryUpdateFailed, err)
	}
	return service.ByDate(date)
}

// deleteChild removes an item from an existing entry. Removing an id that is
// already gone is not an error.
func (service *EntryService) deleteChild(date string, remove func(entryID string) (bool, error)) (models.DailyEntry, error) {
	entry, err := service.ByDate(date)
	if err != nil {
		return models.DailyEntry{}, err
	}
	removed, err := remove(entry.ID)
	if err != nil {
		return models.DailyEntry{}, fmt.Errorf("%w: %w", ErrEntryUpdateFailed, err)
	}
	if !removed {
		service.logger.WithField("date", date).Debug("delete matched no item")
	}
	return service.ByDate(date)
}

func (service *EntryService) ensureEntry(date string) (models.DailyEntry, error) {
	period, err := service.periods.PeriodForKey(date)
	if err != nil {
		return models.DailyEntry{}, err
	}
	entry, err := service.entries.EnsureByDate(date, period.ID)
	if err != nil {
		return models.DailyEntry{}, fmt.Errorf("%w: %w", ErrEntryCreateFailed, err)
	}
	return entry, nil
}

func (service *EntryService) closePreviousPeriod() {
	if service.closer == nil {
		return
	}
	if err := service.closer.EnsurePreviousPeriodClosed(); err != nil {
		service.logger.WithError(err).Warn("lazy period close failed")
	}
}
