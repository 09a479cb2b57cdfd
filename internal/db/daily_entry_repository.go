package db

import (
	"time"

	"github.com/terraincognita07/kpitracker/internal/models"
	"gorm.io/gorm"
)

type DailyEntryRepository struct {
	database *gorm.DB
}

func NewDailyEntryRepository(database *gorm.DB) *DailyEntryRepository {
	return &DailyEntryRepository{database: database}
}

func withEntryChildren(query *gorm.DB) *gorm.DB {
	byCreation := func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC, id ASC")
	}
	return query.
		Preload("Bookings", byCreation).
		Preload("Spins", byCreation).
		Preload("MiscIncome", byCreation)
}

func (repo *DailyEntryRepository) FindByDate(date string) (models.DailyEntry, bool, error) {
	entry := models.DailyEntry{}
	result := withEntryChildren(repo.database).
		Where("date = ?", date).
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.DailyEntry{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyEntry{}, false, nil
	}
	return fillEntryCollections(entry), true, nil
}

// ListRange returns entries newest first. Empty bounds are open.
func (repo *DailyEntryRepository) ListRange(startDate string, endDate string, archived *bool) ([]models.DailyEntry, error) {
	query := withEntryChildren(repo.database.Model(&models.DailyEntry{}))
	if startDate != "" {
		query = query.Where("date >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where("date <= ?", endDate)
	}
	if archived != nil {
		query = query.Where("archived = ?", *archived)
	}

	entries := make([]models.DailyEntry, 0)
	if err := query.Order("date DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return fillEntryCollectionsList(entries), nil
}

// ListPeriodEntries returns the entries of an inclusive date window, oldest first.
func (repo *DailyEntryRepository) ListPeriodEntries(startDate string, endDate string, includeArchived bool) ([]models.DailyEntry, error) {
	query := withEntryChildren(repo.database).
		Where("date >= ? AND date <= ?", startDate, endDate)
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	entries := make([]models.DailyEntry, 0)
	if err := query.Order("date ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return fillEntryCollectionsList(entries), nil
}

func (repo *DailyEntryRepository) ListUnassigned() ([]models.DailyEntry, error) {
	entries := make([]models.DailyEntry, 0)
	if err := repo.database.
		Where("period_id = ? OR period_id IS NULL", "").
		Order("date ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *DailyEntryRepository) AssignPeriod(entryIDs []string, periodID string, archived bool) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return repo.database.Model(&models.DailyEntry{}).
		Where("id IN ?", entryIDs).
		Updates(map[string]any{"period_id": periodID, "archived": archived}).Error
}

// EnsureByDate returns the entry for date, creating an empty one in periodID when missing.
func (repo *DailyEntryRepository) EnsureByDate(date string, periodID string) (models.DailyEntry, error) {
	entry := models.DailyEntry{}
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("date = ?", date).Limit(1).Find(&entry)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		entry = models.DailyEntry{Date: date, PeriodID: periodID}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return models.DailyEntry{}, err
	}
	return fillEntryCollections(entry), nil
}

func (repo *DailyEntryRepository) SetCalls(entryID string, calls int) error {
	return repo.database.Model(&models.DailyEntry{}).
		Where("id = ?", entryID).
		Updates(map[string]any{"calls_received": calls, "updated_at": time.Now()}).Error
}

func (repo *DailyEntryRepository) IncrementCalls(entryID string) error {
	return repo.database.Model(&models.DailyEntry{}).
		Where("id = ?", entryID).
		Updates(map[string]any{
			"calls_received": gorm.Expr("calls_received + ?", 1),
			"updated_at":     time.Now(),
		}).Error
}

func (repo *DailyEntryRepository) AddBooking(entryID string, booking *models.Booking) error {
	booking.DailyEntryID = entryID
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		return touchEntry(tx, entryID)
	})
}

// UpdateBooking rewrites a booking in place. The update and the entry touch
// commit together or not at all.
func (repo *DailyEntryRepository) UpdateBooking(entryID string, booking models.Booking) (bool, error) {
	updated := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Booking{}).
			Where("id = ? AND daily_entry_id = ?", booking.ID, entryID).
			Updates(map[string]any{
				"profit":                booking.Profit,
				"is_prepaid":            booking.IsPrepaid,
				"has_refund_protection": booking.HasRefundProtection,
				"time_since_last":       booking.TimeSinceLast,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		updated = true
		return touchEntry(tx, entryID)
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (repo *DailyEntryRepository) DeleteBooking(entryID string, bookingID string) (bool, error) {
	return repo.deleteChild(&models.Booking{}, entryID, bookingID)
}

func (repo *DailyEntryRepository) AddSpin(entryID string, spin *models.Spin) error {
	spin.DailyEntryID = entryID
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(spin).Error; err != nil {
			return err
		}
		return touchEntry(tx, entryID)
	})
}

func (repo *DailyEntryRepository) DeleteSpin(entryID string, spinID string) (bool, error) {
	return repo.deleteChild(&models.Spin{}, entryID, spinID)
}

func (repo *DailyEntryRepository) AddMiscIncome(entryID string, misc *models.MiscIncome) error {
	misc.DailyEntryID = entryID
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(misc).Error; err != nil {
			return err
		}
		return touchEntry(tx, entryID)
	})
}

func (repo *DailyEntryRepository) DeleteMiscIncome(entryID string, miscID string) (bool, error) {
	return repo.deleteChild(&models.MiscIncome{}, entryID, miscID)
}

func (repo *DailyEntryRepository) deleteChild(model any, entryID string, childID string) (bool, error) {
	deleted := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND daily_entry_id = ?", childID, entryID).Delete(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return touchEntry(tx, entryID)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func touchEntry(tx *gorm.DB, entryID string) error {
	return tx.Model(&models.DailyEntry{}).
		Where("id = ?", entryID).
		Update("updated_at", time.Now()).Error
}

func fillEntryCollections(entry models.DailyEntry) models.DailyEntry {
	if entry.Bookings == nil {
		entry.Bookings = []models.Booking{}
	}
	if entry.Spins == nil {
		entry.Spins = []models.Spin{}
	}
	if entry.MiscIncome == nil {
		entry.MiscIncome = []models.MiscIncome{}
	}
	return entry
}

func fillEntryCollectionsList(entries []models.DailyEntry) []models.DailyEntry {
	for index := range entries {
		entries[index] = fillEntryCollections(entries[index])
	}
	return entries
}
