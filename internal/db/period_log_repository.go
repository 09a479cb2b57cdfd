package db

import (
	"github.com/terraincognita07/kpitracker/internal/models"
	"gorm.io/gorm"
)

type PeriodLogRepository struct {
	database *gorm.DB
}

func NewPeriodLogRepository(database *gorm.DB) *PeriodLogRepository {
	return &PeriodLogRepository{database: database}
}

func (repo *PeriodLogRepository) FindByPeriodID(periodID string) (models.PeriodLog, bool, error) {
	log := models.PeriodLog{}
	result := repo.database.Where("period_id = ?", periodID).Limit(1).Find(&log)
	if result.Error != nil {
		return models.PeriodLog{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.PeriodLog{}, false, nil
	}
	return log, true, nil
}

func (repo *PeriodLogRepository) List(limit int) ([]models.PeriodLog, error) {
	query := repo.database.Order("start_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	logs := make([]models.PeriodLog, 0)
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateWithArchivedEntries stores the snapshot and flags every entry of the
// window as archived in one transaction.
func (repo *PeriodLogRepository) CreateWithArchivedEntries(log *models.PeriodLog) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(log).Error; err != nil {
			return err
		}
		return tx.Model(&models.DailyEntry{}).
			Where("date >= ? AND date <= ?", log.StartDate, log.EndDate).
			Updates(map[string]any{"archived": true, "period_id": log.PeriodID}).Error
	})
}

func (repo *PeriodLogRepository) DeleteByPeriodID(periodID string) (bool, error) {
	result := repo.database.Where("period_id = ?", periodID).Delete(&models.PeriodLog{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
