package db

import (
	"time"

	"github.com/terraincognita07/kpitracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository is a string key-value store over the settings table.
type SettingRepository struct {
	database *gorm.DB
}

func NewSettingRepository(database *gorm.DB) *SettingRepository {
	return &SettingRepository{database: database}
}

func (repo *SettingRepository) Get(key string) (string, bool, error) {
	setting := models.Setting{}
	result := repo.database.Where("key = ?", key).Limit(1).Find(&setting)
	if result.Error != nil {
		return "", false, result.Error
	}
	if result.RowsAffected == 0 {
		return "", false, nil
	}
	return setting.Value, true, nil
}

func (repo *SettingRepository) Put(key string, value string) error {
	setting := models.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

func (repo *SettingRepository) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return repo.database.Where("key IN ?", keys).Delete(&models.Setting{}).Error
}
