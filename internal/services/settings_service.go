package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/kpitracker/internal/models"
)

var (
	ErrSettingsLoadFailed = errors.New("load settings failed")
	ErrSettingsSaveFailed = errors.New("save settings failed")

	errMalformedSetting = errors.New("malformed setting")
)

// SettingsService keeps goals and conversion config as JSON values. Missing
// or unreadable values resolve to the defaults.
type SettingsService struct {
	store  KeyValueStore
	logger logrus.FieldLogger
}

func NewSettingsService(store KeyValueStore, logger logrus.FieldLogger) *SettingsService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SettingsService{store: store, logger: logger.WithField("component", "settings")}
}

func (service *SettingsService) Goals() (models.GoalsConfig, error) {
	goals := models.DefaultGoals()
	switch err := service.load(models.SettingKeyGoals, &goals); {
	case errors.Is(err, errMalformedSetting):
		return models.DefaultGoals(), nil
	case err != nil:
		return models.DefaultGoals(), err
	}
	return goals, nil
}

func (service *SettingsService) SaveGoals(goals models.GoalsConfig) error {
	if err := ValidateInput(goals); err != nil {
		return err
	}
	return service.save(models.SettingKeyGoals, goals)
}

func (service *SettingsService) Conversion() (models.ConversionConfig, error) {
	conversion := models.DefaultConversion()
	switch err := service.load(models.SettingKeyConversion, &conversion); {
	case errors.Is(err, errMalformedSetting):
		return models.DefaultConversion(), nil
	case err != nil:
		return models.DefaultConversion(), err
	}
	return conversion, nil
}

func (service *SettingsService) SaveConversion(conversion models.ConversionConfig) error {
	if err := ValidateInput(conversion); err != nil {
		return err
	}
	return service.save(models.SettingKeyConversion, conversion)
}

func (service *SettingsService) Reset() error {
	if err := service.store.Delete(models.SettingKeyGoals, models.SettingKeyConversion); err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsSaveFailed, err)
	}
	return nil
}

// load decodes the stored value over target, which already holds the defaults.
func (service *SettingsService) load(key string, target any) error {
	raw, found, err := service.store.Get(key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsLoadFailed, err)
	}
	if !found {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		service.logger.WithField("key", key).WithError(err).Warn("stored setting malformed, using defaults")
		return errMalformedSetting
	}
	return nil
}

func (service *SettingsService) save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsSaveFailed, err)
	}
	if err := service.store.Put(key, string(raw)); err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsSaveFailed, err)
	}
	return nil
}
