package db

import "gorm.io/gorm"

type Repositories struct {
	Entries    *DailyEntryRepository
	PeriodLogs *PeriodLogRepository
	Settings   *SettingRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Entries:    NewDailyEntryRepository(database),
		PeriodLogs: NewPeriodLogRepository(database),
		Settings:   NewSettingRepository(database),
	}
}
