package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const PeriodStatusClosed = "closed"

type PeriodTotals struct {
	Calls                 int     `json:"calls"`
	Reservations          int     `json:"reservations"`
	Profit                float64 `json:"profit"`
	Spins                 float64 `json:"spins"`
	Combined              float64 `json:"combined"`
	Misc                  float64 `json:"misc"`
	PrepaidCount          int     `json:"prepaid_count"`
	RefundProtectionCount int     `json:"refund_protection_count"`
}

type GoalsMet struct {
	Calls        bool `json:"calls"`
	Reservations bool `json:"reservations"`
	Profit       bool `json:"profit"`
	Spins        bool `json:"spins"`
	Combined     bool `json:"combined"`
	Misc         bool `json:"misc"`
}

// PeriodLog is the immutable snapshot written when a pay period is closed.
type PeriodLog struct {
	ID                string       `gorm:"primaryKey" json:"id"`
	PeriodID          string       `gorm:"not null;uniqueIndex" json:"period_id"`
	StartDate         string       `gorm:"not null" json:"start_date"`
	EndDate           string       `gorm:"not null" json:"end_date"`
	Status            string       `gorm:"not null;default:closed" json:"status"`
	EntryCount        int          `gorm:"not null;default:0" json:"entry_count"`
	Totals            PeriodTotals `gorm:"embedded;embeddedPrefix:totals_" json:"totals"`
	Goals             GoalsConfig  `gorm:"serializer:json" json:"goals"`
	GoalsMet          GoalsMet     `gorm:"embedded;embeddedPrefix:goals_met_" json:"goals_met"`
	ConversionRate    float64      `gorm:"not null;default:0" json:"conversion_rate"`
	AvgTimePerBooking float64      `gorm:"not null;default:0" json:"avg_time_per_booking"`
	ArchivedAt        time.Time    `json:"archived_at"`
}

func (log *PeriodLog) BeforeCreate(*gorm.DB) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	return nil
}
