package models

import "time"

const (
	SettingKeyTimer          = "kpi_timer"
	SettingKeyGoals          = "kpi_goals"
	SettingKeyConversion     = "kpi_conversion"
	SettingKeyLastActiveDate = "lastActiveDate"
)

// Setting is a single JSON value stored under a fixed key.
type Setting struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

type GoalsConfig struct {
	CallsDaily           float64 `json:"calls_daily" validate:"finite,gte=0"`
	CallsBiweekly        float64 `json:"calls_biweekly" validate:"finite,gte=0"`
	ReservationsDaily    float64 `json:"reservations_daily" validate:"finite,gte=0"`
	ReservationsBiweekly float64 `json:"reservations_biweekly" validate:"finite,gte=0"`
	ProfitDaily          float64 `json:"profit_daily" validate:"finite,gte=0"`
	ProfitBiweekly       float64 `json:"profit_biweekly" validate:"finite,gte=0"`
	SpinsDaily           float64 `json:"spins_daily" validate:"finite,gte=0"`
	SpinsBiweekly        float64 `json:"spins_biweekly" validate:"finite,gte=0"`
	CombinedBiweekly     float64 `json:"combined_biweekly" validate:"finite,gte=0"`
	MiscBiweekly         float64 `json:"misc_biweekly" validate:"finite,gte=0"`
	AvgTimePerBooking    float64 `json:"avg_time_per_booking" validate:"finite,gte=0"`
	AvgSpin              float64 `json:"avg_spin" validate:"finite,gte=0"`
	AvgMegaSpin          float64 `json:"avg_mega_spin" validate:"finite,gte=0"`
}

func DefaultGoals() GoalsConfig {
	return GoalsConfig{
		CallsBiweekly:        10,
		ReservationsBiweekly: 5,
		AvgSpin:              5,
		AvgMegaSpin:          49,
	}
}

type ConversionConfig struct {
	ExchangeRate         float64 `json:"exchange_rate" validate:"finite,gt=0"`
	ProcessingFeePercent float64 `json:"processing_fee_percent" validate:"finite,gte=0"`
	PeriodFee            float64 `json:"period_fee" validate:"finite,gte=0"`
}

func DefaultConversion() ConversionConfig {
	return ConversionConfig{
		ExchangeRate:         15.86,
		ProcessingFeePercent: 17,
		PeriodFee:            100,
	}
}

// TimerState is the persisted stopwatch. LastUpdate is unix milliseconds.
type TimerState struct {
	ElapsedSeconds int64 `json:"elapsed_seconds"`
	Running        bool  `json:"running"`
	Paused         bool  `json:"paused"`
	LastUpdate     int64 `json:"last_update"`
}
