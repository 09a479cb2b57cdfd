package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

const (
	MiscSourceRequestLead      = "request_lead"
	MiscSourceRefundProtection = "refund_protection"
	MiscSourceOther            = "other"
)

type DailyEntry struct {
	ID            string       `gorm:"primaryKey" json:"id"`
	Date          string       `gorm:"not null;uniqueIndex" json:"date"`
	PeriodID      string       `gorm:"not null;default:'';index" json:"period_id"`
	Archived      bool         `gorm:"not null;default:false" json:"archived"`
	CallsReceived int          `gorm:"not null;default:0" json:"calls_received"`
	Bookings      []Booking    `gorm:"constraint:OnDelete:CASCADE" json:"bookings"`
	Spins         []Spin       `gorm:"constraint:OnDelete:CASCADE" json:"spins"`
	MiscIncome    []MiscIncome `gorm:"constraint:OnDelete:CASCADE" json:"misc_income"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (entry *DailyEntry) BeforeCreate(*gorm.DB) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return nil
}

type Booking struct {
	ID                  string    `gorm:"primaryKey" json:"id"`
	DailyEntryID        string    `gorm:"not null;index" json:"-"`
	Profit              float64   `gorm:"not null;default:0" json:"profit"`
	IsPrepaid           bool      `gorm:"not null;default:false" json:"is_prepaid"`
	HasRefundProtection bool      `gorm:"not null;default:false" json:"has_refund_protection"`
	TimeSinceLast       int       `gorm:"not null;default:0" json:"time_since_last"`
	CreatedAt           time.Time `json:"timestamp"`
}

func (booking *Booking) BeforeCreate(*gorm.DB) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	return nil
}

type Spin struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	DailyEntryID  string    `gorm:"not null;index" json:"-"`
	Amount        float64   `gorm:"not null;default:0" json:"amount"`
	IsMega        bool      `gorm:"not null;default:false" json:"is_mega"`
	BookingNumber int       `gorm:"not null;default:0" json:"booking_number"`
	CreatedAt     time.Time `json:"timestamp"`
}

func (spin *Spin) BeforeCreate(*gorm.DB) error {
	if spin.ID == "" {
		spin.ID = uuid.NewString()
	}
	return nil
}

type MiscIncome struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	DailyEntryID string    `gorm:"not null;index" json:"-"`
	Amount       float64   `gorm:"not null;default:0" json:"amount"`
	Source       string    `gorm:"not null;default:request_lead" json:"source"`
	Description  string    `gorm:"not null;default:''" json:"description"`
	CreatedAt    time.Time `json:"timestamp"`
}

func (misc *MiscIncome) BeforeCreate(*gorm.DB) error {
	if misc.ID == "" {
		misc.ID = uuid.NewString()
	}
	return nil
}

func IsValidMiscSource(source string) bool {
	switch source {
	case MiscSourceRequestLead, MiscSourceRefundProtection, MiscSourceOther:
		return true
	default:
		return false
	}
}
