package services

import "github.com/terraincognita07/kpitracker/internal/models"

type BookingInput struct {
	Profit              *float64 `json:"profit" validate:"required,finite,gte=0"`
	IsPrepaid           bool     `json:"is_prepaid"`
	HasRefundProtection bool     `json:"has_refund_protection"`
	TimeSinceLast       *int     `json:"time_since_last" validate:"omitempty,gte=0"`
}

func (input BookingInput) toModel() models.Booking {
	booking := models.Booking{
		IsPrepaid:           input.IsPrepaid,
		HasRefundProtection: input.HasRefundProtection,
	}
	if input.Profit != nil {
		booking.Profit = *input.Profit
	}
	if input.TimeSinceLast != nil {
		booking.TimeSinceLast = *input.TimeSinceLast
	}
	return booking
}

type SpinInput struct {
	Amount        *float64 `json:"amount" validate:"required,finite,gte=0"`
	IsMega        bool     `json:"is_mega"`
	BookingNumber int      `json:"booking_number" validate:"gte=0"`
}

type MiscIncomeInput struct {
	Amount      *float64 `json:"amount" validate:"required,finite,gte=0"`
	Source      string   `json:"source" validate:"omitempty,oneof=request_lead refund_protection other"`
	Description string   `json:"description" validate:"max=500"`
}

type CallsInput struct {
	CallsReceived *int `json:"calls_received" validate:"required,gte=0"`
}
