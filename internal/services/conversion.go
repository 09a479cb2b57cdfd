package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/terraincognita07/kpitracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ConversionBreakdown is a USD amount expressed in local currency, rounded to cents.
type ConversionBreakdown struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Fee   float64 `json:"fee"`
	Total float64 `json:"total"`
}

type PeriodConversion struct {
	ConversionBreakdown
	PeriodFee float64 `json:"period_fee"`
	Net       float64 `json:"net"`
}

// ConvertUSD returns base = usd*rate, fee = base*percent/100 and their sum.
// Non-positive or non-finite amounts, rates and fees yield an all-zero breakdown.
func ConvertUSD(usd float64, config models.ConversionConfig) ConversionBreakdown {
	if !isFinite(usd, config.ExchangeRate, config.ProcessingFeePercent) || usd <= 0 || config.ExchangeRate <= 0 {
		return ConversionBreakdown{}
	}

	amount := decimal.NewFromFloat(usd)
	base := amount.Mul(decimal.NewFromFloat(config.ExchangeRate)).Round(2)
	fee := base.Mul(decimal.NewFromFloat(config.ProcessingFeePercent)).Div(hundred).Round(2)
	total := base.Add(fee)

	return ConversionBreakdown{
		USD:   amount.Round(2).InexactFloat64(),
		Base:  base.InexactFloat64(),
		Fee:   fee.InexactFloat64(),
		Total: total.InexactFloat64(),
	}
}

// ConvertPeriodUSD applies the flat period fee on top of ConvertUSD. The daily
// view never carries that fee.
func ConvertPeriodUSD(usd float64, config models.ConversionConfig) PeriodConversion {
	breakdown := ConvertUSD(usd, config)
	if !isFinite(config.PeriodFee) {
		return PeriodConversion{ConversionBreakdown: breakdown, Net: breakdown.Total}
	}
	periodFee := decimal.NewFromFloat(config.PeriodFee)
	net := decimal.NewFromFloat(breakdown.Total).Sub(periodFee).Round(2)

	return PeriodConversion{
		ConversionBreakdown: breakdown,
		PeriodFee:           periodFee.InexactFloat64(),
		Net:                 net.InexactFloat64(),
	}
}

// ParseAmount parses a decimal number and rejects NaN and infinities, which
// strconv accepts.
func ParseAmount(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !isFinite(value) {
		return 0, false
	}
	return value, true
}

func isFinite(values ...float64) bool {
	for _, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false
		}
	}
	return true
}
