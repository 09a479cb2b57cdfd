package services

import (
	"math"
	"testing"

	"github.com/terraincognita07/kpitracker/internal/models"
)

func TestConvertUSDIncludesProcessingFee(t *testing.T) {
	breakdown := ConvertUSD(100, models.ConversionConfig{ExchangeRate: 15.86, ProcessingFeePercent: 17})

	if breakdown.Base != 1586.00 {
		t.Fatalf("expected base 1586.00, got %v", breakdown.Base)
	}
	if breakdown.Fee != 269.62 {
		t.Fatalf("expected fee 269.62, got %v", breakdown.Fee)
	}
	if breakdown.Total != 1855.62 {
		t.Fatalf("expected total 1855.62, got %v", breakdown.Total)
	}
}

func TestConvertUSDReturnsZeroForNonPositiveInputs(t *testing.T) {
	testCases := []struct {
		name   string
		usd    float64
		config models.ConversionConfig
	}{
		{name: "zero amount", usd: 0, config: models.DefaultConversion()},
		{name: "negative amount", usd: -5, config: models.DefaultConversion()},
		{name: "zero rate", usd: 100, config: models.ConversionConfig{ExchangeRate: 0, ProcessingFeePercent: 17}},
		{name: "negative rate", usd: 100, config: models.ConversionConfig{ExchangeRate: -1}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := ConvertUSD(testCase.usd, testCase.config); got != (ConversionBreakdown{}) {
				t.Fatalf("expected zero breakdown, got %#v", got)
			}
		})
	}
}

func TestConvertPeriodUSDSubtractsFlatFee(t *testing.T) {
	conversion := ConvertPeriodUSD(100, models.DefaultConversion())

	if conversion.Total != 1855.62 {
		t.Fatalf("expected total 1855.62, got %v", conversion.Total)
	}
	if conversion.PeriodFee != 100 || conversion.Net != 1755.62 {
		t.Fatalf("expected net 1755.62 after fee 100, got %#v", conversion)
	}
}

func TestConvertPeriodUSDAppliesFeeToEmptyPeriod(t *testing.T) {
	conversion := ConvertPeriodUSD(0, models.DefaultConversion())
	if conversion.Total != 0 || conversion.Net != -100 {
		t.Fatalf("expected net -100 for an empty period, got %#v", conversion)
	}
}

func TestConvertUSDReturnsZeroForNonFiniteInputs(t *testing.T) {
	testCases := []struct {
		name   string
		usd    float64
		config models.ConversionConfig
	}{
		{name: "nan amount", usd: math.NaN(), config: models.DefaultConversion()},
		{name: "infinite amount", usd: math.Inf(1), config: models.DefaultConversion()},
		{name: "infinite rate", usd: 100, config: models.ConversionConfig{ExchangeRate: math.Inf(1), ProcessingFeePercent: 17}},
		{name: "nan fee percent", usd: 100, config: models.ConversionConfig{ExchangeRate: 15.86, ProcessingFeePercent: math.NaN()}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := ConvertUSD(testCase.usd, testCase.config); got != (ConversionBreakdown{}) {
				t.Fatalf("expected zero breakdown, got %#v", got)
			}
		})
	}

	config := models.DefaultConversion()
	config.PeriodFee = math.Inf(-1)
	conversion := ConvertPeriodUSD(100, config)
	if conversion.Total != 1855.62 || conversion.PeriodFee != 0 || conversion.Net != 1855.62 {
		t.Fatalf("expected a non-finite period fee to be ignored, got %#v", conversion)
	}
}

func TestParseAmountRejectsNonFiniteValues(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+infinity", "1e400", "", "ten"} {
		if _, ok := ParseAmount(raw); ok {
			t.Fatalf("ParseAmount(%q) expected rejection", raw)
		}
	}
	value, ok := ParseAmount(" 12.5 ")
	if !ok || value != 12.5 {
		t.Fatalf("expected 12.5, got %v ok=%v", value, ok)
	}
}
