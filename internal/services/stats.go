package services

import (
	"math"

	"github.com/terraincognita07/kpitracker/internal/models"
)

const (
	StatusOnTrack = "on_track"
	StatusWarning = "warning"
	StatusDanger  = "danger"

	onTrackProgressPercent = 100
	warningProgressPercent = 75

	PrepaidBookingsPerSpin = 4
	SpinsPerMegaSpin       = 4
)

type MetricStat struct {
	Total           float64 `json:"total"`
	Goal            float64 `json:"goal"`
	ProgressPercent float64 `json:"progress_percent"`
	Remaining       float64 `json:"remaining"`
	OnTrack         bool    `json:"on_track"`
	Status          string  `json:"status"`
}

type ReservationStat struct {
	MetricStat
	PrepaidCount          int `json:"prepaid_count"`
	RefundProtectionCount int `json:"refund_protection_count"`
}

type ConversionStat struct {
	Rate    float64 `json:"rate"`
	Goal    float64 `json:"goal"`
	OnTrack bool    `json:"on_track"`
	Status  string  `json:"status"`
}

type TimeStat struct {
	Average float64 `json:"average"`
	Goal    float64 `json:"goal"`
	OnTrack bool    `json:"on_track"`
	Status  string  `json:"status"`
}

type SpinAverages struct {
	Regular     float64 `json:"regular"`
	RegularGoal float64 `json:"regular_goal"`
	Mega        float64 `json:"mega"`
	MegaGoal    float64 `json:"mega_goal"`
}

// SpinCycle tracks prepaid bookings toward the next spin. Every fourth prepaid
// booking earns a spin and every fourth spin is a mega spin.
type SpinCycle struct {
	PrepaidCount         int     `json:"prepaid_count"`
	MoreNeeded           int     `json:"more_needed"`
	CycleProgressPercent float64 `json:"cycle_progress_percent"`
	SpinsEarned          int     `json:"spins_earned"`
	MegaEligible         bool    `json:"mega_eligible"`
}

type DailyStats struct {
	Date           string              `json:"date"`
	Calls          MetricStat          `json:"calls"`
	Reservations   ReservationStat     `json:"reservations"`
	ConversionRate ConversionStat      `json:"conversion_rate"`
	Profit         MetricStat          `json:"profit"`
	Spins          MetricStat          `json:"spins"`
	Misc           MetricStat          `json:"misc"`
	AvgTime        TimeStat            `json:"avg_time"`
	Earnings       ConversionBreakdown `json:"earnings"`
}

type PeriodStats struct {
	Period         string           `json:"period"`
	PeriodID       string           `json:"period_id"`
	StartDate      string           `json:"start_date"`
	EndDate        string           `json:"end_date"`
	DaysTracked    int              `json:"days_tracked"`
	DaysRemaining  int              `json:"days_remaining"`
	Calls          MetricStat       `json:"calls"`
	Reservations   ReservationStat  `json:"reservations"`
	ConversionRate ConversionStat   `json:"conversion_rate"`
	Profit         MetricStat       `json:"profit"`
	Spins          MetricStat       `json:"spins"`
	Combined       MetricStat       `json:"combined"`
	Misc           MetricStat       `json:"misc"`
	AvgTime        TimeStat         `json:"avg_time"`
	SpinAverages   SpinAverages     `json:"spin_averages"`
	SpinCycle      SpinCycle        `json:"spin_cycle"`
	Earnings       PeriodConversion `json:"earnings"`
}

// EntryTotals is the raw sum of a set of daily entries.
type EntryTotals struct {
	Entries               int
	Calls                 int
	Reservations          int
	Profit                float64
	Spins                 float64
	Misc                  float64
	PrepaidCount          int
	RefundProtectionCount int
	BookingMinutes        []int
	RegularSpinAmounts    []float64
	MegaSpinAmounts       []float64
}

func (totals EntryTotals) Combined() float64 {
	return totals.Profit + totals.Spins + totals.Misc
}

func SumEntries(entries []models.DailyEntry) EntryTotals {
	totals := EntryTotals{Entries: len(entries)}
	for _, entry := range entries {
		totals.Calls += entry.CallsReceived
		for _, booking := range entry.Bookings {
			totals.Reservations++
			totals.Profit += booking.Profit
			totals.BookingMinutes = append(totals.BookingMinutes, booking.TimeSinceLast)
			if booking.IsPrepaid {
				totals.PrepaidCount++
			}
			if booking.HasRefundProtection {
				totals.RefundProtectionCount++
			}
		}
		for _, spin := range entry.Spins {
			totals.Spins += spin.Amount
			if spin.IsMega {
				totals.MegaSpinAmounts = append(totals.MegaSpinAmounts, spin.Amount)
			} else {
				totals.RegularSpinAmounts = append(totals.RegularSpinAmounts, spin.Amount)
			}
		}
		for _, misc := range entry.MiscIncome {
			totals.Misc += misc.Amount
		}
	}
	return totals
}

func StatusForProgress(progressPercent float64) string {
	switch {
	case progressPercent >= onTrackProgressPercent:
		return StatusOnTrack
	case progressPercent >= warningProgressPercent:
		return StatusWarning
	default:
		return StatusDanger
	}
}

// ProgressPercent is total/goal*100 rounded to one decimal. An unset goal
// (zero or negative) counts as reached.
func ProgressPercent(total float64, goal float64) float64 {
	if goal <= 0 {
		return onTrackProgressPercent
	}
	return roundTo(total/goal*100, 1)
}

func BuildMetricStat(total float64, goal float64) MetricStat {
	progress := ProgressPercent(total, goal)
	status := StatusForProgress(progress)
	return MetricStat{
		Total:           roundTo(total, 2),
		Goal:            roundTo(goal, 2),
		ProgressPercent: progress,
		Remaining:       roundTo(math.Max(goal-total, 0), 2),
		OnTrack:         status == StatusOnTrack,
		Status:          status,
	}
}

func BuildReservationStat(totals EntryTotals, goal float64) ReservationStat {
	return ReservationStat{
		MetricStat:            BuildMetricStat(float64(totals.Reservations), goal),
		PrepaidCount:          totals.PrepaidCount,
		RefundProtectionCount: totals.RefundProtectionCount,
	}
}

func BuildConversionStat(reservations int, calls int, reservationsGoal float64, callsGoal float64) ConversionStat {
	rate := 0.0
	if calls > 0 {
		rate = roundTo(float64(reservations)/float64(calls)*100, 2)
	}
	goal := 0.0
	if callsGoal > 0 {
		goal = roundTo(reservationsGoal/callsGoal*100, 2)
	}
	onTrack := rate >= goal
	return ConversionStat{Rate: rate, Goal: goal, OnTrack: onTrack, Status: binaryStatus(onTrack)}
}

// BuildTimeStat averages minutes between bookings. Lower is better, and an
// empty sample or an unset goal is on track.
func BuildTimeStat(minutes []int, goal float64) TimeStat {
	average := 0.0
	if len(minutes) > 0 {
		sum := 0
		for _, value := range minutes {
			sum += value
		}
		average = roundTo(float64(sum)/float64(len(minutes)), 1)
	}
	onTrack := average == 0 || goal <= 0 || average <= goal
	return TimeStat{Average: average, Goal: goal, OnTrack: onTrack, Status: binaryStatus(onTrack)}
}

func BuildSpinCycle(prepaidCount int) SpinCycle {
	if prepaidCount < 0 {
		prepaidCount = 0
	}
	position := prepaidCount % PrepaidBookingsPerSpin
	moreNeeded := PrepaidBookingsPerSpin - position
	if position == 0 && prepaidCount > 0 {
		moreNeeded = 0
	}
	megaCycle := PrepaidBookingsPerSpin * SpinsPerMegaSpin
	return SpinCycle{
		PrepaidCount:         prepaidCount,
		MoreNeeded:           moreNeeded,
		CycleProgressPercent: float64(position) / PrepaidBookingsPerSpin * 100,
		SpinsEarned:          prepaidCount / PrepaidBookingsPerSpin,
		MegaEligible:         prepaidCount%megaCycle >= megaCycle-PrepaidBookingsPerSpin,
	}
}

func BuildSpinAverages(totals EntryTotals, goals models.GoalsConfig) SpinAverages {
	return SpinAverages{
		Regular:     roundTo(mean(totals.RegularSpinAmounts), 2),
		RegularGoal: goals.AvgSpin,
		Mega:        roundTo(mean(totals.MegaSpinAmounts), 2),
		MegaGoal:    goals.AvgMegaSpin,
	}
}

// BuildDailyStats evaluates one day against the daily goals.
func BuildDailyStats(date string, entry models.DailyEntry, goals models.GoalsConfig, conversion models.ConversionConfig) DailyStats {
	totals := SumEntries([]models.DailyEntry{entry})
	return DailyStats{
		Date:           date,
		Calls:          BuildMetricStat(float64(totals.Calls), goals.CallsDaily),
		Reservations:   BuildReservationStat(totals, goals.ReservationsDaily),
		ConversionRate: BuildConversionStat(totals.Reservations, totals.Calls, goals.ReservationsDaily, goals.CallsDaily),
		Profit:         BuildMetricStat(totals.Profit, goals.ProfitDaily),
		Spins:          BuildMetricStat(totals.Spins, goals.SpinsDaily),
		Misc:           BuildMetricStat(totals.Misc, 0),
		AvgTime:        BuildTimeStat(totals.BookingMinutes, goals.AvgTimePerBooking),
		Earnings:       ConvertUSD(totals.Combined(), conversion),
	}
}

// BuildPeriodStats evaluates the entries of one pay period against the biweekly goals.
func BuildPeriodStats(period Period, today string, entries []models.DailyEntry, goals models.GoalsConfig, conversion models.ConversionConfig) PeriodStats {
	totals := SumEntries(entries)
	daysRemaining := 0
	if day, err := ParseDay(today, period.Start.Location()); err == nil {
		daysRemaining = DaysRemaining(period, day)
	}

	return PeriodStats{
		Period:         "biweekly",
		PeriodID:       period.ID,
		StartDate:      period.StartKey(),
		EndDate:        period.EndKey(),
		DaysTracked:    totals.Entries,
		DaysRemaining:  daysRemaining,
		Calls:          BuildMetricStat(float64(totals.Calls), goals.CallsBiweekly),
		Reservations:   BuildReservationStat(totals, goals.ReservationsBiweekly),
		ConversionRate: BuildConversionStat(totals.Reservations, totals.Calls, goals.ReservationsBiweekly, goals.CallsBiweekly),
		Profit:         BuildMetricStat(totals.Profit, goals.ProfitBiweekly),
		Spins:          BuildMetricStat(totals.Spins, goals.SpinsBiweekly),
		Combined:       BuildMetricStat(totals.Combined(), goals.CombinedBiweekly),
		Misc:           BuildMetricStat(totals.Misc, goals.MiscBiweekly),
		AvgTime:        BuildTimeStat(totals.BookingMinutes, goals.AvgTimePerBooking),
		SpinAverages:   BuildSpinAverages(totals, goals),
		SpinCycle:      BuildSpinCycle(totals.PrepaidCount),
		Earnings:       ConvertPeriodUSD(totals.Combined(), conversion),
	}
}

func binaryStatus(onTrack bool) string {
	if onTrack {
		return StatusOnTrack
	}
	return StatusDanger
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
