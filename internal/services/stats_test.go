package services

import (
	"testing"

	"github.com/terraincognita07/kpitracker/internal/models"
)

func TestBuildMetricStatStatusThresholds(t *testing.T) {
	testCases := []struct {
		name         string
		total        float64
		goal         float64
		wantProgress float64
		wantStatus   string
	}{
		{name: "unset goal", total: 3, goal: 0, wantProgress: 100, wantStatus: StatusOnTrack},
		{name: "unset goal with zero total", total: 0, goal: 0, wantProgress: 100, wantStatus: StatusOnTrack},
		{name: "reached", total: 100, goal: 100, wantProgress: 100, wantStatus: StatusOnTrack},
		{name: "exceeded", total: 150, goal: 100, wantProgress: 150, wantStatus: StatusOnTrack},
		{name: "warning edge", total: 75, goal: 100, wantProgress: 75, wantStatus: StatusWarning},
		{name: "danger", total: 74, goal: 100, wantProgress: 74, wantStatus: StatusDanger},
		{name: "one decimal", total: 1, goal: 3, wantProgress: 33.3, wantStatus: StatusDanger},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			stat := BuildMetricStat(testCase.total, testCase.goal)
			if stat.ProgressPercent != testCase.wantProgress {
				t.Fatalf("expected progress %.1f, got %.1f", testCase.wantProgress, stat.ProgressPercent)
			}
			if stat.Status != testCase.wantStatus {
				t.Fatalf("expected status %s, got %s", testCase.wantStatus, stat.Status)
			}
			if stat.OnTrack != (testCase.wantStatus == StatusOnTrack) {
				t.Fatalf("expected on_track to mirror status, got %v", stat.OnTrack)
			}
		})
	}
}

func TestBuildMetricStatRemainingNeverNegative(t *testing.T) {
	if got := BuildMetricStat(12, 10).Remaining; got != 0 {
		t.Fatalf("expected remaining=0 once goal is passed, got %v", got)
	}
	if got := BuildMetricStat(4.25, 10).Remaining; got != 5.75 {
		t.Fatalf("expected remaining=5.75, got %v", got)
	}
}

func TestBuildSpinCycle(t *testing.T) {
	testCases := []struct {
		prepaid      int
		moreNeeded   int
		progress     float64
		spinsEarned  int
		megaEligible bool
	}{
		{prepaid: 0, moreNeeded: 4, progress: 0, spinsEarned: 0},
		{prepaid: 3, moreNeeded: 1, progress: 75, spinsEarned: 0},
		{prepaid: 4, moreNeeded: 0, progress: 0, spinsEarned: 1},
		{prepaid: 5, moreNeeded: 3, progress: 25, spinsEarned: 1},
		{prepaid: 11, moreNeeded: 1, progress: 75, spinsEarned: 2},
		{prepaid: 12, moreNeeded: 0, progress: 0, spinsEarned: 3, megaEligible: true},
		{prepaid: 15, moreNeeded: 1, progress: 75, spinsEarned: 3, megaEligible: true},
		{prepaid: 16, moreNeeded: 0, progress: 0, spinsEarned: 4},
		{prepaid: 28, moreNeeded: 0, progress: 0, spinsEarned: 7, megaEligible: true},
	}

	for _, testCase := range testCases {
		cycle := BuildSpinCycle(testCase.prepaid)
		if cycle.MoreNeeded != testCase.moreNeeded {
			t.Fatalf("prepaid=%d: expected more_needed=%d, got %d", testCase.prepaid, testCase.moreNeeded, cycle.MoreNeeded)
		}
		if cycle.CycleProgressPercent != testCase.progress {
			t.Fatalf("prepaid=%d: expected progress=%v, got %v", testCase.prepaid, testCase.progress, cycle.CycleProgressPercent)
		}
		if cycle.SpinsEarned != testCase.spinsEarned {
			t.Fatalf("prepaid=%d: expected spins_earned=%d, got %d", testCase.prepaid, testCase.spinsEarned, cycle.SpinsEarned)
		}
		if cycle.MegaEligible != testCase.megaEligible {
			t.Fatalf("prepaid=%d: expected mega_eligible=%v, got %v", testCase.prepaid, testCase.megaEligible, cycle.MegaEligible)
		}
	}
}

func TestBuildConversionStat(t *testing.T) {
	stat := BuildConversionStat(3, 8, 5, 10)
	if stat.Rate != 37.5 || stat.Goal != 50 {
		t.Fatalf("expected rate=37.5 goal=50, got %#v", stat)
	}
	if stat.OnTrack || stat.Status != StatusDanger {
		t.Fatalf("expected danger below goal, got %#v", stat)
	}

	empty := BuildConversionStat(0, 0, 5, 0)
	if empty.Rate != 0 || empty.Goal != 0 || !empty.OnTrack {
		t.Fatalf("expected zero rate to be on track without a calls goal, got %#v", empty)
	}
}

func TestBuildTimeStatAveragesAllBookings(t *testing.T) {
	stat := BuildTimeStat([]int{10, 0, 20}, 15)
	if stat.Average != 10 {
		t.Fatalf("expected average=10, got %v", stat.Average)
	}
	if !stat.OnTrack {
		t.Fatal("expected average below goal to be on track")
	}

	slow := BuildTimeStat([]int{30, 31}, 15)
	if slow.Average != 30.5 || slow.OnTrack || slow.Status != StatusDanger {
		t.Fatalf("expected slow bookings to be off track, got %#v", slow)
	}

	if empty := BuildTimeStat(nil, 15); empty.Average != 0 || !empty.OnTrack {
		t.Fatalf("expected empty sample to be on track, got %#v", empty)
	}
}

func samplePeriodEntries() []models.DailyEntry {
	return []models.DailyEntry{
		{
			Date:          "2024-03-04",
			CallsReceived: 6,
			Bookings: []models.Booking{
				{Profit: 40, IsPrepaid: true, TimeSinceLast: 12},
				{Profit: 25.5, HasRefundProtection: true, TimeSinceLast: 8},
			},
			Spins:      []models.Spin{{Amount: 5}, {Amount: 49, IsMega: true}},
			MiscIncome: []models.MiscIncome{{Amount: 10, Source: models.MiscSourceRequestLead}},
		},
		{
			Date:          "2024-03-05",
			CallsReceived: 4,
			Bookings: []models.Booking{
				{Profit: 34.5, IsPrepaid: true, TimeSinceLast: 10},
			},
			Spins: []models.Spin{{Amount: 7}},
		},
	}
}

func TestSumEntriesCombinesProfitSpinsAndMisc(t *testing.T) {
	totals := SumEntries(samplePeriodEntries())

	if totals.Calls != 10 || totals.Reservations != 3 {
		t.Fatalf("unexpected calls/reservations: %#v", totals)
	}
	if totals.Profit != 100 || totals.Spins != 61 || totals.Misc != 10 {
		t.Fatalf("unexpected money totals: %#v", totals)
	}
	if totals.Combined() != 171 {
		t.Fatalf("expected combined=171, got %v", totals.Combined())
	}
	if totals.PrepaidCount != 2 || totals.RefundProtectionCount != 1 {
		t.Fatalf("unexpected booking flags: %#v", totals)
	}
}

func TestBuildPeriodStats(t *testing.T) {
	period := PeriodFor(mustParseDay(t, "2024-03-10"))
	goals := models.DefaultGoals()
	goals.CombinedBiweekly = 200

	stats := BuildPeriodStats(period, "2024-03-10", samplePeriodEntries(), goals, models.DefaultConversion())

	if stats.PeriodID != "2024-03-01_to_2024-03-15" || stats.Period != "biweekly" {
		t.Fatalf("unexpected period identity: %s %s", stats.Period, stats.PeriodID)
	}
	if stats.DaysTracked != 2 || stats.DaysRemaining != 6 {
		t.Fatalf("expected 2 days tracked and 6 remaining, got %d and %d", stats.DaysTracked, stats.DaysRemaining)
	}
	if stats.Calls.Status != StatusOnTrack {
		t.Fatalf("expected 10/10 calls on track, got %#v", stats.Calls)
	}
	if stats.Reservations.ProgressPercent != 60 || stats.Reservations.Status != StatusDanger {
		t.Fatalf("expected 3/5 reservations at 60%%, got %#v", stats.Reservations)
	}
	if stats.Combined.Total != 171 || stats.Combined.ProgressPercent != 85.5 || stats.Combined.Status != StatusWarning {
		t.Fatalf("unexpected combined stat %#v", stats.Combined)
	}
	if stats.Profit.Status != StatusOnTrack {
		t.Fatalf("expected profit with unset goal to be on track, got %#v", stats.Profit)
	}
	if stats.SpinAverages.Regular != 6 || stats.SpinAverages.Mega != 49 {
		t.Fatalf("unexpected spin averages %#v", stats.SpinAverages)
	}
	if stats.SpinCycle.MoreNeeded != 2 {
		t.Fatalf("expected 2 more prepaid bookings needed, got %d", stats.SpinCycle.MoreNeeded)
	}
	if stats.Earnings.Total != 3173.11 || stats.Earnings.PeriodFee != 100 || stats.Earnings.Net != 3073.11 {
		t.Fatalf("expected flat period fee to be applied, got %#v", stats.Earnings)
	}
}

func TestBuildDailyStatsHasNoPeriodFee(t *testing.T) {
	entry := samplePeriodEntries()[1]
	stats := BuildDailyStats(entry.Date, entry, models.DefaultGoals(), models.DefaultConversion())

	if stats.Calls.Total != 4 || stats.Reservations.Total != 1 {
		t.Fatalf("unexpected daily totals %#v", stats)
	}
	if stats.ConversionRate.Rate != 25 {
		t.Fatalf("expected conversion 25%%, got %v", stats.ConversionRate.Rate)
	}
	want := ConvertUSD(41.5, models.DefaultConversion())
	if stats.Earnings != want {
		t.Fatalf("expected daily earnings %#v, got %#v", want, stats.Earnings)
	}
}
