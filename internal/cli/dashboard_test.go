package cli

import (
	"strings"
	"testing"
	"time"
)

func TestDashboardShowsDayAndPeriod(t *testing.T) {
	harness := newCLIHarness(t, time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC))

	harness.mustRun(t, "calls", "8")
	for _, profit := range []string{"30", "40", "30"} {
		harness.mustRun(t, "booking", "add", "--no-timer", "--prepaid", "--minutes", "10", "--profit", profit)
	}

	out := harness.mustRun(t, "dashboard")
	for _, want := range []string{
		"KPI TRACKER  2024-03-20",
		"Timer stopped",
		"Pay period 2024-03-16_to_2024-03-31  (1 days tracked, 12 left)",
		"37.5%",
		"3 prepaid, 1 more for the next spin",
		"1,586.00 + 269.62 fee = 1,855.62, net 1,755.62 after 100.00 period fee",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in dashboard:\n%s", want, out)
		}
	}
}

func TestHistoryAndAdminCommands(t *testing.T) {
	harness := newCLIHarness(t, time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC))

	if out := harness.mustRun(t, "history"); !strings.Contains(out, "No archived periods yet.") {
		t.Fatalf("unexpected empty history %q", out)
	}

	harness.mustRun(t, "booking", "add", "--no-timer", "--date", "2024-03-05", "--profit", "25")
	if out := harness.mustRun(t, "admin", "archive", "--previous"); !strings.Contains(out, "Archived 2024-03-01_to_2024-03-15 (1 entries)") {
		t.Fatalf("unexpected archive output %q", out)
	}
	if _, err := harness.run(t, "admin", "archive", "--previous"); err == nil || err.Error() != "period already archived" {
		t.Fatalf("expected already archived, got %v", err)
	}
	if out := harness.mustRun(t, "admin", "force-archive"); !strings.Contains(out, "Period 2024-03-01_to_2024-03-15 already archived") {
		t.Fatalf("unexpected force archive output %q", out)
	}
	if out := harness.mustRun(t, "admin", "period"); !strings.Contains(out, "Previous period 2024-03-01_to_2024-03-15 is archived") {
		t.Fatalf("unexpected period output %q", out)
	}

	out := harness.mustRun(t, "history")
	if !strings.Contains(out, "2024-03-01_to_2024-03-15  1 days  0 calls  1 bookings  $25.00 combined") {
		t.Fatalf("unexpected history %q", out)
	}

	if out := harness.mustRun(t, "admin", "migrate-legacy"); !strings.Contains(out, "No legacy entries found") {
		t.Fatalf("unexpected migrate output %q", out)
	}
	if out := harness.mustRun(t, "admin", "scheduler"); !strings.Contains(out, "Scheduler stopped") {
		t.Fatalf("unexpected scheduler output %q", out)
	}

	harness.mustRun(t, "admin", "delete-period", "2024-03-01_to_2024-03-15")
	if _, err := harness.run(t, "admin", "delete-period", "2024-03-01_to_2024-03-15"); err == nil || !strings.Contains(err.Error(), "has no log") {
		t.Fatalf("expected missing log error, got %v", err)
	}
}
