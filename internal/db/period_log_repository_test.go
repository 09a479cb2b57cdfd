package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/kpitracker/internal/models"
)

func TestCreateWithArchivedEntriesMarksWindow(t *testing.T) {
	database := openSQLiteForTest(t, filepath.Join(t.TempDir(), "kpi-periods.db"))
	entries := NewDailyEntryRepository(database)
	logs := NewPeriodLogRepository(database)

	for _, date := range []string{"2024-03-02", "2024-03-15", "2024-03-16"} {
		if _, err := entries.EnsureByDate(date, ""); err != nil {
			t.Fatalf("ensure %s: %v", date, err)
		}
	}

	log := models.PeriodLog{
		PeriodID:   "2024-03-01_to_2024-03-15",
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-15",
		Status:     models.PeriodStatusClosed,
		EntryCount: 2,
		Totals:     models.PeriodTotals{Calls: 30, Reservations: 4, Combined: 120.5},
		Goals:      models.DefaultGoals(),
		GoalsMet:   models.GoalsMet{Calls: true},
		ArchivedAt: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
	}
	if err := logs.CreateWithArchivedEntries(&log); err != nil {
		t.Fatalf("create period log: %v", err)
	}

	stored, found, err := logs.FindByPeriodID(log.PeriodID)
	if err != nil || !found {
		t.Fatalf("find period log: found=%v err=%v", found, err)
	}
	if stored.Totals.Combined != 120.5 || !stored.GoalsMet.Calls || stored.Goals.CallsBiweekly != 10 {
		t.Fatalf("unexpected stored snapshot %#v", stored)
	}

	archived := true
	archivedEntries, err := entries.ListRange("", "", &archived)
	if err != nil {
		t.Fatalf("list archived: %v", err)
	}
	if len(archivedEntries) != 2 {
		t.Fatalf("expected two archived entries, got %d", len(archivedEntries))
	}
	for _, entry := range archivedEntries {
		if entry.PeriodID != log.PeriodID {
			t.Fatalf("expected period id %s, got %s", log.PeriodID, entry.PeriodID)
		}
	}

	duplicate := models.PeriodLog{PeriodID: log.PeriodID, StartDate: log.StartDate, EndDate: log.EndDate}
	if err := logs.CreateWithArchivedEntries(&duplicate); err == nil {
		t.Fatal("expected unique period id violation")
	}

	listed, err := logs.List(0)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one period log, got %d err=%v", len(listed), err)
	}

	deleted, err := logs.DeleteByPeriodID(log.PeriodID)
	if err != nil || !deleted {
		t.Fatalf("delete period log: deleted=%v err=%v", deleted, err)
	}
	if deleted, _ := logs.DeleteByPeriodID(log.PeriodID); deleted {
		t.Fatal("expected second delete to report nothing removed")
	}
}
