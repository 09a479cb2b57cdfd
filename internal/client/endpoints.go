package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/terraincognita07/kpitracker/internal/models"
	"github.com/terraincognita07/kpitracker/internal/services"
)

type Health struct {
	Status        string `json:"status"`
	Env           string `json:"env"`
	CurrentPeriod string `json:"current_period"`
}

type CurrentPeriod struct {
	PeriodID       string `json:"period_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	IsBoundaryDay  bool   `json:"is_boundary_day"`
	DaysRemaining  int    `json:"days_remaining"`
	PreviousPeriod struct {
		PeriodID   string `json:"period_id"`
		IsArchived bool   `json:"is_archived"`
	} `json:"previous_period"`
}

type ForceArchiveResult struct {
	Message string           `json:"message"`
	Period  models.PeriodLog `json:"period"`
}

type SettingsReset struct {
	Goals      models.GoalsConfig      `json:"goals"`
	Conversion models.ConversionConfig `json:"conversion"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
	return out, err
}

func (c *Client) Today(ctx context.Context) (models.DailyEntry, error) {
	var out models.DailyEntry
	err := c.do(ctx, http.MethodGet, "/entries/today", nil, nil, &out)
	return out, err
}

func (c *Client) Entry(ctx context.Context, date string) (models.DailyEntry, error) {
	var out models.DailyEntry
	err := c.do(ctx, http.MethodGet, "/entries/"+url.PathEscape(date), nil, nil, &out)
	return out, err
}

func (c *Client) ListEntries(ctx context.Context, startDate string, endDate string, archived *bool) ([]models.DailyEntry, error) {
	query := url.Values{}
	if startDate != "" {
		query.Set("start_date", startDate)
	}
	if endDate != "" {
		query.Set("end_date", endDate)
	}
	if archived != nil {
		query.Set("archived", strconv.FormatBool(*archived))
	}
	out := make([]models.DailyEntry, 0)
	err := c.do(ctx, http.MethodGet, "/entries", query, nil, &out)
	return out, err
}

func (c *Client) SetCalls(ctx context.Context, date string, calls int) (models.DailyEntry, error) {
	if err := services.ValidateInput(services.CallsInput{CallsReceived: &calls}); err != nil {
		return models.DailyEntry{}, err
	}
	query := url.Values{"calls_received": {strconv.Itoa(calls)}}
	var out models.DailyEntry
	err := c.do(ctx, http.MethodPut, entryPath(date, "calls"), query, nil, &out)
	return out, err
}

func (c *Client) AddBooking(ctx context.Context, date string, input services.BookingInput) (models.DailyEntry, error) {
	return c.writeEntry(ctx, http.MethodPost, entryPath(date, "bookings"), input)
}

func (c *Client) UpdateBooking(ctx context.Context, date string, bookingID string, input services.BookingInput) (models.DailyEntry, error) {
	return c.writeEntry(ctx, http.MethodPut, entryPath(date, "bookings", bookingID), input)
}

func (c *Client) DeleteBooking(ctx context.Context, date string, bookingID string) (models.DailyEntry, error) {
	return c.writeEntry(ctx, http.MethodDelete, entryPath(date, "bookings", bookingID), nil)
}

func (c *Client) AddSpin(ctx context.Context, date string, input services.SpinInput) (models.DailyEntry, error) {
	return c.writeEntry(ctx, http.MethodPost, entryPath(date, "spins"), input)
}

func (c *Client) DeleteSpin(ctx context.Context, date string, spinID string) (models.DailyEntry, error) {
	return c.writeEntry(ctx, http.MethodDelete, entryPath(date, "spins", spinID), nil)
}

func (c *Client) AddMiscIncome(ctx context.Context, date string, input services.MiscIncomeInput) (models.DailyEntry, error) {
	return c.writeEntry(ctx, http.MethodPost, entryPath(date, "misc"), input)
}

func (c *Client) DeleteMiscIncome(ctx context.Context, date string, miscID string) (models.DailyEntry, error) {
	return c.writeEntry(ctx, http.MethodDelete, entryPath(date, "misc", miscID), nil)
}

// writeEntry rejects invalid payloads before any request is sent.
func (c *Client) writeEntry(ctx context.Context, method string, path string, input any) (models.DailyEntry, error) {
	if input != nil {
		if err := services.ValidateInput(input); err != nil {
			return models.DailyEntry{}, err
		}
	}
	var out models.DailyEntry
	err := c.do(ctx, method, path, nil, input, &out)
	return out, err
}

func (c *Client) DailyStats(ctx context.Context, date string) (services.DailyStats, error) {
	var out services.DailyStats
	err := c.do(ctx, http.MethodGet, "/stats/daily/"+url.PathEscape(date), nil, nil, &out)
	return out, err
}

func (c *Client) PeriodStats(ctx context.Context) (services.PeriodStats, error) {
	var out services.PeriodStats
	err := c.do(ctx, http.MethodGet, "/stats/biweekly", nil, nil, &out)
	return out, err
}

func (c *Client) Goals(ctx context.Context) (models.GoalsConfig, error) {
	var out models.GoalsConfig
	err := c.do(ctx, http.MethodGet, "/settings/goals", nil, nil, &out)
	return out, err
}

// UpdateGoals sends only the given fields; the server keeps the rest.
func (c *Client) UpdateGoals(ctx context.Context, changes map[string]float64) (models.GoalsConfig, error) {
	var out models.GoalsConfig
	err := c.do(ctx, http.MethodPut, "/settings/goals", nil, changes, &out)
	return out, err
}

func (c *Client) ConversionSettings(ctx context.Context) (models.ConversionConfig, error) {
	var out models.ConversionConfig
	err := c.do(ctx, http.MethodGet, "/settings/conversion", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateConversionSettings(ctx context.Context, changes map[string]float64) (models.ConversionConfig, error) {
	var out models.ConversionConfig
	err := c.do(ctx, http.MethodPut, "/settings/conversion", nil, changes, &out)
	return out, err
}

func (c *Client) ResetSettings(ctx context.Context) (SettingsReset, error) {
	var out SettingsReset
	err := c.do(ctx, http.MethodDelete, "/settings", nil, nil, &out)
	return out, err
}

func (c *Client) Convert(ctx context.Context, usd float64) (services.ConversionBreakdown, error) {
	var out services.ConversionBreakdown
	query := url.Values{"usd": {strconv.FormatFloat(usd, 'f', -1, 64)}}
	err := c.do(ctx, http.MethodGet, "/conversion", query, nil, &out)
	return out, err
}

func (c *Client) ConvertPeriod(ctx context.Context, usd float64) (services.PeriodConversion, error) {
	var out services.PeriodConversion
	query := url.Values{"usd": {strconv.FormatFloat(usd, 'f', -1, 64)}, "scope": {"period"}}
	err := c.do(ctx, http.MethodGet, "/conversion", query, nil, &out)
	return out, err
}

func (c *Client) CurrentPeriod(ctx context.Context) (CurrentPeriod, error) {
	var out CurrentPeriod
	err := c.do(ctx, http.MethodGet, "/periods/current", nil, nil, &out)
	return out, err
}

func (c *Client) ListPeriods(ctx context.Context, limit int) ([]models.PeriodLog, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	out := make([]models.PeriodLog, 0)
	err := c.do(ctx, http.MethodGet, "/periods", query, nil, &out)
	return out, err
}

func (c *Client) Period(ctx context.Context, periodID string) (models.PeriodLog, error) {
	var out models.PeriodLog
	err := c.do(ctx, http.MethodGet, "/periods/"+url.PathEscape(periodID), nil, nil, &out)
	return out, err
}

func (c *Client) ArchiveCurrentPeriod(ctx context.Context) (models.PeriodLog, error) {
	var out models.PeriodLog
	err := c.do(ctx, http.MethodPost, "/periods/archive", nil, nil, &out)
	return out, err
}

func (c *Client) ArchivePreviousPeriod(ctx context.Context) (models.PeriodLog, error) {
	var out models.PeriodLog
	err := c.do(ctx, http.MethodPost, "/periods/archive/previous", nil, nil, &out)
	return out, err
}

func (c *Client) MigrateLegacy(ctx context.Context) (services.LegacyMigrationResult, error) {
	var out services.LegacyMigrationResult
	err := c.do(ctx, http.MethodPost, "/admin/migrate-legacy", nil, nil, &out)
	return out, err
}

func (c *Client) ForceArchive(ctx context.Context) (ForceArchiveResult, error) {
	var out ForceArchiveResult
	err := c.do(ctx, http.MethodPost, "/admin/force-archive", nil, nil, &out)
	return out, err
}

func (c *Client) SchedulerStatus(ctx context.Context) (services.SchedulerStatus, error) {
	var out services.SchedulerStatus
	err := c.do(ctx, http.MethodGet, "/admin/scheduler-status", nil, nil, &out)
	return out, err
}

func (c *Client) DeletePeriodLog(ctx context.Context, periodID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/periods/"+url.PathEscape(periodID), nil, nil, nil)
}

func entryPath(date string, parts ...string) string {
	path := "/entries/" + url.PathEscape(date)
	for _, part := range parts {
		path += "/" + url.PathEscape(part)
	}
	return path
}
