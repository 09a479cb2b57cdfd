package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kpitracker/internal/models"
	"github.com/terraincognita07/kpitracker/internal/services"
)

func (handler *Handler) DailyStats(c *fiber.Ctx) error {
	date := c.Params("date")
	entry, err := handler.entries.FindOrEmpty(date)
	if err != nil {
		return handler.serviceError(c, err, "load daily stats")
	}
	goals, conversion, err := handler.statsSettings()
	if err != nil {
		return handler.serviceError(c, err, "load daily stats")
	}
	return c.JSON(services.BuildDailyStats(date, entry, goals, conversion))
}

// BiweeklyStats covers the open entries of the running pay period only.
// Closed periods are served from their period log.
func (handler *Handler) BiweeklyStats(c *fiber.Ctx) error {
	period, entries, err := handler.entries.CurrentPeriodEntries()
	if err != nil {
		return handler.serviceError(c, err, "load biweekly stats")
	}
	goals, conversion, err := handler.statsSettings()
	if err != nil {
		return handler.serviceError(c, err, "load biweekly stats")
	}
	return c.JSON(services.BuildPeriodStats(period, handler.periods.TodayKey(), entries, goals, conversion))
}

func (handler *Handler) statsSettings() (models.GoalsConfig, models.ConversionConfig, error) {
	goals, err := handler.settings.Goals()
	if err != nil {
		return models.GoalsConfig{}, models.ConversionConfig{}, err
	}
	conversion, err := handler.settings.Conversion()
	if err != nil {
		return models.GoalsConfig{}, models.ConversionConfig{}, err
	}
	return goals, conversion, nil
}
