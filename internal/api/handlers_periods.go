package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kpitracker/internal/services"
)

func (handler *Handler) CurrentPeriod(c *fiber.Ctx) error {
	current := handler.periods.Current()
	previous := handler.periods.Previous()

	_, err := handler.archive.FindLog(previous.ID)
	if err != nil && !errors.Is(err, services.ErrPeriodLogNotFound) {
		return handler.serviceError(c, err, "load period")
	}

	return c.JSON(fiber.Map{
		"period_id":       current.ID,
		"start_date":      current.StartKey(),
		"end_date":        current.EndKey(),
		"is_boundary_day": handler.periods.IsBoundaryDay(),
		"days_remaining":  handler.periods.DaysRemaining(),
		"previous_period": fiber.Map{
			"period_id":   previous.ID,
			"is_archived": err == nil,
		},
	})
}

func (handler *Handler) ArchiveCurrentPeriod(c *fiber.Ctx) error {
	log, err := handler.archive.ArchiveCurrent()
	if err != nil {
		return handler.serviceError(c, err, "archive period")
	}
	return c.JSON(log)
}

func (handler *Handler) ArchivePreviousPeriod(c *fiber.Ctx) error {
	log, err := handler.archive.ArchivePrevious()
	if err != nil {
		return handler.serviceError(c, err, "archive period")
	}
	return c.JSON(log)
}

func (handler *Handler) ListPeriods(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return apiError(c, fiber.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	logs, err := handler.archive.ListLogs(limit)
	if err != nil {
		return handler.serviceError(c, err, "list periods")
	}
	return c.JSON(logs)
}

func (handler *Handler) GetPeriod(c *fiber.Ctx) error {
	log, err := handler.archive.FindLog(c.Params("period_id"))
	if err != nil {
		return handler.serviceError(c, err, "load period")
	}
	return c.JSON(log)
}
