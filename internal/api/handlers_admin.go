package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) MigrateLegacy(c *fiber.Ctx) error {
	result, err := handler.archive.MigrateLegacyEntries()
	if err != nil {
		return handler.serviceError(c, err, "migrate legacy entries")
	}
	return c.JSON(result)
}

func (handler *Handler) ForceArchive(c *fiber.Ctx) error {
	log, alreadyArchived, err := handler.archive.ForceArchivePrevious()
	if err != nil {
		return handler.serviceError(c, err, "archive period")
	}

	message := fmt.Sprintf("Successfully archived period %s", log.PeriodID)
	if alreadyArchived {
		message = fmt.Sprintf("Period %s already archived", log.PeriodID)
	}
	return c.JSON(fiber.Map{"message": message, "period": log})
}

func (handler *Handler) SchedulerStatus(c *fiber.Ctx) error {
	return c.JSON(handler.scheduler.Status())
}

func (handler *Handler) DeletePeriodLog(c *fiber.Ctx) error {
	periodID := c.Params("period_id")
	if err := handler.archive.DeleteLog(periodID); err != nil {
		return handler.serviceError(c, err, "delete period log")
	}
	return c.JSON(fiber.Map{
		"message":       fmt.Sprintf("Period %s deleted", periodID),
		"deleted_count": 1,
	})
}
