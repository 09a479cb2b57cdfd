package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) TodayEntry(c *fiber.Ctx) error {
	entry, err := handler.entries.Today()
	if err != nil {
		return handler.serviceError(c, err, "load today's entry")
	}
	return c.JSON(entry)
}

// GetEntry answers with an empty, unsaved entry for days without data.
func (handler *Handler) GetEntry(c *fiber.Ctx) error {
	entry, err := handler.entries.FindOrEmpty(c.Params("date"))
	if err != nil {
		return handler.serviceError(c, err, "load entry")
	}
	return c.JSON(entry)
}

func (handler *Handler) ListEntries(c *fiber.Ctx) error {
	archived, err := parseOptionalBool(c.Query("archived"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid archived flag")
	}

	entries, err := handler.entries.List(c.Query("start_date"), c.Query("end_date"), archived)
	if err != nil {
		return handler.serviceError(c, err, "list entries")
	}
	return c.JSON(entries)
}
