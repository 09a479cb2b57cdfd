package api

import "github.com/gofiber/fiber/v2"

const apiVersion = "2.1"

func (handler *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "KPI Tracker API", "version": apiVersion})
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "healthy",
		"env":            handler.env,
		"current_period": handler.periods.Current().ID,
	})
}
