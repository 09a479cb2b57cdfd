package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kpitracker/internal/models"
	"github.com/terraincognita07/kpitracker/internal/services"
)

func (handler *Handler) GetGoals(c *fiber.Ctx) error {
	goals, err := handler.settings.Goals()
	if err != nil {
		return handler.serviceError(c, err, "load goals")
	}
	return c.JSON(goals)
}

func (handler *Handler) UpdateGoals(c *fiber.Ctx) error {
	goals, err := handler.settings.Goals()
	if err != nil {
		return handler.serviceError(c, err, "load goals")
	}
	if err := c.BodyParser(&goals); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := handler.settings.SaveGoals(goals); err != nil {
		return handler.serviceError(c, err, "save goals")
	}
	return c.JSON(goals)
}

func (handler *Handler) GetConversionSettings(c *fiber.Ctx) error {
	conversion, err := handler.settings.Conversion()
	if err != nil {
		return handler.serviceError(c, err, "load conversion settings")
	}
	return c.JSON(conversion)
}

func (handler *Handler) UpdateConversionSettings(c *fiber.Ctx) error {
	conversion, err := handler.settings.Conversion()
	if err != nil {
		return handler.serviceError(c, err, "load conversion settings")
	}
	if err := c.BodyParser(&conversion); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := handler.settings.SaveConversion(conversion); err != nil {
		return handler.serviceError(c, err, "save conversion settings")
	}
	return c.JSON(conversion)
}

func (handler *Handler) ResetSettings(c *fiber.Ctx) error {
	if err := handler.settings.Reset(); err != nil {
		return handler.serviceError(c, err, "reset settings")
	}
	return c.JSON(fiber.Map{
		"goals":      models.DefaultGoals(),
		"conversion": models.DefaultConversion(),
	})
}

// Convert returns the daily-scope breakdown, or the period-scope one with
// scope=period.
func (handler *Handler) Convert(c *fiber.Ctx) error {
	usd, ok := services.ParseAmount(c.Query("usd"))
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "usd must be a number")
	}
	conversion, err := handler.settings.Conversion()
	if err != nil {
		return handler.serviceError(c, err, "load conversion settings")
	}

	if strings.EqualFold(c.Query("scope"), "period") {
		return c.JSON(services.ConvertPeriodUSD(usd, conversion))
	}
	return c.JSON(services.ConvertUSD(usd, conversion))
}
