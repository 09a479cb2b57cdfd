package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/kpitracker/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError maps service failures to a status. Unexpected errors are logged
// and reported as "failed to <operation>".
func (handler *Handler) serviceError(c *fiber.Ctx, err error, operation string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidDate):
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	case errors.Is(err, services.ErrEntryNotFound):
		return apiError(c, fiber.StatusNotFound, "entry not found")
	case errors.Is(err, services.ErrBookingNotFound):
		return apiError(c, fiber.StatusNotFound, "booking not found")
	case errors.Is(err, services.ErrPeriodLogNotFound):
		return apiError(c, fiber.StatusNotFound, "period log not found")
	case errors.Is(err, services.ErrPeriodAlreadyArchived):
		return apiError(c, fiber.StatusConflict, "period already archived")
	}

	handler.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error(operation + " failed")
	return apiError(c, fiber.StatusInternalServerError, "failed to "+operation)
}

func parseOptionalBool(raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func parseJSONBody(c *fiber.Ctx, target any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(target)
}
