package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kpitracker/internal/services"
)

func (handler *Handler) UpdateCalls(c *fiber.Ctx) error {
	input := services.CallsInput{}
	if raw := strings.TrimSpace(c.Query("calls_received")); raw != "" {
		calls, err := strconv.Atoi(raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "calls_received must be an integer")
		}
		input.CallsReceived = &calls
	} else if err := parseJSONBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := handler.entries.SetCalls(c.Params("date"), input)
	if err != nil {
		return handler.serviceError(c, err, "update calls")
	}
	return c.JSON(entry)
}

func (handler *Handler) AddBooking(c *fiber.Ctx) error {
	input := services.BookingInput{}
	if err := parseJSONBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := handler.entries.AddBooking(c.Params("date"), input)
	if err != nil {
		return handler.serviceError(c, err, "add booking")
	}
	return c.JSON(entry)
}

func (handler *Handler) UpdateBooking(c *fiber.Ctx) error {
	input := services.BookingInput{}
	if err := parseJSONBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := handler.entries.UpdateBooking(c.Params("date"), c.Params("id"), input)
	if err != nil {
		return handler.serviceError(c, err, "update booking")
	}
	return c.JSON(entry)
}

func (handler *Handler) DeleteBooking(c *fiber.Ctx) error {
	entry, err := handler.entries.DeleteBooking(c.Params("date"), c.Params("id"))
	if err != nil {
		return handler.serviceError(c, err, "delete booking")
	}
	return c.JSON(entry)
}

func (handler *Handler) AddSpin(c *fiber.Ctx) error {
	input := services.SpinInput{}
	if err := parseJSONBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := handler.entries.AddSpin(c.Params("date"), input)
	if err != nil {
		return handler.serviceError(c, err, "add spin")
	}
	return c.JSON(entry)
}

func (handler *Handler) DeleteSpin(c *fiber.Ctx) error {
	entry, err := handler.entries.DeleteSpin(c.Params("date"), c.Params("id"))
	if err != nil {
		return handler.serviceError(c, err, "delete spin")
	}
	return c.JSON(entry)
}

func (handler *Handler) AddMiscIncome(c *fiber.Ctx) error {
	input := services.MiscIncomeInput{}
	if err := parseJSONBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := handler.entries.AddMiscIncome(c.Params("date"), input)
	if err != nil {
		return handler.serviceError(c, err, "add misc income")
	}
	return c.JSON(entry)
}

func (handler *Handler) DeleteMiscIncome(c *fiber.Ctx) error {
	entry, err := handler.entries.DeleteMiscIncome(c.Params("date"), c.Params("id"))
	if err != nil {
		return handler.serviceError(c, err, "delete misc income")
	}
	return c.JSON(entry)
}
