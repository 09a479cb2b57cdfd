package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	api.Get("/", handler.Root)
	api.Get("/health", handler.Health)
	api.Get("/goals", handler.GetGoals)
	api.Get("/conversion", handler.Convert)

	settings := api.Group("/settings")
	settings.Get("/goals", handler.GetGoals)
	settings.Put("/goals", handler.UpdateGoals)
	settings.Get("/conversion", handler.GetConversionSettings)
	settings.Put("/conversion", handler.UpdateConversionSettings)
	settings.Delete("", handler.ResetSettings)

	periods := api.Group("/periods")
	periods.Get("/current", handler.CurrentPeriod)
	periods.Post("/archive", handler.ArchiveCurrentPeriod)
	periods.Post("/archive/previous", handler.ArchivePreviousPeriod)
	periods.Get("", handler.ListPeriods)
	periods.Get("/:period_id", handler.GetPeriod)

	entries := api.Group("/entries")
	entries.Get("/today", handler.TodayEntry)
	entries.Get("", handler.ListEntries)
	entries.Get("/:date", handler.GetEntry)
	entries.Put("/:date/calls", handler.UpdateCalls)
	entries.Post("/:date/bookings", handler.AddBooking)
	entries.Put("/:date/bookings/:id", handler.UpdateBooking)
	entries.Delete("/:date/bookings/:id", handler.DeleteBooking)
	entries.Post("/:date/spins", handler.AddSpin)
	entries.Post("/:date/bonuses", handler.AddSpin)
	entries.Delete("/:date/spins/:id", handler.DeleteSpin)
	entries.Post("/:date/misc", handler.AddMiscIncome)
	entries.Delete("/:date/misc/:id", handler.DeleteMiscIncome)

	stats := api.Group("/stats")
	stats.Get("/daily/:date", handler.DailyStats)
	stats.Get("/biweekly", handler.BiweeklyStats)

	webhook := api.Group("/webhook")
	webhook.Post("/call", handler.WebhookCall)
	webhook.Get("/test", handler.WebhookTest)

	admin := api.Group("/admin")
	admin.Post("/migrate-legacy", handler.MigrateLegacy)
	admin.Post("/force-archive", handler.ForceArchive)
	admin.Get("/scheduler-status", handler.SchedulerStatus)
	admin.Delete("/periods/:period_id", handler.DeletePeriodLog)
}
