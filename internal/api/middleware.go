package api

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type AppConfig struct {
	// AccessLog receives one line per request. Nil disables request logging.
	AccessLog   io.Writer
	CORSOrigins string
}

// NewApp builds the fiber app with the middleware stack and all routes.
func NewApp(handler *Handler, config AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "KPI Tracker",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if config.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format:        "${status} ${method} ${path} ${latency}\n",
			Output:        config.AccessLog,
			DisableColors: true,
		}))
	}
	app.Use(compress.New())

	origins := config.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, " + webhookKeyHeader,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}
