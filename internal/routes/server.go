package routes

import (
	"ampnm-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp returns a fiber app with the global middleware shared by both services.
func NewApp(name string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name + " " + config.Version,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())
	return app
}
