package handler

import (
	"context"
	"log/slog"
	"time"

	"ampnm-backend/config"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Health pings the database behind db.
func Health(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := config.PingDB(ctx, db); err != nil {
			slog.Warn("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "version": config.Version})
	}
}
