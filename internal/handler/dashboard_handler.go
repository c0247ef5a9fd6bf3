package handler

import (
	"log/slog"

	"ampnm-backend/internal/middleware"
	"ampnm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	repo repository.DashboardRepository
}

func NewDashboardHandler(repo repository.DashboardRepository) *DashboardHandler {
	return &DashboardHandler{repo: repo}
}

// GetStats returns the device counts the dashboard shows, optionally for one map.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	mapID, err := queryID(c, "map_id")
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid map ID.")
	}

	stats, err := h.repo.GetDashboardStats(c.UserContext(), user.UserID, mapID)
	if err != nil {
		slog.Error("dashboard stats", "user_id", user.UserID, "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to load dashboard statistics.")
	}

	return OK(c, fiber.Map{
		"total_devices":   stats.TotalDevices,
		"online_devices":  stats.OnlineDevices,
		"offline_devices": stats.OfflineDevices,
		"unknown_devices": stats.UnknownDevices,
		"total_maps":      stats.TotalMaps,
	})
}
