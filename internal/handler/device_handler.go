package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ampnm-backend/internal/metrics"
	"ampnm-backend/internal/middleware"
	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type DeviceHandler struct {
	devices repository.DeviceRepository
	maps    repository.MapRepository
	license LicenseService
}

func NewDeviceHandler(devices repository.DeviceRepository, maps repository.MapRepository, license LicenseService) *DeviceHandler {
	return &DeviceHandler{devices: devices, maps: maps, license: license}
}

type addDeviceRequest struct {
	Name        string    `json:"name"`
	IPAddress   string    `json:"ip_address"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	MapID       FlexID    `json:"map_id"`
	PositionX   FlexFloat `json:"position_x"`
	PositionY   FlexFloat `json:"position_y"`
}

// deviceUpdate is one entry of update_device_position. Absent fields are left
// unchanged.
type deviceUpdate struct {
	ID          FlexID     `json:"id"`
	PositionX   *FlexFloat `json:"position_x"`
	PositionY   *FlexFloat `json:"position_y"`
	Name        *string    `json:"name"`
	IPAddress   *string    `json:"ip_address"`
	Type        *string    `json:"type"`
	Description *string    `json:"description"`
	MapID       *FlexID    `json:"map_id"`
}

func (u deviceUpdate) changes() repository.DeviceChanges {
	var ch repository.DeviceChanges
	ch.Name = nonBlank(u.Name)
	ch.IPAddress = nonBlank(u.IPAddress)
	ch.Type = nonBlank(u.Type)
	if u.Description != nil {
		d := strings.TrimSpace(*u.Description)
		ch.Description = &d
	}
	if u.MapID != nil && *u.MapID != 0 {
		id := uint(*u.MapID)
		ch.MapID = &id
	}
	if u.PositionX != nil {
		x := float64(*u.PositionX)
		ch.PositionX = &x
	}
	if u.PositionY != nil {
		y := float64(*u.PositionY)
		ch.PositionY = &y
	}
	return ch
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (h *DeviceHandler) GetNetworkDevices(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	mapID, err := queryID(c, "map_id")
	if err != nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid map ID.")
	}

	devices, err := h.devices.GetByUser(c.UserContext(), user.UserID, mapID)
	if err != nil {
		slog.Error("list devices", "user_id", user.UserID, "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to load devices.")
	}
	return OK(c, fiber.Map{"devices": devices})
}

// AddDevice creates a device on one of the caller's maps, subject to the
// license device cap.
func (h *DeviceHandler) AddDevice(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	ctx := c.UserContext()

	var req addDeviceRequest
	if err := ParseBody(c, &req); err != nil {
		return badBody(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.IPAddress = strings.TrimSpace(req.IPAddress)
	req.Type = strings.TrimSpace(req.Type)
	if req.Name == "" || req.IPAddress == "" || req.Type == "" || req.MapID == 0 {
		return Fail(c, fiber.StatusBadRequest, "Name, IP Address, Type, and Map ID are required.")
	}

	if _, err := h.maps.FindByID(ctx, user.UserID, uint(req.MapID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Fail(c, fiber.StatusNotFound, "Map not found.")
		}
		slog.Error("load map for new device", "map_id", req.MapID, "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to add device.")
	}

	// Check license limits before adding
	status := h.license.Status(ctx, &user.UserID)
	if !status.CanAddDevice {
		metrics.DeviceLimitRejections.Inc()
		msg := status.LicenseMessage
		if msg == "" {
			msg = "Device limit reached."
		}
		return Fail(c, fiber.StatusForbidden, msg)
	}

	mapID := uint(req.MapID)
	device := model.NetworkDevice{
		UserID:      user.UserID,
		Name:        req.Name,
		IPAddress:   req.IPAddress,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
		MapID:       &mapID,
		PositionX:   float64(req.PositionX),
		PositionY:   float64(req.PositionY),
	}
	if err := h.devices.Create(ctx, &device); err != nil {
		slog.Error("create device", "user_id", user.UserID, "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to add device.")
	}

	created, err := h.devices.FindByID(ctx, user.UserID, device.ID)
	if err != nil {
		slog.Error("reload created device", "device_id", device.ID, "error", err)
		created = &device
	}
	return OK(c, fiber.Map{"message": "Device added successfully.", "device": created})
}

// UpdateDevicePositions applies a batch of partial updates. Entries are
// applied one by one; a failing entry does not undo the others.
func (h *DeviceHandler) UpdateDevicePositions(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	ctx := c.UserContext()

	var req struct {
		Updates json.RawMessage `json:"updates"`
	}
	if err := ParseBody(c, &req); err != nil {
		return badBody(c, err)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(req.Updates, &entries); err != nil || entries == nil {
		return Fail(c, fiber.StatusBadRequest, "Invalid update format.")
	}
	if len(entries) == 0 {
		return Fail(c, fiber.StatusBadRequest, "No updates provided.")
	}

	// Non-finite coordinates reject the whole batch before anything is written
	updates := make([]deviceUpdate, 0, len(entries))
	for i, raw := range entries {
		var u deviceUpdate
		if err := json.Unmarshal(raw, &u); err != nil || u.ID == 0 {
			if errors.Is(err, ErrInvalidNumber) {
				return Fail(c, fiber.StatusBadRequest, "Invalid number.")
			}
			slog.Debug("skipping malformed device update", "index", i, "error", err)
			continue
		}
		updates = append(updates, u)
	}

	updated, failed := 0, false
	for _, u := range updates {
		err := h.devices.Update(ctx, user.UserID, uint(u.ID), u.changes())
		switch {
		case err == nil:
			updated++
		case errors.Is(err, repository.ErrNotFound):
			slog.Debug("device update for unknown device", "device_id", u.ID, "user_id", user.UserID)
		default:
			failed = true
			slog.Error("update device", "device_id", u.ID, "error", err)
		}
	}

	if updated == 0 {
		if failed {
			return Fail(c, fiber.StatusInternalServerError, "No devices updated or failed to update.")
		}
		return Fail(c, fiber.StatusNotFound, "No devices updated.")
	}
	return OK(c, fiber.Map{
		"updated": updated,
		"message": fmt.Sprintf("Updated %d device(s).", updated),
	})
}

func (h *DeviceHandler) DeleteDevice(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var req struct {
		ID FlexID `json:"id"`
	}
	if err := ParseBody(c, &req); err != nil {
		return badBody(c, err)
	}
	if req.ID == 0 {
		return Fail(c, fiber.StatusBadRequest, "Device ID is required.")
	}

	if err := h.devices.Delete(c.UserContext(), user.UserID, uint(req.ID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Fail(c, fiber.StatusNotFound, "Device not found.")
		}
		slog.Error("delete device", "device_id", req.ID, "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to delete device.")
	}
	return OK(c, fiber.Map{"message": "Device deleted successfully."})
}
