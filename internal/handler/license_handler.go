package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ampnm-backend/internal/license"
	"ampnm-backend/internal/middleware"
	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// LicenseService is the part of license.Resolver the handlers use.
type LicenseService interface {
	Status(ctx context.Context, userID *uint) license.Status
	VerifyKey(ctx context.Context, key string) error
}

type LicenseHandler struct {
	service  LicenseService
	settings repository.SettingRepository
}

func NewLicenseHandler(service LicenseService, settings repository.SettingRepository) *LicenseHandler {
	return &LicenseHandler{service: service, settings: settings}
}

func (h *LicenseHandler) GetLicenseStatus(c *fiber.Ctx) error {
	var userID *uint
	if user := middleware.CurrentUser(c); user != nil {
		userID = &user.UserID
	}
	return OK(c, fiber.Map{"license_status": h.service.Status(c.UserContext(), userID)})
}

// SetAppLicenseKey verifies a key with the portal and stores it.
func (h *LicenseHandler) SetAppLicenseKey(c *fiber.Ctx) error {
	var req struct {
		LicenseKey string `json:"license_key"`
	}
	if err := ParseBody(c, &req); err != nil {
		return badBody(c, err)
	}
	key := strings.TrimSpace(req.LicenseKey)
	if key == "" {
		return Fail(c, fiber.StatusBadRequest, "License key is required.")
	}

	err := h.service.VerifyKey(c.UserContext(), key)
	var rejected *license.RejectedError
	switch {
	case errors.As(err, &rejected):
		return Fail(c, fiber.StatusBadRequest, rejected.Message)
	case errors.Is(err, license.ErrNoInstallationID):
		return Fail(c, fiber.StatusInternalServerError, "Application installation ID missing.")
	case errors.Is(err, license.ErrVerifierUnavailable):
		return Fail(c, fiber.StatusInternalServerError, "Failed to verify license with external portal.")
	case err != nil:
		slog.Error("verify license key", "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to verify license with external portal.")
	}

	if err := h.settings.Set(c.UserContext(), model.SettingLicenseKey, key); err != nil {
		slog.Error("save license key", "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to save license key to database.")
	}
	slog.Info("license key updated")
	return OK(c, fiber.Map{"message": "License key set successfully."})
}
