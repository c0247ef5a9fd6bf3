package http

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ampnm-backend/internal/handler"
	"ampnm-backend/internal/license"
	"ampnm-backend/internal/middleware"
	"ampnm-backend/internal/repository"
	"ampnm-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

// PortalHandler serves the license portal: customer accounts, the product
// catalog, demo licenses and license verification.
type PortalHandler struct {
	customers *usecase.CustomerUsecase
	licenses  *usecase.LicenseUsecase
}

func NewPortalHandler(customers *usecase.CustomerUsecase, licenses *usecase.LicenseUsecase) *PortalHandler {
	return &PortalHandler{customers: customers, licenses: licenses}
}

func (h *PortalHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := handler.ParseBody(c, &input); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	customer, err := h.customers.Register(c.UserContext(), input.Name, input.Email, input.Password)
	if err != nil {
		return h.fail(c, err, "Registration failed.")
	}
	slog.Info("customer registered", "customer_id", customer.ID)
	return handler.OK(c, fiber.Map{"message": "Registration successful.", "customer": customer})
}

func (h *PortalHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := handler.ParseBody(c, &input); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	token, customer, err := h.customers.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return h.fail(c, err, "Login failed.")
	}
	return handler.OK(c, fiber.Map{"token": token, "customer": customer})
}

// GetProfile returns the customer's account fields merged with its profile.
func (h *PortalHandler) GetProfile(c *fiber.Ctx) error {
	id := middleware.CurrentUser(c)
	customer, err := h.customers.Profile(c.UserContext(), id.UserID)
	if err != nil {
		return h.fail(c, err, "Failed to load profile.")
	}

	body := fiber.Map{
		"id":         customer.ID,
		"name":       customer.Name,
		"email":      customer.Email,
		"first_name": "",
		"last_name":  "",
		"address":    "",
		"phone":      "",
		"avatar_url": "",
	}
	if p := customer.Profile; p != nil {
		body["first_name"] = p.FirstName
		body["last_name"] = p.LastName
		body["address"] = p.Address
		body["phone"] = p.Phone
		body["avatar_url"] = p.AvatarURL
	}
	return handler.OK(c, body)
}

func (h *PortalHandler) UpdateProfile(c *fiber.Ctx) error {
	id := middleware.CurrentUser(c)
	var input struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Address   string `json:"address"`
		Phone     string `json:"phone"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := handler.ParseBody(c, &input); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	err := h.customers.UpdateProfile(c.UserContext(), id.UserID, usecase.ProfileInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Address:   input.Address,
		Phone:     input.Phone,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		return h.fail(c, err, "Failed to update profile.")
	}
	return handler.OK(c, fiber.Map{"message": "Profile updated successfully."})
}

func (h *PortalHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.licenses.Products(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to load products.")
	}

	out := make([]fiber.Map, 0, len(products))
	for _, p := range products {
		out = append(out, fiber.Map{
			"id":                    p.ID,
			"name":                  p.Name,
			"description":           p.Description,
			"price":                 p.Price,
			"max_devices":           p.MaxDevices,
			"license_duration_days": p.LicenseDurationDays,
		})
	}
	return handler.OK(c, fiber.Map{"products": out})
}

// GetDemoLicense accepts an optional email either in the JSON body or in the
// query string.
func (h *PortalHandler) GetDemoLicense(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := handler.ParseBody(c, &input); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	if input.Email == "" {
		input.Email = c.Query("email")
	}

	lic, err := h.licenses.CreateDemo(c.UserContext(), input.Email)
	if err != nil {
		if errors.Is(err, usecase.ErrNoDemoProduct) {
			return handler.Fail(c, fiber.StatusInternalServerError, "Failed to generate demo license. Product not found or database error.")
		}
		return h.fail(c, err, "An internal error occurred while generating demo license.")
	}
	return handler.OK(c, fiber.Map{
		"license_key": lic.LicenseKey,
		"message":     demoMessage(lic.Product.LicenseDurationDays, lic.MaxDevices),
	})
}

// VerifyLicense is called by AMPNM installations. Well-formed requests always
// get 200; the verdict is in the body.
func (h *PortalHandler) VerifyLicense(c *fiber.Ctx) error {
	var req license.VerifyRequest
	if err := handler.ParseBody(c, &req); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	if strings.TrimSpace(req.AppLicenseKey) == "" {
		return handler.Fail(c, fiber.StatusBadRequest, "License key is required.")
	}

	resp, err := h.licenses.Verify(c.UserContext(), req)
	if err != nil {
		slog.Error("verify license", "error", err)
		return handler.Fail(c, fiber.StatusInternalServerError, "License verification failed.")
	}
	slog.Debug("license verified", "installation_id", req.InstallationID, "status", resp.ActualStatus, "devices", req.CurrentDeviceCount)
	return c.JSON(resp)
}

func (h *PortalHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		return handler.Fail(c, fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return handler.Fail(c, fiber.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, usecase.ErrDuplicateCustomer):
		return handler.Fail(c, fiber.StatusBadRequest, "An account with this email already exists.")
	case errors.Is(err, repository.ErrNotFound):
		return handler.Fail(c, fiber.StatusNotFound, "Customer not found.")
	}
	slog.Error(fallback, "path", c.OriginalURL(), "error", err)
	return handler.Fail(c, fiber.StatusInternalServerError, fallback)
}

func demoMessage(days, devices int) string {
	return fmt.Sprintf("Demo license generated successfully. It is valid for %d days and %d devices.", days, devices)
}
