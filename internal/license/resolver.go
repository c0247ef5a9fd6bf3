package license

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"ampnm-backend/internal/metrics"
	"ampnm-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrVerifierUnavailable means the portal could not be reached or answered non-200.
	ErrVerifierUnavailable = errors.New("failed to verify license with external portal")
	// ErrNoInstallationID means the app_settings row is missing.
	ErrNoInstallationID = errors.New("application installation ID missing")
)

// RejectedError carries the portal's explanation for refusing a key.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Settings reads the stored key and installation id.
type Settings interface {
	Get(ctx context.Context, key string) (string, error)
}

// DeviceCounter counts the devices a user owns.
type DeviceCounter interface {
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type Resolver struct {
	settings      Settings
	devices       DeviceCounter
	apiURL        string
	statusTimeout time.Duration
	verifyTimeout time.Duration
}

func NewResolver(settings Settings, devices DeviceCounter, apiURL string, statusTimeout, verifyTimeout time.Duration) *Resolver {
	return &Resolver{
		settings:      settings,
		devices:       devices,
		apiURL:        apiURL,
		statusTimeout: statusTimeout,
		verifyTimeout: verifyTimeout,
	}
}

// Status resolves the license for the given user (nil for anonymous callers).
// It never fails: every problem is folded into the returned status.
func (r *Resolver) Status(ctx context.Context, userID *uint) Status {
	status := r.resolve(ctx, userID)
	metrics.LicenseChecks.WithLabelValues(metricCode(status.LicenseStatusCode)).Inc()
	return status
}

func (r *Resolver) resolve(ctx context.Context, userID *uint) Status {
	status := Status{
		LicenseMessage:    "License not configured.",
		LicenseStatusCode: CodeNotConfigured,
	}

	key, err := r.settings.Get(ctx, model.SettingLicenseKey)
	if err != nil {
		slog.Error("read license key", "error", err)
	}
	installationID, err := r.settings.Get(ctx, model.SettingInstallationID)
	if err != nil {
		slog.Error("read installation id", "error", err)
	}
	if installationID != "" {
		status.InstallationID = &installationID
	}
	if key == "" {
		return status
	}
	status.AppLicenseKey = &key

	if r.apiURL == "" {
		status.LicenseMessage = "License API URL is not configured."
		status.LicenseStatusCode = CodeConfigError
		return status
	}

	caller := "guest"
	var count int64
	countFailed := false
	if userID != nil {
		caller = strconv.FormatUint(uint64(*userID), 10)
		count, err = r.devices.CountByUser(ctx, *userID)
		if err != nil {
			slog.Error("count devices for license check", "user_id", *userID, "error", err)
			countFailed = true
		}
	}

	code, body, errs := r.post(VerifyRequest{
		AppLicenseKey:      key,
		UserID:             caller,
		CurrentDeviceCount: count,
		InstallationID:     installationID,
	}, r.statusTimeout)

	switch {
	case len(errs) > 0:
		slog.Warn("license API connection failed", "url", r.apiURL, "error", errors.Join(errs...))
		status.LicenseMessage = "Failed to connect to license verification service."
		status.LicenseStatusCode = CodeConnectionError
		return status
	case code != fiber.StatusOK:
		slog.Warn("license API returned an error", "status", code, "body", string(body))
		status.LicenseMessage = "License verification service returned an error."
		status.LicenseStatusCode = CodeAPIError
		return status
	}

	var resp VerifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("license API response unparseable", "error", err, "body", string(body))
		status.LicenseMessage = "Invalid response from license verification service."
		status.LicenseStatusCode = CodeParseError
		return status
	}

	if !resp.Success {
		status.LicenseMessage = orDefault(resp.Message, "Invalid or expired license key.")
		status.LicenseStatusCode = orDefault(resp.ActualStatus, CodeInvalid)
		return status
	}

	status.MaxDevices = resp.MaxDevices
	status.CanAddDevice = CanAddDevice(count, resp.MaxDevices)
	status.LicenseMessage = orDefault(resp.Message, "License is active.")
	status.LicenseStatusCode = orDefault(resp.ActualStatus, CodeActive)
	status.LicenseGracePeriodEnd = resp.GracePeriodEnd
	switch {
	case countFailed:
		status.CanAddDevice = false
		status.LicenseMessage = "Could not count your devices. Try again later."
	case !status.CanAddDevice:
		status.LicenseMessage = fmt.Sprintf("Device limit reached (%d/%d).", count, resp.MaxDevices)
	}
	return status
}

// metricCode folds codes the portal may invent into "other" so the label set
// stays fixed.
func metricCode(code string) string {
	switch code {
	case CodeNotConfigured, CodeConfigError, CodeConnectionError, CodeAPIError, CodeParseError,
		CodeActive, CodeFree, CodeInvalid, CodeRevoked, CodeExpired, CodeInUse, CodeGracePeriod:
		return code
	}
	return "other"
}

// CanAddDevice applies the device cap; UnlimitedDevices lifts it.
func CanAddDevice(current int64, maxDevices int) bool {
	return maxDevices == model.UnlimitedDevices || current < int64(maxDevices)
}

// VerifyKey checks a candidate key before it is stored. It returns
// ErrVerifierUnavailable, ErrNoInstallationID or a *RejectedError.
func (r *Resolver) VerifyKey(ctx context.Context, key string) error {
	installationID, err := r.settings.Get(ctx, model.SettingInstallationID)
	if err != nil {
		return fmt.Errorf("read installation id: %w", err)
	}
	if installationID == "" {
		return ErrNoInstallationID
	}
	if r.apiURL == "" {
		return ErrVerifierUnavailable
	}

	code, body, errs := r.post(VerifyRequest{
		AppLicenseKey:      key,
		UserID:             "api_call",
		CurrentDeviceCount: 0,
		InstallationID:     installationID,
	}, r.verifyTimeout)
	if len(errs) > 0 || code != fiber.StatusOK {
		slog.Error("license API error during key verification", "status", code, "error", errors.Join(errs...), "body", string(body))
		return ErrVerifierUnavailable
	}

	var resp VerifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("license API response unparseable during key verification", "error", err)
		return &RejectedError{Message: "Invalid license key provided."}
	}
	if !resp.Success {
		return &RejectedError{Message: orDefault(resp.Message, "Invalid license key provided.")}
	}
	return nil
}

func (r *Resolver) post(req VerifyRequest, timeout time.Duration) (int, []byte, []error) {
	agent := fiber.Post(r.apiURL)
	agent.JSON(req)
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return 0, nil, []error{err}
	}
	return agent.Bytes()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
