// Package license resolves the application's license state against the
// external license portal.
package license

// VerifyRequest is the body POSTed to the portal's verification endpoint.
type VerifyRequest struct {
	AppLicenseKey      string `json:"app_license_key"`
	UserID             string `json:"user_id"`
	CurrentDeviceCount int64  `json:"current_device_count"`
	InstallationID     string `json:"installation_id"`
}

// VerifyResponse is the portal's answer.
type VerifyResponse struct {
	Success        bool    `json:"success"`
	MaxDevices     int     `json:"max_devices"`
	Message        string  `json:"message"`
	ActualStatus   string  `json:"actual_status"`
	GracePeriodEnd *string `json:"grace_period_end,omitempty"`
}

// Status codes reported in Status.LicenseStatusCode besides the portal's own
// actual_status values.
const (
	CodeNotConfigured   = "not_configured"
	CodeConfigError     = "config_error"
	CodeConnectionError = "connection_error"
	CodeAPIError        = "api_error"
	CodeParseError      = "parse_error"
	CodeActive          = "active"
	CodeFree            = "free"
	CodeInvalid         = "invalid"
	CodeRevoked         = "revoked"
	CodeExpired         = "expired"
	CodeInUse           = "in_use"
	CodeGracePeriod     = "grace_period"
)

// Status is what the dashboard and the device gate consume.
type Status struct {
	AppLicenseKey         *string `json:"app_license_key"`
	CanAddDevice          bool    `json:"can_add_device"`
	MaxDevices            int     `json:"max_devices"`
	LicenseMessage        string  `json:"license_message"`
	LicenseStatusCode     string  `json:"license_status_code"`
	LicenseGracePeriodEnd *string `json:"license_grace_period_end"`
	InstallationID        *string `json:"installation_id"`
}
