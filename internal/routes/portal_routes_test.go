package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ampnm-backend/config"
	"ampnm-backend/internal/database"
	"ampnm-backend/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type outbox struct {
	mu   sync.Mutex
	sent []string
}

func (o *outbox) Send(to, subject, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, to)
	return nil
}

func (o *outbox) recipients() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.sent...)
}

type portalEnv struct {
	t    *testing.T
	db   *gorm.DB
	app  *fiber.App
	mail *outbox
}

func newPortalEnv(t *testing.T) *portalEnv {
	t.Helper()
	db := newTestDB(t, config.PortalModels...)
	require.NoError(t, database.SeedPortal(context.Background(), db))
	mail := &outbox{}
	app := fiber.New()
	require.NoError(t, SetupPortalRoutes(app, db, testConfig(""), mail))
	return &portalEnv{t: t, db: db, app: app, mail: mail}
}

func (e *portalEnv) client() *client {
	return &client{t: e.t, app: e.app, path: "/portal_api.php"}
}

// signup registers a customer and returns a client carrying its token.
func (e *portalEnv) signup(name, email string) *client {
	e.t.Helper()
	c := e.client()
	code, body := c.post("register", map[string]string{"name": name, "email": email, "password": "hunter22"})
	require.Equal(e.t, http.StatusOK, code, body)

	code, body = c.post("login", map[string]string{"email": email, "password": "hunter22"})
	require.Equal(e.t, http.StatusOK, code, body)
	c.bearer = body["token"].(string)
	require.NotEmpty(e.t, c.bearer)
	return c
}

func TestPortalRequiresSecret(t *testing.T) {
	db := newTestDB(t, config.PortalModels...)
	cfg := testConfig("")
	cfg.JWTSecret = ""
	assert.Error(t, SetupPortalRoutes(fiber.New(), db, cfg, &outbox{}))
}

func TestPortalAccount(t *testing.T) {
	env := newPortalEnv(t)
	c := env.signup("Jane Doe", "jane@example.com")

	code, body := env.client().post("register", map[string]string{"name": "Jane", "email": "jane@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "An account with this email already exists.", body["error"])

	code, _ = env.client().post("login", map[string]string{"email": "jane@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = c.get("get_profile")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Jane Doe", body["name"])
	assert.Equal(t, "jane@example.com", body["email"])
	assert.Equal(t, "", body["first_name"])

	code, body = c.post("update_profile", map[string]string{"first_name": "Jane"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "First Name and Last Name are required.", body["error"])

	code, _ = c.post("update_profile", map[string]string{"first_name": "Janet", "last_name": "Roe", "phone": "+880 1700"})
	require.Equal(t, http.StatusOK, code)

	code, body = c.get("get_profile")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Janet Roe", body["name"])
	assert.Equal(t, "Roe", body["last_name"])
	assert.Equal(t, "+880 1700", body["phone"])
}

func TestPortalTokenRequired(t *testing.T) {
	env := newPortalEnv(t)
	c := env.client()

	code, body := c.get("get_products")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized access.", body["error"])

	c.bearer = "not-a-jwt"
	code, _ = c.get("get_profile")
	assert.Equal(t, http.StatusUnauthorized, code)

	// Signed with the right secret but already expired
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id": 1,
		"exp":         time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	c.bearer = expired
	code, _ = c.get("get_profile")
	assert.Equal(t, http.StatusUnauthorized, code)

	// No expiry at all
	forever, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"customer_id": 1}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	c.bearer = forever
	code, _ = c.get("get_profile")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = c.get("drop_tables")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Invalid API action.", body["error"])
}

func TestPortalProducts(t *testing.T) {
	env := newPortalEnv(t)
	c := env.signup("Jane", "jane@example.com")

	code, body := c.get("get_products")
	require.Equal(t, http.StatusOK, code)
	products := body["products"].([]any)
	require.Len(t, products, len(database.DefaultProducts))
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.(map[string]any)["name"].(string))
	}
	assert.Contains(t, names, "AMPNM Enterprise")
}

func TestDemoLicense(t *testing.T) {
	env := newPortalEnv(t)
	c := env.client()

	code, body := c.get("get_demo_license")
	require.Equal(t, http.StatusOK, code, body)
	key := body["license_key"].(string)
	assert.True(t, strings.HasPrefix(key, "AMPNM-"))
	assert.Equal(t, "Demo license generated successfully. It is valid for 7 days and 5 devices.", body["message"])

	code, body = c.post("get_demo_license", map[string]string{"email": "trial@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEqual(t, key, body["license_key"])
	assert.Eventually(t, func() bool { return len(env.mail.recipients()) == 1 }, time.Second, 10*time.Millisecond)

	code, _ = c.get("get_demo_license&email=query@example.com")
	require.Equal(t, http.StatusOK, code)
	assert.Eventually(t, func() bool { return len(env.mail.recipients()) == 2 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"trial@example.com", "query@example.com"}, env.mail.recipients())

	code, body = c.post("get_demo_license", map[string]string{"email": "a@example.com\r\nBcc: b@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid email format.", body["error"])
}

func TestDemoLicenseRateLimit(t *testing.T) {
	env := newPortalEnv(t)
	c := env.signup("Jane", "jane@example.com")

	for i := 0; i < 5; i++ {
		code, _ := c.get("get_demo_license")
		require.Equal(t, http.StatusOK, code, i)
	}
	code, body := c.get("get_demo_license")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "Too many demo license requests. Try again later.", body["error"])

	// The alias path shares the budget
	alias := &client{t: t, app: env.app, path: "/portal/api"}
	code, _ = alias.get("get_demo_license")
	assert.Equal(t, http.StatusTooManyRequests, code)

	// Other actions are not throttled
	for i := 0; i < 6; i++ {
		code, _ = c.get("get_products")
		require.Equal(t, http.StatusOK, code)
	}
}

func TestDemoLicenseWithoutProduct(t *testing.T) {
	env := newPortalEnv(t)
	require.NoError(t, env.db.Where("is_demo = ?", true).Delete(&model.Product{}).Error)

	code, body := env.client().get("get_demo_license")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to generate demo license. Product not found or database error.", body["error"])
}

func TestVerifyLicenseEndpoint(t *testing.T) {
	env := newPortalEnv(t)
	c := env.client()
	_, body := c.get("get_demo_license")
	key := body["license_key"].(string)

	verify := &client{t: t, app: env.app, path: "/verify_license.php"}
	code, body := verify.post("", map[string]any{
		"app_license_key": key, "user_id": "1", "current_device_count": 3, "installation_id": "inst-a",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 5, body["max_devices"])
	assert.Equal(t, "active", body["actual_status"])

	var lic model.License
	require.NoError(t, env.db.Where("license_key = ?", key).First(&lic).Error)
	assert.Equal(t, "inst-a", lic.InstallationID)
	assert.Equal(t, 3, lic.CurrentDevices)
	assert.NotNil(t, lic.LastVerifiedAt)

	// The action form answers the same way
	code, body = c.post("verify_license", map[string]any{"app_license_key": key, "installation_id": "inst-b"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "in_use", body["actual_status"])

	code, body = verify.post("", map[string]any{"app_license_key": "AMPNM-NOPE", "installation_id": "inst-a"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid", body["actual_status"])

	code, body = verify.post("", map[string]any{"installation_id": "inst-a"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "License key is required.", body["error"])

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/verify_license.php", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
