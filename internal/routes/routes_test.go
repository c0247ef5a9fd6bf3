package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ampnm-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	db, err := config.ConnectDB(config.DBConfig{Driver: "sqlite", Path: ":memory:"}, models...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testConfig(licenseURL string) *config.Config {
	return &config.Config{
		License: config.LicenseConfig{
			APIURL:        licenseURL,
			StatusTimeout: "2s",
			VerifyTimeout: "2s",
		},
		Session: config.SessionConfig{
			Backend: "database",
			Cookie:  "AMPNMSESSID",
			TTL:     "1h",
		},
		JWTSecret:     "test-secret",
		DemoRateLimit: 5,
	}
}

// fakeVerifier answers every verification with the given JSON body.
func fakeVerifier(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t      *testing.T
	app    *fiber.App
	path   string
	cookie *http.Cookie
	bearer string
}

func (c *client) do(method, action string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	target := c.path
	if action != "" {
		target += "?action=" + action
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name == "AMPNMSESSID" {
			if ck.Value == "" {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (c *client) get(action string) (int, map[string]any) {
	return c.do(http.MethodGet, action, nil)
}

func (c *client) post(action string, body any) (int, map[string]any) {
	return c.do(http.MethodPost, action, body)
}
