package routes

import (
	"context"
	"net/http"
	"testing"

	"ampnm-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}

func TestNewDispatcherRejectsBadTables(t *testing.T) {
	setup := func(context.Context) (bool, error) { return false, nil }

	cases := map[string][]Action{
		"empty name":   {{Name: "", Methods: []string{get}, Handler: okHandler}},
		"duplicate":    {{Name: "a", Methods: []string{get}, Handler: okHandler}, {Name: "a", Methods: []string{post}, Handler: okHandler}},
		"nil handler":  {{Name: "a", Methods: []string{get}}},
		"no methods":   {{Name: "a", Handler: okHandler}},
		"bad method":   {{Name: "a", Methods: []string{fiber.MethodDelete}, Handler: okHandler}},
		"bad access":   {{Name: "a", Methods: []string{get}, Access: Access(42), Handler: okHandler}},
		"setup absent": {{Name: "a", Methods: []string{post}, Access: SetupOrAdmin, Handler: okHandler}},
	}
	for name, actions := range cases {
		t.Run(name, func(t *testing.T) {
			check := setup
			if name == "setup absent" {
				check = nil
			}
			_, err := NewDispatcher(actions, passThrough, check)
			assert.Error(t, err)
		})
	}

	_, err := NewDispatcher(nil, nil, nil)
	assert.Error(t, err)

	_, err = NewDispatcher([]Action{{Name: "a", Methods: []string{get, post}, Access: SetupOrAdmin, Handler: okHandler}}, passThrough, setup)
	assert.NoError(t, err)
}

func TestDispatcherPipeline(t *testing.T) {
	// Role comes from a header so the pipeline can be driven without sessions
	authenticate := func(c *fiber.Ctx) error {
		if role := c.Get("X-Role"); role != "" {
			c.Locals("identity", &middleware.Identity{UserID: 7, Role: role})
		}
		return c.Next()
	}
	setupDone := false
	d, err := NewDispatcher([]Action{
		{Name: "open", Methods: []string{get}, Access: Public, Handler: okHandler},
		{Name: "mine", Methods: []string{get}, Access: Authenticated, Handler: okHandler},
		{Name: "admin", Methods: []string{post}, Access: AdminOnly, Handler: okHandler},
		{Name: "setup", Methods: []string{post}, Access: SetupOrAdmin, Handler: okHandler},
	}, authenticate, func(context.Context) (bool, error) { return setupDone, nil })
	require.NoError(t, err)

	app := fiber.New()
	d.Mount(app, "/api.php", "/api")

	call := func(method, target, role string) *http.Response {
		req, err := http.NewRequest(method, target, nil)
		require.NoError(t, err)
		if role != "" {
			req.Header.Set("X-Role", role)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusOK, call(get, "/api.php?action=open", "").StatusCode)
	assert.Equal(t, http.StatusOK, call(get, "/api?action=open", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, call(get, "/api.php?action=missing", "").StatusCode)

	assert.Equal(t, http.StatusUnauthorized, call(get, "/api.php?action=mine", "").StatusCode)
	assert.Equal(t, http.StatusOK, call(get, "/api.php?action=mine", "read_user").StatusCode)

	assert.Equal(t, http.StatusForbidden, call(post, "/api.php?action=admin", "").StatusCode)
	assert.Equal(t, http.StatusForbidden, call(post, "/api.php?action=admin", "network_manager").StatusCode)
	assert.Equal(t, http.StatusOK, call(post, "/api.php?action=admin", "admin").StatusCode)

	// Authorization runs before the method check
	assert.Equal(t, http.StatusForbidden, call(get, "/api.php?action=admin", "").StatusCode)
	resp := call(get, "/api.php?action=admin", "admin")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "POST", resp.Header.Get("Allow"))

	assert.Equal(t, http.StatusOK, call(post, "/api.php?action=setup", "").StatusCode)
	setupDone = true
	assert.Equal(t, http.StatusForbidden, call(post, "/api.php?action=setup", "").StatusCode)
	assert.Equal(t, http.StatusOK, call(post, "/api.php?action=setup", "admin").StatusCode)
}
