package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"ampnm-backend/internal/metrics"
	"ampnm-backend/internal/middleware"
	"ampnm-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Access is the authorization level an action requires.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
	// SetupOrAdmin is public until the installation is set up, admin afterwards.
	SetupOrAdmin
)

// Action is one entry of an action-keyed endpoint such as /api.php?action=login.
type Action struct {
	Name    string
	Methods []string
	Access  Access
	Handler fiber.Handler
}

// Dispatcher routes ?action= requests through a fixed pipeline: resolve the
// action, load the identity, authorize, check the method, run the handler.
type Dispatcher struct {
	actions      map[string]Action
	authenticate fiber.Handler
	setupDone    func(ctx context.Context) (bool, error)
	adminOnly    fiber.Handler
}

// NewDispatcher validates the action table. setupDone may be nil when no
// action uses SetupOrAdmin.
func NewDispatcher(actions []Action, authenticate fiber.Handler, setupDone func(ctx context.Context) (bool, error)) (*Dispatcher, error) {
	if authenticate == nil {
		return nil, errors.New("dispatcher needs an authenticator")
	}
	d := &Dispatcher{
		actions:      make(map[string]Action, len(actions)),
		authenticate: authenticate,
		setupDone:    setupDone,
		adminOnly:    middleware.Role(model.RoleAdmin),
	}
	for _, a := range actions {
		if a.Name == "" {
			return nil, errors.New("action with empty name")
		}
		if _, dup := d.actions[a.Name]; dup {
			return nil, fmt.Errorf("duplicate action %q", a.Name)
		}
		if a.Handler == nil {
			return nil, fmt.Errorf("action %q has no handler", a.Name)
		}
		if len(a.Methods) == 0 {
			return nil, fmt.Errorf("action %q allows no methods", a.Name)
		}
		for _, m := range a.Methods {
			if m != fiber.MethodGet && m != fiber.MethodPost {
				return nil, fmt.Errorf("action %q: unsupported method %q", a.Name, m)
			}
		}
		if a.Access < Public || a.Access > SetupOrAdmin {
			return nil, fmt.Errorf("action %q: unknown access level %d", a.Name, a.Access)
		}
		if a.Access == SetupOrAdmin && setupDone == nil {
			return nil, fmt.Errorf("action %q needs a setup check", a.Name)
		}
		d.actions[a.Name] = a
	}
	return d, nil
}

// Mount registers the endpoint under every given path.
func (d *Dispatcher) Mount(router fiber.Router, paths ...string) {
	for _, p := range paths {
		router.All(p, d.resolve, d.authenticate, d.authorize, d.checkMethod, d.invoke)
	}
}

func (d *Dispatcher) resolve(c *fiber.Ctx) error {
	action, ok := d.actions[c.Query("action")]
	if !ok {
		metrics.ObserveAction("unknown", fiber.StatusNotFound)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invalid API action."})
	}
	c.Locals("action", action)

	// Query values alias the request buffer; label with the table's own name.
	err := c.Next()
	metrics.ObserveAction(action.Name, c.Response().StatusCode())
	return err
}

func (d *Dispatcher) authorize(c *fiber.Ctx) error {
	action := c.Locals("action").(Action)

	switch action.Access {
	case Authenticated:
		return middleware.RequireIdentity(c)
	case AdminOnly:
		return d.adminOnly(c)
	case SetupOrAdmin:
		done, err := d.setupDone(c.UserContext())
		if err != nil {
			slog.Error("check installation setup", "action", action.Name, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Internal server error."})
		}
		if done {
			return d.adminOnly(c)
		}
	}
	return c.Next()
}

func (d *Dispatcher) checkMethod(c *fiber.Ctx) error {
	action := c.Locals("action").(Action)
	if !slices.Contains(action.Methods, c.Method()) {
		c.Set(fiber.HeaderAllow, strings.Join(action.Methods, ", "))
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"success": false, "error": "Method not allowed."})
	}
	return c.Next()
}

func (d *Dispatcher) invoke(c *fiber.Ctx) error {
	return c.Locals("action").(Action).Handler(c)
}
