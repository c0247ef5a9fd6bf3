package middleware

import (
	"ampnm-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// Identity is the authenticated caller of one request. It is built once by an
// authenticator and never modified afterwards.
type Identity struct {
	UserID   uint
	Username string
	Email    string
	Role     string
	Token    string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == model.RoleAdmin
}

// CurrentUser returns the request's identity, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(identityKey).(*Identity)
	return id
}

func setIdentity(c *fiber.Ctx, id *Identity) {
	c.Locals(identityKey, id)
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity(c *fiber.Ctx) error {
	if CurrentUser(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Unauthorized access."})
	}
	return c.Next()
}
