package middleware

import "github.com/gofiber/fiber/v2"

// Role lets the request through only when the caller holds one of the allowed
// roles. Anonymous callers are refused the same way.
func Role(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := CurrentUser(c); id != nil {
			for _, role := range allowedRoles {
				if role == id.Role {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "Admin privileges required for this action."})
	}
}
