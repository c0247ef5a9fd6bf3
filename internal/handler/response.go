package handler

import "github.com/gofiber/fiber/v2"

// OK writes {"success": true, ...payload}.
func OK(c *fiber.Ctx, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(body)
}

// Fail writes {"success": false, "error": msg} with the given status.
func Fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}
