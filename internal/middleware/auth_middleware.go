package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RoleCustomer is the role carried by portal identities.
const RoleCustomer = "customer"

// Auth reads a portal bearer token. A missing or invalid token leaves the
// request anonymous; RequireIdentity decides whether that is acceptable.
func Auth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Token from the Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			return c.Next()
		}

		// 2. Parse and validate
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.ErrUnauthorized
			}
			return secret, nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			return c.Next()
		}

		// 3. Claims into the request identity
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Next()
		}
		customerID, ok := claims["customer_id"].(float64)
		if !ok || customerID <= 0 {
			return c.Next()
		}
		email, _ := claims["email"].(string)

		setIdentity(c, &Identity{
			UserID: uint(customerID),
			Email:  email,
			Role:   RoleCustomer,
			Token:  tokenString,
		})
		return c.Next()
	}
}
