package middleware

import (
	"errors"
	"log/slog"

	"ampnm-backend/internal/repository"
	"ampnm-backend/internal/session"

	"github.com/gofiber/fiber/v2"
)

// Session resolves the session cookie to the live user row. Requests without
// a valid session pass through anonymously; a session whose user is gone is
// destroyed.
func Session(store session.Store, users repository.UserRepository, cookie string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookie)
		if token == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		sess, err := store.Get(ctx, token)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				slog.Error("load session", "error", err)
			}
			return c.Next()
		}

		user, err := users.FindByID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				_ = store.Delete(ctx, token)
			} else {
				slog.Error("load session user", "user_id", sess.UserID, "error", err)
			}
			return c.Next()
		}

		setIdentity(c, &Identity{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
			Token:    token,
		})
		return c.Next()
	}
}
