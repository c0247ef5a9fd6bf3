package http

import (
	"errors"
	"log/slog"

	"ampnm-backend/internal/handler"
	"ampnm-backend/internal/middleware"
	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"
	"ampnm-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type UserHandler struct {
	usecase *usecase.UserUsecase
	cookie  CookieConfig
}

func NewUserHandler(u *usecase.UserUsecase, cookie CookieConfig) *UserHandler {
	return &UserHandler{usecase: u, cookie: cookie}
}

type userRequest struct {
	ID              handler.FlexID `json:"id"`
	Username        string         `json:"username"`
	Email           string         `json:"email"`
	Password        string         `json:"password"`
	ConfirmPassword string         `json:"confirm_password"`
	Role            string         `json:"role"`
}

func userView(u *model.User) fiber.Map {
	return fiber.Map{"id": u.ID, "username": u.Username, "email": u.Email, "role": u.Role}
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var input userRequest
	if err := handler.ParseBody(c, &input); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	user, sess, err := h.usecase.Login(c.UserContext(), input.Username, input.Password)
	if err != nil {
		return h.fail(c, err, "Login failed.")
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return handler.OK(c, fiber.Map{"message": "Login successful.", "user": userView(user)})
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var input userRequest
	if err := handler.ParseBody(c, &input); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	// Self-registration always yields a read-only account
	user, err := h.usecase.Register(c.UserContext(), usecase.NewUser{
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		Role:            model.RoleReadUser,
	})
	if err != nil {
		return h.fail(c, err, "Registration failed.")
	}
	return handler.OK(c, fiber.Map{"message": "Registration successful. You can now log in.", "user": userView(user)})
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	id := middleware.CurrentUser(c)
	if err := h.usecase.Logout(c.UserContext(), id.Token); err != nil {
		slog.Error("destroy session", "user_id", id.UserID, "error", err)
	}
	c.ClearCookie(h.cookie.Name)
	return handler.OK(c, fiber.Map{"message": "Logged out."})
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	id := middleware.CurrentUser(c)
	user, err := h.usecase.Get(c.UserContext(), id.UserID)
	if err != nil {
		return h.fail(c, err, "Failed to load user.")
	}
	return handler.OK(c, fiber.Map{"user": userView(user)})
}

func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.usecase.List(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to load users.")
	}
	return handler.OK(c, fiber.Map{"users": users})
}

func (h *UserHandler) AddUser(c *fiber.Ctx) error {
	var input userRequest
	if err := handler.ParseBody(c, &input); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	user, err := h.usecase.Register(c.UserContext(), usecase.NewUser{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	})
	if err != nil {
		return h.fail(c, err, "Failed to add user.")
	}
	slog.Info("user added", "user_id", user.ID, "role", user.Role, "by", middleware.CurrentUser(c).UserID)
	return handler.OK(c, fiber.Map{"message": "User added successfully.", "user": user})
}

func (h *UserHandler) UpdateUserRole(c *fiber.Ctx) error {
	var input userRequest
	if err := handler.ParseBody(c, &input); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	if input.ID == 0 || !model.ValidRole(input.Role) {
		return handler.Fail(c, fiber.StatusBadRequest, "User ID and a valid role are required.")
	}

	user, err := h.usecase.UpdateRole(c.UserContext(), uint(input.ID), input.Role)
	if err != nil {
		return h.fail(c, err, "Failed to update user role.")
	}
	return handler.OK(c, fiber.Map{"message": "User role updated successfully.", "user": user})
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	var input userRequest
	if err := handler.ParseBody(c, &input); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	if input.ID == 0 {
		return handler.Fail(c, fiber.StatusBadRequest, "User ID is required.")
	}

	actor := middleware.CurrentUser(c)
	if err := h.usecase.Delete(c.UserContext(), actor.UserID, uint(input.ID)); err != nil {
		return h.fail(c, err, "Failed to delete user.")
	}
	slog.Info("user deleted", "user_id", input.ID, "by", actor.UserID)
	return handler.OK(c, fiber.Map{"message": "User deleted successfully."})
}

// fail maps usecase and repository errors onto status codes.
func (h *UserHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		return handler.Fail(c, fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return handler.Fail(c, fiber.StatusUnauthorized, "Invalid username or password.")
	case errors.Is(err, usecase.ErrDuplicateUser):
		return handler.Fail(c, fiber.StatusBadRequest, "User with this email or username already exists.")
	case errors.Is(err, usecase.ErrInvalidRole):
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid role specified.")
	case errors.Is(err, usecase.ErrSelfDelete):
		return handler.Fail(c, fiber.StatusBadRequest, "You cannot delete your own account.")
	case errors.Is(err, repository.ErrNotFound):
		return handler.Fail(c, fiber.StatusNotFound, "User not found.")
	}
	slog.Error(fallback, "path", c.OriginalURL(), "error", err)
	return handler.Fail(c, fiber.StatusInternalServerError, fallback)
}
