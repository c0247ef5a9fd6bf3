package handler

import (
	"errors"
	"log/slog"
	"strings"

	"ampnm-backend/internal/middleware"
	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type MapHandler struct {
	repo repository.MapRepository
}

func NewMapHandler(repo repository.MapRepository) *MapHandler {
	return &MapHandler{repo: repo}
}

type mapRequest struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
}

func (h *MapHandler) GetMaps(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	maps, err := h.repo.GetByUser(c.UserContext(), user.UserID)
	if err != nil {
		slog.Error("list maps", "user_id", user.UserID, "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to load maps.")
	}
	return OK(c, fiber.Map{"maps": maps})
}

func (h *MapHandler) CreateMap(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var req mapRequest
	if err := ParseBody(c, &req); err != nil {
		return badBody(c, err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Fail(c, fiber.StatusBadRequest, "Map name is required.")
	}

	m := model.NetworkMap{UserID: user.UserID, Name: name}
	if err := h.repo.Create(c.UserContext(), &m); err != nil {
		slog.Error("create map", "user_id", user.UserID, "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to create map.")
	}
	return OK(c, fiber.Map{"message": "Map created successfully.", "map": m})
}

func (h *MapHandler) UpdateMap(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var req mapRequest
	if err := ParseBody(c, &req); err != nil {
		return badBody(c, err)
	}
	name := strings.TrimSpace(req.Name)
	if req.ID == 0 || name == "" {
		return Fail(c, fiber.StatusBadRequest, "Map ID and name are required.")
	}

	m, err := h.repo.Rename(c.UserContext(), user.UserID, uint(req.ID), name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Fail(c, fiber.StatusNotFound, "Map not found.")
		}
		slog.Error("rename map", "map_id", req.ID, "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to update map.")
	}
	return OK(c, fiber.Map{"message": "Map updated successfully.", "map": m})
}

// DeleteMap removes the map; its devices stay and lose their map reference.
func (h *MapHandler) DeleteMap(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var req mapRequest
	if err := ParseBody(c, &req); err != nil {
		return badBody(c, err)
	}
	if req.ID == 0 {
		return Fail(c, fiber.StatusBadRequest, "Map ID is required.")
	}

	if err := h.repo.Delete(c.UserContext(), user.UserID, uint(req.ID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Fail(c, fiber.StatusNotFound, "Map not found.")
		}
		slog.Error("delete map", "map_id", req.ID, "error", err)
		return Fail(c, fiber.StatusInternalServerError, "Failed to delete map.")
	}
	return OK(c, fiber.Map{"message": "Map deleted successfully."})
}
