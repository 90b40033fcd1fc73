package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jeswin28/lms-backend/internal/api/dto"
	"github.com/jeswin28/lms-backend/internal/service"
	apperrors "github.com/jeswin28/lms-backend/pkg/util"
)

// AdminUsersHandler exposes admin-only user management.
type AdminUsersHandler struct {
	users *service.UserService
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(userService *service.UserService) *AdminUsersHandler {
	return &AdminUsersHandler{users: userService}
}

// List handles GET /admin/users.
func (h *AdminUsersHandler) List(c *fiber.Ctx) error {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)

	users, err := h.users.List(c.Context(), page, pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.NewAdminUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"success": true, "users": resp})
}

// Update handles PUT /admin/users/:id. This is the only route that can change
// a user's role or status.
func (h *AdminUsersHandler) Update(c *fiber.Ctx) error {
	var req dto.AdminUserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.Update(c.Context(), c.Params("id"), service.UserUpdate{
		Name:   req.Name,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewAdminUserResponse(user)})
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}
