package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jeswin28/lms-backend/internal/auth"
	apperrors "github.com/jeswin28/lms-backend/pkg/util"
)

// CSRFHandler exposes the token read endpoint.
type CSRFHandler struct {
	guard *auth.CSRFGuard
}

// NewCSRFHandler constructs handler.
func NewCSRFHandler(guard *auth.CSRFGuard) *CSRFHandler {
	return &CSRFHandler{guard: guard}
}

// Token handles GET /csrf-token. It sets the secret cookie when absent and
// returns the derived value clients send back in the CSRF header.
func (h *CSRFHandler) Token(c *fiber.Ctx) error {
	token, err := h.guard.Issue(c)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"csrfToken": token})
}
