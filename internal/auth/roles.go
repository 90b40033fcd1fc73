package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jeswin28/lms-backend/internal/domain"
	apperrors "github.com/jeswin28/lms-backend/pkg/util"
)

// RequireRole restricts a route to the given set of roles. Gates compose by
// unioning their sets; chaining order does not matter because each gate only
// reads the user that Middleware.Handle attached. An empty set admits any
// authenticated user.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewForbidden("no authenticated user")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[user.Role]; !exists {
			return apperrors.NewForbidden(fmt.Sprintf("requires role %s", roleList(allowed)))
		}
		return c.Next()
	}
}

func roleList(roles []domain.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}
