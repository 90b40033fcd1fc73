package auth_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/jeswin28/lms-backend/internal/api/http"
	"github.com/jeswin28/lms-backend/internal/auth"
	"github.com/jeswin28/lms-backend/internal/domain"
	"github.com/jeswin28/lms-backend/internal/observability"
)

// gateApp builds an app where the user is injected directly, isolating the
// role gate from token verification.
func gateApp(user *domain.User, gates ...fiber.Handler) (*fiber.App, *bool) {
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	invoked := false
	inject := func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("current_user", user)
		}
		return c.Next()
	}
	chain := append([]fiber.Handler{inject}, gates...)
	chain = append(chain, func(c *fiber.Ctx) error {
		invoked = true
		return c.SendString("ok")
	})
	app.Get("/gated", chain...)
	return app, &invoked
}

func TestRequireRoleMatrix(t *testing.T) {
	tests := []struct {
		name    string
		role    domain.Role
		allowed []domain.Role
		want    int
	}{
		{"student allowed", domain.RoleStudent, []domain.Role{domain.RoleStudent}, http.StatusOK},
		{"student denied instructor route", domain.RoleStudent, []domain.Role{domain.RoleInstructor}, http.StatusForbidden},
		{"admin denied student route", domain.RoleAdmin, []domain.Role{domain.RoleStudent}, http.StatusForbidden},
		{"union admits instructor", domain.RoleInstructor, []domain.Role{domain.RoleInstructor, domain.RoleAdmin}, http.StatusOK},
		{"union admits admin", domain.RoleAdmin, []domain.Role{domain.RoleInstructor, domain.RoleAdmin}, http.StatusOK},
		{"union denies student", domain.RoleStudent, []domain.Role{domain.RoleInstructor, domain.RoleAdmin}, http.StatusForbidden},
		{"empty set admits any authenticated", domain.RoleStudent, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &domain.User{ID: "u1", Role: tt.role, Status: domain.UserStatusActive}
			app, invoked := gateApp(user, auth.RequireRole(tt.allowed...))

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/gated", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, tt.want == http.StatusOK, *invoked)
		})
	}
}

func TestRequireRoleWithoutUserIsForbidden(t *testing.T) {
	app, invoked := gateApp(nil, auth.RequireRole(domain.RoleStudent))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/gated", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, *invoked)
}

func TestRequireRoleNamesMissingRole(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.RoleStudent, Status: domain.UserStatusActive}
	app, _ := gateApp(user, auth.RequireRole(domain.RoleInstructor, domain.RoleAdmin))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/gated", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "instructor or admin")
}

func TestRequireRoleChainingIsOrderIndependent(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.RoleAdmin, Status: domain.UserStatusActive}

	forward, invokedForward := gateApp(user,
		auth.RequireRole(domain.RoleInstructor, domain.RoleAdmin),
		auth.RequireRole(domain.RoleAdmin, domain.RoleInstructor))
	reverse, invokedReverse := gateApp(user,
		auth.RequireRole(domain.RoleAdmin, domain.RoleInstructor),
		auth.RequireRole(domain.RoleInstructor, domain.RoleAdmin))

	respForward, err := forward.Test(httptest.NewRequest(http.MethodGet, "/gated", nil))
	require.NoError(t, err)
	respReverse, err := reverse.Test(httptest.NewRequest(http.MethodGet, "/gated", nil))
	require.NoError(t, err)

	assert.Equal(t, respForward.StatusCode, respReverse.StatusCode)
	assert.Equal(t, http.StatusOK, respForward.StatusCode)
	assert.True(t, *invokedForward)
	assert.True(t, *invokedReverse)
}
