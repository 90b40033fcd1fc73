package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/jeswin28/lms-backend/internal/api/http"
	"github.com/jeswin28/lms-backend/internal/auth"
	"github.com/jeswin28/lms-backend/internal/config"
	"github.com/jeswin28/lms-backend/internal/observability"
)

func csrfConfig(disabled bool) config.CSRFConfig {
	return config.CSRFConfig{
		Secret:     "csrf-test-secret",
		CookieName: "lms_csrf",
		HeaderName: "X-CSRF-Token",
		Disabled:   disabled,
	}
}

func csrfApp(guard *auth.CSRFGuard) (*fiber.App, *bool) {
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Use(guard.Handle)

	invoked := false
	app.Get("/csrf-token", func(c *fiber.Ctx) error {
		token, err := guard.Issue(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"csrfToken": token})
	})
	handler := func(c *fiber.Ctx) error {
		invoked = true
		return c.SendString("ok")
	}
	app.Get("/resource", handler)
	app.Post("/resource", handler)
	app.Put("/resource", handler)
	return app, &invoked
}

// issueToken performs GET /csrf-token and returns the derived token plus the
// secret cookie to replay.
func issueToken(t *testing.T, app *fiber.App) (string, *http.Cookie) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/csrf-token", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.CSRFToken)

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	var secret *http.Cookie
	for _, c := range cookies {
		if c.Name == "lms_csrf" {
			secret = c
		}
	}
	require.NotNil(t, secret, "secret cookie must be set")
	assert.True(t, secret.HttpOnly, "secret cookie must not be readable by script")
	return body.CSRFToken, secret
}

func TestCSRFExemptMethodsPassWithoutToken(t *testing.T) {
	guard := auth.NewCSRFGuard(csrfConfig(false), zap.NewNop())
	app, invoked := csrfApp(guard)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/resource", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, *invoked)
}

func TestCSRFMutatingRequiresTokenAndCookie(t *testing.T) {
	guard := auth.NewCSRFGuard(csrfConfig(false), zap.NewNop())
	app, _ := csrfApp(guard)
	token, cookie := issueToken(t, app)

	t.Run("no cookie no header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/resource", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("cookie without header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/resource", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("header without cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/resource", nil)
		req.Header.Set("X-CSRF-Token", token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("mismatched header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/resource", nil)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", "forged-value")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("matching pair passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/resource", nil)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestCSRFTokenFromOtherSessionRejected(t *testing.T) {
	guard := auth.NewCSRFGuard(csrfConfig(false), zap.NewNop())
	app, _ := csrfApp(guard)

	tokenA, _ := issueToken(t, app)
	_, cookieB := issueToken(t, app)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.AddCookie(cookieB)
	req.Header.Set("X-CSRF-Token", tokenA)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCSRFDisabledSwitchBypassesGuard(t *testing.T) {
	guard := auth.NewCSRFGuard(csrfConfig(true), zap.NewNop())
	app, invoked := csrfApp(guard)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/resource", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, *invoked)
}
