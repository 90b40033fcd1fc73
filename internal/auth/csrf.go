package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jeswin28/lms-backend/internal/config"
	apperrors "github.com/jeswin28/lms-backend/pkg/util"
)

const csrfNonceLen = 32

// CSRFGuard implements an HMAC-derived double-submit scheme. A random nonce
// lives in an http-only cookie, so script can never read it; the value handed
// to the client is HMAC-SHA256(secret, nonce). A mutating request must carry
// that derived value in the header, and the server recomputes it from the
// cookie nonce. The guard runs before any identity check and protects
// unauthenticated mutating routes too.
type CSRFGuard struct {
	key        []byte
	cookieName string
	headerName string
	disabled   bool
}

// NewCSRFGuard builds the guard. When cfg.Disabled is set the bypass is logged
// at warn level so it is visible in any environment it leaks into.
func NewCSRFGuard(cfg config.CSRFConfig, logger *zap.Logger) *CSRFGuard {
	if cfg.Disabled {
		logger.Warn("CSRF protection is DISABLED by configuration; never run production this way")
	}
	return &CSRFGuard{
		key:        []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		headerName: cfg.HeaderName,
		disabled:   cfg.Disabled,
	}
}

// Issue ensures the requester has a secret cookie and returns the derived
// token value that is safe to expose to script.
func (g *CSRFGuard) Issue(c *fiber.Ctx) (string, error) {
	nonce := c.Cookies(g.cookieName)
	if nonce == "" {
		raw := make([]byte, csrfNonceLen)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("generate csrf nonce: %w", err)
		}
		nonce = base64.RawURLEncoding.EncodeToString(raw)
		c.Cookie(&fiber.Cookie{
			Name:     g.cookieName,
			Value:    nonce,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return g.derive(nonce), nil
}

// Handle rejects mutating requests that do not present a header token matching
// the cookie-bound secret. Safe methods pass through untouched.
func (g *CSRFGuard) Handle(c *fiber.Ctx) error {
	if g.disabled {
		return c.Next()
	}
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return c.Next()
	}

	nonce := c.Cookies(g.cookieName)
	if nonce == "" {
		return apperrors.NewForbidden("missing CSRF cookie")
	}
	token := c.Get(g.headerName)
	if token == "" {
		return apperrors.NewForbidden("missing CSRF token")
	}
	if !hmac.Equal([]byte(token), []byte(g.derive(nonce))) {
		return apperrors.NewForbidden("invalid CSRF token")
	}
	return c.Next()
}

func (g *CSRFGuard) derive(nonce string) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
