// Package client is the Go API client for the LMS backend. It owns the
// client side of the session lifecycle: it persists the bearer token, restores
// it on startup, attaches it to every request, lazily fetches the CSRF token
// for mutating calls and drops the session on any 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State describes the session lifecycle.
type State int

const (
	// StateUnauthenticated means no token is held.
	StateUnauthenticated State = iota
	// StateRestoring means a persisted token was found but the identity
	// behind it has not been confirmed yet.
	StateRestoring
	// StateAuthenticated means the token is held and the identity confirmed.
	StateAuthenticated
	// StateError means identity confirmation failed for a reason other than
	// rejection of the token (for example the server was unreachable).
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ErrUnauthenticated is returned when the server rejects the session; the
// client has already discarded the stored token by the time callers see it.
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError carries a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// User is the client-side view of the authenticated identity.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Course mirrors the catalog entries returned by the server.
type Course struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	InstructorID string `json:"instructorId"`
	Status       string `json:"status"`
}

// Notification mirrors the in-app notifications returned by the server.
type Notification struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}

const csrfHeader = "X-CSRF-Token"

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added
// when the given client has none, since the CSRF scheme needs one.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// Client is a session-aware API client. Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   TokenStore

	mu    sync.RWMutex
	state State
	token string
	user  *User
	csrf  string

	group singleflight.Group
}

// New builds a client for the given base URL. The token store decides how the
// session survives restarts; use NewMemoryTokenStore for a throwaway session.
func New(baseURL string, store TokenStore, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		state:   StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if c.httpc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.httpc.Jar = jar
	}
	return c, nil
}

// State returns the current session state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CurrentUser returns the confirmed identity, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Restore loads a previously persisted token and confirms the identity behind
// it. Consumers can observe StateRestoring while the confirmation is in
// flight, which is distinct from StateUnauthenticated.
func (c *Client) Restore(ctx context.Context) error {
	token, err := c.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		c.setState(StateUnauthenticated, "", nil)
		return nil
	}

	c.setState(StateRestoring, token, nil)

	var env sessionEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &env); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			// do() already discarded the token and downgraded the state.
			return nil
		}
		c.mu.Lock()
		c.state = StateError
		c.mu.Unlock()
		return err
	}

	c.setState(StateAuthenticated, token, env.User)
	return nil
}

// Register creates an account and starts an authenticated session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	return c.startSession(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// Login authenticates and starts a session, persisting the new token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.startSession(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) startSession(ctx context.Context, path string, body any) (*User, error) {
	var env sessionEnvelope
	if err := c.do(ctx, http.MethodPost, path, body, &env); err != nil {
		return nil, err
	}
	if err := c.store.Save(env.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	c.setState(StateAuthenticated, env.Token, env.User)
	return env.User, nil
}

// Logout discards the session locally. Tokens are stateless, so there is
// nothing to revoke server-side.
func (c *Client) Logout() error {
	c.setState(StateUnauthenticated, "", nil)
	return c.store.Clear()
}

// Me fetches the current identity using the held token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var env sessionEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// ChangePassword changes the authenticated user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPost, "/auth/password/change", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	}, nil)
}

// Courses lists the approved catalog.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var env struct {
		Courses []Course `json:"courses"`
	}
	if err := c.do(ctx, http.MethodGet, "/courses/", nil, &env); err != nil {
		return nil, err
	}
	return env.Courses, nil
}

// CreateCourse submits a course for approval (instructor role).
func (c *Client) CreateCourse(ctx context.Context, title, description string) (*Course, error) {
	var env struct {
		Course *Course `json:"course"`
	}
	if err := c.do(ctx, http.MethodPost, "/courses/", map[string]string{
		"title":       title,
		"description": description,
	}, &env); err != nil {
		return nil, err
	}
	return env.Course, nil
}

// EnrollCourse enrolls the authenticated student in a course.
func (c *Client) EnrollCourse(ctx context.Context, courseID string) error {
	return c.do(ctx, http.MethodPost, "/courses/"+courseID+"/enroll", nil, nil)
}

// Notifications lists the caller's in-app notifications.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var env struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/", nil, &env); err != nil {
		return nil, err
	}
	return env.Notifications, nil
}

type sessionEnvelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// do performs one API call: bearer token attached when held, CSRF token
// fetched and attached for mutating methods, 401 downgrades the session.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if mutating(method) {
		csrf, err := c.ensureCSRF(ctx)
		if err != nil {
			return fmt.Errorf("fetch csrf token: %w", err)
		}
		req.Header.Set(csrfHeader, csrf)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.downgrade()
		return ErrUnauthenticated
	}
	if resp.StatusCode >= 400 {
		var env errorEnvelope
		message := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != "" {
			message = env.Error
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// ensureCSRF returns the cached CSRF token, fetching it at most once per
// session lifetime. Concurrent callers share a single in-flight fetch.
func (c *Client) ensureCSRF(ctx context.Context) (string, error) {
	c.mu.RLock()
	cached := c.csrf
	c.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	val, err, _ := c.group.Do("csrf", func() (any, error) {
		token, err := c.fetchCSRF(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.csrf = token
		c.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return val.(string), nil
}

func (c *Client) fetchCSRF(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/csrf-token", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, Message: resp.Status}
	}
	var env struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", err
	}
	if env.CSRFToken == "" {
		return "", errors.New("empty csrf token in response")
	}
	return env.CSRFToken, nil
}

// downgrade discards the session after a 401. The stored token is cleared so
// the next restore does not retry a dead token.
func (c *Client) downgrade() {
	c.setState(StateUnauthenticated, "", nil)
	_ = c.store.Clear()
}

func (c *Client) setState(state State, token string, user *User) {
	c.mu.Lock()
	c.state = state
	c.token = token
	c.user = user
	c.mu.Unlock()
}
