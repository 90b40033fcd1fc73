package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/jeswin28/lms-backend/internal/api/http"
	"github.com/jeswin28/lms-backend/internal/api/http/handlers"
	"github.com/jeswin28/lms-backend/internal/auth"
	"github.com/jeswin28/lms-backend/internal/config"
	"github.com/jeswin28/lms-backend/internal/domain"
	"github.com/jeswin28/lms-backend/internal/events"
	"github.com/jeswin28/lms-backend/internal/observability"
	"github.com/jeswin28/lms-backend/internal/persistence"
	"github.com/jeswin28/lms-backend/internal/repository"
	"github.com/jeswin28/lms-backend/internal/service"
	"github.com/jeswin28/lms-backend/internal/worker"
)

type memUserRepo struct {
	byID   map[string]*domain.User
	nextID int
}

func (f *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.nextID++
	user.ID = "u" + string(rune('0'+f.nextID))
	f.byID[user.ID] = user
	return nil
}

func (f *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[user.ID] = user
	return nil
}

func (f *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *memUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	var users []domain.User
	for _, u := range f.byID {
		users = append(users, *u)
	}
	return users, nil
}

func (f *memUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var users []domain.User
	for _, u := range f.byID {
		if u.Role == role {
			users = append(users, *u)
		}
	}
	return users, nil
}

type memCourseRepo struct {
	byID    map[string]*domain.Course
	nextID  int
	created int
}

func (f *memCourseRepo) Create(ctx context.Context, c *domain.Course) error {
	f.nextID++
	f.created++
	c.ID = "c" + string(rune('0'+f.nextID))
	f.byID[c.ID] = c
	return nil
}

func (f *memCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *memCourseRepo) UpdateStatus(ctx context.Context, id string, status domain.CourseStatus) error {
	c, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Status = status
	return nil
}

func (f *memCourseRepo) ListByStatus(ctx context.Context, status domain.CourseStatus) ([]domain.Course, error) {
	var out []domain.Course
	for _, c := range f.byID {
		if c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

type memEnrollmentRepo struct{ pairs map[string]bool }

func (f *memEnrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	e.ID = "e1"
	f.pairs[e.CourseID+"|"+e.StudentID] = true
	return nil
}

func (f *memEnrollmentRepo) Exists(ctx context.Context, courseID, studentID string) (bool, error) {
	return f.pairs[courseID+"|"+studentID], nil
}

func (f *memEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]domain.Enrollment, error) {
	return nil, nil
}

type memNotificationRepo struct{ rows []domain.Notification }

func (f *memNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	n.ID = "n1"
	f.rows = append(f.rows, *n)
	return nil
}

func (f *memNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *memNotificationRepo) MarkRead(ctx context.Context, id, userID string) error { return nil }

type testEnv struct {
	app           *fiber.App
	users         *memUserRepo
	courses       *memCourseRepo
	notifications *memNotificationRepo
	authService   *service.AuthService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &memUserRepo{byID: map[string]*domain.User{}}
	courses := &memCourseRepo{byID: map[string]*domain.Course{}}
	enrollments := &memEnrollmentRepo{pairs: map[string]bool{}}
	notifications := &memNotificationRepo{}

	var userRepo repository.UserRepository = users
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4,
	}, userRepo)
	courseService := service.NewCourseService(courses, enrollments,
		persistence.NewCatalogCache(nil, 0), dispatcher, logger)
	userService := service.NewUserService(userRepo)
	notificationService := service.NewNotificationService(dispatcher, notifications, userRepo,
		logger, config.NotificationConfig{})
	worker.StartNotificationWorker(notificationService)

	// CSRF is exercised by its own tests; disable it here to keep the
	// session and role assertions focused.
	guard := auth.NewCSRFGuard(config.CSRFConfig{
		Secret: "s", CookieName: "lms_csrf", HeaderName: "X-CSRF-Token", Disabled: true,
	}, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:              handlers.NewAuthHandler(authService),
		CSRF:              handlers.NewCSRFHandler(guard),
		Courses:           handlers.NewCoursesHandler(courseService),
		Notifications:     handlers.NewNotificationsHandler(notificationService),
		AdminUsers:        handlers.NewAdminUsersHandler(userService),
		SessionMiddleware: auth.NewMiddleware(authService.TokenManager(), userRepo),
		CSRFGuard:         guard,
	})

	return &testEnv{app: app, users: users, courses: courses, notifications: notifications, authService: authService}
}

func (e *testEnv) seedUser(t *testing.T, email string, role domain.Role) (*domain.User, string) {
	t.Helper()
	user, _, _, err := e.authService.Register(context.Background(), "User", email, "pass")
	require.NoError(t, err)
	user.Role = role
	token, _, err := e.authService.TokenManager().GenerateToken(user.ID)
	require.NoError(t, err)
	return user, token
}

func jsonRequest(method, path, token, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestLoginWireFormat(t *testing.T) {
	env := newEnv(t)
	env.seedUser(t, "s@example.com", domain.RoleStudent)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/auth/login", "",
		`{"email":"s@example.com","password":"pass"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "s@example.com", user["email"])
	assert.Equal(t, "student", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")
}

func TestMeRequiresBearerToken(t *testing.T) {
	env := newEnv(t)
	_, token := env.seedUser(t, "s@example.com", domain.RoleStudent)

	resp, err := env.app.Test(jsonRequest(http.MethodGet, "/auth/me", token, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/auth/me", "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, false, body["success"])
}

func TestStudentCannotCreateCourse(t *testing.T) {
	env := newEnv(t)
	_, token := env.seedUser(t, "s@example.com", domain.RoleStudent)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/courses/", token,
		`{"title":"Nope"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, env.courses.created, "resource handler must never run")

	body := decode(t, resp)
	assert.Contains(t, body["error"], "instructor")
}

func TestTamperedTokenRejectedOnProtectedRoute(t *testing.T) {
	env := newEnv(t)
	_, token := env.seedUser(t, "i@example.com", domain.RoleInstructor)

	tampered := token[:len(token)-2] + "xx"
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/courses/", tampered,
		`{"title":"Nope"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, env.courses.created)
}

func TestCourseWorkflowEndToEnd(t *testing.T) {
	env := newEnv(t)
	_, instructorToken := env.seedUser(t, "i@example.com", domain.RoleInstructor)
	_, adminToken := env.seedUser(t, "a@example.com", domain.RoleAdmin)
	_, studentToken := env.seedUser(t, "s@example.com", domain.RoleStudent)

	// Instructor submits.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/courses/", instructorToken,
		`{"title":"Go 101","description":"intro"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode(t, resp)["course"].(map[string]any)
	courseID := created["id"].(string)
	assert.Equal(t, "PENDING", created["status"])

	// Student cannot approve.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/courses/"+courseID+"/approve", studentToken, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin approves.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/courses/"+courseID+"/approve", adminToken, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Student sees it in the catalog and enrolls.
	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/courses/", studentToken, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	catalog := decode(t, resp)["courses"].([]any)
	require.Len(t, catalog, 1)

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/courses/"+courseID+"/enroll", studentToken, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// The instructor was notified about approval and enrollment.
	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/notifications/", instructorToken, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notifications := decode(t, resp)["notifications"].([]any)
	assert.Len(t, notifications, 2)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newEnv(t)
	_, instructorToken := env.seedUser(t, "i@example.com", domain.RoleInstructor)
	_, adminToken := env.seedUser(t, "a@example.com", domain.RoleAdmin)

	resp, err := env.app.Test(jsonRequest(http.MethodGet, "/admin/users", instructorToken, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/admin/users", adminToken, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminRoleChangeIsOnlyMutationPath(t *testing.T) {
	env := newEnv(t)
	student, _ := env.seedUser(t, "s@example.com", domain.RoleStudent)
	_, adminToken := env.seedUser(t, "a@example.com", domain.RoleAdmin)

	resp, err := env.app.Test(jsonRequest(http.MethodPut, "/admin/users/"+student.ID, adminToken,
		`{"role":"instructor"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated, err := env.users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleInstructor, updated.Role)
}

func TestCSRFTokenEndpointShape(t *testing.T) {
	env := newEnv(t)
	resp, err := env.app.Test(jsonRequest(http.MethodGet, "/csrf-token", "", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.NotEmpty(t, body["csrfToken"])
}
