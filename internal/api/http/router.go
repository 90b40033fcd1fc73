package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jeswin28/lms-backend/internal/api/http/handlers"
	"github.com/jeswin28/lms-backend/internal/auth"
	"github.com/jeswin28/lms-backend/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	CSRF          *handlers.CSRFHandler
	Courses       *handlers.CoursesHandler
	Notifications *handlers.NotificationsHandler
	AdminUsers    *handlers.AdminUsersHandler

	SessionMiddleware *auth.Middleware
	CSRFGuard         *auth.CSRFGuard
}

// RegisterRoutes wires HTTP routes. The CSRF guard runs before the session
// middleware so forgery checks never depend on authentication state.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.CSRFGuard.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/csrf-token", cfg.CSRF.Token)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.SessionMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/password/change", cfg.SessionMiddleware.Handle, cfg.Auth.ChangePassword)

	courses := app.Group("/courses", cfg.SessionMiddleware.Handle)
	courses.Get("/", cfg.Courses.List)
	courses.Post("/", auth.RequireRole(domain.RoleInstructor), cfg.Courses.Create)
	courses.Post("/:id/approve", auth.RequireRole(domain.RoleAdmin), cfg.Courses.Moderate)
	courses.Post("/:id/enroll", auth.RequireRole(domain.RoleStudent), cfg.Courses.Enroll)

	notifications := app.Group("/notifications", cfg.SessionMiddleware.Handle)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	admin := app.Group("/admin", cfg.SessionMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.AdminUsers.List)
	admin.Put("/users/:id", cfg.AdminUsers.Update)
}
