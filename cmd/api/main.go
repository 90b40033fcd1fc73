package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/jeswin28/lms-backend/internal/api/http"
	"github.com/jeswin28/lms-backend/internal/api/http/handlers"
	"github.com/jeswin28/lms-backend/internal/auth"
	"github.com/jeswin28/lms-backend/internal/config"
	"github.com/jeswin28/lms-backend/internal/events"
	"github.com/jeswin28/lms-backend/internal/observability"
	"github.com/jeswin28/lms-backend/internal/persistence"
	"github.com/jeswin28/lms-backend/internal/repository"
	"github.com/jeswin28/lms-backend/internal/service"
	"github.com/jeswin28/lms-backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	catalogCache := persistence.NewCatalogCache(redis, 5*time.Minute)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, catalogCache, dispatcher, logger)
	userService := service.NewUserService(userRepo)
	notificationService := service.NewNotificationService(dispatcher, notificationRepo, userRepo, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	sessionMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)
	csrfGuard := auth.NewCSRFGuard(cfg.CSRF, logger)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:              handlers.NewAuthHandler(authService),
		CSRF:              handlers.NewCSRFHandler(csrfGuard),
		Courses:           handlers.NewCoursesHandler(courseService),
		Notifications:     handlers.NewNotificationsHandler(notificationService),
		AdminUsers:        handlers.NewAdminUsersHandler(userService),
		SessionMiddleware: sessionMiddleware,
		CSRFGuard:         csrfGuard,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
