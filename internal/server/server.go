package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/silomba/backend/internal/config"
	"github.com/silomba/backend/internal/handlers"
	"github.com/silomba/backend/internal/middleware"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/internal/services"
	"github.com/silomba/backend/internal/storage"
	"github.com/silomba/backend/pkg/logger"
	"gorm.io/gorm"
)

const multipartOverhead = 1 << 20

// Server owns the HTTP app and the background workers its handlers feed.
type Server struct {
	App *fiber.App

	cfg     *config.Config
	cleanup *services.CleanupService
	audit   *services.AuditService
}

func New(cfg *config.Config, db *gorm.DB, posters storage.PosterStore) *Server {
	cleanup := services.NewCleanupService(posters, cfg.Storage.CleanupQueueSize)
	audit := services.NewAuditService(db, 0)

	authService := services.NewAuthService(db, cfg.Auth)
	categoryService := services.NewCategoryService(db, cleanup)
	competitionService := services.NewCompetitionService(db, cleanup)
	userService := services.NewUserService(db)

	authHandler := handlers.NewAuthHandler(authService, audit, cfg.Auth.CookieSecure)
	categoriesHandler := handlers.NewCategoriesHandler(categoryService, audit)
	competitionsHandler := handlers.NewCompetitionsHandler(competitionService, posters, audit, cfg.Storage.PosterMaxBytes)
	usersHandler := handlers.NewUsersHandler(userService, audit)
	postersHandler := handlers.NewPostersHandler(posters)
	auditHandler := handlers.NewAuditHandler(audit)
	healthHandler := handlers.NewHealthHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	moderatorOnly := middleware.RequireRoles(models.Moderators...)
	superAdminOnly := middleware.RequireRoles(models.UserRoleSuperAdmin)
	authRateLimit := middleware.RateLimit(cfg.Auth.RateLimitPerMinute)

	app := fiber.New(fiber.Config{
		AppName:      "silomba",
		Immutable:    true,
		BodyLimit:    int(cfg.Storage.PosterMaxBytes) + multipartOverhead,
		ErrorHandler: middleware.ErrorHandler,
	})
	app.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Metrics())
	app.Use(middleware.SecurityLogger())
	app.Use(middleware.ErrorBoundary())
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	app.Get("/health", healthHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/uploads/:name", postersHandler.Serve)

	api := app.Group("/api/v1")
	api.Get("/", handlers.Banner)
	api.Get("/version", handlers.GetVersion)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authRateLimit, authHandler.Register)
	authRoutes.Post("/login", authRateLimit, authHandler.Login)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	categoryRoutes := api.Group("/categories", authMiddleware.RequireAuth)
	categoryRoutes.Get("/", categoriesHandler.List)
	categoryRoutes.Post("/", moderatorOnly, categoriesHandler.Create)
	categoryRoutes.Put("/:id", moderatorOnly, categoriesHandler.Update)
	categoryRoutes.Delete("/:id", moderatorOnly, categoriesHandler.Delete)

	competitionRoutes := api.Group("/competitions", authMiddleware.RequireAuth)
	competitionRoutes.Get("/", competitionsHandler.ListActive)
	competitionRoutes.Get("/archived", competitionsHandler.ListArchived)
	competitionRoutes.Get("/admin/pending", moderatorOnly, competitionsHandler.ListPending)
	competitionRoutes.Get("/:id", competitionsHandler.Get)
	competitionRoutes.Post("/", competitionsHandler.Create)
	competitionRoutes.Put("/:id/status", moderatorOnly, competitionsHandler.UpdateStatus)
	competitionRoutes.Put("/:id", moderatorOnly, competitionsHandler.Update)
	competitionRoutes.Delete("/:id", moderatorOnly, competitionsHandler.Delete)
	competitionRoutes.Post("/:id/archive", moderatorOnly, competitionsHandler.Archive)

	userRoutes := api.Group("/users", authMiddleware.RequireAuth, superAdminOnly)
	userRoutes.Get("/", usersHandler.List)
	userRoutes.Put("/:id/role", usersHandler.UpdateRole)

	auditRoutes := api.Group("/audit-logs", authMiddleware.RequireAuth, superAdminOnly)
	auditRoutes.Get("/export", auditHandler.Export)

	return &Server{App: app, cfg: cfg, cleanup: cleanup, audit: audit}
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf(":%s", s.cfg.Server.Port)
	logger.Info("server_starting", map[string]interface{}{
		"port":           s.cfg.Server.Port,
		"address":        addr,
		"storage_driver": s.cfg.Storage.Driver,
		"db_driver":      s.cfg.DB.Driver,
	})
	return s.App.Listen(addr)
}

// Shutdown stops accepting requests, then drains the cleanup and audit queues.
func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.App.ShutdownWithTimeout(timeout)
	s.cleanup.Close()
	s.audit.Close()
	return err
}
