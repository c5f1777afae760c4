package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/allforone/afo-portal/internal/backend"
	"github.com/allforone/afo-portal/internal/config"
	"github.com/allforone/afo-portal/internal/database"
	"github.com/allforone/afo-portal/internal/handlers"
	"github.com/allforone/afo-portal/internal/jobs"
	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/repository"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/allforone/afo-portal/internal/storage"
	"github.com/allforone/afo-portal/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the session/archive database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "path", cfg.StoragePath)

	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	api := backend.NewClient(cfg.APIURL, nil)
	logger.Info("Backend configured", "url", api.BaseURL())

	svcs := services.NewServices(api, repos, worker, store, cfg)

	scheduleJobs(worker, svcs)

	h := handlers.NewHandlers(svcs, worker, cfg)

	router := setupRouter(h, svcs, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, svcs *services.Services, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)

		// Public account routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/password/forgot", h.Auth.ForgotPassword)
			auth.POST("/password/reset", h.Auth.ResetPassword)
		}

		// Signed-in routes
		protected := v1.Group("")
		protected.Use(middleware.Session(svcs.Auth))
		{
			protected.GET("/auth/me", h.Auth.Me)
			protected.PUT("/profile", h.Auth.UpdateProfile)
			protected.PUT("/profile/password", h.Auth.ChangePassword)
			protected.GET("/dashboard", h.Dashboard.Show)

			// Own dues; the handler restricts plain members to their own ID
			protected.GET("/cotisations/me", h.Cotisation.Mine)
			protected.GET("/cotisations/members/:id", h.Cotisation.ByMember)

			// Finance + Admin routes (read-only dues and reports)
			finance := protected.Group("")
			finance.Use(middleware.RequireRole(models.RoleFinance))
			{
				finance.GET("/cotisations", h.Cotisation.Index)

				reports := finance.Group("/reports")
				{
					reports.GET("/monthly/:mois", h.Report.Monthly)
					reports.GET("/global", h.Report.Global)
					reports.GET("/export", h.Report.Export)
					reports.GET("/archive", h.Report.Archives)
					reports.GET("/archive/:id", h.Report.ArchiveDownload)
				}
			}

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/members", h.Member.Index)
				admin.POST("/members", h.Member.Create)
				admin.PUT("/members/:id/status", h.Member.ChangeStatus)
				admin.DELETE("/members/:id", h.Member.Delete)

				admin.GET("/adhesions", h.Adhesion.Index)
				admin.POST("/adhesions/:id/approve", h.Adhesion.Approve)
				admin.POST("/adhesions/:id/reject", h.Adhesion.Reject)

				admin.PUT("/cotisations/:id/pay", h.Cotisation.MarkPaid)
				admin.GET("/generation/candidates", h.Cotisation.Candidates)
				admin.POST("/generation", h.Cotisation.Generate)

				admin.GET("/logs", h.Audit.Index)
				admin.GET("/logs/stats", h.Audit.Stats)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Purge expired sessions every hour
	worker.ScheduleEveryImmediate("purge-sessions", time.Hour, func(ctx context.Context) error {
		_, err := svcs.Auth.PurgeExpired(ctx)
		return err
	})

	logger.Info("Scheduled recurring jobs")
}
