package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"leadsync/internal/access"
	"leadsync/internal/caching"
	"leadsync/internal/config"
	_ "leadsync/internal/docs"
	"leadsync/internal/handlers"
	"leadsync/internal/jobs"
	"leadsync/internal/jobs/background"
	"leadsync/internal/logging"
	"leadsync/internal/middleware"
	"leadsync/internal/pixel"
	"leadsync/internal/repositories"
	"leadsync/internal/services"
	"leadsync/pkg/database"
)

const version = "1.0.0"

// @title LeadSync Dashboard API
// @version 1.0
// @description Session, leads and pixel API for the LeadSync dashboard.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := os.Getenv("LEADSYNC_CONFIG")
	if configPath == "" {
		configPath = "config/leadsync.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs the session mirror, token revocation, metrics and pixel limits
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	required := map[string]handlers.Pinger{"redis": cacheSvc}
	optional := map[string]handlers.Pinger{}

	// Audit trail is optional; without a database the history route is disabled
	var (
		pool  *pgxpool.Pool
		audit repositories.LeadAuditRepository
	)
	if cfg.Database.URL != "" {
		pool, err = database.NewPool(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		audit = repositories.NewLeadAuditRepo(pool)
		required["postgres"] = pool
	} else {
		logger.Warn("DATABASE_URL not set, lead history disabled")
	}

	// Exports go to MinIO when it is reachable
	var exports services.ExportService
	minioSvc, err := services.NewMinioService(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL, logger)
	if err != nil {
		logger.Warn("MinIO unavailable, lead export disabled", zap.Error(err))
	} else {
		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := minioSvc.EnsureBucketExists(bucketCtx, cfg.Storage.Bucket); err != nil {
			logger.Warn("Failed to ensure export bucket", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		cancel()
		exports = services.NewExportService(minioSvc, cfg.Storage.Bucket, cfg.ExportURLTTL(), logger)
		optional["minio"] = minioSvc
	}

	tokenSvc, err := services.NewTokenService(cacheSvc, cfg.Auth.JWTSecret, cfg.TokenTTL(), cfg.Auth.JWKSURL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize token service", zap.Error(err))
	}
	defer tokenSvc.Close()

	// Services
	notifier := services.NewNotificationService(logger)
	backends := services.NewBackendFactory(cfg.Backend.BaseURL, cfg.BackendTimeout(), logger)
	sessionSvc := services.NewSessionService(backends, cacheSvc, notifier, audit, cfg.SessionTTL(), logger)
	metricsSvc := services.NewMetricsService(cacheSvc, cfg.PollInterval(), logger)
	tracker := pixel.NewTracker(cfg.Pixel.Endpoint, cfg.BackendTimeout(), cfg.Pixel.RelayPerSecond, logger)
	pixelSvc := services.NewPixelService(cfg.Pixel.Endpoint, tracker, cacheSvc, cfg.Pixel.RateLimit, cfg.PixelWindow(), notifier, logger)
	adminSvc := services.NewAdminService(notifier, logger)
	billingSvc := services.NewBillingService()

	// Background jobs
	poller := jobs.NewDashboardPoller(sessionSvc, metricsSvc, cfg.Jobs.PollConcurrency, cfg.PollInterval(), logger)
	var pruner background.Pruner
	if exports != nil {
		pruner = exports
	}
	scheduler, err := background.NewJobScheduler(poller, sessionSvc, pruner, background.Config{
		PollInterval: cfg.PollInterval(),
		SessionIdle:  cfg.SessionIdle(),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create job scheduler", zap.Error(err))
	}

	// Handlers
	sessionMiddleware := middleware.NewSessionMiddleware(tokenSvc, sessionSvc, cfg.Auth.CookieName, logger)
	gate := middleware.Gate(access.DefaultRules)
	versionMiddleware := middleware.NewVersionMiddleware()
	if sunset, ok := cfg.APISunset(); ok {
		versionMiddleware.Deprecate(versionMiddleware.GetCurrentVersion(), cfg.Server.APISunsetMessage, sunset)
		logger.Warn("API version deprecated", zap.String("version", versionMiddleware.GetCurrentVersion()), zap.Time("sunset", sunset))
	}

	healthHandlers := handlers.NewHealthHandlers(version, versionMiddleware.Current(), required, optional)
	authHandlers := handlers.NewAuthHandlers(sessionSvc, tokenSvc, cfg.Auth.CookieName, cfg.Server.SecureCookies, logger)
	leadHandlers := handlers.NewLeadHandlers(exports, audit, logger)
	dashboardHandlers := handlers.NewDashboardHandlers(metricsSvc, notifier, logger)
	pixelHandlers := handlers.NewPixelHandlers(pixelSvc, logger)
	billingHandlers := handlers.NewBillingHandlers(billingSvc)
	adminHandlers := handlers.NewAdminHandlers(adminSvc, logger)
	jobHandlers := handlers.NewJobHandlers(scheduler)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/pixel.js", pixelHandlers.Script)

	// API routes
	v1 := versionMiddleware.VersionRoute(e, "v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandlers.Login)
	auth.POST("/register", authHandlers.Register)
	v1.GET("/navigate", authHandlers.Navigate)
	v1.POST("/pixel/events", pixelHandlers.Events)
	v1.GET("/billing/plans", billingHandlers.ListPlans)
	v1.GET("/billing/plans/:id", billingHandlers.GetPlan)

	// Session routes (signed in, any account state)
	protected := v1.Group("")
	protected.Use(sessionMiddleware.RequireSession())
	protected.GET("/me", authHandlers.Me)
	protected.POST("/auth/logout", authHandlers.Logout)
	protected.GET("/notifications", dashboardHandlers.Notifications)

	// Gated routes (role and subscription checked per section)
	gated := v1.Group("")
	gated.Use(sessionMiddleware.RequireSession(), gate)

	gated.GET("/leads", leadHandlers.ListLeads)
	gated.GET("/leads/stats", leadHandlers.LeadStats)
	gated.POST("/leads/refresh", leadHandlers.RefreshLeads)
	gated.POST("/leads/export", leadHandlers.ExportLeads)
	gated.PUT("/leads/:id/status", leadHandlers.UpdateLeadStatus)
	gated.GET("/leads/:id/history", leadHandlers.LeadHistory)

	gated.GET("/dashboard/metrics", dashboardHandlers.Metrics)

	gated.GET("/pixel/snippet", pixelHandlers.InstallCode)
	gated.POST("/pixel/verify", pixelHandlers.Verify)

	gated.GET("/admin/customers", adminHandlers.ListCustomers)
	gated.POST("/admin/users/:id/grant", adminHandlers.GrantAccess)
	gated.POST("/admin/users/:id/revoke", adminHandlers.RevokeAccess)
	gated.GET("/admin/jobs", jobHandlers.ListJobs)
	gated.POST("/admin/jobs/:name/run", jobHandlers.RunJob)

	scheduler.Start()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("LeadSync server starting", zap.String("version", version), zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := scheduler.Stop(); err != nil {
		logger.Error("Job scheduler shutdown failed", zap.Error(err))
	}
}
