package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/harlowe-audio/studio-api/api/swagger"
	"github.com/harlowe-audio/studio-api/internal/handler"
	"github.com/harlowe-audio/studio-api/internal/middleware"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/internal/repository"
	"github.com/harlowe-audio/studio-api/internal/service"
	"github.com/harlowe-audio/studio-api/pkg/cache"
	"github.com/harlowe-audio/studio-api/pkg/config"
	"github.com/harlowe-audio/studio-api/pkg/database"
	"github.com/harlowe-audio/studio-api/pkg/logger"
	corsmiddleware "github.com/harlowe-audio/studio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/harlowe-audio/studio-api/pkg/middleware/requestid"
	"github.com/harlowe-audio/studio-api/pkg/storage"
)

// @title Harlowe Audio Studio API
// @version 1.0.0
// @description Booking scheduler and back-office API for an audiobook narration studio
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, availability cache disabled", "error", err)
		redisClient = nil
	}

	exportStore, err := storage.NewLocalStorage(cfg.Invoices.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}

	validate := validator.New()

	// Repositories.
	bookingRepo := repository.NewBookingRepository(db)
	productionRepo := repository.NewProductionRepository(db)
	blockoutRepo := repository.NewBlockoutRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	contentRepo := repository.NewContentRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduling.AvailabilityTTL, logr,
		cfg.Scheduling.AvailabilityCached && redisClient != nil)
	availabilitySvc := service.NewAvailabilityService(bookingRepo, blockoutRepo, cacheSvc, metricsSvc, logr,
		cfg.Scheduling.AvailabilityTTL)
	bookingSvc := service.NewBookingService(bookingRepo, productionRepo, availabilitySvc, userRepo, validate, logr,
		metricsSvc, cfg.Scheduling)
	blockoutSvc := service.NewBlockoutService(blockoutRepo, availabilitySvc, userRepo, validate, logr)
	leadSvc := service.NewLeadService(leadRepo, validate, logr)
	contentSvc := service.NewContentService(contentRepo, userRepo, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "studio-api",
	})
	signer := storage.NewSignedURLSigner(cfg.Invoices.SignedURLSecret, cfg.Invoices.SignedURLTTL)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, bookingRepo, userRepo, exportStore, signer, validate, logr,
		metricsSvc, service.InvoiceConfig{
			NumberPrefix: "HA",
			DefaultDueIn: 30 * 24 * time.Hour,
			APIPrefix:    cfg.APIPrefix,
			QueueWorkers: cfg.Invoices.WorkerConcurrency,
			QueueRetries: cfg.Invoices.WorkerRetries,
		})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	invoiceSvc.Start(ctx)
	defer invoiceSvc.Stop()

	// Handlers.
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	blockoutHandler := handler.NewBlockoutHandler(blockoutSvc)
	leadHandler := handler.NewLeadHandler(leadSvc)
	invoiceHandler := handler.NewInvoiceHandler(invoiceSvc)
	contentHandler := handler.NewContentHandler(contentSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	opsHandler := handler.NewOpsHandler(db, redisClient, metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", opsHandler.Health)
	r.GET("/ready", opsHandler.Ready)
	r.GET("/metrics", opsHandler.Metrics)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public surface: the booking scheduler, the contact form, and the
	// marketing pages.
	api.POST("/bookings", bookingHandler.Intake)
	api.GET("/bookings/estimate", bookingHandler.Estimate)
	api.GET("/availability", availabilityHandler.Calendar)
	api.GET("/availability/check", availabilityHandler.Check)
	api.POST("/leads", leadHandler.Capture)
	api.GET("/pages", contentHandler.ListPublished)
	api.GET("/pages/:slug", contentHandler.GetPublished)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authed := auth.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.POST("/logout", authHandler.Logout)
	authed.PUT("/password", authHandler.ChangePassword)
	authed.GET("/me", authHandler.Me)

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleAssistant))

	admin.GET("/bookings", bookingHandler.List)
	admin.GET("/bookings/:id", bookingHandler.Get)
	admin.PATCH("/bookings/:id/status", bookingHandler.Transition)
	admin.GET("/bookings/:id/production", bookingHandler.GetProduction)
	admin.PUT("/bookings/:id/production", bookingHandler.UpdateProduction)
	admin.GET("/production", bookingHandler.ListProduction)

	admin.GET("/leads", leadHandler.List)
	admin.PUT("/leads/:id", leadHandler.Update)
	admin.DELETE("/leads/:id", leadHandler.Delete)
	admin.GET("/leads/export", leadHandler.Export)

	admin.GET("/invoices", invoiceHandler.List)
	admin.GET("/invoices/:id", invoiceHandler.Get)
	admin.GET("/invoices/exports/download/:token", invoiceHandler.DownloadExport)
	admin.GET("/invoices/exports/:id", invoiceHandler.ExportStatus)

	admin.GET("/pages", contentHandler.ListAll)
	admin.GET("/pages/:slug", contentHandler.Get)
	admin.GET("/blockouts", blockoutHandler.List)

	// Mutating back-office routes stay owner-only.
	owner := admin.Group("")
	owner.Use(middleware.RequireRoles(models.RoleAdmin))
	owner.POST("/invoices", invoiceHandler.Create)
	owner.PATCH("/invoices/:id/status", invoiceHandler.UpdateStatus)
	owner.POST("/invoices/exports", invoiceHandler.EnqueueExport)
	owner.PUT("/pages/:slug", contentHandler.Save)
	owner.DELETE("/pages/:slug", contentHandler.Delete)
	owner.POST("/blockouts", blockoutHandler.Create)
	owner.PUT("/blockouts/:id", blockoutHandler.Update)
	owner.DELETE("/blockouts/:id", blockoutHandler.Delete)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
