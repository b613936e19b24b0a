package main

import (
	"context"
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

	_ "github.com/MatiasH11/vibe-calendar-sub004/api/swagger"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/handler"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/middleware"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/models"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/repository"
	"github.com/MatiasH11/vibe-calendar-sub004/internal/service"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/cache"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/config"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/database"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/logger"
	corsmiddleware "github.com/MatiasH11/vibe-calendar-sub004/pkg/middleware/cors"
	reqidmiddleware "github.com/MatiasH11/vibe-calendar-sub004/pkg/middleware/requestid"
	"github.com/MatiasH11/vibe-calendar-sub004/pkg/storage"
)

// @title Vibe Calendar API
// @version 1.0.0
// @description Multi-tenant employee shift scheduling backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	exportRepo := repository.NewExportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	authSvc := service.NewAuthService(userRepo, companyRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "vibe-calendar",
	})
	roleSvc := service.NewRoleService(roleRepo, validate, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, roleRepo, validate, logr)
	metricsSvc := service.NewMetricsService()
	shiftSvc := service.NewShiftService(shiftRepo, employeeRepo, companyRepo, cacheRepo, validate, logr, metricsSvc, service.ShiftConfig{
		MaxBulkShifts:  cfg.Scheduling.MaxBulkShifts,
		MaxSuggestions: cfg.Scheduling.MaxSuggestions,
		CacheEnabled:   cfg.Scheduling.CacheEnabled && redisClient != nil,
		CacheTTL:       cfg.Scheduling.CacheTTL,
	})

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(exportRepo, shiftSvc, store, signer, validate, logr, metricsSvc, service.ExportConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
		})
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	roleHandler := handler.NewRoleHandler(roleSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	shiftHandler := handler.NewShiftHandler(shiftSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	manage := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)

	roles := protected.Group("/roles")
	{
		roles.GET("", roleHandler.List)
		roles.GET("/:id", roleHandler.Get)
		roles.POST("", manage, roleHandler.Create)
		roles.PUT("/:id", manage, roleHandler.Update)
		roles.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), roleHandler.Delete)
	}

	employees := protected.Group("/employees")
	{
		employees.GET("", employeeHandler.List)
		employees.GET("/:id", employeeHandler.Get)
		employees.GET("/:id/shifts", shiftHandler.EmployeeShifts)
		employees.POST("", manage, employeeHandler.Create)
		employees.PUT("/:id", manage, employeeHandler.Update)
		employees.DELETE("/:id", manage, employeeHandler.Deactivate)
	}

	shifts := protected.Group("/shifts")
	{
		shifts.GET("", shiftHandler.List)
		shifts.GET("/week", shiftHandler.Week)
		shifts.POST("/validate-conflicts", shiftHandler.ValidateConflicts)
		shifts.POST("/bulk/preview", manage, shiftHandler.BulkPreview)
		shifts.POST("/bulk", manage, shiftHandler.BulkCommit)
		shifts.GET("/:id", shiftHandler.Get)
		shifts.POST("", manage, shiftHandler.Create)
		shifts.PUT("/:id", manage, shiftHandler.Update)
		shifts.PATCH("/:id/status", manage, shiftHandler.UpdateStatus)
		shifts.DELETE("/:id", manage, shiftHandler.Delete)
	}

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		exports := protected.Group("/exports")
		{
			exports.POST("", manage, exportHandler.Create)
			exports.GET("", exportHandler.List)
			exports.GET("/:id", exportHandler.Get)
		}
		// Download links are pre-signed; no JWT required.
		api.GET("/exports/download", exportHandler.Download)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if exportSvc != nil {
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
