package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/uniedit/invite-server/internal/shared/config"
	"github.com/uniedit/invite-server/internal/shared/middleware"
	"github.com/uniedit/invite-server/internal/shared/tracing"
)

// App represents the application.
type App struct {
	config *config.Config
	deps   *Dependencies
	router *gin.Engine
	logger *zap.Logger

	cleanup       func()
	shutdownTrace func(context.Context) error
}

// New creates a new application instance and starts its background workers.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	shutdownTrace, err := tracing.Setup(ctx, &cfg.Tracing)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	app := &App{
		config:        cfg,
		deps:          deps,
		logger:        deps.Logger,
		cleanup:       cleanup,
		shutdownTrace: shutdownTrace,
	}
	app.router = setupRouter(cfg, deps)

	if deps.Worker != nil {
		if err := deps.Worker.Start(ctx); err != nil {
			app.Stop(ctx)
			return nil, fmt.Errorf("start notification worker: %w", err)
		}
	}

	app.logger.Info("application initialized",
		zap.String("notification_mode", cfg.Notification.Mode),
		zap.Bool("redis", deps.Redis != nil))

	return app, nil
}

// setupRouter creates and configures the Gin router.
func setupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Swagger documentation endpoint
	if cfg.Server.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.RequireAuth(deps.TokenValidator))
	deps.InvitationHandler.RegisterRoutes(api)

	return r
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Stop stops background workers and releases resources.
func (a *App) Stop(ctx context.Context) {
	if a.deps.Worker != nil {
		a.deps.Worker.Stop()
	}

	if a.shutdownTrace != nil {
		if err := a.shutdownTrace(ctx); err != nil {
			a.logger.Warn("shutdown tracing", zap.Error(err))
		}
	}

	a.logger.Info("application stopped")

	if a.cleanup != nil {
		a.cleanup()
	}
}
