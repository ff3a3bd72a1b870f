package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domain
	"github.com/uniedit/invite-server/internal/domain/invitation"

	// Inbound adapters
	ginadapter "github.com/uniedit/invite-server/internal/adapter/inbound/gin"

	// Ports
	"github.com/uniedit/invite-server/internal/port/inbound"
	"github.com/uniedit/invite-server/internal/port/outbound"

	// Outbound adapters
	cacheadapter "github.com/uniedit/invite-server/internal/adapter/outbound/cache"
	"github.com/uniedit/invite-server/internal/adapter/outbound/postgres"
	redisadapter "github.com/uniedit/invite-server/internal/adapter/outbound/redis"
	"github.com/uniedit/invite-server/internal/adapter/outbound/smtp"
	"github.com/uniedit/invite-server/internal/adapter/outbound/token"

	// Infrastructure
	"github.com/uniedit/invite-server/internal/infra/notify"
	"github.com/uniedit/invite-server/internal/shared/cache"
	"github.com/uniedit/invite-server/internal/shared/config"
	"github.com/uniedit/invite-server/internal/shared/database"
	"github.com/uniedit/invite-server/internal/shared/logger"
	"github.com/uniedit/invite-server/internal/shared/metrics"
	"github.com/uniedit/invite-server/internal/shared/middleware"
)

const connectTimeout = 10 * time.Second

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideRateLimiter,
	wire.Bind(new(outbound.InvitationMetricsPort), new(*metrics.Metrics)),
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return log, func() { _ = log.Sync() }, nil
}

// ProvideMetrics creates the metrics registry.
func ProvideMetrics() *metrics.Metrics {
	return metrics.New("invite")
}

// ProvideDatabase opens the database and applies migrations when enabled.
func ProvideDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = database.Close(db)
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info("database schema migrated")
	}

	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

// ProvideRedisClient creates a Redis client. Redis is optional; nil is returned when it is
// not configured or unreachable.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, func()) {
	if !cfg.Redis.Enabled() {
		return nil, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := cache.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn("Redis connection failed, continuing without it", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// ProvideRateLimiter creates a rate limiter. It is nil without Redis.
func ProvideRateLimiter(client goredis.UniversalClient) outbound.RateLimiterPort {
	if client == nil {
		return nil
	}
	return redisadapter.NewRateLimiter(client)
}

// ===== Outbound Adapter Providers =====

// OutboundSet provides outbound adapters.
var OutboundSet = wire.NewSet(
	postgres.NewInvitationAdapter,
	postgres.NewMembershipAdapter,
	postgres.NewUserDirectoryAdapter,
	postgres.NewTransactionAdapter,
	ProvideTargetDatabase,
	ProvideTokenValidator,
	ProvideNotifier,
	ProvideNotificationQueue,
)

// ProvideTargetDatabase wraps the target lookups in a short lived cache.
func ProvideTargetDatabase(db *gorm.DB, cfg *config.Config, m *metrics.Metrics) outbound.TargetDatabasePort {
	return cacheadapter.NewTargetCacheAdapter(postgres.NewTargetAdapter(db), cfg.Invitation.TargetCacheTTL, m)
}

// ProvideTokenValidator creates the access token validator.
func ProvideTokenValidator(cfg *config.Config) outbound.TokenValidatorPort {
	return token.NewValidator(&token.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
	})
}

// ProvideNotifier creates the SMTP notifier, or a logging notifier when no host is set.
func ProvideNotifier(cfg *config.Config, log *zap.Logger) outbound.InvitationNotifierPort {
	if cfg.SMTP.Host == "" {
		log.Warn("SMTP host not configured, invitation emails will only be logged")
		return smtp.NewLogNotifier(log)
	}
	return smtp.NewNotifier(&smtp.Config{
		Host:             cfg.SMTP.Host,
		Port:             cfg.SMTP.Port,
		User:             cfg.SMTP.User,
		Password:         cfg.SMTP.Password,
		FromAddress:      cfg.SMTP.FromAddress,
		FromName:         cfg.SMTP.FromName,
		FailureThreshold: cfg.SMTP.FailureThreshold,
		OpenTimeout:      cfg.SMTP.OpenTimeout,
	}, log)
}

// ProvideNotificationQueue creates the notification queue. Redis is preferred so that
// scheduling survives restarts and is shared between instances.
func ProvideNotificationQueue(cfg *config.Config, client goredis.UniversalClient) outbound.NotificationQueuePort {
	if cfg.Notification.Mode != config.NotificationModeQueued {
		return nil
	}
	if client != nil {
		return redisadapter.NewNotificationQueue(client, &redisadapter.QueueConfig{
			MarkerTTL: cfg.Notification.MarkerTTL,
			LeaseTTL:  cfg.Notification.LeaseTTL,
		})
	}
	return notify.NewMemoryQueue(cfg.Notification.QueueCapacity, cfg.Notification.MarkerTTL)
}

// ===== Domain Providers =====

// DomainSet provides the invitation domain and its notification plumbing.
var DomainSet = wire.NewSet(
	ProvideNotificationWorker,
	ProvideDispatcher,
	ProvideInvitationDomain,
)

// ProvideNotificationWorker creates the background sender. It is nil in sync mode.
func ProvideNotificationWorker(
	cfg *config.Config,
	queue outbound.NotificationQueuePort,
	notifier outbound.InvitationNotifierPort,
	m outbound.InvitationMetricsPort,
	log *zap.Logger,
) *notify.Worker {
	if queue == nil {
		return nil
	}
	return notify.NewWorker(queue, notifier, m, log, &notify.WorkerConfig{
		MaxConcurrent: cfg.Notification.Workers,
		PollTimeout:   cfg.Notification.PollTimeout,
		MaxAttempts:   cfg.Notification.MaxAttempts,
		RetryDelay:    cfg.Notification.RetryDelay,
		SendTimeout:   notify.DefaultWorkerConfig().SendTimeout,
	})
}

// ProvideDispatcher selects synchronous or queued notification delivery.
func ProvideDispatcher(
	queue outbound.NotificationQueuePort,
	notifier outbound.InvitationNotifierPort,
	m outbound.InvitationMetricsPort,
	log *zap.Logger,
) outbound.NotificationDispatcherPort {
	if queue != nil {
		return notify.NewQueuedDispatcher(queue, m, log)
	}
	return notify.NewSyncDispatcher(notifier, m, log)
}

// ProvideInvitationDomain creates the invitation domain.
func ProvideInvitationDomain(
	invitationDB outbound.InvitationDatabasePort,
	memberDB outbound.MembershipDatabasePort,
	targetDB outbound.TargetDatabasePort,
	users outbound.UserDirectoryPort,
	txPort outbound.TransactionPort,
	dispatcher outbound.NotificationDispatcherPort,
	m outbound.InvitationMetricsPort,
	cfg *config.Config,
	log *zap.Logger,
) inbound.InvitationDomain {
	domainCfg := invitation.DefaultConfig()
	domainCfg.BaseURL = cfg.Invitation.BaseURL

	return invitation.NewDomain(invitationDB, memberDB, targetDB, users, txPort, dispatcher, m, domainCfg, log)
}

// ===== Inbound Adapter Providers =====

// HandlerSet provides HTTP handlers.
var HandlerSet = wire.NewSet(
	ProvideInvitationHandler,
)

// ProvideInvitationHandler creates the invitation handler with a per-user creation limit.
func ProvideInvitationHandler(
	domain inbound.InvitationDomain,
	limiter outbound.RateLimiterPort,
	cfg *config.Config,
) inbound.InvitationHttpPort {
	return ginadapter.NewInvitationHandler(domain,
		middleware.RateLimitByUser(limiter, "invitation_create", cfg.Invitation.CreateLimit, cfg.Invitation.CreateWindow),
	)
}

// AppSet is the complete provider set.
var AppSet = wire.NewSet(
	InfraSet,
	OutboundSet,
	DomainSet,
	HandlerSet,
)
