//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/uniedit/invite-server/internal/infra/notify"
	"github.com/uniedit/invite-server/internal/port/inbound"
	"github.com/uniedit/invite-server/internal/port/outbound"
	"github.com/uniedit/invite-server/internal/shared/config"
	"github.com/uniedit/invite-server/internal/shared/metrics"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	DB          *gorm.DB
	Redis       goredis.UniversalClient
	RateLimiter outbound.RateLimiterPort

	TokenValidator outbound.TokenValidatorPort
	Worker         *notify.Worker

	// Domains
	InvitationDomain inbound.InvitationDomain

	// HTTP Handlers
	InvitationHandler inbound.InvitationHttpPort
}

// InitializeDependencies creates all dependencies using Wire.
func InitializeDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	wire.Build(
		AppSet,
		wire.Struct(new(Dependencies), "*"),
	)
	return nil, nil, nil
}
