package bootstrap

import (
	"context"

	"github.com/propshare/exchange/internal/app/engine"
	"github.com/propshare/exchange/pkg/config"
	"github.com/propshare/exchange/pkg/httplib/healthcheck"
	"github.com/propshare/exchange/pkg/logger"
)

// Bootstrap wires repositories, use cases and the engine together.
type Bootstrap struct {
	Repository Repository
	Usecase    Usecase
	Engine     *engine.Engine
	Health     *healthcheck.HealthCheck
	Logger     logger.Interface
	Config     *config.Config
}

// BootstrapConfig is the input for Init.
type BootstrapConfig struct {
	Config *config.Config
	Logger logger.Interface
}

// Init initializes the bootstrap. Storage backends are chosen from the
// configuration: the order and fill repositories can run on PostgreSQL
// or in memory, the market data snapshot cache can run on Redis or in
// memory.
func (b *Bootstrap) Init(ctx context.Context, cfg BootstrapConfig) (*Bootstrap, error) {
	b.Config = cfg.Config
	b.Logger = cfg.Logger
	b.Health = healthcheck.New()

	if err := b.registerRepository(ctx); err != nil {
		return nil, err
	}
	b.registerUsecase()
	b.registerEngine()

	return b, nil
}
