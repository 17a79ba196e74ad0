package mongo

import (
	"context"

	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// moduleOptions holds internal configuration for the mongo module.
type moduleOptions struct {
	config *Config
}

// Option is a functional option for configuring the mongo module.
type Option func(*moduleOptions)

// WithConfig provides a static Config instead of loading it from viper.
// Useful for tests.
func WithConfig(cfg Config) Option {
	return func(opts *moduleOptions) {
		cfg.applyDefaults()
		opts.config = &cfg
	}
}

// NewMongoModule provides a connected Mongo instance tied to the fx lifecycle.
func NewMongoModule(opts ...Option) fx.Option {
	cfg := &moduleOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	providers := []any{provideMongo}
	if cfg.config != nil {
		providers = append(providers, func() Config { return *cfg.config })
	} else {
		providers = append(providers, newConfig)
	}

	return fx.Module("mongo", fx.Provide(providers...))
}

func provideMongo(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.ComponentManager) (Mongo, error) {
	if err := validateConfig(conf); err != nil {
		return nil, err
	}

	m, err := newMongo(log, conf)
	if err != nil {
		return nil, err
	}

	markReady := readiness.AddComponent("mongo")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := m.connect(ctx); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return m.disconnect(ctx)
		},
	})

	return m, nil
}
