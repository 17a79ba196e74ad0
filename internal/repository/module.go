package repository

import (
	"context"

	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/mongo"
	"go.uber.org/fx"
)

// NewDeparturesModule provides the departures ledger store and creates its
// indexes on startup.
func NewDeparturesModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newConfig,
			New,
		),
		fx.Invoke(func(lc fx.Lifecycle, m mongo.Mongo, cfg Config) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return EnsureIndexes(ctx, m, cfg)
				},
			})
		}),
	)
}
