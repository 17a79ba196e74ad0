package authz

import (
	"go.uber.org/fx"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/repository"
)

// NewGateModule provides the ownership gate over the departures store.
func NewGateModule() fx.Option {
	return fx.Module("authz",
		fx.Provide(fx.Private, func(departures repository.Departures) DepartureLoader { return departures }),
		fx.Provide(NewGate),
	)
}
