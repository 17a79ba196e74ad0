package service

import "go.uber.org/fx"

// NewDepartureServiceModule provides the departure orchestration service.
func NewDepartureServiceModule() fx.Option {
	return fx.Module("departure-service",
		fx.Provide(NewDepartureService),
	)
}
