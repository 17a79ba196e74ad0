// Package app assembles the departures service from its fx modules.
package app

import (
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/api"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/authz"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/repository"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/service"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/submission"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/core"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/http/middleware"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/http/server"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/mongo"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/observability"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/security/enrolment"
	"go.uber.org/fx"
)

// Middleware priorities. Recovery runs outermost; enrolment runs last so
// rejected requests are already logged and rate limited.
const (
	priorityRecovery  = 0
	priorityLogger    = 10
	priorityProblem   = 20
	priorityRateLimit = 30
	priorityEnrolment = 40
)

// Modules is the full wiring of the departures service.
func Modules() fx.Option {
	return fx.Options(
		core.NewCoreModule(),
		observability.NewTracingModule(),
		mongo.NewMongoModule(),

		repository.NewDeparturesModule(),
		submission.NewSubmissionModule(),
		authz.NewGateModule(),
		service.NewDepartureServiceModule(),

		middleware.NewGinModule(),
		middleware.RecoveryModule(priorityRecovery),
		middleware.LoggerModule(priorityLogger),
		middleware.ProblemModule(priorityProblem),
		middleware.RateLimitModule(priorityRateLimit),
		enrolment.Module(priorityEnrolment),

		api.NewAPIModule(),
		server.NewHTTPServerModule(),
	)
}

// New builds the fx application.
func New() *fx.App {
	return fx.New(Modules())
}
