// Package authz gates access to departures by their owning trader.
//
// Absence of a departure and ownership by a different trader are deliberately
// indistinguishable to callers: both come back as ErrNotFound so that probing
// for other parties' movement ids leaks nothing. The distinction survives
// only in the audit log.
package authz

import (
	"context"
	"errors"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/repository"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/core/logger"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the departure does not exist or does not
	// belong to the caller.
	ErrNotFound = errors.New("departure not found")

	// ErrUnavailable is returned when the store could not answer. Never
	// collapsed into ErrNotFound: callers must be able to tell "this failed"
	// from "this does not belong to you".
	ErrUnavailable = errors.New("departure store unavailable")
)

// DepartureLoader is the slice of the ledger store the gate needs.
type DepartureLoader interface {
	Get(ctx context.Context, id model.DepartureID) (*model.Departure, error)
}

// Gate authorizes access to departures.
type Gate struct {
	departures DepartureLoader
	log        *zap.Logger
	audit      *logger.LogThrottler
}

// NewGate creates an ownership gate over the given store. Mismatch audit
// logs are throttled per (claimed EORI, departure) pair: every departure a
// client probes is warned about at least once, while repeats on the same
// departure cannot flood the log.
func NewGate(departures DepartureLoader, log *zap.Logger) *Gate {
	return &Gate{
		departures: departures,
		log:        log,
		audit:      logger.NewLogThrottler(log, 0),
	}
}

// Load fetches a departure without an ownership check. Only for callers that
// are themselves pre-authorized (internal trust boundary).
func (g *Gate) Load(ctx context.Context, id model.DepartureID) (*model.Departure, error) {
	departure, err := g.departures.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDepartureNotFound) {
			return nil, ErrNotFound
		}
		g.log.Error("failed to load departure", zap.String("departureId", string(id)), zap.Error(err))
		return nil, ErrUnavailable
	}
	return departure, nil
}

// LoadForEORI fetches a departure on behalf of the given trader. The
// departure is returned only when its owner matches; a mismatch is audited
// and rejected as ErrNotFound.
func (g *Gate) LoadForEORI(ctx context.Context, id model.DepartureID, eori string) (*model.Departure, error) {
	departure, err := g.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if departure.EORINumber != eori {
		g.audit.Warn(eori+":"+string(id), "departure access denied: EORI mismatch",
			zap.String("departureId", string(id)),
			zap.String("claimedEori", eori),
		)
		return nil, ErrNotFound
	}

	return departure, nil
}
