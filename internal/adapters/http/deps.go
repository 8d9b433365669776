package http

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/cityradius/internal/core/usecases"
	"github.com/samirrijal/cityradius/internal/pkg/config"
)

// Pinger is a backing service that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Cities    *usecases.CityService
	Query     config.QueryConfig
	RateLimit int // requests per minute per IP; 0 uses the default
	NATS      *nats.Conn
	Cache     Pinger
	Clock     clockwork.Clock
}

func (d *Dependencies) clock() clockwork.Clock {
	if d.Clock == nil {
		return clockwork.NewRealClock()
	}
	return d.Clock
}

func (d *Dependencies) maxRadiusMiles() float64 {
	if d.Query.MaxRadiusMiles <= 0 {
		return 500
	}
	return d.Query.MaxRadiusMiles
}

func (d *Dependencies) defaultRadiusMiles() float64 {
	if d.Query.DefaultRadiusMiles <= 0 {
		return 25
	}
	return d.Query.DefaultRadiusMiles
}

func (d *Dependencies) defaultLimit() int {
	if d.Query.DefaultLimit <= 0 {
		return 50
	}
	return d.Query.DefaultLimit
}
