// Command querylog tails nearby-city query events from JetStream, logs each
// one and periodically logs a summary.
package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/cityradius/internal/adapters/nats"
	"github.com/samirrijal/cityradius/internal/core/domain"
	"github.com/samirrijal/cityradius/internal/pkg/config"
	"github.com/samirrijal/cityradius/internal/pkg/logging"
)

const (
	durableName     = "querylog"
	summaryInterval = time.Minute
)

func main() {
	cfg, err := config.Load("cityradius-querylog")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	var sum summary
	err = sub.SubscribeNearbyQueries(ctx, durableName, func(ctx context.Context, q *domain.NearbyQuery) error {
		sum.record(q)
		slog.InfoContext(ctx, "nearby query",
			"origin", q.Origin.Name,
			"lat", q.Origin.Lat,
			"lon", q.Origin.Lon,
			"radius_miles", q.RadiusMiles,
			"results", q.Results,
			"executed_at", q.ExecutedAt,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	slog.Info("querylog started", "durable", durableName, "subject", natsadapter.SubjectNearby)

	ticker := time.NewTicker(summaryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s := sum.reset()
			if s.Queries > 0 {
				slog.Info("query summary", "queries", s.Queries, "empty", s.Empty,
					"mean_results", s.MeanResults(), "max_radius_miles", s.MaxRadius)
			}
		case <-ctx.Done():
			slog.Info("querylog stopping")
			return
		}
	}
}

// window aggregates the queries seen since the last summary.
type window struct {
	Queries   int
	Empty     int
	Results   int
	MaxRadius float64
}

// MeanResults is the average result count per query in the window.
func (w window) MeanResults() float64 {
	if w.Queries == 0 {
		return 0
	}
	return float64(w.Results) / float64(w.Queries)
}

type summary struct {
	mu  sync.Mutex
	cur window
}

func (s *summary) record(q *domain.NearbyQuery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Queries++
	s.cur.Results += q.Results
	if q.Results == 0 {
		s.cur.Empty++
	}
	s.cur.MaxRadius = max(s.cur.MaxRadius, q.RadiusMiles)
}

// reset returns the current window and starts a new one.
func (s *summary) reset() window {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.cur
	s.cur = window{}
	return w
}
