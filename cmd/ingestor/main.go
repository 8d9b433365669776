// Command ingestor loads the US cities dataset into PostgreSQL.
//
//	ingestor [path]            read a simplemaps-style uscities.csv (default database/uscities.csv)
//	ingestor -sqlite [path]    copy the uscities table out of a SQLite database
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/cityradius/internal/adapters/csvfile"
	"github.com/samirrijal/cityradius/internal/adapters/postgres"
	"github.com/samirrijal/cityradius/internal/adapters/sqlite"
	"github.com/samirrijal/cityradius/internal/core/domain"
	"github.com/samirrijal/cityradius/internal/core/ports"
	"github.com/samirrijal/cityradius/internal/pkg/config"
	"github.com/samirrijal/cityradius/internal/pkg/logging"
	"github.com/samirrijal/cityradius/internal/pkg/metrics"
)

const batchSize = 500

// wholeWorld selects every row from a repository.
var wholeWorld = domain.GeoArea{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}

func main() {
	cfg, err := config.Load("cityradius-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cities, err := loadCities(os.Args[1:], cfg)
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	start := time.Now()
	n, err := ingest(ctx, postgres.NewCityRepo(db), cities)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	slog.Info("ingestion complete", "cities", n, "duration", time.Since(start).Round(time.Millisecond))
}

func loadCities(args []string, cfg *config.Config) ([]domain.City, error) {
	if len(args) > 0 && args[0] == "-sqlite" {
		path := cfg.Database.SQLitePath
		if len(args) > 1 {
			path = args[1]
		}
		repo, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		defer repo.Close()

		cities, err := repo.ListWithin(context.Background(), wholeWorld)
		if err != nil {
			return nil, err
		}
		slog.Info("read sqlite", "path", path, "cities", len(cities))
		return cities, nil
	}

	path := "database/uscities.csv"
	if len(args) > 0 {
		path = args[0]
	}
	res, err := csvfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	slog.Info("read csv", "path", path, "cities", len(res.Cities), "skipped", res.Skipped)
	return res.Cities, nil
}

// ingest upserts cities in fixed-size batches and returns how many were written.
func ingest(ctx context.Context, repo ports.CityRepository, cities []domain.City) (int, error) {
	written := 0
	for start := 0; start < len(cities); start += batchSize {
		end := min(start+batchSize, len(cities))
		if err := repo.UpsertBatch(ctx, cities[start:end]); err != nil {
			return written, fmt.Errorf("rows %d-%d: %w", start, end-1, err)
		}
		written += end - start
		metrics.CitiesIngested.Add(float64(end - start))
		slog.Debug("batch upserted", "rows", end-start, "total", written)
	}
	return written, nil
}
