package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/cityradius/internal/adapters/http"
	natsadapter "github.com/samirrijal/cityradius/internal/adapters/nats"
	"github.com/samirrijal/cityradius/internal/adapters/postgres"
	"github.com/samirrijal/cityradius/internal/adapters/sqlite"
	"github.com/samirrijal/cityradius/internal/adapters/valkey"
	"github.com/samirrijal/cityradius/internal/core/ports"
	"github.com/samirrijal/cityradius/internal/core/usecases"
	"github.com/samirrijal/cityradius/internal/pkg/config"
	"github.com/samirrijal/cityradius/internal/pkg/logging"
	"github.com/samirrijal/cityradius/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("cityradius-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.SampleRatio)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// City dataset
	var cities ports.CityRepository
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		repo, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite: %v", err)
		}
		defer repo.Close()
		cities = repo
	default:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		cities = postgres.NewCityRepo(db)
	}

	// Cache. Interface values stay nil when valkey is off so the service skips it.
	var (
		cache       ports.CacheService
		cachePinger http.Pinger
	)
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Password, cfg.Valkey.DB, cfg.Valkey.KeyPrefix)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer c.Close()
			cache, cachePinger = c, c
		}
	}

	// NATS
	var events ports.EventPublisher
	deps := &http.Dependencies{
		Query:     cfg.Query,
		RateLimit: cfg.Server.RateLimit,
		Cache:     cachePinger,
	}
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			events = pub
			deps.NATS = pub.Conn()
		}
	}

	deps.Cities = usecases.NewCityService(cities, cache, events).
		WithLimits(cfg.Query.MaxResults, cfg.Query.CacheTTLSeconds)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // GraphQL queries only
		AppName:      "cityradius API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "driver", cfg.Database.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
