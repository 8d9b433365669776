package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

const readyTimeout = 3 * time.Second

// HealthHandler reports liveness and uptime.
func HealthHandler(deps *Dependencies) fiber.Handler {
	clock := deps.clock()
	startedAt := clock.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  clock.Since(startedAt).Truncate(time.Second).String(),
			"version": Version,
		})
	}
}

// dependencyCheck probes one backing service. A nil probe means the service
// is not configured; that only fails readiness when the service is required.
type dependencyCheck struct {
	name     string
	required bool
	probe    func(ctx context.Context) error
}

func (d *Dependencies) readinessChecks() []dependencyCheck {
	checks := []dependencyCheck{{name: "database", required: true}}
	if d.Cities != nil {
		checks[0].probe = d.Cities.Ping
	}

	bus := dependencyCheck{name: "nats"}
	if d.NATS != nil {
		bus.probe = func(context.Context) error {
			if !d.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		}
	}

	cache := dependencyCheck{name: "cache"}
	if d.Cache != nil {
		cache.probe = d.Cache.Ping
	}
	return append(checks, bus, cache)
}

// ReadyHandler runs every dependency check and answers 503 if any fails.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		results := make(map[string]string)
		ready := true
		for _, chk := range deps.readinessChecks() {
			if chk.probe == nil {
				results[chk.name] = "not configured"
				ready = ready && !chk.required
				continue
			}
			if err := chk.probe(ctx); err != nil {
				results[chk.name] = "error: " + err.Error()
				ready = false
				continue
			}
			results[chk.name] = "ok"
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
