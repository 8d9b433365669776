package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/cityradius/internal/pkg/metrics"
)

const (
	requestTimeout   = 15 * time.Second
	defaultRateLimit = 120 // per IP per minute
	apiVersion       = "1.0.0"
)

// quietPaths are probes and scrapes, logged at debug level.
var quietPaths = []string{"/v1/health", "/v1/ready", "/metrics"}

// SetupRoutes installs the middleware chain and registers the REST, GraphQL,
// docs and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	useMiddleware(app, deps)

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/distance", DistanceHandler(deps))
	v1.Get("/bounds", BoundsHandler(deps))

	// these reach the city store
	v1.Get("/cities/nearby", timeout.NewWithContext(NearbyCitiesHandler(deps), requestTimeout))
	v1.Get("/cities/stats", timeout.NewWithContext(CityStatsHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	app.Get("/ws", requireUpgrade, websocket.New(WebSocketHandler(deps.NATS)))
}

func useMiddleware(app *fiber.App, deps *Dependencies) {
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware(quietPaths...))

	perMinute := deps.RateLimit
	if perMinute <= 0 {
		perMinute = defaultRateLimit
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "too many requests, please try again later")
		},
	}))

	app.Use(securityHeaders)
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
}

func securityHeaders(c *fiber.Ctx) error {
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set(fiber.HeaderReferrerPolicy, "strict-origin-when-cross-origin")
	c.Set("X-API-Version", apiVersion)
	return c.Next()
}

func requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}
