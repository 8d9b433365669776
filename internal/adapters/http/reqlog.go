package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type loggerKey struct{}

// RequestIDLogMiddleware puts a logger tagged with the request ID into the
// request's user context. Requires the requestid middleware to run first.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rid, _ := c.Locals("requestid").(string); rid != "" {
			logger := slog.Default().With("request_id", rid)
			c.SetUserContext(context.WithValue(c.UserContext(), loggerKey{}, logger))
		}
		return c.Next()
	}
}

// LoggerFromCtx returns the request logger, or slog.Default outside a request.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
