package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cacheControl maps exact paths to Cache-Control values. distance and bounds
// are pure functions of their query string. nearby follows the service cache.
var cacheControl = map[string]string{
	"/v1/distance":      "public, max-age=86400",
	"/v1/bounds":        "public, max-age=86400",
	"/v1/cities/nearby": "public, max-age=300",
	"/v1/cities/stats":  "public, max-age=60",
	"/v1/health":        "public, max-age=10",
	"/v1/ready":         "public, max-age=10",
	"/metrics":          "no-cache",
}

const defaultAPICacheControl = "public, max-age=300"

func cachePolicy(path string) string {
	if v, ok := cacheControl[path]; ok {
		return v
	}
	if strings.HasPrefix(path, "/v1/") {
		return defaultAPICacheControl
	}
	return ""
}

// CachingMiddleware sets Cache-Control on successful GET responses.
// A header set by the handler is left alone.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() >= 400 {
			return err
		}
		if c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}
		if v := cachePolicy(c.Path()); v != "" {
			c.Set(fiber.HeaderCacheControl, v)
		}
		return err
	}
}
