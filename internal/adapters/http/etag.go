package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// weakETag derives a validator from the first 8 bytes of the body's SHA-256.
func weakETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `W/"` + hex.EncodeToString(sum[:8]) + `"`
}

// etagMatches reports whether an If-None-Match header matches etag under
// weak comparison. The header may list several tags or be "*".
func etagMatches(header, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || (tag != "" && strings.TrimPrefix(tag, "W/") == want) {
			return true
		}
	}
	return false
}

// ETagMiddleware tags 200 GET responses and answers 304 when the client's
// copy is current.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		res := c.Response()
		if c.Method() != fiber.MethodGet || res.StatusCode() != fiber.StatusOK || len(res.Body()) == 0 {
			return nil
		}

		tag := weakETag(res.Body())
		c.Set(fiber.HeaderETag, tag)
		if etagMatches(c.Get(fiber.HeaderIfNoneMatch), tag) {
			c.Status(fiber.StatusNotModified)
			res.ResetBody()
		}
		return nil
	}
}
