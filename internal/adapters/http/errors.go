package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/cityradius/internal/pkg/geospatial"
)

var errDisconnected = errors.New("disconnected")

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// errorCodes names the statuses this API produces. Others fall back to "error".
var errorCodes = map[int]string{
	fiber.StatusBadRequest:          "bad_request",
	fiber.StatusNotFound:            "not_found",
	fiber.StatusMethodNotAllowed:    "method_not_allowed",
	fiber.StatusRequestTimeout:      "timeout",
	fiber.StatusUpgradeRequired:     "upgrade_required",
	fiber.StatusTooManyRequests:     "rate_limited",
	fiber.StatusInternalServerError: "internal_error",
}

func errorCode(status int) string {
	if code, ok := errorCodes[status]; ok {
		return code
	}
	return "error"
}

func newError(c *fiber.Ctx, status int, message string) error {
	rid, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      errorCode(status),
		Message:   message,
		RequestID: rid,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, msg)
}

func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, msg)
}

// errFromService maps invalid arguments to 400. Anything else is logged and
// reported as an opaque 500 so driver errors never reach clients.
func errFromService(c *fiber.Ctx, err error) error {
	if errors.Is(err, geospatial.ErrInvalidArgument) {
		return errBadRequest(c, err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}

// ErrorHandler is the fiber.Config ErrorHandler. It renders errors that
// escape handlers, such as unknown routes and middleware timeouts, as APIError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return newError(c, fe.Code, fe.Message)
	}
	return errFromService(c, err)
}
