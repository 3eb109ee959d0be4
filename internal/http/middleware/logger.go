package middleware

import (
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"imagevault/internal/auth"
	"imagevault/internal/logging"
)

// ErrorLocalKey holds an internal error description that handlers keep out of responses.
const ErrorLocalKey = "error"

// Logger logs each HTTP request as one JSON line with:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
// - user_id when the request was authenticated
// - error when a handler stored one under ErrorLocalKey, or the error returned down the chain
func Logger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := statusOf(c, err)
		attrs := []any{
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
		}
		if uid := auth.UserID(c); uid != "" {
			attrs = append(attrs, "user_id", uid)
		}
		if cause, ok := c.Locals(ErrorLocalKey).(string); ok {
			attrs = append(attrs, "error", cause)
		} else if err != nil {
			attrs = append(attrs, "error", err.Error())
		}

		level := slog.LevelInfo
		switch {
		case status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		}
		log.Log(c.UserContext(), level, "http_request", attrs...)

		return err
	}
}

// LoggerWithWriter builds a request logger on a fresh JSON logger writing to w.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(w, loc, slog.LevelInfo))
}

// statusOf returns the status the error handler will write for err, or the response status.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if fiberErr, ok := err.(*fiber.Error); ok {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

func requestID(c *fiber.Ctx) string {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return rid
}
