package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"imagevault/internal/http/middleware"
	"imagevault/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_PAGE", "DUPLICATE_IMAGE", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// serviceErrors maps service sentinels to their HTTP representation. Order matters only for
// errors wrapping more than one sentinel.
var serviceErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{service.ErrUnauthenticated, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{service.ErrPayloadTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file too large"},
	{service.ErrUnsupportedType, fiber.StatusBadRequest, "UNSUPPORTED_TYPE", "unsupported file type"},
	{service.ErrInvalidFilename, fiber.StatusBadRequest, "INVALID_FILENAME", "invalid filename"},
	{service.ErrPathMismatch, fiber.StatusBadRequest, "PATH_MISMATCH", "storage paths do not match filename"},
	{service.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT", "invalid input"},
	{service.ErrForbiddenKey, fiber.StatusForbidden, "FORBIDDEN", "access to this object is not allowed"},
	{service.ErrDuplicateImage, fiber.StatusConflict, "DUPLICATE_IMAGE", "an image with this name already exists"},
	{service.ErrBucketNotFound, fiber.StatusNotFound, "BUCKET_NOT_FOUND", "the bucket doesn't exist"},
}

// writeServiceError classifies err and writes the envelope. Unclassified errors become 500 and
// their text is handed to the request logger only.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, m.message)
		}
	}
	c.Locals(middleware.ErrorLocalKey, err.Error())
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "BODY_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
