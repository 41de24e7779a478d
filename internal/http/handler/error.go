package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"backoffice/internal/auth"
	"backoffice/internal/http/middleware"
	"backoffice/internal/service"
	"backoffice/internal/storage"
	"backoffice/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// requestError is a client input problem detected by a handler.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(code, message string) error {
	return &requestError{code: code, message: message}
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorFields(c, status, code, message, nil)
}

func writeErrorFields(c *fiber.Ctx, status int, code, message string, fields map[string]string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}
	return c.Status(status).JSON(res)
}

type apiError struct {
	status  int
	code    string
	message string
	fields  map[string]string
}

// classify maps known errors onto the envelope. Messages of service
// sentinels are built from resource names only and are safe to expose.
func classify(err error) (apiError, bool) {
	var re *requestError
	if errors.As(err, &re) {
		return apiError{status: fiber.StatusBadRequest, code: re.code, message: re.message}, true
	}
	if ve, ok := validation.As(err); ok {
		return apiError{status: fiber.StatusUnprocessableEntity, code: "VALIDATION_FAILED", message: "validation failed", fields: ve.Fields}, true
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return apiError{status: fiber.StatusNotFound, code: "NOT_FOUND", message: err.Error()}, true
	case errors.Is(err, service.ErrConflict):
		return apiError{status: fiber.StatusConflict, code: "CONFLICT", message: err.Error()}, true
	case errors.Is(err, service.ErrLimitReached):
		return apiError{status: fiber.StatusConflict, code: "LIMIT_REACHED", message: err.Error()}, true
	case errors.Is(err, service.ErrInUse):
		return apiError{status: fiber.StatusConflict, code: "IN_USE", message: err.Error()}, true
	case errors.Is(err, service.ErrInvalidInput):
		return apiError{status: fiber.StatusBadRequest, code: "BAD_REQUEST", message: err.Error()}, true
	case errors.Is(err, service.ErrReaderNil):
		return apiError{status: fiber.StatusBadRequest, code: "FILE_REQUIRED", message: "file is required"}, true
	case errors.Is(err, service.ErrUnsupportedMedia):
		return apiError{status: fiber.StatusUnsupportedMediaType, code: "UNSUPPORTED_MEDIA_TYPE", message: "only image uploads are accepted"}, true
	case errors.Is(err, service.ErrInvalidCredentials):
		return apiError{status: fiber.StatusUnauthorized, code: "UNAUTHORIZED", message: service.ErrInvalidCredentials.Error()}, true
	case errors.Is(err, auth.ErrMissingToken):
		return apiError{status: fiber.StatusUnauthorized, code: "UNAUTHORIZED", message: auth.ErrMissingToken.Error()}, true
	case errors.Is(err, auth.ErrExpiredToken):
		return apiError{status: fiber.StatusUnauthorized, code: "UNAUTHORIZED", message: auth.ErrExpiredToken.Error()}, true
	case errors.Is(err, auth.ErrInvalidToken):
		return apiError{status: fiber.StatusUnauthorized, code: "UNAUTHORIZED", message: auth.ErrInvalidToken.Error()}, true
	case errors.Is(err, service.ErrInactiveUser):
		return apiError{status: fiber.StatusForbidden, code: "FORBIDDEN", message: service.ErrInactiveUser.Error()}, true
	case errors.Is(err, middleware.ErrForbidden):
		return apiError{status: fiber.StatusForbidden, code: "FORBIDDEN", message: middleware.ErrForbidden.Error()}, true
	case errors.Is(err, storage.ErrUnavailable):
		return apiError{status: fiber.StatusServiceUnavailable, code: "SERVICE_UNAVAILABLE", message: "dependency unavailable"}, true
	}
	return apiError{}, false
}

// respond writes known errors and passes anything else to the global error handler.
func respond(c *fiber.Ctx, err error) error {
	if e, ok := classify(err); ok {
		return writeErrorFields(c, e.status, e.code, e.message, e.fields)
	}
	return err
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Unclassified errors are logged and reported as INTERNAL_ERROR.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusBadRequest:
				return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
			case fiber.StatusNotFound:
				return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
			case fiber.StatusMethodNotAllowed:
				return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
			}
			if fe.Code < fiber.StatusInternalServerError {
				return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
			}
		} else if e, ok := classify(err); ok {
			return writeErrorFields(c, e.status, e.code, e.message, e.fields)
		}

		log.Error("request failed",
			zap.String("request_id", requestIDFromCtx(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
