package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader carries the correlation ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey stores the ID in Echo context.
	RequestIDKey = "request_id"

	maxRequestIDLen = 128
)

// RequestID reuses a sane incoming X-Request-ID or generates a UUID, stores
// it in Echo context and echoes it on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if !validRequestID(requestID) {
				requestID = uuid.NewString()
			}

			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

// validRequestID rejects empty, oversized and non-printable IDs so a client
// cannot inject arbitrary text into log lines.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the request ID, or "" when RequestID did not run.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
