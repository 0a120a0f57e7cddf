package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	headerRequestID = "X-Request-ID"
	localsRequestID = "requestID"
)

// EnsureRequestID tags every request with an id, keeping the one sent by
// the client when present.
func EnsureRequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(localsRequestID, requestID)
		c.Set(headerRequestID, requestID)
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsRequestID).(string)
	return id
}

// LogRequests writes one line per request once it has been handled.
func LogRequests(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug().
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("request")
		return err
	}
}
