package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/careconnect/careconnect-api/internal/platform/auth"
)

// Logger emits one structured line per request. Authenticated requests
// carry the acting caller's id and role so a disputed booking change can be
// traced back to who made it.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if actor := auth.ActorFromContext(req.Context()); actor.ID != uuid.Nil {
				evt = evt.
					Str("actor_id", actor.ID.String()).
					Str("role", string(actor.Role))
			}
			evt.Msg("request")

			return err
		}
	}
}
