package audit

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medilab/lims/internal/platform/auth"
)

// Middleware records every mutating request after it succeeds. Route
// handlers record richer entity-level entries themselves; this is the
// coarse request trail.
func Middleware(sink Sink) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			method := c.Request().Method
			if method == "GET" || method == "HEAD" || method == "OPTIONS" {
				return nil
			}
			ctx := c.Request().Context()
			sink.Record(ctx, auth.UserIDFromContext(ctx), method+" "+c.Path(), "http_request", uuid.Nil,
				map[string]interface{}{"status": c.Response().Status})
			return nil
		}
	}
}
