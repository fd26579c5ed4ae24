package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout puts a deadline on the request context. Store reads that
// run past it fail and the services fall back to their defaults, so most
// slow requests still answer 200 with an X-Degraded header. A handler that
// surfaces context.DeadlineExceeded itself is answered with 504.
//
// The handler runs on the calling goroutine so nothing writes the response
// after the middleware has returned.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err != nil && errors.Is(err, context.DeadlineExceeded) && !c.Response().Committed {
				return c.JSON(http.StatusGatewayTimeout, map[string]string{
					"message": "request exceeded the allowed processing time",
				})
			}
			return err
		}
	}
}
