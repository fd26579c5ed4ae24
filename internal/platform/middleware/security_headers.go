package middleware

import (
	"github.com/labstack/echo/v4"
)

const (
	apiCSP  = "default-src 'none'; frame-ancestors 'none'"
	docsCSP = "default-src 'none'; script-src 'unsafe-inline' https://unpkg.com; " +
		"style-src 'unsafe-inline' https://unpkg.com; img-src 'self' data: https://unpkg.com; " +
		"connect-src 'self'; frame-ancestors 'none'"
	docsPath = "/api/docs"
)

// SecurityHeaders sets the response hardening headers. HSTS is only sent
// when the server terminates TLS itself. Cache-Control is left to the
// ETag middleware.
func SecurityHeaders(hsts bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "0")
			if c.Request().URL.Path == docsPath {
				h.Set("Content-Security-Policy", docsCSP)
			} else {
				h.Set("Content-Security-Policy", apiCSP)
			}
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			return next(c)
		}
	}
}
