package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const maxHeaderValueSize = 8 << 10

var (
	// SQL-looking query values only warn: the stores bind every value.
	sqlPattern    = regexp.MustCompile(`(?i)('+\s*;\s*DROP\b|UNION\s+SELECT\b|'\s+OR\s+1\s*=\s*1|1\s*=\s*1)`)
	scriptPattern = regexp.MustCompile(`(?i)(<script|javascript\s*:|on\w+\s*=)`)
)

// Sanitize rejects requests carrying path traversal, null bytes, header
// injection or script fragments with a plain 400.
func Sanitize() echo.MiddlewareFunc {
	return SanitizeWithLogger(zerolog.Nop())
}

// SanitizeWithLogger is Sanitize with rejected requests and SQL-looking
// query values logged at Warn.
func SanitizeWithLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			reason := checkPath(req.URL.Path, req.URL.RawPath)
			if reason == "" {
				reason = checkHeaders(req.Header)
			}
			if reason == "" {
				reason = checkQuery(c, logger)
			}
			if reason != "" {
				logger.Warn().
					Str("path", req.URL.Path).
					Str("remote_ip", c.RealIP()).
					Str("reason", reason).
					Msg("request rejected by sanitizer")
				return echo.NewHTTPError(http.StatusBadRequest, reason)
			}
			return next(c)
		}
	}
}

func checkPath(path, raw string) string {
	for _, p := range []string{path, raw} {
		switch {
		case hasTraversal(p):
			return "Path traversal detected"
		case hasNullByte(p):
			return "Null byte injection detected"
		}
	}
	return ""
}

func checkHeaders(h http.Header) string {
	for name, values := range h {
		for _, v := range values {
			if len(v) > maxHeaderValueSize {
				return "Header value exceeds maximum size: " + name
			}
			if strings.ContainsAny(v, "\r\n") {
				return "Header injection detected: " + name
			}
		}
	}
	return ""
}

func checkQuery(c echo.Context, logger zerolog.Logger) string {
	for key, values := range c.QueryParams() {
		for _, v := range values {
			if hasNullByte(key) || hasNullByte(v) {
				return "Null byte injection detected in query parameter"
			}
			if scriptPattern.MatchString(key) || scriptPattern.MatchString(v) {
				return "Script injection detected in query parameter"
			}
			if sqlPattern.MatchString(v) {
				logger.Warn().
					Str("param", key).
					Str("path", c.Request().URL.Path).
					Str("remote_ip", c.RealIP()).
					Msg("potential SQL injection pattern detected in query parameter")
			}
		}
	}
	return ""
}

// hasTraversal matches "..", its percent-encoded form and a double-encoded dot.
func hasTraversal(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(s, "..") ||
		strings.Contains(lower, "%2e%2e") ||
		strings.Contains(lower, "%252e")
}

func hasNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00') || strings.Contains(strings.ToLower(s), "%00")
}
