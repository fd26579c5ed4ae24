package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// DegradedHeader lists the payload sections that were filled from fallback
// values. Responses carrying it are never stored by ResponseCache.
const DegradedHeader = "X-Degraded"

// MarkDegraded sets DegradedHeader when any section fell back.
func MarkDegraded(c echo.Context, sections []string) {
	if len(sections) == 0 {
		return
	}
	c.Response().Header().Set(DegradedHeader, strings.Join(sections, ","))
}
