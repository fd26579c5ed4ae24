package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths bypass authentication: probes, scraping and API discovery.
var publicPaths = map[string]bool{
	"/health":           true,
	"/health/db":        true,
	"/metrics":          true,
	"/api":              true,
	"/api/openapi.json": true,
	"/api/docs":         true,
}

// AuthSkipper matches on the registered route path, not the raw URL.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

func IsPublicPath(path string) bool {
	return publicPaths[path]
}
