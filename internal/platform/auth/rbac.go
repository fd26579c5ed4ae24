package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that checks if the user has at least one of
// the specified roles. Admin passes every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasRole(RolesFromContext(c.Request().Context()), roles...) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

func HasRole(granted []string, required ...string) bool {
	for _, has := range granted {
		if has == "admin" {
			return true
		}
		for _, r := range required {
			if has == r {
				return true
			}
		}
	}
	return false
}

// DashboardRoles may read every dashboard endpoint. Admin is implied.
var DashboardRoles = []string{"physician", "nurse", "analyst"}

// ClinicalRoles may read views that identify individual patients at the
// bedside.
var ClinicalRoles = []string{"physician", "nurse"}
