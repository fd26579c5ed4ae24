package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/neocare/neocare/internal/platform/auth"
)

// AuditEntry records who looked at which dashboard view. Views that name
// patients (alerts, monitoring, ICU) make this an access log for PHI.
type AuditEntry struct {
	UserID     string
	UserRoles  []string
	View       string
	Action     string // view, export
	FacilityID string
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// Audit emits one "dashboard_access" line per authenticated /api request.
// Discovery routes under /api are public and not audited.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			if !isAuditablePath(path) {
				return next(c)
			}

			err := next(c)

			entry := buildAuditEntry(c, err)
			evt := logger.Info()
			if entry.StatusCode == 401 || entry.StatusCode == 403 {
				evt = logger.Warn()
			}
			evt.
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("view", entry.View).
				Str("action", entry.Action).
				Str("hospital_id", entry.FacilityID).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Time("at", entry.Timestamp).
				Msg("dashboard_access")

			return err
		}
	}
}

func buildAuditEntry(c echo.Context, err error) AuditEntry {
	req := c.Request()
	ctx := req.Context()

	status := c.Response().Status
	if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
		status = he.Code
	}
	rid, _ := c.Get("request_id").(string)

	return AuditEntry{
		UserID:     auth.UserIDFromContext(ctx),
		UserRoles:  auth.RolesFromContext(ctx),
		View:       viewName(req.URL.Path),
		Action:     auditAction(req.URL.Path),
		FacilityID: c.QueryParam("hospital_id"),
		IPAddress:  c.RealIP(),
		UserAgent:  req.UserAgent(),
		Path:       req.URL.Path,
		Method:     req.Method,
		Timestamp:  time.Now().UTC(),
		RequestID:  rid,
		StatusCode: status,
	}
}

func isAuditablePath(path string) bool {
	if !strings.HasPrefix(path, "/api/") {
		return false
	}
	return !auth.IsPublicPath(path)
}

// viewName turns /api/resources/beds into "resources.beds".
func viewName(path string) string {
	trimmed := strings.Trim(strings.TrimPrefix(path, "/api/"), "/")
	trimmed = strings.TrimSuffix(trimmed, "/export")
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}

func auditAction(path string) string {
	if strings.HasSuffix(strings.TrimRight(path, "/"), "/export") {
		return "export"
	}
	return "view"
}
