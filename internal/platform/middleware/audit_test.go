package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/neocare/neocare/internal/platform/auth"
)

func auditContext(path, userID string, roles []string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", "ward-tablet/1.0")
	if userID != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), userID, roles))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func auditLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestAudit_RecordsDashboardView(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	c, _ := auditContext("/api/alerts/critical?hospital_id=0b7c1f9e-2f4e-4c41-9d0a-6a3f3e0c1d11&limit=5", "nurse-1", []string{"nurse"})
	c.Set("request_id", "req-abc")

	if err := Audit(logger)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := auditLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 audit line, got %d", len(lines))
	}
	got := lines[0]
	checks := map[string]any{
		"type":        "audit",
		"message":     "dashboard_access",
		"user_id":     "nurse-1",
		"view":        "alerts.critical",
		"action":      "view",
		"hospital_id": "0b7c1f9e-2f4e-4c41-9d0a-6a3f3e0c1d11",
		"request_id":  "req-abc",
		"status":      float64(200),
		"level":       "info",
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%s: got %v, want %v", k, got[k], want)
		}
	}
}

func TestAudit_ExportAction(t *testing.T) {
	var buf bytes.Buffer
	c, _ := auditContext("/api/departments/performance/export?days=7", "analyst-2", []string{"analyst"})

	if err := Audit(zerolog.New(&buf))(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := auditLines(t, &buf)[0]
	if got["action"] != "export" {
		t.Errorf("expected export action, got %v", got["action"])
	}
	if got["view"] != "departments.performance" {
		t.Errorf("expected departments.performance view, got %v", got["view"])
	}
}

func TestAudit_DeniedAccessLogsWarn(t *testing.T) {
	var buf bytes.Buffer
	c, _ := auditContext("/api/icu/overview", "analyst-2", []string{"analyst"})

	denied := auth.RequireRole(auth.ClinicalRoles...)(okHandler)
	err := Audit(zerolog.New(&buf))(denied)(c)
	if err == nil {
		t.Fatal("expected forbidden error to pass through")
	}
	got := auditLines(t, &buf)[0]
	if got["level"] != "warn" {
		t.Errorf("expected warn level, got %v", got["level"])
	}
	if got["status"] != float64(http.StatusForbidden) {
		t.Errorf("expected 403 status, got %v", got["status"])
	}
}

func TestAudit_SkipsNonAuditablePaths(t *testing.T) {
	for _, p := range []string{"/health", "/metrics", "/api", "/api/openapi.json", "/api/docs"} {
		var buf bytes.Buffer
		c, _ := auditContext(p, "", nil)
		if err := Audit(zerolog.New(&buf))(okHandler)(c); err != nil {
			t.Fatalf("%s: unexpected error: %v", p, err)
		}
		if buf.Len() != 0 {
			t.Errorf("%s: expected no audit line, got %s", p, buf.String())
		}
	}
}

func TestViewName(t *testing.T) {
	tests := map[string]string{
		"/api/overview":                       "overview",
		"/api/resources/beds":                 "resources.beds",
		"/api/departments/performance/export": "departments.performance",
		"/api/":                               "unknown",
	}
	for in, want := range tests {
		if got := viewName(in); got != want {
			t.Errorf("viewName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsAuditablePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/overview", true},
		{"/api/laboratory/metrics", true},
		{"/api/openapi.json", false},
		{"/health/db", false},
		{"/apiary", false},
	}
	for _, tt := range tests {
		if got := isAuditablePath(tt.path); got != tt.want {
			t.Errorf("isAuditablePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
