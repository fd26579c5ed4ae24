package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runSecurityHeaders(t *testing.T, path string, hsts bool) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := SecurityHeaders(hsts)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestSecurityHeaders_SetsAllHeaders(t *testing.T) {
	rec := runSecurityHeaders(t, "/api/overview", true)

	expected := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"X-XSS-Protection":          "0",
		"Content-Security-Policy":   apiCSP,
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
		"Referrer-Policy":           "no-referrer",
		"Permissions-Policy":        "camera=(), microphone=(), geolocation=()",
	}
	for header, want := range expected {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("header %s: got %q, want %q", header, got, want)
		}
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestSecurityHeaders_NoHSTSWithoutTLS(t *testing.T) {
	rec := runSecurityHeaders(t, "/api/overview", false)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("expected no HSTS, got %q", got)
	}
}

func TestSecurityHeaders_LeavesCacheControlToETag(t *testing.T) {
	rec := runSecurityHeaders(t, "/api/resources/beds", false)
	if got := rec.Header().Get("Cache-Control"); got != "" {
		t.Errorf("expected no Cache-Control from security headers, got %q", got)
	}
}

func TestSecurityHeaders_DocsPageMayLoadSwaggerUI(t *testing.T) {
	rec := runSecurityHeaders(t, docsPath, false)
	if got := rec.Header().Get("Content-Security-Policy"); got != docsCSP {
		t.Errorf("expected docs CSP, got %q", got)
	}
}
