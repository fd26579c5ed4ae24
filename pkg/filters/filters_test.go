package filters

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func contextFor(target string) echo.Context {
	e := echo.New()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
}

func TestFromContext(t *testing.T) {
	id := uuid.New()
	s, err := FromContext(contextFor("/?hospital_id=" + id.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.FacilityID == nil || *s.FacilityID != id {
		t.Errorf("expected facility %s, got %v", id, s.FacilityID)
	}
	if s.CountyID != nil {
		t.Errorf("expected no county, got %v", s.CountyID)
	}
}

func TestFromContext_Invalid(t *testing.T) {
	for _, target := range []string{"/?hospital_id=abc", "/?county_id=12"} {
		_, err := FromContext(contextFor(target))
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %v", target, err)
		}
	}
}

func TestInt(t *testing.T) {
	n, err := Days(contextFor("/"), 30)
	if err != nil || n != 30 {
		t.Errorf("expected default 30, got %d (%v)", n, err)
	}
	n, err = Days(contextFor("/?days=7"), 30)
	if err != nil || n != 7 {
		t.Errorf("expected 7, got %d (%v)", n, err)
	}
	for _, target := range []string{"/?days=x", "/?days=0", "/?days=-2"} {
		if _, err := Days(contextFor(target), 30); err == nil {
			t.Errorf("%s: expected error", target)
		}
	}
}

func TestLimit_CapsAtMax(t *testing.T) {
	n, err := Limit(contextFor("/?limit=50000000"), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, n)
	}

	n, err = Limit(contextFor("/?limit=100"), 10)
	if err != nil || n != 100 {
		t.Errorf("expected 100, got %d (%v)", n, err)
	}
}

func TestDays_CapsAtMax(t *testing.T) {
	n, err := Days(contextFor("/?days=36500"), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != MaxDays {
		t.Errorf("expected days capped at %d, got %d", MaxDays, n)
	}
}
