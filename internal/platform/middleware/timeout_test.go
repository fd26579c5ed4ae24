package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRequestTimeout_CompletesWithinDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := func(c echo.Context) error {
		called = true
		if _, ok := c.Request().Context().Deadline(); !ok {
			t.Error("expected request context to carry a deadline")
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := RequestTimeout(5 * time.Second)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestTimeout_DeadlineErrorBecomes504(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/resources/beds", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		<-c.Request().Context().Done()
		return fmt.Errorf("query beds: %w", c.Request().Context().Err())
	}

	if err := RequestTimeout(10 * time.Millisecond)(handler)(c); err != nil {
		t.Fatalf("expected timeout to be written, got %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] == "" {
		t.Error("expected message in timeout body")
	}
}

func TestRequestTimeout_DegradedHandlerStill200(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/resources/beds", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		<-c.Request().Context().Done()
		MarkDegraded(c, []string{"beds"})
		return c.JSON(http.StatusOK, map[string]int{"totalBeds": 0})
	}

	if err := RequestTimeout(10 * time.Millisecond)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(DegradedHeader) != "beds" {
		t.Errorf("expected degraded header, got %q", rec.Header().Get(DegradedHeader))
	}
}

func TestRequestTimeout_CommittedResponseKeepsError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		c.Response().WriteHeader(http.StatusOK)
		return context.DeadlineExceeded
	}

	err := RequestTimeout(time.Second)(handler)(c)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error to pass through, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected committed 200, got %d", rec.Code)
	}
}

func TestRequestTimeout_ZeroDisables(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); ok {
			t.Error("expected no deadline when timeout is zero")
		}
		return nil
	}
	if err := RequestTimeout(0)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
