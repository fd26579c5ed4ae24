// Package filters parses the dashboard's shared query parameters.
package filters

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Scope is the facility and county a request is narrowed to.
type Scope struct {
	FacilityID *uuid.UUID `json:"hospital_id"`
	CountyID   *uuid.UUID `json:"county_id"`
}

// OptionalUUID parses the named query parameter. An absent or empty value
// yields nil; a malformed one is a 400.
func OptionalUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &id, nil
}

// FromContext reads hospital_id and county_id.
func FromContext(c echo.Context) (Scope, error) {
	facility, err := OptionalUUID(c, "hospital_id")
	if err != nil {
		return Scope{}, err
	}
	county, err := OptionalUUID(c, "county_id")
	if err != nil {
		return Scope{}, err
	}
	return Scope{FacilityID: facility, CountyID: county}, nil
}

const (
	// MaxLimit caps the size of every top-N feed.
	MaxLimit = 100
	// MaxDays caps trailing day windows at a year.
	MaxDays = 365
)

// Limit parses the limit parameter, capped at MaxLimit.
func Limit(c echo.Context, def int) (int, error) {
	return Int(c, "limit", def, MaxLimit)
}

// Days parses the days parameter, capped at MaxDays.
func Days(c echo.Context, def int) (int, error) {
	return Int(c, "days", def, MaxDays)
}

// Int parses a positive integer parameter, returning def when it is absent.
// Values above max are clamped to it.
func Int(c echo.Context, name string, def, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	if n > max {
		n = max
	}
	return n, nil
}
