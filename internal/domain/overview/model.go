package overview

import (
	"time"

	"github.com/google/uuid"

	"github.com/neocare/neocare/internal/engine"
)

// DefaultTimeframe applies when the request names none.
const DefaultTimeframe = "24h"

// Query narrows the dashboard.
type Query struct {
	FacilityID *uuid.UUID
	CountyID   *uuid.UUID
	Timeframe  string
}

type Filters struct {
	HospitalID *uuid.UUID `json:"hospital_id"`
	CountyID   *uuid.UUID `json:"county_id"`
	Timeframe  string     `json:"timeframe"`
}

type Distribution struct {
	Regions []engine.RegionShare `json:"regions"`
}

// Dashboard is the hospital operations overview.
type Dashboard struct {
	Admissions          engine.AdmissionSummary    `json:"admissions"`
	BedOccupancy        []engine.FacilityOccupancy `json:"bedOccupancy"`
	Emergency           engine.EmergencySummary    `json:"emergency"`
	Laboratory          engine.LabSummary          `json:"laboratory"`
	Alerts              []engine.Alert             `json:"alerts"`
	PatientDistribution Distribution               `json:"patientDistribution"`
	Timestamp           time.Time                  `json:"timestamp"`
	Filters             Filters                    `json:"filters"`
	Degraded            []string                   `json:"degraded,omitempty"`
}
