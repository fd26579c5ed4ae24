package performance

import (
	"time"

	"github.com/neocare/neocare/internal/engine"
)

const (
	DefaultKPITimeframe = "30d"
	DefaultDays         = 30
)

// ClinicalKPIs are facility-wide indicators with the departments scored over
// the same window.
type ClinicalKPIs struct {
	engine.ClinicalKPIs
	Departments []engine.DepartmentScore `json:"departments"`
	Timeframe   string                   `json:"timeframe"`
	Timestamp   time.Time                `json:"timestamp"`
	Degraded    []string                 `json:"degraded,omitempty"`
}

// Departments is the ranked department performance report.
type Departments struct {
	Departments []engine.DepartmentScore `json:"departments"`
	Summary     engine.CohortSummary     `json:"summary"`
	Days        int                      `json:"days"`
	Timestamp   time.Time                `json:"timestamp"`
	Degraded    []string                 `json:"degraded,omitempty"`
}
