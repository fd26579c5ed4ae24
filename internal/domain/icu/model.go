package icu

import (
	"time"

	"github.com/neocare/neocare/internal/engine"
)

const (
	// Ward, location and bed type values that identify intensive care.
	wardMatch   = "icu"
	icuBedType  = "icu"
	alertLimit  = 10
	stayHistory = 50
)

// deviceTypes are the equipment types the command center tracks.
var deviceTypes = []string{"ventilator", "monitor", "pump"}

// escalatedFrom is the lowest alert severity the command center shows.
const escalatedFrom = engine.SeverityHigh

// Capacity is the ICU bed census.
type Capacity struct {
	TotalBeds       int     `json:"totalBeds"`
	AvailableBeds   int     `json:"availableBeds"`
	OccupiedBeds    int     `json:"occupiedBeds"`
	MaintenanceBeds int     `json:"maintenanceBeds"`
	OccupancyRate   int     `json:"occupancyRate"`
	AverageStay     float64 `json:"averageStay"`
	ActiveAlerts    int     `json:"activeAlerts"`
}

// Patient is an ICU patient, de-identified to initials.
type Patient struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Age                *int             `json:"age"`
	Diagnosis          string           `json:"diagnosis"`
	RiskLevel          engine.RiskLevel `json:"riskLevel"`
	HeartRate          *float64         `json:"heartRate"`
	BloodPressure      *string          `json:"bloodPressure"`
	OxygenSat          *float64         `json:"oxygenSat"`
	Temperature        *float64         `json:"temperature"`
	Bed                string           `json:"bed"`
	AdmissionDate      time.Time        `json:"admissionDate"`
	AttendingPhysician string           `json:"attendingPhysician,omitempty"`
}

// CommandCenter is the ICU overview.
type CommandCenter struct {
	Capacity  Capacity             `json:"capacity"`
	Patients  []Patient            `json:"patients"`
	Devices   engine.DeviceSummary `json:"devices"`
	Alerts    []engine.Alert       `json:"alerts"`
	Timestamp time.Time            `json:"timestamp"`
	Degraded  []string             `json:"degraded,omitempty"`
}
