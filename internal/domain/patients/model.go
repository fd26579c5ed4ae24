package patients

import (
	"time"

	"github.com/google/uuid"

	"github.com/neocare/neocare/internal/engine"
)

const (
	DefaultMonitoringLimit = 50
	DefaultLiveLimit       = 20

	// ClinicalAlertLimit caps the alerts grouped into the monitoring feed.
	ClinicalAlertLimit = 20

	unassigned = "Not assigned"
)

// MonitoringQuery narrows the monitoring board.
type MonitoringQuery struct {
	FacilityID *uuid.UUID
	Ward       string
	// Status keeps only patients whose recorded status matches.
	Status string
	Limit  int
}

// MonitoredPatient is an active inpatient with their latest vital signs.
type MonitoredPatient struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Age                *int             `json:"age"`
	Room               string           `json:"room"`
	Condition          string           `json:"condition"`
	HeartRate          *float64         `json:"heartRate"`
	BloodPressure      *string          `json:"bloodPressure"`
	OxygenSat          *float64         `json:"oxygenSat"`
	Temperature        *float64         `json:"temperature"`
	Status             string           `json:"status"`
	RiskLevel          engine.RiskLevel `json:"riskLevel"`
	LastUpdate         time.Time        `json:"lastUpdate"`
	Ward               string           `json:"ward"`
	AttendingPhysician string           `json:"attendingPhysician"`
}

// LiveVital is one recent reading as shown on the live vitals ticker.
type LiveVital struct {
	PatientID       string           `json:"patientId"`
	HeartRate       *float64         `json:"heartRate"`
	BloodPressure   *string          `json:"bloodPressure"`
	OxygenSat       *float64         `json:"oxygenSat"`
	Temperature     *float64         `json:"temperature"`
	RespiratoryRate *float64         `json:"respiratoryRate"`
	RiskLevel       engine.RiskLevel `json:"riskLevel"`
	Timestamp       time.Time        `json:"timestamp"`
	Ward            string           `json:"ward"`
	Bed             string           `json:"bed"`
}

// MonitoringSummary counts the board by recorded status and by the risk tier
// of each patient's latest vitals.
type MonitoringSummary struct {
	TotalPatients   int                      `json:"totalPatients"`
	CriticalCount   int                      `json:"criticalCount"`
	MonitoringCount int                      `json:"monitoringCount"`
	StableCount     int                      `json:"stableCount"`
	RiskLevels      map[engine.RiskLevel]int `json:"riskLevels"`
}

// Monitoring is the patient monitoring board.
type Monitoring struct {
	ActivePatients []MonitoredPatient  `json:"activePatients"`
	LiveVitals     []LiveVital         `json:"liveVitals"`
	ClinicalAlerts []engine.AlertGroup `json:"clinicalAlerts"`
	Summary        MonitoringSummary   `json:"summary"`
	Timestamp      time.Time           `json:"timestamp"`
	Degraded       []string            `json:"degraded,omitempty"`
}

// LiveVitals is the live vitals ticker.
type LiveVitals struct {
	Vitals    []LiveVital `json:"vitals"`
	Count     int         `json:"count"`
	Timestamp time.Time   `json:"timestamp"`
	Degraded  []string    `json:"degraded,omitempty"`
}

// Distribution is the geographic spread of active patients.
type Distribution struct {
	Regions       []engine.RegionShare `json:"regions"`
	TotalPatients int                  `json:"totalPatients"`
	Timestamp     time.Time            `json:"timestamp"`
	Degraded      []string             `json:"degraded,omitempty"`
}
