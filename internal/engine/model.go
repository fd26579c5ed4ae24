// Package engine turns raw clinical and operational records into the
// classified, ranked and rated summaries shown on the operations dashboard.
// Every function is pure and safe to call concurrently.
package engine

import (
	"time"

	"github.com/google/uuid"
)

// Severity is the qualitative severity attached to an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RiskLevel is the tier a patient's latest vital signs fall into.
type RiskLevel string

const (
	RiskStable   RiskLevel = "stable"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// BedStatus is the occupancy state of a single bed.
type BedStatus string

const (
	BedAvailable   BedStatus = "available"
	BedOccupied    BedStatus = "occupied"
	BedMaintenance BedStatus = "maintenance"
)

// VitalReading is one set of vital signs taken for a patient. A nil
// measurement was not taken and never triggers a risk condition.
type VitalReading struct {
	ID                 uuid.UUID `json:"id"`
	PatientID          uuid.UUID `json:"patient_id"`
	HeartRate          *float64  `json:"heart_rate,omitempty"`
	OxygenSaturation   *float64  `json:"oxygen_saturation,omitempty"`
	BPSystolic         *float64  `json:"blood_pressure_systolic,omitempty"`
	BPDiastolic        *float64  `json:"blood_pressure_diastolic,omitempty"`
	TemperatureCelsius *float64  `json:"temperature,omitempty"`
	RespiratoryRate    *float64  `json:"respiratory_rate,omitempty"`
	RecordedAt         time.Time `json:"recorded_at"`
}

// Alert is an unresolved clinical or operational alert raised upstream.
type Alert struct {
	ID               uuid.UUID  `json:"id"`
	FacilityID       uuid.UUID  `json:"hospital_id"`
	PatientID        *uuid.UUID `json:"patient_id,omitempty"`
	Severity         Severity   `json:"severity"`
	Category         string     `json:"category,omitempty"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	CreatedAt        time.Time  `json:"created_at"`
	Resolved         bool       `json:"is_resolved"`
	Acknowledged     bool       `json:"is_acknowledged"`
	PatientNumber    string     `json:"patient_number,omitempty"`
	PatientFirstName string     `json:"-"`
	PatientLastName  string     `json:"-"`
}

// BedRecord is a snapshot of one bed at query time.
type BedRecord struct {
	ID           uuid.UUID `json:"id"`
	FacilityID   uuid.UUID `json:"hospital_id"`
	FacilityName string    `json:"hospital_name"`
	BedNumber    string    `json:"bed_number"`
	BedType      string    `json:"bed_type"`
	Status       BedStatus `json:"status"`
}

// DepartmentMetricSample is one day of aggregate metrics for a department.
// Values missing upstream arrive as zero.
type DepartmentMetricSample struct {
	DepartmentID    uuid.UUID `json:"department_id"`
	DepartmentName  string    `json:"department_name"`
	FacilityName    string    `json:"hospital_name"`
	Date            time.Time `json:"date"`
	AvgLengthOfStay float64   `json:"avg_length_of_stay"`
	ReadmissionRate float64   `json:"readmission_rate"`
	MortalityRate   float64   `json:"mortality_rate"`
	PatientCount    float64   `json:"patient_count"`
	Satisfaction    float64   `json:"patient_satisfaction"`
}

// HospitalMetricSample is one day of facility-wide clinical metrics.
type HospitalMetricSample struct {
	FacilityID      uuid.UUID `json:"hospital_id"`
	Date            time.Time `json:"date"`
	AvgLengthOfStay float64   `json:"average_length_of_stay"`
	ReadmissionRate float64   `json:"readmission_rate"`
	MortalityRate   float64   `json:"mortality_rate"`
	InfectionRate   float64   `json:"infection_rate"`
}

// AdmissionRecord is a single inpatient admission.
type AdmissionRecord struct {
	ID            uuid.UUID  `json:"id"`
	FacilityID    uuid.UUID  `json:"hospital_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	AdmissionDate time.Time  `json:"admission_date"`
	DischargeDate *time.Time `json:"discharge_date,omitempty"`
	AdmissionType string     `json:"admission_type"`
	Status        string     `json:"status"`
	Ward          string     `json:"ward"`
}

// LabOrder is a laboratory test order with its lifecycle timestamps.
type LabOrder struct {
	ID          uuid.UUID  `json:"id"`
	FacilityID  uuid.UUID  `json:"hospital_id"`
	Status      string     `json:"status"`
	OrderedAt   time.Time  `json:"ordered_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TestName    string     `json:"test_name"`
	TestIcon    string     `json:"test_icon"`
}

// Equipment is a tracked medical device.
type Equipment struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"equipment_type"`
	Location      string    `json:"location"`
	Status        string    `json:"status"`
	PatientNumber *string   `json:"patient_number,omitempty"`
}

// StaffRatio is the nurse-to-patient staffing of one department.
type StaffRatio struct {
	Department string  `json:"department" yaml:"department"`
	Nurses     int     `json:"nurses" yaml:"nurses"`
	Patients   int     `json:"patients" yaml:"patients"`
	Ratio      float64 `json:"ratio" yaml:"ratio"`
	Target     float64 `json:"target" yaml:"target"`
	Status     string  `json:"status" yaml:"status"`
}

// SupplyLevel is the stock position of one supply item.
type SupplyLevel struct {
	Item    string `json:"item" yaml:"item"`
	Current int    `json:"current" yaml:"current"`
	Minimum int    `json:"minimum" yaml:"minimum"`
	Maximum int    `json:"maximum" yaml:"maximum"`
	Status  string `json:"status" yaml:"status"`
}
