// Package store declares the read capabilities the dashboard needs from its
// upstream clinical database. Drivers live in subpackages.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/neocare/neocare/internal/engine"
)

// ActivePatient is an active admission joined with its patient and
// attending physician.
type ActivePatient struct {
	AdmissionID        uuid.UUID  `json:"admission_id"`
	FacilityID         uuid.UUID  `json:"hospital_id"`
	FacilityName       string     `json:"hospital_name"`
	PatientID          uuid.UUID  `json:"patient_id"`
	PatientNumber      string     `json:"patient_number"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	DateOfBirth        *time.Time `json:"date_of_birth,omitempty"`
	Gender             string     `json:"gender,omitempty"`
	BloodType          string     `json:"blood_type,omitempty"`
	PatientStatus      string     `json:"patient_status"`
	AdmissionDate      time.Time  `json:"admission_date"`
	Ward               string     `json:"ward"`
	BedNumber          string     `json:"bed_number,omitempty"`
	Diagnosis          string     `json:"diagnosis,omitempty"`
	AttendingPhysician string     `json:"attending_physician,omitempty"`
}

// LiveVital is a vital reading with the patient and bed it was taken at.
type LiveVital struct {
	engine.VitalReading
	PatientNumber string     `json:"patient_number,omitempty"`
	Ward          string     `json:"ward,omitempty"`
	BedNumber     string     `json:"bed_number,omitempty"`
	FacilityID    *uuid.UUID `json:"admission_hospital_id,omitempty"`
}

// AdmissionFilter narrows ListAdmissions. Zero fields do not filter.
type AdmissionFilter struct {
	FacilityID *uuid.UUID
	// CountyID matches admissions at hospitals in the county. Ignored when
	// FacilityID is set.
	CountyID       *uuid.UUID
	Since          *time.Time
	AdmissionType  string
	WardContains   string
	DischargedOnly bool
	Limit          int
}

// ActiveAdmissionFilter narrows ListActiveAdmissions.
type ActiveAdmissionFilter struct {
	FacilityID   *uuid.UUID
	Ward         string
	WardContains string
	Limit        int
}

// VitalFilter narrows ListLiveVitals. FacilityID matches the hospital of the
// admission the reading belongs to.
type VitalFilter struct {
	FacilityID *uuid.UUID
	Limit      int
}

// AlertFilter narrows ListActiveAlerts. Only unresolved alerts are returned,
// newest first. Severities and MinSeverity combine: an alert must be in the
// list, when given, and at or above the minimum, when given.
type AlertFilter struct {
	FacilityID  *uuid.UUID
	Severities  []engine.Severity
	MinSeverity engine.Severity
	PatientOnly bool
	Limit       int
}

// SeveritySet is the severities a driver should match. Nil matches every
// severity; an empty non-nil set matches none.
func (f AlertFilter) SeveritySet() []engine.Severity {
	if f.MinSeverity == "" {
		if len(f.Severities) == 0 {
			return nil
		}
		return f.Severities
	}
	if len(f.Severities) == 0 {
		return engine.SeveritiesAtLeast(f.MinSeverity)
	}
	out := make([]engine.Severity, 0, len(f.Severities))
	for _, s := range f.Severities {
		if engine.AtLeast(s, f.MinSeverity) {
			out = append(out, s)
		}
	}
	return out
}

// BedFilter narrows ListBeds.
type BedFilter struct {
	FacilityID *uuid.UUID
	BedTypes   []string
}

// MetricFilter selects daily metric samples on or after Since.
type MetricFilter struct {
	FacilityID *uuid.UUID
	Since      time.Time
}

// LabFilter selects lab orders placed on or after Since.
type LabFilter struct {
	FacilityID *uuid.UUID
	Since      time.Time
}

// RegionFilter narrows ListPatientRegions. With ActiveOnly, only patients
// with an active admission count, and FacilityID matches that admission.
type RegionFilter struct {
	FacilityID *uuid.UUID
	CountyID   *uuid.UUID
	ActiveOnly bool
}

// EquipmentFilter narrows ListEquipment.
type EquipmentFilter struct {
	FacilityID       *uuid.UUID
	Types            []string
	LocationContains string
}

type AdmissionReader interface {
	ListAdmissions(ctx context.Context, f AdmissionFilter) ([]engine.AdmissionRecord, error)
	ListActiveAdmissions(ctx context.Context, f ActiveAdmissionFilter) ([]ActivePatient, error)
}

type VitalReader interface {
	// LatestVital returns the newest reading for a patient, or nil when the
	// patient has none.
	LatestVital(ctx context.Context, patientID uuid.UUID) (*engine.VitalReading, error)
	ListLiveVitals(ctx context.Context, f VitalFilter) ([]LiveVital, error)
}

type AlertReader interface {
	ListActiveAlerts(ctx context.Context, f AlertFilter) ([]engine.Alert, error)
}

type BedReader interface {
	ListBeds(ctx context.Context, f BedFilter) ([]engine.BedRecord, error)
}

type MetricReader interface {
	ListDepartmentMetrics(ctx context.Context, f MetricFilter) ([]engine.DepartmentMetricSample, error)
	ListHospitalMetrics(ctx context.Context, f MetricFilter) ([]engine.HospitalMetricSample, error)
}

type LabReader interface {
	ListLabOrders(ctx context.Context, f LabFilter) ([]engine.LabOrder, error)
}

type PatientReader interface {
	// ListPatientRegions returns one county name per matching patient; an
	// empty string marks a patient without a county.
	ListPatientRegions(ctx context.Context, f RegionFilter) ([]string, error)
}

type EquipmentReader interface {
	ListEquipment(ctx context.Context, f EquipmentFilter) ([]engine.Equipment, error)
}

type ResourceReader interface {
	StaffRatios(ctx context.Context, facilityID *uuid.UUID) ([]engine.StaffRatio, error)
	SupplyLevels(ctx context.Context, facilityID *uuid.UUID) ([]engine.SupplyLevel, error)
}

// Store is a complete upstream driver.
type Store interface {
	AdmissionReader
	VitalReader
	AlertReader
	BedReader
	MetricReader
	LabReader
	PatientReader
	EquipmentReader
	ResourceReader

	Ping(ctx context.Context) error
	Close()
}
