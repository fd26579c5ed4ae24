// Package memory serves the store capabilities from a JSON dataset held in
// memory. It backs the offline report command and service tests.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/neocare/neocare/internal/engine"
)

// Dataset is a record dump shaped like the upstream tables.
type Dataset struct {
	Counties          []County                      `json:"counties"`
	Hospitals         []Hospital                    `json:"hospitals"`
	Patients          []Patient                     `json:"patients"`
	Admissions        []Admission                   `json:"admissions"`
	Vitals            []Vital                       `json:"vital_signs"`
	Alerts            []engine.Alert                `json:"alerts"`
	Beds              []engine.BedRecord            `json:"beds"`
	DepartmentMetrics []DepartmentMetric            `json:"department_metrics"`
	HospitalMetrics   []engine.HospitalMetricSample `json:"hospital_metrics"`
	LabOrders         []engine.LabOrder             `json:"lab_orders"`
	Equipment         []Equipment                   `json:"equipment"`
	StaffRatios       []StaffRatio                  `json:"staff_ratios"`
	Supplies          []Supply                      `json:"supplies"`
}

type County struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Hospital struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	CountyID *uuid.UUID `json:"county_id,omitempty"`
}

type Patient struct {
	ID            uuid.UUID  `json:"id"`
	PatientNumber string     `json:"patient_number"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	BloodType     string     `json:"blood_type,omitempty"`
	Status        string     `json:"status"`
	CountyID      *uuid.UUID `json:"county_id,omitempty"`
}

type Admission struct {
	engine.AdmissionRecord
	BedNumber          string `json:"bed_number,omitempty"`
	Diagnosis          string `json:"diagnosis,omitempty"`
	AttendingPhysician string `json:"attending_physician,omitempty"`
}

type Vital struct {
	engine.VitalReading
	AdmissionID *uuid.UUID `json:"admission_id,omitempty"`
}

type DepartmentMetric struct {
	engine.DepartmentMetricSample
	FacilityID uuid.UUID `json:"hospital_id"`
}

type Equipment struct {
	engine.Equipment
	FacilityID uuid.UUID `json:"hospital_id"`
}

type StaffRatio struct {
	engine.StaffRatio
	FacilityID uuid.UUID `json:"hospital_id"`
}

type Supply struct {
	engine.SupplyLevel
	FacilityID uuid.UUID `json:"hospital_id"`
}

// LoadFile reads a JSON dataset from path.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &d, nil
}
