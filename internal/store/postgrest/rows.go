package postgrest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// date decodes both PostgreSQL DATE ("2006-01-02") and timestamp values.
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", s)
}

func (d *date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type hospitalRef struct {
	Name     string     `json:"name"`
	CountyID *uuid.UUID `json:"county_id"`
}

type patientRef struct {
	ID            uuid.UUID `json:"id"`
	PatientNumber string    `json:"patient_number"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	DateOfBirth   *date     `json:"date_of_birth"`
	Gender        *string   `json:"gender"`
	BloodType     *string   `json:"blood_type"`
	Status        string    `json:"status"`
}

type admissionRow struct {
	ID            uuid.UUID     `json:"id"`
	HospitalID    uuid.UUID     `json:"hospital_id"`
	PatientID     uuid.UUID     `json:"patient_id"`
	AdmissionDate time.Time     `json:"admission_date"`
	DischargeDate *time.Time    `json:"discharge_date"`
	AdmissionType string        `json:"admission_type"`
	Status        string        `json:"status"`
	Ward          *string       `json:"ward"`
	BedNumber     *string       `json:"bed_number"`
	Diagnosis     *string       `json:"diagnosis"`
	Hospital      *hospitalRef  `json:"hospital"`
	Patient       *patientRef   `json:"patient"`
	Physician     *physicianRef `json:"physician"`
}

type physicianRef struct {
	FullName string `json:"full_name"`
}

type vitalRow struct {
	ID                     uuid.UUID `json:"id"`
	PatientID              uuid.UUID `json:"patient_id"`
	HeartRate              *float64  `json:"heart_rate"`
	OxygenSaturation       *float64  `json:"oxygen_saturation"`
	BloodPressureSystolic  *float64  `json:"blood_pressure_systolic"`
	BloodPressureDiastolic *float64  `json:"blood_pressure_diastolic"`
	Temperature            *float64  `json:"temperature"`
	RespiratoryRate        *float64  `json:"respiratory_rate"`
	RecordedAt             time.Time `json:"recorded_at"`
	Patient                *struct {
		PatientNumber string `json:"patient_number"`
	} `json:"patient"`
	Admission *struct {
		Ward       *string    `json:"ward"`
		BedNumber  *string    `json:"bed_number"`
		HospitalID *uuid.UUID `json:"hospital_id"`
	} `json:"admission"`
}

type alertRow struct {
	ID             uuid.UUID   `json:"id"`
	HospitalID     uuid.UUID   `json:"hospital_id"`
	PatientID      *uuid.UUID  `json:"patient_id"`
	Severity       string      `json:"severity"`
	Category       *string     `json:"category"`
	Title          string      `json:"title"`
	Message        string      `json:"message"`
	CreatedAt      time.Time   `json:"created_at"`
	IsResolved     bool        `json:"is_resolved"`
	IsAcknowledged bool        `json:"is_acknowledged"`
	Patient        *patientRef `json:"patient"`
}

type bedRow struct {
	ID         uuid.UUID    `json:"id"`
	HospitalID uuid.UUID    `json:"hospital_id"`
	BedNumber  string       `json:"bed_number"`
	BedType    string       `json:"bed_type"`
	Status     string       `json:"status"`
	Hospital   *hospitalRef `json:"hospital"`
}

type departmentMetricRow struct {
	DepartmentID        uuid.UUID `json:"department_id"`
	Date                date      `json:"date"`
	AvgLengthOfStay     *float64  `json:"avg_length_of_stay"`
	ReadmissionRate     *float64  `json:"readmission_rate"`
	MortalityRate       *float64  `json:"mortality_rate"`
	PatientCount        *float64  `json:"patient_count"`
	PatientSatisfaction *float64  `json:"patient_satisfaction"`
	Department          *struct {
		Name     string       `json:"name"`
		Hospital *hospitalRef `json:"hospital"`
	} `json:"department"`
}

type hospitalMetricRow struct {
	HospitalID          uuid.UUID `json:"hospital_id"`
	Date                date      `json:"date"`
	AverageLengthOfStay *float64  `json:"average_length_of_stay"`
	ReadmissionRate     *float64  `json:"readmission_rate"`
	MortalityRate       *float64  `json:"mortality_rate"`
	InfectionRate       *float64  `json:"infection_rate"`
}

type labOrderRow struct {
	ID          uuid.UUID  `json:"id"`
	HospitalID  uuid.UUID  `json:"hospital_id"`
	Status      string     `json:"status"`
	OrderedAt   time.Time  `json:"ordered_at"`
	CompletedAt *time.Time `json:"completed_at"`
	TestType    *struct {
		Name string  `json:"name"`
		Icon *string `json:"icon"`
	} `json:"test_type"`
}

type patientRegionRow struct {
	County *struct {
		Name string `json:"name"`
	} `json:"county"`
}

type equipmentRow struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	EquipmentType string    `json:"equipment_type"`
	Location      *string   `json:"location"`
	Status        string    `json:"status"`
	Patient       *struct {
		PatientNumber string `json:"patient_number"`
	} `json:"patient"`
}

type staffRatioRow struct {
	Department    string  `json:"department"`
	NursesOnDuty  int     `json:"nurses_on_duty"`
	TotalPatients int     `json:"total_patients"`
	Ratio         float64 `json:"ratio"`
	TargetRatio   float64 `json:"target_ratio"`
	Status        string  `json:"status"`
}

type supplyRow struct {
	Item         string `json:"item"`
	CurrentStock int    `json:"current_stock"`
	MinimumLevel int    `json:"minimum_level"`
	MaximumLevel int    `json:"maximum_level"`
	Status       string `json:"status"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func num(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
