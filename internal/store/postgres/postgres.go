// Package postgres reads the dashboard's upstream records from PostgreSQL
// through a pgx pool. The schema lives in the top-level migrations package.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neocare/neocare/internal/engine"
	"github.com/neocare/neocare/internal/store"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store implements store.Store.
type Store struct {
	pool *pgxpool.Pool
	q    querier
}

var _ store.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

// Pool exposes the underlying pool for health statistics and migrations.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }

const admissionCols = `a.id, a.hospital_id, a.patient_id, a.admission_date, a.discharge_date,
	a.admission_type, a.status, COALESCE(a.ward, '')`

func (s *Store) ListAdmissions(ctx context.Context, f store.AdmissionFilter) ([]engine.AdmissionRecord, error) {
	q := newSelect(`SELECT ` + admissionCols + ` FROM admissions a JOIN hospitals h ON h.id = a.hospital_id`)
	if f.FacilityID != nil {
		q.Where("a.hospital_id = $%d", *f.FacilityID)
	} else if f.CountyID != nil {
		q.Where("h.county_id = $%d", *f.CountyID)
	}
	if f.Since != nil {
		q.Where("a.admission_date >= $%d", *f.Since)
	}
	if f.AdmissionType != "" {
		q.Where("a.admission_type = $%d", f.AdmissionType)
	}
	if f.WardContains != "" {
		q.Where("a.ward ILIKE $%d", likeContains(f.WardContains))
	}
	if f.DischargedOnly {
		q.WhereRaw("a.status = 'discharged' AND a.discharge_date IS NOT NULL")
	}
	q.OrderBy("a.admission_date DESC").Limit(f.Limit)

	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list admissions: %w", err)
	}
	defer rows.Close()

	out := []engine.AdmissionRecord{}
	for rows.Next() {
		var a engine.AdmissionRecord
		if err := rows.Scan(&a.ID, &a.FacilityID, &a.PatientID, &a.AdmissionDate, &a.DischargeDate,
			&a.AdmissionType, &a.Status, &a.Ward); err != nil {
			return nil, fmt.Errorf("scan admission: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const activePatientCols = `a.id, a.hospital_id, h.name, p.id, p.patient_number, p.first_name, p.last_name,
	p.date_of_birth, COALESCE(p.gender, ''), COALESCE(p.blood_type, ''), p.status,
	a.admission_date, COALESCE(a.ward, ''), COALESCE(a.bed_number, ''), COALESCE(a.diagnosis, ''),
	COALESCE(u.full_name, '')`

func (s *Store) ListActiveAdmissions(ctx context.Context, f store.ActiveAdmissionFilter) ([]store.ActivePatient, error) {
	q := newSelect(`SELECT ` + activePatientCols + `
		FROM admissions a
		JOIN patients p ON p.id = a.patient_id
		JOIN hospitals h ON h.id = a.hospital_id
		LEFT JOIN neocare_users u ON u.id = a.attending_physician_id`)
	q.WhereRaw("a.status = 'active'")
	if f.FacilityID != nil {
		q.Where("a.hospital_id = $%d", *f.FacilityID)
	}
	if f.Ward != "" {
		q.Where("a.ward = $%d", f.Ward)
	}
	if f.WardContains != "" {
		q.Where("a.ward ILIKE $%d", likeContains(f.WardContains))
	}
	q.OrderBy("a.admission_date DESC").Limit(f.Limit)

	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list active admissions: %w", err)
	}
	defer rows.Close()

	out := []store.ActivePatient{}
	for rows.Next() {
		var p store.ActivePatient
		if err := rows.Scan(&p.AdmissionID, &p.FacilityID, &p.FacilityName, &p.PatientID, &p.PatientNumber,
			&p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.BloodType, &p.PatientStatus,
			&p.AdmissionDate, &p.Ward, &p.BedNumber, &p.Diagnosis, &p.AttendingPhysician); err != nil {
			return nil, fmt.Errorf("scan active admission: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const vitalCols = `v.id, v.patient_id, v.heart_rate::float8, v.oxygen_saturation::float8,
	v.blood_pressure_systolic::float8, v.blood_pressure_diastolic::float8,
	v.temperature::float8, v.respiratory_rate::float8, v.recorded_at`

func vitalDest(v *engine.VitalReading) []interface{} {
	return []interface{}{&v.ID, &v.PatientID, &v.HeartRate, &v.OxygenSaturation,
		&v.BPSystolic, &v.BPDiastolic, &v.TemperatureCelsius, &v.RespiratoryRate, &v.RecordedAt}
}

func (s *Store) LatestVital(ctx context.Context, patientID uuid.UUID) (*engine.VitalReading, error) {
	var v engine.VitalReading
	err := s.q.QueryRow(ctx, `SELECT `+vitalCols+` FROM vital_signs v
		WHERE v.patient_id = $1 ORDER BY v.recorded_at DESC LIMIT 1`, patientID).Scan(vitalDest(&v)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest vital: %w", err)
	}
	return &v, nil
}

func (s *Store) ListLiveVitals(ctx context.Context, f store.VitalFilter) ([]store.LiveVital, error) {
	q := newSelect(`SELECT ` + vitalCols + `, COALESCE(p.patient_number, ''),
		COALESCE(a.ward, ''), COALESCE(a.bed_number, ''), a.hospital_id
		FROM vital_signs v
		LEFT JOIN patients p ON p.id = v.patient_id
		LEFT JOIN admissions a ON a.id = v.admission_id`)
	if f.FacilityID != nil {
		q.Where("a.hospital_id = $%d", *f.FacilityID)
	}
	q.OrderBy("v.recorded_at DESC").Limit(f.Limit)

	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list live vitals: %w", err)
	}
	defer rows.Close()

	out := []store.LiveVital{}
	for rows.Next() {
		var lv store.LiveVital
		dest := append(vitalDest(&lv.VitalReading), &lv.PatientNumber, &lv.Ward, &lv.BedNumber, &lv.FacilityID)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan vital: %w", err)
		}
		out = append(out, lv)
	}
	return out, rows.Err()
}

const alertCols = `al.id, al.hospital_id, al.patient_id, al.severity, COALESCE(al.category, ''),
	al.title, al.message, al.created_at, al.is_resolved, al.is_acknowledged,
	COALESCE(p.patient_number, ''), COALESCE(p.first_name, ''), COALESCE(p.last_name, '')`

func activeAlertsQuery(f store.AlertFilter) *selectQuery {
	q := newSelect(`SELECT ` + alertCols + ` FROM alerts al LEFT JOIN patients p ON p.id = al.patient_id`)
	q.WhereRaw("NOT al.is_resolved")
	if f.FacilityID != nil {
		q.Where("al.hospital_id = $%d", *f.FacilityID)
	}
	if set := f.SeveritySet(); set != nil {
		sev := make([]string, len(set))
		for i, v := range set {
			sev[i] = string(v)
		}
		q.Where("al.severity = ANY($%d)", sev)
	}
	if f.PatientOnly {
		q.WhereRaw("al.patient_id IS NOT NULL")
	}
	return q.OrderBy("al.created_at DESC").Limit(f.Limit)
}

func (s *Store) ListActiveAlerts(ctx context.Context, f store.AlertFilter) ([]engine.Alert, error) {
	q := activeAlertsQuery(f)
	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	out := []engine.Alert{}
	for rows.Next() {
		var a engine.Alert
		var sev string
		if err := rows.Scan(&a.ID, &a.FacilityID, &a.PatientID, &sev, &a.Category,
			&a.Title, &a.Message, &a.CreatedAt, &a.Resolved, &a.Acknowledged,
			&a.PatientNumber, &a.PatientFirstName, &a.PatientLastName); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Severity = engine.Severity(sev)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListBeds(ctx context.Context, f store.BedFilter) ([]engine.BedRecord, error) {
	q := newSelect(`SELECT b.id, b.hospital_id, h.name, b.bed_number, b.bed_type, b.status
		FROM beds b JOIN hospitals h ON h.id = b.hospital_id`)
	if f.FacilityID != nil {
		q.Where("b.hospital_id = $%d", *f.FacilityID)
	}
	if len(f.BedTypes) > 0 {
		q.Where("b.bed_type = ANY($%d)", f.BedTypes)
	}
	q.OrderBy("h.name, b.bed_number")

	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list beds: %w", err)
	}
	defer rows.Close()

	out := []engine.BedRecord{}
	for rows.Next() {
		var b engine.BedRecord
		var status string
		if err := rows.Scan(&b.ID, &b.FacilityID, &b.FacilityName, &b.BedNumber, &b.BedType, &status); err != nil {
			return nil, fmt.Errorf("scan bed: %w", err)
		}
		b.Status = engine.BedStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

// sinceDate is the calendar day a metric window opens on. Metric rows are
// dated, so the comparison is by day and the first day is kept.
func sinceDate(t time.Time) string { return t.UTC().Format("2006-01-02") }

func departmentMetricsQuery(f store.MetricFilter) *selectQuery {
	q := newSelect(`SELECT m.department_id, d.name, h.name, m.date,
		COALESCE(m.avg_length_of_stay, 0)::float8, COALESCE(m.readmission_rate, 0)::float8,
		COALESCE(m.mortality_rate, 0)::float8, COALESCE(m.patient_count, 0)::float8,
		COALESCE(m.patient_satisfaction, 0)::float8
		FROM department_metrics m
		JOIN hospital_departments d ON d.id = m.department_id
		JOIN hospitals h ON h.id = d.hospital_id`)
	q.Where("m.date::date >= $%d::date", sinceDate(f.Since))
	if f.FacilityID != nil {
		q.Where("d.hospital_id = $%d", *f.FacilityID)
	}
	return q.OrderBy("m.date DESC")
}

func hospitalMetricsQuery(f store.MetricFilter) *selectQuery {
	q := newSelect(`SELECT hm.hospital_id, hm.date,
		COALESCE(hm.average_length_of_stay, 0)::float8, COALESCE(hm.readmission_rate, 0)::float8,
		COALESCE(hm.mortality_rate, 0)::float8, COALESCE(hm.infection_rate, 0)::float8
		FROM hospital_metrics hm`)
	q.Where("hm.date::date >= $%d::date", sinceDate(f.Since))
	if f.FacilityID != nil {
		q.Where("hm.hospital_id = $%d", *f.FacilityID)
	}
	return q.OrderBy("hm.date DESC")
}

func (s *Store) ListDepartmentMetrics(ctx context.Context, f store.MetricFilter) ([]engine.DepartmentMetricSample, error) {
	q := departmentMetricsQuery(f)
	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list department metrics: %w", err)
	}
	defer rows.Close()

	out := []engine.DepartmentMetricSample{}
	for rows.Next() {
		var m engine.DepartmentMetricSample
		if err := rows.Scan(&m.DepartmentID, &m.DepartmentName, &m.FacilityName, &m.Date,
			&m.AvgLengthOfStay, &m.ReadmissionRate, &m.MortalityRate, &m.PatientCount, &m.Satisfaction); err != nil {
			return nil, fmt.Errorf("scan department metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListHospitalMetrics(ctx context.Context, f store.MetricFilter) ([]engine.HospitalMetricSample, error) {
	q := hospitalMetricsQuery(f)
	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list hospital metrics: %w", err)
	}
	defer rows.Close()

	out := []engine.HospitalMetricSample{}
	for rows.Next() {
		var m engine.HospitalMetricSample
		if err := rows.Scan(&m.FacilityID, &m.Date, &m.AvgLengthOfStay, &m.ReadmissionRate,
			&m.MortalityRate, &m.InfectionRate); err != nil {
			return nil, fmt.Errorf("scan hospital metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListLabOrders(ctx context.Context, f store.LabFilter) ([]engine.LabOrder, error) {
	q := newSelect(`SELECT o.id, o.hospital_id, o.status, o.ordered_at, o.completed_at,
		COALESCE(t.name, ''), COALESCE(t.icon, '')
		FROM lab_orders o LEFT JOIN lab_test_types t ON t.id = o.test_type_id`)
	q.Where("o.ordered_at >= $%d", f.Since)
	if f.FacilityID != nil {
		q.Where("o.hospital_id = $%d", *f.FacilityID)
	}
	q.OrderBy("o.ordered_at DESC")

	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list lab orders: %w", err)
	}
	defer rows.Close()

	out := []engine.LabOrder{}
	for rows.Next() {
		var o engine.LabOrder
		if err := rows.Scan(&o.ID, &o.FacilityID, &o.Status, &o.OrderedAt, &o.CompletedAt,
			&o.TestName, &o.TestIcon); err != nil {
			return nil, fmt.Errorf("scan lab order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) ListPatientRegions(ctx context.Context, f store.RegionFilter) ([]string, error) {
	q := newSelect(`SELECT COALESCE(c.name, '') FROM patients p LEFT JOIN counties c ON c.id = p.county_id`)
	switch {
	case f.ActiveOnly && f.FacilityID != nil:
		q.Where(`EXISTS (SELECT 1 FROM admissions a
			WHERE a.patient_id = p.id AND a.status = 'active' AND a.hospital_id = $%d)`, *f.FacilityID)
	case f.ActiveOnly:
		q.WhereRaw(`EXISTS (SELECT 1 FROM admissions a WHERE a.patient_id = p.id AND a.status = 'active')`)
	case f.FacilityID != nil:
		q.Where(`EXISTS (SELECT 1 FROM admissions a WHERE a.patient_id = p.id AND a.hospital_id = $%d)`, *f.FacilityID)
	}
	if f.CountyID != nil {
		q.Where("p.county_id = $%d", *f.CountyID)
	}

	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list patient regions: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan patient region: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) ListEquipment(ctx context.Context, f store.EquipmentFilter) ([]engine.Equipment, error) {
	q := newSelect(`SELECT e.id, e.name, e.equipment_type, COALESCE(e.location, ''), e.status, p.patient_number
		FROM equipment e LEFT JOIN patients p ON p.id = e.current_patient_id`)
	if f.FacilityID != nil {
		q.Where("e.hospital_id = $%d", *f.FacilityID)
	}
	if len(f.Types) > 0 {
		q.Where("e.equipment_type = ANY($%d)", f.Types)
	}
	if f.LocationContains != "" {
		q.Where("e.location ILIKE $%d", likeContains(f.LocationContains))
	}
	q.OrderBy("e.equipment_type, e.name")

	rows, err := s.q.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	out := []engine.Equipment{}
	for rows.Next() {
		var e engine.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Location, &e.Status, &e.PatientNumber); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) StaffRatios(ctx context.Context, facilityID *uuid.UUID) ([]engine.StaffRatio, error) {
	rows, err := s.q.Query(ctx, `SELECT department, nurses_on_duty, total_patients,
		ratio::float8, target_ratio::float8, status
		FROM get_nurse_patient_ratio($1::uuid, NULL::text)`, facilityID)
	if err != nil {
		return nil, fmt.Errorf("staff ratios: %w", err)
	}
	defer rows.Close()

	out := []engine.StaffRatio{}
	for rows.Next() {
		var r engine.StaffRatio
		if err := rows.Scan(&r.Department, &r.Nurses, &r.Patients, &r.Ratio, &r.Target, &r.Status); err != nil {
			return nil, fmt.Errorf("scan staff ratio: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SupplyLevels(ctx context.Context, facilityID *uuid.UUID) ([]engine.SupplyLevel, error) {
	rows, err := s.q.Query(ctx, `SELECT item, current_stock, minimum_level, maximum_level, status
		FROM get_supply_status($1::uuid)`, facilityID)
	if err != nil {
		return nil, fmt.Errorf("supply levels: %w", err)
	}
	defer rows.Close()

	out := []engine.SupplyLevel{}
	for rows.Next() {
		var l engine.SupplyLevel
		if err := rows.Scan(&l.Item, &l.Current, &l.Minimum, &l.Maximum, &l.Status); err != nil {
			return nil, fmt.Errorf("scan supply level: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
