package postgrest

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/neocare/neocare/internal/engine"
	"github.com/neocare/neocare/internal/store"
)

var _ store.Store = (*Store)(nil)

func limit(v url.Values, n int) {
	if n > 0 {
		v.Set("limit", strconv.Itoa(n))
	}
}

func (s *Store) ListAdmissions(ctx context.Context, f store.AdmissionFilter) ([]engine.AdmissionRecord, error) {
	v := url.Values{
		"select": {"id,hospital_id,patient_id,admission_date,discharge_date,admission_type,status,ward,hospital:hospitals!inner(county_id)"},
		"order":  {"admission_date.desc"},
	}
	if f.FacilityID != nil {
		v.Set("hospital_id", eq(f.FacilityID.String()))
	} else if f.CountyID != nil {
		v.Set("hospital.county_id", eq(f.CountyID.String()))
	}
	if f.Since != nil {
		v.Set("admission_date", gte(*f.Since))
	}
	if f.AdmissionType != "" {
		v.Set("admission_type", eq(f.AdmissionType))
	}
	if f.WardContains != "" {
		v.Set("ward", ilikeContains(f.WardContains))
	}
	if f.DischargedOnly {
		v.Set("status", eq("discharged"))
		v.Set("discharge_date", "not.is.null")
	}
	limit(v, f.Limit)

	var rows []admissionRow
	if err := s.get(ctx, "admissions", v, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.AdmissionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, engine.AdmissionRecord{
			ID:            r.ID,
			FacilityID:    r.HospitalID,
			PatientID:     r.PatientID,
			AdmissionDate: r.AdmissionDate,
			DischargeDate: r.DischargeDate,
			AdmissionType: r.AdmissionType,
			Status:        r.Status,
			Ward:          str(r.Ward),
		})
	}
	return out, nil
}

func (s *Store) ListActiveAdmissions(ctx context.Context, f store.ActiveAdmissionFilter) ([]store.ActivePatient, error) {
	v := url.Values{
		"select": {"id,hospital_id,admission_date,ward,bed_number,diagnosis," +
			"patient:patients!inner(id,patient_number,first_name,last_name,date_of_birth,gender,blood_type,status)," +
			"hospital:hospitals(name),physician:neocare_users(full_name)"},
		"status": {eq("active")},
		"order":  {"admission_date.desc"},
	}
	if f.FacilityID != nil {
		v.Set("hospital_id", eq(f.FacilityID.String()))
	}
	switch {
	case f.Ward != "":
		v.Set("ward", eq(f.Ward))
	case f.WardContains != "":
		v.Set("ward", ilikeContains(f.WardContains))
	}
	limit(v, f.Limit)

	var rows []admissionRow
	if err := s.get(ctx, "admissions", v, &rows); err != nil {
		return nil, err
	}
	out := make([]store.ActivePatient, 0, len(rows))
	for _, r := range rows {
		p := store.ActivePatient{
			AdmissionID:   r.ID,
			FacilityID:    r.HospitalID,
			AdmissionDate: r.AdmissionDate,
			Ward:          str(r.Ward),
			BedNumber:     str(r.BedNumber),
			Diagnosis:     str(r.Diagnosis),
		}
		if r.Hospital != nil {
			p.FacilityName = r.Hospital.Name
		}
		if r.Physician != nil {
			p.AttendingPhysician = r.Physician.FullName
		}
		if pt := r.Patient; pt != nil {
			p.PatientID = pt.ID
			p.PatientNumber = pt.PatientNumber
			p.FirstName = pt.FirstName
			p.LastName = pt.LastName
			p.DateOfBirth = pt.DateOfBirth.ptr()
			p.Gender = str(pt.Gender)
			p.BloodType = str(pt.BloodType)
			p.PatientStatus = pt.Status
		}
		out = append(out, p)
	}
	return out, nil
}

func (r vitalRow) reading() engine.VitalReading {
	return engine.VitalReading{
		ID:                 r.ID,
		PatientID:          r.PatientID,
		HeartRate:          r.HeartRate,
		OxygenSaturation:   r.OxygenSaturation,
		BPSystolic:         r.BloodPressureSystolic,
		BPDiastolic:        r.BloodPressureDiastolic,
		TemperatureCelsius: r.Temperature,
		RespiratoryRate:    r.RespiratoryRate,
		RecordedAt:         r.RecordedAt,
	}
}

const vitalSelect = "id,patient_id,heart_rate,oxygen_saturation,blood_pressure_systolic," +
	"blood_pressure_diastolic,temperature,respiratory_rate,recorded_at"

func (s *Store) LatestVital(ctx context.Context, patientID uuid.UUID) (*engine.VitalReading, error) {
	v := url.Values{
		"select":     {vitalSelect},
		"patient_id": {eq(patientID.String())},
		"order":      {"recorded_at.desc"},
		"limit":      {"1"},
	}
	var rows []vitalRow
	if err := s.get(ctx, "vital_signs", v, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	reading := rows[0].reading()
	return &reading, nil
}

func (s *Store) ListLiveVitals(ctx context.Context, f store.VitalFilter) ([]store.LiveVital, error) {
	embed := "admission:admissions(ward,bed_number,hospital_id)"
	v := url.Values{"order": {"recorded_at.desc"}}
	if f.FacilityID != nil {
		embed = "admission:admissions!inner(ward,bed_number,hospital_id)"
		v.Set("admission.hospital_id", eq(f.FacilityID.String()))
	}
	v.Set("select", vitalSelect+",patient:patients(patient_number),"+embed)
	limit(v, f.Limit)

	var rows []vitalRow
	if err := s.get(ctx, "vital_signs", v, &rows); err != nil {
		return nil, err
	}
	out := make([]store.LiveVital, 0, len(rows))
	for _, r := range rows {
		lv := store.LiveVital{VitalReading: r.reading()}
		if r.Patient != nil {
			lv.PatientNumber = r.Patient.PatientNumber
		}
		if a := r.Admission; a != nil {
			lv.Ward = str(a.Ward)
			lv.BedNumber = str(a.BedNumber)
			lv.FacilityID = a.HospitalID
		}
		out = append(out, lv)
	}
	return out, nil
}

func (s *Store) ListActiveAlerts(ctx context.Context, f store.AlertFilter) ([]engine.Alert, error) {
	v := url.Values{
		"select": {"id,hospital_id,patient_id,severity,category,title,message,created_at,is_resolved,is_acknowledged," +
			"patient:patients(patient_number,first_name,last_name)"},
		"is_resolved": {eq("false")},
		"order":       {"created_at.desc"},
	}
	if f.FacilityID != nil {
		v.Set("hospital_id", eq(f.FacilityID.String()))
	}
	if set := f.SeveritySet(); set != nil {
		sev := make([]string, len(set))
		for i, x := range set {
			sev[i] = string(x)
		}
		v.Set("severity", in(sev))
	}
	if f.PatientOnly {
		v.Set("patient_id", "not.is.null")
	}
	limit(v, f.Limit)

	var rows []alertRow
	if err := s.get(ctx, "alerts", v, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.Alert, 0, len(rows))
	for _, r := range rows {
		a := engine.Alert{
			ID:           r.ID,
			FacilityID:   r.HospitalID,
			PatientID:    r.PatientID,
			Severity:     engine.Severity(r.Severity),
			Category:     str(r.Category),
			Title:        r.Title,
			Message:      r.Message,
			CreatedAt:    r.CreatedAt,
			Resolved:     r.IsResolved,
			Acknowledged: r.IsAcknowledged,
		}
		if p := r.Patient; p != nil {
			a.PatientNumber = p.PatientNumber
			a.PatientFirstName = p.FirstName
			a.PatientLastName = p.LastName
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) ListBeds(ctx context.Context, f store.BedFilter) ([]engine.BedRecord, error) {
	v := url.Values{
		"select": {"id,hospital_id,bed_number,bed_type,status,hospital:hospitals(name)"},
		"order":  {"bed_number.asc"},
	}
	if f.FacilityID != nil {
		v.Set("hospital_id", eq(f.FacilityID.String()))
	}
	if len(f.BedTypes) > 0 {
		v.Set("bed_type", in(f.BedTypes))
	}

	var rows []bedRow
	if err := s.get(ctx, "beds", v, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.BedRecord, 0, len(rows))
	for _, r := range rows {
		b := engine.BedRecord{
			ID:         r.ID,
			FacilityID: r.HospitalID,
			BedNumber:  r.BedNumber,
			BedType:    r.BedType,
			Status:     engine.BedStatus(r.Status),
		}
		if r.Hospital != nil {
			b.FacilityName = r.Hospital.Name
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Store) ListDepartmentMetrics(ctx context.Context, f store.MetricFilter) ([]engine.DepartmentMetricSample, error) {
	v := url.Values{
		"select": {"department_id,date,avg_length_of_stay,readmission_rate,mortality_rate,patient_count,patient_satisfaction," +
			"department:hospital_departments!inner(name,hospital_id,hospital:hospitals(name))"},
		"date":  {gteDate(f.Since)},
		"order": {"date.desc"},
	}
	if f.FacilityID != nil {
		v.Set("department.hospital_id", eq(f.FacilityID.String()))
	}

	var rows []departmentMetricRow
	if err := s.get(ctx, "department_metrics", v, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.DepartmentMetricSample, 0, len(rows))
	for _, r := range rows {
		m := engine.DepartmentMetricSample{
			DepartmentID:    r.DepartmentID,
			Date:            r.Date.Time,
			AvgLengthOfStay: num(r.AvgLengthOfStay),
			ReadmissionRate: num(r.ReadmissionRate),
			MortalityRate:   num(r.MortalityRate),
			PatientCount:    num(r.PatientCount),
			Satisfaction:    num(r.PatientSatisfaction),
		}
		if d := r.Department; d != nil {
			m.DepartmentName = d.Name
			if d.Hospital != nil {
				m.FacilityName = d.Hospital.Name
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) ListHospitalMetrics(ctx context.Context, f store.MetricFilter) ([]engine.HospitalMetricSample, error) {
	v := url.Values{
		"select": {"hospital_id,date,average_length_of_stay,readmission_rate,mortality_rate,infection_rate"},
		"date":   {gteDate(f.Since)},
		"order":  {"date.desc"},
	}
	if f.FacilityID != nil {
		v.Set("hospital_id", eq(f.FacilityID.String()))
	}

	var rows []hospitalMetricRow
	if err := s.get(ctx, "hospital_metrics", v, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.HospitalMetricSample, 0, len(rows))
	for _, r := range rows {
		out = append(out, engine.HospitalMetricSample{
			FacilityID:      r.HospitalID,
			Date:            r.Date.Time,
			AvgLengthOfStay: num(r.AverageLengthOfStay),
			ReadmissionRate: num(r.ReadmissionRate),
			MortalityRate:   num(r.MortalityRate),
			InfectionRate:   num(r.InfectionRate),
		})
	}
	return out, nil
}

func (s *Store) ListLabOrders(ctx context.Context, f store.LabFilter) ([]engine.LabOrder, error) {
	v := url.Values{
		"select":     {"id,hospital_id,status,ordered_at,completed_at,test_type:lab_test_types(name,icon)"},
		"ordered_at": {gte(f.Since)},
		"order":      {"ordered_at.desc"},
	}
	if f.FacilityID != nil {
		v.Set("hospital_id", eq(f.FacilityID.String()))
	}

	var rows []labOrderRow
	if err := s.get(ctx, "lab_orders", v, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.LabOrder, 0, len(rows))
	for _, r := range rows {
		o := engine.LabOrder{
			ID:          r.ID,
			FacilityID:  r.HospitalID,
			Status:      r.Status,
			OrderedAt:   r.OrderedAt,
			CompletedAt: r.CompletedAt,
		}
		if t := r.TestType; t != nil {
			o.TestName = t.Name
			o.TestIcon = str(t.Icon)
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Store) ListPatientRegions(ctx context.Context, f store.RegionFilter) ([]string, error) {
	sel := "county:counties(name)"
	v := url.Values{}
	if f.ActiveOnly || f.FacilityID != nil {
		sel += ",admissions!inner(status,hospital_id)"
		if f.ActiveOnly {
			v.Set("admissions.status", eq("active"))
		}
		if f.FacilityID != nil {
			v.Set("admissions.hospital_id", eq(f.FacilityID.String()))
		}
	}
	v.Set("select", sel)
	if f.CountyID != nil {
		v.Set("county_id", eq(f.CountyID.String()))
	}

	var rows []patientRegionRow
	if err := s.get(ctx, "patients", v, &rows); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		name := ""
		if r.County != nil {
			name = r.County.Name
		}
		out = append(out, name)
	}
	return out, nil
}

func (s *Store) ListEquipment(ctx context.Context, f store.EquipmentFilter) ([]engine.Equipment, error) {
	v := url.Values{
		"select": {"id,name,equipment_type,location,status,patient:patients(patient_number)"},
		"order":  {"equipment_type.asc,name.asc"},
	}
	if f.FacilityID != nil {
		v.Set("hospital_id", eq(f.FacilityID.String()))
	}
	if len(f.Types) > 0 {
		v.Set("equipment_type", in(f.Types))
	}
	if f.LocationContains != "" {
		v.Set("location", ilikeContains(f.LocationContains))
	}

	var rows []equipmentRow
	if err := s.get(ctx, "equipment", v, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.Equipment, 0, len(rows))
	for _, r := range rows {
		e := engine.Equipment{
			ID:       r.ID,
			Name:     r.Name,
			Type:     r.EquipmentType,
			Location: str(r.Location),
			Status:   r.Status,
		}
		if r.Patient != nil {
			n := r.Patient.PatientNumber
			e.PatientNumber = &n
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) StaffRatios(ctx context.Context, facilityID *uuid.UUID) ([]engine.StaffRatio, error) {
	var rows []staffRatioRow
	args := map[string]interface{}{"hospital_uuid": facilityID, "ward_name": nil}
	if err := s.rpc(ctx, "get_nurse_patient_ratio", args, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.StaffRatio, 0, len(rows))
	for _, r := range rows {
		out = append(out, engine.StaffRatio{
			Department: r.Department,
			Nurses:     r.NursesOnDuty,
			Patients:   r.TotalPatients,
			Ratio:      r.Ratio,
			Target:     r.TargetRatio,
			Status:     r.Status,
		})
	}
	return out, nil
}

func (s *Store) SupplyLevels(ctx context.Context, facilityID *uuid.UUID) ([]engine.SupplyLevel, error) {
	var rows []supplyRow
	if err := s.rpc(ctx, "get_supply_status", map[string]interface{}{"hospital_uuid": facilityID}, &rows); err != nil {
		return nil, err
	}
	out := make([]engine.SupplyLevel, 0, len(rows))
	for _, r := range rows {
		out = append(out, engine.SupplyLevel{
			Item:    r.Item,
			Current: r.CurrentStock,
			Minimum: r.MinimumLevel,
			Maximum: r.MaximumLevel,
			Status:  r.Status,
		})
	}
	return out, nil
}
