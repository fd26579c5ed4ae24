package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neocare/neocare/internal/engine"
	"github.com/neocare/neocare/internal/store"
)

// Store answers store queries from a Dataset. The dataset is never modified,
// so a Store is safe for concurrent use.
type Store struct {
	d         *Dataset
	hospitals map[uuid.UUID]Hospital
	counties  map[uuid.UUID]string
	patients  map[uuid.UUID]Patient
	admission map[uuid.UUID]Admission
}

var _ store.Store = (*Store)(nil)

func New(d *Dataset) *Store {
	if d == nil {
		d = &Dataset{}
	}
	s := &Store{
		d:         d,
		hospitals: make(map[uuid.UUID]Hospital, len(d.Hospitals)),
		counties:  make(map[uuid.UUID]string, len(d.Counties)),
		patients:  make(map[uuid.UUID]Patient, len(d.Patients)),
		admission: make(map[uuid.UUID]Admission, len(d.Admissions)),
	}
	for _, h := range d.Hospitals {
		s.hospitals[h.ID] = h
	}
	for _, c := range d.Counties {
		s.counties[c.ID] = c.Name
	}
	for _, p := range d.Patients {
		s.patients[p.ID] = p
	}
	for _, a := range d.Admissions {
		s.admission[a.ID] = a
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() {}

func matches(want *uuid.UUID, got uuid.UUID) bool {
	return want == nil || *want == got
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (s *Store) ListAdmissions(ctx context.Context, f store.AdmissionFilter) ([]engine.AdmissionRecord, error) {
	out := []engine.AdmissionRecord{}
	for _, a := range s.d.Admissions {
		if !matches(f.FacilityID, a.FacilityID) {
			continue
		}
		if f.FacilityID == nil && f.CountyID != nil {
			h, ok := s.hospitals[a.FacilityID]
			if !ok || h.CountyID == nil || *h.CountyID != *f.CountyID {
				continue
			}
		}
		if f.Since != nil && a.AdmissionDate.Before(*f.Since) {
			continue
		}
		if f.AdmissionType != "" && a.AdmissionType != f.AdmissionType {
			continue
		}
		if f.WardContains != "" && !containsFold(a.Ward, f.WardContains) {
			continue
		}
		if f.DischargedOnly && (a.Status != "discharged" || a.DischargeDate == nil) {
			continue
		}
		out = append(out, a.AdmissionRecord)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AdmissionDate.After(out[j].AdmissionDate) })
	return truncate(out, f.Limit), ctx.Err()
}

func (s *Store) ListActiveAdmissions(ctx context.Context, f store.ActiveAdmissionFilter) ([]store.ActivePatient, error) {
	out := []store.ActivePatient{}
	for _, a := range s.d.Admissions {
		if a.Status != "active" || !matches(f.FacilityID, a.FacilityID) {
			continue
		}
		if f.Ward != "" && a.Ward != f.Ward {
			continue
		}
		if f.WardContains != "" && !containsFold(a.Ward, f.WardContains) {
			continue
		}
		p, ok := s.patients[a.PatientID]
		if !ok {
			continue
		}
		out = append(out, store.ActivePatient{
			AdmissionID:        a.ID,
			FacilityID:         a.FacilityID,
			FacilityName:       s.hospitals[a.FacilityID].Name,
			PatientID:          p.ID,
			PatientNumber:      p.PatientNumber,
			FirstName:          p.FirstName,
			LastName:           p.LastName,
			DateOfBirth:        p.DateOfBirth,
			Gender:             p.Gender,
			BloodType:          p.BloodType,
			PatientStatus:      p.Status,
			AdmissionDate:      a.AdmissionDate,
			Ward:               a.Ward,
			BedNumber:          a.BedNumber,
			Diagnosis:          a.Diagnosis,
			AttendingPhysician: a.AttendingPhysician,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AdmissionDate.After(out[j].AdmissionDate) })
	return truncate(out, f.Limit), ctx.Err()
}

func (s *Store) LatestVital(ctx context.Context, patientID uuid.UUID) (*engine.VitalReading, error) {
	var latest *engine.VitalReading
	for i := range s.d.Vitals {
		v := &s.d.Vitals[i].VitalReading
		if v.PatientID != patientID {
			continue
		}
		if latest == nil || v.RecordedAt.After(latest.RecordedAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, ctx.Err()
	}
	cp := *latest
	return &cp, ctx.Err()
}

func (s *Store) ListLiveVitals(ctx context.Context, f store.VitalFilter) ([]store.LiveVital, error) {
	out := []store.LiveVital{}
	for _, v := range s.d.Vitals {
		lv := store.LiveVital{VitalReading: v.VitalReading}
		lv.PatientNumber = s.patients[v.PatientID].PatientNumber
		if v.AdmissionID != nil {
			if a, ok := s.admission[*v.AdmissionID]; ok {
				lv.Ward = a.Ward
				lv.BedNumber = a.BedNumber
				id := a.FacilityID
				lv.FacilityID = &id
			}
		}
		if f.FacilityID != nil && (lv.FacilityID == nil || *lv.FacilityID != *f.FacilityID) {
			continue
		}
		out = append(out, lv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return truncate(out, f.Limit), ctx.Err()
}

func (s *Store) ListActiveAlerts(ctx context.Context, f store.AlertFilter) ([]engine.Alert, error) {
	severities := f.SeveritySet()
	out := []engine.Alert{}
	for _, a := range s.d.Alerts {
		if a.Resolved || !matches(f.FacilityID, a.FacilityID) {
			continue
		}
		if severities != nil && !hasSeverity(severities, a.Severity) {
			continue
		}
		if f.PatientOnly && a.PatientID == nil {
			continue
		}
		if a.PatientID != nil {
			if p, ok := s.patients[*a.PatientID]; ok {
				a.PatientNumber = p.PatientNumber
				a.PatientFirstName = p.FirstName
				a.PatientLastName = p.LastName
			}
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, f.Limit), ctx.Err()
}

func hasSeverity(set []engine.Severity, s engine.Severity) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

func (s *Store) ListBeds(ctx context.Context, f store.BedFilter) ([]engine.BedRecord, error) {
	out := []engine.BedRecord{}
	for _, b := range s.d.Beds {
		if !matches(f.FacilityID, b.FacilityID) {
			continue
		}
		if len(f.BedTypes) > 0 && !hasString(f.BedTypes, b.BedType) {
			continue
		}
		if b.FacilityName == "" {
			b.FacilityName = s.hospitals[b.FacilityID].Name
		}
		out = append(out, b)
	}
	return out, ctx.Err()
}

// beforeDay reports whether a dated sample falls on a day before the one
// since is on. Both sides are compared as UTC calendar days.
func beforeDay(date, since time.Time) bool {
	return engine.StartOfDay(date).Before(engine.StartOfDay(since))
}

func hasString(set []string, v string) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}

func (s *Store) ListDepartmentMetrics(ctx context.Context, f store.MetricFilter) ([]engine.DepartmentMetricSample, error) {
	out := []engine.DepartmentMetricSample{}
	for _, m := range s.d.DepartmentMetrics {
		if !matches(f.FacilityID, m.FacilityID) || beforeDay(m.Date, f.Since) {
			continue
		}
		sample := m.DepartmentMetricSample
		if sample.FacilityName == "" {
			sample.FacilityName = s.hospitals[m.FacilityID].Name
		}
		out = append(out, sample)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, ctx.Err()
}

func (s *Store) ListHospitalMetrics(ctx context.Context, f store.MetricFilter) ([]engine.HospitalMetricSample, error) {
	out := []engine.HospitalMetricSample{}
	for _, m := range s.d.HospitalMetrics {
		if !matches(f.FacilityID, m.FacilityID) || beforeDay(m.Date, f.Since) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, ctx.Err()
}

func (s *Store) ListLabOrders(ctx context.Context, f store.LabFilter) ([]engine.LabOrder, error) {
	out := []engine.LabOrder{}
	for _, o := range s.d.LabOrders {
		if !matches(f.FacilityID, o.FacilityID) || o.OrderedAt.Before(f.Since) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderedAt.After(out[j].OrderedAt) })
	return out, ctx.Err()
}

func (s *Store) ListPatientRegions(ctx context.Context, f store.RegionFilter) ([]string, error) {
	qualifying := map[uuid.UUID]bool{}
	if f.ActiveOnly || f.FacilityID != nil {
		for _, a := range s.d.Admissions {
			if f.ActiveOnly && a.Status != "active" {
				continue
			}
			if matches(f.FacilityID, a.FacilityID) {
				qualifying[a.PatientID] = true
			}
		}
	}

	out := []string{}
	for _, p := range s.d.Patients {
		if (f.ActiveOnly || f.FacilityID != nil) && !qualifying[p.ID] {
			continue
		}
		if f.CountyID != nil && (p.CountyID == nil || *p.CountyID != *f.CountyID) {
			continue
		}
		name := ""
		if p.CountyID != nil {
			name = s.counties[*p.CountyID]
		}
		out = append(out, name)
	}
	return out, ctx.Err()
}

func (s *Store) ListEquipment(ctx context.Context, f store.EquipmentFilter) ([]engine.Equipment, error) {
	out := []engine.Equipment{}
	for _, e := range s.d.Equipment {
		if !matches(f.FacilityID, e.FacilityID) {
			continue
		}
		if len(f.Types) > 0 && !hasString(f.Types, e.Type) {
			continue
		}
		if f.LocationContains != "" && !containsFold(e.Location, f.LocationContains) {
			continue
		}
		out = append(out, e.Equipment)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, ctx.Err()
}

func (s *Store) StaffRatios(ctx context.Context, facilityID *uuid.UUID) ([]engine.StaffRatio, error) {
	out := []engine.StaffRatio{}
	for _, r := range s.d.StaffRatios {
		if matches(facilityID, r.FacilityID) {
			out = append(out, r.StaffRatio)
		}
	}
	return out, ctx.Err()
}

func (s *Store) SupplyLevels(ctx context.Context, facilityID *uuid.UUID) ([]engine.SupplyLevel, error) {
	out := []engine.SupplyLevel{}
	for _, l := range s.d.Supplies {
		if matches(facilityID, l.FacilityID) {
			out = append(out, l.SupplyLevel)
		}
	}
	return out, ctx.Err()
}
