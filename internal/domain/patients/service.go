package patients

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/neocare/neocare/internal/engine"
	"github.com/neocare/neocare/internal/platform/fanout"
	"github.com/neocare/neocare/internal/rules"
	"github.com/neocare/neocare/internal/store"
)

type Service struct {
	store  Store
	rules  *rules.Holder
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(s Store, r *rules.Holder, logger zerolog.Logger) *Service {
	return &Service{store: s, rules: r, logger: logger, now: time.Now}
}

// Monitoring builds the monitoring board. Each patient's latest reading is
// fetched concurrently; a patient whose reading cannot be read is shown
// without vitals and the board is marked degraded under "patientVitals".
func (s *Service) Monitoring(ctx context.Context, q MonitoringQuery) *Monitoring {
	if q.Limit <= 0 {
		q.Limit = DefaultMonitoringLimit
	}
	now := s.now()
	m := &Monitoring{
		ActivePatients: []MonitoredPatient{},
		LiveVitals:     []LiveVital{},
		ClinicalAlerts: []engine.AlertGroup{},
		Timestamp:      now.UTC(),
	}

	g := fanout.New(ctx, s.logger)
	g.Go("activePatients", func(ctx context.Context) error {
		admissions, err := s.store.ListActiveAdmissions(ctx, store.ActiveAdmissionFilter{
			FacilityID: q.FacilityID,
			Ward:       q.Ward,
			Limit:      q.Limit,
		})
		if err != nil {
			return err
		}
		readings, err := store.LatestVitals(ctx, s.store, patientIDs(admissions), fanout.DefaultLimit)
		if err != nil {
			g.Fail("patientVitals", err)
		}

		out := make([]MonitoredPatient, 0, len(admissions))
		for i, a := range admissions {
			p := monitoredPatient(now, a, readings[i])
			if q.Status != "" && p.Status != q.Status {
				continue
			}
			out = append(out, p)
		}
		m.ActivePatients = out
		return nil
	})
	g.Go("liveVitals", func(ctx context.Context) error {
		vitals, err := s.store.ListLiveVitals(ctx, store.VitalFilter{FacilityID: q.FacilityID, Limit: q.Limit})
		if err != nil {
			return err
		}
		m.LiveVitals = liveVitals(vitals)
		return nil
	})
	g.Go("clinicalAlerts", func(ctx context.Context) error {
		alerts, err := s.store.ListActiveAlerts(ctx, store.AlertFilter{
			FacilityID:  q.FacilityID,
			PatientOnly: true,
			Limit:       ClinicalAlertLimit,
		})
		if err != nil {
			return err
		}
		m.ClinicalAlerts = engine.GroupAlertsByCategory(alerts)
		return nil
	})
	m.Degraded = g.Wait()
	m.Summary = summarize(m.ActivePatients)
	return m
}

// LiveVitals lists the most recent readings, newest first.
func (s *Service) LiveVitals(ctx context.Context, facilityID *uuid.UUID, limit int) *LiveVitals {
	if limit <= 0 {
		limit = DefaultLiveLimit
	}
	out := &LiveVitals{Vitals: []LiveVital{}, Timestamp: s.now().UTC()}

	g := fanout.New(ctx, s.logger)
	g.Go("vitals", func(ctx context.Context) error {
		vitals, err := s.store.ListLiveVitals(ctx, store.VitalFilter{FacilityID: facilityID, Limit: limit})
		if err != nil {
			return err
		}
		out.Vitals = liveVitals(vitals)
		return nil
	})
	out.Degraded = g.Wait()
	out.Count = len(out.Vitals)
	return out
}

// Distribution spreads patients with an active admission over their home
// counties. Patients without a county count as "Unknown Region". When the
// read fails the documented sample distribution is returned.
func (s *Service) Distribution(ctx context.Context, facilityID, countyID *uuid.UUID) *Distribution {
	fallback := s.rules.Current().DistributionFallback
	d := &Distribution{
		Regions:       fallback.Regions,
		TotalPatients: fallback.TotalPatients,
		Timestamp:     s.now().UTC(),
	}

	g := fanout.New(ctx, s.logger)
	g.Go("regions", func(ctx context.Context) error {
		labels, err := s.store.ListPatientRegions(ctx, store.RegionFilter{
			FacilityID: facilityID,
			CountyID:   countyID,
			ActiveOnly: true,
		})
		if err != nil {
			return err
		}
		d.Regions = engine.Distribute(labels, engine.UnknownRegionLabel)
		d.TotalPatients = len(labels)
		return nil
	})
	d.Degraded = g.Wait()
	return d
}

func patientIDs(admissions []store.ActivePatient) []uuid.UUID {
	ids := make([]uuid.UUID, len(admissions))
	for i, a := range admissions {
		ids[i] = a.PatientID
	}
	return ids
}

func monitoredPatient(now time.Time, a store.ActivePatient, v *engine.VitalReading) MonitoredPatient {
	p := MonitoredPatient{
		ID:                 a.PatientNumber,
		Name:               engine.FullName(a.FirstName, a.LastName),
		Age:                engine.AgeYears(now, a.DateOfBirth),
		Room:               a.BedNumber,
		Condition:          a.Diagnosis,
		Status:             a.PatientStatus,
		RiskLevel:          engine.ClassifyVitals(v),
		LastUpdate:         a.AdmissionDate,
		Ward:               a.Ward,
		AttendingPhysician: a.AttendingPhysician,
	}
	if p.Room == "" {
		p.Room = a.Ward
	}
	if p.AttendingPhysician == "" {
		p.AttendingPhysician = unassigned
	}
	if v != nil {
		p.HeartRate = v.HeartRate
		p.BloodPressure = engine.BloodPressure(v)
		p.OxygenSat = v.OxygenSaturation
		p.Temperature = v.TemperatureCelsius
		p.LastUpdate = v.RecordedAt
	}
	return p
}

func liveVitals(vitals []store.LiveVital) []LiveVital {
	out := make([]LiveVital, 0, len(vitals))
	for _, v := range vitals {
		lv := LiveVital{
			PatientID:       orUnknown(v.PatientNumber),
			HeartRate:       v.HeartRate,
			BloodPressure:   engine.BloodPressure(&v.VitalReading),
			OxygenSat:       v.OxygenSaturation,
			Temperature:     v.TemperatureCelsius,
			RespiratoryRate: v.RespiratoryRate,
			RiskLevel:       engine.ClassifyVitals(&v.VitalReading),
			Timestamp:       v.RecordedAt,
			Ward:            orUnknown(v.Ward),
			Bed:             orUnknown(v.BedNumber),
		}
		out = append(out, lv)
	}
	return out
}

func summarize(patients []MonitoredPatient) MonitoringSummary {
	s := MonitoringSummary{
		TotalPatients: len(patients),
		RiskLevels: map[engine.RiskLevel]int{
			engine.RiskStable:   0,
			engine.RiskModerate: 0,
			engine.RiskHigh:     0,
			engine.RiskCritical: 0,
		},
	}
	for _, p := range patients {
		switch p.Status {
		case "critical":
			s.CriticalCount++
		case "monitoring":
			s.MonitoringCount++
		case "stable":
			s.StableCount++
		}
		s.RiskLevels[p.RiskLevel]++
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return engine.UnknownLabel
	}
	return s
}
