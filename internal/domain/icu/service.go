package icu

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

// CommandCenter reads the ICU census, patients, devices and escalated alerts
// concurrently. Average stay falls back to the configured default when no
// discharged ICU admission is available.
func (s *Service) CommandCenter(ctx context.Context, facilityID *uuid.UUID) *CommandCenter {
	now := s.now()
	cc := &CommandCenter{
		Capacity: Capacity{AverageStay: s.rules.Current().ICUAverageStayDays},
		Patients: []Patient{},
		Devices: engine.DeviceSummary{
			Devices: []engine.Device{},
		},
		Alerts:    []engine.Alert{},
		Timestamp: now.UTC(),
	}

	g := fanout.New(ctx, s.logger)
	g.Go("capacity", func(ctx context.Context) error {
		beds, err := s.store.ListBeds(ctx, store.BedFilter{FacilityID: facilityID, BedTypes: []string{icuBedType}})
		if err != nil {
			return err
		}
		census := engine.CountBeds(beds)
		cc.Capacity.TotalBeds = census.Total
		cc.Capacity.AvailableBeds = census.Available
		cc.Capacity.OccupiedBeds = census.Occupied
		cc.Capacity.MaintenanceBeds = census.Maintenance
		cc.Capacity.OccupancyRate = census.OccupancyRate
		return nil
	})
	g.Go("averageStay", func(ctx context.Context) error {
		admissions, err := s.store.ListAdmissions(ctx, store.AdmissionFilter{
			FacilityID:     facilityID,
			WardContains:   wardMatch,
			DischargedOnly: true,
			Limit:          stayHistory,
		})
		if err != nil {
			return err
		}
		if days, ok := engine.AverageStayDays(admissions); ok {
			cc.Capacity.AverageStay = days
		}
		return nil
	})
	g.Go("patients", func(ctx context.Context) error {
		admissions, err := s.store.ListActiveAdmissions(ctx, store.ActiveAdmissionFilter{
			FacilityID:   facilityID,
			WardContains: wardMatch,
		})
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(admissions))
		for i, a := range admissions {
			ids[i] = a.PatientID
		}
		readings, err := store.LatestVitals(ctx, s.store, ids, fanout.DefaultLimit)
		if err != nil {
			g.Fail("patientVitals", err)
		}
		patients := make([]Patient, 0, len(admissions))
		for i, a := range admissions {
			patients = append(patients, icuPatient(now, a, readings[i]))
		}
		cc.Patients = patients
		return nil
	})
	g.Go("devices", func(ctx context.Context) error {
		equipment, err := s.store.ListEquipment(ctx, store.EquipmentFilter{
			FacilityID:       facilityID,
			Types:            deviceTypes,
			LocationContains: wardMatch,
		})
		if err != nil {
			return err
		}
		cc.Devices = engine.DeviceUtilization(equipment)
		return nil
	})
	g.Go("alerts", func(ctx context.Context) error {
		alerts, err := s.store.ListActiveAlerts(ctx, store.AlertFilter{
			FacilityID:  facilityID,
			MinSeverity: escalatedFrom,
		})
		if err != nil {
			return err
		}
		cc.Capacity.ActiveAlerts = len(alerts)
		if len(alerts) > alertLimit {
			alerts = alerts[:alertLimit]
		}
		cc.Alerts = alerts
		return nil
	})
	cc.Degraded = g.Wait()
	return cc
}

func icuPatient(now time.Time, a store.ActivePatient, v *engine.VitalReading) Patient {
	p := Patient{
		ID:                 a.PatientNumber,
		Name:               engine.PatientInitials(a.FirstName, a.LastName),
		Age:                engine.AgeYears(now, a.DateOfBirth),
		Diagnosis:          a.Diagnosis,
		RiskLevel:          engine.ClassifyVitals(v),
		Bed:                a.BedNumber,
		AdmissionDate:      a.AdmissionDate,
		AttendingPhysician: a.AttendingPhysician,
	}
	if v != nil {
		p.HeartRate = v.HeartRate
		p.BloodPressure = engine.BloodPressure(v)
		p.OxygenSat = v.OxygenSaturation
		p.Temperature = v.TemperatureCelsius
	}
	return p
}
