package overview

import (
	"context"
	"time"

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

// Dashboard reads every overview section concurrently. A section whose read
// fails is filled with its fallback and listed in Degraded.
func (s *Service) Dashboard(ctx context.Context, q Query) *Dashboard {
	if q.Timeframe == "" {
		q.Timeframe = DefaultTimeframe
	}
	now := s.now()
	window := engine.HourWindow(now, q.Timeframe)
	r := s.rules.Current()

	d := &Dashboard{
		BedOccupancy: []engine.FacilityOccupancy{},
		Laboratory:   r.LabSummary(),
		Alerts:       []engine.Alert{},
		PatientDistribution: Distribution{
			Regions: r.DistributionFallback.Regions,
		},
		Timestamp: now.UTC(),
		Filters:   Filters{HospitalID: q.FacilityID, CountyID: q.CountyID, Timeframe: q.Timeframe},
	}

	g := fanout.New(ctx, s.logger)
	g.Go("admissions", func(ctx context.Context) error {
		admissions, err := s.store.ListAdmissions(ctx, store.AdmissionFilter{
			FacilityID: q.FacilityID,
			CountyID:   q.CountyID,
			Since:      &window.Start,
		})
		if err != nil {
			return err
		}
		d.Admissions = engine.AdmissionStats(now, admissions)
		return nil
	})
	g.Go("bedOccupancy", func(ctx context.Context) error {
		beds, err := s.store.ListBeds(ctx, store.BedFilter{FacilityID: q.FacilityID})
		if err != nil {
			return err
		}
		d.BedOccupancy = engine.AggregateOccupancy(beds)
		return nil
	})
	g.Go("emergency", func(ctx context.Context) error {
		admissions, err := s.store.ListAdmissions(ctx, store.AdmissionFilter{
			FacilityID:    q.FacilityID,
			Since:         &window.Start,
			AdmissionType: "emergency",
		})
		if err != nil {
			return err
		}
		d.Emergency = engine.EmergencyLoad(admissions)
		return nil
	})
	g.Go("laboratory", func(ctx context.Context) error {
		orders, err := s.store.ListLabOrders(ctx, store.LabFilter{FacilityID: q.FacilityID, Since: window.Start})
		if err != nil {
			return err
		}
		d.Laboratory = engine.LabThroughput(orders, r.LabTurnaroundHours)
		if len(d.Laboratory.TopTests) == 0 {
			d.Laboratory.TopTests = r.LabTopTestsFallback
		}
		return nil
	})
	g.Go("alerts", func(ctx context.Context) error {
		alerts, err := s.store.ListActiveAlerts(ctx, store.AlertFilter{
			FacilityID: q.FacilityID,
			Severities: []engine.Severity{engine.SeverityCritical},
		})
		if err != nil {
			return err
		}
		d.Alerts = alerts
		return nil
	})
	g.Go("patientDistribution", func(ctx context.Context) error {
		labels, err := s.store.ListPatientRegions(ctx, store.RegionFilter{CountyID: q.CountyID})
		if err != nil {
			return err
		}
		d.PatientDistribution.Regions = engine.Distribute(labels, engine.UnknownLabel)
		return nil
	})
	d.Degraded = g.Wait()
	return d
}
