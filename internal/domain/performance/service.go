package performance

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

// WithClock replaces the time source. The offline report pins it to the
// snapshot time of the record dump.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ClinicalKPIs averages facility metrics over the timeframe ("7d", "30d",
// anything else 90 days). Without samples, or when they cannot be read, the
// KPI baseline is reported.
func (s *Service) ClinicalKPIs(ctx context.Context, facilityID *uuid.UUID, timeframe string) *ClinicalKPIs {
	if timeframe == "" {
		timeframe = DefaultKPITimeframe
	}
	now := s.now()
	window := engine.DayWindow(now, timeframe)
	baseline := s.rules.Current().KPIBaseline

	k := &ClinicalKPIs{
		ClinicalKPIs: baseline,
		Departments:  []engine.DepartmentScore{},
		Timeframe:    timeframe,
		Timestamp:    now.UTC(),
	}
	filter := store.MetricFilter{FacilityID: facilityID, Since: window.Start}

	g := fanout.New(ctx, s.logger)
	g.Go("kpis", func(ctx context.Context) error {
		samples, err := s.store.ListHospitalMetrics(ctx, filter)
		if err != nil {
			return err
		}
		k.ClinicalKPIs = engine.ComposeKPIs(samples, baseline)
		return nil
	})
	g.Go("departments", func(ctx context.Context) error {
		samples, err := s.store.ListDepartmentMetrics(ctx, filter)
		if err != nil {
			return err
		}
		k.Departments = engine.ScoreDepartments(samples)
		return nil
	})
	k.Degraded = g.Wait()
	return k
}

// Departments scores and ranks departments over the last days days.
func (s *Service) Departments(ctx context.Context, facilityID *uuid.UUID, days int) *Departments {
	if days <= 0 {
		days = DefaultDays
	}
	now := s.now()
	window := engine.DaysBack(now, days, "")

	d := &Departments{
		Departments: []engine.DepartmentScore{},
		Summary:     engine.SummarizeCohort(nil),
		Days:        days,
		Timestamp:   now.UTC(),
	}

	g := fanout.New(ctx, s.logger)
	g.Go("departments", func(ctx context.Context) error {
		samples, err := s.store.ListDepartmentMetrics(ctx, store.MetricFilter{FacilityID: facilityID, Since: window.Start})
		if err != nil {
			return err
		}
		d.Departments = engine.ScoreDepartments(samples)
		d.Summary = engine.SummarizeCohort(d.Departments)
		return nil
	})
	d.Degraded = g.Wait()
	return d
}
