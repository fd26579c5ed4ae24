package resources

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

// Beds reports bed census per facility with overall totals.
func (s *Service) Beds(ctx context.Context, facilityID *uuid.UUID) *Beds {
	b := &Beds{BedResources: []BedResource{}, Timestamp: s.now().UTC()}

	g := fanout.New(ctx, s.logger)
	g.Go("beds", func(ctx context.Context) error {
		beds, err := s.store.ListBeds(ctx, store.BedFilter{FacilityID: facilityID})
		if err != nil {
			return err
		}
		facilities := engine.AggregateOccupancy(beds)
		for _, f := range facilities {
			b.BedResources = append(b.BedResources, BedResource{
				FacilityID:  f.FacilityID,
				Ward:        f.FacilityName,
				Total:       f.Total,
				Occupied:    f.Occupied,
				Available:   f.Available,
				Maintenance: f.Maintenance,
				Utilization: f.OccupancyRate,
			})
		}
		b.BedTotals = engine.SummarizeBeds(facilities)
		return nil
	})
	b.Degraded = g.Wait()
	return b
}

// Staff reports nurse-to-patient ratios. When the ratios cannot be read the
// staffing reference table stands in.
func (s *Service) Staff(ctx context.Context, facilityID *uuid.UUID) *Staff {
	st := &Staff{
		StaffRatios: s.rules.Current().StaffFallback,
		Timestamp:   s.now().UTC(),
	}

	g := fanout.New(ctx, s.logger)
	g.Go("staff", func(ctx context.Context) error {
		ratios, err := s.store.StaffRatios(ctx, facilityID)
		if err != nil {
			return err
		}
		st.StaffRatios = ratios
		return nil
	})
	st.Degraded = g.Wait()
	if st.StaffRatios == nil {
		st.StaffRatios = []engine.StaffRatio{}
	}
	st.AverageRatio = engine.StaffRatioAverage(st.StaffRatios)
	return st
}

// Supplies reports stock levels and how many items are low. When the levels
// cannot be read the supply reference table stands in.
func (s *Service) Supplies(ctx context.Context, facilityID *uuid.UUID) *Supplies {
	sp := &Supplies{
		SupplyInventory: s.rules.Current().SupplyFallback,
		Timestamp:       s.now().UTC(),
	}

	g := fanout.New(ctx, s.logger)
	g.Go("supplies", func(ctx context.Context) error {
		levels, err := s.store.SupplyLevels(ctx, facilityID)
		if err != nil {
			return err
		}
		sp.SupplyInventory = levels
		return nil
	})
	sp.Degraded = g.Wait()
	if sp.SupplyInventory == nil {
		sp.SupplyInventory = []engine.SupplyLevel{}
	}
	sp.CriticalItems = engine.CountLowSupplies(sp.SupplyInventory)
	return sp
}
