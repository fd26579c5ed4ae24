package laboratory

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

// Metrics summarises lab orders placed within the timeframe ("1h", "24h",
// anything else seven days).
func (s *Service) Metrics(ctx context.Context, facilityID *uuid.UUID, timeframe string) *Metrics {
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	now := s.now()
	window := engine.HourWindow(now, timeframe)
	r := s.rules.Current()

	m := &Metrics{LabSummary: r.LabSummary(), Timeframe: timeframe, Timestamp: now.UTC()}

	g := fanout.New(ctx, s.logger)
	g.Go("laboratory", func(ctx context.Context) error {
		orders, err := s.store.ListLabOrders(ctx, store.LabFilter{FacilityID: facilityID, Since: window.Start})
		if err != nil {
			return err
		}
		m.LabSummary = engine.LabThroughput(orders, r.LabTurnaroundHours)
		return nil
	})
	m.Degraded = g.Wait()
	return m
}
