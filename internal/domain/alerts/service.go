package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/neocare/neocare/internal/engine"
	"github.com/neocare/neocare/internal/platform/fanout"
	"github.com/neocare/neocare/internal/store"
)

type Service struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(s Store, logger zerolog.Logger) *Service {
	return &Service{store: s, logger: logger, now: time.Now}
}

// WithClock replaces the time source. The offline report pins it to the
// snapshot time of the record dump.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Critical lists unresolved critical alerts, newest first, capped at limit.
// TotalCount is the number of unresolved critical alerts before the cap.
func (s *Service) Critical(ctx context.Context, facilityID *uuid.UUID, limit int) *CriticalFeed {
	if limit <= 0 {
		limit = DefaultCriticalLimit
	}
	now := s.now()
	feed := &CriticalFeed{CriticalAlerts: []CriticalAlert{}, Timestamp: now.UTC()}

	g := fanout.New(ctx, s.logger)
	g.Go("alerts", func(ctx context.Context) error {
		alerts, err := s.store.ListActiveAlerts(ctx, store.AlertFilter{
			FacilityID: facilityID,
			Severities: []engine.Severity{engine.SeverityCritical},
		})
		if err != nil {
			return err
		}
		feed.TotalCount = len(alerts)
		if len(alerts) > limit {
			alerts = alerts[:limit]
		}
		for i, a := range alerts {
			feed.CriticalAlerts = append(feed.CriticalAlerts, criticalAlert(now, i+1, a))
		}
		return nil
	})
	feed.Degraded = g.Wait()
	return feed
}

func criticalAlert(now time.Time, priority int, a engine.Alert) CriticalAlert {
	var patient *string
	if a.PatientID != nil {
		name := engine.FullName(a.PatientFirstName, a.PatientLastName)
		patient = &name
	}
	return CriticalAlert{
		ID:             a.ID,
		Severity:       a.Severity,
		Title:          a.Title,
		Message:        a.Message,
		TimeAgo:        engine.FormatTimeAgo(now, a.CreatedAt),
		CreatedAt:      a.CreatedAt,
		Priority:       priority,
		Patient:        patient,
		Category:       a.Category,
		IsAcknowledged: a.Acknowledged,
	}
}

// Clinical groups unresolved patient alerts by category.
func (s *Service) Clinical(ctx context.Context, facilityID *uuid.UUID) *ClinicalFeed {
	feed := &ClinicalFeed{Alerts: []engine.AlertGroup{}, Timestamp: s.now().UTC()}

	g := fanout.New(ctx, s.logger)
	g.Go("alerts", func(ctx context.Context) error {
		alerts, err := s.store.ListActiveAlerts(ctx, store.AlertFilter{FacilityID: facilityID, PatientOnly: true})
		if err != nil {
			return err
		}
		// Drivers may ignore PatientOnly.
		alerts = engine.PatientAlerts(alerts)
		feed.Alerts = engine.GroupAlertsByCategory(alerts)
		feed.TotalAlerts = len(alerts)
		return nil
	})
	feed.Degraded = g.Wait()
	return feed
}
