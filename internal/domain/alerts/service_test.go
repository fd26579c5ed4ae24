package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neocare/neocare/internal/engine"
	"github.com/neocare/neocare/internal/store"
	"github.com/neocare/neocare/internal/store/memory"
)

var (
	fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	kenyatta = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001")
)

type stubStore struct {
	alerts []engine.Alert
	err    error
}

func (s stubStore) ListActiveAlerts(ctx context.Context, f store.AlertFilter) ([]engine.Alert, error) {
	return s.alerts, s.err
}

func newService(t *testing.T, s Store) *Service {
	t.Helper()
	svc := NewService(s, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	d, err := memory.LoadFile("../../store/memory/testdata/sample.json")
	require.NoError(t, err)
	return newService(t, memory.New(d))
}

func TestCritical(t *testing.T) {
	svc := newTestService(t)

	feed := svc.Critical(context.Background(), nil, 0)

	assert.Empty(t, feed.Degraded)
	assert.Equal(t, 1, feed.TotalCount)
	require.Len(t, feed.CriticalAlerts, 1)
	a := feed.CriticalAlerts[0]
	assert.Equal(t, 1, a.Priority)
	assert.Equal(t, "59 min ago", a.TimeAgo)
	require.NotNil(t, a.Patient)
	assert.Equal(t, "Amina Wanjiru", *a.Patient)
	assert.Equal(t, engine.SeverityCritical, a.Severity)
	assert.False(t, a.IsAcknowledged)
}

func TestCritical_LimitKeepsTotalCount(t *testing.T) {
	patient := uuid.New()
	alerts := []engine.Alert{
		{ID: uuid.New(), Severity: engine.SeverityCritical, CreatedAt: fixedNow.Add(-time.Minute), PatientID: &patient, PatientFirstName: "Jane", PatientLastName: "Doe"},
		{ID: uuid.New(), Severity: engine.SeverityCritical, CreatedAt: fixedNow.Add(-2 * time.Hour)},
		{ID: uuid.New(), Severity: engine.SeverityCritical, CreatedAt: fixedNow.Add(-50 * time.Hour)},
	}
	svc := newService(t, stubStore{alerts: alerts})

	feed := svc.Critical(context.Background(), nil, 2)

	assert.Equal(t, 3, feed.TotalCount)
	require.Len(t, feed.CriticalAlerts, 2)
	assert.Equal(t, "1 min ago", feed.CriticalAlerts[0].TimeAgo)
	assert.Equal(t, "Jane Doe", *feed.CriticalAlerts[0].Patient)
	assert.Equal(t, 2, feed.CriticalAlerts[1].Priority)
	assert.Equal(t, "2 hr ago", feed.CriticalAlerts[1].TimeAgo)
	assert.Nil(t, feed.CriticalAlerts[1].Patient)
}

func TestCritical_UpstreamFailure(t *testing.T) {
	svc := newService(t, stubStore{err: errors.New("timeout")})

	feed := svc.Critical(context.Background(), &kenyatta, 5)

	assert.Equal(t, []string{"alerts"}, feed.Degraded)
	assert.NotNil(t, feed.CriticalAlerts)
	assert.Empty(t, feed.CriticalAlerts)
	assert.Equal(t, 0, feed.TotalCount)
}

func TestClinical_GroupsPatientAlerts(t *testing.T) {
	svc := newTestService(t)

	feed := svc.Clinical(context.Background(), nil)

	assert.Empty(t, feed.Degraded)
	assert.Equal(t, 2, feed.TotalAlerts)
	require.Len(t, feed.Alerts, 2)
	assert.Equal(t, "vitals", feed.Alerts[0].Category)
	assert.Equal(t, engine.SeverityCritical, feed.Alerts[0].Severity)
	assert.Equal(t, "medication", feed.Alerts[1].Category)
	assert.Equal(t, engine.SeverityMedium, feed.Alerts[1].Severity)
	assert.Equal(t, "💊", feed.Alerts[1].Icon)
}

func TestClinical_DropsAlertsWithoutPatient(t *testing.T) {
	patient := uuid.New()
	svc := newService(t, stubStore{alerts: []engine.Alert{
		{ID: uuid.New(), Severity: engine.SeverityHigh, Category: "equipment"},
		{ID: uuid.New(), Severity: engine.SeverityLow, PatientID: &patient},
	}})

	feed := svc.Clinical(context.Background(), nil)

	assert.Equal(t, 1, feed.TotalAlerts)
	require.Len(t, feed.Alerts, 1)
	assert.Equal(t, engine.GeneralCategory, feed.Alerts[0].Category)
}
