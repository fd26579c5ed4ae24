package patients

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
	"github.com/neocare/neocare/internal/rules"
	"github.com/neocare/neocare/internal/store"
	"github.com/neocare/neocare/internal/store/memory"
)

var (
	fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	kenyatta = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001")
	amina    = uuid.MustParse("bbbbbbbb-0000-4000-8000-000000000001")
)

var errUpstream = errors.New("upstream unavailable")

type flakyStore struct {
	Store
	fail map[string]bool
}

func (f flakyStore) LatestVital(ctx context.Context, id uuid.UUID) (*engine.VitalReading, error) {
	if f.fail["vital:"+id.String()] {
		return nil, errUpstream
	}
	return f.Store.LatestVital(ctx, id)
}

func (f flakyStore) ListLiveVitals(ctx context.Context, q store.VitalFilter) ([]store.LiveVital, error) {
	if f.fail["live"] {
		return nil, errUpstream
	}
	return f.Store.ListLiveVitals(ctx, q)
}

func (f flakyStore) ListActiveAlerts(ctx context.Context, q store.AlertFilter) ([]engine.Alert, error) {
	if f.fail["alerts"] {
		return nil, errUpstream
	}
	return f.Store.ListActiveAlerts(ctx, q)
}

func (f flakyStore) ListPatientRegions(ctx context.Context, q store.RegionFilter) ([]string, error) {
	if f.fail["regions"] {
		return nil, errUpstream
	}
	return f.Store.ListPatientRegions(ctx, q)
}

func newTestService(t *testing.T, fail ...string) *Service {
	t.Helper()
	d, err := memory.LoadFile("../../store/memory/testdata/sample.json")
	require.NoError(t, err)
	f := flakyStore{Store: memory.New(d), fail: map[string]bool{}}
	for _, name := range fail {
		f.fail[name] = true
	}
	svc := NewService(f, rules.NewHolder(nil), zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestMonitoring_ClassifiesLatestVitals(t *testing.T) {
	svc := newTestService(t)

	m := svc.Monitoring(context.Background(), MonitoringQuery{})

	assert.Empty(t, m.Degraded)
	require.Len(t, m.ActivePatients, 3)

	first := m.ActivePatients[0]
	assert.Equal(t, "P-001", first.ID)
	assert.Equal(t, "Amina Wanjiru", first.Name)
	require.NotNil(t, first.Age)
	assert.Equal(t, 54, *first.Age)
	assert.Equal(t, engine.RiskCritical, first.RiskLevel)
	require.NotNil(t, first.HeartRate)
	assert.Equal(t, 135.0, *first.HeartRate)
	require.NotNil(t, first.BloodPressure)
	assert.Equal(t, "95/60", *first.BloodPressure)
	assert.Equal(t, time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC), first.LastUpdate)
	assert.Equal(t, "Dr. Achieng Odhiambo", first.AttendingPhysician)

	assert.Equal(t, engine.RiskStable, m.ActivePatients[1].RiskLevel)

	last := m.ActivePatients[2]
	assert.Equal(t, "P-003", last.ID)
	assert.Equal(t, engine.RiskStable, last.RiskLevel, "no reading is stable")
	assert.Nil(t, last.HeartRate)
	assert.Nil(t, last.BloodPressure)
	assert.Equal(t, "Not assigned", last.AttendingPhysician)
	assert.Equal(t, "ICU-7", last.Room)

	assert.Equal(t, 3, m.Summary.TotalPatients)
	assert.Equal(t, 1, m.Summary.CriticalCount)
	assert.Equal(t, 1, m.Summary.StableCount)
	assert.Equal(t, 0, m.Summary.MonitoringCount)
	assert.Equal(t, 1, m.Summary.RiskLevels[engine.RiskCritical])
	assert.Equal(t, 2, m.Summary.RiskLevels[engine.RiskStable])
}

func TestMonitoring_LiveVitalsAndAlerts(t *testing.T) {
	svc := newTestService(t)

	m := svc.Monitoring(context.Background(), MonitoringQuery{})

	require.Len(t, m.LiveVitals, 3)
	assert.Equal(t, "P-001", m.LiveVitals[0].PatientID)
	assert.Equal(t, "ICU-1", m.LiveVitals[0].Bed)
	assert.Nil(t, m.LiveVitals[2].BloodPressure, "reading without diastolic has no blood pressure")

	require.Len(t, m.ClinicalAlerts, 2)
	assert.Equal(t, "vitals", m.ClinicalAlerts[0].Category)
	assert.Equal(t, engine.SeverityCritical, m.ClinicalAlerts[0].Severity)
	assert.Equal(t, "⚠️", m.ClinicalAlerts[0].Icon)
	assert.Equal(t, "medication", m.ClinicalAlerts[1].Category)
	assert.Equal(t, engine.SeverityMedium, m.ClinicalAlerts[1].Severity)
	assert.Equal(t, "💊", m.ClinicalAlerts[1].Icon)
}

func TestMonitoring_StatusAndWardFilters(t *testing.T) {
	svc := newTestService(t)

	m := svc.Monitoring(context.Background(), MonitoringQuery{Status: "critical"})
	require.Len(t, m.ActivePatients, 1)
	assert.Equal(t, "P-001", m.ActivePatients[0].ID)
	assert.Equal(t, 1, m.Summary.TotalPatients)

	m = svc.Monitoring(context.Background(), MonitoringQuery{FacilityID: &kenyatta, Ward: "General Ward"})
	require.Len(t, m.ActivePatients, 1)
	assert.Equal(t, "P-002", m.ActivePatients[0].ID)
}

func TestMonitoring_VitalFailureDegradesOnlyThatPatient(t *testing.T) {
	svc := newTestService(t, "vital:"+amina.String())

	m := svc.Monitoring(context.Background(), MonitoringQuery{})

	assert.Equal(t, []string{"patientVitals"}, m.Degraded)
	require.Len(t, m.ActivePatients, 3)
	assert.Equal(t, engine.RiskStable, m.ActivePatients[0].RiskLevel)
	assert.Nil(t, m.ActivePatients[0].HeartRate)
	assert.NotNil(t, m.ActivePatients[1].HeartRate)
}

func TestMonitoring_FailedSectionsAreEmpty(t *testing.T) {
	svc := newTestService(t, "live", "alerts")

	m := svc.Monitoring(context.Background(), MonitoringQuery{})

	assert.Equal(t, []string{"clinicalAlerts", "liveVitals"}, m.Degraded)
	assert.NotNil(t, m.LiveVitals)
	assert.Empty(t, m.LiveVitals)
	assert.NotNil(t, m.ClinicalAlerts)
	assert.Empty(t, m.ClinicalAlerts)
	assert.Len(t, m.ActivePatients, 3)
}

func TestLiveVitals(t *testing.T) {
	svc := newTestService(t)

	v := svc.LiveVitals(context.Background(), &kenyatta, 2)

	assert.Empty(t, v.Degraded)
	assert.Equal(t, 2, v.Count)
	require.Len(t, v.Vitals, 2)
	assert.Equal(t, engine.RiskCritical, v.Vitals[0].RiskLevel)
	assert.Equal(t, "ICU", v.Vitals[0].Ward)
	require.NotNil(t, v.Vitals[0].RespiratoryRate)
	assert.Equal(t, 28.0, *v.Vitals[0].RespiratoryRate)
}

func TestLiveVitals_Degraded(t *testing.T) {
	svc := newTestService(t, "live")

	v := svc.LiveVitals(context.Background(), nil, 0)

	assert.Equal(t, []string{"vitals"}, v.Degraded)
	assert.Zero(t, v.Count)
	assert.NotNil(t, v.Vitals)
}

func TestDistribution_ActivePatients(t *testing.T) {
	svc := newTestService(t)

	d := svc.Distribution(context.Background(), nil, nil)

	assert.Empty(t, d.Degraded)
	assert.Equal(t, 3, d.TotalPatients)
	require.Len(t, d.Regions, 2)
	assert.Equal(t, engine.RegionShare{RegionName: "Nairobi", PatientCount: 2, Percentage: 66.7}, d.Regions[0])
	assert.Equal(t, engine.RegionShare{RegionName: "Mombasa", PatientCount: 1, Percentage: 33.3}, d.Regions[1])
}

func TestDistribution_FacilityScope(t *testing.T) {
	svc := newTestService(t)

	d := svc.Distribution(context.Background(), &kenyatta, nil)

	assert.Equal(t, 2, d.TotalPatients)
	require.Len(t, d.Regions, 1)
	assert.Equal(t, 100.0, d.Regions[0].Percentage)
}

func TestDistribution_FallbackOnFailure(t *testing.T) {
	svc := newTestService(t, "regions")

	d := svc.Distribution(context.Background(), nil, nil)

	fallback := rules.Default().DistributionFallback
	assert.Equal(t, []string{"regions"}, d.Degraded)
	assert.Equal(t, fallback.Regions, d.Regions)
	assert.Equal(t, fallback.TotalPatients, d.TotalPatients)
}
