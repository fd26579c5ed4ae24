package overview

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
)

// flakyStore fails the reads named in fail.
type flakyStore struct {
	Store
	fail map[string]bool
}

var errUpstream = errors.New("upstream unavailable")

func (f flakyStore) ListBeds(ctx context.Context, q store.BedFilter) ([]engine.BedRecord, error) {
	if f.fail["beds"] {
		return nil, errUpstream
	}
	return f.Store.ListBeds(ctx, q)
}

func (f flakyStore) ListPatientRegions(ctx context.Context, q store.RegionFilter) ([]string, error) {
	if f.fail["regions"] {
		return nil, errUpstream
	}
	return f.Store.ListPatientRegions(ctx, q)
}

func (f flakyStore) ListLabOrders(ctx context.Context, q store.LabFilter) ([]engine.LabOrder, error) {
	if f.fail["labs"] {
		return nil, errUpstream
	}
	return f.Store.ListLabOrders(ctx, q)
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

func TestDashboard_AllSections(t *testing.T) {
	svc := newTestService(t)

	d := svc.Dashboard(context.Background(), Query{})

	assert.Empty(t, d.Degraded)
	assert.Equal(t, "24h", d.Filters.Timeframe)

	assert.Equal(t, 2, d.Admissions.Admissions24h)
	assert.Equal(t, 2, d.Admissions.TotalAdmissions)
	assert.Equal(t, 1, d.Admissions.CaseFindingsToday)
	assert.Equal(t, 2, d.Admissions.Trend24h)

	assert.Equal(t, 1, d.Emergency.TotalPatients)
	assert.Equal(t, 1, d.Emergency.CurrentLoad)

	require.Len(t, d.BedOccupancy, 2)
	assert.Equal(t, "Kenyatta National", d.BedOccupancy[0].FacilityName)
	assert.Equal(t, 50, d.BedOccupancy[0].OccupancyRate)

	assert.Equal(t, 3, d.Laboratory.TestsToday)
	assert.Equal(t, 2, d.Laboratory.CompletedTests)
	assert.Equal(t, 2.5, d.Laboratory.AvgTurnaroundTime)
	require.NotEmpty(t, d.Laboratory.TopTests)
	assert.Equal(t, "CBC", d.Laboratory.TopTests[0].TestType)

	require.Len(t, d.Alerts, 1)
	assert.Equal(t, engine.SeverityCritical, d.Alerts[0].Severity)

	regions := d.PatientDistribution.Regions
	require.Len(t, regions, 3)
	assert.Equal(t, "Nairobi", regions[0].RegionName)
	assert.Equal(t, 50.0, regions[0].Percentage)
	assert.Equal(t, engine.UnknownLabel, regions[2].RegionName)
}

func TestDashboard_FacilityFilter(t *testing.T) {
	svc := newTestService(t)

	d := svc.Dashboard(context.Background(), Query{FacilityID: &kenyatta, Timeframe: "7d"})

	require.Len(t, d.BedOccupancy, 1)
	assert.Equal(t, 4, d.BedOccupancy[0].Total)
	assert.Equal(t, "7d", d.Filters.Timeframe)
	assert.Equal(t, &kenyatta, d.Filters.HospitalID)
}

func TestDashboard_DegradedSectionsUseFallbacks(t *testing.T) {
	svc := newTestService(t, "beds", "regions", "labs")

	d := svc.Dashboard(context.Background(), Query{})

	assert.Equal(t, []string{"bedOccupancy", "laboratory", "patientDistribution"}, d.Degraded)
	assert.NotNil(t, d.BedOccupancy)
	assert.Empty(t, d.BedOccupancy)

	fallback := rules.Default()
	assert.Equal(t, fallback.DistributionFallback.Regions, d.PatientDistribution.Regions)
	assert.Equal(t, fallback.LabTurnaroundHours, d.Laboratory.AvgTurnaroundTime)
	assert.Equal(t, fallback.LabTopTestsFallback, d.Laboratory.TopTests)

	// Healthy sections are unaffected.
	assert.Equal(t, 2, d.Admissions.Admissions24h)
	assert.Len(t, d.Alerts, 1)
}

func TestDashboard_EmptyLabWindowUsesFallbackTopTests(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return fixedNow.Add(30 * 24 * time.Hour) }

	d := svc.Dashboard(context.Background(), Query{Timeframe: "1h"})

	assert.Zero(t, d.Laboratory.TestsToday)
	assert.Equal(t, rules.Default().LabTopTestsFallback, d.Laboratory.TopTests)
	assert.Zero(t, d.Admissions.TotalAdmissions)
}
