package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beds(facility uuid.UUID, name string, statuses ...BedStatus) []BedRecord {
	out := make([]BedRecord, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, BedRecord{ID: uuid.New(), FacilityID: facility, FacilityName: name, Status: s})
	}
	return out
}

func TestAggregateOccupancy_Scenario(t *testing.T) {
	h := uuid.New()
	out := AggregateOccupancy(beds(h, "Kenyatta", BedOccupied, BedOccupied, BedAvailable, BedMaintenance))
	require.Len(t, out, 1)
	assert.Equal(t, FacilityOccupancy{
		FacilityID:    h,
		FacilityName:  "Kenyatta",
		Total:         4,
		Occupied:      2,
		Available:     1,
		Maintenance:   1,
		OccupancyRate: 50,
	}, out[0])
}

func TestAggregateOccupancy_GroupsByFacilityInOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	in := append(beds(b, "B", BedOccupied), beds(a, "A", BedAvailable, BedAvailable, BedOccupied)...)
	in = append(in, beds(b, "B", BedAvailable, BedAvailable)...)

	out := AggregateOccupancy(in)
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].FacilityName)
	assert.Equal(t, 3, out[0].Total)
	assert.Equal(t, 33, out[0].OccupancyRate)
	assert.Equal(t, "A", out[1].FacilityName)
	assert.Equal(t, 33, out[1].OccupancyRate)
}

func TestAggregateOccupancy_RoundsHalfUp(t *testing.T) {
	h := uuid.New()
	in := beds(h, "H", BedOccupied)
	for i := 0; i < 7; i++ {
		in = append(in, beds(h, "H", BedAvailable)...)
	}
	out := AggregateOccupancy(in)
	assert.Equal(t, 13, out[0].OccupancyRate) // 12.5 rounds up

	in = beds(h, "H", BedOccupied, BedOccupied, BedAvailable)
	assert.Equal(t, 67, AggregateOccupancy(in)[0].OccupancyRate)
}

func TestAggregateOccupancy_UnknownStatusCountsInTotal(t *testing.T) {
	h := uuid.New()
	out := AggregateOccupancy(beds(h, "", BedOccupied, "reserved"))
	require.Len(t, out, 1)
	assert.Equal(t, UnknownLabel, out[0].FacilityName)
	assert.Equal(t, 2, out[0].Total)
	assert.Equal(t, 1, out[0].Occupied)
	assert.Equal(t, 50, out[0].OccupancyRate)
}

func TestAggregateOccupancy_RateBounds(t *testing.T) {
	assert.Empty(t, AggregateOccupancy(nil))
	h := uuid.New()
	assert.Equal(t, 100, AggregateOccupancy(beds(h, "H", BedOccupied, "OCCUPIED"))[0].OccupancyRate)
	assert.Equal(t, 0, AggregateOccupancy(beds(h, "H", BedMaintenance))[0].OccupancyRate)
	assert.Equal(t, 0, CountBeds(nil).OccupancyRate)
}

func TestSummarizeBeds(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	in := append(beds(a, "A", BedOccupied, BedAvailable), beds(b, "B", BedOccupied, BedOccupied, BedMaintenance)...)
	totals := SummarizeBeds(AggregateOccupancy(in))
	assert.Equal(t, BedTotals{TotalBeds: 5, OccupiedBeds: 3, OverallUtilization: 60}, totals)
	assert.Equal(t, BedTotals{}, SummarizeBeds(nil))
}

func TestCountBeds(t *testing.T) {
	c := CountBeds(beds(uuid.New(), "ICU", BedOccupied, BedOccupied, BedOccupied, BedAvailable))
	assert.Equal(t, 4, c.Total)
	assert.Equal(t, 75, c.OccupancyRate)
}
