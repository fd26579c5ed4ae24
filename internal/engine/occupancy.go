package engine

import (
	"strings"

	"github.com/google/uuid"
)

// FacilityOccupancy is the bed census of one facility.
type FacilityOccupancy struct {
	FacilityID    uuid.UUID `json:"hospitalId"`
	FacilityName  string    `json:"hospital"`
	Total         int       `json:"total"`
	Occupied      int       `json:"occupied"`
	Available     int       `json:"available"`
	Maintenance   int       `json:"maintenance"`
	OccupancyRate int       `json:"occupancyRate"`
}

// BedTotals sums occupancy across facilities.
type BedTotals struct {
	TotalBeds          int `json:"totalBeds"`
	OccupiedBeds       int `json:"occupiedBeds"`
	OverallUtilization int `json:"overallUtilization"`
}

// AggregateOccupancy groups beds by facility in first-seen order. Every bed
// counts toward the total; beds with an unrecognised status count toward no
// status bucket.
func AggregateOccupancy(beds []BedRecord) []FacilityOccupancy {
	index := make(map[uuid.UUID]int)
	out := make([]FacilityOccupancy, 0)

	for _, b := range beds {
		i, ok := index[b.FacilityID]
		if !ok {
			name := b.FacilityName
			if name == "" {
				name = UnknownLabel
			}
			out = append(out, FacilityOccupancy{FacilityID: b.FacilityID, FacilityName: name})
			i = len(out) - 1
			index[b.FacilityID] = i
		}

		out[i].add(b.Status)
	}

	for i := range out {
		out[i].OccupancyRate = PercentOf(out[i].Occupied, out[i].Total)
	}
	return out
}

// CountBeds computes a single census over all beds regardless of facility.
func CountBeds(beds []BedRecord) FacilityOccupancy {
	var f FacilityOccupancy
	for _, b := range beds {
		f.add(b.Status)
	}
	f.OccupancyRate = PercentOf(f.Occupied, f.Total)
	return f
}

func (f *FacilityOccupancy) add(status BedStatus) {
	f.Total++
	switch BedStatus(strings.ToLower(string(status))) {
	case BedOccupied:
		f.Occupied++
	case BedAvailable:
		f.Available++
	case BedMaintenance:
		f.Maintenance++
	}
}

// SummarizeBeds totals per-facility occupancy.
func SummarizeBeds(facilities []FacilityOccupancy) BedTotals {
	var t BedTotals
	for _, f := range facilities {
		t.TotalBeds += f.Total
		t.OccupiedBeds += f.Occupied
	}
	t.OverallUtilization = PercentOf(t.OccupiedBeds, t.TotalBeds)
	return t
}
