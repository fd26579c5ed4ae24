package engine

import (
	"sort"
	"strings"
)

// Fallback labels for missing grouping keys.
const (
	UnknownLabel       = "Unknown"
	UnknownRegionLabel = "Unknown Region"
)

// TopRegions is the number of regions a distribution keeps.
const TopRegions = 5

// RegionShare is one region's share of a population.
type RegionShare struct {
	RegionName   string  `json:"regionName" yaml:"region_name"`
	PatientCount int     `json:"patientCount" yaml:"patient_count"`
	Percentage   float64 `json:"percentage" yaml:"percentage"`
}

// Distribute counts entities per region label and returns the five largest
// regions, largest first. Empty labels count under fallback. Percentages are
// shares of the full population with one decimal place, so the truncated list
// may sum to less than 100. Equal counts keep first-seen order.
func Distribute(labels []string, fallback string) []RegionShare {
	index := make(map[string]int)
	regions := make([]RegionShare, 0)

	for _, l := range labels {
		name := strings.TrimSpace(l)
		if name == "" {
			name = fallback
		}
		i, ok := index[name]
		if !ok {
			regions = append(regions, RegionShare{RegionName: name})
			i = len(regions) - 1
			index[name] = i
		}
		regions[i].PatientCount++
	}

	total := len(labels)
	for i := range regions {
		regions[i].Percentage = ShareOf(regions[i].PatientCount, total)
	}
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].PatientCount > regions[j].PatientCount
	})
	if len(regions) > TopRegions {
		regions = regions[:TopRegions]
	}
	return regions
}
