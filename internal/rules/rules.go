// Package rules holds the reference tables the dashboard falls back to when
// an upstream section cannot be read. The tables load from an optional YAML
// file and can be swapped at runtime through a Holder.
package rules

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/neocare/neocare/internal/engine"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid rules")

// Distribution is a documented sample patient distribution.
type Distribution struct {
	Regions       []engine.RegionShare `yaml:"regions"`
	TotalPatients int                  `yaml:"total_patients"`
}

// Rules are the configurable reference values.
type Rules struct {
	KPIBaseline          engine.KPIBaseline   `yaml:"kpi_baseline"`
	LabTurnaroundHours   float64              `yaml:"lab_turnaround_default_hours"`
	ICUAverageStayDays   float64              `yaml:"icu_average_stay_days"`
	DistributionFallback Distribution         `yaml:"distribution_fallback"`
	LabTopTestsFallback  []engine.TestCount   `yaml:"lab_top_tests_fallback"`
	StaffFallback        []engine.StaffRatio  `yaml:"staff_fallback"`
	SupplyFallback       []engine.SupplyLevel `yaml:"supply_fallback"`
}

// Default returns the built-in tables.
func Default() *Rules {
	return &Rules{
		KPIBaseline:        engine.DefaultKPIBaseline(),
		LabTurnaroundHours: engine.DefaultLabTurnaroundHours,
		ICUAverageStayDays: 4.2,
		DistributionFallback: Distribution{
			Regions: []engine.RegionShare{
				{RegionName: "Nairobi Central", PatientCount: 145, Percentage: 35.2},
				{RegionName: "Westlands", PatientCount: 98, Percentage: 23.8},
				{RegionName: "Eastlands", PatientCount: 76, Percentage: 18.4},
				{RegionName: "Kileleshwa", PatientCount: 54, Percentage: 13.1},
				{RegionName: "Other Areas", PatientCount: 39, Percentage: 9.5},
			},
			TotalPatients: 412,
		},
		LabTopTestsFallback: []engine.TestCount{
			{TestType: "CBC", Count: 45, Icon: "🩸"},
			{TestType: "Blood Chemistry", Count: 38, Icon: "🧪"},
			{TestType: "Urinalysis", Count: 32, Icon: "🥛"},
			{TestType: "COVID-19 PCR", Count: 28, Icon: "🦠"},
			{TestType: "Liver Function", Count: 22, Icon: "🫘"},
		},
		StaffFallback: []engine.StaffRatio{
			{Department: "ICU", Nurses: 8, Patients: 12, Ratio: 1.5, Target: 2.0, Status: "low"},
			{Department: "Surgery", Nurses: 6, Patients: 32, Ratio: 5.3, Target: 4.0, Status: "over"},
			{Department: "Pediatrics", Nurses: 4, Patients: 18, Ratio: 4.5, Target: 4.0, Status: "good"},
			{Department: "General", Nurses: 12, Patients: 45, Ratio: 3.8, Target: 4.0, Status: "good"},
		},
		SupplyFallback: []engine.SupplyLevel{
			{Item: "N95 Masks", Current: 450, Minimum: 200, Maximum: 800, Status: "good"},
			{Item: "Surgical Gloves", Current: 2400, Minimum: 1000, Maximum: 5000, Status: "good"},
			{Item: "Hand Sanitizer", Current: 85, Minimum: 100, Maximum: 300, Status: "low"},
			{Item: "Oxygen Tanks", Current: 45, Minimum: 30, Maximum: 80, Status: "good"},
			{Item: "IV Bags", Current: 180, Minimum: 150, Maximum: 500, Status: "good"},
			{Item: "Syringes", Current: 950, Minimum: 500, Maximum: 2000, Status: "good"},
		},
	}
}

// LabSummary is the laboratory section reported when lab orders cannot be
// read: no volume, the default turnaround and the reference test mix.
func (r *Rules) LabSummary() engine.LabSummary {
	return engine.LabSummary{
		AvgTurnaroundTime: r.LabTurnaroundHours,
		TopTests:          r.LabTopTestsFallback,
	}
}

// Load reads a YAML rules file over the defaults. Keys absent from the file
// keep their default values; lists present in the file replace the default
// list entirely.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read file: %w", err)
	}

	r := Default()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("rules: parse yaml: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return r, nil
}

// Validate checks that every value is usable as a fallback.
func (r *Rules) Validate() error {
	if r.LabTurnaroundHours <= 0 {
		return fmt.Errorf("%w: lab_turnaround_default_hours must be positive", ErrInvalid)
	}
	if r.ICUAverageStayDays <= 0 {
		return fmt.Errorf("%w: icu_average_stay_days must be positive", ErrInvalid)
	}
	if len(r.DistributionFallback.Regions) > engine.TopRegions {
		return fmt.Errorf("%w: distribution_fallback lists more than %d regions", ErrInvalid, engine.TopRegions)
	}
	sum := 0
	for i, reg := range r.DistributionFallback.Regions {
		if reg.RegionName == "" {
			return fmt.Errorf("%w: distribution_fallback.regions[%d]: region_name is required", ErrInvalid, i)
		}
		if reg.Percentage < 0 || reg.Percentage > 100 {
			return fmt.Errorf("%w: distribution_fallback.regions[%d]: percentage out of range", ErrInvalid, i)
		}
		sum += reg.PatientCount
	}
	if sum > r.DistributionFallback.TotalPatients {
		return fmt.Errorf("%w: distribution_fallback region counts exceed total_patients", ErrInvalid)
	}
	for i, s := range r.StaffFallback {
		if s.Department == "" {
			return fmt.Errorf("%w: staff_fallback[%d]: department is required", ErrInvalid, i)
		}
	}
	for i, s := range r.SupplyFallback {
		if s.Item == "" {
			return fmt.Errorf("%w: supply_fallback[%d]: item is required", ErrInvalid, i)
		}
		if s.Minimum > s.Maximum {
			return fmt.Errorf("%w: supply_fallback[%d] %q: minimum exceeds maximum", ErrInvalid, i, s.Item)
		}
	}
	return nil
}

// Holder gives concurrent readers the current rules.
type Holder struct {
	p atomic.Pointer[Rules]
}

// NewHolder returns a holder seeded with r, or with Default when r is nil.
func NewHolder(r *Rules) *Holder {
	if r == nil {
		r = Default()
	}
	h := &Holder{}
	h.p.Store(r)
	return h
}

// Current returns the active rules. Callers must not modify the result.
func (h *Holder) Current() *Rules {
	return h.p.Load()
}

// Set replaces the active rules.
func (h *Holder) Set(r *Rules) {
	if r != nil {
		h.p.Store(r)
	}
}
