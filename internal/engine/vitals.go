package engine

// riskBand holds the thresholds that put a reading into one tier. Any single
// condition is enough; vitals are not weighted against each other. A zero
// lower bound disables that check.
type riskBand struct {
	level            RiskLevel
	heartRateAbove   float64
	heartRateBelow   float64
	oxygenBelow      float64
	systolicAbove    float64
	systolicBelow    float64
	temperatureAbove float64
}

// Ordered most severe first; the first band that matches wins.
var riskBands = []riskBand{
	{
		level:            RiskCritical,
		heartRateAbove:   120,
		heartRateBelow:   50,
		oxygenBelow:      90,
		systolicAbove:    180,
		systolicBelow:    80,
		temperatureAbove: 39,
	},
	{
		level:            RiskHigh,
		heartRateAbove:   100,
		heartRateBelow:   60,
		oxygenBelow:      95,
		systolicAbove:    160,
		systolicBelow:    90,
		temperatureAbove: 38,
	},
	{
		level:            RiskModerate,
		heartRateAbove:   90,
		oxygenBelow:      97,
		systolicAbove:    140,
		temperatureAbove: 37.5,
	},
}

// ClassifyVitals maps a reading to a risk tier. A missing reading is stable,
// and a missing measurement within a reading never triggers a tier: an
// unrecorded heart rate is not a low one.
// This is dashboard triage, not a clinical early-warning score.
func ClassifyVitals(r *VitalReading) RiskLevel {
	if r == nil {
		return RiskStable
	}
	for _, b := range riskBands {
		if b.matches(r) {
			return b.level
		}
	}
	return RiskStable
}

func (b riskBand) matches(r *VitalReading) bool {
	return above(r.HeartRate, b.heartRateAbove) ||
		below(r.HeartRate, b.heartRateBelow) ||
		below(r.OxygenSaturation, b.oxygenBelow) ||
		above(r.BPSystolic, b.systolicAbove) ||
		below(r.BPSystolic, b.systolicBelow) ||
		above(r.TemperatureCelsius, b.temperatureAbove)
}

func above(v *float64, limit float64) bool {
	return v != nil && *v > limit
}

func below(v *float64, limit float64) bool {
	return v != nil && limit > 0 && *v < limit
}
