package engine

// KPIBaseline is the set of values reported when facility metrics are
// unavailable.
type KPIBaseline struct {
	AvgLengthOfStay    float64 `json:"avgLengthOfStay" yaml:"avg_length_of_stay"`
	ReadmissionRate    float64 `json:"readmissionRate" yaml:"readmission_rate"`
	MortalityRate      float64 `json:"mortalityRate" yaml:"mortality_rate"`
	LabTurnaroundTime  float64 `json:"labTurnaroundTime" yaml:"lab_turnaround_time"`
	SurgerySuccessRate float64 `json:"surgerySuccessRate" yaml:"surgery_success_rate"`
	InfectionRate      float64 `json:"infectionRate" yaml:"infection_rate"`
}

// DefaultKPIBaseline returns the documented KPI baseline.
func DefaultKPIBaseline() KPIBaseline {
	return KPIBaseline{
		AvgLengthOfStay:    5.2,
		ReadmissionRate:    8.7,
		MortalityRate:      2.1,
		LabTurnaroundTime:  DefaultLabTurnaroundHours,
		SurgerySuccessRate: 94.8,
		InfectionRate:      1.2,
	}
}

// ClinicalKPIs are facility-wide clinical indicators over a window.
type ClinicalKPIs = KPIBaseline

// ComposeKPIs averages facility metric samples into clinical KPIs with one
// decimal place. Lab turnaround and surgery success are not carried by the
// samples and come from the baseline. With no samples the baseline is
// returned unchanged.
func ComposeKPIs(samples []HospitalMetricSample, baseline KPIBaseline) ClinicalKPIs {
	if len(samples) == 0 {
		return baseline
	}
	var los, readmission, mortality, infection float64
	for _, s := range samples {
		los += s.AvgLengthOfStay
		readmission += s.ReadmissionRate
		mortality += s.MortalityRate
		infection += s.InfectionRate
	}
	n := len(samples)
	return ClinicalKPIs{
		AvgLengthOfStay:    Round1(mean(los, n)),
		ReadmissionRate:    Round1(mean(readmission, n)),
		MortalityRate:      Round1(mean(mortality, n)),
		LabTurnaroundTime:  baseline.LabTurnaroundTime,
		SurgerySuccessRate: baseline.SurgerySuccessRate,
		InfectionRate:      Round1(mean(infection, n)),
	}
}
