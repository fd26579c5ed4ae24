package engine

import (
	"strings"
	"time"
)

// Emergency admissions are assumed to be critical at this rate when no
// acuity data is available.
const criticalEmergencyShare = 0.15

// AdmissionSummary counts admissions relative to now.
type AdmissionSummary struct {
	Admissions24h     int `json:"admissions24h"`
	Admissions7d      int `json:"admissions7d"`
	Trend24h          int `json:"trend24h"`
	CaseFindingsToday int `json:"caseFindingsToday"`
	TotalAdmissions   int `json:"totalAdmissions"`
}

// EmergencySummary describes emergency department load.
type EmergencySummary struct {
	CurrentLoad   int `json:"currentLoad"`
	TotalPatients int `json:"totalPatients"`
	CriticalCases int `json:"criticalCases"`
}

// AdmissionStats counts admissions in the last 24 hours and 7 days, the
// change against the previous 24 hours, and emergency admissions in the last
// 24 hours.
func AdmissionStats(now time.Time, admissions []AdmissionRecord) AdmissionSummary {
	b := Boundaries(now)
	s := AdmissionSummary{TotalAdmissions: len(admissions)}
	var previous24h int

	for _, a := range admissions {
		at := a.AdmissionDate
		if !at.Before(b.Last24h) {
			s.Admissions24h++
			if isEmergency(a) {
				s.CaseFindingsToday++
			}
		} else if !at.Before(b.Last48h) {
			previous24h++
		}
		if !at.Before(b.LastWeek) {
			s.Admissions7d++
		}
	}
	s.Trend24h = s.Admissions24h - previous24h
	return s
}

// EmergencyLoad summarises the emergency admissions among admissions.
func EmergencyLoad(admissions []AdmissionRecord) EmergencySummary {
	var s EmergencySummary
	for _, a := range admissions {
		if !isEmergency(a) {
			continue
		}
		s.TotalPatients++
		if strings.EqualFold(a.Status, "active") {
			s.CurrentLoad++
		}
	}
	s.CriticalCases = int(float64(s.TotalPatients) * criticalEmergencyShare)
	return s
}

// AverageStayDays is the mean length of stay in days over discharged
// admissions, rounded to one decimal place. It reports false when no
// admission has been discharged.
func AverageStayDays(admissions []AdmissionRecord) (float64, bool) {
	var sum float64
	var n int
	for _, a := range admissions {
		if a.DischargeDate == nil {
			continue
		}
		sum += a.DischargeDate.Sub(a.AdmissionDate).Hours() / 24
		n++
	}
	if n == 0 {
		return 0, false
	}
	return Round1(sum / float64(n)), true
}

func isEmergency(a AdmissionRecord) bool {
	return strings.EqualFold(a.AdmissionType, "emergency")
}
