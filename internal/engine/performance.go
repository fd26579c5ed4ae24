package engine

import (
	"sort"
	"strings"
)

// Rating is a department's letter grade.
type Rating string

const (
	RatingAPlus Rating = "A+"
	RatingA     Rating = "A"
	RatingBPlus Rating = "B+"
	RatingB     Rating = "B"
	RatingC     Rating = "C"
	RatingD     Rating = "D"
	RatingNone  Rating = "N/A"
)

// Trend is the direction of a department's mortality over the window.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// MaxNeedsAttention caps the cohort's needs-attention list.
const MaxNeedsAttention = 3

// DepartmentScore is the scored summary of one department over a window.
// Reported averages are rounded to one decimal place.
type DepartmentScore struct {
	Department        string  `json:"department"`
	Hospital          string  `json:"hospital,omitempty"`
	AvgLOS            float64 `json:"avgLOS"`
	Readmission       float64 `json:"readmission"`
	Mortality         float64 `json:"mortality"`
	Rating            Rating  `json:"rating"`
	Trend             Trend   `json:"trend"`
	PatientCount      int     `json:"patientCount"`
	SatisfactionScore float64 `json:"satisfactionScore"`
}

// AttentionItem is a department flagged for review.
type AttentionItem struct {
	Department string  `json:"department"`
	Rating     Rating  `json:"rating"`
	Trend      Trend   `json:"trend"`
	Mortality  float64 `json:"mortality"`
}

// CohortSummary describes a ranked set of departments.
type CohortSummary struct {
	TotalDepartments   int             `json:"totalDepartments"`
	AverageMortality   float64         `json:"averageMortality"`
	AverageReadmission float64         `json:"averageReadmission"`
	TopPerformer       *string         `json:"topPerformer"`
	NeedsAttention     []AttentionItem `json:"needsAttention"`
}

type ratingRule struct {
	below  float64
	points int
}

// Mortality and readmission score below a threshold; satisfaction scores
// strictly above one.
var (
	mortalityPoints    = []ratingRule{{1, 3}, {2, 2}, {5, 1}}
	readmissionPoints  = []ratingRule{{5, 3}, {8, 2}, {12, 1}}
	satisfactionPoints = []ratingRule{{4.5, 3}, {4.0, 2}, {3.5, 1}}
)

var gradeFloors = []struct {
	min    int
	rating Rating
}{
	{8, RatingAPlus},
	{7, RatingA},
	{5, RatingBPlus},
	{3, RatingB},
	{1, RatingC},
}

// RateDepartment grades a department on an additive 0-9 point score built
// from its mean mortality, readmission and satisfaction.
func RateDepartment(mortality, readmission, satisfaction float64) Rating {
	score := lowerIsBetter(mortality, mortalityPoints) +
		lowerIsBetter(readmission, readmissionPoints) +
		higherIsBetter(satisfaction, satisfactionPoints)

	for _, g := range gradeFloors {
		if score >= g.min {
			return g.rating
		}
	}
	return RatingD
}

func lowerIsBetter(v float64, rules []ratingRule) int {
	for _, r := range rules {
		if v < r.below {
			return r.points
		}
	}
	return 0
}

func higherIsBetter(v float64, rules []ratingRule) int {
	for _, r := range rules {
		if v > r.below {
			return r.points
		}
	}
	return 0
}

// MortalityTrend bisects the samples, most recent first, and compares the
// mean mortality of the recent half against the older half. A move of more
// than 10% either way sets the direction. Fewer than two samples is stable.
// The input slice is not modified.
func MortalityTrend(samples []DepartmentMetricSample) Trend {
	sorted := make([]DepartmentMetricSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	mid := len(sorted) / 2
	recent, older := sorted[:mid], sorted[mid:]
	if len(recent) == 0 || len(older) == 0 {
		return TrendStable
	}

	recentMean := meanMortality(recent)
	olderMean := meanMortality(older)
	switch {
	case recentMean < olderMean*0.9:
		return TrendImproving
	case recentMean > olderMean*1.1:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func meanMortality(samples []DepartmentMetricSample) float64 {
	var sum float64
	for _, s := range samples {
		sum += s.MortalityRate
	}
	return mean(sum, len(samples))
}

// ScoreDepartment summarises one department's samples. Rating and trend are
// computed from the unrounded means. An empty sample set scores N/A.
func ScoreDepartment(name string, samples []DepartmentMetricSample) DepartmentScore {
	score := DepartmentScore{Department: name, Trend: TrendStable, Rating: RatingNone}
	n := len(samples)
	if n == 0 {
		return score
	}

	var los, readmission, mortality, satisfaction, patients float64
	for _, s := range samples {
		los += s.AvgLengthOfStay
		readmission += s.ReadmissionRate
		mortality += s.MortalityRate
		satisfaction += s.Satisfaction
		patients += s.PatientCount
	}
	los, readmission = mean(los, n), mean(readmission, n)
	mortality, satisfaction = mean(mortality, n), mean(satisfaction, n)

	score.Hospital = samples[0].FacilityName
	score.AvgLOS = Round1(los)
	score.Readmission = Round1(readmission)
	score.Mortality = Round1(mortality)
	score.SatisfactionScore = Round1(satisfaction)
	score.PatientCount = RoundInt(patients)
	score.Rating = RateDepartment(mortality, readmission, satisfaction)
	score.Trend = MortalityTrend(samples)
	return score
}

// ScoreDepartments groups samples by department name, scores each group and
// ranks them by combined mortality and readmission, lowest first. Samples
// without a department name are grouped under "Unknown". Ties keep the order
// in which departments were first seen.
func ScoreDepartments(samples []DepartmentMetricSample) []DepartmentScore {
	index := make(map[string]int)
	var names []string
	var groups [][]DepartmentMetricSample

	for _, s := range samples {
		name := strings.TrimSpace(s.DepartmentName)
		if name == "" {
			name = UnknownLabel
		}
		i, ok := index[name]
		if !ok {
			names = append(names, name)
			groups = append(groups, nil)
			i = len(groups) - 1
			index[name] = i
		}
		groups[i] = append(groups[i], s)
	}

	scores := make([]DepartmentScore, 0, len(groups))
	for i, g := range groups {
		scores = append(scores, ScoreDepartment(names[i], g))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Mortality+scores[i].Readmission < scores[j].Mortality+scores[j].Readmission
	})
	return scores
}

// SummarizeCohort summarises ranked departments. The first department is the
// top performer; departments rated C or D, or trending worse, need attention.
func SummarizeCohort(ranked []DepartmentScore) CohortSummary {
	summary := CohortSummary{NeedsAttention: make([]AttentionItem, 0)}
	if len(ranked) == 0 {
		return summary
	}

	var mortality, readmission float64
	for _, d := range ranked {
		mortality += d.Mortality
		readmission += d.Readmission
	}
	summary.TotalDepartments = len(ranked)
	summary.AverageMortality = Round1(mean(mortality, len(ranked)))
	summary.AverageReadmission = Round1(mean(readmission, len(ranked)))
	top := ranked[0].Department
	summary.TopPerformer = &top

	for _, d := range ranked {
		if len(summary.NeedsAttention) == MaxNeedsAttention {
			break
		}
		if d.Rating == RatingC || d.Rating == RatingD || d.Trend == TrendDeclining {
			summary.NeedsAttention = append(summary.NeedsAttention, AttentionItem{
				Department: d.Department,
				Rating:     d.Rating,
				Trend:      d.Trend,
				Mortality:  d.Mortality,
			})
		}
	}
	return summary
}
