package engine

import "strings"

var severityWeights = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// SeverityWeight returns the position of s in the total order
// low < medium < high < critical. Unknown or empty severities weigh 0.
func SeverityWeight(s Severity) int {
	return severityWeights[Severity(strings.ToLower(strings.TrimSpace(string(s))))]
}

// MaxSeverity returns next only when it strictly outweighs current, so the
// first-seen severity wins ties.
func MaxSeverity(current, next Severity) Severity {
	if SeverityWeight(next) > SeverityWeight(current) {
		return next
	}
	return current
}

// AtLeast reports whether s is at or above min.
func AtLeast(s, min Severity) bool {
	return SeverityWeight(s) >= SeverityWeight(min)
}

// SeveritiesAtLeast lists the known severities at or above min, lowest first.
// An empty min lists all of them.
func SeveritiesAtLeast(min Severity) []Severity {
	all := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	out := make([]Severity, 0, len(all))
	for _, s := range all {
		if AtLeast(s, min) {
			out = append(out, s)
		}
	}
	return out
}
