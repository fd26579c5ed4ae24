package engine

import (
	"sort"
	"strings"
)

const (
	// DefaultLabTurnaroundHours is reported when no completed order has both
	// timestamps.
	DefaultLabTurnaroundHours = 3.4

	defaultTestIcon = "🧪"
	topTestTypes    = 5
)

// TestCount is the order volume of one test type.
type TestCount struct {
	TestType string `json:"testType" yaml:"test_type"`
	Count    int    `json:"count" yaml:"count"`
	Icon     string `json:"icon" yaml:"icon"`
}

// LabSummary describes laboratory throughput over a window.
type LabSummary struct {
	TestsToday        int         `json:"testsToday"`
	AvgTurnaroundTime float64     `json:"avgTurnaroundTime"`
	PendingResults    int         `json:"pendingResults"`
	CompletedTests    int         `json:"completedTests"`
	TopTests          []TestCount `json:"topTests"`
}

// LabThroughput counts orders by status, averages the turnaround of completed
// orders in hours and ranks the five most ordered test types. When no
// turnaround can be measured defaultTurnaround is reported instead.
func LabThroughput(orders []LabOrder, defaultTurnaround float64) LabSummary {
	s := LabSummary{TestsToday: len(orders), AvgTurnaroundTime: defaultTurnaround}

	var turnaround float64
	var measured int
	index := make(map[string]int)
	tests := make([]TestCount, 0)

	for _, o := range orders {
		if strings.EqualFold(o.Status, "completed") {
			s.CompletedTests++
			if o.CompletedAt != nil && !o.OrderedAt.IsZero() {
				turnaround += o.CompletedAt.Sub(o.OrderedAt).Hours()
				measured++
			}
		} else {
			s.PendingResults++
		}

		name := strings.TrimSpace(o.TestName)
		if name == "" {
			name = UnknownLabel
		}
		i, ok := index[name]
		if !ok {
			icon := o.TestIcon
			if icon == "" {
				icon = defaultTestIcon
			}
			tests = append(tests, TestCount{TestType: name, Icon: icon})
			i = len(tests) - 1
			index[name] = i
		}
		tests[i].Count++
	}

	if measured > 0 {
		s.AvgTurnaroundTime = Round1(turnaround / float64(measured))
	}
	sort.SliceStable(tests, func(i, j int) bool { return tests[i].Count > tests[j].Count })
	if len(tests) > topTestTypes {
		tests = tests[:topTestTypes]
	}
	s.TopTests = tests
	return s
}
