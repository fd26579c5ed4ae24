package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neocare/neocare/internal/engine"
)

func TestAlertFilter_SeveritySet(t *testing.T) {
	tests := []struct {
		name string
		f    AlertFilter
		want []engine.Severity
	}{
		{"no filter", AlertFilter{}, nil},
		{"list only", AlertFilter{Severities: []engine.Severity{engine.SeverityCritical}}, []engine.Severity{engine.SeverityCritical}},
		{"minimum only", AlertFilter{MinSeverity: engine.SeverityHigh}, []engine.Severity{engine.SeverityHigh, engine.SeverityCritical}},
		{
			"list narrowed by minimum",
			AlertFilter{Severities: []engine.Severity{engine.SeverityMedium, engine.SeverityCritical}, MinSeverity: engine.SeverityHigh},
			[]engine.Severity{engine.SeverityCritical},
		},
		{
			"nothing left",
			AlertFilter{Severities: []engine.Severity{engine.SeverityLow}, MinSeverity: engine.SeverityHigh},
			[]engine.Severity{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.SeveritySet())
		})
	}
}
