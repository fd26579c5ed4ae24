package laboratory

import (
	"time"

	"github.com/neocare/neocare/internal/engine"
)

const DefaultTimeframe = "24h"

// Metrics is laboratory throughput over the requested window.
type Metrics struct {
	engine.LabSummary
	Timeframe string    `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	Degraded  []string  `json:"degraded,omitempty"`
}
