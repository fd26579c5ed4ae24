package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/neocare/neocare/internal/engine"
)

// DefaultCriticalLimit caps the critical feed when no limit is requested.
const DefaultCriticalLimit = 10

// CriticalAlert is one entry of the critical feed. Priority is the 1-based
// position in the feed, newest first.
type CriticalAlert struct {
	ID             uuid.UUID       `json:"id"`
	Severity       engine.Severity `json:"severity"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	TimeAgo        string          `json:"timestamp"`
	CreatedAt      time.Time       `json:"createdAt"`
	Priority       int             `json:"priority"`
	Patient        *string         `json:"patient"`
	Category       string          `json:"category"`
	IsAcknowledged bool            `json:"isAcknowledged"`
}

type CriticalFeed struct {
	CriticalAlerts []CriticalAlert `json:"criticalAlerts"`
	TotalCount     int             `json:"totalCount"`
	Timestamp      time.Time       `json:"timestamp"`
	Degraded       []string        `json:"degraded,omitempty"`
}

type ClinicalFeed struct {
	Alerts      []engine.AlertGroup `json:"alerts"`
	TotalAlerts int                 `json:"totalAlerts"`
	Timestamp   time.Time           `json:"timestamp"`
	Degraded    []string            `json:"degraded,omitempty"`
}
