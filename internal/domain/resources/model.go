package resources

import (
	"time"

	"github.com/google/uuid"

	"github.com/neocare/neocare/internal/engine"
)

// BedResource is the bed census of one facility.
type BedResource struct {
	FacilityID  uuid.UUID `json:"hospitalId"`
	Ward        string    `json:"ward"`
	Total       int       `json:"total"`
	Occupied    int       `json:"occupied"`
	Available   int       `json:"available"`
	Maintenance int       `json:"maintenance"`
	Utilization int       `json:"utilization"`
}

type Beds struct {
	BedResources []BedResource `json:"bedResources"`
	engine.BedTotals
	Timestamp time.Time `json:"timestamp"`
	Degraded  []string  `json:"degraded,omitempty"`
}

type Staff struct {
	StaffRatios  []engine.StaffRatio `json:"staffRatios"`
	AverageRatio float64             `json:"averageRatio"`
	Timestamp    time.Time           `json:"timestamp"`
	Degraded     []string            `json:"degraded,omitempty"`
}

type Supplies struct {
	SupplyInventory []engine.SupplyLevel `json:"supplyInventory"`
	CriticalItems   int                  `json:"criticalItems"`
	Timestamp       time.Time            `json:"timestamp"`
	Degraded        []string             `json:"degraded,omitempty"`
}
