package engine

import (
	"strings"

	"github.com/google/uuid"
)

var deviceTypeNames = map[string]string{
	"ventilator": "Ventilator",
	"monitor":    "Cardiac Monitor",
	"pump":       "Infusion Pump",
}

// DeviceTypeName returns the display name of an equipment type, or the type
// itself when it has none.
func DeviceTypeName(equipmentType string) string {
	if name, ok := deviceTypeNames[strings.ToLower(equipmentType)]; ok {
		return name
	}
	return equipmentType
}

// Device is a piece of equipment as shown on a dashboard.
type Device struct {
	ID       uuid.UUID `json:"id"`
	Type     string    `json:"type"`
	Patient  *string   `json:"patient"`
	Status   string    `json:"status"`
	Location string    `json:"location"`
}

// DeviceCounts tallies devices by status.
type DeviceCounts struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Available   int `json:"available"`
	Maintenance int `json:"maintenance"`
}

// DeviceSummary lists devices with their utilization.
type DeviceSummary struct {
	Devices         []Device     `json:"devices"`
	UtilizationRate float64      `json:"utilizationRate"`
	Summary         DeviceCounts `json:"summary"`
}

// DeviceUtilization tallies equipment by status. Utilization is the share of
// devices in use, with one decimal place.
func DeviceUtilization(equipment []Equipment) DeviceSummary {
	s := DeviceSummary{Devices: make([]Device, 0, len(equipment))}
	for _, e := range equipment {
		s.Devices = append(s.Devices, Device{
			ID:       e.ID,
			Type:     DeviceTypeName(e.Type),
			Patient:  e.PatientNumber,
			Status:   e.Status,
			Location: e.Location,
		})
		s.Summary.Total++
		switch strings.ToLower(e.Status) {
		case "in-use":
			s.Summary.Active++
		case "available":
			s.Summary.Available++
		case "maintenance":
			s.Summary.Maintenance++
		}
	}
	s.UtilizationRate = ShareOf(s.Summary.Active, s.Summary.Total)
	return s
}

// StaffRatioAverage is the mean of the positive patient-per-nurse ratios with
// one decimal place, or 0 when there are none.
func StaffRatioAverage(ratios []StaffRatio) float64 {
	var sum float64
	var n int
	for _, r := range ratios {
		if r.Ratio > 0 {
			sum += r.Ratio
			n++
		}
	}
	return Round1(mean(sum, n))
}

// CountLowSupplies counts supply items whose status is low.
func CountLowSupplies(supplies []SupplyLevel) int {
	var n int
	for _, s := range supplies {
		if strings.EqualFold(s.Status, "low") {
			n++
		}
	}
	return n
}
