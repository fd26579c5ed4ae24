package engine

import "strings"

// GeneralCategory is the display name used for alerts without a category.
const GeneralCategory = "General"

const (
	fallbackIcon        = "⚠️"
	fallbackDescription = "General clinical alerts"
)

type categoryInfo struct {
	icon        string
	description string
}

// Keyed by lower-case category name.
var alertCategories = map[string]categoryInfo{
	"cardiac":      {icon: "❤️", description: "Irregular heart rhythms detected"},
	"respiratory":  {icon: "🫁", description: "Low oxygen saturation alerts"},
	"neurological": {icon: "🧠", description: "Consciousness level changes"},
	"metabolic":    {icon: "⚡", description: "Blood sugar fluctuations"},
	"temperature":  {icon: "🌡️", description: "Fever and temperature alerts"},
	"medication":   {icon: "💊", description: "Medication and dosage alerts"},
	"equipment":    {icon: "🔧", description: "Medical equipment issues"},
	"capacity":     {icon: "🏥", description: "Hospital capacity warnings"},
}

// CategoryInfo returns the icon and description for a category. Matching is
// case-insensitive; unknown and empty categories get the general fallback.
func CategoryInfo(category string) (icon, description string) {
	if info, ok := alertCategories[categoryKey(category)]; ok {
		return info.icon, info.description
	}
	return fallbackIcon, fallbackDescription
}

// AlertGroup collects the alerts that share a category.
type AlertGroup struct {
	Category    string   `json:"category"`
	Count       int      `json:"count"`
	Severity    Severity `json:"severity"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Alerts      []Alert  `json:"alerts"`
}

// GroupAlertsByCategory folds alerts into one group per category in the order
// categories are first seen. A group starts at low severity and is raised only
// by a strictly heavier alert. Categories compare case-insensitively and the
// group keeps the spelling of its first alert.
func GroupAlertsByCategory(alerts []Alert) []AlertGroup {
	index := make(map[string]int)
	groups := make([]AlertGroup, 0)

	for _, a := range alerts {
		key := categoryKey(a.Category)
		i, ok := index[key]
		if !ok {
			name := strings.TrimSpace(a.Category)
			if name == "" {
				name = GeneralCategory
			}
			icon, desc := CategoryInfo(key)
			groups = append(groups, AlertGroup{
				Category:    name,
				Severity:    SeverityLow,
				Icon:        icon,
				Description: desc,
				Alerts:      make([]Alert, 0, 1),
			})
			i = len(groups) - 1
			index[key] = i
		}

		g := &groups[i]
		g.Count++
		g.Alerts = append(g.Alerts, a)
		g.Severity = MaxSeverity(g.Severity, a.Severity)
	}
	return groups
}

// PatientAlerts keeps the alerts that reference a patient.
func PatientAlerts(alerts []Alert) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.PatientID != nil {
			out = append(out, a)
		}
	}
	return out
}

func categoryKey(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	if key == "" {
		return strings.ToLower(GeneralCategory)
	}
	return key
}
