package engine

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// FormatTimeAgo renders the age of t relative to now for alert feeds.
func FormatTimeAgo(now, t time.Time) string {
	minutes := int(now.Sub(t).Minutes())
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%d min ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d hr ago", hours)
	}
	days := hours / 24
	if days > 1 {
		return fmt.Sprintf("%d days ago", days)
	}
	return "1 day ago"
}

// FullName joins a first and last name.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// PatientInitials renders a de-identified display name such as "Patient JD".
func PatientInitials(first, last string) string {
	return "Patient " + initial(first) + initial(last)
}

func initial(s string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(s))
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// AgeYears returns whole years elapsed since dob using 365.25-day years, or
// nil when dob is unknown.
func AgeYears(now time.Time, dob *time.Time) *int {
	if dob == nil || dob.IsZero() {
		return nil
	}
	years := int(now.Sub(*dob).Hours() / (365.25 * 24))
	return &years
}

// BloodPressure renders systolic/diastolic, or nil when either is missing.
func BloodPressure(r *VitalReading) *string {
	if r == nil || r.BPSystolic == nil || r.BPDiastolic == nil {
		return nil
	}
	bp := fmt.Sprintf("%g/%g", *r.BPSystolic, *r.BPDiastolic)
	return &bp
}
