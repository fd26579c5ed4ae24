package engine

import "time"

const (
	defaultWindowHours = 168
	defaultWindowDays  = 90
)

// ResolveHours maps an hour-based timeframe token to a lookback in hours:
// "1h" is 1, "24h" is 24, anything else is a week.
func ResolveHours(token string) int {
	switch token {
	case "1h":
		return 1
	case "24h":
		return 24
	default:
		return defaultWindowHours
	}
}

// ResolveDays maps a day-based timeframe token to a lookback in days:
// "7d" is 7, "30d" is 30, anything else is 90.
func ResolveDays(token string) int {
	switch token {
	case "7d":
		return 7
	case "30d":
		return 30
	default:
		return defaultWindowDays
	}
}

// Window is a concrete lookback ending at End.
type Window struct {
	Token string
	Start time.Time
	End   time.Time
}

// HourWindow resolves an hour-based token against now.
func HourWindow(now time.Time, token string) Window {
	return Window{Token: token, Start: now.Add(-time.Duration(ResolveHours(token)) * time.Hour), End: now}
}

// DayWindow resolves a day-based token against now.
func DayWindow(now time.Time, token string) Window {
	return DaysBack(now, ResolveDays(token), token)
}

// DaysBack is a window over dated samples reaching the given number of
// calendar days back. It opens at midnight UTC of the first day, so that day
// is included whatever the time of now.
func DaysBack(now time.Time, days int, token string) Window {
	return Window{Token: token, Start: StartOfDay(now.AddDate(0, 0, -days)), End: now}
}

// StartOfDay is midnight UTC of the calendar day holding t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TrendBoundaries are the instants used to compare the last 24 hours with
// the 24 hours before that.
type TrendBoundaries struct {
	Now      time.Time
	Last24h  time.Time
	Last48h  time.Time
	LastWeek time.Time
}

// Boundaries computes trend boundaries relative to now.
func Boundaries(now time.Time) TrendBoundaries {
	return TrendBoundaries{
		Now:      now,
		Last24h:  now.Add(-24 * time.Hour),
		Last48h:  now.Add(-48 * time.Hour),
		LastWeek: now.Add(-7 * 24 * time.Hour),
	}
}
