package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for pickup dates.
const DateLayout = "2006-01-02"

// DaySlots is the outcome of slot generation or availability filtering for one
// date. ClosedForToday distinguishes "buffer pushed past closing time" from an
// ordinary empty result; it is a valid condition, not an error.
type DaySlots struct {
	Date           string   `json:"date"`
	Times          []string `json:"times"` // "15:04", ascending
	ClosedForToday bool     `json:"closedForToday"`
}

// FormatMinute renders minutes-from-midnight as "15:04".
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseClock parses "15:04" into minutes from midnight.
func ParseClock(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinuteOfDay returns t's minutes from midnight in t's own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// CombineDateMinute builds the pickup timestamp for date + minute in loc.
func CombineDateMinute(date string, minute int, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d.Add(time.Duration(minute) * time.Minute), nil
}
