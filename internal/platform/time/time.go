// Package time holds the calendar-day helpers every series uses
package time

import (
	"strings"
	"time"
)

// DayLayout is the wire format for dates
const DayLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day, keeping the date as written in t's zone
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses YYYY-MM-DD as a UTC day
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// FormatDay renders the UTC calendar day of t as YYYY-MM-DD
func FormatDay(t time.Time) string { return t.UTC().Format(DayLayout) }

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// DaysBetween counts whole days from a to b (b-a), both taken as calendar days
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

// ParseWeekday parses an english weekday name, case insensitive
func ParseWeekday(s string) (time.Weekday, bool) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}
