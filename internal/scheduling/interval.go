// Package scheduling holds the pure schedule reasoning used by batch,
// substitution and free-slot workflows: interval arithmetic, availability
// containment, conflict detection, free-slot subtraction and acting-faculty
// resolution. Nothing in here performs I/O.
package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage layout for calendar dates.
const DateLayout = "2006-01-02"

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the interval has no width.
func (i Interval) Empty() bool {
	return i.End <= i.Start
}

// String formats the interval as "HH:MM - HH:MM".
func (i Interval) String() string {
	return MinutesToTime(i.Start) + " - " + MinutesToTime(i.End)
}

// NewInterval builds an interval from two clock strings.
func NewInterval(start, end string) Interval {
	return Interval{Start: TimeToMinutes(start), End: TimeToMinutes(end)}
}

// TimeToMinutes converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Malformed input yields 0; callers validate upstream.
func TimeToMinutes(value string) int {
	minutes, ok := parseClock(value)
	if !ok {
		return 0
	}
	return minutes
}

// MinutesToTime renders minutes since midnight as zero padded "HH:MM".
func MinutesToTime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidClock reports whether value is a well-formed "HH:MM" or "HH:MM:SS" time of day.
func ValidClock(value string) bool {
	_, ok := parseClock(value)
	return ok
}

func parseClock(value string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 24 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, false
		}
	}
	if hours == 24 && minutes != 0 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// DaysOverlap reports whether any day name appears in both sets, ignoring case.
func DaysOverlap(a, b []string) bool {
	for _, left := range a {
		if RunsOn(b, left) {
			return true
		}
	}
	return false
}

// RunsOn reports whether day is contained in days, ignoring case and padding.
func RunsOn(days []string, day string) bool {
	day = strings.TrimSpace(day)
	for _, d := range days {
		if strings.EqualFold(strings.TrimSpace(d), day) {
			return true
		}
	}
	return false
}

// DatesOverlap compares two inclusive calendar ranges.
func DatesOverlap(startA, endA, startB, endB time.Time) bool {
	startA, endA = DateOnly(startA), DateOnly(endA)
	startB, endB = DateOnly(startB), DateOnly(endB)
	return !startA.After(endB) && !startB.After(endA)
}

// TimesOverlap compares two half-open minute ranges; touching ranges do not overlap.
func TimesOverlap(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// ClockRangesOverlap is TimesOverlap over clock strings.
func ClockRangesOverlap(startA, endA, startB, endB string) bool {
	return TimesOverlap(TimeToMinutes(startA), TimeToMinutes(endA), TimeToMinutes(startB), TimeToMinutes(endB))
}

// DateOnly truncates t to its calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string, tolerating a trailing time component.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(DateLayout) {
		value = value[:len(DateLayout)]
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return parsed, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayName returns the English weekday of t, e.g. "Monday".
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

// NormalizeDay canonicalises a weekday name ("monday" -> "Monday").
// The second result is false when the name is not a weekday.
func NormalizeDay(day string) (string, bool) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(strings.TrimSpace(day), wd.String()) {
			return wd.String(), true
		}
	}
	return "", false
}
