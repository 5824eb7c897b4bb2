package scheduling

import (
	"time"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Now implements Clock.
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time {
	return c.At
}

// Today returns the clock's calendar date at UTC midnight.
func Today(c Clock) time.Time {
	if c == nil {
		c = SystemClock{}
	}
	return DateOnly(c.Now())
}

// DeriveStatus computes a batch status from its date range; it is never read from storage.
func DeriveStatus(today, start, end time.Time) models.BatchStatus {
	today, start, end = DateOnly(today), DateOnly(start), DateOnly(end)
	switch {
	case today.Before(start):
		return models.BatchStatusUpcoming
	case today.After(end):
		return models.BatchStatusCompleted
	default:
		return models.BatchStatusActive
	}
}
