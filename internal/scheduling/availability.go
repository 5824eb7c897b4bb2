package scheduling

import (
	"fmt"
	"strings"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// AvailabilityViolation reports the first day a proposed schedule does not fit
// inside a faculty's weekly availability.
type AvailabilityViolation struct {
	Day     string
	Missing bool
}

// Error implements the error interface.
func (v *AvailabilityViolation) Error() string {
	if v == nil {
		return "<nil>"
	}
	if v.Missing {
		return fmt.Sprintf("faculty is not available on %s", v.Day)
	}
	return fmt.Sprintf("batch time on %s is outside of faculty's available hours", v.Day)
}

// FindWindow returns the availability window for day, ignoring case.
func FindWindow(windows []models.AvailabilityWindow, day string) (models.AvailabilityWindow, bool) {
	for _, w := range windows {
		if strings.EqualFold(strings.TrimSpace(w.DayOfWeek), strings.TrimSpace(day)) {
			return w, true
		}
	}
	return models.AvailabilityWindow{}, false
}

// CheckAvailability requires [start, end) to be fully contained in the
// faculty's window for every day in days. The first violating day is returned.
func CheckAvailability(windows []models.AvailabilityWindow, days []string, start, end string) error {
	proposed := NewInterval(start, end)
	for _, day := range days {
		window, ok := FindWindow(windows, day)
		if !ok {
			return &AvailabilityViolation{Day: day, Missing: true}
		}
		available := NewInterval(window.StartTime, window.EndTime)
		if proposed.Start < available.Start || proposed.End > available.End {
			return &AvailabilityViolation{Day: day}
		}
	}
	return nil
}
