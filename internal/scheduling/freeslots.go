package scheduling

import (
	"sort"
	"time"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// FreeSlotInput is everything needed to compute free slots for a date range.
// Batches and Substitutions may contain rows for any faculty; they are
// filtered per faculty while walking the range.
type FreeSlotInput struct {
	Faculty       []models.Faculty
	Batches       []models.Batch
	Substitutions []models.FacultySubstitution
	StartDate     time.Time
	EndDate       time.Time
	FacultyID     string
	SkillID       string
}

// DaySlots lists the free windows of one calendar day.
type DaySlots struct {
	Date          string   `json:"date"`
	FreeIntervals []string `json:"free_intervals"`
}

// FacultyFreeSlots is the free-slot result for one faculty.
type FacultyFreeSlots struct {
	FacultyID   string     `json:"faculty_id"`
	FacultyName string     `json:"faculty_name"`
	Slots       []DaySlots `json:"slots"`
}

// ComputeFreeSlots subtracts every busy interval from each faculty's declared
// availability for each day in [StartDate, EndDate]. Faculty without a single
// free interval in the range are omitted.
func ComputeFreeSlots(in FreeSlotInput) []FacultyFreeSlots {
	start, end := DateOnly(in.StartDate), DateOnly(in.EndDate)
	results := make([]FacultyFreeSlots, 0)
	for _, faculty := range FilterFaculty(in.Faculty, in.FacultyID, in.SkillID) {
		entry := FacultyFreeSlots{FacultyID: faculty.ID, FacultyName: faculty.Name, Slots: []DaySlots{}}
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			window, ok := FindWindow(faculty.Availability, WeekdayName(day))
			if !ok {
				continue
			}
			busy := BusyIntervals(faculty.ID, day, in.Batches, in.Substitutions)
			free := SubtractIntervals(NewInterval(window.StartTime, window.EndTime), MergeIntervals(busy))
			if len(free) == 0 {
				continue
			}
			formatted := make([]string, 0, len(free))
			for _, interval := range free {
				formatted = append(formatted, interval.String())
			}
			entry.Slots = append(entry.Slots, DaySlots{Date: FormatDate(day), FreeIntervals: formatted})
		}
		if len(entry.Slots) > 0 {
			results = append(results, entry)
		}
	}
	return results
}

// FilterFaculty applies the optional single-faculty and skill filters.
func FilterFaculty(faculty []models.Faculty, facultyID, skillID string) []models.Faculty {
	filtered := make([]models.Faculty, 0, len(faculty))
	for _, f := range faculty {
		if facultyID != "" && f.ID != facultyID {
			continue
		}
		if skillID != "" && !f.HasSkill(skillID) {
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered
}

// BusyIntervals collects what occupies facultyID on date: owned batches running
// that day which are not handed to a substitute, plus batches the faculty is
// substituting into on that date.
func BusyIntervals(facultyID string, date time.Time, batches []models.Batch, subs []models.FacultySubstitution) []Interval {
	date = DateOnly(date)
	weekday := WeekdayName(date)
	byID := make(map[string]models.Batch, len(batches))
	busy := make([]Interval, 0)

	for _, b := range batches {
		byID[b.ID] = b
		if b.OwnerID() != facultyID || !batchRunsOn(b, date, weekday) {
			continue
		}
		if CoveringSubstitution(b.ID, subs, date) != nil {
			continue
		}
		busy = append(busy, NewInterval(b.StartTime, b.EndTime))
	}

	for _, sub := range subs {
		if sub.SubstituteFacultyID != facultyID || !Covers(sub, date) {
			continue
		}
		b, ok := byID[sub.BatchID]
		if !ok || !RunsOn(b.DaysOfWeek, weekday) {
			continue
		}
		busy = append(busy, NewInterval(b.StartTime, b.EndTime))
	}
	return busy
}

func batchRunsOn(b models.Batch, date time.Time, weekday string) bool {
	if date.Before(DateOnly(b.StartDate)) || date.After(DateOnly(b.EndDate)) {
		return false
	}
	return RunsOn(b.DaysOfWeek, weekday)
}

// MergeIntervals sorts intervals by start and merges overlapping ones.
// Touching intervals (next.Start == current.End) stay separate.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]Interval, 0, len(intervals))
	for _, i := range intervals {
		if !i.Empty() {
			sorted = append(sorted, i)
		}
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Start == sorted[b].Start {
			return sorted[a].End < sorted[b].End
		}
		return sorted[a].Start < sorted[b].Start
	})

	merged := make([]Interval, 0, len(sorted))
	for _, next := range sorted {
		if len(merged) == 0 {
			merged = append(merged, next)
			continue
		}
		current := &merged[len(merged)-1]
		if next.Start < current.End {
			if next.End > current.End {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// SubtractIntervals walks window left to right emitting the gaps between the
// sorted, merged busy intervals. Busy time outside the window is ignored.
func SubtractIntervals(window Interval, busy []Interval) []Interval {
	if window.Empty() {
		return nil
	}
	free := make([]Interval, 0, len(busy)+1)
	cursor := window.Start
	for _, b := range busy {
		if b.End <= cursor {
			continue
		}
		if b.Start >= window.End {
			break
		}
		if b.Start > cursor {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		cursor = b.End
		if cursor >= window.End {
			return free
		}
	}
	if cursor < window.End {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}

// IntersectIntervals returns the pairwise overlap of two interval sets.
func IntersectIntervals(a, b []Interval) []Interval {
	out := make([]Interval, 0)
	for _, left := range a {
		for _, right := range b {
			overlap := Interval{Start: max(left.Start, right.Start), End: min(left.End, right.End)}
			if !overlap.Empty() {
				out = append(out, overlap)
			}
		}
	}
	return out
}
