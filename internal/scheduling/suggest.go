package scheduling

import (
	"time"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// SuggestionStatus grades how well a faculty fits a requested time.
type SuggestionStatus string

const (
	SuggestionAvailable           SuggestionStatus = "available"
	SuggestionAvailableOtherTimes SuggestionStatus = "available_other_times"
)

// SuggestionInput describes a prospective batch looking for a faculty.
type SuggestionInput struct {
	Faculty   []models.Faculty
	Batches   []models.Batch
	SkillID   string
	StartDate time.Time
	EndDate   time.Time
	Days      []string
	StartTime string
	EndTime   string
}

// CommonSlot is a window free on every requested day.
type CommonSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Suggestion is a faculty who has common free time on all requested days.
type Suggestion struct {
	FacultyID   string           `json:"faculty_id"`
	FacultyName string           `json:"faculty_name"`
	CommonSlots []CommonSlot     `json:"common_slots"`
	Status      SuggestionStatus `json:"status"`
}

// SuggestFaculty finds skilled faculty whose free windows, after their batches
// overlapping the requested date range, intersect across every requested day.
// When a time range is requested it grades each candidate by full containment.
func SuggestFaculty(in SuggestionInput) []Suggestion {
	suggestions := make([]Suggestion, 0)
	if len(in.Days) == 0 {
		return suggestions
	}
	wantTime := in.StartTime != "" && in.EndTime != ""
	requested := NewInterval(in.StartTime, in.EndTime)

	for _, faculty := range FilterFaculty(in.Faculty, "", in.SkillID) {
		var common []Interval
		for i, day := range in.Days {
			free := freeOnWeekday(faculty, day, in)
			if i == 0 {
				common = free
			} else {
				common = IntersectIntervals(common, free)
			}
			if len(common) == 0 {
				break
			}
		}
		if len(common) == 0 {
			continue
		}

		suggestion := Suggestion{
			FacultyID:   faculty.ID,
			FacultyName: faculty.Name,
			CommonSlots: make([]CommonSlot, 0, len(common)),
			Status:      SuggestionAvailable,
		}
		fits := false
		for _, slot := range common {
			suggestion.CommonSlots = append(suggestion.CommonSlots, CommonSlot{Start: MinutesToTime(slot.Start), End: MinutesToTime(slot.End)})
			if slot.Start <= requested.Start && slot.End >= requested.End {
				fits = true
			}
		}
		if wantTime && !fits {
			suggestion.Status = SuggestionAvailableOtherTimes
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions
}

func freeOnWeekday(faculty models.Faculty, day string, in SuggestionInput) []Interval {
	window, ok := FindWindow(faculty.Availability, day)
	if !ok {
		return nil
	}
	busy := make([]Interval, 0)
	for _, b := range in.Batches {
		if b.OwnerID() != faculty.ID || !RunsOn(b.DaysOfWeek, day) {
			continue
		}
		if !DatesOverlap(b.StartDate, b.EndDate, in.StartDate, in.EndDate) {
			continue
		}
		busy = append(busy, NewInterval(b.StartTime, b.EndTime))
	}
	return SubtractIntervals(NewInterval(window.StartTime, window.EndTime), MergeIntervals(busy))
}
