package models

import (
	"time"

	"github.com/lib/pq"
)

// FacultySubstitution temporarily overrides who teaches a batch for a date range.
type FacultySubstitution struct {
	ID                  string    `db:"id" json:"id"`
	BatchID             string    `db:"batch_id" json:"batch_id"`
	OriginalFacultyID   string    `db:"original_faculty_id" json:"original_faculty_id"`
	SubstituteFacultyID string    `db:"substitute_faculty_id" json:"substitute_faculty_id"`
	StartDate           time.Time `db:"start_date" json:"start_date"`
	EndDate             time.Time `db:"end_date" json:"end_date"`
	Notes               *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// SubstitutionDetail joins a substitution with its batch schedule and faculty names.
type SubstitutionDetail struct {
	FacultySubstitution
	BatchName             string         `db:"batch_name" json:"batch_name"`
	BatchStartTime        string         `db:"batch_start_time" json:"batch_start_time"`
	BatchEndTime          string         `db:"batch_end_time" json:"batch_end_time"`
	BatchDaysOfWeek       pq.StringArray `db:"batch_days_of_week" json:"batch_days_of_week"`
	OriginalFacultyName   *string        `db:"original_faculty_name" json:"original_faculty_name,omitempty"`
	SubstituteFacultyName *string        `db:"substitute_faculty_name" json:"substitute_faculty_name,omitempty"`
}
