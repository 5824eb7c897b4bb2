package models

import (
	"time"

	"github.com/lib/pq"
)

// BatchStatus is derived from the batch date range and today's date.
type BatchStatus string

const (
	BatchStatusUpcoming  BatchStatus = "upcoming"
	BatchStatusActive    BatchStatus = "active"
	BatchStatusCompleted BatchStatus = "completed"
)

// Batch is a recurring cohort taught by one faculty on fixed weekdays.
type Batch struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description *string        `db:"description" json:"description,omitempty"`
	FacultyID   *string        `db:"faculty_id" json:"faculty_id,omitempty"`
	SkillID     *string        `db:"skill_id" json:"skill_id,omitempty"`
	StartDate   time.Time      `db:"start_date" json:"start_date"`
	EndDate     time.Time      `db:"end_date" json:"end_date"`
	StartTime   string         `db:"start_time" json:"start_time"`
	EndTime     string         `db:"end_time" json:"end_time"`
	DaysOfWeek  pq.StringArray `db:"days_of_week" json:"days_of_week"`
	MaxStudents int            `db:"max_students" json:"max_students"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// OwnerID returns the stored faculty id or an empty string.
func (b Batch) OwnerID() string {
	if b.FacultyID == nil {
		return ""
	}
	return *b.FacultyID
}

// BatchDetail enriches a batch with joined names and derived fields.
type BatchDetail struct {
	Batch
	FacultyName  *string     `db:"faculty_name" json:"faculty_name,omitempty"`
	SkillName    *string     `db:"skill_name" json:"skill_name,omitempty"`
	StudentCount int         `db:"student_count" json:"student_count"`
	Status       BatchStatus `db:"-" json:"status"`

	IsSubstituted       bool                 `db:"-" json:"is_substituted"`
	ActingFacultyID     string               `db:"-" json:"acting_faculty_id,omitempty"`
	OriginalFacultyID   *string              `db:"-" json:"original_faculty_id,omitempty"`
	SubstitutionDetails *FacultySubstitution `db:"-" json:"substitution,omitempty"`
	Students            []Student            `db:"-" json:"students,omitempty"`
}

// BatchStudent links a student to a batch.
type BatchStudent struct {
	BatchID   string `db:"batch_id" json:"batch_id"`
	StudentID string `db:"student_id" json:"student_id"`
}

// BatchFilter restricts batch queries.
type BatchFilter struct {
	FacultyID   string
	EndOnOrFrom *time.Time
	StartBefore *time.Time
	ExcludeID   string
}
