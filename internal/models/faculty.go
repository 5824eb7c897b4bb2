package models

import "time"

// EmploymentType classifies how a faculty member is engaged.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentVisiting EmploymentType = "visiting"
)

// Faculty represents an instructor who can own batches.
type Faculty struct {
	ID             string               `db:"id" json:"id"`
	Name           string               `db:"name" json:"name"`
	Email          *string              `db:"email" json:"email,omitempty"`
	PhoneNumber    *string              `db:"phone_number" json:"phone_number,omitempty"`
	EmploymentType EmploymentType       `db:"employment_type" json:"employment_type"`
	IsActive       bool                 `db:"is_active" json:"is_active"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updated_at"`
	Skills         []Skill              `db:"-" json:"skills"`
	Availability   []AvailabilityWindow `db:"-" json:"availability"`
}

// HasSkill reports whether the faculty carries the given skill.
func (f Faculty) HasSkill(skillID string) bool {
	for _, skill := range f.Skills {
		if skill.ID == skillID {
			return true
		}
	}
	return false
}

// AvailabilityWindow is the weekly window a faculty can teach on a given day.
type AvailabilityWindow struct {
	ID        string `db:"id" json:"id"`
	FacultyID string `db:"faculty_id" json:"faculty_id"`
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}

// Skill is a teachable subject.
type Skill struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// FacultySkill links a faculty to a skill row.
type FacultySkill struct {
	FacultyID string `db:"faculty_id" json:"faculty_id"`
	SkillID   string `db:"skill_id" json:"skill_id"`
	SkillName string `db:"skill_name" json:"skill_name"`
}

// FacultyFilter captures filters for listing faculty.
type FacultyFilter struct {
	ID      string
	SkillID string
	Active  *bool
}
