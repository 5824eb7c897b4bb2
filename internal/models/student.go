package models

import "time"

// Student represents a learner enrolled in one or more batches.
type Student struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	AdmissionNumber string    `db:"admission_number" json:"admission_number"`
	PhoneNumber     *string   `db:"phone_number" json:"phone_number,omitempty"`
	Remarks         *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	FacultyID  string
	Unassigned bool
	Page       int
	PageSize   int
}
