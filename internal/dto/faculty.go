package dto

// CreateFacultyRequest defines the payload for registering a faculty member.
type CreateFacultyRequest struct {
	Name           string   `json:"name" validate:"required,max=120"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	PhoneNumber    *string  `json:"phone_number" validate:"omitempty,max=32"`
	EmploymentType string   `json:"employment_type" validate:"omitempty,oneof=full_time part_time visiting"`
	SkillIDs       []string `json:"skillIds" validate:"omitempty,dive,required"`
}

// UpdateFacultyRequest defines the payload for updating a faculty member.
// A missing skillIds field keeps the current skills; an empty list clears them.
type UpdateFacultyRequest struct {
	Name           string   `json:"name" validate:"required,max=120"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	PhoneNumber    *string  `json:"phone_number" validate:"omitempty,max=32"`
	EmploymentType string   `json:"employment_type" validate:"omitempty,oneof=full_time part_time visiting"`
	IsActive       *bool    `json:"is_active"`
	SkillIDs       []string `json:"skillIds" validate:"omitempty,dive,required"`
}

// AvailabilityWindowRequest is one weekly window in an availability replace.
type AvailabilityWindowRequest struct {
	DayOfWeek string `json:"day_of_week" validate:"required,weekday"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

// SetAvailabilityRequest replaces the full weekly availability of a faculty.
type SetAvailabilityRequest struct {
	Availability []AvailabilityWindowRequest `json:"availability" validate:"dive"`
}
