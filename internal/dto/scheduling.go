package dto

// FreeSlotsQuery holds the query string of the free-slot endpoint.
type FreeSlotsQuery struct {
	StartDate string `form:"startDate" validate:"required,date"`
	EndDate   string `form:"endDate" validate:"required,date"`
	FacultyID string `form:"faculty"`
	SkillID   string `form:"skill"`
}

// SuggestFacultyRequest describes a prospective batch looking for a faculty.
type SuggestFacultyRequest struct {
	SkillID    string   `json:"skillId" validate:"required"`
	StartDate  string   `json:"startDate" validate:"required,date"`
	EndDate    string   `json:"endDate" validate:"required,date"`
	DaysOfWeek []string `json:"daysOfWeek" validate:"required,min=1,dive,weekday"`
	StartTime  string   `json:"startTime" validate:"omitempty,clock"`
	EndTime    string   `json:"endTime" validate:"omitempty,clock"`
}
