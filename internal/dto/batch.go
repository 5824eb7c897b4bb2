package dto

// BatchRequest defines the payload for creating or updating a batch.
// On update a missing studentIds field keeps the current enrolment.
type BatchRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description *string  `json:"description"`
	StartDate   string   `json:"startDate" validate:"required,date"`
	EndDate     string   `json:"endDate" validate:"required,date"`
	StartTime   string   `json:"startTime" validate:"required,clock"`
	EndTime     string   `json:"endTime" validate:"required,clock"`
	DaysOfWeek  []string `json:"daysOfWeek" validate:"required,min=1,dive,weekday"`
	FacultyID   *string  `json:"facultyId"`
	SkillID     *string  `json:"skillId"`
	MaxStudents int      `json:"maxStudents" validate:"gte=0"`
	StudentIDs  []string `json:"studentIds" validate:"omitempty,dive,required"`
}

// BatchListQuery filters the batch listing.
type BatchListQuery struct {
	FacultyID string `form:"facultyId"`
	Status    string `form:"status" validate:"omitempty,oneof=upcoming active completed"`
}
