package dto

// AttendanceMarkRequest is a single student's presence flag.
type AttendanceMarkRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	IsPresent bool   `json:"is_present"`
}

// SaveAttendanceRequest upserts attendance for one batch session.
type SaveAttendanceRequest struct {
	BatchID    string                  `json:"batchId" validate:"required"`
	Date       string                  `json:"date" validate:"required"`
	Attendance []AttendanceMarkRequest `json:"attendance" validate:"required,min=1,dive"`
}

// DateRangeQuery bounds report queries.
type DateRangeQuery struct {
	StartDate string `form:"startDate" validate:"required,date"`
	EndDate   string `form:"endDate" validate:"required,date"`
	Format    string `form:"format" validate:"omitempty,oneof=json csv pdf"`
}

// DailySheet lists a batch's roster with the marks recorded for one date.
type DailySheet struct {
	BatchID         string            `json:"batch_id"`
	Date            string            `json:"date"`
	ActingFacultyID string            `json:"acting_faculty_id,omitempty"`
	Substituted     bool              `json:"substituted"`
	Entries         []DailySheetEntry `json:"entries"`
}

// DailySheetEntry is one roster row. IsPresent is nil when nothing was recorded.
type DailySheetEntry struct {
	StudentID       string `json:"student_id"`
	StudentName     string `json:"student_name"`
	AdmissionNumber string `json:"admission_number"`
	IsPresent       *bool  `json:"is_present"`
}
