package models

import "time"

// StudentAttendance is one student's presence for a batch session on a date.
type StudentAttendance struct {
	BatchID   string    `db:"batch_id" json:"batch_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Date      time.Time `db:"date" json:"date"`
	IsPresent bool      `db:"is_present" json:"is_present"`
}

// AttendanceRecord joins attendance with the student's name.
type AttendanceRecord struct {
	StudentAttendance
	StudentName     string `db:"student_name" json:"student_name"`
	AdmissionNumber string `db:"admission_number" json:"admission_number"`
}

// AttendanceMark is a single student mark inside a daily sheet.
type AttendanceMark struct {
	StudentID string `json:"student_id"`
	IsPresent bool   `json:"is_present"`
}

// BatchAttendanceReport groups a batch's attendance by session date.
type BatchAttendanceReport struct {
	BatchID          string                      `json:"batch_id"`
	BatchName        string                      `json:"batch_name"`
	StartDate        string                      `json:"start_date"`
	EndDate          string                      `json:"end_date"`
	Students         []Student                   `json:"students"`
	AttendanceByDate map[string][]AttendanceMark `json:"attendance_by_date"`
	TaughtBy         map[string]string           `json:"taught_by"`
}

// FacultyBatchAttendance summarises sessions a faculty actually taught for one batch.
type FacultyBatchAttendance struct {
	BatchID        string  `json:"batch_id"`
	BatchName      string  `json:"batch_name"`
	Sessions       int     `json:"sessions"`
	SubstituteDays int     `json:"substitute_days"`
	PresentCount   int     `json:"present_count"`
	TotalMarks     int     `json:"total_marks"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// FacultyAttendanceReport aggregates a faculty's taught sessions in a range.
type FacultyAttendanceReport struct {
	FacultyID      string                   `json:"faculty_id"`
	FacultyName    string                   `json:"faculty_name"`
	StartDate      string                   `json:"start_date"`
	EndDate        string                   `json:"end_date"`
	Batches        []FacultyBatchAttendance `json:"batches"`
	Sessions       int                      `json:"sessions"`
	AttendanceRate float64                  `json:"attendance_rate"`
}
