package dto

// CreateSubstitutionRequest schedules a temporary substitute for a batch.
type CreateSubstitutionRequest struct {
	BatchID             string  `json:"batchId" validate:"required"`
	SubstituteFacultyID string  `json:"substituteFacultyId" validate:"required"`
	StartDate           string  `json:"startDate" validate:"required,date"`
	EndDate             string  `json:"endDate" validate:"required,date"`
	Notes               *string `json:"notes" validate:"omitempty,max=500"`
}

// UpdateSubstitutionRequest changes the substitute, dates or notes of a substitution.
// Empty fields keep their stored values; notes is replaced whenever present.
type UpdateSubstitutionRequest struct {
	SubstituteFacultyID string  `json:"substituteFacultyId"`
	StartDate           string  `json:"startDate" validate:"omitempty,date"`
	EndDate             string  `json:"endDate" validate:"omitempty,date"`
	Notes               *string `json:"notes" validate:"omitempty,max=500"`
}

// AssignFacultyRequest permanently moves a batch to another faculty.
type AssignFacultyRequest struct {
	BatchID   string `json:"batchId" validate:"required"`
	FacultyID string `json:"facultyId" validate:"required"`
}

// MergeBatchesRequest moves every student of the source batch into the target and deletes the source.
type MergeBatchesRequest struct {
	SourceBatchID string `json:"sourceBatchId" validate:"required"`
	TargetBatchID string `json:"targetBatchId" validate:"required"`
}

// MergeBatchesResponse reports the outcome of a merge.
type MergeBatchesResponse struct {
	SourceBatchID string `json:"sourceBatchId"`
	TargetBatchID string `json:"targetBatchId"`
	MovedStudents int64  `json:"movedStudents"`
}
