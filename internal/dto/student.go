package dto

// StudentRequest defines the payload for creating or updating a student.
type StudentRequest struct {
	Name            string  `json:"name" validate:"required,max=120"`
	AdmissionNumber string  `json:"admission_number" validate:"required,max=32"`
	PhoneNumber     *string `json:"phone_number" validate:"omitempty,max=32"`
	Remarks         *string `json:"remarks"`
}

// StudentListQuery filters the student listing.
type StudentListQuery struct {
	Search     string `form:"search"`
	Unassigned bool   `form:"unassigned"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}
