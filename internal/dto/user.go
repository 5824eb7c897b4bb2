package dto

// CreateUserRequest provisions a login account. Faculty accounts must name
// the faculty record they act as.
type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required,max=64"`
	Email     string  `json:"email" validate:"required,email,max=254"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	Role      string  `json:"role" validate:"required,oneof=admin faculty"`
	FacultyID *string `json:"faculty_id" validate:"omitempty,uuid"`
}

// AssignRoleRequest changes an account's role and faculty link.
type AssignRoleRequest struct {
	UserID    string  `json:"user_id" validate:"required,uuid"`
	Role      string  `json:"role" validate:"required,oneof=admin faculty"`
	FacultyID *string `json:"faculty_id" validate:"omitempty,uuid"`
}

// UserListQuery filters the account listing.
type UserListQuery struct {
	Role     string `form:"role" binding:"omitempty,oneof=admin faculty"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
