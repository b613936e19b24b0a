package dto

// CreateEmployeeRequest is the payload for adding a roster employee.
type CreateEmployeeRequest struct {
	RoleID    string `json:"role_id" validate:"required"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
}

// UpdateEmployeeRequest is the payload for editing a roster employee.
type UpdateEmployeeRequest struct {
	RoleID    string `json:"role_id" validate:"required"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Active    *bool  `json:"active"`
}
