package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateEmployeeRequest struct {
	FirstName string  `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string  `json:"last_name"  validate:"required,min=2,max=100"`
	Position  string  `json:"position"   validate:"required,min=2,max=100"`
	Phone     string  `json:"phone"      validate:"omitempty,max=30"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	UserID    *string `json:"user_id"    validate:"omitempty,uuid"`
}

type UpdateEmployeeRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=2,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=2,max=100"`
	Position  *string `json:"position"   validate:"omitempty,min=2,max=100"`
	Phone     *string `json:"phone"      validate:"omitempty,max=30"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	UserID    *string `json:"user_id"    validate:"omitempty,uuid"`
	Active    *bool   `json:"active"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type EmployeeFilter struct {
	Search string `form:"search"`
	Active string `form:"active,default=true"` // true | false | all
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EmployeeResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Position  string  `json:"position"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	UserID    *string `json:"user_id"`
	Active    bool    `json:"active"`
}

type EmployeeListResponse struct {
	Data       []EmployeeResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
