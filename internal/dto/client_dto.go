package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateClientRequest struct {
	FirstName  string  `json:"first_name"  validate:"required,min=2,max=100"`
	LastName   string  `json:"last_name"   validate:"required,min=2,max=100"`
	NationalID string  `json:"national_id" validate:"omitempty,max=20"`
	Phone      string  `json:"phone"       validate:"omitempty,max=30"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	Address    string  `json:"address"     validate:"omitempty,max=250"`
}

type UpdateClientRequest struct {
	FirstName  *string `json:"first_name"  validate:"omitempty,min=2,max=100"`
	LastName   *string `json:"last_name"   validate:"omitempty,min=2,max=100"`
	NationalID *string `json:"national_id" validate:"omitempty,max=20"`
	Phone      *string `json:"phone"       validate:"omitempty,max=30"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	Address    *string `json:"address"     validate:"omitempty,max=250"`
}

type CreateClientDocumentRequest struct {
	Type  string `json:"type"  validate:"required,oneof=measurements mold xray prescription other"`
	Name  string `json:"name"  validate:"required,min=2,max=150"`
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ClientFilter struct {
	Search string `form:"search"` // matches name, national id or phone
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClientResponse struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	NationalID string  `json:"national_id"`
	Phone      string  `json:"phone"`
	Email      *string `json:"email"`
	Address    string  `json:"address"`
}

type ClientListResponse struct {
	Data       []ClientResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

type ClientDocumentResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}
