package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateUserRequest struct {
	Username  string  `json:"username"   validate:"required,min=1,max=150"`
	FirstName string  `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string  `json:"last_name"  validate:"required,min=2,max=100"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Password  string  `json:"password"   validate:"required,min=8"`
	GroupID   string  `json:"group_id"   validate:"required,uuid"`
}

type UpdateUserRequest struct {
	FirstName string  `json:"first_name" validate:"omitempty,min=2,max=100"`
	LastName  string  `json:"last_name"  validate:"omitempty,min=2,max=100"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Password  string  `json:"password"   validate:"omitempty,min=8"`
	GroupID   string  `json:"group_id"   validate:"omitempty,uuid"`
	Active    *bool   `json:"active"`
}

type CreateGroupRequest struct {
	Name        string   `json:"name"        validate:"required,min=2,max=100"`
	Description string   `json:"description"`
	Modules     []string `json:"modules"     validate:"required,min=1"`
}

type UpdateGroupRequest struct {
	Name        string   `json:"name"        validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description"`
	Modules     []string `json:"modules"     validate:"omitempty,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email"`
	GroupID   string  `json:"group_id"`
	GroupName string  `json:"group_name"`
	Active    bool    `json:"active"`
}

type GroupResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Modules     []string `json:"modules"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	Modules      []string     `json:"modules"`
	User         UserResponse `json:"user"`
}
