package model

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a lab technician or staff member. UserID links the employee to
// a login account when one exists.
type Employee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstName string    `gorm:"not null"`
	LastName  string    `gorm:"index;not null"`
	Position  string    `gorm:"not null"`
	Phone     string
	Email     *string
	Active    bool       `gorm:"not null;default:true"`
	UserID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
