package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a patient/customer of the lab.
type Client struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstName  string    `gorm:"not null"`
	LastName   string    `gorm:"index;not null"`
	NationalID string    `gorm:"index"`
	Phone      string
	Email      *string
	Address    string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Documents []ClientDocument `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// ClientDocument holds metadata about a clinical document belonging to a
// client. Document types: "measurements" | "mold" | "xray" | "prescription" |
// "other". File payloads are not stored here.
type ClientDocument struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Type      string    `gorm:"type:varchar(20);not null"`
	Name      string    `gorm:"not null"`
	Notes     string
	CreatedAt time.Time
}
