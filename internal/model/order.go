package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusNew        = "new"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment methods shared by orders and invoices.
const (
	PaymentCash      = "cash"
	PaymentCard      = "card"
	PaymentInsurance = "insurance"
)

// Order is a client work order. Total is always recomputed from the product
// catalog and persisted together with the line items that produced it —
// there is never a stored total that reflects a different line set.
type Order struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number       string    `gorm:"uniqueIndex;not null"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null"`
	TechnicianID *uuid.UUID `gorm:"type:uuid;index"`
	Status       string     `gorm:"type:varchar(20);not null;default:'new'"`
	PaymentMethod string    `gorm:"type:varchar(20);not null;default:'cash'"`
	OrderDate    time.Time  `gorm:"not null"`
	EstimatedDelivery *time.Time
	DeliveredAt       *time.Time
	Advance      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	// Insurance approval document — value is deducted from the invoice balance
	InsuranceDocNumber *string
	InsuranceDocDate   *time.Time
	InsuranceValue     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Client     *Client     `gorm:"foreignKey:ClientID"`
	Technician *Employee   `gorm:"foreignKey:TechnicianID"`
}

// OrderItem is a product line on an order.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  int       `gorm:"not null"`
	Notes     string

	Product *Product `gorm:"foreignKey:ProductID"`
}

// DocumentCounter backs the yearly CMD-/FACT- numbering sequences.
// Scope format: "order:2026", "invoice:2026".
type DocumentCounter struct {
	Scope string `gorm:"primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}
