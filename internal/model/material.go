package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Material is a raw material from the lab catalog. It is referenced (never
// owned) by product components via its id.
type Material struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"index;not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UnitOfMeasure string          `gorm:"not null;default:'unit'"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Active        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MaterialPriceHistory records every unit-price change on a material.
type MaterialPriceHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MaterialID uuid.UUID `gorm:"type:uuid;index;not null"`
	OldPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	NewPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ChangedBy  *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt  time.Time

	Material *Material `gorm:"foreignKey:MaterialID"`
}

func (MaterialPriceHistory) TableName() string { return "material_price_history" }

// MaterialStockMovement is an append-only ledger entry for stock adjustments.
// Quantity is signed: positive = intake, negative = consumption.
type MaterialStockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MaterialID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	StockBefore decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	StockAfter  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Material *Material `gorm:"foreignKey:MaterialID"`
}
