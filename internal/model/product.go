package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product kinds. A service carries only a labor price: it never has a parent
// product or material components.
const (
	KindProduct = "product"
	KindService = "service"
)

// Product is a sellable product or service. A product may derive from a
// parent product, in which case its effective bill of materials is its own
// components merged with the parent chain's, and its price additionally
// includes every ancestor's labor. Parent links form a forest — cycles are
// rejected at edit time.
type Product struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind            string    `gorm:"type:varchar(10);not null;default:'product'"`
	Name            string    `gorm:"index;not null"`
	Description     *string
	ParentProductID *uuid.UUID      `gorm:"type:uuid;index"`
	LaborPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Active          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Components []ProductComponent `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Parent     *Product           `gorm:"foreignKey:ParentProductID"`
}

func (p *Product) IsService() bool { return p.Kind == KindService }

// ProductComponent links a product to a raw material with a quantity.
// The material is referenced by id only; a deleted material leaves a
// dangling reference that the pricing layer treats as zero contribution.
type ProductComponent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID `gorm:"type:uuid;index;not null"`
	MaterialID uuid.UUID `gorm:"type:uuid;index;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	Material *Material `gorm:"foreignKey:MaterialID"`
}
