package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ComponentRequest struct {
	MaterialID string          `json:"material_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity"    validate:"required"`
}

type CreateProductRequest struct {
	Kind            string             `json:"kind"              validate:"required,oneof=product service"`
	Name            string             `json:"name"              validate:"required,min=2,max=120"`
	Description     *string            `json:"description"`
	ParentProductID *string            `json:"parent_product_id" validate:"omitempty,uuid"`
	LaborPrice      decimal.Decimal    `json:"labor_price"       validate:"min=0"`
	Components      []ComponentRequest `json:"components"        validate:"dive"`
	// Force skips the duplicate check and saves anyway.
	Force bool `json:"force"`
}

type UpdateProductRequest struct {
	Name            *string            `json:"name"              validate:"omitempty,min=2,max=120"`
	Description     *string            `json:"description"`
	ParentProductID *string            `json:"parent_product_id" validate:"omitempty,uuid"`
	LaborPrice      *decimal.Decimal   `json:"labor_price"`
	Components      []ComponentRequest `json:"components"        validate:"dive"`
	Force           bool               `json:"force"`
}

// PricePreviewRequest prices a hypothetical composition without saving it.
type PricePreviewRequest struct {
	ParentProductID *string            `json:"parent_product_id" validate:"omitempty,uuid"`
	LaborPrice      decimal.Decimal    `json:"labor_price"       validate:"min=0"`
	Components      []ComponentRequest `json:"components"        validate:"dive"`
}

// DuplicateCheckRequest asks whether a composition already exists in the catalog.
type DuplicateCheckRequest struct {
	ParentProductID *string            `json:"parent_product_id"  validate:"omitempty,uuid"`
	Components      []ComponentRequest `json:"components"         validate:"dive"`
	ExcludeID       *string            `json:"exclude_product_id" validate:"omitempty,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Name   string `form:"name"`
	Kind   string `form:"kind"`                 // product | service | empty = all
	Active string `form:"active,default=true"`  // true | false | all
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ComponentResponse struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

type ProductResponse struct {
	ID              string              `json:"id"`
	Kind            string              `json:"kind"`
	Name            string              `json:"name"`
	Description     *string             `json:"description"`
	ParentProductID *string             `json:"parent_product_id"`
	ParentName      *string             `json:"parent_name"`
	LaborPrice      decimal.Decimal     `json:"labor_price"`
	Components      []ComponentResponse `json:"components"`
	Active          bool                `json:"active"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// PriceResponse is the full cost breakdown for a product, with the flattened
// component list including everything inherited through the parent chain.
type PriceResponse struct {
	ProductID        string              `json:"product_id,omitempty"`
	MaterialCost     decimal.Decimal     `json:"material_cost"`
	LaborTotal       decimal.Decimal     `json:"labor_total"`
	Total            decimal.Decimal     `json:"total"`
	Components       []ComponentResponse `json:"components"`
	MissingMaterials []string            `json:"missing_materials,omitempty"`
	MissingParent    bool                `json:"missing_parent,omitempty"`
}

type DuplicateCheckResponse struct {
	Duplicate   bool   `json:"duplicate"`
	ProductName string `json:"product_name,omitempty"`
}
