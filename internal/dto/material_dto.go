package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateMaterialRequest struct {
	Name          string          `json:"name"            validate:"required,min=2,max=120"`
	UnitPrice     decimal.Decimal `json:"unit_price"      validate:"required"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	StockQuantity decimal.Decimal `json:"stock_quantity"  validate:"min=0"`
}

type UpdateMaterialRequest struct {
	Name          *string          `json:"name"            validate:"omitempty,min=2,max=120"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	UnitOfMeasure *string          `json:"unit_of_measure"`
}

// AdjustStockRequest records a signed stock movement against a material.
type AdjustStockRequest struct {
	Quantity    decimal.Decimal `json:"quantity"     validate:"required"`
	Reason      string          `json:"reason"       validate:"required,oneof=purchase consumption correction loss"`
	ReferenceID *string         `json:"reference_id" validate:"omitempty,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type MaterialFilter struct {
	Name   string `form:"name"`
	Active string `form:"active,default=true"` // true | false | all
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MaterialResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	Active        bool            `json:"active"`
}

type MaterialListResponse struct {
	Data       []MaterialResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type PriceHistoryResponse struct {
	ID        string          `json:"id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	ChangedBy string          `json:"changed_by"`
	CreatedAt string          `json:"created_at"`
}

type StockMovementResponse struct {
	ID          string          `json:"id"`
	Quantity    decimal.Decimal `json:"quantity"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
	Reason      string          `json:"reason"`
	ReferenceID *string         `json:"reference_id"`
	CreatedAt   string          `json:"created_at"`
}
