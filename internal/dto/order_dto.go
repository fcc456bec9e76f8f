package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	Notes     string `json:"notes"      validate:"omitempty,max=250"`
}

type CreateOrderRequest struct {
	ClientID           string             `json:"client_id"            validate:"required,uuid"`
	TechnicianID       *string            `json:"technician_id"        validate:"omitempty,uuid"`
	PaymentMethod      string             `json:"payment_method"       validate:"required,oneof=cash card insurance"`
	EstimatedDelivery  *string            `json:"estimated_delivery"   validate:"omitempty,datetime=2006-01-02"`
	Advance            decimal.Decimal    `json:"advance"              validate:"min=0"`
	InsuranceDocNumber string             `json:"insurance_doc_number" validate:"omitempty,max=50"`
	InsuranceDocDate   *string            `json:"insurance_doc_date"   validate:"omitempty,datetime=2006-01-02"`
	InsuranceValue     decimal.Decimal    `json:"insurance_value"      validate:"min=0"`
	Notes              string             `json:"notes"                validate:"omitempty,max=500"`
	Items              []OrderItemRequest `json:"items"                validate:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	TechnicianID       *string            `json:"technician_id"        validate:"omitempty,uuid"`
	PaymentMethod      *string            `json:"payment_method"       validate:"omitempty,oneof=cash card insurance"`
	EstimatedDelivery  *string            `json:"estimated_delivery"   validate:"omitempty,datetime=2006-01-02"`
	Advance            *decimal.Decimal   `json:"advance"`
	InsuranceDocNumber *string            `json:"insurance_doc_number" validate:"omitempty,max=50"`
	InsuranceDocDate   *string            `json:"insurance_doc_date"   validate:"omitempty,datetime=2006-01-02"`
	InsuranceValue     *decimal.Decimal   `json:"insurance_value"`
	Notes              *string            `json:"notes"                validate:"omitempty,max=500"`
	Items              []OrderItemRequest `json:"items"                validate:"omitempty,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new in_progress completed delivered cancelled"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

type OrderFilter struct {
	Status       string `form:"status"`   // empty = all
	ClientID     string `form:"client_id"    validate:"omitempty,uuid"`
	TechnicianID string `form:"technician_id" validate:"omitempty,uuid"`
	From         string `form:"from"         validate:"omitempty,datetime=2006-01-02"`
	To           string `form:"to"           validate:"omitempty,datetime=2006-01-02"`
	Page         int    `form:"page,default=1"  validate:"min=1"`
	Limit        int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Notes       string          `json:"notes"`
}

type OrderResponse struct {
	ID                 string              `json:"id"`
	Number             string              `json:"number"`
	ClientID           string              `json:"client_id"`
	ClientName         string              `json:"client_name"`
	TechnicianID       *string             `json:"technician_id"`
	TechnicianName     *string             `json:"technician_name"`
	Status             string              `json:"status"`
	PaymentMethod      string              `json:"payment_method"`
	OrderDate          string              `json:"order_date"`
	EstimatedDelivery  *string             `json:"estimated_delivery"`
	DeliveredAt        *string             `json:"delivered_at"`
	Advance            decimal.Decimal     `json:"advance"`
	InsuranceDocNumber string              `json:"insurance_doc_number"`
	InsuranceDocDate   *string             `json:"insurance_doc_date"`
	InsuranceValue     decimal.Decimal     `json:"insurance_value"`
	Total              decimal.Decimal     `json:"total"`
	Notes              string              `json:"notes"`
	Items              []OrderItemResponse `json:"items"`
}

type OrderListResponse struct {
	Data       []OrderResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// OrderStatsResponse feeds the dashboard widgets.
type OrderStatsResponse struct {
	TotalOrders    int64            `json:"total_orders"`
	ByStatus       map[string]int64 `json:"by_status"`
	RevenueMonth   decimal.Decimal  `json:"revenue_month"`
	PendingOrders  int64            `json:"pending_orders"`
	OverdueOrders  int64            `json:"overdue_orders"`
	DeliveredMonth int64            `json:"delivered_month"`
}
