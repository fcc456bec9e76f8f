package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// IssueInvoiceRequest creates an invoice from a completed order.
type IssueInvoiceRequest struct {
	OrderID string  `json:"order_id" validate:"required,uuid"`
	EmailTo *string `json:"email_to" validate:"omitempty,email"`
	Notes   string  `json:"notes"    validate:"omitempty,max=500"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=paid cancelled"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

type InvoiceFilter struct {
	Status  string `form:"status"`
	OrderID string `form:"order_id" validate:"omitempty,uuid"`
	From    string `form:"from"     validate:"omitempty,datetime=2006-01-02"`
	To      string `form:"to"       validate:"omitempty,datetime=2006-01-02"`
	Page    int    `form:"page,default=1"  validate:"min=1"`
	Limit   int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceLineResponse struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type InvoiceResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"number"`
	OrderID         string                `json:"order_id"`
	OrderNumber     string                `json:"order_number"`
	ClientName       string               `json:"client_name"`
	ClientNationalID string               `json:"client_national_id"`
	ClientAddress    string               `json:"client_address"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	VATRate         decimal.Decimal       `json:"vat_rate"`
	VATAmount       decimal.Decimal       `json:"vat_amount"`
	Total           decimal.Decimal       `json:"total"`
	PaymentMethod   string                `json:"payment_method"`
	Advance         decimal.Decimal       `json:"advance"`
	InsuranceAmount decimal.Decimal       `json:"insurance_amount"`
	Balance         decimal.Decimal       `json:"balance"`
	IssueDate       string                `json:"issue_date"`
	DueDate         string                `json:"due_date"`
	Status          string                `json:"status"`
	Notes           string                `json:"notes"`
	DeliveryStatus  string                `json:"delivery_status"`
	EmailTo         *string               `json:"email_to"`
	Lines           []InvoiceLineResponse `json:"lines"`
}

type InvoiceListResponse struct {
	Data       []InvoiceResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
