package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	InvoiceStatusIssued    = "issued"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice delivery states for the async PDF/email pipeline.
// "none" = no email requested, "pending" = queued, "sent", "failed".
const (
	DeliveryNone    = "none"
	DeliveryPending = "pending"
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
)

// Invoice is issued from an order. Client fields are a snapshot taken at
// issue time so later client edits never rewrite history. At most one
// non-cancelled invoice exists per order.
type Invoice struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number      string    `gorm:"uniqueIndex;not null"`
	OrderID     uuid.UUID `gorm:"type:uuid;index;not null"`
	OrderNumber string    `gorm:"not null"`

	// Client snapshot
	ClientFirstName  string `gorm:"not null"`
	ClientLastName   string `gorm:"not null"`
	ClientNationalID string
	ClientPhone      string
	ClientEmail      *string
	ClientAddress    string

	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VATRate         decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	VATAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null"`
	Advance         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	InsuranceAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Balance         decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	IssueDate time.Time `gorm:"not null"`
	DueDate   time.Time `gorm:"not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'issued'"`
	Notes     string

	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath *string `gorm:"column:pdf_path"`

	// Email delivery — used by the invoice/email workers and the retry cron
	EmailTo        *string
	DeliveryStatus string     `gorm:"type:varchar(10);not null;default:'none'"`
	RetryCount     int        `gorm:"not null;default:0"`
	NextRetryAt    *time.Time `gorm:"column:next_retry_at"`
	LastError      *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// InvoiceLine is a frozen billing line: the product name and unit price as
// they were at issue time.
type InvoiceLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Description string    `gorm:"not null"`
	Quantity    int       `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
