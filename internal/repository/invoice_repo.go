package repository

import (
	"context"
	"time"

	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	CreateTx(tx *gorm.DB, inv *model.Invoice) error
	NextNumberTx(tx *gorm.DB, year int) (string, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	// FindActiveByOrderID returns the non-cancelled invoice for an order, if any.
	FindActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error
	UpdateDelivery(ctx context.Context, id uuid.UUID, status string, retryCount int, nextRetryAt *time.Time, lastError *string) error
	// ListPendingDelivery feeds the retry cron: failed deliveries whose
	// next_retry_at has passed.
	ListPendingDelivery(ctx context.Context, now time.Time, limit int) ([]model.Invoice, error)
	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) CreateTx(tx *gorm.DB, inv *model.Invoice) error {
	return tx.Create(inv).Error
}

func (r *invoiceRepo) NextNumberTx(tx *gorm.DB, year int) (string, error) {
	seq, err := nextCounter(tx, counterScope("invoice", year))
	if err != nil {
		return "", err
	}
	return FormatDocumentNumber("FACT", year, seq), nil
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Preload("Lines").First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) FindActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Preload("Lines").
		Where("order_id = ? AND status <> ?", orderID, model.InvoiceStatusCancelled).
		First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Invoice{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.OrderID != "" {
		q = q.Where("order_id = ?", filter.OrderID)
	}
	if filter.From != "" {
		q = q.Where("issue_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("issue_date < (?::date + 1)", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Lines").Order("issue_date DESC").Limit(filter.Limit).Offset(offset).Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).Update("status", status).Error
}

func (r *invoiceRepo) UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).Update("pdf_path", path).Error
}

func (r *invoiceRepo) UpdateDelivery(ctx context.Context, id uuid.UUID, status string, retryCount int, nextRetryAt *time.Time, lastError *string) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).Updates(map[string]interface{}{
		"delivery_status": status,
		"retry_count":     retryCount,
		"next_retry_at":   nextRetryAt,
		"last_error":      lastError,
	}).Error
}

func (r *invoiceRepo) ListPendingDelivery(ctx context.Context, now time.Time, limit int) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("delivery_status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.DeliveryFailed, now).
		Order("next_retry_at ASC").Limit(limit).
		Find(&invoices).Error
	return invoices, err
}
