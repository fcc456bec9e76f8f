package repository

import (
	"context"
	"time"

	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	// Create and UpdateTx run inside the caller's transaction so the order
	// number, total and line items are persisted atomically.
	CreateTx(tx *gorm.DB, o *model.Order) error
	UpdateTx(tx *gorm.DB, o *model.Order) error
	NextNumberTx(tx *gorm.DB, year int) (string, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, deliveredAt *time.Time) error
	Stats(ctx context.Context) (*dto.OrderStatsResponse, error)
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Omit("Client", "Technician", "Items.Product").Create(o).Error
}

// UpdateTx replaces the full item list along with the order row, keeping the
// stored total consistent with the lines that produced it.
func (r *orderRepo) UpdateTx(tx *gorm.DB, o *model.Order) error {
	if err := tx.Where("order_id = ?", o.ID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	return tx.Omit("Client", "Technician", "Items.Product").Save(o).Error
}

func (r *orderRepo) NextNumberTx(tx *gorm.DB, year int) (string, error) {
	seq, err := nextCounter(tx, counterScope("order", year))
	if err != nil {
		return "", err
	}
	return FormatDocumentNumber("CMD", year, seq), nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").Preload("Client").Preload("Technician").
		First(&o, id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.TechnicianID != "" {
		q = q.Where("technician_id = ?", filter.TechnicianID)
	}
	if filter.From != "" {
		q = q.Where("order_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("order_date < (?::date + 1)", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Product").Preload("Client").Preload("Technician").
		Order("order_date DESC").Limit(filter.Limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, deliveredAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if deliveredAt != nil {
		updates["delivered_at"] = *deliveredAt
	}
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(updates).Error
}

// Stats aggregates the dashboard counters in a handful of queries.
func (r *orderRepo) Stats(ctx context.Context) (*dto.OrderStatsResponse, error) {
	stats := &dto.OrderStatsResponse{ByStatus: map[string]int64{}}
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	type statusRow struct {
		Status string
		N      int64
	}
	var rows []statusRow
	if err := db.Model(&model.Order{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.N
	}
	stats.PendingOrders = stats.ByStatus[model.OrderStatusNew] + stats.ByStatus[model.OrderStatusInProgress]

	var revenue decimal.NullDecimal
	if err := db.Model(&model.Order{}).
		Where("status NOT IN ?", []string{model.OrderStatusCancelled}).
		Where("date_trunc('month', order_date) = date_trunc('month', CURRENT_DATE)").
		Select("COALESCE(SUM(total), 0)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.RevenueMonth = revenue.Decimal

	if err := db.Model(&model.Order{}).
		Where("status IN ?", []string{model.OrderStatusNew, model.OrderStatusInProgress}).
		Where("estimated_delivery IS NOT NULL AND estimated_delivery < CURRENT_DATE").
		Count(&stats.OverdueOrders).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusDelivered).
		Where("date_trunc('month', delivered_at) = date_trunc('month', CURRENT_DATE)").
		Count(&stats.DeliveredMonth).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
