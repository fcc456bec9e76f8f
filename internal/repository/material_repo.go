package repository

import (
	"context"

	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaterialRepository defines the data access contract for raw materials.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via mocks.
type MaterialRepository interface {
	Create(ctx context.Context, m *model.Material) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error)
	List(ctx context.Context, filter dto.MaterialFilter) ([]model.Material, int64, error)
	ListAll(ctx context.Context) ([]model.Material, error)
	Update(ctx context.Context, m *model.Material) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance
	UpdatePriceTx(tx *gorm.DB, id uuid.UUID, price decimal.Decimal) error
	AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
	CreatePriceHistoryTx(tx *gorm.DB, h *model.MaterialPriceHistory) error
	CreateStockMovementTx(tx *gorm.DB, mv *model.MaterialStockMovement) error

	ListPriceHistory(ctx context.Context, materialID uuid.UUID) ([]model.MaterialPriceHistory, error)
	ListStockMovements(ctx context.Context, materialID uuid.UUID) ([]model.MaterialStockMovement, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type materialRepo struct{ db *gorm.DB }

func NewMaterialRepository(db *gorm.DB) MaterialRepository { return &materialRepo{db: db} }

func (r *materialRepo) DB() *gorm.DB { return r.db }

func (r *materialRepo) Create(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *materialRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *materialRepo) List(ctx context.Context, filter dto.MaterialFilter) ([]model.Material, int64, error) {
	var materials []model.Material
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Material{})

	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
	default:
		q = q.Where("active = true")
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&materials).Error
	return materials, total, err
}

// ListAll returns every material, inactive included, for catalog snapshots.
// Inactive materials still price historical compositions that reference them.
func (r *materialRepo) ListAll(ctx context.Context) ([]model.Material, error) {
	var materials []model.Material
	err := r.db.WithContext(ctx).Find(&materials).Error
	return materials, err
}

func (r *materialRepo) Update(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *materialRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Material{}).Where("id = ?", id).Update("active", false).Error
}

func (r *materialRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Material{}).Where("id = ?", id).Update("active", true).Error
}

func (r *materialRepo) UpdatePriceTx(tx *gorm.DB, id uuid.UUID, price decimal.Decimal) error {
	return tx.Model(&model.Material{}).Where("id = ?", id).Update("unit_price", price).Error
}

func (r *materialRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Material{}).Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error
}

func (r *materialRepo) CreatePriceHistoryTx(tx *gorm.DB, h *model.MaterialPriceHistory) error {
	return tx.Create(h).Error
}

func (r *materialRepo) CreateStockMovementTx(tx *gorm.DB, mv *model.MaterialStockMovement) error {
	return tx.Create(mv).Error
}

func (r *materialRepo) ListPriceHistory(ctx context.Context, materialID uuid.UUID) ([]model.MaterialPriceHistory, error) {
	var history []model.MaterialPriceHistory
	err := r.db.WithContext(ctx).Where("material_id = ?", materialID).
		Order("created_at DESC").Find(&history).Error
	return history, err
}

func (r *materialRepo) ListStockMovements(ctx context.Context, materialID uuid.UUID) ([]model.MaterialStockMovement, error) {
	var movements []model.MaterialStockMovement
	err := r.db.WithContext(ctx).Where("material_id = ?", materialID).
		Order("created_at DESC").Find(&movements).Error
	return movements, err
}
