package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/repository"
	"github.com/ciprianbratila/ortho-orders/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubMaterialRepo is an in-memory MaterialRepository for testing.
type stubMaterialRepo struct {
	materials map[uuid.UUID]*model.Material
}

func newStubMaterialRepo(materials ...*model.Material) *stubMaterialRepo {
	r := &stubMaterialRepo{materials: make(map[uuid.UUID]*model.Material)}
	for _, m := range materials {
		r.materials[m.ID] = m
	}
	return r
}

func (r *stubMaterialRepo) Create(_ context.Context, m *model.Material) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.materials[m.ID] = m
	return nil
}

func (r *stubMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (r *stubMaterialRepo) List(_ context.Context, _ dto.MaterialFilter) ([]model.Material, int64, error) {
	return r.all(), int64(len(r.materials)), nil
}

func (r *stubMaterialRepo) ListAll(_ context.Context) ([]model.Material, error) {
	return r.all(), nil
}

func (r *stubMaterialRepo) Update(_ context.Context, m *model.Material) error {
	r.materials[m.ID] = m
	return nil
}

func (r *stubMaterialRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if m, ok := r.materials[id]; ok {
		m.Active = false
	}
	return nil
}

func (r *stubMaterialRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if m, ok := r.materials[id]; ok {
		m.Active = true
	}
	return nil
}

func (r *stubMaterialRepo) UpdatePriceTx(_ *gorm.DB, _ uuid.UUID, _ decimal.Decimal) error {
	return nil
}
func (r *stubMaterialRepo) AdjustStockTx(_ *gorm.DB, _ uuid.UUID, _ decimal.Decimal) error {
	return nil
}
func (r *stubMaterialRepo) CreatePriceHistoryTx(_ *gorm.DB, _ *model.MaterialPriceHistory) error {
	return nil
}
func (r *stubMaterialRepo) CreateStockMovementTx(_ *gorm.DB, _ *model.MaterialStockMovement) error {
	return nil
}
func (r *stubMaterialRepo) ListPriceHistory(_ context.Context, _ uuid.UUID) ([]model.MaterialPriceHistory, error) {
	return nil, nil
}
func (r *stubMaterialRepo) ListStockMovements(_ context.Context, _ uuid.UUID) ([]model.MaterialStockMovement, error) {
	return nil, nil
}
func (r *stubMaterialRepo) DB() *gorm.DB { return nil }

func (r *stubMaterialRepo) all() []model.Material {
	out := make([]model.Material, 0, len(r.materials))
	for _, m := range r.materials {
		out = append(out, *m)
	}
	return out
}

var _ repository.MaterialRepository = (*stubMaterialRepo)(nil)

// recordingCache counts invalidations so tests can assert cache behavior.
type recordingCache struct {
	invalidations int
}

func (c *recordingCache) Get(_ context.Context, _ uuid.UUID) ([]byte, bool) { return nil, false }
func (c *recordingCache) Set(_ context.Context, _ uuid.UUID, _ []byte)      {}
func (c *recordingCache) Invalidate(_ context.Context, _ uuid.UUID)         {}
func (c *recordingCache) InvalidateAll(_ context.Context)                   { c.invalidations++ }

var _ service.PriceCache = (*recordingCache)(nil)

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestMaterialCreateDefaultsUnit(t *testing.T) {
	svc := service.NewMaterialService(newStubMaterialRepo(), nil)

	resp, err := svc.Create(context.Background(), dto.CreateMaterialRequest{
		Name:      "Orthodontic wire",
		UnitPrice: dec("3.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "unit", resp.UnitOfMeasure)
	assert.True(t, resp.Active)
}

func TestMaterialPriceChangeInvalidatesCache(t *testing.T) {
	m := &model.Material{ID: uuid.New(), Name: "Resin", UnitPrice: dec("10.00"), Active: true}
	cache := &recordingCache{}
	svc := service.NewMaterialService(newStubMaterialRepo(m), cache)

	newPrice := dec("12.00")
	resp, err := svc.Update(context.Background(), m.ID, uuid.New(), dto.UpdateMaterialRequest{
		UnitPrice: &newPrice,
	})
	require.NoError(t, err)
	assert.True(t, newPrice.Equal(resp.UnitPrice))
	assert.Equal(t, 1, cache.invalidations)

	// Updating without touching the price leaves the cache alone.
	name := "Acrylic resin"
	_, err = svc.Update(context.Background(), m.ID, uuid.New(), dto.UpdateMaterialRequest{
		Name: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations)
}

func TestMaterialAdjustStock(t *testing.T) {
	m := &model.Material{ID: uuid.New(), Name: "Plaster", UnitPrice: dec("5.00"), StockQuantity: dec("10"), Active: true}
	svc := service.NewMaterialService(newStubMaterialRepo(m), nil)

	resp, err := svc.AdjustStock(context.Background(), m.ID, dto.AdjustStockRequest{
		Quantity: dec("-4"),
		Reason:   "consumption",
	})
	require.NoError(t, err)
	assert.True(t, dec("6").Equal(resp.StockQuantity))
}

func TestMaterialAdjustStockRejectsNegativeResult(t *testing.T) {
	m := &model.Material{ID: uuid.New(), Name: "Plaster", UnitPrice: dec("5.00"), StockQuantity: dec("3"), Active: true}
	svc := service.NewMaterialService(newStubMaterialRepo(m), nil)

	_, err := svc.AdjustStock(context.Background(), m.ID, dto.AdjustStockRequest{
		Quantity: dec("-5"),
		Reason:   "loss",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below zero")
}

func TestMaterialDeactivateInvalidatesCache(t *testing.T) {
	m := &model.Material{ID: uuid.New(), Name: "Wax", UnitPrice: dec("2.00"), Active: true}
	cache := &recordingCache{}
	svc := service.NewMaterialService(newStubMaterialRepo(m), cache)

	require.NoError(t, svc.Deactivate(context.Background(), m.ID))
	assert.Equal(t, 1, cache.invalidations)
	assert.False(t, m.Active)
}
