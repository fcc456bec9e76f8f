package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialService interface {
	Create(ctx context.Context, req dto.CreateMaterialRequest) (*dto.MaterialResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error)
	List(ctx context.Context, filter dto.MaterialFilter) (*dto.MaterialListResponse, error)
	Update(ctx context.Context, id uuid.UUID, actorID uuid.UUID, req dto.UpdateMaterialRequest) (*dto.MaterialResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.MaterialResponse, error)
	PriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceHistoryResponse, error)
	StockMovements(ctx context.Context, id uuid.UUID) ([]dto.StockMovementResponse, error)
}

type materialService struct {
	repo  repository.MaterialRepository
	cache PriceCache
}

func NewMaterialService(repo repository.MaterialRepository, cache PriceCache) MaterialService {
	return &materialService{repo: repo, cache: cache}
}

func (s *materialService) Create(ctx context.Context, req dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	m := &model.Material{
		Name:          req.Name,
		UnitPrice:     req.UnitPrice,
		UnitOfMeasure: req.UnitOfMeasure,
		StockQuantity: req.StockQuantity,
		Active:        true,
	}
	if m.UnitOfMeasure == "" {
		m.UnitOfMeasure = "unit"
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return materialToResponse(m), nil
}

func (s *materialService) GetByID(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("material not found")
	}
	return materialToResponse(m), nil
}

func (s *materialService) List(ctx context.Context, filter dto.MaterialFilter) (*dto.MaterialListResponse, error) {
	materials, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MaterialResponse, len(materials))
	for i := range materials {
		data[i] = *materialToResponse(&materials[i])
	}
	return &dto.MaterialListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Update writes the material and, when the unit price changed, a price
// history record in the same transaction. A price change also invalidates
// every cached product price since any composition may reference this
// material.
func (s *materialService) Update(ctx context.Context, id uuid.UUID, actorID uuid.UUID, req dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("material not found")
	}

	priceChanged := req.UnitPrice != nil && !req.UnitPrice.Equal(m.UnitPrice)
	oldPrice := m.UnitPrice

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.UnitOfMeasure != nil {
		m.UnitOfMeasure = *req.UnitOfMeasure
	}
	if req.UnitPrice != nil {
		m.UnitPrice = *req.UnitPrice
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			return s.repo.Update(ctx, m)
		}
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		if priceChanged {
			changedBy := actorID
			return s.repo.CreatePriceHistoryTx(tx, &model.MaterialPriceHistory{
				MaterialID: m.ID,
				OldPrice:   oldPrice,
				NewPrice:   m.UnitPrice,
				ChangedBy:  &changedBy,
			})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if priceChanged && s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
	return materialToResponse(m), nil
}

func (s *materialService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if s.cache != nil {
		defer s.cache.InvalidateAll(ctx)
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *materialService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if s.cache != nil {
		defer s.cache.InvalidateAll(ctx)
	}
	return s.repo.Reactivate(ctx, id)
}

// AdjustStock applies a signed stock delta and records the movement in the
// same transaction so the ledger always matches the stored quantity.
func (s *materialService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("material not found")
	}
	after := m.StockQuantity.Add(req.Quantity)
	if after.IsNegative() {
		return nil, fmt.Errorf("stock of %s cannot go below zero", m.Name)
	}

	var refID *uuid.UUID
	if req.ReferenceID != nil {
		parsed, err := uuid.Parse(*req.ReferenceID)
		if err != nil {
			return nil, fmt.Errorf("invalid reference_id: %w", err)
		}
		refID = &parsed
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			return nil
		}
		if err := s.repo.AdjustStockTx(tx, id, req.Quantity); err != nil {
			return err
		}
		return s.repo.CreateStockMovementTx(tx, &model.MaterialStockMovement{
			MaterialID:  id,
			Quantity:    req.Quantity,
			StockBefore: m.StockQuantity,
			StockAfter:  after,
			Reason:      req.Reason,
			ReferenceID: refID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	m.StockQuantity = after
	return materialToResponse(m), nil
}

func (s *materialService) PriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceHistoryResponse, error) {
	history, err := s.repo.ListPriceHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PriceHistoryResponse, len(history))
	for i, h := range history {
		changedBy := ""
		if h.ChangedBy != nil {
			changedBy = h.ChangedBy.String()
		}
		resp[i] = dto.PriceHistoryResponse{
			ID:        h.ID.String(),
			OldPrice:  h.OldPrice,
			NewPrice:  h.NewPrice,
			ChangedBy: changedBy,
			CreatedAt: h.CreatedAt.Format(timeFormat),
		}
	}
	return resp, nil
}

func (s *materialService) StockMovements(ctx context.Context, id uuid.UUID) ([]dto.StockMovementResponse, error) {
	movements, err := s.repo.ListStockMovements(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.StockMovementResponse, len(movements))
	for i, mv := range movements {
		var refID *string
		if mv.ReferenceID != nil {
			v := mv.ReferenceID.String()
			refID = &v
		}
		resp[i] = dto.StockMovementResponse{
			ID:          mv.ID.String(),
			Quantity:    mv.Quantity,
			StockBefore: mv.StockBefore,
			StockAfter:  mv.StockAfter,
			Reason:      mv.Reason,
			ReferenceID: refID,
			CreatedAt:   mv.CreatedAt.Format(timeFormat),
		}
	}
	return resp, nil
}

func materialToResponse(m *model.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:            m.ID.String(),
		Name:          m.Name,
		UnitPrice:     m.UnitPrice,
		UnitOfMeasure: m.UnitOfMeasure,
		StockQuantity: m.StockQuantity,
		Active:        m.Active,
	}
}
