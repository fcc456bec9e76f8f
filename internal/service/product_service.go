package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/pricing"
	"github.com/ciprianbratila/ortho-orders/internal/repository"

	"github.com/google/uuid"
)

// DuplicateCompositionError is returned when a product with the same
// effective composition already exists and the caller did not force the save.
type DuplicateCompositionError struct {
	ProductName string
}

func (e *DuplicateCompositionError) Error() string {
	return fmt.Sprintf("a product with the same composition already exists: %s", e.ProductName)
}

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	// Price returns the full cost breakdown of a saved product.
	Price(ctx context.Context, id uuid.UUID) (*dto.PriceResponse, error)
	// PricePreview prices a hypothetical composition without saving it.
	PricePreview(ctx context.Context, req dto.PricePreviewRequest) (*dto.PriceResponse, error)
	// Derived lists the direct children of a product.
	Derived(ctx context.Context, id uuid.UUID) ([]dto.ProductResponse, error)
	DuplicateCheck(ctx context.Context, req dto.DuplicateCheckRequest) (*dto.DuplicateCheckResponse, error)
}

type productService struct {
	repo    repository.ProductRepository
	catalog CatalogLoader
	cache   PriceCache
}

func NewProductService(repo repository.ProductRepository, catalog CatalogLoader, cache PriceCache) ProductService {
	return &productService{repo: repo, catalog: catalog, cache: cache}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Kind:        req.Kind,
		Name:        req.Name,
		Description: req.Description,
		LaborPrice:  req.LaborPrice,
		Active:      true,
	}

	// Services carry only a labor price.
	if p.Kind != model.KindService {
		parentID, err := parseOptionalUUID(req.ParentProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent_product_id: %w", err)
		}
		p.ParentProductID = parentID
		p.Components = componentsFromRequest(req.Components)

		if err := s.validateComposition(ctx, uuid.Nil, p, req.Force); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, p.ID)
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.LaborPrice != nil {
		p.LaborPrice = *req.LaborPrice
	}

	if p.Kind == model.KindService {
		// Guard against stray composition data on services.
		p.ParentProductID = nil
		p.Components = nil
	} else {
		if req.ParentProductID != nil {
			parentID, err := parseOptionalUUID(req.ParentProductID)
			if err != nil {
				return nil, fmt.Errorf("invalid parent_product_id: %w", err)
			}
			p.ParentProductID = parentID
		}
		if req.Components != nil {
			p.Components = componentsFromRequest(req.Components)
			for i := range p.Components {
				p.Components[i].ProductID = p.ID
			}
		}
		if err := s.validateComposition(ctx, p.ID, p, req.Force); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
	return s.GetByID(ctx, p.ID)
}

// validateComposition runs the parent-link rules and the duplicate check
// against a catalog snapshot. productID is uuid.Nil on create.
func (s *productService) validateComposition(ctx context.Context, productID uuid.UUID, p *model.Product, force bool) error {
	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return err
	}

	if p.ParentProductID != nil {
		if err := pricing.ValidateParent(cat, productID, *p.ParentProductID); err != nil {
			return err
		}
	}

	if force {
		return nil
	}

	comps := make([]pricing.Component, len(p.Components))
	for i, c := range p.Components {
		comps[i] = pricing.Component{MaterialID: c.MaterialID, Quantity: c.Quantity}
	}
	var exclude *uuid.UUID
	if productID != uuid.Nil {
		exclude = &productID
	}
	name, dup, err := pricing.FindDuplicate(cat, comps, p.ParentProductID, exclude)
	if err != nil {
		return err
	}
	if dup {
		return &DuplicateCompositionError{ProductName: name}
	}
	return nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, len(products))
	for i := range products {
		data[i] = *productToResponse(&products[i])
	}
	return &dto.ProductListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if s.cache != nil {
		defer s.cache.InvalidateAll(ctx)
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if s.cache != nil {
		defer s.cache.InvalidateAll(ctx)
	}
	return s.repo.Reactivate(ctx, id)
}

func (s *productService) Price(ctx context.Context, id uuid.UUID) (*dto.PriceResponse, error) {
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, id); ok {
			var resp dto.PriceResponse
			if err := json.Unmarshal(payload, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := cat.Product(id)
	if !ok {
		return nil, errors.New("product not found")
	}

	resp, err := buildPriceResponse(cat, p)
	if err != nil {
		return nil, err
	}
	resp.ProductID = id.String()

	if s.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			s.cache.Set(ctx, id, payload)
		}
	}
	return resp, nil
}

func (s *productService) PricePreview(ctx context.Context, req dto.PricePreviewRequest) (*dto.PriceResponse, error) {
	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	parentID, err := parseOptionalUUID(req.ParentProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid parent_product_id: %w", err)
	}

	// Price an unsaved candidate exactly like a stored product.
	candidate := &model.Product{
		Kind:            model.KindProduct,
		LaborPrice:      req.LaborPrice,
		ParentProductID: parentID,
	}
	for _, c := range req.Components {
		mid, err := uuid.Parse(c.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("invalid material_id: %w", err)
		}
		candidate.Components = append(candidate.Components, model.ProductComponent{
			MaterialID: mid,
			Quantity:   c.Quantity,
		})
	}
	return buildPriceResponse(cat, candidate)
}

func (s *productService) Derived(ctx context.Context, id uuid.UUID) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListByParentID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = *productToResponse(&products[i])
	}
	return resp, nil
}

func (s *productService) DuplicateCheck(ctx context.Context, req dto.DuplicateCheckRequest) (*dto.DuplicateCheckResponse, error) {
	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	parentID, err := parseOptionalUUID(req.ParentProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid parent_product_id: %w", err)
	}
	exclude, err := parseOptionalUUID(req.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude_product_id: %w", err)
	}

	comps := make([]pricing.Component, 0, len(req.Components))
	for _, c := range req.Components {
		mid, err := uuid.Parse(c.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("invalid material_id: %w", err)
		}
		comps = append(comps, pricing.Component{MaterialID: mid, Quantity: c.Quantity})
	}

	name, dup, err := pricing.FindDuplicate(cat, comps, parentID, exclude)
	if err != nil {
		return nil, err
	}
	return &dto.DuplicateCheckResponse{Duplicate: dup, ProductName: name}, nil
}

// buildPriceResponse resolves the flattened composition and cost breakdown
// for a product against a catalog snapshot.
func buildPriceResponse(cat pricing.Catalog, p *model.Product) (*dto.PriceResponse, error) {
	breakdown, err := pricing.ComputePrice(cat, p)
	if err != nil {
		return nil, err
	}
	flattened, err := pricing.ResolveComponents(cat, p)
	if err != nil {
		return nil, err
	}

	resp := &dto.PriceResponse{
		MaterialCost:  breakdown.MaterialCost,
		LaborTotal:    breakdown.LaborTotal,
		Total:         breakdown.Total,
		MissingParent: breakdown.MissingParent,
	}
	for _, id := range breakdown.MissingMaterials {
		resp.MissingMaterials = append(resp.MissingMaterials, id.String())
	}
	for _, c := range flattened {
		cr := dto.ComponentResponse{
			MaterialID: c.MaterialID.String(),
			Quantity:   c.Quantity,
		}
		if m, ok := cat.Material(c.MaterialID); ok {
			cr.MaterialName = m.Name
			cr.UnitPrice = m.UnitPrice
			cr.LineTotal = m.UnitPrice.Mul(c.Quantity)
		}
		resp.Components = append(resp.Components, cr)
	}
	return resp, nil
}

func componentsFromRequest(reqs []dto.ComponentRequest) []model.ProductComponent {
	comps := make([]model.ProductComponent, 0, len(reqs))
	for _, c := range reqs {
		mid, err := uuid.Parse(c.MaterialID)
		if err != nil {
			continue
		}
		comps = append(comps, model.ProductComponent{MaterialID: mid, Quantity: c.Quantity})
	}
	return comps
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          p.ID.String(),
		Kind:        p.Kind,
		Name:        p.Name,
		Description: p.Description,
		LaborPrice:  p.LaborPrice,
		Active:      p.Active,
	}
	if p.ParentProductID != nil {
		v := p.ParentProductID.String()
		resp.ParentProductID = &v
	}
	if p.Parent != nil {
		resp.ParentName = &p.Parent.Name
	}
	for _, c := range p.Components {
		cr := dto.ComponentResponse{
			MaterialID: c.MaterialID.String(),
			Quantity:   c.Quantity,
		}
		if c.Material != nil {
			cr.MaterialName = c.Material.Name
			cr.UnitPrice = c.Material.UnitPrice
			cr.LineTotal = c.Material.UnitPrice.Mul(c.Quantity)
		}
		resp.Components = append(resp.Components, cr)
	}
	return resp
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
