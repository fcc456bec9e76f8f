package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/pricing"
	"github.com/ciprianbratila/ortho-orders/internal/repository"
	"github.com/ciprianbratila/ortho-orders/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository for testing.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	return r.all(), int64(len(r.products)), nil
}

func (r *stubProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	return r.all(), nil
}

func (r *stubProductRepo) ListByParentID(_ context.Context, parentID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.ParentProductID != nil && *p.ParentProductID == parentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) all() []model.Product {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestProductCreateRejectsDuplicateComposition(t *testing.T) {
	snap, splint, _ := labCatalog()
	repo := newStubProductRepo(&splint)
	svc := service.NewProductService(repo, &stubCatalog{snap: snap}, nil)

	resinID := splint.Components[0].MaterialID
	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Kind: model.KindProduct,
		Name: "Splint copy",
		Components: []dto.ComponentRequest{
			{MaterialID: resinID.String(), Quantity: dec("2")},
		},
	})
	require.Error(t, err)

	var dup *service.DuplicateCompositionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, splint.Name, dup.ProductName)
}

func TestProductCreateForceBypassesDuplicateCheck(t *testing.T) {
	snap, splint, _ := labCatalog()
	repo := newStubProductRepo(&splint)
	svc := service.NewProductService(repo, &stubCatalog{snap: snap}, nil)

	resinID := splint.Components[0].MaterialID
	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Kind: model.KindProduct,
		Name: "Splint copy",
		Components: []dto.ComponentRequest{
			{MaterialID: resinID.String(), Quantity: dec("2")},
		},
		Force: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Splint copy", resp.Name)
}

func TestProductServiceIgnoresComposition(t *testing.T) {
	snap, _, _ := labCatalog()
	repo := newStubProductRepo()
	svc := service.NewProductService(repo, &stubCatalog{snap: snap}, nil)

	parent := uuid.NewString()
	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Kind:            model.KindService,
		Name:            "Adjustment visit",
		LaborPrice:      dec("25.00"),
		ParentProductID: &parent,
		Components: []dto.ComponentRequest{
			{MaterialID: uuid.NewString(), Quantity: dec("1")},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.ParentProductID)
	assert.Empty(t, resp.Components)
}

func TestProductUpdateRejectsSelfParent(t *testing.T) {
	snap, splint, _ := labCatalog()
	repo := newStubProductRepo(&splint)
	svc := service.NewProductService(repo, &stubCatalog{snap: snap}, nil)

	self := splint.ID.String()
	_, err := svc.Update(context.Background(), splint.ID, dto.UpdateProductRequest{
		ParentProductID: &self,
	})
	assert.ErrorIs(t, err, pricing.ErrSelfParent)
}

func TestProductUpdateRejectsServiceParent(t *testing.T) {
	snap, splint, polish := labCatalog()
	repo := newStubProductRepo(&splint, &polish)
	svc := service.NewProductService(repo, &stubCatalog{snap: snap}, nil)

	parent := polish.ID.String()
	_, err := svc.Update(context.Background(), splint.ID, dto.UpdateProductRequest{
		ParentProductID: &parent,
	})
	assert.ErrorIs(t, err, pricing.ErrServiceParent)
}

func TestProductPricePreview(t *testing.T) {
	snap, splint, _ := labCatalog()
	repo := newStubProductRepo(&splint)
	svc := service.NewProductService(repo, &stubCatalog{snap: snap}, nil)

	// Derived from the splint: inherits 2x resin and the parent's labor.
	parent := splint.ID.String()
	resp, err := svc.PricePreview(context.Background(), dto.PricePreviewRequest{
		ParentProductID: &parent,
		LaborPrice:      dec("30.00"),
		Components: []dto.ComponentRequest{
			{MaterialID: splint.Components[0].MaterialID.String(), Quantity: dec("1")},
		},
	})
	require.NoError(t, err)

	// Materials: 2+1 = 3 x 10.00; labor: 50 + 30
	assert.True(t, dec("30.00").Equal(resp.MaterialCost), "material cost %s", resp.MaterialCost)
	assert.True(t, dec("80.00").Equal(resp.LaborTotal), "labor total %s", resp.LaborTotal)
	assert.True(t, dec("110.00").Equal(resp.Total), "total %s", resp.Total)
	assert.Empty(t, resp.MissingMaterials)
}

func TestProductPriceReportsMissingMaterial(t *testing.T) {
	missing := uuid.New()
	p := model.Product{
		ID: uuid.New(), Kind: model.KindProduct, Name: "Retainer",
		LaborPrice: dec("40.00"), Active: true,
		Components: []model.ProductComponent{{MaterialID: missing, Quantity: dec("1")}},
	}
	snap := pricing.NewSnapshot(nil, []model.Product{p})
	repo := newStubProductRepo(&p)
	svc := service.NewProductService(repo, &stubCatalog{snap: snap}, nil)

	resp, err := svc.Price(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, dec("40.00").Equal(resp.Total))
	assert.Contains(t, resp.MissingMaterials, missing.String())
}

func TestProductDuplicateCheck(t *testing.T) {
	snap, splint, _ := labCatalog()
	repo := newStubProductRepo(&splint)
	svc := service.NewProductService(repo, &stubCatalog{snap: snap}, nil)

	resp, err := svc.DuplicateCheck(context.Background(), dto.DuplicateCheckRequest{
		Components: []dto.ComponentRequest{
			{MaterialID: splint.Components[0].MaterialID.String(), Quantity: dec("2")},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Duplicate)
	assert.Equal(t, splint.Name, resp.ProductName)

	// Excluding the match itself reports no duplicate.
	exclude := splint.ID.String()
	resp, err = svc.DuplicateCheck(context.Background(), dto.DuplicateCheckRequest{
		Components: []dto.ComponentRequest{
			{MaterialID: splint.Components[0].MaterialID.String(), Quantity: dec("2")},
		},
		ExcludeID: &exclude,
	})
	require.NoError(t, err)
	assert.False(t, resp.Duplicate)
}
