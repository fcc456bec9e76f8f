package service

import (
	"context"

	"github.com/ciprianbratila/ortho-orders/internal/pricing"
	"github.com/ciprianbratila/ortho-orders/internal/repository"
)

// CatalogLoader builds an in-memory pricing snapshot from the database.
// Every pricing operation works on one snapshot so the whole computation
// sees a single consistent view of materials and products.
type CatalogLoader interface {
	Load(ctx context.Context) (*pricing.Snapshot, error)
}

type catalogLoader struct {
	materials repository.MaterialRepository
	products  repository.ProductRepository
}

func NewCatalogLoader(materials repository.MaterialRepository, products repository.ProductRepository) CatalogLoader {
	return &catalogLoader{materials: materials, products: products}
}

func (l *catalogLoader) Load(ctx context.Context) (*pricing.Snapshot, error) {
	materials, err := l.materials.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	products, err := l.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.NewSnapshot(materials, products), nil
}
