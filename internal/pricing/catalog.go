// Package pricing implements the product cost resolver: flattening a
// product's bill of materials across its parent chain, computing sale
// prices, detecting duplicate compositions, and validating parent links.
//
// Every function is pure and operates on an explicit read-only Catalog.
// The resolver never mutates entities and performs no I/O; callers build a
// Snapshot from whatever storage they use and are responsible for re-reading
// it when freshness matters. Dangling references (deleted materials or
// parents) contribute zero and never error — only a cycle in the parent
// graph, which indicates corrupt data, aborts a computation.
package pricing

import (
	"github.com/google/uuid"

	"github.com/ciprianbratila/ortho-orders/internal/model"
)

// Catalog is the read-only view of the material and product catalogs the
// resolver operates on.
type Catalog interface {
	Material(id uuid.UUID) (*model.Material, bool)
	Product(id uuid.UUID) (*model.Product, bool)
	Products() []model.Product
}

// Snapshot is an in-memory Catalog built from entity slices.
type Snapshot struct {
	materials map[uuid.UUID]*model.Material
	products  map[uuid.UUID]*model.Product
	ordered   []model.Product
}

// NewSnapshot indexes the given materials and products. The slices are not
// copied; callers must not mutate them while the snapshot is in use.
func NewSnapshot(materials []model.Material, products []model.Product) *Snapshot {
	s := &Snapshot{
		materials: make(map[uuid.UUID]*model.Material, len(materials)),
		products:  make(map[uuid.UUID]*model.Product, len(products)),
		ordered:   products,
	}
	for i := range materials {
		s.materials[materials[i].ID] = &materials[i]
	}
	for i := range products {
		s.products[products[i].ID] = &products[i]
	}
	return s
}

func (s *Snapshot) Material(id uuid.UUID) (*model.Material, bool) {
	m, ok := s.materials[id]
	return m, ok
}

func (s *Snapshot) Product(id uuid.UUID) (*model.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

func (s *Snapshot) Products() []model.Product { return s.ordered }
