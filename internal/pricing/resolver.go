package pricing

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ciprianbratila/ortho-orders/internal/model"
)

// ErrCyclicBOM is returned when walking a parent chain exceeds the catalog
// size, meaning a cycle slipped past edit-time validation. It is never
// absorbed: a price computed over a cyclic chain would be silently wrong.
var ErrCyclicBOM = errors.New("cyclic parent chain in product graph")

// Component is one (material, quantity) entry of a flattened BOM.
type Component struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
}

// Breakdown is the result of ComputePrice. MissingMaterials and
// MissingParent let callers distinguish a total that is low because a
// referenced entity was deleted from one that is legitimately low.
type Breakdown struct {
	MaterialCost decimal.Decimal
	LaborTotal   decimal.Decimal
	Total        decimal.Decimal

	MissingMaterials []uuid.UUID
	MissingParent    bool
}

// ResolveComponents returns the product's effective component list: its own
// components plus everything inherited through the parent chain, with
// quantities for the same material summed. A missing parent yields leaf
// behavior (own components only). Own entries keep their order; inherited
// materials not already present are appended.
func ResolveComponents(cat Catalog, p *model.Product) ([]Component, error) {
	return resolveComponents(cat, p, chainBound(cat))
}

func resolveComponents(cat Catalog, p *model.Product, depth int) ([]Component, error) {
	if depth < 0 {
		return nil, ErrCyclicBOM
	}
	comps := make([]Component, 0, len(p.Components))
	for _, c := range p.Components {
		comps = append(comps, Component{MaterialID: c.MaterialID, Quantity: c.Quantity})
	}
	if p.ParentProductID == nil {
		return comps, nil
	}
	parent, ok := cat.Product(*p.ParentProductID)
	if !ok {
		return comps, nil
	}
	inherited, err := resolveComponents(cat, parent, depth-1)
	if err != nil {
		return nil, err
	}
	return mergeInto(comps, inherited), nil
}

// mergeInto adds every inherited component to acc, summing quantities for
// materials already present.
func mergeInto(acc []Component, inherited []Component) []Component {
	for _, in := range inherited {
		merged := false
		for i := range acc {
			if acc[i].MaterialID == in.MaterialID {
				acc[i].Quantity = acc[i].Quantity.Add(in.Quantity)
				merged = true
				break
			}
		}
		if !merged {
			acc = append(acc, in)
		}
	}
	return acc
}

// LaborTotal sums the labor price of the product and every ancestor in its
// parent chain. A missing parent stops the walk and contributes nothing.
func LaborTotal(cat Catalog, p *model.Product) (decimal.Decimal, error) {
	return laborTotal(cat, p, chainBound(cat))
}

func laborTotal(cat Catalog, p *model.Product, depth int) (decimal.Decimal, error) {
	if depth < 0 {
		return decimal.Zero, ErrCyclicBOM
	}
	total := p.LaborPrice
	if p.ParentProductID == nil {
		return total, nil
	}
	parent, ok := cat.Product(*p.ParentProductID)
	if !ok {
		return total, nil
	}
	parentLabor, err := laborTotal(cat, parent, depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Add(parentLabor), nil
}

// ComponentsPrice sums unitPrice × quantity over a raw component list.
// Materials absent from the catalog contribute zero. Used to price a draft
// product whose components are not yet persisted.
func ComponentsPrice(cat Catalog, comps []Component) decimal.Decimal {
	total := decimal.Zero
	for _, c := range comps {
		m, ok := cat.Material(c.MaterialID)
		if !ok {
			continue
		}
		total = total.Add(m.UnitPrice.Mul(c.Quantity))
	}
	return total
}

// ComputePrice returns the product's total sale price: the material cost of
// the flattened component list plus the cumulative labor of the product and
// all its ancestors. Materials are deduplicated-and-summed once across the
// whole chain; labor is additive at every level.
func ComputePrice(cat Catalog, p *model.Product) (Breakdown, error) {
	comps, err := ResolveComponents(cat, p)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{MaterialCost: decimal.Zero}
	for _, c := range comps {
		m, ok := cat.Material(c.MaterialID)
		if !ok {
			b.MissingMaterials = append(b.MissingMaterials, c.MaterialID)
			continue
		}
		b.MaterialCost = b.MaterialCost.Add(m.UnitPrice.Mul(c.Quantity))
	}

	labor, err := LaborTotal(cat, p)
	if err != nil {
		return Breakdown{}, err
	}
	if p.ParentProductID != nil {
		if _, ok := cat.Product(*p.ParentProductID); !ok {
			b.MissingParent = true
		}
	}

	b.LaborTotal = labor
	b.Total = b.MaterialCost.Add(labor)
	return b, nil
}

// chainBound caps parent-chain recursion. An acyclic chain can never be
// longer than the product catalog itself.
func chainBound(cat Catalog) int {
	return len(cat.Products())
}
