package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityTolerance is the absolute slop allowed when comparing component
// quantities. Quantities entered through a UI carry rounding error, so two
// compositions differing by less than this per material count as identical.
var QuantityTolerance = decimal.NewFromFloat(0.001)

// Normalize builds the canonical form of a component list: the parent
// chain's components are merged in, duplicate material ids are summed, and
// the result is sorted ascending by material id. Two products have the same
// effective composition iff their canonical forms match positionally.
func Normalize(cat Catalog, comps []Component, parentID *uuid.UUID) ([]Component, error) {
	all := make([]Component, len(comps))
	copy(all, comps)

	if parentID != nil {
		if parent, ok := cat.Product(*parentID); ok {
			inherited, err := ResolveComponents(cat, parent)
			if err != nil {
				return nil, err
			}
			all = mergeInto(all, inherited)
		}
	}

	sums := make(map[uuid.UUID]decimal.Decimal, len(all))
	order := make([]uuid.UUID, 0, len(all))
	for _, c := range all {
		if prev, seen := sums[c.MaterialID]; seen {
			sums[c.MaterialID] = prev.Add(c.Quantity)
			continue
		}
		sums[c.MaterialID] = c.Quantity
		order = append(order, c.MaterialID)
	}

	canonical := make([]Component, 0, len(order))
	for _, id := range order {
		canonical = append(canonical, Component{MaterialID: id, Quantity: sums[id]})
	}
	sort.Slice(canonical, func(i, j int) bool {
		return canonical[i].MaterialID.String() < canonical[j].MaterialID.String()
	})
	return canonical, nil
}

// FindDuplicate reports whether any other product in the catalog has the
// same effective material composition as the candidate (components +
// optional parent). It returns the display name of the first match.
// excludeID removes the product being edited from the candidate pool;
// services never participate. Candidates with an empty effective
// composition are never flagged.
func FindDuplicate(cat Catalog, comps []Component, parentID *uuid.UUID, excludeID *uuid.UUID) (string, bool, error) {
	candidate, err := Normalize(cat, comps, parentID)
	if err != nil {
		return "", false, err
	}
	if len(candidate) == 0 {
		return "", false, nil
	}

	for _, p := range cat.Products() {
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		if p.IsService() {
			continue
		}
		own := make([]Component, 0, len(p.Components))
		for _, c := range p.Components {
			own = append(own, Component{MaterialID: c.MaterialID, Quantity: c.Quantity})
		}
		existing, err := Normalize(cat, own, p.ParentProductID)
		if err != nil {
			return "", false, err
		}
		if equalWithinTolerance(candidate, existing) {
			return p.Name, true, nil
		}
	}
	return "", false, nil
}

func equalWithinTolerance(a, b []Component) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].MaterialID != b[i].MaterialID {
			return false
		}
		if a[i].Quantity.Sub(b[i].Quantity).Abs().GreaterThanOrEqual(QuantityTolerance) {
			return false
		}
	}
	return true
}
