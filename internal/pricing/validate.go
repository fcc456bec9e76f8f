package pricing

import (
	"errors"

	"github.com/google/uuid"
)

// Parent-link validation failures, surfaced to catalog-mutation callers
// before an edit is committed.
var (
	ErrSelfParent     = errors.New("a product cannot be its own parent")
	ErrServiceParent  = errors.New("a service cannot be used as a parent product")
	ErrParentNotFound = errors.New("parent product does not exist")
)

// ValidateParent checks that setting parentID on the product identified by
// productID keeps the parent graph a forest. productID is uuid.Nil when the
// product is being created. Rejections: self-reference, a parent that does
// not exist, a Service parent, and any link that would close a cycle
// (determined by walking up from the proposed parent).
func ValidateParent(cat Catalog, productID uuid.UUID, parentID uuid.UUID) error {
	if productID != uuid.Nil && parentID == productID {
		return ErrSelfParent
	}

	parent, ok := cat.Product(parentID)
	if !ok {
		return ErrParentNotFound
	}
	if parent.IsService() {
		return ErrServiceParent
	}

	if productID == uuid.Nil {
		return nil
	}

	// Reachability walk: if productID is an ancestor of the proposed parent,
	// the new edge closes a cycle.
	cur := parent
	for hops := chainBound(cat); hops >= 0; hops-- {
		if cur.ID == productID {
			return ErrCyclicBOM
		}
		if cur.ParentProductID == nil {
			return nil
		}
		next, ok := cat.Product(*cur.ParentProductID)
		if !ok {
			return nil
		}
		cur = next
	}
	return ErrCyclicBOM
}
