package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ciprianbratila/ortho-orders/internal/model"
)

func TestValidateParentAcceptsValidLink(t *testing.T) {
	parent := product("Parent", nil, 0)
	child := product("Child", nil, 0)
	cat := NewSnapshot(nil, []model.Product{parent, child})

	assert.NoError(t, ValidateParent(cat, child.ID, parent.ID))
	// and for a product being created
	assert.NoError(t, ValidateParent(cat, uuid.Nil, parent.ID))
}

func TestValidateParentRejectsSelfReference(t *testing.T) {
	p := product("P", nil, 0)
	cat := NewSnapshot(nil, []model.Product{p})

	assert.ErrorIs(t, ValidateParent(cat, p.ID, p.ID), ErrSelfParent)
}

func TestValidateParentRejectsUnknownParent(t *testing.T) {
	p := product("P", nil, 0)
	cat := NewSnapshot(nil, []model.Product{p})

	assert.ErrorIs(t, ValidateParent(cat, p.ID, uuid.New()), ErrParentNotFound)
}

func TestValidateParentRejectsService(t *testing.T) {
	svc := model.Product{ID: uuid.New(), Kind: model.KindService, Name: "Consult"}
	p := product("P", nil, 0)
	cat := NewSnapshot(nil, []model.Product{svc, p})

	assert.ErrorIs(t, ValidateParent(cat, p.ID, svc.ID), ErrServiceParent)
}

func TestValidateParentRejectsCycle(t *testing.T) {
	// Chain A → B → C; making C's parent A would close a cycle.
	c := product("C", nil, 0)
	b := product("B", &c.ID, 0)
	a := product("A", &b.ID, 0)
	cat := NewSnapshot(nil, []model.Product{a, b, c})

	assert.ErrorIs(t, ValidateParent(cat, c.ID, a.ID), ErrCyclicBOM)
	// direct two-node cycle
	assert.ErrorIs(t, ValidateParent(cat, b.ID, a.ID), ErrCyclicBOM)
	// a fresh edge onto the middle of the chain is fine
	d := product("D", nil, 0)
	cat = NewSnapshot(nil, []model.Product{a, b, c, d})
	assert.NoError(t, ValidateParent(cat, d.ID, b.ID))
}
