package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciprianbratila/ortho-orders/internal/model"
)

func ownComponents(p *model.Product) []Component {
	out := make([]Component, 0, len(p.Components))
	for _, c := range p.Components {
		out = append(out, Component{MaterialID: c.MaterialID, Quantity: c.Quantity})
	}
	return out
}

func TestFindDuplicateSymmetry(t *testing.T) {
	m1 := material(10)
	m2 := material(4)

	// X and Y list the same materials in different order — same multiset.
	x := product("X", nil, 5, comp(m1.ID, 2), comp(m2.ID, 1))
	y := product("Y", nil, 9, comp(m2.ID, 1), comp(m1.ID, 2))
	cat := NewSnapshot([]model.Material{m1, m2}, []model.Product{x, y})

	name, found, err := FindDuplicate(cat, ownComponents(&y), nil, &y.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "X", name)

	name, found, err = FindDuplicate(cat, ownComponents(&x), nil, &x.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Y", name)
}

func TestFindDuplicateToleranceBoundary(t *testing.T) {
	m := material(10)
	existing := product("Existing", nil, 0, comp(m.ID, 2))
	cat := NewSnapshot([]model.Material{m}, []model.Product{existing})

	within := []Component{{MaterialID: m.ID, Quantity: decimal.NewFromFloat(2.0009)}}
	_, found, err := FindDuplicate(cat, within, nil, nil)
	require.NoError(t, err)
	assert.True(t, found, "0.0009 difference is within tolerance")

	beyond := []Component{{MaterialID: m.ID, Quantity: decimal.NewFromFloat(2.0011)}}
	_, found, err = FindDuplicate(cat, beyond, nil, nil)
	require.NoError(t, err)
	assert.False(t, found, "0.0011 difference is beyond tolerance")

	exact := []Component{{MaterialID: m.ID, Quantity: decimal.NewFromFloat(2.001)}}
	_, found, err = FindDuplicate(cat, exact, nil, nil)
	require.NoError(t, err)
	assert.False(t, found, "exactly 0.001 is not within tolerance")
}

func TestFindDuplicateIncludesParentChain(t *testing.T) {
	m1 := material(10)
	m2 := material(4)

	base := product("Base", nil, 0, comp(m1.ID, 1))
	derived := product("Derived", &base.ID, 0, comp(m2.ID, 2))
	cat := NewSnapshot([]model.Material{m1, m2}, []model.Product{base, derived})

	// A flat candidate with the derived product's effective composition.
	candidate := []Component{
		{MaterialID: m1.ID, Quantity: decimal.NewFromInt(1)},
		{MaterialID: m2.ID, Quantity: decimal.NewFromInt(2)},
	}
	name, found, err := FindDuplicate(cat, candidate, nil, nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Derived", name)
}

func TestFindDuplicateExcludesProductUnderEdit(t *testing.T) {
	m := material(10)
	only := product("Only", nil, 0, comp(m.ID, 2))
	cat := NewSnapshot([]model.Material{m}, []model.Product{only})

	_, found, err := FindDuplicate(cat, ownComponents(&only), nil, &only.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindDuplicateSkipsServices(t *testing.T) {
	m := material(10)
	svc := model.Product{ID: uuid.New(), Kind: model.KindService, Name: "Fitting"}
	cat := NewSnapshot([]model.Material{m}, []model.Product{svc})

	_, found, err := FindDuplicate(cat, []Component{{MaterialID: m.ID, Quantity: decimal.NewFromInt(1)}}, nil, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindDuplicateEmptyCandidateNeverFlags(t *testing.T) {
	empty := product("Bare", nil, 5)
	cat := NewSnapshot(nil, []model.Product{empty})

	_, found, err := FindDuplicate(cat, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNormalizeSortsAndMergesDuplicateEntries(t *testing.T) {
	m1 := material(1)
	m2 := material(1)
	cat := NewSnapshot([]model.Material{m1, m2}, nil)

	comps := []Component{
		{MaterialID: m2.ID, Quantity: decimal.NewFromInt(1)},
		{MaterialID: m1.ID, Quantity: decimal.NewFromInt(2)},
		{MaterialID: m2.ID, Quantity: decimal.NewFromInt(3)},
	}
	canonical, err := Normalize(cat, comps, nil)
	require.NoError(t, err)
	require.Len(t, canonical, 2)
	assert.True(t, canonical[0].MaterialID.String() < canonical[1].MaterialID.String())
	assert.True(t, qty(canonical, m2.ID).Equal(decimal.NewFromInt(4)))
}
