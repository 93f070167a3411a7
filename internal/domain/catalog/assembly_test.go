package catalog

import (
	"testing"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblyComponents(t *testing.T) {
	a, err := NewAssembly("ds-std", "Standard door set", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "DS-STD", a.Code)

	require.NoError(t, a.AddComponent(1, 2))
	require.NoError(t, a.AddComponent(2, 1))
	require.NoError(t, a.AddComponent(1, 1))

	require.Len(t, a.Components, 2)
	assert.Equal(t, 3, a.Components[0].Quantity)
	assert.Equal(t, []uint{1, 2}, a.ItemIDs())

	t.Run("rejects invalid component", func(t *testing.T) {
		assert.ErrorIs(t, a.AddComponent(0, 1), shared.ErrInvalidInput)
		assert.ErrorIs(t, a.AddComponent(3, 0), shared.ErrInvalidInput)
	})

	t.Run("set components keeps previous on error", func(t *testing.T) {
		err := a.SetComponents([]Requirement{{ItemID: 9, Quantity: 1}, {ItemID: 10, Quantity: -1}})
		assert.Error(t, err)
		assert.Len(t, a.Components, 2)
	})
}

func TestAssemblyExpand(t *testing.T) {
	a, err := NewAssembly("DS-1", "Door set", "", nil)
	require.NoError(t, err)

	_, err = a.Expand(1)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	require.NoError(t, a.SetComponents([]Requirement{{ItemID: 1, Quantity: 3}, {ItemID: 2, Quantity: 1}}))

	reqs, err := a.Expand(4)
	require.NoError(t, err)
	assert.Equal(t, []Requirement{{ItemID: 1, Quantity: 12}, {ItemID: 2, Quantity: 4}}, reqs)

	_, err = a.Expand(0)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
