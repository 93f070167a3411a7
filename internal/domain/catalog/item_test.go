package catalog

import (
	"errors"
	"testing"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() ItemDetails {
	return ItemDetails{
		Name:         "Hinge 100mm",
		UnitCost:     decimal.RequireFromString("2.50"),
		ReorderLevel: 10,
	}
}

func TestNewItem(t *testing.T) {
	t.Run("creates item with defaults", func(t *testing.T) {
		item, err := NewItem(" hg-100 ", validDetails(), 25)
		require.NoError(t, err)

		assert.Equal(t, "HG-100", item.Code)
		assert.Equal(t, "Hinge 100mm", item.Name)
		assert.Equal(t, DefaultUnit, item.Unit)
		assert.Equal(t, 25, item.Quantity)
		assert.True(t, item.IsActive)
		assert.Equal(t, 1, item.Version)
		assert.Empty(t, item.GetDomainEvents())
	})

	t.Run("rejects empty required fields", func(t *testing.T) {
		_, err := NewItem("", validDetails(), 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Contains(t, err.Error(), "code is required")

		d := validDetails()
		d.Name = "   "
		_, err = NewItem("HG-1", d, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("rejects negative numbers", func(t *testing.T) {
		_, err := NewItem("HG-1", validDetails(), -1)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		d := validDetails()
		d.ReorderLevel = -5
		_, err = NewItem("HG-1", d, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		d = validDetails()
		d.UnitCost = decimal.NewFromInt(-1)
		_, err = NewItem("HG-1", d, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("drops zero references", func(t *testing.T) {
		zero := uint(0)
		d := validDetails()
		d.CategoryID = &zero
		item, err := NewItem("HG-1", d, 0)
		require.NoError(t, err)
		assert.Nil(t, item.CategoryID)
	})
}

func TestItemStock(t *testing.T) {
	newItem := func(t *testing.T, qty int) *Item {
		item, err := NewItem("HG-100", validDetails(), qty)
		require.NoError(t, err)
		item.ID = 7
		return item
	}

	t.Run("add stock records movement and event", func(t *testing.T) {
		item := newItem(t, 5)
		mv, err := item.AddStock(3, MovementReceipt, "PO-000001")
		require.NoError(t, err)

		assert.Equal(t, 8, item.Quantity)
		assert.Equal(t, uint(7), mv.ItemID)
		assert.Equal(t, 3, mv.Delta)
		assert.Equal(t, 8, mv.QuantityAfter)
		assert.Equal(t, "PO-000001", mv.Reference)

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeItemStockChanged, events[0].EventType())
		assert.Equal(t, uint(7), events[0].AggregateID())
	})

	t.Run("remove stock fails when insufficient", func(t *testing.T) {
		item := newItem(t, 2)
		_, err := item.RemoveStock(3, MovementProduction, "PL-000001")
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 2, item.Quantity)
	})

	t.Run("remove stock rejects non-positive quantity", func(t *testing.T) {
		item := newItem(t, 2)
		_, err := item.RemoveStock(0, MovementProduction, "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("adjust stock to same value is a no-op", func(t *testing.T) {
		item := newItem(t, 4)
		mv, err := item.AdjustStock(4, MovementAdjustment, "")
		require.NoError(t, err)
		assert.Nil(t, mv)
		assert.Empty(t, item.GetDomainEvents())
	})

	t.Run("adjust stock records negative delta", func(t *testing.T) {
		item := newItem(t, 4)
		mv, err := item.AdjustStock(1, MovementAdjustment, "count")
		require.NoError(t, err)
		assert.Equal(t, -3, mv.Delta)
		assert.Equal(t, 1, item.Quantity)
	})
}

func TestItemDerivedValues(t *testing.T) {
	item, err := NewItem("HG-100", validDetails(), 4)
	require.NoError(t, err)

	assert.True(t, item.IsLowStock())
	assert.True(t, decimal.RequireFromString("10").Equal(item.StockValue()))
	assert.Equal(t, 16, item.SuggestedOrderQuantity())

	item.Quantity = 50
	assert.False(t, item.IsLowStock())
	assert.Equal(t, 1, item.SuggestedOrderQuantity())
}
