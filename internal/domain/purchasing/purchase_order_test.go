package purchasing

import (
	"testing"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder(Header{SupplierID: 2})
	require.NoError(t, err)
	require.NoError(t, po.AddLine(1, 10, decimal.RequireFromString("1.50")))
	require.NoError(t, po.AddLine(2, 4, decimal.RequireFromString("3")))
	po.ID = 5
	po.AssignNumber()
	po.Lines[0].ID = 51
	po.Lines[1].ID = 52
	require.NoError(t, po.Place())
	return po
}

func TestNewPurchaseOrder(t *testing.T) {
	_, err := NewPurchaseOrder(Header{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	zero := uint(0)
	po, err := NewPurchaseOrder(Header{SupplierID: 1, PickListID: &zero})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, po.Status)
	assert.Nil(t, po.PickListID)
}

func TestPurchaseOrderLines(t *testing.T) {
	po, err := NewPurchaseOrder(Header{SupplierID: 1})
	require.NoError(t, err)

	require.NoError(t, po.AddLine(1, 2, decimal.NewFromInt(5)))
	require.NoError(t, po.AddLine(1, 3, decimal.NewFromInt(4)))
	require.Len(t, po.Lines, 1)
	assert.Equal(t, 5, po.Lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(20).Equal(po.Total()))

	assert.ErrorIs(t, po.AddLine(2, 0, decimal.Zero), shared.ErrInvalidInput)
	assert.ErrorIs(t, po.AddLine(2, 1, decimal.NewFromInt(-1)), shared.ErrInvalidInput)
	assert.ErrorIs(t, po.RemoveLine(99), shared.ErrNotFound)
}

func TestPurchaseOrderPlace(t *testing.T) {
	po, err := NewPurchaseOrder(Header{SupplierID: 1})
	require.NoError(t, err)
	assert.ErrorIs(t, po.Place(), shared.ErrInvalidState)

	po = placedOrder(t)
	assert.Equal(t, StatusOrdered, po.Status)
	assert.NotNil(t, po.OrderDate)
	assert.ErrorIs(t, po.AddLine(3, 1, decimal.Zero), shared.ErrInvalidState)
	assert.ErrorIs(t, po.UpdateHeader(Header{SupplierID: 9}), shared.ErrInvalidState)
}

func TestPurchaseOrderReceive(t *testing.T) {
	t.Run("partial then full receipt", func(t *testing.T) {
		po := placedOrder(t)
		assert.Equal(t, 14, po.TotalRemaining())

		got, err := po.Receive([]Receipt{{LineID: 51, Quantity: 6}})
		require.NoError(t, err)
		assert.Equal(t, []ReceivedLine{{LineID: 51, ItemID: 1, Quantity: 6}}, got)
		assert.Equal(t, StatusPartiallyReceived, po.Status)
		assert.Equal(t, 4, po.Lines[0].RemainingQuantity())
		assert.Equal(t, 8, po.TotalRemaining())

		_, err = po.Receive([]Receipt{{LineID: 51, Quantity: 4}, {LineID: 52, Quantity: 4}})
		require.NoError(t, err)
		assert.Equal(t, StatusReceived, po.Status)
		assert.Equal(t, 0, po.TotalRemaining())

		events := po.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypePurchaseOrderReceived, events[1].EventType())
	})

	t.Run("over-receipt leaves order untouched", func(t *testing.T) {
		po := placedOrder(t)
		_, err := po.Receive([]Receipt{{LineID: 52, Quantity: 2}, {LineID: 51, Quantity: 6}, {LineID: 51, Quantity: 5}})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Equal(t, 0, po.TotalReceived())
		assert.Equal(t, StatusOrdered, po.Status)
	})

	t.Run("rejects unknown line and bad quantity", func(t *testing.T) {
		po := placedOrder(t)
		_, err := po.Receive([]Receipt{{LineID: 77, Quantity: 1}})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = po.Receive([]Receipt{{LineID: 51, Quantity: 0}})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		_, err = po.Receive(nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("draft cannot receive", func(t *testing.T) {
		po, err := NewPurchaseOrder(Header{SupplierID: 1})
		require.NoError(t, err)
		_, err = po.Receive([]Receipt{{LineID: 1, Quantity: 1}})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestPurchaseOrderCancel(t *testing.T) {
	po := placedOrder(t)
	require.NoError(t, po.Cancel())
	assert.Equal(t, StatusCancelled, po.Status)
	assert.True(t, po.CanDelete())

	po = placedOrder(t)
	_, err := po.Receive([]Receipt{{LineID: 51, Quantity: 1}})
	require.NoError(t, err)
	assert.ErrorIs(t, po.Cancel(), shared.ErrInvalidState)
	assert.False(t, po.CanDelete())
}
