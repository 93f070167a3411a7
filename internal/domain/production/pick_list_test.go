package production

import (
	"testing"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPickList(t *testing.T) *PickList {
	t.Helper()
	pl, err := NewPickList(Header{CustomerID: 1, Title: "Job 42"})
	require.NoError(t, err)
	return pl
}

// persist simulates a save by assigning IDs
func persist(pl *PickList) {
	if pl.ID == 0 {
		pl.ID = 10
		pl.AssignNumber()
	}
	for i := range pl.Lines {
		if pl.Lines[i].ID == 0 {
			pl.Lines[i].ID = uint(100 + i)
			pl.Lines[i].PickListID = pl.ID
		}
	}
}

func TestNewPickList(t *testing.T) {
	t.Run("requires customer and title", func(t *testing.T) {
		_, err := NewPickList(Header{Title: "x"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Contains(t, err.Error(), "customerId is required")

		_, err = NewPickList(Header{CustomerID: 1})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Contains(t, err.Error(), "title is required")
	})

	t.Run("starts open", func(t *testing.T) {
		pl := newTestPickList(t)
		assert.Equal(t, PickListStatusOpen, pl.Status)
		persist(pl)
		assert.Equal(t, "PL-000010", pl.Number)
	})
}

func TestPickListLines(t *testing.T) {
	t.Run("merges manual lines of the same item", func(t *testing.T) {
		pl := newTestPickList(t)
		require.NoError(t, pl.AddLine(1, 2))
		require.NoError(t, pl.AddLine(1, 3))
		require.Len(t, pl.Lines, 1)
		assert.Equal(t, 5, pl.Lines[0].Quantity)
	})

	t.Run("keeps assembly lines apart from manual lines", func(t *testing.T) {
		pl := newTestPickList(t)
		a, err := catalog.NewAssembly("DS", "Door set", "", nil)
		require.NoError(t, err)
		a.ID = 4
		require.NoError(t, a.SetComponents([]catalog.Requirement{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}}))

		require.NoError(t, pl.AddLine(1, 1))
		require.NoError(t, pl.AddAssembly(a, 3))
		require.NoError(t, pl.AddAssembly(a, 1))

		require.Len(t, pl.Lines, 3)
		assert.Nil(t, pl.Lines[0].AssemblyID)
		assert.Equal(t, 8, pl.Lines[1].Quantity)
		assert.Equal(t, uint(4), *pl.Lines[1].AssemblyID)
		assert.Equal(t, 4, pl.Lines[2].Quantity)
		assert.Equal(t, []uint{1, 2}, pl.ItemIDs())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		pl := newTestPickList(t)
		assert.ErrorIs(t, pl.AddLine(1, 0), shared.ErrInvalidInput)
		assert.ErrorIs(t, pl.AddLine(0, 1), shared.ErrInvalidInput)
	})

	t.Run("update and remove by line id", func(t *testing.T) {
		pl := newTestPickList(t)
		require.NoError(t, pl.AddLine(1, 1))
		require.NoError(t, pl.AddLine(2, 1))
		persist(pl)

		require.NoError(t, pl.UpdateLineQuantity(100, 9))
		assert.Equal(t, 9, pl.Lines[0].Quantity)

		require.NoError(t, pl.RemoveLine(100))
		require.Len(t, pl.Lines, 1)
		assert.ErrorIs(t, pl.RemoveLine(100), shared.ErrNotFound)
	})

	t.Run("lines are frozen after completion", func(t *testing.T) {
		pl := newTestPickList(t)
		require.NoError(t, pl.AddLine(1, 1))
		persist(pl)
		require.NoError(t, pl.Complete(CheckStock(pl.Lines, map[uint]int{1: 5})))
		assert.ErrorIs(t, pl.AddLine(2, 1), shared.ErrInvalidState)
		assert.ErrorIs(t, pl.Cancel(), shared.ErrInvalidState)
	})
}

func TestPickListOrdering(t *testing.T) {
	pl := newTestPickList(t)
	require.NoError(t, pl.AddLine(1, 5))
	require.NoError(t, pl.AddLine(2, 5))
	persist(pl)

	t.Run("link marks lines ordered", func(t *testing.T) {
		require.NoError(t, pl.LinkPurchaseOrder([]uint{100}, 7))
		l, ok := pl.Line(100)
		require.True(t, ok)
		assert.True(t, l.MadeOrder)
		assert.Equal(t, uint(7), *l.PurchaseOrderID)
	})

	t.Run("unknown line leaves others untouched", func(t *testing.T) {
		err := pl.LinkPurchaseOrder([]uint{101, 999}, 8)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		l, _ := pl.Line(101)
		assert.Nil(t, l.PurchaseOrderID)
	})

	t.Run("clearing made order unlinks", func(t *testing.T) {
		require.NoError(t, pl.SetMadeOrder(100, false))
		l, _ := pl.Line(100)
		assert.False(t, l.MadeOrder)
		assert.Nil(t, l.PurchaseOrderID)
	})

	t.Run("unlink by purchase order", func(t *testing.T) {
		require.NoError(t, pl.LinkPurchaseOrder([]uint{100, 101}, 9))
		assert.True(t, pl.UnlinkPurchaseOrder(9))
		assert.False(t, pl.UnlinkPurchaseOrder(9))
		for _, l := range pl.Lines {
			assert.False(t, l.Ordered())
		}
	})
}

func TestPickListOrderedLines(t *testing.T) {
	t.Run("add starts a new line next to an ordered one", func(t *testing.T) {
		pl := newTestPickList(t)
		require.NoError(t, pl.AddLine(7, 5))
		persist(pl)
		require.NoError(t, pl.LinkPurchaseOrder([]uint{100}, 42))

		require.NoError(t, pl.AddLine(7, 10))
		require.Len(t, pl.Lines, 2)
		assert.Equal(t, 5, pl.Lines[0].Quantity)
		assert.Equal(t, 10, pl.Lines[1].Quantity)
		assert.False(t, pl.Lines[1].Ordered())

		r := CheckStock(pl.Lines, map[uint]int{7: 0})
		assert.False(t, r.Lines[0].Warning)
		assert.True(t, r.Lines[1].Warning)
		assert.True(t, r.HasWarnings)
	})

	t.Run("assembly lines behave the same", func(t *testing.T) {
		pl := newTestPickList(t)
		a, err := catalog.NewAssembly("DS", "Door set", "", nil)
		require.NoError(t, err)
		a.ID = 4
		require.NoError(t, a.SetComponents([]catalog.Requirement{{ItemID: 1, Quantity: 2}}))
		require.NoError(t, pl.AddAssembly(a, 1))
		persist(pl)
		require.NoError(t, pl.SetMadeOrder(100, true))

		require.NoError(t, pl.AddAssembly(a, 1))
		require.Len(t, pl.Lines, 2)
		assert.Equal(t, 2, pl.Lines[1].Quantity)
	})

	t.Run("ordered line cannot grow", func(t *testing.T) {
		pl := newTestPickList(t)
		require.NoError(t, pl.AddLine(7, 5))
		persist(pl)
		require.NoError(t, pl.LinkPurchaseOrder([]uint{100}, 42))

		assert.ErrorIs(t, pl.UpdateLineQuantity(100, 8), shared.ErrInvalidState)
		assert.Equal(t, 5, pl.Lines[0].Quantity)

		require.NoError(t, pl.UpdateLineQuantity(100, 3))
		assert.Equal(t, 3, pl.Lines[0].Quantity)
		assert.True(t, pl.Lines[0].Ordered())
	})
}

func TestPickListLifecycle(t *testing.T) {
	t.Run("start production requires lines", func(t *testing.T) {
		pl := newTestPickList(t)
		assert.ErrorIs(t, pl.StartProduction(), shared.ErrInvalidState)
		require.NoError(t, pl.AddLine(1, 1))
		require.NoError(t, pl.StartProduction())
		assert.Equal(t, PickListStatusInProduction, pl.Status)
		assert.ErrorIs(t, pl.StartProduction(), shared.ErrInvalidState)
	})

	t.Run("complete refuses shortfall", func(t *testing.T) {
		pl := newTestPickList(t)
		require.NoError(t, pl.AddLine(1, 4))
		persist(pl)

		err := pl.Complete(CheckStock(pl.Lines, map[uint]int{1: 3}))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, PickListStatusOpen, pl.Status)
	})

	t.Run("complete emits event with consumed quantities", func(t *testing.T) {
		pl := newTestPickList(t)
		require.NoError(t, pl.AddLine(1, 4))
		require.NoError(t, pl.AddLine(2, 1))
		persist(pl)

		require.NoError(t, pl.Complete(CheckStock(pl.Lines, map[uint]int{1: 4, 2: 1})))
		assert.Equal(t, PickListStatusCompleted, pl.Status)
		require.NotNil(t, pl.CompletedAt)

		events := pl.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*PickListCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, map[uint]int{1: 4, 2: 1}, ev.Consumed)
	})

	t.Run("delete only when open or cancelled", func(t *testing.T) {
		pl := newTestPickList(t)
		assert.True(t, pl.CanDelete())
		require.NoError(t, pl.AddLine(1, 1))
		require.NoError(t, pl.StartProduction())
		assert.False(t, pl.CanDelete())
		require.NoError(t, pl.Cancel())
		assert.True(t, pl.CanDelete())
	})
}
