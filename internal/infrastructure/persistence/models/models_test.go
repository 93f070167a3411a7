package models

import (
	"testing"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemModel_RoundTripKeepsStockAndCost(t *testing.T) {
	item, err := catalog.NewItem("hinge-01", catalog.ItemDetails{
		Name:         "Hinge",
		UnitCost:     decimal.RequireFromString("2.5"),
		ReorderLevel: 4,
	}, 10)
	require.NoError(t, err)
	item.ID = 7

	back := ItemModelFromDomain(item).ToDomain()
	assert.Equal(t, uint(7), back.ID)
	assert.Equal(t, "HINGE-01", back.Code)
	assert.Equal(t, 10, back.Quantity)
	assert.True(t, back.UnitCost.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, item.Version, back.Version)
}

func TestPickListModel_ToDomainMapsLines(t *testing.T) {
	po := uint(9)
	m := &PickListModel{
		Number: "PL-000001",
		Status: "in_production",
		Lines: []PickListLineModel{
			{ID: 1, PickListID: 3, ItemID: 5, Quantity: 2, PurchaseOrderID: &po, MadeOrder: true},
		},
	}
	m.ID = 3
	p := m.ToDomain()
	require.Len(t, p.Lines, 1)
	assert.Equal(t, production.PickListStatusInProduction, p.Status)
	assert.True(t, p.Lines[0].Ordered())
}

func TestPurchaseOrderModel_ToDomainMapsLines(t *testing.T) {
	m := &PurchaseOrderModel{
		Status: "ordered",
		Lines: []PurchaseOrderLineModel{
			{ID: 1, ItemID: 2, Quantity: 5, ReceivedQuantity: 2, UnitCost: decimal.NewFromInt(3)},
		},
	}
	o := m.ToDomain()
	assert.Equal(t, purchasing.StatusOrdered, o.Status)
	assert.Equal(t, 3, o.TotalRemaining())
	assert.True(t, o.Total().Equal(decimal.NewFromInt(15)))
}
