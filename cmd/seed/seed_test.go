package main

import (
	"context"
	"testing"

	catalogapp "github.com/doorsets/backend/internal/application/catalog"
	productionapp "github.com/doorsets/backend/internal/application/production"
	"github.com/doorsets/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeeder(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	svc := newServices(db, zap.NewNop())

	res, err := newSeeder(svc, 42, zap.NewNop()).run(ctx, Counts{Suppliers: 2, Customers: 3, Items: 12, Assemblies: 3})
	require.NoError(t, err)

	assert.Equal(t, len(partKinds)+1, res.Categories)
	assert.Equal(t, 2, res.Suppliers)
	assert.Equal(t, 3, res.Customers)
	assert.Equal(t, 12, res.Items)
	assert.Equal(t, 3, res.Assemblies)
	assert.Equal(t, "PL-000001", res.PickList)

	items, err := svc.Items.GetAll(ctx, catalogapp.ItemListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 12, items.TotalCount)
	for _, it := range items.Items {
		require.NotNil(t, it.SupplierID, it.Code)
		assert.True(t, it.UnitCost.IsPositive(), it.Code)
	}

	a, err := svc.Assemblies.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, a.Components, len(partKinds), "one component per part kind")

	lists, err := svc.PickLists.GetAll(ctx, productionapp.PickListListQuery{})
	require.NoError(t, err)
	require.Len(t, lists.Items, 1)
	assert.NotEmpty(t, lists.Items[0].Lines)

	t.Run("refuses a populated database", func(t *testing.T) {
		_, err := newSeeder(svc, 1, zap.NewNop()).run(ctx, Counts{Items: 1})
		assert.ErrorIs(t, err, ErrNotEmpty)
	})
}

func TestSeederWithoutPartners(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	res, err := newSeeder(newServices(db, zap.NewNop()), 7, zap.NewNop()).
		run(context.Background(), Counts{Items: 6, Assemblies: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Items)
	assert.Equal(t, 1, res.Assemblies)
	assert.Empty(t, res.PickList, "no customer, no pick list")
}
