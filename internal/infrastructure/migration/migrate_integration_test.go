//go:build integration

package migration_test

import (
	"testing"

	"github.com/doorsets/backend/internal/infrastructure/migration"
	"github.com/doorsets/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrator_UpDown(t *testing.T) {
	db := testutil.NewPostgresDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)

	embedded, err := migration.EmbeddedVersions()
	require.NoError(t, err)
	latest := embedded[len(embedded)-1].Version

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.False(t, dirty)

	require.NoError(t, m.Up(), "re-running up is a no-op")

	for _, table := range []string{"users", "items", "pick_lists", "pick_list_lines", "purchase_orders", "stock_movements"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, m.Down())
	assert.False(t, db.Migrator().HasTable("items"))

	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
}
