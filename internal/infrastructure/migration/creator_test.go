package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Reorder-Level", "add_reorder_level"},
		{"add__pick__lists", "add_pick_lists"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	first, err := Create(dir, "add item location", "Adds a shelf location to items")
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_item_location.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_item_location.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- add item location")
	assert.Contains(t, string(up), "-- Adds a shelf location to items")
	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback add item location")

	second, err := Create(dir, "Index Movements", "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Version)

	_, err = Create(dir, "!!!", "")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010_later.up.sql", "000010_later.down.sql",
		"000002_second.up.sql", "000002_second.down.sql",
		"notes.txt", "abc_bad.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	got, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Version: 2, Name: "second"}, {Version: 10, Name: "later"}}, got)

	missing, err := List(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := EmbeddedVersions()
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.EqualValues(t, 1, got[0].Version)
	assert.Equal(t, "init", got[0].Name)
}
