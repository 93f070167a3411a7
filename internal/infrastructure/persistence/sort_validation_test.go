package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "ASC", ValidateSortOrder(" ASC "))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
	assert.Equal(t, "DESC", ValidateSortOrder("; DROP TABLE items"))
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"api key", "reorderLevel", "reorder_level"},
		{"column name", "unit_cost", "unit_cost"},
		{"base field", "createdAt", "created_at"},
		{"empty", "", "id"},
		{"unknown", "password_hash", "id"},
		{"injection", "name; DROP TABLE items", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.input, ItemSortFields, "id"))
		})
	}
}
