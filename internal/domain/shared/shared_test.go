package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorIs(t *testing.T) {
	err := NotFoundf("Item %d not found", 3)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))

	wrapped := fmt.Errorf("loading: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))

	var de *DomainError
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, "Item 3 not found", de.Message)
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{Page: -1, PageSize: 500}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.NotNil(t, f.Filters)

	f = Filter{Page: 3, PageSize: 0}.Normalize()
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, 40, f.Offset())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(21), p.TotalCount)

	empty := NewPaginated[int](nil, 0, 1, 10)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)

	mapped := MapPaginated(p, func(i int) string { return fmt.Sprint(i * 2) })
	assert.Equal(t, []string{"2", "4"}, mapped.Items)
	assert.Equal(t, 3, mapped.TotalPages)
}

func TestValidationHelpers(t *testing.T) {
	assert.ErrorIs(t, RequireText("name", "  ", 10), ErrInvalidInput)
	assert.ErrorIs(t, RequireText("name", "abcdefghijk", 10), ErrInvalidInput)
	assert.NoError(t, RequireText("name", "ok", 10))
	assert.ErrorIs(t, RequirePositive("quantity", 0), ErrInvalidInput)
	assert.NoError(t, RequireNonNegative("quantity", 0))
	assert.ErrorIs(t, RequireID("itemId", 0), ErrInvalidInput)
	assert.NoError(t, OptionalEmail("email", ""))
	assert.ErrorIs(t, OptionalEmail("email", "nope"), ErrInvalidInput)
}
