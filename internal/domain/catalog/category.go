package catalog

import (
	"strings"

	"github.com/doorsets/backend/internal/domain/shared"
)

// AggregateTypeCategory names the category aggregate in events and cache keys
const AggregateTypeCategory = "Category"

// Category groups inventory items and assemblies
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
}

// NewCategory creates a new category
func NewCategory(name, description string) (*Category, error) {
	c := &Category{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.Update(name, description); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the category's editable fields
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := shared.RequireText("name", name, 100); err != nil {
		return err
	}
	if err := shared.MaxLength("description", description, 500); err != nil {
		return err
	}
	c.Name = name
	c.Description = description
	if !c.IsNew() {
		c.IncrementVersion()
	}
	return nil
}
