package catalog

import (
	"strings"

	"github.com/doorsets/backend/internal/domain/shared"
)

// AggregateTypeAssembly names the assembly aggregate
const AggregateTypeAssembly = "Assembly"

// Assembly is a named bundle of inventory items ordered as one unit
type Assembly struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	CategoryID  *uint
	Components  []AssemblyComponent
}

// AssemblyComponent is one item of an assembly and how many units of it one
// assembly needs
type AssemblyComponent struct {
	ID         uint
	AssemblyID uint
	ItemID     uint
	Quantity   int
}

// Requirement is an item quantity needed to build something
type Requirement struct {
	ItemID   uint `json:"itemId"`
	Quantity int  `json:"quantity"`
}

// NewAssembly creates an empty assembly
func NewAssembly(code, name, description string, categoryID *uint) (*Assembly, error) {
	code = normalizeCode(code)
	if err := shared.RequireText("code", code, 50); err != nil {
		return nil, err
	}
	a := &Assembly{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Code: code}
	if err := a.Update(name, description, categoryID); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces the assembly header fields
func (a *Assembly) Update(name, description string, categoryID *uint) error {
	name = strings.TrimSpace(name)
	if err := shared.RequireText("name", name, 200); err != nil {
		return err
	}
	a.Name = name
	a.Description = description
	a.CategoryID = zeroToNil(categoryID)
	if !a.IsNew() {
		a.IncrementVersion()
	}
	return nil
}

// AddComponent adds qty units of an item, merging with an existing component
func (a *Assembly) AddComponent(itemID uint, qty int) error {
	if err := shared.RequireID("itemId", itemID); err != nil {
		return err
	}
	if err := shared.RequirePositive("quantity", qty); err != nil {
		return err
	}
	for i := range a.Components {
		if a.Components[i].ItemID == itemID {
			a.Components[i].Quantity += qty
			return nil
		}
	}
	a.Components = append(a.Components, AssemblyComponent{AssemblyID: a.ID, ItemID: itemID, Quantity: qty})
	return nil
}

// SetComponents replaces every component
func (a *Assembly) SetComponents(reqs []Requirement) error {
	prev := a.Components
	a.Components = nil
	for _, r := range reqs {
		if err := a.AddComponent(r.ItemID, r.Quantity); err != nil {
			a.Components = prev
			return err
		}
	}
	if !a.IsNew() {
		a.IncrementVersion()
	}
	return nil
}

// ItemIDs returns the distinct component item IDs
func (a *Assembly) ItemIDs() []uint {
	ids := make([]uint, 0, len(a.Components))
	for _, c := range a.Components {
		ids = append(ids, c.ItemID)
	}
	return ids
}

// Expand returns the item requirements for building units assemblies
func (a *Assembly) Expand(units int) ([]Requirement, error) {
	if err := shared.RequirePositive("units", units); err != nil {
		return nil, err
	}
	if len(a.Components) == 0 {
		return nil, shared.InvalidStatef("Assembly %s has no components", a.Code)
	}
	reqs := make([]Requirement, 0, len(a.Components))
	for _, c := range a.Components {
		reqs = append(reqs, Requirement{ItemID: c.ItemID, Quantity: c.Quantity * units})
	}
	return reqs, nil
}

// ChangeCode renames the assembly. Uniqueness is checked by the caller.
func (a *Assembly) ChangeCode(code string) error {
	code = normalizeCode(code)
	if err := shared.RequireText("code", code, 50); err != nil {
		return err
	}
	a.Code = code
	return nil
}
