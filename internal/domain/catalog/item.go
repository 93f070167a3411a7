package catalog

import (
	"fmt"
	"strings"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeItem names the inventory item aggregate
const AggregateTypeItem = "Item"

// DefaultUnit is used when an item is created without a unit of measure
const DefaultUnit = "pcs"

// Item is an inventory item. Quantity is the stock on hand.
type Item struct {
	shared.BaseAggregateRoot
	Code         string
	Name         string
	Description  string
	CategoryID   *uint
	SupplierID   *uint
	Unit         string
	UnitCost     decimal.Decimal
	Quantity     int
	ReorderLevel int
	Location     string
	Notes        string
	IsActive     bool
}

// ItemDetails holds the editable fields of an item
type ItemDetails struct {
	Name         string
	Description  string
	CategoryID   *uint
	SupplierID   *uint
	Unit         string
	UnitCost     decimal.Decimal
	ReorderLevel int
	Location     string
	Notes        string
}

// NewItem creates an item with an opening stock quantity
func NewItem(code string, details ItemDetails, openingQuantity int) (*Item, error) {
	code = normalizeCode(code)
	if err := shared.RequireText("code", code, 50); err != nil {
		return nil, err
	}
	if err := shared.RequireNonNegative("quantity", openingQuantity); err != nil {
		return nil, err
	}
	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Quantity:          openingQuantity,
		IsActive:          true,
	}
	if err := item.Update(details); err != nil {
		return nil, err
	}
	return item, nil
}

// Update replaces the item's editable fields. Stock is changed only through
// the stock operations.
func (i *Item) Update(d ItemDetails) error {
	name := strings.TrimSpace(d.Name)
	if err := shared.RequireText("name", name, 200); err != nil {
		return err
	}
	if err := shared.MaxLength("unit", d.Unit, 20); err != nil {
		return err
	}
	if d.UnitCost.IsNegative() {
		return shared.InvalidInputf("unitCost cannot be negative")
	}
	if err := shared.RequireNonNegative("reorderLevel", d.ReorderLevel); err != nil {
		return err
	}
	if err := shared.MaxLength("location", d.Location, 100); err != nil {
		return err
	}

	i.Name = name
	i.Description = d.Description
	i.CategoryID = zeroToNil(d.CategoryID)
	i.SupplierID = zeroToNil(d.SupplierID)
	i.Unit = strings.TrimSpace(d.Unit)
	if i.Unit == "" {
		i.Unit = DefaultUnit
	}
	i.UnitCost = d.UnitCost
	i.ReorderLevel = d.ReorderLevel
	i.Location = d.Location
	i.Notes = d.Notes
	if !i.IsNew() {
		i.IncrementVersion()
	}
	return nil
}

// Details returns the item's current editable fields
func (i *Item) Details() ItemDetails {
	return ItemDetails{
		Name:         i.Name,
		Description:  i.Description,
		CategoryID:   i.CategoryID,
		SupplierID:   i.SupplierID,
		Unit:         i.Unit,
		UnitCost:     i.UnitCost,
		ReorderLevel: i.ReorderLevel,
		Location:     i.Location,
		Notes:        i.Notes,
	}
}

// SetActive toggles whether the item can be added to new pick lists and orders
func (i *Item) SetActive(active bool) {
	if i.IsActive == active {
		return
	}
	i.IsActive = active
	i.IncrementVersion()
}

// AddStock increases stock on hand
func (i *Item) AddStock(qty int, reason MovementReason, reference string) (*StockMovement, error) {
	if err := shared.RequirePositive("quantity", qty); err != nil {
		return nil, err
	}
	return i.applyDelta(qty, reason, reference), nil
}

// RemoveStock decreases stock on hand, refusing to go below zero
func (i *Item) RemoveStock(qty int, reason MovementReason, reference string) (*StockMovement, error) {
	if err := shared.RequirePositive("quantity", qty); err != nil {
		return nil, err
	}
	if qty > i.Quantity {
		return nil, shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock for item %s: requested %d, on hand %d", i.Code, qty, i.Quantity))
	}
	return i.applyDelta(-qty, reason, reference), nil
}

// AdjustStock sets stock on hand to an absolute count. It returns nil when
// nothing changed.
func (i *Item) AdjustStock(newQty int, reason MovementReason, reference string) (*StockMovement, error) {
	if err := shared.RequireNonNegative("quantity", newQty); err != nil {
		return nil, err
	}
	delta := newQty - i.Quantity
	if delta == 0 {
		return nil, nil
	}
	return i.applyDelta(delta, reason, reference), nil
}

func (i *Item) applyDelta(delta int, reason MovementReason, reference string) *StockMovement {
	i.Quantity += delta
	i.IncrementVersion()
	i.AddDomainEvent(NewItemStockChangedEvent(i, delta, reason))
	return &StockMovement{
		ItemID:        i.ID,
		Delta:         delta,
		QuantityAfter: i.Quantity,
		Reason:        reason,
		Reference:     reference,
	}
}

// IsLowStock reports whether stock is at or below the reorder level
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

// StockValue returns quantity * unit cost
func (i *Item) StockValue() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SuggestedOrderQuantity returns how many units to order to bring stock back
// to twice the reorder level, and at least one.
func (i *Item) SuggestedOrderQuantity() int {
	qty := i.ReorderLevel*2 - i.Quantity
	if qty < 1 {
		return 1
	}
	return qty
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func zeroToNil(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}

// ChangeCode renames the item. Uniqueness is checked by the caller.
func (i *Item) ChangeCode(code string) error {
	code = normalizeCode(code)
	if err := shared.RequireText("code", code, 50); err != nil {
		return err
	}
	if code == i.Code {
		return nil
	}
	i.Code = code
	i.IncrementVersion()
	return nil
}
