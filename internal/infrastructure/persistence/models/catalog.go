package models

import (
	"time"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for Category
type CategoryModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name"`
	Description string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the row to a Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
	}
}

// CategoryModelFromDomain builds a row from a Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{Name: c.Name, Description: c.Description}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// ItemModel is the persistence model for Item
type ItemModel struct {
	AggregateModel
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_items_code"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	CategoryID   *uint           `gorm:"index"`
	SupplierID   *uint           `gorm:"index"`
	Unit         string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity     int             `gorm:"not null;default:0"`
	ReorderLevel int             `gorm:"not null;default:0"`
	Location     string          `gorm:"type:varchar(100)"`
	Notes        string          `gorm:"type:text"`
	IsActive     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the row to an Item
func (m *ItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		CategoryID:        m.CategoryID,
		SupplierID:        m.SupplierID,
		Unit:              m.Unit,
		UnitCost:          m.UnitCost,
		Quantity:          m.Quantity,
		ReorderLevel:      m.ReorderLevel,
		Location:          m.Location,
		Notes:             m.Notes,
		IsActive:          m.IsActive,
	}
}

// ItemModelFromDomain builds a row from an Item
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{
		Code:         i.Code,
		Name:         i.Name,
		Description:  i.Description,
		CategoryID:   i.CategoryID,
		SupplierID:   i.SupplierID,
		Unit:         i.Unit,
		UnitCost:     i.UnitCost,
		Quantity:     i.Quantity,
		ReorderLevel: i.ReorderLevel,
		Location:     i.Location,
		Notes:        i.Notes,
		IsActive:     i.IsActive,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}

// StockMovementModel is an append-only ledger row
type StockMovementModel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	ItemID        uint      `gorm:"not null;index:idx_stock_movements_item,priority:1"`
	Delta         int       `gorm:"not null"`
	QuantityAfter int       `gorm:"not null"`
	Reason        string    `gorm:"type:varchar(20);not null"`
	Reference     string    `gorm:"type:varchar(100)"`
	CreatedAt     time.Time `gorm:"not null;index:idx_stock_movements_item,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the row to a StockMovement
func (m *StockMovementModel) ToDomain() catalog.StockMovement {
	return catalog.StockMovement{
		ID:            m.ID,
		ItemID:        m.ItemID,
		Delta:         m.Delta,
		QuantityAfter: m.QuantityAfter,
		Reason:        catalog.MovementReason(m.Reason),
		Reference:     m.Reference,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain builds a ledger row
func StockMovementModelFromDomain(mv *catalog.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:            mv.ID,
		ItemID:        mv.ItemID,
		Delta:         mv.Delta,
		QuantityAfter: mv.QuantityAfter,
		Reason:        string(mv.Reason),
		Reference:     mv.Reference,
		CreatedAt:     mv.CreatedAt,
	}
}

// AssemblyModel is the persistence model for Assembly
type AssemblyModel struct {
	AggregateModel
	Code        string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_assemblies_code"`
	Name        string                   `gorm:"type:varchar(200);not null"`
	Description string                   `gorm:"type:text"`
	CategoryID  *uint                    `gorm:"index"`
	Components  []AssemblyComponentModel `gorm:"foreignKey:AssemblyID"`
}

// TableName returns the table name for GORM
func (AssemblyModel) TableName() string {
	return "assemblies"
}

// AssemblyComponentModel is one bill-of-materials row
type AssemblyComponentModel struct {
	ID         uint `gorm:"primaryKey;autoIncrement"`
	AssemblyID uint `gorm:"not null;uniqueIndex:idx_assembly_components_item,priority:1"`
	ItemID     uint `gorm:"not null;uniqueIndex:idx_assembly_components_item,priority:2;index"`
	Quantity   int  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AssemblyComponentModel) TableName() string {
	return "assembly_components"
}

// ToDomain converts the row and its components to an Assembly
func (m *AssemblyModel) ToDomain() *catalog.Assembly {
	a := &catalog.Assembly{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		CategoryID:        m.CategoryID,
		Components:        make([]catalog.AssemblyComponent, 0, len(m.Components)),
	}
	for _, c := range m.Components {
		a.Components = append(a.Components, catalog.AssemblyComponent{
			ID:         c.ID,
			AssemblyID: c.AssemblyID,
			ItemID:     c.ItemID,
			Quantity:   c.Quantity,
		})
	}
	return a
}

// AssemblyModelFromDomain builds the header row; components are saved separately
func AssemblyModelFromDomain(a *catalog.Assembly) *AssemblyModel {
	m := &AssemblyModel{
		Code:        a.Code,
		Name:        a.Name,
		Description: a.Description,
		CategoryID:  a.CategoryID,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}
