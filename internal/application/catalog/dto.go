package catalog

import (
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/importer"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Category
// ============================================================================

// CategoryRequest creates or updates a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CategoryResponse is a category in API responses
type CategoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToCategoryResponse converts a domain category
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ============================================================================
// Item
// ============================================================================

// ItemListQuery is the GetAll and Export query for items
type ItemListQuery struct {
	common.ListQuery
	CategoryID *uint `form:"categoryId" binding:"omitempty,min=1"`
	SupplierID *uint `form:"supplierId" binding:"omitempty,min=1"`
	LowStock   *bool `form:"lowStock"`
	IsActive   *bool `form:"isActive"`
}

// Filter converts the query into a domain filter
func (q ItemListQuery) Filter() shared.Filter {
	f := q.ListQuery.Filter()
	if q.CategoryID != nil {
		f.Filters["category_id"] = *q.CategoryID
	}
	if q.SupplierID != nil {
		f.Filters["supplier_id"] = *q.SupplierID
	}
	if q.LowStock != nil {
		f.Filters["low_stock"] = *q.LowStock
	}
	if q.IsActive != nil {
		f.Filters["is_active"] = *q.IsActive
	}
	return f
}

// ItemRequest holds the editable item fields. Quantity only applies on
// create; afterwards stock changes through AdjustStock and the workflows.
type ItemRequest struct {
	Code         string          `json:"code" binding:"required,max=50"`
	Name         string          `json:"name" binding:"required,max=200"`
	Description  string          `json:"description" binding:"max=2000"`
	CategoryID   *uint           `json:"categoryId" binding:"omitempty,min=1"`
	SupplierID   *uint           `json:"supplierId" binding:"omitempty,min=1"`
	Unit         string          `json:"unit" binding:"max=20"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	Quantity     int             `json:"quantity" binding:"min=0"`
	ReorderLevel int             `json:"reorderLevel" binding:"min=0"`
	Location     string          `json:"location" binding:"max=100"`
	Notes        string          `json:"notes" binding:"max=2000"`
	IsActive     *bool           `json:"isActive"`
}

func (r ItemRequest) details() catalog.ItemDetails {
	return catalog.ItemDetails{
		Name:         r.Name,
		Description:  r.Description,
		CategoryID:   r.CategoryID,
		SupplierID:   r.SupplierID,
		Unit:         r.Unit,
		UnitCost:     r.UnitCost,
		ReorderLevel: r.ReorderLevel,
		Location:     r.Location,
		Notes:        r.Notes,
	}
}

// AdjustStockRequest sets stock on hand to an absolute count after a stocktake
type AdjustStockRequest struct {
	Quantity *int   `json:"quantity" binding:"required,min=0"`
	Note     string `json:"note" binding:"max=200"`
}

// ItemResponse is an inventory item in API responses
type ItemResponse struct {
	ID           uint            `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   *uint           `json:"categoryId"`
	SupplierID   *uint           `json:"supplierId"`
	Unit         string          `json:"unit"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorderLevel"`
	Location     string          `json:"location"`
	Notes        string          `json:"notes"`
	IsActive     bool            `json:"isActive"`
	IsLowStock   bool            `json:"isLowStock"`
	StockValue   decimal.Decimal `json:"stockValue"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ToItemResponse converts a domain item
func ToItemResponse(i *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:           i.ID,
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
		IsLowStock:   i.IsLowStock(),
		StockValue:   i.StockValue(),
		Version:      i.Version,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

// MovementListQuery pages through an item's stock ledger
type MovementListQuery struct {
	common.ListQuery
	Reason string `form:"reason" binding:"omitempty,oneof=receipt production adjustment import"`
}

// Filter converts the query into a domain filter
func (q MovementListQuery) Filter() shared.Filter {
	f := q.ListQuery.Filter()
	if q.Reason != "" {
		f.Filters["reason"] = q.Reason
	}
	return f
}

// MovementResponse is a stock ledger entry
type MovementResponse struct {
	ID            uint      `json:"id"`
	ItemID        uint      `json:"itemId"`
	Delta         int       `json:"delta"`
	QuantityAfter int       `json:"quantityAfter"`
	Reason        string    `json:"reason"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ToMovementResponse converts a ledger entry
func ToMovementResponse(m catalog.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ItemID:        m.ItemID,
		Delta:         m.Delta,
		QuantityAfter: m.QuantityAfter,
		Reason:        string(m.Reason),
		Reference:     m.Reference,
		CreatedAt:     m.CreatedAt,
	}
}

// ImportResult summarizes an item CSV import
type ImportResult struct {
	Total           int                 `json:"total"`
	Created         int                 `json:"created"`
	Updated         int                 `json:"updated"`
	Skipped         int                 `json:"skipped"`
	Errors          []importer.RowError `json:"errors"`
	ErrorsTruncated bool                `json:"errorsTruncated,omitempty"`
}

// ============================================================================
// Assembly
// ============================================================================

// AssemblyListQuery is the GetAll and Export query for assemblies
type AssemblyListQuery struct {
	common.ListQuery
	CategoryID *uint `form:"categoryId" binding:"omitempty,min=1"`
}

// Filter converts the query into a domain filter
func (q AssemblyListQuery) Filter() shared.Filter {
	f := q.ListQuery.Filter()
	if q.CategoryID != nil {
		f.Filters["category_id"] = *q.CategoryID
	}
	return f
}

// ComponentRequest is one line of an assembly's bill of materials
type ComponentRequest struct {
	ItemID   uint `json:"itemId" binding:"required,min=1"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// AssemblyRequest creates or updates an assembly. Components replace the
// existing list on update.
type AssemblyRequest struct {
	Code        string             `json:"code" binding:"required,max=50"`
	Name        string             `json:"name" binding:"required,max=200"`
	Description string             `json:"description" binding:"max=2000"`
	CategoryID  *uint              `json:"categoryId" binding:"omitempty,min=1"`
	Components  []ComponentRequest `json:"components" binding:"dive"`
}

func (r AssemblyRequest) requirements() []catalog.Requirement {
	out := make([]catalog.Requirement, len(r.Components))
	for i, c := range r.Components {
		out[i] = catalog.Requirement{ItemID: c.ItemID, Quantity: c.Quantity}
	}
	return out
}

// ComponentResponse is an assembly component with its item's code and name
type ComponentResponse struct {
	ID       uint   `json:"id"`
	ItemID   uint   `json:"itemId"`
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

// AssemblyResponse is an assembly in API responses
type AssemblyResponse struct {
	ID          uint                `json:"id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	CategoryID  *uint               `json:"categoryId"`
	Components  []ComponentResponse `json:"components"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ToAssemblyResponse converts a domain assembly. items supplies component
// codes and names and may be nil.
func ToAssemblyResponse(a *catalog.Assembly, items map[uint]catalog.Item) AssemblyResponse {
	components := make([]ComponentResponse, len(a.Components))
	for i, c := range a.Components {
		components[i] = ComponentResponse{ID: c.ID, ItemID: c.ItemID, Quantity: c.Quantity}
		if item, ok := items[c.ItemID]; ok {
			components[i].ItemCode = item.Code
			components[i].ItemName = item.Name
		}
	}
	return AssemblyResponse{
		ID:          a.ID,
		Code:        a.Code,
		Name:        a.Name,
		Description: a.Description,
		CategoryID:  a.CategoryID,
		Components:  components,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ExpandRequest asks how many items building some units of an assembly takes
type ExpandRequest struct {
	Units int `json:"units" form:"units" binding:"required,min=1"`
}

// RequirementResponse is one item needed by an expansion, against current stock
type RequirementResponse struct {
	ItemID    uint   `json:"itemId"`
	ItemCode  string `json:"itemCode"`
	ItemName  string `json:"itemName"`
	Quantity  int    `json:"quantity"`
	InStock   int    `json:"inStock"`
	Shortfall int    `json:"shortfall"`
}

// ExpandResponse is the item requirement list for units of an assembly
type ExpandResponse struct {
	AssemblyID   uint                  `json:"assemblyId"`
	Units        int                   `json:"units"`
	Requirements []RequirementResponse `json:"requirements"`
	HasShortfall bool                  `json:"hasShortfall"`
}
