package client

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Page is one page of a GetAll result
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// ListOptions are the paging, sorting and filter parameters of GetAll.
// Filters carries the entity specific ones, e.g. "status" or "customerId".
type ListOptions struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
	Search   string
	Filters  map[string]string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	if o.SortBy != "" {
		v.Set("sortBy", o.SortBy)
	}
	if o.SortDir != "" {
		v.Set("sortDir", o.SortDir)
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	for k, val := range o.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// File is a downloaded export or printed document
type File struct {
	ContentType        string
	ContentDisposition string
	Content            []byte
}

// StoredDocument is returned when a document is printed to object storage
type StoredDocument struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

type idResponse struct {
	ID uint `json:"id"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Category struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ItemRequest struct {
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
	IsActive     *bool           `json:"isActive,omitempty"`
}

type Item struct {
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

type Movement struct {
	ID            uint      `json:"id"`
	ItemID        uint      `json:"itemId"`
	Delta         int       `json:"delta"`
	QuantityAfter int       `json:"quantityAfter"`
	Reason        string    `json:"reason"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"createdAt"`
}

type LowStockItem struct {
	ItemID            uint            `json:"itemId"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	Quantity          int             `json:"quantity"`
	ReorderLevel      int             `json:"reorderLevel"`
	SuggestedQuantity int             `json:"suggestedQuantity"`
	UnitCost          decimal.Decimal `json:"unitCost"`
	SupplierID        *uint           `json:"supplierId"`
	SupplierName      string          `json:"supplierName"`
}

// ImportRowError is one rejected CSV row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

type ImportResult struct {
	Total           int              `json:"total"`
	Created         int              `json:"created"`
	Updated         int              `json:"updated"`
	Skipped         int              `json:"skipped"`
	Errors          []ImportRowError `json:"errors"`
	ErrorsTruncated bool             `json:"errorsTruncated,omitempty"`
}

type Component struct {
	ItemID   uint `json:"itemId"`
	Quantity int  `json:"quantity"`
}

type AssemblyRequest struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CategoryID  *uint       `json:"categoryId"`
	Components  []Component `json:"components"`
}

type AssemblyComponent struct {
	ID       uint   `json:"id"`
	ItemID   uint   `json:"itemId"`
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

type Assembly struct {
	ID          uint                `json:"id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	CategoryID  *uint               `json:"categoryId"`
	Components  []AssemblyComponent `json:"components"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type Requirement struct {
	ItemID    uint   `json:"itemId"`
	ItemCode  string `json:"itemCode"`
	ItemName  string `json:"itemName"`
	Quantity  int    `json:"quantity"`
	InStock   int    `json:"inStock"`
	Shortfall int    `json:"shortfall"`
}

// Expansion is the bill of materials of an assembly for a number of units
type Expansion struct {
	AssemblyID   uint          `json:"assemblyId"`
	Units        int           `json:"units"`
	Requirements []Requirement `json:"requirements"`
	HasShortfall bool          `json:"hasShortfall"`
}

type ContactRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

type Contact struct {
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

type Customer struct {
	ID uint `json:"id"`
	Contact
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SupplierRequest struct {
	ContactRequest
	Website      string `json:"website"`
	LeadTimeDays int    `json:"leadTimeDays"`
}

type Supplier struct {
	ID uint `json:"id"`
	Contact
	Website      string    `json:"website"`
	LeadTimeDays int       `json:"leadTimeDays"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type PickLine struct {
	ItemID   uint `json:"itemId"`
	Quantity int  `json:"quantity"`
}

type PickAssembly struct {
	AssemblyID uint `json:"assemblyId"`
	Units      int  `json:"units"`
}

type PickListRequest struct {
	CustomerID     uint           `json:"customerId"`
	OrderReference string         `json:"orderReference"`
	Title          string         `json:"title"`
	DueDate        *time.Time     `json:"dueDate,omitempty"`
	Notes          string         `json:"notes"`
	Lines          []PickLine     `json:"lines,omitempty"`
	Assemblies     []PickAssembly `json:"assemblies,omitempty"`
}

type PickListLine struct {
	ID              uint   `json:"id"`
	ItemID          uint   `json:"itemId"`
	ItemCode        string `json:"itemCode"`
	ItemName        string `json:"itemName"`
	AssemblyID      *uint  `json:"assemblyId"`
	Quantity        int    `json:"quantity"`
	PurchaseOrderID *uint  `json:"purchaseOrderId"`
	MadeOrder       bool   `json:"madeOrder"`
	Ordered         bool   `json:"ordered"`
}

type PickList struct {
	ID             uint           `json:"id"`
	Number         string         `json:"number"`
	CustomerID     uint           `json:"customerId"`
	CustomerName   string         `json:"customerName"`
	OrderReference string         `json:"orderReference"`
	Title          string         `json:"title"`
	DueDate        *time.Time     `json:"dueDate"`
	Status         string         `json:"status"`
	Notes          string         `json:"notes"`
	CompletedAt    *time.Time     `json:"completedAt"`
	Lines          []PickListLine `json:"lines"`
	TotalQuantity  int            `json:"totalQuantity"`
	Version        int            `json:"version"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// LineStock is the stock position of one pick list line
type LineStock struct {
	LineID          uint   `json:"lineId"`
	ItemID          uint   `json:"itemId"`
	ItemCode        string `json:"itemCode"`
	ItemName        string `json:"itemName"`
	AssemblyID      *uint  `json:"assemblyId,omitempty"`
	Requested       int    `json:"requested"`
	InStock         int    `json:"inStock"`
	Allocated       int    `json:"allocated"`
	Shortfall       int    `json:"shortfall"`
	PurchaseOrderID *uint  `json:"purchaseOrderId,omitempty"`
	MadeOrder       bool   `json:"madeOrder"`
	Ordered         bool   `json:"ordered"`
	Warning         bool   `json:"warning"`
}

// ItemStock sums the lines of one item
type ItemStock struct {
	ItemID    uint   `json:"itemId"`
	ItemCode  string `json:"itemCode"`
	ItemName  string `json:"itemName"`
	Requested int    `json:"requested"`
	InStock   int    `json:"inStock"`
	Shortfall int    `json:"shortfall"`
	Unordered int    `json:"unordered"`
	Warning   bool   `json:"warning"`
}

type StockCheck struct {
	PickListID     uint        `json:"pickListId"`
	Number         string      `json:"number"`
	Lines          []LineStock `json:"lines"`
	Items          []ItemStock `json:"items"`
	Warnings       []LineStock `json:"warnings"`
	TotalShortfall int         `json:"totalShortfall"`
	HasWarnings    bool        `json:"hasWarnings"`
	CanComplete    bool        `json:"canComplete"`
}

type OrderLine struct {
	ItemID   uint             `json:"itemId"`
	Quantity int              `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unitCost,omitempty"`
}

type PurchaseOrderRequest struct {
	SupplierID   uint        `json:"supplierId"`
	PickListID   *uint       `json:"pickListId,omitempty"`
	ExpectedDate *time.Time  `json:"expectedDate,omitempty"`
	Notes        string      `json:"notes"`
	Lines        []OrderLine `json:"lines,omitempty"`
}

// Receipt books received quantity against one order line
type Receipt struct {
	LineID   uint `json:"lineId"`
	Quantity int  `json:"quantity"`
}

type PurchaseOrderLine struct {
	ID                uint            `json:"id"`
	ItemID            uint            `json:"itemId"`
	ItemCode          string          `json:"itemCode"`
	ItemName          string          `json:"itemName"`
	Quantity          int             `json:"quantity"`
	ReceivedQuantity  int             `json:"receivedQuantity"`
	RemainingQuantity int             `json:"remainingQuantity"`
	UnitCost          decimal.Decimal `json:"unitCost"`
	LineTotal         decimal.Decimal `json:"lineTotal"`
}

type PurchaseOrder struct {
	ID             uint                `json:"id"`
	Number         string              `json:"number"`
	SupplierID     uint                `json:"supplierId"`
	SupplierName   string              `json:"supplierName"`
	PickListID     *uint               `json:"pickListId"`
	PickListNumber string              `json:"pickListNumber"`
	Status         string              `json:"status"`
	OrderDate      *time.Time          `json:"orderDate"`
	ExpectedDate   *time.Time          `json:"expectedDate"`
	Notes          string              `json:"notes"`
	Lines          []PurchaseOrderLine `json:"lines"`
	Total          decimal.Decimal     `json:"total"`
	TotalOrdered   int                 `json:"totalOrdered"`
	TotalReceived  int                 `json:"totalReceived"`
	TotalRemaining int                 `json:"totalRemaining"`
	Version        int                 `json:"version"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// Replenishment is the result of ordering a pick list's unordered shortfall
type Replenishment struct {
	PickListID     uint            `json:"pickListId"`
	PurchaseOrders []PurchaseOrder `json:"purchaseOrders"`
	SkippedItemIDs []uint          `json:"skippedItemIds"`
	LinkedLineIDs  []uint          `json:"linkedLineIds"`
}

type Summary struct {
	ItemCount             int64           `json:"itemCount"`
	LowStockCount         int64           `json:"lowStockCount"`
	OpenPickLists         int64           `json:"openPickLists"`
	PickListsWithWarnings int64           `json:"pickListsWithWarnings"`
	OpenPurchaseOrders    int64           `json:"openPurchaseOrders"`
	InventoryValue        decimal.Decimal `json:"inventoryValue"`
}
