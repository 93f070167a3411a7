package production

import (
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/shared"
)

// ============================================================================
// Queries and requests
// ============================================================================

// PickListListQuery is the GetAll and Export query for pick lists
type PickListListQuery struct {
	common.ListQuery
	CustomerID *uint  `form:"customerId" binding:"omitempty,min=1"`
	Status     string `form:"status" binding:"omitempty,oneof=open in_production completed cancelled"`
}

// Filter converts the query into a domain filter
func (q PickListListQuery) Filter() shared.Filter {
	f := q.ListQuery.Filter()
	if q.CustomerID != nil {
		f.Filters["customer_id"] = *q.CustomerID
	}
	if q.Status != "" {
		f.Filters["status"] = q.Status
	}
	return f
}

// PickListRequest creates a pick list or updates its header. Lines are
// optional on create and ignored on update.
type PickListRequest struct {
	CustomerID     uint                 `json:"customerId" binding:"required,min=1"`
	OrderReference string               `json:"orderReference" binding:"max=100"`
	Title          string               `json:"title" binding:"required,max=200"`
	DueDate        *time.Time           `json:"dueDate"`
	Notes          string               `json:"notes" binding:"max=2000"`
	Lines          []AddLineRequest     `json:"lines" binding:"dive"`
	Assemblies     []AddAssemblyRequest `json:"assemblies" binding:"dive"`
}

func (r PickListRequest) header() production.Header {
	return production.Header{
		CustomerID:     r.CustomerID,
		OrderReference: r.OrderReference,
		Title:          r.Title,
		DueDate:        r.DueDate,
		Notes:          r.Notes,
	}
}

// AddLineRequest adds an item to a pick list
type AddLineRequest struct {
	ItemID   uint `json:"itemId" binding:"required,min=1"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// AddAssemblyRequest expands units of an assembly into pick list lines
type AddAssemblyRequest struct {
	AssemblyID uint `json:"assemblyId" binding:"required,min=1"`
	Units      int  `json:"units" binding:"required,min=1"`
}

// UpdateLineRequest changes a line quantity
type UpdateLineRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// SetMadeOrderRequest flags a line as ordered or not
type SetMadeOrderRequest struct {
	MadeOrder *bool `json:"madeOrder" binding:"required"`
}

// LinkPurchaseOrderRequest links lines to an existing purchase order
type LinkPurchaseOrderRequest struct {
	PurchaseOrderID uint   `json:"purchaseOrderId" binding:"required,min=1"`
	LineIDs         []uint `json:"lineIds" binding:"required,min=1,dive,min=1"`
}

// ============================================================================
// Responses
// ============================================================================

// PickListLineResponse is a pick list line with its item
type PickListLineResponse struct {
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

// PickListResponse is a pick list in API responses
type PickListResponse struct {
	ID             uint                   `json:"id"`
	Number         string                 `json:"number"`
	CustomerID     uint                   `json:"customerId"`
	CustomerName   string                 `json:"customerName"`
	OrderReference string                 `json:"orderReference"`
	Title          string                 `json:"title"`
	DueDate        *time.Time             `json:"dueDate"`
	Status         string                 `json:"status"`
	Notes          string                 `json:"notes"`
	CompletedAt    *time.Time             `json:"completedAt"`
	Lines          []PickListLineResponse `json:"lines"`
	TotalQuantity  int                    `json:"totalQuantity"`
	Version        int                    `json:"version"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// ToPickListResponse converts a domain pick list. items and customerName
// decorate the response and may be empty.
func ToPickListResponse(p *production.PickList, customerName string, items map[uint]catalog.Item) PickListResponse {
	lines := make([]PickListLineResponse, len(p.Lines))
	total := 0
	for i, l := range p.Lines {
		lines[i] = PickListLineResponse{
			ID:              l.ID,
			ItemID:          l.ItemID,
			AssemblyID:      l.AssemblyID,
			Quantity:        l.Quantity,
			PurchaseOrderID: l.PurchaseOrderID,
			MadeOrder:       l.MadeOrder,
			Ordered:         l.Ordered(),
		}
		if item, ok := items[l.ItemID]; ok {
			lines[i].ItemCode = item.Code
			lines[i].ItemName = item.Name
		}
		total += l.Quantity
	}
	return PickListResponse{
		ID:             p.ID,
		Number:         p.Number,
		CustomerID:     p.CustomerID,
		CustomerName:   customerName,
		OrderReference: p.OrderReference,
		Title:          p.Title,
		DueDate:        p.DueDate,
		Status:         string(p.Status),
		Notes:          p.Notes,
		CompletedAt:    p.CompletedAt,
		Lines:          lines,
		TotalQuantity:  total,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// LineStockResponse is the stock position of one line with its item
type LineStockResponse struct {
	production.LineStock
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`
}

// ItemStockResponse is the stock position of one item across lines
type ItemStockResponse struct {
	production.ItemStock
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`
}

// StockCheckResponse reconciles a pick list against stock on hand
type StockCheckResponse struct {
	PickListID     uint                `json:"pickListId"`
	Number         string              `json:"number"`
	Lines          []LineStockResponse `json:"lines"`
	Items          []ItemStockResponse `json:"items"`
	Warnings       []LineStockResponse `json:"warnings"`
	TotalShortfall int                 `json:"totalShortfall"`
	HasWarnings    bool                `json:"hasWarnings"`
	CanComplete    bool                `json:"canComplete"`
}

// ToStockCheckResponse decorates a stock report with item codes and names
func ToStockCheckResponse(p *production.PickList, report production.StockReport, items map[uint]catalog.Item) StockCheckResponse {
	resp := StockCheckResponse{
		PickListID:     p.ID,
		Number:         p.Number,
		Lines:          make([]LineStockResponse, len(report.Lines)),
		Items:          make([]ItemStockResponse, len(report.Items)),
		Warnings:       []LineStockResponse{},
		TotalShortfall: report.TotalShortfall,
		HasWarnings:    report.HasWarnings,
		CanComplete:    report.CanComplete,
	}
	for i, l := range report.Lines {
		item := items[l.ItemID]
		resp.Lines[i] = LineStockResponse{LineStock: l, ItemCode: item.Code, ItemName: item.Name}
		if l.Warning {
			resp.Warnings = append(resp.Warnings, resp.Lines[i])
		}
	}
	for i, s := range report.Items {
		item := items[s.ItemID]
		resp.Items[i] = ItemStockResponse{ItemStock: s, ItemCode: item.Code, ItemName: item.Name}
	}
	return resp
}
