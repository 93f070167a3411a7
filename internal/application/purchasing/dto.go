package purchasing

import (
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Queries and requests
// ============================================================================

// PurchaseOrderListQuery is the GetAll and Export query for purchase orders
type PurchaseOrderListQuery struct {
	common.ListQuery
	SupplierID *uint  `form:"supplierId" binding:"omitempty,min=1"`
	PickListID *uint  `form:"pickListId" binding:"omitempty,min=1"`
	Status     string `form:"status" binding:"omitempty,oneof=draft ordered partially_received received cancelled"`
}

// Filter converts the query into a domain filter
func (q PurchaseOrderListQuery) Filter() shared.Filter {
	f := q.ListQuery.Filter()
	if q.SupplierID != nil {
		f.Filters["supplier_id"] = *q.SupplierID
	}
	if q.PickListID != nil {
		f.Filters["pick_list_id"] = *q.PickListID
	}
	if q.Status != "" {
		f.Filters["status"] = q.Status
	}
	return f
}

// LineRequest adds an item to a purchase order. A missing unit cost takes
// the item's current cost.
type LineRequest struct {
	ItemID   uint             `json:"itemId" binding:"required,min=1"`
	Quantity int              `json:"quantity" binding:"required,min=1"`
	UnitCost *decimal.Decimal `json:"unitCost"`
}

// UpdateLineRequest changes quantity and cost of a draft line
type UpdateLineRequest struct {
	Quantity int             `json:"quantity" binding:"required,min=1"`
	UnitCost decimal.Decimal `json:"unitCost"`
}

// PurchaseOrderRequest creates a purchase order or updates its header.
// Lines are only read on create.
type PurchaseOrderRequest struct {
	SupplierID   uint          `json:"supplierId" binding:"required,min=1"`
	PickListID   *uint         `json:"pickListId" binding:"omitempty,min=1"`
	ExpectedDate *time.Time    `json:"expectedDate"`
	Notes        string        `json:"notes" binding:"max=2000"`
	Lines        []LineRequest `json:"lines" binding:"dive"`
}

func (r PurchaseOrderRequest) header() purchasing.Header {
	return purchasing.Header{
		SupplierID:   r.SupplierID,
		PickListID:   r.PickListID,
		ExpectedDate: r.ExpectedDate,
		Notes:        r.Notes,
	}
}

// ReceiptLineRequest is a quantity delivered against one line
type ReceiptLineRequest struct {
	LineID   uint `json:"lineId" binding:"required,min=1"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// ReceiveRequest books a delivery
type ReceiveRequest struct {
	Lines []ReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r ReceiveRequest) receipts() []purchasing.Receipt {
	out := make([]purchasing.Receipt, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = purchasing.Receipt{LineID: l.LineID, Quantity: l.Quantity}
	}
	return out
}

// ============================================================================
// Responses
// ============================================================================

// LineResponse is a purchase order line with its item
type LineResponse struct {
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

// PurchaseOrderResponse is a purchase order in API responses
type PurchaseOrderResponse struct {
	ID             uint            `json:"id"`
	Number         string          `json:"number"`
	SupplierID     uint            `json:"supplierId"`
	SupplierName   string          `json:"supplierName"`
	PickListID     *uint           `json:"pickListId"`
	PickListNumber string          `json:"pickListNumber"`
	Status         string          `json:"status"`
	OrderDate      *time.Time      `json:"orderDate"`
	ExpectedDate   *time.Time      `json:"expectedDate"`
	Notes          string          `json:"notes"`
	Lines          []LineResponse  `json:"lines"`
	Total          decimal.Decimal `json:"total"`
	TotalOrdered   int             `json:"totalOrdered"`
	TotalReceived  int             `json:"totalReceived"`
	TotalRemaining int             `json:"totalRemaining"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ToPurchaseOrderResponse converts a domain purchase order. supplierName and
// items decorate the response and may be empty.
func ToPurchaseOrderResponse(o *purchasing.PurchaseOrder, supplierName string, items map[uint]catalog.Item) PurchaseOrderResponse {
	lines := make([]LineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = LineResponse{
			ID:                l.ID,
			ItemID:            l.ItemID,
			Quantity:          l.Quantity,
			ReceivedQuantity:  l.ReceivedQuantity,
			RemainingQuantity: l.RemainingQuantity(),
			UnitCost:          l.UnitCost,
			LineTotal:         l.LineTotal(),
		}
		if item, ok := items[l.ItemID]; ok {
			lines[i].ItemCode = item.Code
			lines[i].ItemName = item.Name
		}
	}
	resp := PurchaseOrderResponse{
		ID:             o.ID,
		Number:         o.Number,
		SupplierID:     o.SupplierID,
		SupplierName:   supplierName,
		PickListID:     o.PickListID,
		Status:         string(o.Status),
		OrderDate:      o.OrderDate,
		ExpectedDate:   o.ExpectedDate,
		Notes:          o.Notes,
		Lines:          lines,
		Total:          o.Total(),
		TotalOrdered:   o.TotalOrdered(),
		TotalReceived:  o.TotalReceived(),
		TotalRemaining: o.TotalRemaining(),
		Version:        o.Version,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.PickListID != nil {
		resp.PickListNumber = production.FormatNumber(*o.PickListID)
	}
	return resp
}

// CreateFromPickListResponse lists the drafts raised for a pick list's shortfalls
type CreateFromPickListResponse struct {
	PickListID     uint                    `json:"pickListId"`
	PurchaseOrders []PurchaseOrderResponse `json:"purchaseOrders"`
	// SkippedItemIDs are short items with no supplier to order from
	SkippedItemIDs []uint `json:"skippedItemIds"`
	LinkedLineIDs  []uint `json:"linkedLineIds"`
}
