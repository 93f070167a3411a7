package purchasing

import (
	"fmt"
	"time"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchaseOrder names the purchase order aggregate
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Status is the lifecycle state of a purchase order
type Status string

const (
	StatusDraft             Status = "draft"
	StatusOrdered           Status = "ordered"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusCancelled         Status = "cancelled"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusOrdered, StatusPartiallyReceived, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s Status) CanReceive() bool {
	return s == StatusOrdered || s == StatusPartiallyReceived
}

// IsOpen reports whether the order still expects deliveries or edits
func (s Status) IsOpen() bool {
	return s == StatusDraft || s == StatusOrdered || s == StatusPartiallyReceived
}

// Line is one item on a purchase order
type Line struct {
	ID               uint
	PurchaseOrderID  uint
	ItemID           uint
	Quantity         int
	ReceivedQuantity int
	UnitCost         decimal.Decimal
}

// RemainingQuantity returns what is still to be received
func (l Line) RemainingQuantity() int {
	if r := l.Quantity - l.ReceivedQuantity; r > 0 {
		return r
	}
	return 0
}

// LineTotal returns quantity * unit cost
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PurchaseOrder asks a supplier to replenish stock
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	Number       string
	SupplierID   uint
	PickListID   *uint
	Status       Status
	OrderDate    *time.Time
	ExpectedDate *time.Time
	Notes        string
	Lines        []Line
}

// Header holds the editable purchase order header fields
type Header struct {
	SupplierID   uint
	PickListID   *uint
	ExpectedDate *time.Time
	Notes        string
}

// Receipt is a quantity received against one line
type Receipt struct {
	LineID   uint `json:"lineId"`
	Quantity int  `json:"quantity"`
}

// ReceivedLine reports what a receipt changed
type ReceivedLine struct {
	LineID   uint
	ItemID   uint
	Quantity int
}

// NewPurchaseOrder creates a draft purchase order
func NewPurchaseOrder(h Header) (*PurchaseOrder, error) {
	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            StatusDraft,
	}
	if err := po.UpdateHeader(h); err != nil {
		return nil, err
	}
	return po, nil
}

// FormatNumber renders the display number for a persisted order
func FormatNumber(id uint) string {
	return fmt.Sprintf("PO-%06d", id)
}

// AssignNumber sets Number from the database ID
func (o *PurchaseOrder) AssignNumber() {
	o.Number = FormatNumber(o.ID)
}

// UpdateHeader replaces header fields. The supplier can change only in draft.
func (o *PurchaseOrder) UpdateHeader(h Header) error {
	if !o.Status.IsOpen() {
		return shared.InvalidStatef("Cannot edit a %s purchase order", o.Status)
	}
	if err := shared.RequireID("supplierId", h.SupplierID); err != nil {
		return err
	}
	if o.Status != StatusDraft && h.SupplierID != o.SupplierID {
		return shared.InvalidStatef("Supplier can only change while the order is a draft")
	}
	o.SupplierID = h.SupplierID
	if h.PickListID != nil && *h.PickListID == 0 {
		h.PickListID = nil
	}
	o.PickListID = h.PickListID
	o.ExpectedDate = h.ExpectedDate
	o.Notes = h.Notes
	o.touch()
	return nil
}

// AddLine adds an item, merging with an existing line for the same item
func (o *PurchaseOrder) AddLine(itemID uint, qty int, unitCost decimal.Decimal) error {
	if err := o.ensureDraft(); err != nil {
		return err
	}
	if err := shared.RequireID("itemId", itemID); err != nil {
		return err
	}
	if err := shared.RequirePositive("quantity", qty); err != nil {
		return err
	}
	if unitCost.IsNegative() {
		return shared.InvalidInputf("unitCost cannot be negative")
	}
	for i := range o.Lines {
		if o.Lines[i].ItemID == itemID {
			o.Lines[i].Quantity += qty
			o.Lines[i].UnitCost = unitCost
			o.touch()
			return nil
		}
	}
	o.Lines = append(o.Lines, Line{PurchaseOrderID: o.ID, ItemID: itemID, Quantity: qty, UnitCost: unitCost})
	o.touch()
	return nil
}

// UpdateLine changes quantity and cost of a line
func (o *PurchaseOrder) UpdateLine(lineID uint, qty int, unitCost decimal.Decimal) error {
	if err := o.ensureDraft(); err != nil {
		return err
	}
	l, err := o.line(lineID)
	if err != nil {
		return err
	}
	if err := shared.RequirePositive("quantity", qty); err != nil {
		return err
	}
	if qty < l.ReceivedQuantity {
		return shared.InvalidInputf("quantity cannot be less than the %d already received", l.ReceivedQuantity)
	}
	if unitCost.IsNegative() {
		return shared.InvalidInputf("unitCost cannot be negative")
	}
	l.Quantity = qty
	l.UnitCost = unitCost
	o.touch()
	return nil
}

// RemoveLine deletes a line
func (o *PurchaseOrder) RemoveLine(lineID uint) error {
	if err := o.ensureDraft(); err != nil {
		return err
	}
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			o.touch()
			return nil
		}
	}
	return shared.NotFoundf("Purchase order line %d not found", lineID)
}

// Place sends a draft to the supplier
func (o *PurchaseOrder) Place() error {
	if o.Status != StatusDraft {
		return shared.InvalidStatef("Cannot place a %s purchase order", o.Status)
	}
	if len(o.Lines) == 0 {
		return shared.InvalidStatef("Purchase order has no lines")
	}
	now := time.Now()
	o.Status = StatusOrdered
	o.OrderDate = &now
	o.touch()
	return nil
}

// Receive books delivered quantities. Every receipt is validated before any
// line changes. The caller adds the returned quantities to stock.
func (o *PurchaseOrder) Receive(receipts []Receipt) ([]ReceivedLine, error) {
	if !o.Status.CanReceive() {
		return nil, shared.InvalidStatef("Cannot receive goods for a %s purchase order", o.Status)
	}
	if len(receipts) == 0 {
		return nil, shared.InvalidInputf("receipts cannot be empty")
	}

	pending := make(map[uint]int, len(receipts))
	for _, r := range receipts {
		l, err := o.line(r.LineID)
		if err != nil {
			return nil, err
		}
		if err := shared.RequirePositive("quantity", r.Quantity); err != nil {
			return nil, err
		}
		pending[r.LineID] += r.Quantity
		if pending[r.LineID] > l.RemainingQuantity() {
			return nil, shared.InvalidInputf("Cannot receive %d of line %d: only %d remaining",
				pending[r.LineID], r.LineID, l.RemainingQuantity())
		}
	}

	received := make([]ReceivedLine, 0, len(pending))
	for i := range o.Lines {
		l := &o.Lines[i]
		qty, ok := pending[l.ID]
		if !ok {
			continue
		}
		l.ReceivedQuantity += qty
		received = append(received, ReceivedLine{LineID: l.ID, ItemID: l.ItemID, Quantity: qty})
	}

	if o.TotalRemaining() == 0 {
		o.Status = StatusReceived
	} else {
		o.Status = StatusPartiallyReceived
	}
	o.touch()
	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, received))
	return received, nil
}

// Cancel cancels an order that has received nothing
func (o *PurchaseOrder) Cancel() error {
	if o.Status != StatusDraft && o.Status != StatusOrdered {
		return shared.InvalidStatef("Cannot cancel a %s purchase order", o.Status)
	}
	if o.TotalReceived() > 0 {
		return shared.InvalidStatef("Cannot cancel a purchase order with received goods")
	}
	o.Status = StatusCancelled
	o.touch()
	return nil
}

// CanDelete reports whether the order may be deleted
func (o *PurchaseOrder) CanDelete() bool {
	return o.Status == StatusDraft || o.Status == StatusCancelled
}

// Total returns the order value
func (o *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// TotalOrdered sums ordered quantities
func (o *PurchaseOrder) TotalOrdered() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// TotalReceived sums received quantities
func (o *PurchaseOrder) TotalReceived() int {
	n := 0
	for _, l := range o.Lines {
		n += l.ReceivedQuantity
	}
	return n
}

// TotalRemaining sums remaining-to-receive quantities
func (o *PurchaseOrder) TotalRemaining() int {
	n := 0
	for _, l := range o.Lines {
		n += l.RemainingQuantity()
	}
	return n
}

func (o *PurchaseOrder) line(lineID uint) (*Line, error) {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i], nil
		}
	}
	return nil, shared.NotFoundf("Purchase order line %d not found", lineID)
}

func (o *PurchaseOrder) ensureDraft() error {
	if o.Status != StatusDraft {
		return shared.InvalidStatef("Lines can only change while the order is a draft, not %s", o.Status)
	}
	return nil
}

func (o *PurchaseOrder) touch() {
	if !o.IsNew() {
		o.IncrementVersion()
	}
}
