package production

import (
	"fmt"
	"strings"
	"time"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
)

// AggregateTypePickList names the pick list aggregate
const AggregateTypePickList = "PickList"

// PickListStatus is the lifecycle state of a pick list
type PickListStatus string

const (
	PickListStatusOpen         PickListStatus = "open"
	PickListStatusInProduction PickListStatus = "in_production"
	PickListStatusCompleted    PickListStatus = "completed"
	PickListStatusCancelled    PickListStatus = "cancelled"
)

// IsValid checks if the status is known
func (s PickListStatus) IsValid() bool {
	switch s {
	case PickListStatusOpen, PickListStatusInProduction, PickListStatusCompleted, PickListStatusCancelled:
		return true
	}
	return false
}

// IsEditable reports whether lines may change in this status
func (s PickListStatus) IsEditable() bool {
	return s == PickListStatusOpen || s == PickListStatusInProduction
}

// PickList is a production sheet: the items needed to fulfil a customer order
type PickList struct {
	shared.BaseAggregateRoot
	Number         string
	CustomerID     uint
	OrderReference string
	Title          string
	DueDate        *time.Time
	Status         PickListStatus
	Notes          string
	CompletedAt    *time.Time
	Lines          []PickListLine
}

// PickListLine is one requested item. AssemblyID is set when the line came
// from expanding an assembly.
type PickListLine struct {
	ID              uint
	PickListID      uint
	ItemID          uint
	AssemblyID      *uint
	Quantity        int
	PurchaseOrderID *uint
	MadeOrder       bool
}

// Ordered reports whether replenishment for this line has been ordered
func (l PickListLine) Ordered() bool {
	return l.PurchaseOrderID != nil || l.MadeOrder
}

// Header holds the editable pick list header fields
type Header struct {
	CustomerID     uint
	OrderReference string
	Title          string
	DueDate        *time.Time
	Notes          string
}

// NewPickList creates an open pick list
func NewPickList(h Header) (*PickList, error) {
	pl := &PickList{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            PickListStatusOpen,
	}
	if err := pl.UpdateHeader(h); err != nil {
		return nil, err
	}
	return pl, nil
}

// FormatNumber renders the display number for a persisted pick list
func FormatNumber(id uint) string {
	return fmt.Sprintf("PL-%06d", id)
}

// AssignNumber sets Number from the database ID
func (p *PickList) AssignNumber() {
	p.Number = FormatNumber(p.ID)
}

// UpdateHeader replaces the header fields
func (p *PickList) UpdateHeader(h Header) error {
	if p.Status == PickListStatusCompleted || p.Status == PickListStatusCancelled {
		return shared.InvalidStatef("Cannot edit a %s pick list", p.Status)
	}
	if err := shared.RequireID("customerId", h.CustomerID); err != nil {
		return err
	}
	title := strings.TrimSpace(h.Title)
	if err := shared.RequireText("title", title, 200); err != nil {
		return err
	}
	if err := shared.MaxLength("orderReference", h.OrderReference, 100); err != nil {
		return err
	}
	p.CustomerID = h.CustomerID
	p.OrderReference = strings.TrimSpace(h.OrderReference)
	p.Title = title
	p.DueDate = h.DueDate
	p.Notes = h.Notes
	p.touch()
	return nil
}

// AddLine adds qty of an item, merging into an existing unordered manual line
// for the same item. Ordered lines are never grown; a new line is started.
func (p *PickList) AddLine(itemID uint, qty int) error {
	return p.addLine(itemID, nil, qty)
}

// AddAssembly expands units of an assembly into lines tagged with the assembly
func (p *PickList) AddAssembly(assembly *catalog.Assembly, units int) error {
	reqs, err := assembly.Expand(units)
	if err != nil {
		return err
	}
	if err := p.ensureEditable(); err != nil {
		return err
	}
	assemblyID := assembly.ID
	for _, r := range reqs {
		if err := p.addLine(r.ItemID, &assemblyID, r.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (p *PickList) addLine(itemID uint, assemblyID *uint, qty int) error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	if err := shared.RequireID("itemId", itemID); err != nil {
		return err
	}
	if err := shared.RequirePositive("quantity", qty); err != nil {
		return err
	}
	for i := range p.Lines {
		l := &p.Lines[i]
		if l.ItemID == itemID && sameRef(l.AssemblyID, assemblyID) && !l.Ordered() {
			l.Quantity += qty
			p.touch()
			return nil
		}
	}
	p.Lines = append(p.Lines, PickListLine{
		PickListID: p.ID,
		ItemID:     itemID,
		AssemblyID: assemblyID,
		Quantity:   qty,
	})
	p.touch()
	return nil
}

// UpdateLineQuantity changes a line's requested quantity. An ordered line may
// only shrink; the extra units need a line of their own.
func (p *PickList) UpdateLineQuantity(lineID uint, qty int) error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	if err := shared.RequirePositive("quantity", qty); err != nil {
		return err
	}
	l, err := p.line(lineID)
	if err != nil {
		return err
	}
	if l.Ordered() && qty > l.Quantity {
		return shared.InvalidStatef("Line %d is already ordered; add a new line for the extra quantity", lineID)
	}
	l.Quantity = qty
	p.touch()
	return nil
}

// RemoveLine deletes a line
func (p *PickList) RemoveLine(lineID uint) error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	for i := range p.Lines {
		if p.Lines[i].ID == lineID {
			p.Lines = append(p.Lines[:i], p.Lines[i+1:]...)
			p.touch()
			return nil
		}
	}
	return shared.NotFoundf("Pick list line %d not found", lineID)
}

// SetMadeOrder records whether the items of a line have been ordered.
// Clearing the flag also unlinks any purchase order.
func (p *PickList) SetMadeOrder(lineID uint, made bool) error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	l, err := p.line(lineID)
	if err != nil {
		return err
	}
	l.MadeOrder = made
	if !made {
		l.PurchaseOrderID = nil
	}
	p.touch()
	return nil
}

// LinkPurchaseOrder links lines to a purchase order and marks them ordered.
// All line IDs are checked before any line changes.
func (p *PickList) LinkPurchaseOrder(lineIDs []uint, purchaseOrderID uint) error {
	if err := p.ensureEditable(); err != nil {
		return err
	}
	if err := shared.RequireID("purchaseOrderId", purchaseOrderID); err != nil {
		return err
	}
	if len(lineIDs) == 0 {
		return shared.InvalidInputf("lineIds cannot be empty")
	}
	targets := make([]*PickListLine, 0, len(lineIDs))
	for _, id := range lineIDs {
		l, err := p.line(id)
		if err != nil {
			return err
		}
		targets = append(targets, l)
	}
	for _, l := range targets {
		poID := purchaseOrderID
		l.PurchaseOrderID = &poID
		l.MadeOrder = true
	}
	p.touch()
	return nil
}

// UnlinkPurchaseOrder clears every link to a purchase order, used when that
// order is cancelled or deleted
func (p *PickList) UnlinkPurchaseOrder(purchaseOrderID uint) bool {
	changed := false
	for i := range p.Lines {
		l := &p.Lines[i]
		if l.PurchaseOrderID != nil && *l.PurchaseOrderID == purchaseOrderID {
			l.PurchaseOrderID = nil
			l.MadeOrder = false
			changed = true
		}
	}
	if changed {
		p.touch()
	}
	return changed
}

// StartProduction moves an open pick list into production
func (p *PickList) StartProduction() error {
	if p.Status != PickListStatusOpen {
		return shared.InvalidStatef("Cannot start production of a %s pick list", p.Status)
	}
	if len(p.Lines) == 0 {
		return shared.InvalidStatef("Pick list has no lines")
	}
	p.Status = PickListStatusInProduction
	p.touch()
	return nil
}

// Complete checks the stock report and marks the pick list completed. The
// caller deducts stock for every line in the same transaction.
func (p *PickList) Complete(report StockReport) error {
	if !p.Status.IsEditable() {
		return shared.InvalidStatef("Cannot complete a %s pick list", p.Status)
	}
	if len(p.Lines) == 0 {
		return shared.InvalidStatef("Pick list has no lines")
	}
	if !report.CanComplete {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Pick list %s has a stock shortfall of %d units", p.Number, report.TotalShortfall))
	}
	now := time.Now()
	p.Status = PickListStatusCompleted
	p.CompletedAt = &now
	p.touch()
	p.AddDomainEvent(NewPickListCompletedEvent(p))
	return nil
}

// Cancel cancels a pick list that is not completed
func (p *PickList) Cancel() error {
	if p.Status == PickListStatusCompleted || p.Status == PickListStatusCancelled {
		return shared.InvalidStatef("Cannot cancel a %s pick list", p.Status)
	}
	p.Status = PickListStatusCancelled
	p.touch()
	return nil
}

// CanDelete reports whether the pick list may be deleted
func (p *PickList) CanDelete() bool {
	return p.Status == PickListStatusOpen || p.Status == PickListStatusCancelled
}

// ItemIDs returns the distinct item IDs across all lines
func (p *PickList) ItemIDs() []uint {
	seen := make(map[uint]struct{}, len(p.Lines))
	ids := make([]uint, 0, len(p.Lines))
	for _, l := range p.Lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}
	return ids
}

// Line returns a copy of the line with the given ID
func (p *PickList) Line(lineID uint) (PickListLine, bool) {
	for _, l := range p.Lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return PickListLine{}, false
}

func (p *PickList) line(lineID uint) (*PickListLine, error) {
	for i := range p.Lines {
		if p.Lines[i].ID == lineID {
			return &p.Lines[i], nil
		}
	}
	return nil, shared.NotFoundf("Pick list line %d not found", lineID)
}

func (p *PickList) ensureEditable() error {
	if !p.Status.IsEditable() {
		return shared.InvalidStatef("Cannot change lines of a %s pick list", p.Status)
	}
	return nil
}

func (p *PickList) touch() {
	if !p.IsNew() {
		p.IncrementVersion()
	}
}

func sameRef(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
