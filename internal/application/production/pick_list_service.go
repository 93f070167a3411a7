package production

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/application/transaction"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/export"
	"github.com/doorsets/backend/internal/infrastructure/printing"
	"github.com/doorsets/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PickListService manages pick lists and reconciles them against stock
type PickListService struct {
	pickListRepo      production.PickListRepository
	customerRepo      partner.CustomerRepository
	itemRepo          catalog.ItemRepository
	assemblyRepo      catalog.AssemblyRepository
	purchaseOrderRepo purchasing.PurchaseOrderRepository
	scope             transaction.Scope
	printer           common.DocumentPrinter
	support           common.Support
	now               func() time.Time
}

// NewPickListService creates a new PickListService. printer may be nil when
// printing is not available.
func NewPickListService(
	pickListRepo production.PickListRepository,
	customerRepo partner.CustomerRepository,
	itemRepo catalog.ItemRepository,
	assemblyRepo catalog.AssemblyRepository,
	purchaseOrderRepo purchasing.PurchaseOrderRepository,
	scope transaction.Scope,
	printer common.DocumentPrinter,
	support common.Support,
) *PickListService {
	return &PickListService{
		pickListRepo:      pickListRepo,
		customerRepo:      customerRepo,
		itemRepo:          itemRepo,
		assemblyRepo:      assemblyRepo,
		purchaseOrderRepo: purchaseOrderRepo,
		scope:             scope,
		printer:           printer,
		support:           support,
		now:               time.Now,
	}
}

// GetAll returns a page of pick lists
func (s *PickListService) GetAll(ctx context.Context, q PickListListQuery) (shared.Paginated[PickListResponse], error) {
	filter := q.Filter()
	return common.CachedList(ctx, s.support, production.AggregateTypePickList, filter, func() (shared.Paginated[PickListResponse], error) {
		lists, total, err := s.pickListRepo.FindAll(ctx, filter)
		if err != nil {
			return shared.Paginated[PickListResponse]{}, err
		}
		items, err := s.lineItems(ctx, lists...)
		if err != nil {
			return shared.Paginated[PickListResponse]{}, err
		}
		names, err := s.customerNames(ctx, lists...)
		if err != nil {
			return shared.Paginated[PickListResponse]{}, err
		}
		out := make([]PickListResponse, len(lists))
		for i := range lists {
			out[i] = ToPickListResponse(&lists[i], names[lists[i].CustomerID], items)
		}
		return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
	})
}

// GetByID retrieves a pick list with its lines
func (s *PickListService) GetByID(ctx context.Context, id uint) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, pl)
}

// Create creates an open pick list, optionally with lines and assemblies
func (s *PickListService) Create(ctx context.Context, req PickListRequest) (*PickListResponse, error) {
	if err := s.ensureCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	pl, err := production.NewPickList(req.header())
	if err != nil {
		return nil, err
	}

	itemIDs := make([]uint, len(req.Lines))
	for i, l := range req.Lines {
		itemIDs[i] = l.ItemID
	}
	if err := s.ensureItems(ctx, itemIDs...); err != nil {
		return nil, err
	}
	for _, l := range req.Lines {
		if err := pl.AddLine(l.ItemID, l.Quantity); err != nil {
			return nil, err
		}
	}
	for _, a := range req.Assemblies {
		if err := s.addAssembly(ctx, pl, a); err != nil {
			return nil, err
		}
	}

	if err := s.pickListRepo.Save(ctx, pl); err != nil {
		return nil, err
	}
	s.support.Logger.Info("Pick list created",
		zap.String("number", pl.Number),
		zap.Uint("customer_id", pl.CustomerID),
		zap.Int("lines", len(pl.Lines)))
	s.support.Changed(ctx, production.AggregateTypePickList, pl.ID, shared.ActionCreated)
	return s.response(ctx, pl)
}

// Update replaces the header fields
func (s *PickListService) Update(ctx context.Context, id uint, req PickListRequest) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != pl.CustomerID {
		if err := s.ensureCustomer(ctx, req.CustomerID); err != nil {
			return nil, err
		}
	}
	if err := pl.UpdateHeader(req.header()); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// Delete removes an open or cancelled pick list
func (s *PickListService) Delete(ctx context.Context, id uint) error {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !pl.CanDelete() {
		return shared.InvalidStatef("Only open or cancelled pick lists can be deleted, %s is %s", pl.Number, pl.Status)
	}
	if err := s.pickListRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.support.Changed(ctx, production.AggregateTypePickList, id, shared.ActionDeleted)
	return nil
}

// AddLine adds an item, merging with an existing unordered manual line for it
func (s *PickListService) AddLine(ctx context.Context, id uint, req AddLineRequest) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureItems(ctx, req.ItemID); err != nil {
		return nil, err
	}
	if err := pl.AddLine(req.ItemID, req.Quantity); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// AddAssembly expands units of an assembly into lines
func (s *PickListService) AddAssembly(ctx context.Context, id uint, req AddAssemblyRequest) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.addAssembly(ctx, pl, req); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// UpdateLine changes the quantity of a line
func (s *PickListService) UpdateLine(ctx context.Context, id, lineID uint, req UpdateLineRequest) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := pl.UpdateLineQuantity(lineID, req.Quantity); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// RemoveLine deletes a line
func (s *PickListService) RemoveLine(ctx context.Context, id, lineID uint) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := pl.RemoveLine(lineID); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// SetMadeOrder flags a line as ordered outside the system, or clears the flag
func (s *PickListService) SetMadeOrder(ctx context.Context, id, lineID uint, req SetMadeOrderRequest) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := pl.SetMadeOrder(lineID, req.MadeOrder != nil && *req.MadeOrder); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// LinkPurchaseOrder marks lines as covered by an open purchase order
func (s *PickListService) LinkPurchaseOrder(ctx context.Context, id uint, req LinkPurchaseOrderRequest) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	po, err := s.purchaseOrderRepo.FindByID(ctx, req.PurchaseOrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.InvalidInputf("purchaseOrderId %d does not exist", req.PurchaseOrderID)
		}
		return nil, err
	}
	if !po.Status.IsOpen() {
		return nil, shared.InvalidStatef("Cannot link a %s purchase order", po.Status)
	}
	if err := pl.LinkPurchaseOrder(req.LineIDs, po.ID); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// CheckStock reconciles the pick list against stock on hand
func (s *PickListService) CheckStock(ctx context.Context, id uint) (*StockCheckResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.lineItems(ctx, *pl)
	if err != nil {
		return nil, err
	}
	report := production.CheckStock(pl.Lines, stockOf(items))
	resp := ToStockCheckResponse(pl, report, items)
	return &resp, nil
}

// StartProduction moves an open pick list into production
func (s *PickListService) StartProduction(ctx context.Context, id uint) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := pl.StartProduction(); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// Complete deducts every line from stock and completes the pick list in one
// transaction. Any shortfall fails with INSUFFICIENT_STOCK and changes nothing.
func (s *PickListService) Complete(ctx context.Context, id uint) (*PickListResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pick_list", "complete",
		telemetry.WithAttribute(telemetry.SpanAttrPickListID, id))
	defer span.End()

	var (
		pl     *production.PickList
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos transaction.Repositories) error {
		var err error
		pl, err = repos.PickLists().FindByID(ctx, id)
		if err != nil {
			return err
		}
		found, err := repos.Items().FindByIDs(ctx, pl.ItemIDs())
		if err != nil {
			return err
		}
		items := make(map[uint]*catalog.Item, len(found))
		stock := make(map[uint]int, len(found))
		for i := range found {
			items[found[i].ID] = &found[i]
			stock[found[i].ID] = found[i].Quantity
		}

		report := production.CheckStock(pl.Lines, stock)
		if err := pl.Complete(report); err != nil {
			return err
		}

		for _, c := range consumption(pl.Lines) {
			item := items[c.itemID]
			mv, err := item.RemoveStock(c.quantity, catalog.MovementProduction, pl.Number)
			if err != nil {
				return err
			}
			if err := repos.Items().SaveWithMovement(ctx, item, mv); err != nil {
				return err
			}
			events = append(events, item.PullDomainEvents()...)
		}
		return repos.PickLists().Save(ctx, pl)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.support.Logger.Info("Pick list completed",
		zap.String("number", pl.Number),
		zap.Int("lines", len(pl.Lines)),
		zap.Int("items", len(events)))
	events = append(pl.PullDomainEvents(), events...)
	s.support.Changed(ctx, production.AggregateTypePickList, pl.ID, shared.ActionUpdated, events...)
	return s.response(ctx, pl)
}

// Cancel cancels a pick list that is not completed
func (s *PickListService) Cancel(ctx context.Context, id uint) (*PickListResponse, error) {
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := pl.Cancel(); err != nil {
		return nil, err
	}
	return s.save(ctx, pl)
}

// Print renders the pick list with current stock positions
func (s *PickListService) Print(ctx context.Context, id uint, opts printing.PrintOptions) (*printing.PrintOutput, error) {
	if s.printer == nil {
		return nil, printing.NewRenderError(printing.ErrCodeRenderFailed, "printing is not configured", nil)
	}
	pl, err := s.pickListRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := s.printView(ctx, pl)
	if err != nil {
		return nil, err
	}
	return s.printer.Print(ctx, printing.PickListDocument(view), opts)
}

// Export renders pick lists as one row per line
func (s *PickListService) Export(ctx context.Context, q PickListListQuery, format export.Format) (*common.ExportFile, error) {
	lists, _, err := s.pickListRepo.FindAll(ctx, common.Unpaged(q.Filter()))
	if err != nil {
		return nil, err
	}
	items, err := s.lineItems(ctx, lists...)
	if err != nil {
		return nil, err
	}
	names, err := s.customerNames(ctx, lists...)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title: "Pick Lists",
		Columns: []export.Column{
			{Header: "Number", Width: 12},
			{Header: "Status", Width: 14},
			{Header: "Customer", Width: 28},
			{Header: "Order Reference", Width: 18},
			{Header: "Title", Width: 32},
			{Header: "Due Date", Width: 12},
			{Header: "Item Code", Width: 16},
			{Header: "Item Name", Width: 32},
			{Header: "Quantity"},
			{Header: "Purchase Order ID"},
			{Header: "Made Order"},
		},
	}
	for _, pl := range lists {
		if len(pl.Lines) == 0 {
			table.AddRow(pl.Number, string(pl.Status), names[pl.CustomerID], pl.OrderReference, pl.Title, pl.DueDate, "", "", 0, nil, "")
			continue
		}
		for _, l := range pl.Lines {
			item := items[l.ItemID]
			table.AddRow(pl.Number, string(pl.Status), names[pl.CustomerID], pl.OrderReference, pl.Title, pl.DueDate,
				item.Code, item.Name, l.Quantity, l.PurchaseOrderID, yesNo(l.MadeOrder))
		}
	}
	return common.RenderExport(table, format, "pick-lists", s.now())
}

func (s *PickListService) save(ctx context.Context, pl *production.PickList) (*PickListResponse, error) {
	if err := s.pickListRepo.Save(ctx, pl); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, production.AggregateTypePickList, pl.ID, shared.ActionUpdated, pl.PullDomainEvents()...)
	return s.response(ctx, pl)
}

func (s *PickListService) response(ctx context.Context, pl *production.PickList) (*PickListResponse, error) {
	items, err := s.lineItems(ctx, *pl)
	if err != nil {
		return nil, err
	}
	names, err := s.customerNames(ctx, *pl)
	if err != nil {
		return nil, err
	}
	resp := ToPickListResponse(pl, names[pl.CustomerID], items)
	return &resp, nil
}

func (s *PickListService) addAssembly(ctx context.Context, pl *production.PickList, req AddAssemblyRequest) error {
	assembly, err := s.assemblyRepo.FindByID(ctx, req.AssemblyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.InvalidInputf("assemblyId %d does not exist", req.AssemblyID)
		}
		return err
	}
	return pl.AddAssembly(assembly, req.Units)
}

func (s *PickListService) ensureCustomer(ctx context.Context, id uint) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.InvalidInputf("customerId %d does not exist", id)
		}
		return err
	}
	return nil
}

func (s *PickListService) ensureItems(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uint]bool, len(found))
	for _, it := range found {
		known[it.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return shared.InvalidInputf("itemId %d does not exist", id)
		}
	}
	return nil
}

// lineItems loads every item referenced by the pick lists, keyed by ID
func (s *PickListService) lineItems(ctx context.Context, lists ...production.PickList) (map[uint]catalog.Item, error) {
	seen := make(map[uint]bool)
	var ids []uint
	for i := range lists {
		for _, id := range lists[i].ItemIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	out := make(map[uint]catalog.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	items, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// customerNames resolves customer names; customers deleted meanwhile map to ""
func (s *PickListService) customerNames(ctx context.Context, lists ...production.PickList) (map[uint]string, error) {
	names := make(map[uint]string)
	for i := range lists {
		id := lists[i].CustomerID
		if _, ok := names[id]; ok {
			continue
		}
		c, err := s.customerRepo.FindByID(ctx, id)
		switch {
		case err == nil:
			names[id] = c.Name
		case errors.Is(err, shared.ErrNotFound):
			names[id] = ""
		default:
			return nil, err
		}
	}
	return names, nil
}

func (s *PickListService) printView(ctx context.Context, pl *production.PickList) (printing.PickListView, error) {
	customer, err := s.customerRepo.FindByID(ctx, pl.CustomerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return printing.PickListView{}, err
	}
	items, err := s.lineItems(ctx, *pl)
	if err != nil {
		return printing.PickListView{}, err
	}
	assemblies, err := s.assemblyCodes(ctx, pl)
	if err != nil {
		return printing.PickListView{}, err
	}
	report := production.CheckStock(pl.Lines, stockOf(items))

	view := printing.PickListView{
		Number:         pl.Number,
		Status:         string(pl.Status),
		Title:          pl.Title,
		OrderReference: pl.OrderReference,
		DueDate:        pl.DueDate,
		CreatedAt:      pl.CreatedAt,
		Notes:          pl.Notes,
		HasWarnings:    report.HasWarnings,
		Lines:          make([]printing.PickListLineView, len(pl.Lines)),
	}
	if customer != nil {
		view.Customer = printing.Party{
			Name:        customer.Name,
			ContactName: customer.ContactName,
			Email:       customer.Email,
			Phone:       customer.Phone,
			Address:     customer.Address,
		}
	}
	for i, l := range pl.Lines {
		item := items[l.ItemID]
		ls := report.Lines[i]
		line := printing.PickListLineView{
			ItemCode:  item.Code,
			ItemName:  item.Name,
			Unit:      item.Unit,
			Location:  item.Location,
			Quantity:  l.Quantity,
			InStock:   ls.InStock,
			Shortfall: ls.Shortfall,
			MadeOrder: l.MadeOrder,
			Warning:   ls.Warning,
		}
		if l.AssemblyID != nil {
			line.Assembly = assemblies[*l.AssemblyID]
		}
		if l.PurchaseOrderID != nil {
			line.PurchaseOrder = purchasing.FormatNumber(*l.PurchaseOrderID)
		}
		view.Lines[i] = line
	}
	return view, nil
}

func (s *PickListService) assemblyCodes(ctx context.Context, pl *production.PickList) (map[uint]string, error) {
	codes := make(map[uint]string)
	for _, l := range pl.Lines {
		if l.AssemblyID == nil {
			continue
		}
		if _, ok := codes[*l.AssemblyID]; ok {
			continue
		}
		a, err := s.assemblyRepo.FindByID(ctx, *l.AssemblyID)
		switch {
		case err == nil:
			codes[a.ID] = a.Code
		case errors.Is(err, shared.ErrNotFound):
			codes[*l.AssemblyID] = ""
		default:
			return nil, err
		}
	}
	return codes, nil
}

type itemQuantity struct {
	itemID   uint
	quantity int
}

// consumption totals line quantities per item, ordered by item ID so
// concurrent completions touch rows in the same order
func consumption(lines []production.PickListLine) []itemQuantity {
	totals := make(map[uint]int)
	for _, l := range lines {
		totals[l.ItemID] += l.Quantity
	}
	out := make([]itemQuantity, 0, len(totals))
	for id, qty := range totals {
		out = append(out, itemQuantity{itemID: id, quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].itemID < out[j].itemID })
	return out
}

func stockOf(items map[uint]catalog.Item) map[uint]int {
	stock := make(map[uint]int, len(items))
	for id, it := range items {
		stock[id] = it.Quantity
	}
	return stock
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
