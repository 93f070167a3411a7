package purchasing

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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService manages purchase orders and goods receipt
type PurchaseOrderService struct {
	orderRepo    purchasing.PurchaseOrderRepository
	supplierRepo partner.SupplierRepository
	itemRepo     catalog.ItemRepository
	pickListRepo production.PickListRepository
	scope        transaction.Scope
	printer      common.DocumentPrinter
	support      common.Support
	now          func() time.Time
}

// NewPurchaseOrderService creates a new PurchaseOrderService. printer may be
// nil when printing is not available.
func NewPurchaseOrderService(
	orderRepo purchasing.PurchaseOrderRepository,
	supplierRepo partner.SupplierRepository,
	itemRepo catalog.ItemRepository,
	pickListRepo production.PickListRepository,
	scope transaction.Scope,
	printer common.DocumentPrinter,
	support common.Support,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		itemRepo:     itemRepo,
		pickListRepo: pickListRepo,
		scope:        scope,
		printer:      printer,
		support:      support,
		now:          time.Now,
	}
}

// GetAll returns a page of purchase orders
func (s *PurchaseOrderService) GetAll(ctx context.Context, q PurchaseOrderListQuery) (shared.Paginated[PurchaseOrderResponse], error) {
	filter := q.Filter()
	return common.CachedList(ctx, s.support, purchasing.AggregateTypePurchaseOrder, filter, func() (shared.Paginated[PurchaseOrderResponse], error) {
		orders, total, err := s.orderRepo.FindAll(ctx, filter)
		if err != nil {
			return shared.Paginated[PurchaseOrderResponse]{}, err
		}
		out, err := s.responses(ctx, orders)
		if err != nil {
			return shared.Paginated[PurchaseOrderResponse]{}, err
		}
		return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
	})
}

// GetByID retrieves a purchase order with its lines
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uint) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, po)
}

// Create creates a draft purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, req PurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if err := s.ensureSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}
	if err := s.ensurePickList(ctx, req.PickListID); err != nil {
		return nil, err
	}
	po, err := purchasing.NewPurchaseOrder(req.header())
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(req.Lines))
	for i, l := range req.Lines {
		ids[i] = l.ItemID
	}
	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range req.Lines {
		if err := po.AddLine(l.ItemID, l.Quantity, unitCost(l, items[l.ItemID])); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, po); err != nil {
		return nil, err
	}
	s.support.Logger.Info("Purchase order created",
		zap.String("number", po.Number),
		zap.Uint("supplier_id", po.SupplierID),
		zap.Int("lines", len(po.Lines)))
	s.support.Changed(ctx, purchasing.AggregateTypePurchaseOrder, po.ID, shared.ActionCreated)
	return s.response(ctx, po)
}

// Update replaces the header fields
func (s *PurchaseOrderService) Update(ctx context.Context, id uint, req PurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SupplierID != po.SupplierID {
		if err := s.ensureSupplier(ctx, req.SupplierID); err != nil {
			return nil, err
		}
	}
	if err := s.ensurePickList(ctx, req.PickListID); err != nil {
		return nil, err
	}
	if err := po.UpdateHeader(req.header()); err != nil {
		return nil, err
	}
	return s.save(ctx, po)
}

// Delete removes a draft or cancelled purchase order. Pick list lines linked
// to it lose the link.
func (s *PurchaseOrderService) Delete(ctx context.Context, id uint) error {
	po, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !po.CanDelete() {
		return shared.InvalidStatef("Only draft or cancelled purchase orders can be deleted, %s is %s", po.Number, po.Status)
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.support.Changed(ctx, purchasing.AggregateTypePurchaseOrder, id, shared.ActionDeleted,
		shared.NewEntityChangedEvent(production.AggregateTypePickList, 0, shared.ActionUpdated))
	return nil
}

// AddLine adds an item to a draft, merging with an existing line for it
func (s *PurchaseOrderService) AddLine(ctx context.Context, id uint, req LineRequest) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.loadItems(ctx, []uint{req.ItemID})
	if err != nil {
		return nil, err
	}
	if err := po.AddLine(req.ItemID, req.Quantity, unitCost(req, items[req.ItemID])); err != nil {
		return nil, err
	}
	return s.save(ctx, po)
}

// UpdateLine changes quantity and unit cost of a draft line
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, id, lineID uint, req UpdateLineRequest) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := po.UpdateLine(lineID, req.Quantity, req.UnitCost); err != nil {
		return nil, err
	}
	return s.save(ctx, po)
}

// RemoveLine deletes a draft line
func (s *PurchaseOrderService) RemoveLine(ctx context.Context, id, lineID uint) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := po.RemoveLine(lineID); err != nil {
		return nil, err
	}
	return s.save(ctx, po)
}

// Place sends a draft to the supplier
func (s *PurchaseOrderService) Place(ctx context.Context, id uint) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := po.Place(); err != nil {
		return nil, err
	}
	return s.save(ctx, po)
}

// Receive books delivered quantities and adds them to stock in one transaction
func (s *PurchaseOrderService) Receive(ctx context.Context, id uint, req ReceiveRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "receive",
		telemetry.WithAttribute(telemetry.SpanAttrPurchaseOrderID, id))
	defer span.End()

	var (
		po     *purchasing.PurchaseOrder
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos transaction.Repositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		received, err := po.Receive(req.receipts())
		if err != nil {
			return err
		}

		totals := make(map[uint]int)
		ids := make([]uint, 0, len(received))
		for _, r := range received {
			if _, ok := totals[r.ItemID]; !ok {
				ids = append(ids, r.ItemID)
			}
			totals[r.ItemID] += r.Quantity
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		found, err := repos.Items().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint]*catalog.Item, len(found))
		for i := range found {
			byID[found[i].ID] = &found[i]
		}
		for _, itemID := range ids {
			item, ok := byID[itemID]
			if !ok {
				return shared.InvalidStatef("Item %d on %s no longer exists", itemID, po.Number)
			}
			mv, err := item.AddStock(totals[itemID], catalog.MovementReceipt, po.Number)
			if err != nil {
				return err
			}
			if err := repos.Items().SaveWithMovement(ctx, item, mv); err != nil {
				return err
			}
			events = append(events, item.PullDomainEvents()...)
		}
		return repos.PurchaseOrders().Save(ctx, po)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.support.Logger.Info("Goods received",
		zap.String("number", po.Number),
		zap.String("status", string(po.Status)),
		zap.Int("remaining", po.TotalRemaining()))
	events = append(po.PullDomainEvents(), events...)
	s.support.Changed(ctx, purchasing.AggregateTypePurchaseOrder, po.ID, shared.ActionUpdated, events...)
	return s.response(ctx, po)
}

// Cancel cancels an order with no receipts and unlinks it from pick lists
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uint) (*PurchaseOrderResponse, error) {
	var (
		po       *purchasing.PurchaseOrder
		unlinked []uint
	)
	err := s.scope.Execute(ctx, func(repos transaction.Repositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := po.Cancel(); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
			return err
		}
		lists, err := repos.PickLists().FindByPurchaseOrder(ctx, po.ID)
		if err != nil {
			return err
		}
		for i := range lists {
			if !lists[i].UnlinkPurchaseOrder(po.ID) {
				continue
			}
			if err := repos.PickLists().Save(ctx, &lists[i]); err != nil {
				return err
			}
			unlinked = append(unlinked, lists[i].ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := make([]shared.DomainEvent, 0, len(unlinked))
	for _, plID := range unlinked {
		events = append(events, shared.NewEntityChangedEvent(production.AggregateTypePickList, plID, shared.ActionUpdated))
	}
	s.support.Changed(ctx, purchasing.AggregateTypePurchaseOrder, po.ID, shared.ActionUpdated, events...)
	return s.response(ctx, po)
}

// CreateFromPickList raises one draft purchase order per supplier for the
// unordered shortfalls of a pick list and links the lines to them. Short
// items without a supplier are reported back and left unordered.
func (s *PurchaseOrderService) CreateFromPickList(ctx context.Context, pickListID uint) (*CreateFromPickListResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "create_from_pick_list",
		telemetry.WithAttribute(telemetry.SpanAttrPickListID, pickListID))
	defer span.End()

	result := &CreateFromPickListResponse{
		PickListID:     pickListID,
		PurchaseOrders: []PurchaseOrderResponse{},
		SkippedItemIDs: []uint{},
		LinkedLineIDs:  []uint{},
	}
	var created []*purchasing.PurchaseOrder

	err := s.scope.Execute(ctx, func(repos transaction.Repositories) error {
		pl, err := repos.PickLists().FindByID(ctx, pickListID)
		if err != nil {
			return err
		}
		if !pl.Status.IsEditable() {
			return shared.InvalidStatef("Cannot order for a %s pick list", pl.Status)
		}
		found, err := repos.Items().FindByIDs(ctx, pl.ItemIDs())
		if err != nil {
			return err
		}
		items := make(map[uint]catalog.Item, len(found))
		stock := make(map[uint]int, len(found))
		for _, it := range found {
			items[it.ID] = it
			stock[it.ID] = it.Quantity
		}

		report := production.CheckStock(pl.Lines, stock)
		groups := make(map[uint][]production.LineStock)
		var supplierIDs []uint
		skipped := make(map[uint]bool)
		for _, w := range report.Warnings() {
			item, ok := items[w.ItemID]
			if !ok || item.SupplierID == nil {
				if !skipped[w.ItemID] {
					skipped[w.ItemID] = true
					result.SkippedItemIDs = append(result.SkippedItemIDs, w.ItemID)
				}
				continue
			}
			sid := *item.SupplierID
			if _, ok := groups[sid]; !ok {
				supplierIDs = append(supplierIDs, sid)
			}
			groups[sid] = append(groups[sid], w)
		}
		sort.Slice(supplierIDs, func(i, j int) bool { return supplierIDs[i] < supplierIDs[j] })

		for _, sid := range supplierIDs {
			po, err := purchasing.NewPurchaseOrder(purchasing.Header{
				SupplierID: sid,
				PickListID: &pl.ID,
				Notes:      "Raised for pick list " + pl.Number,
			})
			if err != nil {
				return err
			}
			lineIDs := make([]uint, 0, len(groups[sid]))
			for _, w := range groups[sid] {
				if err := po.AddLine(w.ItemID, w.Shortfall, items[w.ItemID].UnitCost); err != nil {
					return err
				}
				lineIDs = append(lineIDs, w.LineID)
			}
			if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
				return err
			}
			if err := pl.LinkPurchaseOrder(lineIDs, po.ID); err != nil {
				return err
			}
			result.LinkedLineIDs = append(result.LinkedLineIDs, lineIDs...)
			created = append(created, po)
		}
		if len(created) == 0 {
			return nil
		}
		return repos.PickLists().Save(ctx, pl)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	events := make([]shared.DomainEvent, 0, len(created)+1)
	for _, po := range created {
		events = append(events, shared.NewEntityChangedEvent(purchasing.AggregateTypePurchaseOrder, po.ID, shared.ActionCreated))
	}
	if len(created) > 0 {
		s.support.Changed(ctx, production.AggregateTypePickList, pickListID, shared.ActionUpdated, events...)
	}
	s.support.Logger.Info("Purchase orders raised from pick list",
		zap.Uint("pick_list_id", pickListID),
		zap.Int("orders", len(created)),
		zap.Int("skipped_items", len(result.SkippedItemIDs)))

	for _, po := range created {
		resp, err := s.response(ctx, po)
		if err != nil {
			return nil, err
		}
		result.PurchaseOrders = append(result.PurchaseOrders, *resp)
	}
	return result, nil
}

// Print renders the purchase order
func (s *PurchaseOrderService) Print(ctx context.Context, id uint, opts printing.PrintOptions) (*printing.PrintOutput, error) {
	if s.printer == nil {
		return nil, printing.NewRenderError(printing.ErrCodeRenderFailed, "printing is not configured", nil)
	}
	po, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := s.printView(ctx, po)
	if err != nil {
		return nil, err
	}
	return s.printer.Print(ctx, printing.PurchaseOrderDocument(view), opts)
}

// Export renders purchase orders as one row per line
func (s *PurchaseOrderService) Export(ctx context.Context, q PurchaseOrderListQuery, format export.Format) (*common.ExportFile, error) {
	orders, _, err := s.orderRepo.FindAll(ctx, common.Unpaged(q.Filter()))
	if err != nil {
		return nil, err
	}
	items, err := s.lineItems(ctx, orders...)
	if err != nil {
		return nil, err
	}
	names, err := s.supplierNames(ctx, orders...)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title: "Purchase Orders",
		Columns: []export.Column{
			{Header: "Number", Width: 12},
			{Header: "Status", Width: 18},
			{Header: "Supplier", Width: 28},
			{Header: "Pick List", Width: 12},
			{Header: "Order Date", Width: 12},
			{Header: "Expected Date", Width: 12},
			{Header: "Item Code", Width: 16},
			{Header: "Item Name", Width: 32},
			{Header: "Quantity"},
			{Header: "Received"},
			{Header: "Unit Cost"},
			{Header: "Line Total"},
		},
	}
	for _, po := range orders {
		pickList := ""
		if po.PickListID != nil {
			pickList = production.FormatNumber(*po.PickListID)
		}
		if len(po.Lines) == 0 {
			table.AddRow(po.Number, string(po.Status), names[po.SupplierID], pickList, po.OrderDate, po.ExpectedDate, "", "", 0, 0, nil, nil)
			continue
		}
		for _, l := range po.Lines {
			item := items[l.ItemID]
			table.AddRow(po.Number, string(po.Status), names[po.SupplierID], pickList, po.OrderDate, po.ExpectedDate,
				item.Code, item.Name, l.Quantity, l.ReceivedQuantity, l.UnitCost, l.LineTotal())
		}
	}
	return common.RenderExport(table, format, "purchase-orders", s.now())
}

func (s *PurchaseOrderService) save(ctx context.Context, po *purchasing.PurchaseOrder) (*PurchaseOrderResponse, error) {
	if err := s.orderRepo.Save(ctx, po); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, purchasing.AggregateTypePurchaseOrder, po.ID, shared.ActionUpdated, po.PullDomainEvents()...)
	return s.response(ctx, po)
}

func (s *PurchaseOrderService) response(ctx context.Context, po *purchasing.PurchaseOrder) (*PurchaseOrderResponse, error) {
	out, err := s.responses(ctx, []purchasing.PurchaseOrder{*po})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *PurchaseOrderService) responses(ctx context.Context, orders []purchasing.PurchaseOrder) ([]PurchaseOrderResponse, error) {
	items, err := s.lineItems(ctx, orders...)
	if err != nil {
		return nil, err
	}
	names, err := s.supplierNames(ctx, orders...)
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderResponse(&orders[i], names[orders[i].SupplierID], items)
	}
	return out, nil
}

func (s *PurchaseOrderService) ensureSupplier(ctx context.Context, id uint) error {
	if _, err := s.supplierRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.InvalidInputf("supplierId %d does not exist", id)
		}
		return err
	}
	return nil
}

func (s *PurchaseOrderService) ensurePickList(ctx context.Context, id *uint) error {
	if id == nil || *id == 0 {
		return nil
	}
	if _, err := s.pickListRepo.FindByID(ctx, *id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.InvalidInputf("pickListId %d does not exist", *id)
		}
		return err
	}
	return nil
}

// loadItems returns the items keyed by ID, failing on any unknown ID
func (s *PurchaseOrderService) loadItems(ctx context.Context, ids []uint) (map[uint]catalog.Item, error) {
	out := make(map[uint]catalog.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range found {
		out[it.ID] = it
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, shared.InvalidInputf("itemId %d does not exist", id)
		}
	}
	return out, nil
}

func (s *PurchaseOrderService) lineItems(ctx context.Context, orders ...purchasing.PurchaseOrder) (map[uint]catalog.Item, error) {
	seen := make(map[uint]bool)
	var ids []uint
	for _, po := range orders {
		for _, l := range po.Lines {
			if !seen[l.ItemID] {
				seen[l.ItemID] = true
				ids = append(ids, l.ItemID)
			}
		}
	}
	out := make(map[uint]catalog.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range found {
		out[it.ID] = it
	}
	return out, nil
}

func (s *PurchaseOrderService) supplierNames(ctx context.Context, orders ...purchasing.PurchaseOrder) (map[uint]string, error) {
	names := make(map[uint]string)
	for _, po := range orders {
		if _, ok := names[po.SupplierID]; ok {
			continue
		}
		sup, err := s.supplierRepo.FindByID(ctx, po.SupplierID)
		switch {
		case err == nil:
			names[po.SupplierID] = sup.Name
		case errors.Is(err, shared.ErrNotFound):
			names[po.SupplierID] = ""
		default:
			return nil, err
		}
	}
	return names, nil
}

func (s *PurchaseOrderService) printView(ctx context.Context, po *purchasing.PurchaseOrder) (printing.PurchaseOrderView, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, po.SupplierID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return printing.PurchaseOrderView{}, err
	}
	items, err := s.lineItems(ctx, *po)
	if err != nil {
		return printing.PurchaseOrderView{}, err
	}
	view := printing.PurchaseOrderView{
		Number:       po.Number,
		Status:       string(po.Status),
		OrderDate:    po.OrderDate,
		ExpectedDate: po.ExpectedDate,
		CreatedAt:    po.CreatedAt,
		Notes:        po.Notes,
		Total:        po.Total(),
		Lines:        make([]printing.PurchaseOrderLineView, len(po.Lines)),
	}
	if supplier != nil {
		view.Supplier = printing.Party{
			Name:        supplier.Name,
			ContactName: supplier.ContactName,
			Email:       supplier.Email,
			Phone:       supplier.Phone,
			Address:     supplier.Address,
		}
	}
	if po.PickListID != nil {
		view.PickList = production.FormatNumber(*po.PickListID)
	}
	for i, l := range po.Lines {
		item := items[l.ItemID]
		view.Lines[i] = printing.PurchaseOrderLineView{
			ItemCode:  item.Code,
			ItemName:  item.Name,
			Unit:      item.Unit,
			Quantity:  l.Quantity,
			Received:  l.ReceivedQuantity,
			UnitCost:  l.UnitCost,
			LineTotal: l.LineTotal(),
		}
	}
	return view, nil
}

func unitCost(req LineRequest, item catalog.Item) decimal.Decimal {
	if req.UnitCost != nil {
		return *req.UnitCost
	}
	return item.UnitCost
}
