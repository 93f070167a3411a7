// Package reporting answers read-only questions across modules: the
// dashboard figures and the reorder list.
package reporting

import (
	"context"
	"errors"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// SummaryResponse holds the dashboard figures
type SummaryResponse struct {
	ItemCount             int64           `json:"itemCount"`
	LowStockCount         int64           `json:"lowStockCount"`
	OpenPickLists         int64           `json:"openPickLists"`
	PickListsWithWarnings int64           `json:"pickListsWithWarnings"`
	OpenPurchaseOrders    int64           `json:"openPurchaseOrders"`
	InventoryValue        decimal.Decimal `json:"inventoryValue"`
}

// LowStockItemResponse is an item due for reordering
type LowStockItemResponse struct {
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

// DashboardService builds the dashboard and low stock views
type DashboardService struct {
	itemRepo     catalog.ItemRepository
	pickListRepo production.PickListRepository
	orderRepo    purchasing.PurchaseOrderRepository
	supplierRepo partner.SupplierRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	itemRepo catalog.ItemRepository,
	pickListRepo production.PickListRepository,
	orderRepo purchasing.PurchaseOrderRepository,
	supplierRepo partner.SupplierRepository,
) *DashboardService {
	return &DashboardService{
		itemRepo:     itemRepo,
		pickListRepo: pickListRepo,
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
	}
}

// Summary gathers the dashboard figures
func (s *DashboardService) Summary(ctx context.Context) (*SummaryResponse, error) {
	var (
		resp     SummaryResponse
		inv      catalog.InventorySummary
		warnings int64
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inv, err = s.itemRepo.Summary(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		resp.OpenPurchaseOrders, err = s.orderRepo.CountOpen(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		resp.OpenPickLists, warnings, err = s.pickListWarnings(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.ItemCount = inv.ItemCount
	resp.LowStockCount = inv.LowStockCount
	resp.InventoryValue = inv.TotalValue
	resp.PickListsWithWarnings = warnings
	return &resp, nil
}

// pickListWarnings counts open pick lists and those with a stock warning
func (s *DashboardService) pickListWarnings(ctx context.Context) (int64, int64, error) {
	filter := shared.Filter{Filters: map[string]any{
		"statuses": []string{string(production.PickListStatusOpen), string(production.PickListStatusInProduction)},
	}}
	lists, total, err := s.pickListRepo.FindAll(ctx, filter)
	if err != nil {
		return 0, 0, err
	}

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
	stock := map[uint]int{}
	if len(ids) > 0 {
		if stock, err = s.itemRepo.StockLevels(ctx, ids); err != nil {
			return 0, 0, err
		}
	}

	var warnings int64
	for i := range lists {
		if production.CheckStock(lists[i].Lines, stock).HasWarnings {
			warnings++
		}
	}
	return total, warnings, nil
}

// LowStock lists active items at or below their reorder level with a suggested order quantity
func (s *DashboardService) LowStock(ctx context.Context) ([]LowStockItemResponse, error) {
	items, err := s.itemRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[uint]string)
	out := make([]LowStockItemResponse, len(items))
	for i := range items {
		it := &items[i]
		out[i] = LowStockItemResponse{
			ItemID:            it.ID,
			Code:              it.Code,
			Name:              it.Name,
			Unit:              it.Unit,
			Quantity:          it.Quantity,
			ReorderLevel:      it.ReorderLevel,
			SuggestedQuantity: it.SuggestedOrderQuantity(),
			UnitCost:          it.UnitCost,
			SupplierID:        it.SupplierID,
		}
		if it.SupplierID == nil {
			continue
		}
		name, ok := names[*it.SupplierID]
		if !ok {
			sup, err := s.supplierRepo.FindByID(ctx, *it.SupplierID)
			switch {
			case err == nil:
				name = sup.Name
			case !errors.Is(err, shared.ErrNotFound):
				return nil, err
			}
			names[*it.SupplierID] = name
		}
		out[i].SupplierName = name
	}
	return out, nil
}
