package catalog

import (
	"context"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CategoryRepository persists categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uint) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, int64, error)
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uint) error
	IsReferenced(ctx context.Context, id uint) (bool, error)
}

// ItemRepository persists inventory items
type ItemRepository interface {
	FindByID(ctx context.Context, id uint) (*Item, error)
	FindByCode(ctx context.Context, code string) (*Item, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Item, error)
	// FindAll returns a page of items. A zero PageSize returns every match.
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, int64, error)
	FindLowStock(ctx context.Context) ([]Item, error)
	ExistsByCode(ctx context.Context, code string, excludeID uint) (bool, error)
	Save(ctx context.Context, item *Item) error
	// SaveWithMovement persists a stock change and its ledger entry together
	SaveWithMovement(ctx context.Context, item *Item, movement *StockMovement) error
	Delete(ctx context.Context, id uint) error
	IsReferenced(ctx context.Context, id uint) (bool, error)
	StockLevels(ctx context.Context, ids []uint) (map[uint]int, error)
	Summary(ctx context.Context) (InventorySummary, error)
}

// MovementRepository reads the stock ledger
type MovementRepository interface {
	FindByItem(ctx context.Context, itemID uint, filter shared.Filter) ([]StockMovement, int64, error)
}

// AssemblyRepository persists assemblies with their components
type AssemblyRepository interface {
	FindByID(ctx context.Context, id uint) (*Assembly, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Assembly, int64, error)
	ExistsByCode(ctx context.Context, code string, excludeID uint) (bool, error)
	Save(ctx context.Context, assembly *Assembly) error
	Delete(ctx context.Context, id uint) error
}

// InventorySummary aggregates stock figures across all active items
type InventorySummary struct {
	ItemCount     int64
	LowStockCount int64
	TotalValue    decimal.Decimal
}
