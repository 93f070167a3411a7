package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormItemRepository implements catalog.ItemRepository and catalog.MovementRepository
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uint) (*catalog.Item, error) {
	var m models.ItemModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindByCode finds an item by its (upper-cased) code
func (r *GormItemRepository) FindByCode(ctx context.Context, code string) (*catalog.Item, error) {
	var m models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads the given items; missing IDs are simply absent from the result
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uint) ([]catalog.Item, error) {
	if len(ids) == 0 {
		return []catalog.Item{}, nil
	}
	var rows []models.ItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

// FindAll lists items. Filters: category_id, supplier_id, is_active, low_stock.
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ItemModel{}).
		Scopes(searchScope(filter.Search, "code", "name", "description", "location"))

	for key, value := range filter.Filters {
		switch key {
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "low_stock":
			if low, ok := value.(bool); ok {
				if low {
					query = query.Where("quantity <= reorder_level")
				} else {
					query = query.Where("quantity > reorder_level")
				}
			}
		}
	}

	rows, total, err := listQuery[models.ItemModel](query, filter, ItemSortFields)
	if err != nil {
		return nil, 0, err
	}
	return toItems(rows), total, nil
}

// FindLowStock returns active items at or below their reorder level, most urgent first
func (r *GormItemRepository) FindLowStock(ctx context.Context) ([]catalog.Item, error) {
	var rows []models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND quantity <= reorder_level", true).
		Order("quantity - reorder_level ASC").Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

// ExistsByCode checks code uniqueness ignoring excludeID
func (r *GormItemRepository) ExistsByCode(ctx context.Context, code string, excludeID uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.ItemModel{},
		"code = ? AND id <> ?", strings.ToUpper(strings.TrimSpace(code)), excludeID)
}

// Save inserts an item with its opening quantity, or updates the editable
// fields of an existing one. Quantity of an existing row is left alone; it
// only changes through SaveWithMovement.
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	db := r.db.WithContext(ctx)
	if item.IsNew() {
		return r.insert(db, item)
	}
	m := models.ItemModelFromDomain(item)
	m.UpdatedAt = time.Now()
	res := db.Model(&models.ItemModel{}).
		Where("id = ?", item.ID).
		Select("*").Omit("id", "created_at", "quantity").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	item.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *GormItemRepository) insert(db *gorm.DB, item *catalog.Item) error {
	m := models.ItemModelFromDomain(item)
	if err := db.Create(m).Error; err != nil {
		return err
	}
	item.ID, item.CreatedAt, item.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

// SaveWithMovement persists a stock change and its ledger row atomically.
// The update only applies if the stored quantity still equals the quantity
// before the movement, so concurrent stock changes fail with
// ErrConcurrencyConflict instead of overwriting each other.
func (r *GormItemRepository) SaveWithMovement(ctx context.Context, item *catalog.Item, mv *catalog.StockMovement) error {
	if mv == nil {
		return r.Save(ctx, item)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if item.IsNew() {
			if err := r.insert(tx, item); err != nil {
				return err
			}
		} else {
			m := models.ItemModelFromDomain(item)
			m.UpdatedAt = time.Now()
			res := tx.Model(&models.ItemModel{}).
				Where("id = ? AND quantity = ?", item.ID, item.Quantity-mv.Delta).
				Select("*").Omit("id", "created_at").
				Updates(m)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if ok, err := exists(tx, &models.ItemModel{}, "id = ?", item.ID); err != nil {
					return err
				} else if !ok {
					return shared.ErrNotFound
				}
				return shared.ErrConcurrencyConflict
			}
			item.UpdatedAt = m.UpdatedAt
		}

		mv.ItemID = item.ID
		if mv.CreatedAt.IsZero() {
			mv.CreatedAt = time.Now()
		}
		row := models.StockMovementModelFromDomain(mv)
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		mv.ID = row.ID
		return nil
	})
}

// Delete removes an item and its movement history
func (r *GormItemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.StockMovementModel{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.ItemModel{}, id)
	})
}

// IsReferenced reports whether an assembly, pick list or purchase order uses the item
func (r *GormItemRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	db := r.db.WithContext(ctx)
	for _, m := range []any{&models.AssemblyComponentModel{}, &models.PickListLineModel{}, &models.PurchaseOrderLineModel{}} {
		used, err := exists(db, m, "item_id = ?", id)
		if err != nil || used {
			return used, err
		}
	}
	return false, nil
}

// StockLevels returns current quantities keyed by item ID
func (r *GormItemRepository) StockLevels(ctx context.Context, ids []uint) (map[uint]int, error) {
	levels := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		return levels, nil
	}
	var rows []struct {
		ID       uint
		Quantity int
	}
	if err := r.db.WithContext(ctx).Model(&models.ItemModel{}).
		Select("id, quantity").Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		levels[row.ID] = row.Quantity
	}
	return levels, nil
}

// Summary aggregates inventory counts and value
func (r *GormItemRepository) Summary(ctx context.Context) (catalog.InventorySummary, error) {
	var row struct {
		ItemCount     int64
		LowStockCount int64
		TotalValue    decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.ItemModel{}).
		Select(`COUNT(*) AS item_count,
			COALESCE(SUM(CASE WHEN is_active = ? AND quantity <= reorder_level THEN 1 ELSE 0 END), 0) AS low_stock_count,
			COALESCE(SUM(quantity * unit_cost), 0) AS total_value`, true).
		Scan(&row).Error
	if err != nil {
		return catalog.InventorySummary{}, err
	}
	return catalog.InventorySummary{
		ItemCount:     row.ItemCount,
		LowStockCount: row.LowStockCount,
		TotalValue:    row.TotalValue,
	}, nil
}

// FindByItem lists the stock ledger of an item, newest first by default
func (r *GormItemRepository) FindByItem(ctx context.Context, itemID uint, filter shared.Filter) ([]catalog.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).Where("item_id = ?", itemID)
	if reason, ok := filter.Filters["reason"]; ok {
		query = query.Where("reason = ?", reason)
	}
	rows, total, err := listQuery[models.StockMovementModel](query, filter, MovementSortFields)
	if err != nil {
		return nil, 0, err
	}
	out := make([]catalog.StockMovement, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

func toItems(rows []models.ItemModel) []catalog.Item {
	out := make([]catalog.Item, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var (
	_ catalog.ItemRepository     = (*GormItemRepository)(nil)
	_ catalog.MovementRepository = (*GormItemRepository)(nil)
)
