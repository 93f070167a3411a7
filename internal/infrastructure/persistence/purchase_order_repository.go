package persistence

import (
	"context"

	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements purchasing.PurchaseOrderRepository
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID loads an order with its lines
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uint) (*purchasing.PurchaseOrder, error) {
	var m models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).Preload("Lines", orderByID).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists orders with lines. Filters: supplier_id, status, statuses, pick_list_id.
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Scopes(searchScope(filter.Search, "number", "notes"))
	for key, value := range filter.Filters {
		switch key {
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "pick_list_id":
			query = query.Where("pick_list_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		}
	}

	rows, total, err := listQuery[models.PurchaseOrderModel](query, filter, PurchaseOrderSortFields, "Lines")
	if err != nil {
		return nil, 0, err
	}
	out := make([]purchasing.PurchaseOrder, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save writes the header, assigns the number on first insert and syncs lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, o *purchasing.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.PurchaseOrderModelFromDomain(o)
		if err := tx.Omit("Lines").Save(m).Error; err != nil {
			return err
		}
		o.ID, o.CreatedAt, o.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt

		if o.Number == "" {
			o.AssignNumber()
			if err := tx.Model(&models.PurchaseOrderModel{}).Where("id = ?", o.ID).
				Update("number", o.Number).Error; err != nil {
				return err
			}
		}

		keep := make([]uint, 0, len(o.Lines))
		for _, l := range o.Lines {
			if l.ID != 0 {
				keep = append(keep, l.ID)
			}
		}
		stale := tx.Where("purchase_order_id = ?", o.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
			return err
		}

		for i := range o.Lines {
			row := models.PurchaseOrderLineModelFromDomain(o.ID, o.Lines[i])
			if err := tx.Save(row).Error; err != nil {
				return err
			}
			o.Lines[i].ID, o.Lines[i].PurchaseOrderID = row.ID, o.ID
		}
		return nil
	})
}

// Delete removes an order, its lines and any pick-list links to it
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PickListLineModel{}).Where("purchase_order_id = ?", id).
			Updates(map[string]any{"purchase_order_id": nil, "made_order": false}).Error; err != nil {
			return err
		}
		if err := tx.Where("purchase_order_id = ?", id).Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.PurchaseOrderModel{}, id)
	})
}

// CountOpen counts orders that are not yet received or cancelled
func (r *GormPurchaseOrderRepository) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("status IN ?", []string{
			string(purchasing.StatusDraft),
			string(purchasing.StatusOrdered),
			string(purchasing.StatusPartiallyReceived),
		}).
		Count(&n).Error
	return n, err
}

var _ purchasing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
