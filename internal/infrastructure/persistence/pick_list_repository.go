package persistence

import (
	"context"

	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPickListRepository implements production.PickListRepository
type GormPickListRepository struct {
	db *gorm.DB
}

// NewGormPickListRepository creates a new GormPickListRepository
func NewGormPickListRepository(db *gorm.DB) *GormPickListRepository {
	return &GormPickListRepository{db: db}
}

// FindByID loads a pick list with its lines in insertion order
func (r *GormPickListRepository) FindByID(ctx context.Context, id uint) (*production.PickList, error) {
	var m models.PickListModel
	if err := r.db.WithContext(ctx).Preload("Lines", orderByID).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists pick lists with lines. Filters: customer_id, status, statuses.
func (r *GormPickListRepository) FindAll(ctx context.Context, filter shared.Filter) ([]production.PickList, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PickListModel{}).
		Scopes(searchScope(filter.Search, "number", "title", "order_reference"))
	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		}
	}

	rows, total, err := listQuery[models.PickListModel](query, filter, PickListSortFields, "Lines")
	if err != nil {
		return nil, 0, err
	}
	return toPickLists(rows), total, nil
}

// FindByPurchaseOrder returns pick lists with at least one line linked to the order
func (r *GormPickListRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uint) ([]production.PickList, error) {
	db := r.db.WithContext(ctx)
	linked := db.Model(&models.PickListLineModel{}).Select("pick_list_id").Where("purchase_order_id = ?", purchaseOrderID)

	var rows []models.PickListModel
	if err := db.Preload("Lines", orderByID).Where("id IN (?)", linked).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPickLists(rows), nil
}

// Save writes the header, assigns the number on first insert and syncs lines
func (r *GormPickListRepository) Save(ctx context.Context, p *production.PickList) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.PickListModelFromDomain(p)
		if err := tx.Omit("Lines").Save(m).Error; err != nil {
			return err
		}
		p.ID, p.CreatedAt, p.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt

		if p.Number == "" {
			p.AssignNumber()
			if err := tx.Model(&models.PickListModel{}).Where("id = ?", p.ID).
				Update("number", p.Number).Error; err != nil {
				return err
			}
		}

		keep := make([]uint, 0, len(p.Lines))
		for _, l := range p.Lines {
			if l.ID != 0 {
				keep = append(keep, l.ID)
			}
		}
		stale := tx.Where("pick_list_id = ?", p.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.PickListLineModel{}).Error; err != nil {
			return err
		}

		for i := range p.Lines {
			row := models.PickListLineModelFromDomain(p.ID, p.Lines[i])
			if err := tx.Save(row).Error; err != nil {
				return err
			}
			p.Lines[i].ID, p.Lines[i].PickListID = row.ID, p.ID
		}
		return nil
	})
}

// Delete removes a pick list and its lines
func (r *GormPickListRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PurchaseOrderModel{}).Where("pick_list_id = ?", id).
			Update("pick_list_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("pick_list_id = ?", id).Delete(&models.PickListLineModel{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.PickListModel{}, id)
	})
}

// CountOpen counts pick lists that are open or in production
func (r *GormPickListRepository) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PickListModel{}).
		Where("status IN ?", []string{string(production.PickListStatusOpen), string(production.PickListStatusInProduction)}).
		Count(&n).Error
	return n, err
}

func toPickLists(rows []models.PickListModel) []production.PickList {
	out := make([]production.PickList, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ production.PickListRepository = (*GormPickListRepository)(nil)
