package persistence

import (
	"context"
	"strings"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAssemblyRepository implements catalog.AssemblyRepository
type GormAssemblyRepository struct {
	db *gorm.DB
}

// NewGormAssemblyRepository creates a new GormAssemblyRepository
func NewGormAssemblyRepository(db *gorm.DB) *GormAssemblyRepository {
	return &GormAssemblyRepository{db: db}
}

// FindByID loads an assembly with its components
func (r *GormAssemblyRepository) FindByID(ctx context.Context, id uint) (*catalog.Assembly, error) {
	var m models.AssemblyModel
	if err := r.db.WithContext(ctx).Preload("Components", orderByID).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists assemblies with components. Filters: category_id.
func (r *GormAssemblyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Assembly, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AssemblyModel{}).
		Scopes(searchScope(filter.Search, "code", "name", "description"))
	if v, ok := filter.Filters["category_id"]; ok {
		query = query.Where("category_id = ?", v)
	}

	rows, total, err := listQuery[models.AssemblyModel](query, filter, AssemblySortFields, "Components")
	if err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Assembly, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// ExistsByCode checks code uniqueness ignoring excludeID
func (r *GormAssemblyRepository) ExistsByCode(ctx context.Context, code string, excludeID uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.AssemblyModel{},
		"code = ? AND id <> ?", strings.ToUpper(strings.TrimSpace(code)), excludeID)
}

// Save writes the header and replaces the component set
func (r *GormAssemblyRepository) Save(ctx context.Context, a *catalog.Assembly) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.AssemblyModelFromDomain(a)
		if err := tx.Omit("Components").Save(m).Error; err != nil {
			return err
		}
		a.ID, a.CreatedAt, a.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt

		keep := make([]uint, 0, len(a.Components))
		for _, c := range a.Components {
			if c.ID != 0 {
				keep = append(keep, c.ID)
			}
		}
		stale := tx.Where("assembly_id = ?", a.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.AssemblyComponentModel{}).Error; err != nil {
			return err
		}

		for i := range a.Components {
			c := &a.Components[i]
			row := &models.AssemblyComponentModel{ID: c.ID, AssemblyID: a.ID, ItemID: c.ItemID, Quantity: c.Quantity}
			if err := tx.Save(row).Error; err != nil {
				return err
			}
			c.ID, c.AssemblyID = row.ID, a.ID
		}
		return nil
	})
}

// Delete removes an assembly and its components
func (r *GormAssemblyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assembly_id = ?", id).Delete(&models.AssemblyComponentModel{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.AssemblyModel{}, id)
	})
}

var _ catalog.AssemblyRepository = (*GormAssemblyRepository)(nil)
