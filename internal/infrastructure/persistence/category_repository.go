package persistence

import (
	"context"
	"strings"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements catalog.CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uint) (*catalog.Category, error) {
	var m models.CategoryModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{}).
		Scopes(searchScope(filter.Search, "name", "description"))

	rows, total, err := listQuery[models.CategoryModel](query, filter, CategorySortFields)
	if err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Category, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// ExistsByName checks name uniqueness, case-insensitively, ignoring excludeID
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.CategoryModel{},
		"LOWER(name) = ? AND id <> ?", strings.ToLower(strings.TrimSpace(name)), excludeID)
}

// Save inserts or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	m := models.CategoryModelFromDomain(c)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	c.ID, c.CreatedAt, c.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

// Delete removes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(r.db.WithContext(ctx), &models.CategoryModel{}, id)
}

// IsReferenced reports whether items or assemblies use the category
func (r *GormCategoryRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	db := r.db.WithContext(ctx)
	if used, err := exists(db, &models.ItemModel{}, "category_id = ?", id); err != nil || used {
		return used, err
	}
	return exists(db, &models.AssemblyModel{}, "category_id = ?", id)
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
