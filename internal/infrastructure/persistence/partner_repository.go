package persistence

import (
	"context"

	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var partnerSearchColumns = []string{"name", "contact_name", "email", "phone"}

// GormCustomerRepository implements partner.CustomerRepository
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uint) (*partner.Customer, error) {
	var m models.CustomerModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Scopes(searchScope(filter.Search, partnerSearchColumns...))
	rows, total, err := listQuery[models.CustomerModel](query, filter, PartnerSortFields)
	if err != nil {
		return nil, 0, err
	}
	out := make([]partner.Customer, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save inserts or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	m := models.CustomerModelFromDomain(c)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	c.ID, c.CreatedAt, c.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

// Delete removes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(r.db.WithContext(ctx), &models.CustomerModel{}, id)
}

// IsReferenced reports whether a pick list belongs to the customer
func (r *GormCustomerRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.PickListModel{}, "customer_id = ?", id)
}

// GormSupplierRepository implements partner.SupplierRepository
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uint) (*partner.Supplier, error) {
	var m models.SupplierModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierModel{}).
		Scopes(searchScope(filter.Search, partnerSearchColumns...))
	rows, total, err := listQuery[models.SupplierModel](query, filter, PartnerSortFields)
	if err != nil {
		return nil, 0, err
	}
	out := make([]partner.Supplier, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save inserts or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, s *partner.Supplier) error {
	m := models.SupplierModelFromDomain(s)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	s.ID, s.CreatedAt, s.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

// Delete removes a supplier and clears it as the preferred supplier of items
func (r *GormSupplierRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ItemModel{}).Where("supplier_id = ?", id).
			Update("supplier_id", nil).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.SupplierModel{}, id)
	})
}

// IsReferenced reports whether a purchase order belongs to the supplier
func (r *GormSupplierRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.PurchaseOrderModel{}, "supplier_id = ?", id)
}

var (
	_ partner.CustomerRepository = (*GormCustomerRepository)(nil)
	_ partner.SupplierRepository = (*GormSupplierRepository)(nil)
)
