package partner

import (
	"context"

	"github.com/doorsets/backend/internal/domain/shared"
)

// CustomerRepository persists customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uint) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, int64, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uint) error
	IsReferenced(ctx context.Context, id uint) (bool, error)
}

// SupplierRepository persists suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uint) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, int64, error)
	Save(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uint) error
	IsReferenced(ctx context.Context, id uint) (bool, error)
}
