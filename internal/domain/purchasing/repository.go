package purchasing

import (
	"context"

	"github.com/doorsets/backend/internal/domain/shared"
)

// PurchaseOrderRepository persists purchase orders with their lines
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uint) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, int64, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	Delete(ctx context.Context, id uint) error
	CountOpen(ctx context.Context) (int64, error)
}
