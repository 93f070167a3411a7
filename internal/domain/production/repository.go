package production

import (
	"context"

	"github.com/doorsets/backend/internal/domain/shared"
)

// PickListRepository persists pick lists with their lines
type PickListRepository interface {
	FindByID(ctx context.Context, id uint) (*PickList, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PickList, int64, error)
	// FindByPurchaseOrder returns pick lists with a line linked to the order
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uint) ([]PickList, error)
	Save(ctx context.Context, pickList *PickList) error
	Delete(ctx context.Context, id uint) error
	CountOpen(ctx context.Context) (int64, error)
}
