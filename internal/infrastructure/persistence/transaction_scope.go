package persistence

import (
	"context"

	"github.com/doorsets/backend/internal/application/transaction"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
	"gorm.io/gorm"
)

// GormTransactionScope implements transaction.Scope with GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction; repositories handed to fn share it
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos transaction.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Items() catalog.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) PickLists() production.PickListRepository {
	return NewGormPickListRepository(r.tx)
}

func (r *gormTransactionalRepositories) PurchaseOrders() purchasing.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

var (
	_ transaction.Scope        = (*GormTransactionScope)(nil)
	_ transaction.Repositories = (*gormTransactionalRepositories)(nil)
)
