// Package transaction lets application services change several aggregates
// (item stock, pick lists, purchase orders) atomically.
package transaction

import (
	"context"

	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/production"
	"github.com/doorsets/backend/internal/domain/purchasing"
)

// Scope runs fn inside one database transaction. Returning an error rolls
// back every repository write made through repos.
type Scope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories exposes repositories bound to the current transaction
type Repositories interface {
	Items() catalog.ItemRepository
	PickLists() production.PickListRepository
	PurchaseOrders() purchasing.PurchaseOrderRepository
}

// NoOpScope runs fn directly against the given repositories. Used in unit
// tests with in-memory fakes.
type NoOpScope struct {
	items          catalog.ItemRepository
	pickLists      production.PickListRepository
	purchaseOrders purchasing.PurchaseOrderRepository
}

// NewNoOpScope creates a NoOpScope
func NewNoOpScope(items catalog.ItemRepository, pickLists production.PickListRepository, orders purchasing.PurchaseOrderRepository) *NoOpScope {
	return &NoOpScope{items: items, pickLists: pickLists, purchaseOrders: orders}
}

// Execute runs fn without a transaction
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Items returns the item repository
func (s *NoOpScope) Items() catalog.ItemRepository { return s.items }

// PickLists returns the pick list repository
func (s *NoOpScope) PickLists() production.PickListRepository { return s.pickLists }

// PurchaseOrders returns the purchase order repository
func (s *NoOpScope) PurchaseOrders() purchasing.PurchaseOrderRepository { return s.purchaseOrders }

var (
	_ Scope        = (*NoOpScope)(nil)
	_ Repositories = (*NoOpScope)(nil)
)
