package models

import (
	"time"

	"github.com/doorsets/backend/internal/domain/shared"
)

// BaseModel provides the auto-increment key and timestamps shared by all tables
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the aggregate version column
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot copies identity, timestamps and version
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToDomainAggregateRoot rebuilds the aggregate base from the row
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}

// All returns every model in dependency order, for AutoMigrate in tests and tools
func All() []any {
	return []any{
		&UserModel{},
		&CategoryModel{},
		&SupplierModel{},
		&CustomerModel{},
		&ItemModel{},
		&StockMovementModel{},
		&AssemblyModel{},
		&AssemblyComponentModel{},
		&PickListModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderLineModel{},
		&PickListLineModel{},
	}
}
