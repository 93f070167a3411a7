package models

import (
	"time"

	"github.com/doorsets/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for PurchaseOrder
type PurchaseOrderModel struct {
	AggregateModel
	Number       string `gorm:"type:varchar(20);index"`
	SupplierID   uint   `gorm:"not null;index"`
	PickListID   *uint  `gorm:"index"`
	Status       string `gorm:"type:varchar(20);not null;default:'draft';index"`
	OrderDate    *time.Time
	ExpectedDate *time.Time
	Notes        string                   `gorm:"type:text"`
	Lines        []PurchaseOrderLineModel `gorm:"foreignKey:PurchaseOrderID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderLineModel is one ordered item
type PurchaseOrderLineModel struct {
	ID               uint            `gorm:"primaryKey;autoIncrement"`
	PurchaseOrderID  uint            `gorm:"not null;index"`
	ItemID           uint            `gorm:"not null;index"`
	Quantity         int             `gorm:"not null"`
	ReceivedQuantity int             `gorm:"not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// ToDomain converts the row and its lines to a PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *purchasing.PurchaseOrder {
	o := &purchasing.PurchaseOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		SupplierID:        m.SupplierID,
		PickListID:        m.PickListID,
		Status:            purchasing.Status(m.Status),
		OrderDate:         m.OrderDate,
		ExpectedDate:      m.ExpectedDate,
		Notes:             m.Notes,
		Lines:             make([]purchasing.Line, 0, len(m.Lines)),
	}
	for _, l := range m.Lines {
		o.Lines = append(o.Lines, purchasing.Line{
			ID:               l.ID,
			PurchaseOrderID:  l.PurchaseOrderID,
			ItemID:           l.ItemID,
			Quantity:         l.Quantity,
			ReceivedQuantity: l.ReceivedQuantity,
			UnitCost:         l.UnitCost,
		})
	}
	return o
}

// PurchaseOrderModelFromDomain builds the header row; lines are saved separately
func PurchaseOrderModelFromDomain(o *purchasing.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		Number:       o.Number,
		SupplierID:   o.SupplierID,
		PickListID:   o.PickListID,
		Status:       string(o.Status),
		OrderDate:    o.OrderDate,
		ExpectedDate: o.ExpectedDate,
		Notes:        o.Notes,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// PurchaseOrderLineModelFromDomain builds a line row
func PurchaseOrderLineModelFromDomain(orderID uint, l purchasing.Line) *PurchaseOrderLineModel {
	return &PurchaseOrderLineModel{
		ID:               l.ID,
		PurchaseOrderID:  orderID,
		ItemID:           l.ItemID,
		Quantity:         l.Quantity,
		ReceivedQuantity: l.ReceivedQuantity,
		UnitCost:         l.UnitCost,
	}
}
