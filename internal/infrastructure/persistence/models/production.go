package models

import (
	"time"

	"github.com/doorsets/backend/internal/domain/production"
)

// PickListModel is the persistence model for PickList
type PickListModel struct {
	AggregateModel
	Number         string `gorm:"type:varchar(20);index"`
	CustomerID     uint   `gorm:"not null;index"`
	OrderReference string `gorm:"type:varchar(100)"`
	Title          string `gorm:"type:varchar(200);not null"`
	DueDate        *time.Time
	Status         string `gorm:"type:varchar(20);not null;default:'open';index"`
	Notes          string `gorm:"type:text"`
	CompletedAt    *time.Time
	Lines          []PickListLineModel `gorm:"foreignKey:PickListID"`
}

// TableName returns the table name for GORM
func (PickListModel) TableName() string {
	return "pick_lists"
}

// PickListLineModel is one requested item on a pick list
type PickListLineModel struct {
	ID              uint  `gorm:"primaryKey;autoIncrement"`
	PickListID      uint  `gorm:"not null;index"`
	ItemID          uint  `gorm:"not null;index"`
	AssemblyID      *uint `gorm:"index"`
	Quantity        int   `gorm:"not null"`
	PurchaseOrderID *uint `gorm:"index"`
	MadeOrder       bool  `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PickListLineModel) TableName() string {
	return "pick_list_lines"
}

// ToDomain converts the row and its lines to a PickList
func (m *PickListModel) ToDomain() *production.PickList {
	p := &production.PickList{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		CustomerID:        m.CustomerID,
		OrderReference:    m.OrderReference,
		Title:             m.Title,
		DueDate:           m.DueDate,
		Status:            production.PickListStatus(m.Status),
		Notes:             m.Notes,
		CompletedAt:       m.CompletedAt,
		Lines:             make([]production.PickListLine, 0, len(m.Lines)),
	}
	for _, l := range m.Lines {
		p.Lines = append(p.Lines, production.PickListLine{
			ID:              l.ID,
			PickListID:      l.PickListID,
			ItemID:          l.ItemID,
			AssemblyID:      l.AssemblyID,
			Quantity:        l.Quantity,
			PurchaseOrderID: l.PurchaseOrderID,
			MadeOrder:       l.MadeOrder,
		})
	}
	return p
}

// PickListModelFromDomain builds the header row; lines are saved separately
func PickListModelFromDomain(p *production.PickList) *PickListModel {
	m := &PickListModel{
		Number:         p.Number,
		CustomerID:     p.CustomerID,
		OrderReference: p.OrderReference,
		Title:          p.Title,
		DueDate:        p.DueDate,
		Status:         string(p.Status),
		Notes:          p.Notes,
		CompletedAt:    p.CompletedAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// PickListLineModelFromDomain builds a line row
func PickListLineModelFromDomain(pickListID uint, l production.PickListLine) *PickListLineModel {
	return &PickListLineModel{
		ID:              l.ID,
		PickListID:      pickListID,
		ItemID:          l.ItemID,
		AssemblyID:      l.AssemblyID,
		Quantity:        l.Quantity,
		PurchaseOrderID: l.PurchaseOrderID,
		MadeOrder:       l.MadeOrder,
	}
}
