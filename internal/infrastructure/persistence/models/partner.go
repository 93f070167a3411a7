package models

import (
	"github.com/doorsets/backend/internal/domain/partner"
)

// ContactColumns are shared by customers and suppliers
type ContactColumns struct {
	Name        string `gorm:"type:varchar(200);not null;index"`
	ContactName string `gorm:"type:varchar(100)"`
	Email       string `gorm:"type:varchar(200)"`
	Phone       string `gorm:"type:varchar(50)"`
	Address     string `gorm:"type:varchar(500)"`
	Notes       string `gorm:"type:text"`
}

func contactColumns(c partner.Contact) ContactColumns {
	return ContactColumns{
		Name:        c.Name,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		Notes:       c.Notes,
	}
}

func (c ContactColumns) toDomain() partner.Contact {
	return partner.Contact{
		Name:        c.Name,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		Notes:       c.Notes,
	}
}

// CustomerModel is the persistence model for Customer
type CustomerModel struct {
	AggregateModel
	ContactColumns `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the row to a Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Contact:           m.ContactColumns.toDomain(),
	}
}

// CustomerModelFromDomain builds a row from a Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{ContactColumns: contactColumns(c.Contact)}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// SupplierModel is the persistence model for Supplier
type SupplierModel struct {
	AggregateModel
	ContactColumns `gorm:"embedded"`
	Website        string `gorm:"type:varchar(200)"`
	LeadTimeDays   int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the row to a Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Contact:           m.ContactColumns.toDomain(),
		Website:           m.Website,
		LeadTimeDays:      m.LeadTimeDays,
	}
}

// SupplierModelFromDomain builds a row from a Supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		ContactColumns: contactColumns(s.Contact),
		Website:        s.Website,
		LeadTimeDays:   s.LeadTimeDays,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}
