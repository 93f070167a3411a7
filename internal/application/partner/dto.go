package partner

import (
	"time"

	"github.com/doorsets/backend/internal/domain/partner"
)

// =============================================================================
// Shared contact fields
// =============================================================================

// ContactRequest holds the fields customers and suppliers share
type ContactRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	ContactName string `json:"contactName" binding:"max=100"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Phone       string `json:"phone" binding:"max=50"`
	Address     string `json:"address" binding:"max=500"`
	Notes       string `json:"notes" binding:"max=2000"`
}

func (r ContactRequest) contact() partner.Contact {
	return partner.Contact{
		Name:        r.Name,
		ContactName: r.ContactName,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		Notes:       r.Notes,
	}
}

// ContactResponse is the shared part of partner responses
type ContactResponse struct {
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

func toContactResponse(c partner.Contact) ContactResponse {
	return ContactResponse{
		Name:        c.Name,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		Notes:       c.Notes,
	}
}

// =============================================================================
// Customer DTOs
// =============================================================================

// CustomerRequest creates or updates a customer
type CustomerRequest struct {
	ContactRequest
}

// CustomerResponse is a customer in API responses
type CustomerResponse struct {
	ID uint `json:"id"`
	ContactResponse
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToCustomerResponse converts a domain customer
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		ContactResponse: toContactResponse(c.Contact),
		Version:         c.Version,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// =============================================================================
// Supplier DTOs
// =============================================================================

// SupplierRequest creates or updates a supplier
type SupplierRequest struct {
	ContactRequest
	Website      string `json:"website" binding:"omitempty,max=200"`
	LeadTimeDays int    `json:"leadTimeDays" binding:"min=0,max=365"`
}

// SupplierResponse is a supplier in API responses
type SupplierResponse struct {
	ID uint `json:"id"`
	ContactResponse
	Website      string    `json:"website"`
	LeadTimeDays int       `json:"leadTimeDays"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToSupplierResponse converts a domain supplier
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:              s.ID,
		ContactResponse: toContactResponse(s.Contact),
		Website:         s.Website,
		LeadTimeDays:    s.LeadTimeDays,
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
