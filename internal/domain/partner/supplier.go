package partner

import "github.com/doorsets/backend/internal/domain/shared"

// AggregateTypeSupplier names the supplier aggregate
const AggregateTypeSupplier = "Supplier"

// Supplier provides inventory items through purchase orders
type Supplier struct {
	shared.BaseAggregateRoot
	Contact
	Website      string
	LeadTimeDays int
}

// NewSupplier creates a supplier
func NewSupplier(contact Contact, website string, leadTimeDays int) (*Supplier, error) {
	s := &Supplier{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := s.Update(contact, website, leadTimeDays); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the supplier's fields
func (s *Supplier) Update(contact Contact, website string, leadTimeDays int) error {
	contact = contact.normalized()
	if err := contact.validate(); err != nil {
		return err
	}
	if err := shared.MaxLength("website", website, 200); err != nil {
		return err
	}
	if err := shared.RequireNonNegative("leadTimeDays", leadTimeDays); err != nil {
		return err
	}
	s.Contact = contact
	s.Website = website
	s.LeadTimeDays = leadTimeDays
	if !s.IsNew() {
		s.IncrementVersion()
	}
	return nil
}
