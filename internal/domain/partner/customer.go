package partner

import "github.com/doorsets/backend/internal/domain/shared"

// AggregateTypeCustomer names the customer aggregate
const AggregateTypeCustomer = "Customer"

// Customer is a party that places orders fulfilled through pick lists
type Customer struct {
	shared.BaseAggregateRoot
	Contact
}

// NewCustomer creates a customer
func NewCustomer(contact Contact) (*Customer, error) {
	c := &Customer{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.Update(contact); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the customer's fields
func (c *Customer) Update(contact Contact) error {
	contact = contact.normalized()
	if err := contact.validate(); err != nil {
		return err
	}
	c.Contact = contact
	if !c.IsNew() {
		c.IncrementVersion()
	}
	return nil
}
