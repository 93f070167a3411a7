package partner

import (
	"strings"

	"github.com/doorsets/backend/internal/domain/shared"
)

// Contact holds the fields customers and suppliers share
type Contact struct {
	Name        string
	ContactName string
	Email       string
	Phone       string
	Address     string
	Notes       string
}

func (c Contact) normalized() Contact {
	c.Name = strings.TrimSpace(c.Name)
	c.ContactName = strings.TrimSpace(c.ContactName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	return c
}

func (c Contact) validate() error {
	if err := shared.RequireText("name", c.Name, 200); err != nil {
		return err
	}
	if err := shared.MaxLength("contactName", c.ContactName, 100); err != nil {
		return err
	}
	if err := shared.OptionalEmail("email", c.Email); err != nil {
		return err
	}
	if err := shared.MaxLength("phone", c.Phone, 50); err != nil {
		return err
	}
	return shared.MaxLength("address", c.Address, 500)
}
