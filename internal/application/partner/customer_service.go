package partner

import (
	"context"
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/export"
)

// CustomerService handles customer business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	support      common.Support
	now          func() time.Time
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, support common.Support) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, support: support, now: time.Now}
}

// GetAll returns a page of customers matching the search over name, contact and email
func (s *CustomerService) GetAll(ctx context.Context, q common.ListQuery) (shared.Paginated[CustomerResponse], error) {
	filter := q.Filter()
	return common.CachedList(ctx, s.support, partner.AggregateTypeCustomer, filter, func() (shared.Paginated[CustomerResponse], error) {
		customers, total, err := s.customerRepo.FindAll(ctx, filter)
		if err != nil {
			return shared.Paginated[CustomerResponse]{}, err
		}
		out := make([]CustomerResponse, len(customers))
		for i := range customers {
			out[i] = ToCustomerResponse(&customers[i])
		}
		return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
	})
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uint) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.contact())
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, partner.AggregateTypeCustomer, customer.ID, shared.ActionCreated)

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, id uint, req CustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Update(req.contact()); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, partner.AggregateTypeCustomer, customer.ID, shared.ActionUpdated)

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Delete removes a customer without pick lists
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		return err
	}
	used, err := s.customerRepo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return common.InUse("Customer has pick lists")
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.support.Changed(ctx, partner.AggregateTypeCustomer, id, shared.ActionDeleted)
	return nil
}

// Export renders the matching customers as a spreadsheet
func (s *CustomerService) Export(ctx context.Context, q common.ListQuery, format export.Format) (*common.ExportFile, error) {
	customers, _, err := s.customerRepo.FindAll(ctx, common.Unpaged(q.Filter()))
	if err != nil {
		return nil, err
	}
	table := export.Table{Title: "Customers", Columns: contactColumns()}
	for _, c := range customers {
		table.AddRow(contactRow(c.ID, c.Contact)...)
	}
	return common.RenderExport(table, format, "customers", s.now())
}

func contactColumns(extra ...export.Column) []export.Column {
	cols := []export.Column{
		{Header: "ID"},
		{Header: "Name", Width: 30},
		{Header: "Contact", Width: 24},
		{Header: "Email", Width: 28},
		{Header: "Phone", Width: 16},
		{Header: "Address", Width: 40},
	}
	return append(cols, extra...)
}

func contactRow(id uint, c partner.Contact, extra ...any) []any {
	row := []any{id, c.Name, c.ContactName, c.Email, c.Phone, c.Address}
	return append(row, extra...)
}
