package partner

import (
	"context"
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/export"
)

// SupplierService handles supplier business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	support      common.Support
	now          func() time.Time
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, support common.Support) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo, support: support, now: time.Now}
}

// GetAll returns a page of suppliers
func (s *SupplierService) GetAll(ctx context.Context, q common.ListQuery) (shared.Paginated[SupplierResponse], error) {
	filter := q.Filter()
	return common.CachedList(ctx, s.support, partner.AggregateTypeSupplier, filter, func() (shared.Paginated[SupplierResponse], error) {
		suppliers, total, err := s.supplierRepo.FindAll(ctx, filter)
		if err != nil {
			return shared.Paginated[SupplierResponse]{}, err
		}
		out := make([]SupplierResponse, len(suppliers))
		for i := range suppliers {
			out[i] = ToSupplierResponse(&suppliers[i])
		}
		return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
	})
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uint) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.contact(), req.Website, req.LeadTimeDays)
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, partner.AggregateTypeSupplier, supplier.ID, shared.ActionCreated)

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Update updates a supplier
func (s *SupplierService) Update(ctx context.Context, id uint, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(req.contact(), req.Website, req.LeadTimeDays); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, partner.AggregateTypeSupplier, supplier.ID, shared.ActionUpdated)

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete removes a supplier no purchase order uses
func (s *SupplierService) Delete(ctx context.Context, id uint) error {
	if _, err := s.supplierRepo.FindByID(ctx, id); err != nil {
		return err
	}
	used, err := s.supplierRepo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return common.InUse("Supplier has purchase orders")
	}
	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return err
	}
	// Items that named the supplier lose it, so cached item lists are stale too.
	s.support.Changed(ctx, partner.AggregateTypeSupplier, id, shared.ActionDeleted,
		shared.NewEntityChangedEvent(catalog.AggregateTypeItem, 0, shared.ActionUpdated))
	return nil
}

// Export renders the matching suppliers as a spreadsheet
func (s *SupplierService) Export(ctx context.Context, q common.ListQuery, format export.Format) (*common.ExportFile, error) {
	suppliers, _, err := s.supplierRepo.FindAll(ctx, common.Unpaged(q.Filter()))
	if err != nil {
		return nil, err
	}
	table := export.Table{
		Title:   "Suppliers",
		Columns: contactColumns(export.Column{Header: "Website", Width: 28}, export.Column{Header: "Lead Time (days)", Width: 16}),
	}
	for _, sup := range suppliers {
		table.AddRow(contactRow(sup.ID, sup.Contact, sup.Website, sup.LeadTimeDays)...)
	}
	return common.RenderExport(table, format, "suppliers", s.now())
}
