package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/export"
	"github.com/doorsets/backend/internal/infrastructure/importer"
	"go.uber.org/zap"
)

// OpeningStockReference marks the ledger entry written when an item is created with stock
const OpeningStockReference = "opening"

// maxImportErrors caps the row errors returned by an import
const maxImportErrors = 200

// ItemService handles inventory items and their stock ledger
type ItemService struct {
	itemRepo     catalog.ItemRepository
	movementRepo catalog.MovementRepository
	categoryRepo catalog.CategoryRepository
	supplierRepo partner.SupplierRepository
	support      common.Support
	now          func() time.Time
}

// NewItemService creates a new ItemService
func NewItemService(
	itemRepo catalog.ItemRepository,
	movementRepo catalog.MovementRepository,
	categoryRepo catalog.CategoryRepository,
	supplierRepo partner.SupplierRepository,
	support common.Support,
) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		support:      support,
		now:          time.Now,
	}
}

// GetAll returns a page of items
func (s *ItemService) GetAll(ctx context.Context, q ItemListQuery) (shared.Paginated[ItemResponse], error) {
	filter := q.Filter()
	return common.CachedList(ctx, s.support, catalog.AggregateTypeItem, filter, func() (shared.Paginated[ItemResponse], error) {
		items, total, err := s.itemRepo.FindAll(ctx, filter)
		if err != nil {
			return shared.Paginated[ItemResponse]{}, err
		}
		out := make([]ItemResponse, len(items))
		for i := range items {
			out[i] = ToItemResponse(&items[i])
		}
		return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
	})
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, id uint) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Create creates an item. Opening stock is written to the ledger.
func (s *ItemService) Create(ctx context.Context, req ItemRequest) (*ItemResponse, error) {
	if err := s.ensureUniqueCode(ctx, req.Code, 0); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.SupplierID); err != nil {
		return nil, err
	}

	item, err := catalog.NewItem(req.Code, req.details(), req.Quantity)
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.itemRepo.SaveWithMovement(ctx, item, openingMovement(item.Quantity, catalog.MovementAdjustment, OpeningStockReference)); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, catalog.AggregateTypeItem, item.ID, shared.ActionCreated)

	resp := ToItemResponse(item)
	return &resp, nil
}

// Update replaces an item's editable fields, including its code
func (s *ItemService) Update(ctx context.Context, id uint, req ItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueCode(ctx, req.Code, id); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.SupplierID); err != nil {
		return nil, err
	}

	if err := item.ChangeCode(req.Code); err != nil {
		return nil, err
	}
	if err := item.Update(req.details()); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		item.SetActive(*req.IsActive)
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, catalog.AggregateTypeItem, item.ID, shared.ActionUpdated)

	resp := ToItemResponse(item)
	return &resp, nil
}

// Delete removes an item that no assembly, pick list or purchase order uses
func (s *ItemService) Delete(ctx context.Context, id uint) error {
	if _, err := s.itemRepo.FindByID(ctx, id); err != nil {
		return err
	}
	used, err := s.itemRepo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return common.InUse("Item is used by an assembly, pick list or purchase order")
	}
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.support.Changed(ctx, catalog.AggregateTypeItem, id, shared.ActionDeleted)
	return nil
}

// AdjustStock sets stock on hand to a counted quantity and records the difference
func (s *ItemService) AdjustStock(ctx context.Context, id uint, req AdjustStockRequest) (*ItemResponse, error) {
	if req.Quantity == nil {
		return nil, shared.InvalidInputf("quantity is required")
	}
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reference := req.Note
	if reference == "" {
		reference = "stocktake"
	}
	mv, err := item.AdjustStock(*req.Quantity, catalog.MovementAdjustment, reference)
	if err != nil {
		return nil, err
	}
	if mv != nil {
		if err := s.itemRepo.SaveWithMovement(ctx, item, mv); err != nil {
			return nil, err
		}
		s.support.Publish(ctx, item.PullDomainEvents()...)
	}

	resp := ToItemResponse(item)
	return &resp, nil
}

// Movements returns a page of an item's stock ledger
func (s *ItemService) Movements(ctx context.Context, id uint, q MovementListQuery) (shared.Paginated[MovementResponse], error) {
	if _, err := s.itemRepo.FindByID(ctx, id); err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	filter := q.Filter()
	rows, total, err := s.movementRepo.FindByItem(ctx, id, filter)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	out := make([]MovementResponse, len(rows))
	for i := range rows {
		out[i] = ToMovementResponse(rows[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// Export renders every item matching the query as a spreadsheet
func (s *ItemService) Export(ctx context.Context, q ItemListQuery, format export.Format) (*common.ExportFile, error) {
	items, _, err := s.itemRepo.FindAll(ctx, common.Unpaged(q.Filter()))
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title: "Items",
		Columns: []export.Column{
			{Header: "Code", Width: 16},
			{Header: "Name", Width: 32},
			{Header: "Description", Width: 40},
			{Header: "Category ID"},
			{Header: "Supplier ID"},
			{Header: "Unit"},
			{Header: "Unit Cost", Width: 12},
			{Header: "Quantity"},
			{Header: "Reorder Level", Width: 14},
			{Header: "Low Stock"},
			{Header: "Stock Value", Width: 14},
			{Header: "Location", Width: 16},
			{Header: "Active"},
		},
	}
	for i := range items {
		it := &items[i]
		table.AddRow(it.Code, it.Name, it.Description, it.CategoryID, it.SupplierID, it.Unit,
			it.UnitCost, it.Quantity, it.ReorderLevel, it.IsLowStock(), it.StockValue(), it.Location, it.IsActive)
	}
	return common.RenderExport(table, format, "items", s.now())
}

// Import creates items from a CSV upload. Existing codes are skipped in
// insert mode and updated in upsert mode. Each row is saved on its own, so a
// failing row does not undo the rows before it.
func (s *ItemService) Import(ctx context.Context, r io.Reader, mode importer.Mode) (*ImportResult, error) {
	sheet, err := importer.ReadItems(r, maxImportErrors)
	if err != nil {
		return nil, importFileError(err)
	}

	result := &ImportResult{Total: sheet.Total}
	categories := make(map[uint]bool)
	suppliers := make(map[uint]bool)

	for _, row := range sheet.Rows {
		if !s.rowReferencesExist(ctx, row, categories, suppliers, sheet.Errors) {
			continue
		}

		existing, err := s.itemRepo.FindByCode(ctx, row.Code)
		switch {
		case err == nil && mode == importer.ModeInsert:
			result.Skipped++
			continue
		case err == nil:
			if rowErr := s.importUpdate(ctx, existing, row); rowErr != nil {
				s.rejectRow(sheet.Errors, row, rowErr)
				continue
			}
			result.Updated++
		case errors.Is(err, shared.ErrNotFound):
			if rowErr := s.importCreate(ctx, row); rowErr != nil {
				s.rejectRow(sheet.Errors, row, rowErr)
				continue
			}
			result.Created++
		default:
			return nil, err
		}
	}

	result.Errors = sheet.Errors.Errors()
	result.ErrorsTruncated = sheet.Errors.Truncated()

	s.support.Logger.Info("Item import finished",
		zap.String("mode", string(mode)),
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", sheet.Errors.Count()),
	)
	if result.Created > 0 || result.Updated > 0 {
		s.support.Changed(ctx, catalog.AggregateTypeItem, 0, shared.ActionUpdated)
	}
	return result, nil
}

func (s *ItemService) importCreate(ctx context.Context, row importer.ItemRow) error {
	opening := 0
	if row.Quantity != nil {
		opening = *row.Quantity
	}
	item, err := catalog.NewItem(row.Code, mergeRow(catalog.ItemDetails{}, row), opening)
	if err != nil {
		return err
	}
	return s.itemRepo.SaveWithMovement(ctx, item, openingMovement(opening, catalog.MovementImport, "import"))
}

func (s *ItemService) importUpdate(ctx context.Context, item *catalog.Item, row importer.ItemRow) error {
	if err := item.Update(mergeRow(item.Details(), row)); err != nil {
		return err
	}
	var mv *catalog.StockMovement
	if row.Quantity != nil {
		var err error
		if mv, err = item.AdjustStock(*row.Quantity, catalog.MovementImport, "import"); err != nil {
			return err
		}
	}
	return s.itemRepo.SaveWithMovement(ctx, item, mv)
}

func (s *ItemService) rowReferencesExist(ctx context.Context, row importer.ItemRow, categories, suppliers map[uint]bool, errs *importer.ErrorCollection) bool {
	ok := true
	if row.CategoryID != nil {
		id := *row.CategoryID
		found, seen := categories[id]
		if !seen {
			_, err := s.categoryRepo.FindByID(ctx, id)
			found = err == nil
			categories[id] = found
		}
		if !found {
			errs.Addf(row.Line, importer.ColCategoryID, importer.ErrCodeReferenceNotFound, "category %d does not exist", id)
			ok = false
		}
	}
	if row.SupplierID != nil {
		id := *row.SupplierID
		found, seen := suppliers[id]
		if !seen {
			_, err := s.supplierRepo.FindByID(ctx, id)
			found = err == nil
			suppliers[id] = found
		}
		if !found {
			errs.Addf(row.Line, importer.ColSupplierID, importer.ErrCodeReferenceNotFound, "supplier %d does not exist", id)
			ok = false
		}
	}
	return ok
}

func (s *ItemService) rejectRow(errs *importer.ErrorCollection, row importer.ItemRow, err error) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		s.support.Logger.Warn("Item import row failed", zap.Int("row", row.Line), zap.Error(err))
	}
	errs.Addf(row.Line, "", importer.ErrCodeRejected, "%s", err.Error())
}

func (s *ItemService) ensureUniqueCode(ctx context.Context, code string, excludeID uint) error {
	exists, err := s.itemRepo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return common.Conflict(fmt.Sprintf("Item code %s already exists", code))
	}
	return nil
}

func (s *ItemService) checkReferences(ctx context.Context, categoryID, supplierID *uint) error {
	if categoryID != nil && *categoryID != 0 {
		if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.InvalidInputf("categoryId %d does not exist", *categoryID)
			}
			return err
		}
	}
	if supplierID != nil && *supplierID != 0 {
		if _, err := s.supplierRepo.FindByID(ctx, *supplierID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.InvalidInputf("supplierId %d does not exist", *supplierID)
			}
			return err
		}
	}
	return nil
}

// openingMovement is the ledger entry for stock an item starts with, or nil
func openingMovement(qty int, reason catalog.MovementReason, reference string) *catalog.StockMovement {
	if qty <= 0 {
		return nil
	}
	return &catalog.StockMovement{Delta: qty, QuantityAfter: qty, Reason: reason, Reference: reference}
}

// mergeRow lays the cells present in row over d. Blank cells keep d's value.
func mergeRow(d catalog.ItemDetails, row importer.ItemRow) catalog.ItemDetails {
	d.Name = row.Name
	if row.Description != nil {
		d.Description = *row.Description
	}
	if row.CategoryID != nil {
		d.CategoryID = row.CategoryID
	}
	if row.SupplierID != nil {
		d.SupplierID = row.SupplierID
	}
	if row.Unit != nil {
		d.Unit = *row.Unit
	}
	if row.UnitCost != nil {
		d.UnitCost = *row.UnitCost
	}
	if row.ReorderLevel != nil {
		d.ReorderLevel = *row.ReorderLevel
	}
	if row.Location != nil {
		d.Location = *row.Location
	}
	return d
}

func importFileError(err error) error {
	var missing *importer.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return shared.InvalidInputf("CSV is missing required columns: %v", missing.Columns)
	case errors.Is(err, importer.ErrEmptyFile), errors.Is(err, importer.ErrNoDataRows),
		errors.Is(err, importer.ErrMissingHeader), errors.Is(err, importer.ErrInvalidEncoding):
		return shared.InvalidInputf("%s", err.Error())
	}
	return shared.InvalidInputf("could not read CSV: %v", err)
}
