package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/export"
)

// AssemblyService manages assemblies and their bills of materials
type AssemblyService struct {
	assemblyRepo catalog.AssemblyRepository
	itemRepo     catalog.ItemRepository
	categoryRepo catalog.CategoryRepository
	support      common.Support
	now          func() time.Time
}

// NewAssemblyService creates a new AssemblyService
func NewAssemblyService(
	assemblyRepo catalog.AssemblyRepository,
	itemRepo catalog.ItemRepository,
	categoryRepo catalog.CategoryRepository,
	support common.Support,
) *AssemblyService {
	return &AssemblyService{
		assemblyRepo: assemblyRepo,
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		support:      support,
		now:          time.Now,
	}
}

// GetAll returns a page of assemblies with component item names
func (s *AssemblyService) GetAll(ctx context.Context, q AssemblyListQuery) (shared.Paginated[AssemblyResponse], error) {
	filter := q.Filter()
	return common.CachedList(ctx, s.support, catalog.AggregateTypeAssembly, filter, func() (shared.Paginated[AssemblyResponse], error) {
		assemblies, total, err := s.assemblyRepo.FindAll(ctx, filter)
		if err != nil {
			return shared.Paginated[AssemblyResponse]{}, err
		}
		items, err := s.componentItems(ctx, assemblies...)
		if err != nil {
			return shared.Paginated[AssemblyResponse]{}, err
		}
		out := make([]AssemblyResponse, len(assemblies))
		for i := range assemblies {
			out[i] = ToAssemblyResponse(&assemblies[i], items)
		}
		return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
	})
}

// GetByID retrieves an assembly by ID
func (s *AssemblyService) GetByID(ctx context.Context, id uint) (*AssemblyResponse, error) {
	assembly, err := s.assemblyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, assembly)
}

// Create creates an assembly with its components
func (s *AssemblyService) Create(ctx context.Context, req AssemblyRequest) (*AssemblyResponse, error) {
	if err := s.ensureUniqueCode(ctx, req.Code, 0); err != nil {
		return nil, err
	}
	if err := s.validateReferences(ctx, req); err != nil {
		return nil, err
	}

	assembly, err := catalog.NewAssembly(req.Code, req.Name, req.Description, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := assembly.SetComponents(req.requirements()); err != nil {
		return nil, err
	}
	if err := s.assemblyRepo.Save(ctx, assembly); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, catalog.AggregateTypeAssembly, assembly.ID, shared.ActionCreated)
	return s.response(ctx, assembly)
}

// Update replaces the assembly header and its whole component list
func (s *AssemblyService) Update(ctx context.Context, id uint, req AssemblyRequest) (*AssemblyResponse, error) {
	assembly, err := s.assemblyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueCode(ctx, req.Code, id); err != nil {
		return nil, err
	}
	if err := s.validateReferences(ctx, req); err != nil {
		return nil, err
	}

	if err := assembly.ChangeCode(req.Code); err != nil {
		return nil, err
	}
	if err := assembly.Update(req.Name, req.Description, req.CategoryID); err != nil {
		return nil, err
	}
	// Keep component row IDs for items that stay in the assembly.
	previous := make(map[uint]uint, len(assembly.Components))
	for _, c := range assembly.Components {
		previous[c.ItemID] = c.ID
	}
	if err := assembly.SetComponents(req.requirements()); err != nil {
		return nil, err
	}
	for i := range assembly.Components {
		assembly.Components[i].ID = previous[assembly.Components[i].ItemID]
	}

	if err := s.assemblyRepo.Save(ctx, assembly); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, catalog.AggregateTypeAssembly, assembly.ID, shared.ActionUpdated)
	return s.response(ctx, assembly)
}

// Delete removes an assembly. Pick list lines expanded from it keep their items.
func (s *AssemblyService) Delete(ctx context.Context, id uint) error {
	if _, err := s.assemblyRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.assemblyRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.support.Changed(ctx, catalog.AggregateTypeAssembly, id, shared.ActionDeleted)
	return nil
}

// Expand lists the items needed to build units assemblies against stock on hand
func (s *AssemblyService) Expand(ctx context.Context, id uint, req ExpandRequest) (*ExpandResponse, error) {
	assembly, err := s.assemblyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reqs, err := assembly.Expand(req.Units)
	if err != nil {
		return nil, err
	}
	items, err := s.componentItems(ctx, *assembly)
	if err != nil {
		return nil, err
	}

	resp := &ExpandResponse{AssemblyID: assembly.ID, Units: req.Units, Requirements: make([]RequirementResponse, len(reqs))}
	for i, r := range reqs {
		item := items[r.ItemID]
		shortfall := r.Quantity - item.Quantity
		if shortfall < 0 {
			shortfall = 0
		}
		resp.Requirements[i] = RequirementResponse{
			ItemID:    r.ItemID,
			ItemCode:  item.Code,
			ItemName:  item.Name,
			Quantity:  r.Quantity,
			InStock:   item.Quantity,
			Shortfall: shortfall,
		}
		if shortfall > 0 {
			resp.HasShortfall = true
		}
	}
	return resp, nil
}

// Export renders assemblies as one row per component
func (s *AssemblyService) Export(ctx context.Context, q AssemblyListQuery, format export.Format) (*common.ExportFile, error) {
	assemblies, _, err := s.assemblyRepo.FindAll(ctx, common.Unpaged(q.Filter()))
	if err != nil {
		return nil, err
	}
	items, err := s.componentItems(ctx, assemblies...)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title: "Assemblies",
		Columns: []export.Column{
			{Header: "Assembly Code", Width: 16},
			{Header: "Assembly Name", Width: 32},
			{Header: "Category ID"},
			{Header: "Item Code", Width: 16},
			{Header: "Item Name", Width: 32},
			{Header: "Quantity"},
		},
	}
	for _, a := range assemblies {
		if len(a.Components) == 0 {
			table.AddRow(a.Code, a.Name, a.CategoryID, "", "", 0)
			continue
		}
		for _, c := range a.Components {
			item := items[c.ItemID]
			table.AddRow(a.Code, a.Name, a.CategoryID, item.Code, item.Name, c.Quantity)
		}
	}
	return common.RenderExport(table, format, "assemblies", s.now())
}

func (s *AssemblyService) response(ctx context.Context, a *catalog.Assembly) (*AssemblyResponse, error) {
	items, err := s.componentItems(ctx, *a)
	if err != nil {
		return nil, err
	}
	resp := ToAssemblyResponse(a, items)
	return &resp, nil
}

// componentItems loads every item used by the assemblies, keyed by ID
func (s *AssemblyService) componentItems(ctx context.Context, assemblies ...catalog.Assembly) (map[uint]catalog.Item, error) {
	seen := make(map[uint]struct{})
	var ids []uint
	for i := range assemblies {
		for _, id := range assemblies[i].ItemIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	out := make(map[uint]catalog.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	items, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func (s *AssemblyService) validateReferences(ctx context.Context, req AssemblyRequest) error {
	if req.CategoryID != nil && *req.CategoryID != 0 {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.InvalidInputf("categoryId %d does not exist", *req.CategoryID)
			}
			return err
		}
	}

	ids := make([]uint, 0, len(req.Components))
	for _, c := range req.Components {
		ids = append(ids, c.ItemID)
	}
	if len(ids) == 0 {
		return nil
	}
	items, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uint]bool, len(items))
	for _, it := range items {
		found[it.ID] = true
	}
	var missing []uint
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return shared.InvalidInputf("components reference unknown items: %v", missing)
	}
	return nil
}

func (s *AssemblyService) ensureUniqueCode(ctx context.Context, code string, excludeID uint) error {
	exists, err := s.assemblyRepo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return common.Conflict(fmt.Sprintf("Assembly code %s already exists", code))
	}
	return nil
}
