package catalog

import (
	"context"
	"fmt"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/catalog"
	"github.com/doorsets/backend/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	support      common.Support
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, support common.Support) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, support: support}
}

// GetAll returns a page of categories
func (s *CategoryService) GetAll(ctx context.Context, q common.ListQuery) (shared.Paginated[CategoryResponse], error) {
	filter := q.Filter()
	return common.CachedList(ctx, s.support, catalog.AggregateTypeCategory, filter, func() (shared.Paginated[CategoryResponse], error) {
		categories, total, err := s.categoryRepo.FindAll(ctx, filter)
		if err != nil {
			return shared.Paginated[CategoryResponse]{}, err
		}
		out := make([]CategoryResponse, len(categories))
		for i := range categories {
			out[i] = ToCategoryResponse(&categories[i])
		}
		return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
	})
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uint) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	if err := s.ensureUniqueName(ctx, req.Name, 0); err != nil {
		return nil, err
	}
	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, catalog.AggregateTypeCategory, category.ID, shared.ActionCreated)

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update updates an existing category
func (s *CategoryService) Update(ctx context.Context, id uint, req CategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, req.Name, id); err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.support.Changed(ctx, catalog.AggregateTypeCategory, category.ID, shared.ActionUpdated)

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category no item or assembly refers to
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}
	used, err := s.categoryRepo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return common.InUse("Category is used by items or assemblies")
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.support.Changed(ctx, catalog.AggregateTypeCategory, id, shared.ActionDeleted)
	return nil
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, name string, excludeID uint) error {
	exists, err := s.categoryRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return common.Conflict(fmt.Sprintf("Category %q already exists", name))
	}
	return nil
}
