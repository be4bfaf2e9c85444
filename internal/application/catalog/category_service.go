package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, productRepo catalog.ProductRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	if existing, err := s.categoryRepo.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// Get returns a category by ID
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// List returns a page of categories
func (s *CategoryService) List(ctx context.Context, filter shared.Filter) (*ListResult[*CategoryResponse], error) {
	categories, total, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResponse(&categories[i]))
	}
	return &ListResult[*CategoryResponse]{Items: items, Total: total}, nil
}

// Update applies a partial update to a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := category.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// Delete removes a category. A category that still has products cannot
// be deleted.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	products, _, err := s.productRepo.FindByCategory(ctx, id, shared.Filter{Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category still has products")
	}

	return s.categoryRepo.Delete(ctx, id)
}
