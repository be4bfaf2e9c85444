package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, categoryRepo catalog.CategoryRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if existing, err := s.productRepo.FindBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category ID is not a valid UUID")
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return nil, err
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, categoryID, req.Price)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	if req.Stock > 0 {
		if err := product.AdjustStock(req.Stock); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Get returns a product by ID and records the view
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// View counting is best-effort, a failed increment never fails the read
	_ = s.productRepo.IncrementViewCount(ctx, id)
	product.ViewCount++

	return toProductResponse(product), nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, filter shared.Filter) (*ListResult[*ProductResponse], error) {
	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}
	return &ListResult[*ProductResponse]{Items: items, Total: total}, nil
}

// ListByCategory returns a page of products in a category
func (s *ProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) (*ListResult[*ProductResponse], error) {
	products, total, err := s.productRepo.FindByCategory(ctx, categoryID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}
	return &ListResult[*ProductResponse]{Items: items, Total: total}, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
		}
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if err := product.UpdatePrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.DiscountPercent != nil {
		if err := product.SetDiscount(*req.DiscountPercent); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// AdjustStock changes a product's stock quantity by delta
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.AdjustStock(delta); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}
