package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines persistence for products
type ProductRepository interface {
	shared.Repository[Product]
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]Product, int64, error)
	FindLowStock(ctx context.Context, threshold int, filter shared.Filter) ([]Product, int64, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines persistence for categories
type CategoryRepository interface {
	shared.Repository[Category]
	FindByName(ctx context.Context, name string) (*Category, error)
}
