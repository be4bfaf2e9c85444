package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll returns a page of products with the total count
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	err := query.
		Order(orderClause(filter, ProductSortFields)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes a product by ID
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}

	var total int64
	err := query.Count(&total).Error
	return total, err
}

// FindBySKU finds a product by SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByCategory returns a page of products in a category
func (r *GormProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("category_id = ?", categoryID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	err := query.
		Order(orderClause(filter, ProductSortFields)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindLowStock returns a page of products at or below the low stock threshold,
// excluding products that are fully out of stock
func (r *GormProductRepository) FindLowStock(ctx context.Context, threshold int, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("stock_quantity > 0 AND stock_quantity <= ?", threshold)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	err := query.
		Order("stock_quantity ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// IncrementViewCount atomically increments a product's view counter
func (r *GormProductRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// orderClause builds a safe ORDER BY clause from the filter
func orderClause(filter shared.Filter, allowed map[string]bool) string {
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	dir := ValidateSortOrder(filter.OrderDir)
	return fmt.Sprintf("%s %s", field, dir)
}
