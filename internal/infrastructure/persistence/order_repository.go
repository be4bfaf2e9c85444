package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll returns a page of orders with the total count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})

	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
	}
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	return r.page(query, filter)
}

// Save creates or updates an order and its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(o).Error
}

// SaveWithStock persists the order and writes the given product stock
// levels in one transaction, so order and stock never diverge
func (r *GormOrderRepository) SaveWithStock(ctx context.Context, o *order.Order, levels []order.StockLevel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(o).Error; err != nil {
			return err
		}
		for _, level := range levels {
			err := tx.Model(&catalog.Product{}).
				Where("id = ?", level.ProductID).
				Updates(map[string]any{
					"stock_quantity": level.Quantity,
					"updated_at":     time.Now(),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an order by ID
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&order.LineItem{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&order.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count returns the number of orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	err := query.Count(&total).Error
	return total, err
}

// FindByNumber finds an order by its unique number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByCustomer returns a page of a customer's orders
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("customer_id = ?", customerID)
	return r.page(query, filter)
}

// FindByStatus returns a page of orders in a status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("status = ?", status)
	return r.page(query, filter)
}

// FindCreatedBetween returns a page of orders created in the time window
func (r *GormOrderRepository) FindCreatedBetween(ctx context.Context, start, end time.Time, filter shared.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("created_at BETWEEN ? AND ?", start, end)
	return r.page(query, filter)
}

func (r *GormOrderRepository) page(query *gorm.DB, filter shared.Filter) ([]order.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []order.Order
	err := query.
		Preload("Items").
		Order(orderClause(filter, OrderSortFields)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
