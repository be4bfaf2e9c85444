package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// StockLevel is the absolute stock quantity a product should hold after
// an order mutation
type StockLevel struct {
	ProductID uuid.UUID
	Quantity  int
}

// Repository defines persistence for orders
type Repository interface {
	shared.Repository[Order]
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, int64, error)
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Order, int64, error)
	FindCreatedBetween(ctx context.Context, start, end time.Time, filter shared.Filter) ([]Order, int64, error)
	// SaveWithStock persists the order and the product stock levels in a
	// single transaction
	SaveWithStock(ctx context.Context, o *Order, levels []StockLevel) error
}
