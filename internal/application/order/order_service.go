package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderService handles order-related business operations
type OrderService struct {
	orderRepo   order.Repository
	productRepo catalog.ProductRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.Repository, productRepo catalog.ProductRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// Create places a new order. Line prices are captured from the catalog at
// order time; the order and its stock reservations are persisted in one
// transaction so a failed order never leaves stock decremented.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID is not a valid UUID")
	}

	o, err := order.NewOrder(generateOrderNumber(), customerID)
	if err != nil {
		return nil, err
	}

	levels := make([]order.StockLevel, 0, len(req.Items))
	for _, line := range req.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID is not a valid UUID")
		}

		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product is not available: "+product.Name)
		}
		if err := product.AdjustStock(-line.Quantity); err != nil {
			return nil, err
		}
		if err := o.AddItem(product.ID, product.Name, line.Quantity, product.EffectivePrice()); err != nil {
			return nil, err
		}
		levels = append(levels, order.StockLevel{ProductID: product.ID, Quantity: product.StockQuantity})
	}

	if err := s.orderRepo.SaveWithStock(ctx, o, levels); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// Get returns an order by ID
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// List returns a page of orders
func (s *OrderService) List(ctx context.Context, filter shared.Filter) (*ListResult, error) {
	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toListResult(orders, total), nil
}

// ListByCustomer returns a page of a customer's orders
func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*ListResult, error) {
	orders, total, err := s.orderRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}
	return toListResult(orders, total), nil
}

// ListByStatus returns a page of orders in a status
func (s *OrderService) ListByStatus(ctx context.Context, status order.Status, filter shared.Filter) (*ListResult, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+status.String())
	}
	orders, total, err := s.orderRepo.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, err
	}
	return toListResult(orders, total), nil
}

// UpdateStatus moves an order through its lifecycle. Cancelling an order
// returns its reserved stock to the catalog in the same transaction that
// records the cancellation.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, target order.Status) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := o.TransitionTo(target); err != nil {
		return nil, err
	}

	if target == order.StatusCancelled {
		levels, err := s.restockLevels(ctx, o)
		if err != nil {
			return nil, err
		}
		if err := s.orderRepo.SaveWithStock(ctx, o, levels); err != nil {
			return nil, err
		}
		return toOrderResponse(o), nil
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// Assign assigns an admin user to handle the order
func (s *OrderService) Assign(ctx context.Context, id, adminID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Assign(adminID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// restockLevels computes the post-restock stock level per line item
// without persisting anything
func (s *OrderService) restockLevels(ctx context.Context, o *order.Order) ([]order.StockLevel, error) {
	levels := make([]order.StockLevel, 0, len(o.Items))
	for _, item := range o.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if err := product.AdjustStock(item.Quantity); err != nil {
			return nil, err
		}
		levels = append(levels, order.StockLevel{ProductID: product.ID, Quantity: product.StockQuantity})
	}
	return levels, nil
}

func toListResult(orders []order.Order, total int64) *ListResult {
	items := make([]*OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}
	return &ListResult{Items: items, Total: total}
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
