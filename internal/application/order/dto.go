package order

import (
	"time"

	"github.com/storefront/backend/internal/domain/order"
)

// OrderItemRequest is one line of a create-order request
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest is the request payload for placing an order
type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" binding:"required,uuid"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateStatusRequest is the request payload for an order status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderItemResponse is the API representation of an order line
type OrderItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// OrderResponse is the API representation of an order
type OrderResponse struct {
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	CustomerID  string              `json:"customer_id"`
	Status      string              `json:"status"`
	TotalAmount float64             `json:"total_amount"`
	Items       []OrderItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			Amount:      item.Amount.InexactFloat64(),
		})
	}
	return &OrderResponse{
		ID:          o.ID.String(),
		Number:      o.Number,
		CustomerID:  o.CustomerID.String(),
		Status:      o.Status.String(),
		TotalAmount: o.TotalAmount.InexactFloat64(),
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// ListResult wraps a page of orders with the total row count
type ListResult struct {
	Items []*OrderResponse `json:"items"`
	Total int64            `json:"total"`
}
