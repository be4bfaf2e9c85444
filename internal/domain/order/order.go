package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// Status represents the status of a storefront order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses returns every known order status, in lifecycle order
func AllStatuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled}
}

// RevenueStatuses returns the statuses that count toward revenue.
// A pending order has not been confirmed to convert and a cancelled
// order never will, so both are excluded.
func RevenueStatuses() []Status {
	return []Status{StatusProcessing, StatusShipped, StatusCompleted}
}

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CountsTowardRevenue reports whether an order in this status contributes to revenue
func (s Status) CountsTowardRevenue() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusCompleted
	case StatusCompleted, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// LineItem represents a line item in an order. Unit price is captured at
// time of purchase and never re-read from the product.
type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "order_items"
}

// NewLineItem creates a new order line item
func NewLineItem(orderID, productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal) (*LineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &LineItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Order is the aggregate root for a storefront order
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Number      string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status      Status          `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AssigneeID  *uuid.UUID      `gorm:"type:uuid;index"` // admin user handling the order
	Items       []LineItem      `gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order for a customer
func NewOrder(number string, customerID uuid.UUID) (*Order, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	now := time.Now()
	return &Order{
		ID:          uuid.New(),
		Number:      number,
		CustomerID:  customerID,
		Status:      StatusPending,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AddItem appends a line item and recalculates the order total
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal) error {
	if o.Status != StatusPending {
		return shared.NewDomainError("ORDER_NOT_EDITABLE", "Items can only be added to a pending order")
	}

	item, err := NewLineItem(o.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return err
	}

	o.Items = append(o.Items, *item)
	o.recalculate()
	return nil
}

// TransitionTo moves the order to the target status if the transition is legal
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+target.String())
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition order from "+o.Status.String()+" to "+target.String())
	}

	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels the order. Only pending and processing orders can be cancelled.
func (o *Order) Cancel() error {
	return o.TransitionTo(StatusCancelled)
}

// Assign assigns an admin user to handle the order
func (o *Order) Assign(adminID uuid.UUID) error {
	if adminID == uuid.Nil {
		return shared.NewDomainError("INVALID_ASSIGNEE", "Assignee ID cannot be empty")
	}
	o.AssigneeID = &adminID
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) recalculate() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
	o.UpdatedAt = time.Now()
}
