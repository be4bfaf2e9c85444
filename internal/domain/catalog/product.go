package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// Product represents a sellable item in the storefront catalog
type Product struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SKU             string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Description     string          `gorm:"type:text"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	StockQuantity   int             `gorm:"not null;default:0"`
	ViewCount       int64           `gorm:"not null;default:0"`
	IsActive        bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(sku, name string, categoryID uuid.UUID, price decimal.Decimal) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	now := time.Now()
	return &Product{
		ID:              uuid.New(),
		SKU:             sku,
		Name:            name,
		CategoryID:      categoryID,
		Price:           price,
		DiscountPercent: decimal.Zero,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// EffectivePrice returns the price after applying the discount percentage
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPercent.IsZero() {
		return p.Price
	}
	factor := decimal.NewFromInt(100).Sub(p.DiscountPercent).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor)
}

// SetDiscount sets the discount percentage, bounded to [0, 100]
func (p *Product) SetDiscount(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 100")
	}
	p.DiscountPercent = percent
	p.UpdatedAt = time.Now()
	return nil
}

// UpdatePrice updates the product price
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

// AdjustStock changes stock quantity by delta. Stock never goes below zero.
func (p *Product) AdjustStock(delta int) error {
	next := p.StockQuantity + delta
	if next < 0 {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Stock quantity cannot go below zero")
	}
	p.StockQuantity = next
	p.UpdatedAt = time.Now()
	return nil
}

// IsOutOfStock reports whether the product has no stock
func (p *Product) IsOutOfStock() bool {
	return p.StockQuantity <= 0
}

// IsLowStock reports whether the product is low on stock against the threshold
func (p *Product) IsLowStock(threshold int) bool {
	return p.StockQuantity > 0 && p.StockQuantity <= threshold
}

// RecordView increments the product view counter
func (p *Product) RecordView() {
	p.ViewCount++
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

// Activate makes the product visible in the storefront
func (p *Product) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}
