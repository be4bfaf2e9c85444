package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateProductRequest is the request payload for creating a product
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required,max=50"`
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id" binding:"required,uuid"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"gte=0"`
}

// UpdateProductRequest is the request payload for updating a product
type UpdateProductRequest struct {
	Name            *string          `json:"name" binding:"omitempty,max=200"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	IsActive        *bool            `json:"is_active"`
}

// AdjustStockRequest is the request payload for a stock adjustment
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID              string    `json:"id"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	CategoryID      string    `json:"category_id"`
	Price           float64   `json:"price"`
	DiscountPercent float64   `json:"discount_percent"`
	EffectivePrice  float64   `json:"effective_price"`
	Stock           int       `json:"stock"`
	ViewCount       int64     `json:"view_count"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toProductResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:              p.ID.String(),
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		CategoryID:      p.CategoryID.String(),
		Price:           p.Price.InexactFloat64(),
		DiscountPercent: p.DiscountPercent.InexactFloat64(),
		EffectivePrice:  p.EffectivePrice().Round(2).InexactFloat64(),
		Stock:           p.StockQuantity,
		ViewCount:       p.ViewCount,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// CreateCategoryRequest is the request payload for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// UpdateCategoryRequest is the request payload for updating a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

// CategoryResponse is the API representation of a category
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCategoryResponse(c *catalog.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ListResult wraps a page of responses with the total row count
type ListResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
