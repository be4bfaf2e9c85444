package stats

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/order"
)

// Granularity selects the bucket width of a time series
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// IsValid checks if the granularity is known
func (g Granularity) IsValid() bool {
	return g == GranularityDay || g == GranularityMonth
}

// RevenueBucket is one bucket of a revenue time series. Key is the bucket
// label: "2006-01-02" for day granularity, "2006-01" for month granularity.
// Buckets with no orders are omitted.
type RevenueBucket struct {
	Key        string
	Revenue    decimal.Decimal
	OrderCount int64
}

// HourBucket is one bucket of an order-by-hour distribution. Hour is 0..23
// in the reporting time zone. Hours with no orders are omitted.
type HourBucket struct {
	Hour       int
	OrderCount int64
}

// StockBandCounts partitions the catalog by stock level. A product is out
// of stock at quantity zero or below, low stock between one and the
// configured threshold, and in stock above the threshold.
type StockBandCounts struct {
	Total      int64
	InStock    int64
	LowStock   int64
	OutOfStock int64
}

// TopProduct is one row of a best-seller ranking
type TopProduct struct {
	ProductID  uuid.UUID
	Name       string
	UnitsSold  int64
	Revenue    decimal.Decimal
	ViewCount  int64
	StockLevel int
}

// TopCustomer is one row of a top-spender ranking
type TopCustomer struct {
	CustomerID uuid.UUID
	Name       string
	Email      string
	OrderCount int64
	TotalSpent decimal.Decimal
}

// CategoryPerformance aggregates sales per category over a range
type CategoryPerformance struct {
	CategoryID   uuid.UUID
	CategoryName string
	ProductCount int64
	UnitsSold    int64
	Revenue      decimal.Decimal
}

// OrderStatsRepository reads order aggregates. Revenue queries only count
// orders whose status counts toward revenue; implementations filter with
// order.RevenueStatuses.
type OrderStatsRepository interface {
	// SumRevenue returns total revenue for orders created within the range
	SumRevenue(ctx context.Context, dateRange DateRange) (decimal.Decimal, error)

	// CountOrders returns the number of orders created within the range,
	// regardless of status
	CountOrders(ctx context.Context, dateRange DateRange) (int64, error)

	// CountOrdersByStatus returns a count per status for orders created
	// within the range. Every known status is present in the result, with
	// zero for statuses that have no orders.
	CountOrdersByStatus(ctx context.Context, dateRange DateRange) (map[order.Status]int64, error)

	// RevenueSeries returns sparse revenue buckets for the range, in
	// ascending key order
	RevenueSeries(ctx context.Context, dateRange DateRange, granularity Granularity) ([]RevenueBucket, error)

	// OrdersByHour returns sparse hour buckets for orders created within
	// the range, in ascending hour order
	OrdersByHour(ctx context.Context, dateRange DateRange) ([]HourBucket, error)

	// CountCustomersWithOrders returns how many distinct customers placed
	// at least one order within the range
	CountCustomersWithOrders(ctx context.Context, dateRange DateRange) (int64, error)

	// TopProducts ranks products by units sold within the range
	TopProducts(ctx context.Context, dateRange DateRange, limit int) ([]TopProduct, error)

	// TopCustomers ranks customers by total spent within the range
	TopCustomers(ctx context.Context, dateRange DateRange, limit int) ([]TopCustomer, error)

	// CategoryPerformance aggregates sales per category within the range,
	// ordered by revenue descending
	CategoryPerformance(ctx context.Context, dateRange DateRange, limit int) ([]CategoryPerformance, error)
}

// ProductStatsRepository reads catalog aggregates
type ProductStatsRepository interface {
	// CountByStockBand partitions products into stock bands using the
	// given low-stock threshold
	CountByStockBand(ctx context.Context, lowStockThreshold int) (StockBandCounts, error)

	// TotalViews returns the sum of product view counters
	TotalViews(ctx context.Context) (int64, error)
}

// UserStatsRepository reads user aggregates
type UserStatsRepository interface {
	// CountCustomers returns the total number of customer accounts
	CountCustomers(ctx context.Context) (int64, error)

	// CountNewCustomers returns customer accounts created within the range
	CountNewCustomers(ctx context.Context, dateRange DateRange) (int64, error)
}
