package stats

import "time"

// PeriodInfo echoes the resolved reporting window back to the caller
type PeriodInfo struct {
	Period    string    `json:"period"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// ComparisonMetric pairs a current value with its previous-period baseline
type ComparisonMetric struct {
	Current    float64 `json:"current"`
	Previous   float64 `json:"previous"`
	GrowthRate float64 `json:"growth_rate"`
	Trend      string  `json:"trend"`
}

// CountComparison is a ComparisonMetric over integer counts
type CountComparison struct {
	Current    int64   `json:"current"`
	Previous   int64   `json:"previous"`
	GrowthRate float64 `json:"growth_rate"`
	Trend      string  `json:"trend"`
}

// StockSummary partitions the catalog by stock level
type StockSummary struct {
	Total      int64 `json:"total"`
	InStock    int64 `json:"in_stock"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}

// OverviewResponse is the dashboard headline report
type OverviewResponse struct {
	Period            PeriodInfo       `json:"period"`
	Revenue           ComparisonMetric `json:"revenue"`
	Orders            CountComparison  `json:"orders"`
	OrdersByStatus    map[string]int64 `json:"orders_by_status"`
	Customers         CountComparison  `json:"new_customers"`
	TotalCustomers    int64            `json:"total_customers"`
	AverageOrderValue float64          `json:"average_order_value"`
	ConversionRate    float64          `json:"conversion_rate"`
	FulfillmentRate   float64          `json:"fulfillment_rate"`
	Products          StockSummary     `json:"products"`
}

// RevenuePoint is one bucket of the revenue time series
type RevenuePoint struct {
	Date       string  `json:"date"`
	Revenue    float64 `json:"revenue"`
	OrderCount int64   `json:"order_count"`
}

// RevenueForecast is a placeholder until a forecasting model lands
type RevenueForecast struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// RevenueResponse is the revenue report
type RevenueResponse struct {
	Period              PeriodInfo       `json:"period"`
	Granularity         string           `json:"granularity"`
	TotalRevenue        ComparisonMetric `json:"total_revenue"`
	AverageOrderValue   float64          `json:"average_order_value"`
	AverageDailyRevenue float64          `json:"average_daily_revenue"`
	Series              []RevenuePoint   `json:"series"`
	Forecast            *RevenueForecast `json:"forecast,omitempty"`
}

// HourlyOrders is one bucket of the order-by-hour distribution
type HourlyOrders struct {
	Hour       int   `json:"hour"`
	OrderCount int64 `json:"order_count"`
}

// OrderSeriesPoint is one bucket of the order-count time series
type OrderSeriesPoint struct {
	Date       string `json:"date"`
	OrderCount int64  `json:"order_count"`
}

// OrdersResponse is the order report
type OrdersResponse struct {
	Period           PeriodInfo         `json:"period"`
	Total            CountComparison    `json:"total"`
	StatusBreakdown  map[string]int64   `json:"status_breakdown"`
	FulfillmentRate  float64            `json:"fulfillment_rate"`
	CancellationRate float64            `json:"cancellation_rate"`
	Series           []OrderSeriesPoint `json:"series,omitempty"`
	ByHour           []HourlyOrders     `json:"by_hour,omitempty"`
}

// TopProductEntry is one row of the best-seller ranking
type TopProductEntry struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	UnitsSold  int64   `json:"units_sold"`
	Revenue    float64 `json:"revenue"`
	ViewCount  int64   `json:"view_count"`
	StockLevel int     `json:"stock_level"`
}

// ProductsResponse is the product report
type ProductsResponse struct {
	Period      PeriodInfo        `json:"period"`
	Stock       StockSummary      `json:"stock"`
	TotalViews  int64             `json:"total_views"`
	TopProducts []TopProductEntry `json:"top_products"`
}

// TopCustomerEntry is one row of the top-spender ranking
type TopCustomerEntry struct {
	CustomerID string  `json:"customer_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	OrderCount int64   `json:"order_count"`
	TotalSpent float64 `json:"total_spent"`
}

// CustomersResponse is the customer report
type CustomersResponse struct {
	Period         PeriodInfo         `json:"period"`
	TotalCustomers int64              `json:"total_customers"`
	NewCustomers   CountComparison    `json:"new_customers"`
	ActiveInPeriod int64              `json:"active_in_period"`
	ConversionRate float64            `json:"conversion_rate"`
	TopCustomers   []TopCustomerEntry `json:"top_customers"`
}

// GrowthResponse compares the current period against the previous one
// across the headline metrics
type GrowthResponse struct {
	Period    PeriodInfo       `json:"period"`
	Revenue   ComparisonMetric `json:"revenue"`
	Orders    CountComparison  `json:"orders"`
	Customers CountComparison  `json:"customers"`
}

// CategoryPerformanceEntry is one row of the category report
type CategoryPerformanceEntry struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	ProductCount int64   `json:"product_count"`
	UnitsSold    int64   `json:"units_sold"`
	Revenue      float64 `json:"revenue"`
	RevenueShare float64 `json:"revenue_share"`
}

// CategoryPerformanceResponse is the category report
type CategoryPerformanceResponse struct {
	Period     PeriodInfo                 `json:"period"`
	Categories []CategoryPerformanceEntry `json:"categories"`
}
