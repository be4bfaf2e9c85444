package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/stats"
)

// MockOrderStatsRepository is a mock implementation of stats.OrderStatsRepository
type MockOrderStatsRepository struct {
	mock.Mock
}

func (m *MockOrderStatsRepository) SumRevenue(ctx context.Context, dateRange stats.DateRange) (decimal.Decimal, error) {
	args := m.Called(ctx, dateRange)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockOrderStatsRepository) CountOrders(ctx context.Context, dateRange stats.DateRange) (int64, error) {
	args := m.Called(ctx, dateRange)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderStatsRepository) CountOrdersByStatus(ctx context.Context, dateRange stats.DateRange) (map[order.Status]int64, error) {
	args := m.Called(ctx, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[order.Status]int64), args.Error(1)
}

func (m *MockOrderStatsRepository) RevenueSeries(ctx context.Context, dateRange stats.DateRange, granularity stats.Granularity) ([]stats.RevenueBucket, error) {
	args := m.Called(ctx, dateRange, granularity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.RevenueBucket), args.Error(1)
}

func (m *MockOrderStatsRepository) OrdersByHour(ctx context.Context, dateRange stats.DateRange) ([]stats.HourBucket, error) {
	args := m.Called(ctx, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.HourBucket), args.Error(1)
}

func (m *MockOrderStatsRepository) CountCustomersWithOrders(ctx context.Context, dateRange stats.DateRange) (int64, error) {
	args := m.Called(ctx, dateRange)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderStatsRepository) TopProducts(ctx context.Context, dateRange stats.DateRange, limit int) ([]stats.TopProduct, error) {
	args := m.Called(ctx, dateRange, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.TopProduct), args.Error(1)
}

func (m *MockOrderStatsRepository) TopCustomers(ctx context.Context, dateRange stats.DateRange, limit int) ([]stats.TopCustomer, error) {
	args := m.Called(ctx, dateRange, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.TopCustomer), args.Error(1)
}

func (m *MockOrderStatsRepository) CategoryPerformance(ctx context.Context, dateRange stats.DateRange, limit int) ([]stats.CategoryPerformance, error) {
	args := m.Called(ctx, dateRange, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.CategoryPerformance), args.Error(1)
}

// MockProductStatsRepository is a mock implementation of stats.ProductStatsRepository
type MockProductStatsRepository struct {
	mock.Mock
}

func (m *MockProductStatsRepository) CountByStockBand(ctx context.Context, threshold int) (stats.StockBandCounts, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).(stats.StockBandCounts), args.Error(1)
}

func (m *MockProductStatsRepository) TotalViews(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserStatsRepository is a mock implementation of stats.UserStatsRepository
type MockUserStatsRepository struct {
	mock.Mock
}

func (m *MockUserStatsRepository) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStatsRepository) CountNewCustomers(ctx context.Context, dateRange stats.DateRange) (int64, error) {
	args := m.Called(ctx, dateRange)
	return args.Get(0).(int64), args.Error(1)
}

type serviceFixture struct {
	service  *StatisticsService
	orders   *MockOrderStatsRepository
	products *MockProductStatsRepository
	users    *MockUserStatsRepository
	current  stats.DateRange
	previous stats.DateRange
}

func newFixture(t *testing.T, period string) *serviceFixture {
	t.Helper()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	resolver := stats.NewPeriodResolver(
		func() time.Time { return now },
		time.UTC, time.Monday, stats.PeriodMonth,
	)
	cmp := resolver.Comparison(period)

	orders := new(MockOrderStatsRepository)
	products := new(MockProductStatsRepository)
	users := new(MockUserStatsRepository)

	return &serviceFixture{
		service:  NewStatisticsService(resolver, orders, products, users, 10),
		orders:   orders,
		products: products,
		users:    users,
		current:  cmp.Current,
		previous: cmp.Previous,
	}
}

func TestOverview(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	f.orders.On("SumRevenue", ctx, f.current).Return(decimal.NewFromInt(1500), nil)
	f.orders.On("SumRevenue", ctx, f.previous).Return(decimal.NewFromInt(1000), nil)
	f.orders.On("CountOrders", ctx, f.current).Return(int64(30), nil)
	f.orders.On("CountOrders", ctx, f.previous).Return(int64(20), nil)
	f.orders.On("CountOrdersByStatus", ctx, f.current).Return(map[order.Status]int64{
		order.StatusPending:   4,
		order.StatusCompleted: 24,
		order.StatusCancelled: 2,
	}, nil)
	f.users.On("CountCustomers", ctx).Return(int64(200), nil)
	f.users.On("CountNewCustomers", ctx, f.current).Return(int64(12), nil)
	f.users.On("CountNewCustomers", ctx, f.previous).Return(int64(10), nil)
	f.orders.On("CountCustomersWithOrders", ctx, f.current).Return(int64(25), nil)
	f.products.On("CountByStockBand", ctx, 10).Return(stats.StockBandCounts{
		Total: 50, InStock: 40, LowStock: 7, OutOfStock: 3,
	}, nil)

	got, err := f.service.Overview(ctx, "month", true)
	require.NoError(t, err)

	assert.Equal(t, "month", got.Period.Period)
	assert.Equal(t, 1500.0, got.Revenue.Current)
	assert.Equal(t, 50.0, got.Revenue.GrowthRate)
	assert.Equal(t, "up", got.Revenue.Trend)
	assert.Equal(t, int64(30), got.Orders.Current)
	assert.Equal(t, 50.0, got.Orders.GrowthRate)
	assert.Equal(t, 20.0, got.Customers.GrowthRate)
	assert.Equal(t, 50.0, got.AverageOrderValue)
	assert.Equal(t, 12.5, got.ConversionRate)
	assert.Equal(t, 80.0, got.FulfillmentRate)
	assert.Equal(t, int64(3), got.Products.OutOfStock)

	// Every status key is present even when its count is zero
	require.Len(t, got.OrdersByStatus, 5)
	assert.Equal(t, int64(24), got.OrdersByStatus["completed"])
	assert.Equal(t, int64(0), got.OrdersByStatus["processing"])
	assert.Equal(t, int64(0), got.OrdersByStatus["shipped"])
}

func TestOverviewZeroBaseline(t *testing.T) {
	f := newFixture(t, "week")
	ctx := context.Background()

	f.orders.On("SumRevenue", ctx, f.current).Return(decimal.NewFromInt(500), nil)
	f.orders.On("SumRevenue", ctx, f.previous).Return(decimal.Zero, nil)
	f.orders.On("CountOrders", ctx, f.current).Return(int64(5), nil)
	f.orders.On("CountOrders", ctx, f.previous).Return(int64(0), nil)
	f.orders.On("CountOrdersByStatus", ctx, f.current).Return(map[order.Status]int64{}, nil)
	f.users.On("CountCustomers", ctx).Return(int64(0), nil)
	f.users.On("CountNewCustomers", ctx, mock.Anything).Return(int64(0), nil)
	f.orders.On("CountCustomersWithOrders", ctx, f.current).Return(int64(0), nil)
	f.products.On("CountByStockBand", ctx, 10).Return(stats.StockBandCounts{}, nil)

	got, err := f.service.Overview(ctx, "week", true)
	require.NoError(t, err)

	// A zero baseline with activity reads as 100% growth, without as 0%
	assert.Equal(t, 100.0, got.Revenue.GrowthRate)
	assert.Equal(t, "up", got.Revenue.Trend)
	assert.Equal(t, 100.0, got.Orders.GrowthRate)
	assert.Equal(t, 0.0, got.Customers.GrowthRate)
	assert.Equal(t, "stable", got.Customers.Trend)
	// Empty denominators never divide
	assert.Equal(t, 0.0, got.ConversionRate)
	assert.Equal(t, 0.0, got.FulfillmentRate)
}

func TestOverviewFailsFast(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	f.orders.On("SumRevenue", ctx, f.current).Return(decimal.Zero, errors.New("connection refused"))

	got, err := f.service.Overview(ctx, "month", true)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestOverviewWithoutComparison(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	f.orders.On("SumRevenue", ctx, f.current).Return(decimal.NewFromInt(1500), nil)
	f.orders.On("CountOrders", ctx, f.current).Return(int64(30), nil)
	f.orders.On("CountOrdersByStatus", ctx, f.current).Return(map[order.Status]int64{
		order.StatusCompleted: 21,
	}, nil)
	f.users.On("CountCustomers", ctx).Return(int64(200), nil)
	f.users.On("CountNewCustomers", ctx, f.current).Return(int64(12), nil)
	f.orders.On("CountCustomersWithOrders", ctx, f.current).Return(int64(25), nil)
	f.products.On("CountByStockBand", ctx, 10).Return(stats.StockBandCounts{}, nil)

	got, err := f.service.Overview(ctx, "month", false)
	require.NoError(t, err)

	// The previous period is never queried
	f.orders.AssertNotCalled(t, "SumRevenue", ctx, f.previous)
	f.orders.AssertNotCalled(t, "CountOrders", ctx, f.previous)

	assert.Equal(t, 1500.0, got.Revenue.Current)
	assert.Equal(t, 0.0, got.Revenue.Previous)
	assert.Equal(t, "stable", got.Revenue.Trend)
	assert.Equal(t, "stable", got.Orders.Trend)
	assert.Equal(t, 70.0, got.FulfillmentRate)
}

func TestRevenueReport(t *testing.T) {
	f := newFixture(t, "week")
	ctx := context.Background()

	f.orders.On("SumRevenue", ctx, f.current).Return(decimal.NewFromInt(300), nil)
	f.orders.On("SumRevenue", ctx, f.previous).Return(decimal.NewFromInt(400), nil)
	f.orders.On("CountOrders", ctx, f.current).Return(int64(4), nil)
	f.orders.On("RevenueSeries", ctx, f.current, stats.GranularityDay).Return([]stats.RevenueBucket{
		{Key: "2024-03-11", Revenue: decimal.NewFromInt(100), OrderCount: 1},
		{Key: "2024-03-14", Revenue: decimal.NewFromInt(200), OrderCount: 3},
	}, nil)

	got, err := f.service.Revenue(ctx, "week", true)
	require.NoError(t, err)

	assert.Equal(t, "day", got.Granularity)
	assert.Equal(t, -25.0, got.TotalRevenue.GrowthRate)
	assert.Equal(t, "down", got.TotalRevenue.Trend)
	assert.Equal(t, 75.0, got.AverageOrderValue)
	// 300 over the 7-day week
	assert.Equal(t, 42.86, got.AverageDailyRevenue)
	// Sparse series: only buckets with orders, ascending
	require.Len(t, got.Series, 2)
	assert.Equal(t, "2024-03-11", got.Series[0].Date)
	require.NotNil(t, got.Forecast)
	assert.False(t, got.Forecast.Available)
}

func TestRevenueBetween(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	dateRange := stats.DateRange{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 10, 23, 59, 59, 0, time.UTC),
	}

	f.orders.On("SumRevenue", ctx, mock.Anything).Return(decimal.NewFromInt(100), nil)
	f.orders.On("CountOrders", ctx, dateRange).Return(int64(2), nil)
	f.orders.On("RevenueSeries", ctx, dateRange, stats.GranularityDay).Return([]stats.RevenueBucket{}, nil)

	got, err := f.service.RevenueBetween(ctx, dateRange, stats.GranularityDay, false)
	require.NoError(t, err)

	assert.Equal(t, "custom", got.Period.Period)
	assert.Equal(t, dateRange.Start, got.Period.StartDate)
	// 100 over the 10-day range
	assert.Equal(t, 10.0, got.AverageDailyRevenue)
	assert.Nil(t, got.Forecast)
}

func TestRevenueReportYearUsesMonthlyBuckets(t *testing.T) {
	f := newFixture(t, "year")
	ctx := context.Background()

	f.orders.On("SumRevenue", ctx, mock.Anything).Return(decimal.Zero, nil)
	f.orders.On("CountOrders", ctx, f.current).Return(int64(0), nil)
	f.orders.On("RevenueSeries", ctx, f.current, stats.GranularityMonth).Return([]stats.RevenueBucket{}, nil)

	got, err := f.service.Revenue(ctx, "year", false)
	require.NoError(t, err)
	assert.Equal(t, "month", got.Granularity)
	assert.Empty(t, got.Series)
	assert.Nil(t, got.Forecast)
}

func TestOrdersReport(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	f.orders.On("CountOrders", ctx, f.current).Return(int64(40), nil)
	f.orders.On("CountOrders", ctx, f.previous).Return(int64(40), nil)
	f.orders.On("CountOrdersByStatus", ctx, f.current).Return(map[order.Status]int64{
		order.StatusPending:   5,
		order.StatusCompleted: 30,
		order.StatusCancelled: 5,
	}, nil)
	f.orders.On("RevenueSeries", ctx, f.current, stats.GranularityDay).Return([]stats.RevenueBucket{
		{Key: "2024-03-04", Revenue: decimal.NewFromInt(150), OrderCount: 15},
		{Key: "2024-03-12", Revenue: decimal.NewFromInt(250), OrderCount: 25},
	}, nil)
	f.orders.On("OrdersByHour", ctx, f.current).Return([]stats.HourBucket{
		{Hour: 9, OrderCount: 15},
		{Hour: 20, OrderCount: 25},
	}, nil)

	got, err := f.service.Orders(ctx, "month", "", true)
	require.NoError(t, err)

	// Every status key is present even when its count is zero
	require.Len(t, got.StatusBreakdown, 5)
	assert.Equal(t, int64(0), got.StatusBreakdown["processing"])
	assert.Equal(t, int64(0), got.StatusBreakdown["shipped"])
	assert.Equal(t, int64(30), got.StatusBreakdown["completed"])

	assert.Equal(t, 75.0, got.FulfillmentRate)
	assert.Equal(t, 12.5, got.CancellationRate)
	assert.Equal(t, "stable", got.Total.Trend)

	require.Len(t, got.Series, 2)
	assert.Equal(t, "2024-03-04", got.Series[0].Date)
	assert.Equal(t, int64(15), got.Series[0].OrderCount)
	assert.Equal(t, int64(25), got.Series[1].OrderCount)

	require.Len(t, got.ByHour, 2)
	assert.Equal(t, 9, got.ByHour[0].Hour)
}

func TestOrdersReportEmptyPeriod(t *testing.T) {
	f := newFixture(t, "today")
	ctx := context.Background()

	f.orders.On("CountOrders", ctx, mock.Anything).Return(int64(0), nil)
	f.orders.On("CountOrdersByStatus", ctx, f.current).Return(map[order.Status]int64{}, nil)
	f.orders.On("RevenueSeries", ctx, f.current, stats.GranularityDay).Return([]stats.RevenueBucket{}, nil)
	f.orders.On("OrdersByHour", ctx, f.current).Return([]stats.HourBucket{}, nil)

	got, err := f.service.Orders(ctx, "today", "", true)
	require.NoError(t, err)

	require.Len(t, got.StatusBreakdown, 5)
	for status, count := range got.StatusBreakdown {
		assert.Equal(t, int64(0), count, "status %s", status)
	}
	assert.Equal(t, 0.0, got.FulfillmentRate)
	assert.Equal(t, 0.0, got.CancellationRate)
}

func TestOrdersReportStatusFilter(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	f.orders.On("CountOrders", ctx, mock.Anything).Return(int64(40), nil)
	f.orders.On("CountOrdersByStatus", ctx, f.current).Return(map[order.Status]int64{
		order.StatusCompleted: 30,
		order.StatusCancelled: 5,
	}, nil)

	got, err := f.service.Orders(ctx, "month", "completed", false)
	require.NoError(t, err)

	// Details were not requested, the series and hourly queries never run
	f.orders.AssertNotCalled(t, "RevenueSeries", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "OrdersByHour", ctx, f.current)
	assert.Nil(t, got.Series)
	assert.Nil(t, got.ByHour)

	require.Len(t, got.StatusBreakdown, 1)
	assert.Equal(t, int64(30), got.StatusBreakdown["completed"])
	// Rates stay computed over the full period counts
	assert.Equal(t, 75.0, got.FulfillmentRate)
	assert.Equal(t, 12.5, got.CancellationRate)
}

func TestProductsReport(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	productID := uuid.New()
	f.products.On("CountByStockBand", ctx, 10).Return(stats.StockBandCounts{
		Total: 20, InStock: 15, LowStock: 4, OutOfStock: 1,
	}, nil)
	f.products.On("TotalViews", ctx).Return(int64(12345), nil)
	f.orders.On("TopProducts", ctx, f.current, topProductsLimit).Return([]stats.TopProduct{
		{ProductID: productID, Name: "Widget", UnitsSold: 42, Revenue: decimal.NewFromFloat(419.58), ViewCount: 900, StockLevel: 8},
	}, nil)

	got, err := f.service.Products(ctx, "month")
	require.NoError(t, err)

	assert.Equal(t, int64(12345), got.TotalViews)
	assert.Equal(t, int64(4), got.Stock.LowStock)
	require.Len(t, got.TopProducts, 1)
	assert.Equal(t, productID.String(), got.TopProducts[0].ProductID)
	assert.Equal(t, 419.58, got.TopProducts[0].Revenue)
}

func TestCustomersReport(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	customerID := uuid.New()
	f.users.On("CountCustomers", ctx).Return(int64(400), nil)
	f.users.On("CountNewCustomers", ctx, f.current).Return(int64(40), nil)
	f.users.On("CountNewCustomers", ctx, f.previous).Return(int64(50), nil)
	f.orders.On("CountCustomersWithOrders", ctx, f.current).Return(int64(100), nil)
	f.orders.On("TopCustomers", ctx, f.current, topCustomersLimit).Return([]stats.TopCustomer{
		{CustomerID: customerID, Name: "Ada", Email: "ada@example.com", OrderCount: 6, TotalSpent: decimal.NewFromInt(900)},
	}, nil)

	got, err := f.service.Customers(ctx, "month")
	require.NoError(t, err)

	assert.Equal(t, int64(400), got.TotalCustomers)
	assert.Equal(t, -20.0, got.NewCustomers.GrowthRate)
	assert.Equal(t, "down", got.NewCustomers.Trend)
	assert.Equal(t, 25.0, got.ConversionRate)
	require.Len(t, got.TopCustomers, 1)
	assert.Equal(t, 900.0, got.TopCustomers[0].TotalSpent)
}

func TestGrowthReport(t *testing.T) {
	f := newFixture(t, "year")
	ctx := context.Background()

	f.orders.On("SumRevenue", ctx, f.current).Return(decimal.NewFromInt(120), nil)
	f.orders.On("SumRevenue", ctx, f.previous).Return(decimal.NewFromInt(120), nil)
	f.orders.On("CountOrders", ctx, f.current).Return(int64(8), nil)
	f.orders.On("CountOrders", ctx, f.previous).Return(int64(10), nil)
	f.users.On("CountNewCustomers", ctx, f.current).Return(int64(3), nil)
	f.users.On("CountNewCustomers", ctx, f.previous).Return(int64(0), nil)

	got, err := f.service.Growth(ctx, "year")
	require.NoError(t, err)

	assert.Equal(t, "stable", got.Revenue.Trend)
	assert.Equal(t, -20.0, got.Orders.GrowthRate)
	assert.Equal(t, 100.0, got.Customers.GrowthRate)
}

func TestCategoryPerformance(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	electronicsID := uuid.New()
	booksID := uuid.New()
	f.orders.On("CategoryPerformance", ctx, f.current, 5).Return([]stats.CategoryPerformance{
		{CategoryID: electronicsID, CategoryName: "Electronics", ProductCount: 12, UnitsSold: 80, Revenue: decimal.NewFromInt(750)},
		{CategoryID: booksID, CategoryName: "Books", ProductCount: 30, UnitsSold: 50, Revenue: decimal.NewFromInt(250)},
	}, nil)

	got, err := f.service.CategoryPerformance(ctx, "month", 5)
	require.NoError(t, err)

	require.Len(t, got.Categories, 2)
	assert.Equal(t, 75.0, got.Categories[0].RevenueShare)
	assert.Equal(t, 25.0, got.Categories[1].RevenueShare)
}

func TestCategoryPerformanceNoRevenue(t *testing.T) {
	f := newFixture(t, "today")
	ctx := context.Background()

	f.orders.On("CategoryPerformance", ctx, f.current, 0).Return([]stats.CategoryPerformance{
		{CategoryID: uuid.New(), CategoryName: "Electronics", ProductCount: 12},
	}, nil)

	got, err := f.service.CategoryPerformance(ctx, "today", 0)
	require.NoError(t, err)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, 0.0, got.Categories[0].RevenueShare)
}

func TestUnknownPeriodFallsBackToMonth(t *testing.T) {
	f := newFixture(t, "month")
	ctx := context.Background()

	f.orders.On("SumRevenue", ctx, mock.Anything).Return(decimal.Zero, nil)
	f.orders.On("CountOrders", ctx, mock.Anything).Return(int64(0), nil)
	f.orders.On("CountOrdersByStatus", ctx, mock.Anything).Return(map[order.Status]int64{}, nil)
	f.users.On("CountCustomers", ctx).Return(int64(0), nil)
	f.users.On("CountNewCustomers", ctx, mock.Anything).Return(int64(0), nil)
	f.orders.On("CountCustomersWithOrders", ctx, mock.Anything).Return(int64(0), nil)
	f.products.On("CountByStockBand", ctx, 10).Return(stats.StockBandCounts{}, nil)

	got, err := f.service.Overview(ctx, "quarter", true)
	require.NoError(t, err)
	assert.Equal(t, "month", got.Period.Period)
	assert.Equal(t, f.current.Start, got.Period.StartDate)
}
