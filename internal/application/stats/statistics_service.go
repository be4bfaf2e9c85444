package stats

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/stats"
)

const (
	topProductsLimit  = 10
	topCustomersLimit = 10
)

// StatisticsService assembles dashboard reports from aggregate queries.
// Every report is computed fresh; callers that want caching wrap the
// service at the HTTP layer. Any query failure fails the whole report,
// partial reports are never returned.
type StatisticsService struct {
	resolver          *stats.PeriodResolver
	orders            stats.OrderStatsRepository
	products          stats.ProductStatsRepository
	users             stats.UserStatsRepository
	lowStockThreshold int
}

// NewStatisticsService creates a new StatisticsService
func NewStatisticsService(
	resolver *stats.PeriodResolver,
	orders stats.OrderStatsRepository,
	products stats.ProductStatsRepository,
	users stats.UserStatsRepository,
	lowStockThreshold int,
) *StatisticsService {
	return &StatisticsService{
		resolver:          resolver,
		orders:            orders,
		products:          products,
		users:             users,
		lowStockThreshold: lowStockThreshold,
	}
}

func periodInfo(token string, r stats.DateRange) PeriodInfo {
	return PeriodInfo{
		Period:    string(stats.ParsePeriod(token, stats.PeriodMonth)),
		StartDate: r.Start,
		EndDate:   r.End,
	}
}

func comparisonMetric(previous, current decimal.Decimal) ComparisonMetric {
	rate := stats.GrowthRate(previous, current)
	return ComparisonMetric{
		Current:    stats.Round2(current),
		Previous:   stats.Round2(previous),
		GrowthRate: stats.Round2(rate),
		Trend:      stats.Trend(rate),
	}
}

func countComparison(previous, current int64) CountComparison {
	rate := stats.GrowthRateCounts(previous, current)
	return CountComparison{
		Current:    current,
		Previous:   previous,
		GrowthRate: stats.Round2(rate),
		Trend:      stats.Trend(rate),
	}
}

func currentOnlyMetric(current decimal.Decimal) ComparisonMetric {
	return ComparisonMetric{Current: stats.Round2(current), Trend: stats.TrendStable}
}

func currentOnlyCount(current int64) CountComparison {
	return CountComparison{Current: current, Trend: stats.TrendStable}
}

// granularityFor picks the series bucket width: yearly reports roll up
// by month, everything shorter stays daily
func granularityFor(token string) stats.Granularity {
	if stats.ParsePeriod(token, stats.PeriodMonth) == stats.PeriodYear {
		return stats.GranularityMonth
	}
	return stats.GranularityDay
}

// Overview returns the dashboard headline report for the period token.
// With includeComparison false the previous period is not queried and
// every metric carries only its current value.
func (s *StatisticsService) Overview(ctx context.Context, period string, includeComparison bool) (*OverviewResponse, error) {
	cmp := s.resolver.Comparison(period)

	curRevenue, err := s.orders.SumRevenue(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}
	curOrders, err := s.orders.CountOrders(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}

	totalCustomers, err := s.users.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}
	curNewCustomers, err := s.users.CountNewCustomers(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}

	revenue := currentOnlyMetric(curRevenue)
	orders := currentOnlyCount(curOrders)
	customers := currentOnlyCount(curNewCustomers)

	if includeComparison {
		prevRevenue, err := s.orders.SumRevenue(ctx, cmp.Previous)
		if err != nil {
			return nil, err
		}
		prevOrders, err := s.orders.CountOrders(ctx, cmp.Previous)
		if err != nil {
			return nil, err
		}
		prevNewCustomers, err := s.users.CountNewCustomers(ctx, cmp.Previous)
		if err != nil {
			return nil, err
		}
		revenue = comparisonMetric(prevRevenue, curRevenue)
		orders = countComparison(prevOrders, curOrders)
		customers = countComparison(prevNewCustomers, curNewCustomers)
	}

	byStatus, err := s.orders.CountOrdersByStatus(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}

	buyers, err := s.orders.CountCustomersWithOrders(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}

	bands, err := s.products.CountByStockBand(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}

	return &OverviewResponse{
		Period:            periodInfo(period, cmp.Current),
		Revenue:           revenue,
		Orders:            orders,
		OrdersByStatus:    statusBreakdown(byStatus, ""),
		Customers:         customers,
		TotalCustomers:    totalCustomers,
		AverageOrderValue: stats.Round2(stats.AverageOrderValue(curRevenue, curOrders)),
		ConversionRate:    stats.Round2(stats.Rate(buyers, totalCustomers)),
		FulfillmentRate:   stats.Round2(stats.Rate(byStatus[order.StatusCompleted], curOrders)),
		Products:          stockSummary(bands),
	}, nil
}

// statusBreakdown carries every status, even at zero, unless a single
// status is asked for
func statusBreakdown(byStatus map[order.Status]int64, filter string) map[string]int64 {
	breakdown := make(map[string]int64, len(order.AllStatuses()))
	for _, st := range order.AllStatuses() {
		if filter != "" && st.String() != filter {
			continue
		}
		breakdown[st.String()] = byStatus[st]
	}
	return breakdown
}

// Revenue returns the revenue report for the period token
func (s *StatisticsService) Revenue(ctx context.Context, period string, includeForecast bool) (*RevenueResponse, error) {
	cmp := s.resolver.Comparison(period)
	info := periodInfo(period, cmp.Current)
	return s.revenueReport(ctx, info, cmp, granularityFor(period), includeForecast)
}

// RevenueBetween returns the revenue report for an explicit date range
func (s *StatisticsService) RevenueBetween(ctx context.Context, dateRange stats.DateRange, granularity stats.Granularity, includeForecast bool) (*RevenueResponse, error) {
	cmp := stats.PeriodComparison{
		Current:  dateRange,
		Previous: s.resolver.PreviousRange(dateRange),
	}
	info := PeriodInfo{
		Period:    "custom",
		StartDate: dateRange.Start,
		EndDate:   dateRange.End,
	}
	return s.revenueReport(ctx, info, cmp, granularity, includeForecast)
}

func (s *StatisticsService) revenueReport(ctx context.Context, info PeriodInfo, cmp stats.PeriodComparison, granularity stats.Granularity, includeForecast bool) (*RevenueResponse, error) {
	curRevenue, err := s.orders.SumRevenue(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}
	prevRevenue, err := s.orders.SumRevenue(ctx, cmp.Previous)
	if err != nil {
		return nil, err
	}
	curOrders, err := s.orders.CountOrders(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}

	buckets, err := s.orders.RevenueSeries(ctx, cmp.Current, granularity)
	if err != nil {
		return nil, err
	}

	series := make([]RevenuePoint, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, RevenuePoint{
			Date:       b.Key,
			Revenue:    stats.Round2(b.Revenue),
			OrderCount: b.OrderCount,
		})
	}

	resp := &RevenueResponse{
		Period:              info,
		Granularity:         string(granularity),
		TotalRevenue:        comparisonMetric(prevRevenue, curRevenue),
		AverageOrderValue:   stats.Round2(stats.AverageOrderValue(curRevenue, curOrders)),
		AverageDailyRevenue: stats.Round2(stats.AverageDailyRevenue(curRevenue, cmp.Current.Days())),
		Series:              series,
	}
	if includeForecast {
		resp.Forecast = &RevenueForecast{
			Available: false,
			Message:   "Revenue forecasting is not yet available",
		}
	}
	return resp, nil
}

// Orders returns the order report for the period token. A non-empty
// statusFilter narrows the breakdown to that status; includeDetails adds
// the order trend series and the hourly distribution.
func (s *StatisticsService) Orders(ctx context.Context, period string, statusFilter string, includeDetails bool) (*OrdersResponse, error) {
	cmp := s.resolver.Comparison(period)

	curOrders, err := s.orders.CountOrders(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}
	prevOrders, err := s.orders.CountOrders(ctx, cmp.Previous)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.orders.CountOrdersByStatus(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}

	var series []OrderSeriesPoint
	var byHour []HourlyOrders
	if includeDetails {
		buckets, err := s.orders.RevenueSeries(ctx, cmp.Current, granularityFor(period))
		if err != nil {
			return nil, err
		}
		series = make([]OrderSeriesPoint, 0, len(buckets))
		for _, b := range buckets {
			series = append(series, OrderSeriesPoint{Date: b.Key, OrderCount: b.OrderCount})
		}

		hours, err := s.orders.OrdersByHour(ctx, cmp.Current)
		if err != nil {
			return nil, err
		}
		byHour = make([]HourlyOrders, 0, len(hours))
		for _, h := range hours {
			byHour = append(byHour, HourlyOrders{Hour: h.Hour, OrderCount: h.OrderCount})
		}
	}

	return &OrdersResponse{
		Period:           periodInfo(period, cmp.Current),
		Total:            countComparison(prevOrders, curOrders),
		StatusBreakdown:  statusBreakdown(byStatus, statusFilter),
		FulfillmentRate:  stats.Round2(stats.Rate(byStatus[order.StatusCompleted], curOrders)),
		CancellationRate: stats.Round2(stats.Rate(byStatus[order.StatusCancelled], curOrders)),
		Series:           series,
		ByHour:           byHour,
	}, nil
}

// Products returns the product report for the period token
func (s *StatisticsService) Products(ctx context.Context, period string) (*ProductsResponse, error) {
	current := s.resolver.Resolve(period)

	bands, err := s.products.CountByStockBand(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	views, err := s.products.TotalViews(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.orders.TopProducts(ctx, current, topProductsLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]TopProductEntry, 0, len(top))
	for _, p := range top {
		entries = append(entries, TopProductEntry{
			ProductID:  p.ProductID.String(),
			Name:       p.Name,
			UnitsSold:  p.UnitsSold,
			Revenue:    stats.Round2(p.Revenue),
			ViewCount:  p.ViewCount,
			StockLevel: p.StockLevel,
		})
	}

	return &ProductsResponse{
		Period:      periodInfo(period, current),
		Stock:       stockSummary(bands),
		TotalViews:  views,
		TopProducts: entries,
	}, nil
}

// Customers returns the customer report for the period token
func (s *StatisticsService) Customers(ctx context.Context, period string) (*CustomersResponse, error) {
	cmp := s.resolver.Comparison(period)

	total, err := s.users.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}
	curNew, err := s.users.CountNewCustomers(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}
	prevNew, err := s.users.CountNewCustomers(ctx, cmp.Previous)
	if err != nil {
		return nil, err
	}
	active, err := s.orders.CountCustomersWithOrders(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}
	top, err := s.orders.TopCustomers(ctx, cmp.Current, topCustomersLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]TopCustomerEntry, 0, len(top))
	for _, c := range top {
		entries = append(entries, TopCustomerEntry{
			CustomerID: c.CustomerID.String(),
			Name:       c.Name,
			Email:      c.Email,
			OrderCount: c.OrderCount,
			TotalSpent: stats.Round2(c.TotalSpent),
		})
	}

	return &CustomersResponse{
		Period:         periodInfo(period, cmp.Current),
		TotalCustomers: total,
		NewCustomers:   countComparison(prevNew, curNew),
		ActiveInPeriod: active,
		ConversionRate: stats.Round2(stats.Rate(active, total)),
		TopCustomers:   entries,
	}, nil
}

// Growth returns the growth report for the period token
func (s *StatisticsService) Growth(ctx context.Context, period string) (*GrowthResponse, error) {
	cmp := s.resolver.Comparison(period)

	curRevenue, err := s.orders.SumRevenue(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}
	prevRevenue, err := s.orders.SumRevenue(ctx, cmp.Previous)
	if err != nil {
		return nil, err
	}
	curOrders, err := s.orders.CountOrders(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}
	prevOrders, err := s.orders.CountOrders(ctx, cmp.Previous)
	if err != nil {
		return nil, err
	}
	curCustomers, err := s.users.CountNewCustomers(ctx, cmp.Current)
	if err != nil {
		return nil, err
	}
	prevCustomers, err := s.users.CountNewCustomers(ctx, cmp.Previous)
	if err != nil {
		return nil, err
	}

	return &GrowthResponse{
		Period:    periodInfo(period, cmp.Current),
		Revenue:   comparisonMetric(prevRevenue, curRevenue),
		Orders:    countComparison(prevOrders, curOrders),
		Customers: countComparison(prevCustomers, curCustomers),
	}, nil
}

// CategoryPerformance returns per-category sales for the period token.
// A limit of zero or less returns every category.
func (s *StatisticsService) CategoryPerformance(ctx context.Context, period string, limit int) (*CategoryPerformanceResponse, error) {
	current := s.resolver.Resolve(period)

	rows, err := s.orders.CategoryPerformance(ctx, current, limit)
	if err != nil {
		return nil, err
	}

	totalRevenue := decimal.Zero
	for _, row := range rows {
		totalRevenue = totalRevenue.Add(row.Revenue)
	}

	entries := make([]CategoryPerformanceEntry, 0, len(rows))
	for _, row := range rows {
		share := decimal.Zero
		if totalRevenue.IsPositive() {
			share = row.Revenue.Div(totalRevenue).Mul(decimal.NewFromInt(100))
		}
		entries = append(entries, CategoryPerformanceEntry{
			CategoryID:   row.CategoryID.String(),
			CategoryName: row.CategoryName,
			ProductCount: row.ProductCount,
			UnitsSold:    row.UnitsSold,
			Revenue:      stats.Round2(row.Revenue),
			RevenueShare: stats.Round2(share),
		})
	}

	return &CategoryPerformanceResponse{
		Period:     periodInfo(period, current),
		Categories: entries,
	}, nil
}

func stockSummary(bands stats.StockBandCounts) StockSummary {
	return StockSummary{
		Total:      bands.Total,
		InStock:    bands.InStock,
		LowStock:   bands.LowStock,
		OutOfStock: bands.OutOfStock,
	}
}
