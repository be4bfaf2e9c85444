package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/stats"
)

// GormOrderStatsRepository implements stats.OrderStatsRepository using GORM
type GormOrderStatsRepository struct {
	db       *gorm.DB
	timeZone string
}

// NewGormOrderStatsRepository creates a new GormOrderStatsRepository.
// timeZone is the IANA zone hour buckets are reported in; empty means UTC.
func NewGormOrderStatsRepository(db *gorm.DB, timeZone string) *GormOrderStatsRepository {
	if timeZone == "" {
		timeZone = "UTC"
	}
	return &GormOrderStatsRepository{db: db, timeZone: timeZone}
}

func revenueStatuses() []string {
	src := order.RevenueStatuses()
	out := make([]string, len(src))
	for i, s := range src {
		out[i] = s.String()
	}
	return out
}

// SumRevenue returns total revenue for orders created within the range
func (r *GormOrderStatsRepository) SumRevenue(ctx context.Context, dateRange stats.DateRange) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}

	err := r.db.WithContext(ctx).Table("orders").
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("created_at BETWEEN ? AND ?", dateRange.Start, dateRange.End).
		Where("status IN ?", revenueStatuses()).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountOrders returns the number of orders created within the range,
// regardless of status
func (r *GormOrderStatsRepository) CountOrders(ctx context.Context, dateRange stats.DateRange) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("orders").
		Where("created_at BETWEEN ? AND ?", dateRange.Start, dateRange.End).
		Count(&count).Error
	return count, err
}

// CountOrdersByStatus returns a count per status for orders created within
// the range. Statuses with no orders are backfilled with zero.
func (r *GormOrderStatsRepository) CountOrdersByStatus(ctx context.Context, dateRange stats.DateRange) (map[order.Status]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var rows []statusCount
	err := r.db.WithContext(ctx).Table("orders").
		Select("status, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", dateRange.Start, dateRange.End).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[order.Status]int64, len(order.AllStatuses()))
	for _, st := range order.AllStatuses() {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[order.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// RevenueSeries returns sparse revenue buckets for the range, in ascending
// key order. Day buckets are keyed YYYY-MM-DD, month buckets YYYY-MM.
func (r *GormOrderStatsRepository) RevenueSeries(ctx context.Context, dateRange stats.DateRange, granularity stats.Granularity) ([]stats.RevenueBucket, error) {
	format := "YYYY-MM-DD"
	if granularity == stats.GranularityMonth {
		format = "YYYY-MM"
	}

	type bucketRow struct {
		Key        string
		Revenue    decimal.Decimal
		OrderCount int64
	}

	var rows []bucketRow
	err := r.db.WithContext(ctx).Table("orders").
		Select("to_char(created_at, ?) as key, COALESCE(SUM(total_amount), 0) as revenue, COUNT(*) as order_count", format).
		Where("created_at BETWEEN ? AND ?", dateRange.Start, dateRange.End).
		Where("status IN ?", revenueStatuses()).
		Group("key").
		Order("key ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]stats.RevenueBucket, len(rows))
	for i, row := range rows {
		buckets[i] = stats.RevenueBucket{
			Key:        row.Key,
			Revenue:    row.Revenue,
			OrderCount: row.OrderCount,
		}
	}
	return buckets, nil
}

// OrdersByHour returns sparse hour buckets for orders created within the
// range, in ascending hour order. Hours are taken in the reporting time
// zone, not the database session zone.
func (r *GormOrderStatsRepository) OrdersByHour(ctx context.Context, dateRange stats.DateRange) ([]stats.HourBucket, error) {
	type hourRow struct {
		Hour       int
		OrderCount int64
	}

	var rows []hourRow
	err := r.db.WithContext(ctx).Table("orders").
		Select("EXTRACT(HOUR FROM created_at AT TIME ZONE ?)::int as hour, COUNT(*) as order_count", r.timeZone).
		Where("created_at BETWEEN ? AND ?", dateRange.Start, dateRange.End).
		Group("hour").
		Order("hour ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]stats.HourBucket, len(rows))
	for i, row := range rows {
		buckets[i] = stats.HourBucket{Hour: row.Hour, OrderCount: row.OrderCount}
	}
	return buckets, nil
}

// CountCustomersWithOrders returns how many distinct customers placed at
// least one order within the range
func (r *GormOrderStatsRepository) CountCustomersWithOrders(ctx context.Context, dateRange stats.DateRange) (int64, error) {
	var result struct {
		Count int64
	}
	err := r.db.WithContext(ctx).Table("orders").
		Select("COUNT(DISTINCT customer_id) as count").
		Where("created_at BETWEEN ? AND ?", dateRange.Start, dateRange.End).
		Scan(&result).Error
	return result.Count, err
}

// TopProducts ranks products by units sold within the range
func (r *GormOrderStatsRepository) TopProducts(ctx context.Context, dateRange stats.DateRange, limit int) ([]stats.TopProduct, error) {
	type productRow struct {
		ProductID  uuid.UUID
		Name       string
		UnitsSold  int64
		Revenue    decimal.Decimal
		ViewCount  int64
		StockLevel int
	}

	var rows []productRow
	err := r.db.WithContext(ctx).Table("order_items oi").
		Select(`
			oi.product_id as product_id,
			p.name as name,
			COALESCE(SUM(oi.quantity), 0) as units_sold,
			COALESCE(SUM(oi.amount), 0) as revenue,
			p.view_count as view_count,
			p.stock_quantity as stock_level
		`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("o.created_at BETWEEN ? AND ?", dateRange.Start, dateRange.End).
		Where("o.status IN ?", revenueStatuses()).
		Group("oi.product_id, p.name, p.view_count, p.stock_quantity").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]stats.TopProduct, len(rows))
	for i, row := range rows {
		out[i] = stats.TopProduct{
			ProductID:  row.ProductID,
			Name:       row.Name,
			UnitsSold:  row.UnitsSold,
			Revenue:    row.Revenue,
			ViewCount:  row.ViewCount,
			StockLevel: row.StockLevel,
		}
	}
	return out, nil
}

// TopCustomers ranks customers by total spent within the range
func (r *GormOrderStatsRepository) TopCustomers(ctx context.Context, dateRange stats.DateRange, limit int) ([]stats.TopCustomer, error) {
	type customerRow struct {
		CustomerID uuid.UUID
		Name       string
		Email      string
		OrderCount int64
		TotalSpent decimal.Decimal
	}

	var rows []customerRow
	err := r.db.WithContext(ctx).Table("orders o").
		Select(`
			o.customer_id as customer_id,
			u.name as name,
			u.email as email,
			COUNT(o.id) as order_count,
			COALESCE(SUM(o.total_amount), 0) as total_spent
		`).
		Joins("JOIN users u ON u.id = o.customer_id").
		Where("o.created_at BETWEEN ? AND ?", dateRange.Start, dateRange.End).
		Where("o.status IN ?", revenueStatuses()).
		Group("o.customer_id, u.name, u.email").
		Order("total_spent DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]stats.TopCustomer, len(rows))
	for i, row := range rows {
		out[i] = stats.TopCustomer{
			CustomerID: row.CustomerID,
			Name:       row.Name,
			Email:      row.Email,
			OrderCount: row.OrderCount,
			TotalSpent: row.TotalSpent,
		}
	}
	return out, nil
}

// CategoryPerformance aggregates sales per category within the range,
// ordered by revenue descending. A limit of zero or less returns every
// category.
func (r *GormOrderStatsRepository) CategoryPerformance(ctx context.Context, dateRange stats.DateRange, limit int) ([]stats.CategoryPerformance, error) {
	type categoryRow struct {
		CategoryID   uuid.UUID
		CategoryName string
		ProductCount int64
		UnitsSold    int64
		Revenue      decimal.Decimal
	}

	query := r.db.WithContext(ctx).Table("categories c").
		Select(`
			c.id as category_id,
			c.name as category_name,
			COUNT(DISTINCT p.id) as product_count,
			COALESCE(SUM(oi.quantity), 0) as units_sold,
			COALESCE(SUM(oi.amount), 0) as revenue
		`).
		Joins("LEFT JOIN products p ON p.category_id = c.id").
		Joins(`LEFT JOIN order_items oi ON oi.product_id = p.id AND oi.order_id IN (
			SELECT id FROM orders WHERE created_at BETWEEN ? AND ? AND status IN ?
		)`, dateRange.Start, dateRange.End, revenueStatuses()).
		Group("c.id, c.name").
		Order("revenue DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []categoryRow
	err := query.Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]stats.CategoryPerformance, len(rows))
	for i, row := range rows {
		out[i] = stats.CategoryPerformance{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			ProductCount: row.ProductCount,
			UnitsSold:    row.UnitsSold,
			Revenue:      row.Revenue,
		}
	}
	return out, nil
}
