package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/stats"
)

// GormProductStatsRepository implements stats.ProductStatsRepository using GORM
type GormProductStatsRepository struct {
	db *gorm.DB
}

// NewGormProductStatsRepository creates a new GormProductStatsRepository
func NewGormProductStatsRepository(db *gorm.DB) *GormProductStatsRepository {
	return &GormProductStatsRepository{db: db}
}

// CountByStockBand partitions products into stock bands in a single query
func (r *GormProductStatsRepository) CountByStockBand(ctx context.Context, lowStockThreshold int) (stats.StockBandCounts, error) {
	var result struct {
		Total      int64
		InStock    int64
		LowStock   int64
		OutOfStock int64
	}

	err := r.db.WithContext(ctx).Table("products").
		Select(`
			COUNT(*) as total,
			COUNT(*) FILTER (WHERE stock_quantity > ?) as in_stock,
			COUNT(*) FILTER (WHERE stock_quantity > 0 AND stock_quantity <= ?) as low_stock,
			COUNT(*) FILTER (WHERE stock_quantity <= 0) as out_of_stock
		`, lowStockThreshold, lowStockThreshold).
		Scan(&result).Error
	if err != nil {
		return stats.StockBandCounts{}, err
	}

	return stats.StockBandCounts{
		Total:      result.Total,
		InStock:    result.InStock,
		LowStock:   result.LowStock,
		OutOfStock: result.OutOfStock,
	}, nil
}

// TotalViews returns the sum of product view counters
func (r *GormProductStatsRepository) TotalViews(ctx context.Context) (int64, error) {
	var result struct {
		Total int64
	}
	err := r.db.WithContext(ctx).Table("products").
		Select("COALESCE(SUM(view_count), 0) as total").
		Scan(&result).Error
	return result.Total, err
}
