package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/stats"
)

// GormUserStatsRepository implements stats.UserStatsRepository using GORM
type GormUserStatsRepository struct {
	db *gorm.DB
}

// NewGormUserStatsRepository creates a new GormUserStatsRepository
func NewGormUserStatsRepository(db *gorm.DB) *GormUserStatsRepository {
	return &GormUserStatsRepository{db: db}
}

// CountCustomers returns the total number of customer accounts
func (r *GormUserStatsRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("users").
		Where("role = ?", identity.RoleCustomer).
		Count(&count).Error
	return count, err
}

// CountNewCustomers returns customer accounts created within the range
func (r *GormUserStatsRepository) CountNewCustomers(ctx context.Context, dateRange stats.DateRange) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("users").
		Where("role = ?", identity.RoleCustomer).
		Where("created_at BETWEEN ? AND ?", dateRange.Start, dateRange.End).
		Count(&count).Error
	return count, err
}
