package cache

import (
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// NewReportCache creates the report cache for the configured deployment.
// Redis is preferred so cached reports are shared across instances; when
// Redis is unreachable the cache degrades to in-memory with a warning
// rather than failing startup.
func NewReportCache(cfg config.RedisConfig, logger *zap.Logger) ReportCache {
	redisCache, err := NewRedisReportCache(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory report cache",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryReportCache()
	}

	logger.Info("Using Redis report cache", zap.String("addr", cfg.Addr()))
	return redisCache
}
