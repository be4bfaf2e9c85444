package cache

import (
	"context"
	"time"
)

// ReportCache stores rendered report payloads keyed by report name and
// period. A miss is not an error: callers rebuild the report and Set it.
// Clear drops every cached report and is safe to call when the cache is
// already empty.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	Close() error
}

// Key builds a cache key from a report name and period token
func Key(report, period string) string {
	return report + ":" + period
}
