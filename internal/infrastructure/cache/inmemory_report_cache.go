package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemoryReportCache implements ReportCache using an in-memory map.
// Suitable for single-instance deployments and testing.
type InMemoryReportCache struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryReportCache creates a new in-memory report cache. It starts a
// background goroutine that evicts expired entries.
func NewInMemoryReportCache() *InMemoryReportCache {
	c := &InMemoryReportCache{
		entries:  make(map[string]memoryEntry),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached payload for the key, with a hit flag
func (c *InMemoryReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.payload, true, nil
}

// Set stores the payload under the key with the given TTL
func (c *InMemoryReportCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Clear removes every cached report. Clearing an empty cache succeeds.
func (c *InMemoryReportCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]memoryEntry)
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryReportCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
	})
	c.wg.Wait()
	return nil
}

func (c *InMemoryReportCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *InMemoryReportCache) evictExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryReportCache implements ReportCache
var _ ReportCache = (*InMemoryReportCache)(nil)
