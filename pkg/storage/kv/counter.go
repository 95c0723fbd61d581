package kv

import (
	"context"
	"sync"
	"time"
)

// Counter increments short-lived counters, such as rate limit windows.
type Counter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type counterEntry struct {
	count   int64
	expires time.Time
}

// MemoryCounter is a process-local Counter with fixed windows.
type MemoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]counterEntry
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{now: time.Now, entries: make(map[string]counterEntry)}
}

// IncrWithTTL starts a new window on the first increment or once the previous
// window has lapsed.
func (c *MemoryCounter) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, ok := c.entries[key]
	if !ok || (!entry.expires.IsZero() && !now.Before(entry.expires)) {
		entry = counterEntry{}
		if ttl > 0 {
			entry.expires = now.Add(ttl)
		}
	}
	entry.count++
	c.entries[key] = entry

	if len(c.entries) > 1024 {
		c.sweep(now)
	}
	return entry.count, nil
}

func (c *MemoryCounter) sweep(now time.Time) {
	for key, entry := range c.entries {
		if !entry.expires.IsZero() && !now.Before(entry.expires) {
			delete(c.entries, key)
		}
	}
}
