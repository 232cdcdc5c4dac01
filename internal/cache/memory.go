package cache

import (
	"context"
	"sync"

	"github.com/agdev-research/trials-cli/internal/model"
)

// MemoryCache is an in-memory Cache for tests. Safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*model.FitResult
}

// NewMemory returns an empty MemoryCache.
func NewMemory() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*model.FitResult)}
}

func (c *MemoryCache) Get(_ context.Context, key Key) (*model.FitResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[key.Digest()]
	return result, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, key Key, result *model.FitResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.Digest()] = result
	return nil
}

// Len reports the entry count.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
