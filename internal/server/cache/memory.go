package cache

import (
	"context"
	"sync"
	"time"
)

// memoryEntry хранит значение и срок его жизни
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache реализует Cache в памяти процесса.
// Используется в тестах и как fallback при запуске без Redis.
type MemoryCache struct {
	entries  map[string]memoryEntry
	cleanupC chan struct{}
	mu       sync.RWMutex
}

// NewMemoryCache creates an in-process cache with background cleanup
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		entries:  make(map[string]memoryEntry),
		cleanupC: make(chan struct{}),
	}

	// Периодически удаляем протухшие записи, чтобы не копить память
	go c.cleanup()

	return c
}

// cleanup периодически удаляет expired записи
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.cleanupC:
			return
		}
	}
}

// removeExpired удаляет все записи с истекшим сроком
func (c *MemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Stop останавливает cleanup goroutine
func (c *MemoryCache) Stop() {
	close(c.cleanupC)
}

// Get returns the value stored under key
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(entry.expiresAt) {
		return nil, ErrCacheMiss
	}

	return entry.value, nil
}

// Set stores value under key for ttl
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}
