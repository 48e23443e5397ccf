// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/pkg/models"
)

// Cache stores fetched pages so repeated scans of the same URL inside the
// TTL window do not hit the network again.
type Cache interface {
	// Get retrieves a cached page by key.
	Get(key string) (*models.Page, bool)

	// Set stores a page with the specified TTL. An existing key is updated.
	Set(key string, page *models.Page, ttl time.Duration) error

	// Delete removes a cached page by key. Missing keys are not an error.
	Delete(key string) error

	// Clear removes all cached pages.
	Clear() error

	// Close stops background maintenance.
	Close()
}

// cacheEntry is one cached page with its expiry and key for LRU tracking
type cacheEntry struct {
	Page      *models.Page
	ExpiresAt time.Time
	Key       string
}

// MemoryCache implements in-memory page caching with LRU eviction bounded
// by an approximate byte budget.
type MemoryCache struct {
	store   map[string]*list.Element
	lruList *list.List
	mu      sync.Mutex
	maxSize int64
	size    int64
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryCache creates a new in-memory cache with LRU eviction
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 100 * 1024 * 1024 // Default: 100MB
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		ctx:     ctx,
		cancel:  cancel,
	}

	go c.cleanupExpired()

	return c
}

// entrySize approximates the memory footprint of a cached page
func entrySize(p *models.Page) int64 {
	// ~1KB overhead for struct, maps and slices
	return int64(len(p.HTML)+len(p.Title)) + 1024
}

// Get retrieves a cached page and marks it most recently used
func (mc *MemoryCache) Get(key string) (*models.Page, bool) {
	mc.mu.Lock()
	element, exists := mc.store[key]
	if !exists {
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)

	if time.Now().After(entry.ExpiresAt) {
		mc.mu.Unlock()
		go mc.Delete(key)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.mu.Unlock()

	log.Debug().Str("key", key).Msg("Page cache hit")
	return entry.Page, true
}

// Set stores a page in cache with TTL
func (mc *MemoryCache) Set(key string, page *models.Page, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	size := entrySize(page)

	if element, exists := mc.store[key]; exists {
		oldEntry := element.Value.(*cacheEntry)
		mc.size -= entrySize(oldEntry.Page)

		element.Value = &cacheEntry{
			Page:      page,
			ExpiresAt: time.Now().Add(ttl),
			Key:       key,
		}
		mc.lruList.MoveToFront(element)
		mc.size += size
		return nil
	}

	for mc.size+size > mc.maxSize && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	entry := &cacheEntry{
		Page:      page,
		ExpiresAt: time.Now().Add(ttl),
		Key:       key,
	}

	mc.store[key] = mc.lruList.PushFront(entry)
	mc.size += size

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int64("size_bytes", size).
		Msg("Cached page")

	return nil
}

// Delete removes a cached page
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		entry := element.Value.(*cacheEntry)
		mc.lruList.Remove(element)
		delete(mc.store, key)
		mc.size -= entrySize(entry.Page)
	}

	return nil
}

// Clear removes all cached pages
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.size = 0
	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// evictLRU removes the least recently used entry (lock must be held)
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}

	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
	mc.size -= entrySize(entry.Page)

	log.Debug().Str("key", entry.Key).Msg("Evicted page from cache (LRU)")
}

// cleanupExpired periodically removes expired entries
func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				entry := element.Value.(*cacheEntry)
				if now.After(entry.ExpiresAt) {
					mc.lruList.Remove(element)
					delete(mc.store, entry.Key)
					mc.size -= entrySize(entry.Page)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			return
		}
	}
}
