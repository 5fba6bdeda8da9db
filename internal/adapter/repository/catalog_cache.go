package repository

import (
	"context"
	"sync"
	"time"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/repository"
)

// CachedCatalog decorates a CatalogRepository with a short-lived per-list
// read cache. Catalog content changes rarely relative to how often queue and
// test composition re-read it, so a coarse time-based expiry is enough.
type CachedCatalog struct {
	inner repository.CatalogRepository
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[int64]catalogCacheEntry
}

type catalogCacheEntry struct {
	items     []entity.VocabItem
	expiresAt time.Time
}

// NewCachedCatalog wraps inner with a TTL cache.
func NewCachedCatalog(inner repository.CatalogRepository, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		inner:   inner,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[int64]catalogCacheEntry),
	}
}

func (c *CachedCatalog) ListItems(ctx context.Context, listID int64) ([]entity.VocabItem, error) {
	now := c.clock()

	c.mu.Lock()
	entry, ok := c.entries[listID]
	c.mu.Unlock()
	if ok && now.Before(entry.expiresAt) {
		return append([]entity.VocabItem(nil), entry.items...), nil
	}

	items, err := c.inner.ListItems(ctx, listID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[listID] = catalogCacheEntry{
		items:     append([]entity.VocabItem(nil), items...),
		expiresAt: now.Add(c.ttl),
	}
	c.mu.Unlock()
	return items, nil
}
