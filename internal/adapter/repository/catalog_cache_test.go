package repository

import (
	"context"
	"testing"
	"time"

	"github.com/eslsoft/leitbox/internal/entity"
)

type countingCatalog struct {
	calls int
	items []entity.VocabItem
	err   error
}

func (c *countingCatalog) ListItems(ctx context.Context, listID int64) ([]entity.VocabItem, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return append([]entity.VocabItem(nil), c.items...), nil
}

func TestCachedCatalogServesFromCacheWithinTTL(t *testing.T) {
	inner := &countingCatalog{items: []entity.VocabItem{{ID: 1, ListID: 7, Term: "ephemeral"}}}
	cache := NewCachedCatalog(inner, time.Minute)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	ctx := context.Background()
	for range 3 {
		items, err := cache.ListItems(ctx, 7)
		if err != nil {
			t.Fatalf("ListItems: %v", err)
		}
		if len(items) != 1 || items[0].Term != "ephemeral" {
			t.Fatalf("unexpected items: %+v", items)
		}
	}
	if inner.calls != 1 {
		t.Errorf("expected single upstream call, got %d", inner.calls)
	}
}

func TestCachedCatalogRefreshesAfterExpiry(t *testing.T) {
	inner := &countingCatalog{items: []entity.VocabItem{{ID: 1, ListID: 7}}}
	cache := NewCachedCatalog(inner, time.Minute)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	ctx := context.Background()
	if _, err := cache.ListItems(ctx, 7); err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	now = now.Add(time.Minute + time.Second)
	if _, err := cache.ListItems(ctx, 7); err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected refresh after expiry, got %d upstream calls", inner.calls)
	}
}

func TestCachedCatalogDoesNotCacheErrors(t *testing.T) {
	inner := &countingCatalog{err: entity.ErrListNotFound}
	cache := NewCachedCatalog(inner, time.Minute)

	ctx := context.Background()
	for range 2 {
		if _, err := cache.ListItems(ctx, 7); err != entity.ErrListNotFound {
			t.Fatalf("expected ErrListNotFound, got %v", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("errors must not be cached, got %d upstream calls", inner.calls)
	}
}

func TestCachedCatalogReturnsCopies(t *testing.T) {
	inner := &countingCatalog{items: []entity.VocabItem{{ID: 1, Term: "original"}}}
	cache := NewCachedCatalog(inner, time.Minute)

	ctx := context.Background()
	first, err := cache.ListItems(ctx, 7)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	first[0].Term = "mutated"

	second, err := cache.ListItems(ctx, 7)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if second[0].Term != "original" {
		t.Errorf("cache entry was mutated through returned slice")
	}
}
