package inkpress

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eringen/inkpress/content"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("inkpress: not found")

// ContentCache keeps loaded collections in memory for a TTL. Slices returned
// by it are shared and must not be modified.
type ContentCache struct {
	mu      sync.RWMutex
	repo    *content.Repository
	ttl     time.Duration
	entries map[content.Type]cacheEntry
}

type cacheEntry struct {
	items   []content.Item
	fetched time.Time
}

// NewContentCache creates a ContentCache backed by repo.
func NewContentCache(repo *content.Repository, ttl time.Duration) *ContentCache {
	return &ContentCache{repo: repo, ttl: ttl, entries: make(map[content.Type]cacheEntry)}
}

func (c *ContentCache) valid(t content.Type) ([]content.Item, bool) {
	e, ok := c.entries[t]
	if !ok || time.Since(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.items, true
}

// Invalidate clears the cache so the next read reloads from disk.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[content.Type]cacheEntry)
	c.mu.Unlock()
}

// Items returns every item of type t, drafts and scheduled included. It
// tries a read lock first and only takes the write lock to reload.
func (c *ContentCache) Items(ctx context.Context, t content.Type) ([]content.Item, error) {
	c.mu.RLock()
	if items, ok := c.valid(t); ok {
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if items, ok := c.valid(t); ok {
		return items, nil
	}
	items, err := c.repo.Load(ctx, t)
	if err != nil {
		return nil, err
	}
	c.entries[t] = cacheEntry{items: items, fetched: time.Now()}
	return items, nil
}

// All returns posts, pages and reviews in that order.
func (c *ContentCache) All(ctx context.Context) ([]content.Item, error) {
	var all []content.Item
	for _, t := range content.Types {
		items, err := c.Items(ctx, t)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// Visible returns the items of type t that are published at now.
func (c *ContentCache) Visible(ctx context.Context, t content.Type, now time.Time) ([]content.Item, error) {
	items, err := c.Items(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]content.Item, 0, len(items))
	for _, it := range items {
		if it.VisibleAt(now) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Query applies opts to the cached collection of type t.
func (c *ContentCache) Query(ctx context.Context, t content.Type, opts content.QueryOptions, now time.Time) (content.Result, error) {
	if err := opts.Validate(); err != nil {
		return content.Result{}, err
	}
	items, err := c.Items(ctx, t)
	if err != nil {
		return content.Result{}, err
	}
	return content.Apply(items, opts, now)
}

// Get returns the first item of type t with slug, or ErrNotFound.
func (c *ContentCache) Get(ctx context.Context, t content.Type, slug string) (content.Item, error) {
	items, err := c.Items(ctx, t)
	if err != nil {
		return content.Item{}, err
	}
	item, ok := content.FindBySlug(items, slug)
	if !ok {
		return content.Item{}, ErrNotFound
	}
	return item, nil
}

// Search matches query against the visible items of types, all types when
// none are given.
func (c *ContentCache) Search(ctx context.Context, query string, now time.Time, types ...content.Type) ([]content.Item, error) {
	if len(types) == 0 {
		types = content.Types
	}
	var pool []content.Item
	for _, t := range types {
		items, err := c.Visible(ctx, t, now)
		if err != nil {
			return nil, err
		}
		pool = append(pool, items...)
	}
	return content.FilterSearch(pool, query), nil
}

// Tags returns the sorted, lowercased tags of the visible items of type t.
func (c *ContentCache) Tags(ctx context.Context, t content.Type, now time.Time) ([]string, error) {
	items, err := c.Visible(ctx, t, now)
	if err != nil {
		return nil, err
	}
	return CollectTags(items), nil
}

// CollectTags returns the unique lowercased tags of items, sorted.
func CollectTags(items []content.Item) []string {
	set := make(map[string]struct{})
	for _, it := range items {
		for _, t := range it.Tags {
			if tag := normalizeTag(t); tag != "" {
				set[tag] = struct{}{}
			}
		}
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
