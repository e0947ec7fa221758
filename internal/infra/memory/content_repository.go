package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"lamed-game-service/internal/domain"
)

// ContentLoader fetches a content pool from a backing store (e.g., a
// vocabulary table).
type ContentLoader interface {
	LoadPool(ctx context.Context, category domain.Category) ([]domain.ContentItem, error)
}

// ContentRepository caches pools per category with TTL to avoid repeated
// DB hits while many sessions start from the same category.
type ContentRepository struct {
	loader ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[domain.Category]cachedPool
}

type cachedPool struct {
	items     []domain.ContentItem
	expiresAt time.Time
}

func NewContentRepository(loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Category]cachedPool),
	}
}

func (r *ContentRepository) GetPool(ctx context.Context, category domain.Category) ([]domain.ContentItem, error) {
	if category.All() {
		category = domain.CategoryAll
	}
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[category]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.items, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(string(category), func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[category]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.items, nil
		}
		r.mu.RUnlock()

		items, err := r.loader.LoadPool(ctx, category)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[category] = cachedPool{
			items:     items,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.ContentItem), nil
}

// StaticContentLoader is a simple loader backed by an in-memory slice
// (useful for tests/demos).
type StaticContentLoader struct {
	items []domain.ContentItem
}

func NewStaticContentLoader(items []domain.ContentItem) *StaticContentLoader {
	return &StaticContentLoader{items: items}
}

func (l *StaticContentLoader) LoadPool(_ context.Context, category domain.Category) ([]domain.ContentItem, error) {
	if category.All() {
		return l.items, nil
	}
	var filtered []domain.ContentItem
	for _, item := range l.items {
		if item.Category == category {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == 0 {
		return nil, domain.ErrContentNotFound
	}
	return filtered, nil
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
