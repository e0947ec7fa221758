package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"lamed-game-service/internal/domain"
	"lamed-game-service/internal/infra/memory"
)

// ContentRepository caches content pools in Redis (hash per category) and
// falls back to a loader on cache miss.
// Items are stored as: HSET content:{category}:items {itemID} {json}
type ContentRepository struct {
	client *redis.Client
	loader memory.ContentLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewContentRepository(client *redis.Client, loader memory.ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) GetPool(ctx context.Context, category domain.Category) ([]domain.ContentItem, error) {
	if category.All() {
		category = domain.CategoryAll
	}
	key := r.itemsKey(category)

	cached, err := r.client.HGetAll(ctx, key).Result()
	if err == nil && len(cached) > 0 {
		return poolFromCache(cached), nil
	}

	result, err, _ := r.sf.Do(string(category), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := r.client.HGetAll(ctx, key).Result()
		if err == nil && len(cached) > 0 {
			return poolFromCache(cached), nil
		}

		items, err := r.loader.LoadPool(ctx, category)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for _, item := range items {
			raw, err := json.Marshal(item)
			if err != nil {
				continue
			}
			pipe.HSet(ctx, key, item.ID, raw)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.ContentItem), nil
}

func (r *ContentRepository) itemsKey(category domain.Category) string {
	return "content:" + string(category) + ":items"
}

func poolFromCache(cached map[string]string) []domain.ContentItem {
	items := make([]domain.ContentItem, 0, len(cached))
	for id, raw := range cached {
		var item domain.ContentItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			continue
		}
		if item.ID == "" {
			item.ID = id
		}
		items = append(items, item)
	}
	return items
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
