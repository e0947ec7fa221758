package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"lamed-game-service/internal/domain"
	"lamed-game-service/internal/infra/memory"
)

func TestContentRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		ContentLoader: memory.NewStaticContentLoader(sampleItems()),
	}
	repo := NewContentRepository(client, loader, time.Minute)

	pool, err := repo.GetPool(context.Background(), "greetings")
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 items, got %d", len(pool))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit redis, loader not incremented.
	pool, err = repo.GetPool(context.Background(), "greetings")
	if err != nil {
		t.Fatalf("get pool 2: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 cached items, got %d", len(pool))
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.ContentLoader
	calls int
}

func (l *countingLoader) LoadPool(ctx context.Context, category domain.Category) ([]domain.ContentItem, error) {
	l.calls++
	return l.ContentLoader.LoadPool(ctx, category)
}

func sampleItems() []domain.ContentItem {
	return []domain.ContentItem{
		{ID: "w1", Primary: "שלום", Secondary: "hello", Category: "greetings"},
		{ID: "w2", Primary: "תודה", Secondary: "thank you", Category: "greetings"},
		{ID: "w3", Primary: "מים", Secondary: "water", Category: "food"},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
