package memory

import (
	"context"
	"testing"
	"time"

	"lamed-game-service/internal/domain"
)

func TestResultStoreRanksBestPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	record := func(user string, metric int) {
		t.Helper()
		err := store.AppendResult(ctx, domain.GameResult{
			UserID:      user,
			GameTag:     "memory-match",
			MetricValue: metric,
			CompletedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	record("u1", 42) // slow first try
	record("u1", 30) // improves
	record("u2", 35)

	entries, err := store.TopEntries(ctx, "memory-match", domain.RankAscending, 10)
	if err != nil {
		t.Fatalf("top entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserID != "u1" || entries[0].MetricValue != 30 || entries[0].AttemptCount != 2 {
		t.Fatalf("expected u1 leading with best 30 over 2 attempts, got %+v", entries[0])
	}
	if entries[1].UserID != "u2" || entries[1].MetricValue != 35 {
		t.Fatalf("expected u2 second with 35, got %+v", entries[1])
	}
}

func TestResultStoreDescendingOrder(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	for _, r := range []struct {
		user   string
		metric int
	}{{"u1", 60}, {"u1", 80}, {"u2", 100}} {
		if err := store.AppendResult(ctx, domain.GameResult{
			UserID: r.user, GameTag: "multiple-choice", MetricValue: r.metric,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.TopEntries(ctx, "multiple-choice", domain.RankDescending, 10)
	if err != nil {
		t.Fatalf("top entries: %v", err)
	}
	if entries[0].UserID != "u2" || entries[0].MetricValue != 100 {
		t.Fatalf("expected u2 leading with 100, got %+v", entries[0])
	}
	if entries[1].UserID != "u1" || entries[1].MetricValue != 80 {
		t.Fatalf("expected u1 best of 80, got %+v", entries[1])
	}
}

func TestResultStoreEmptyAndLimit(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	entries, err := store.TopEntries(ctx, "hangman", domain.RankAscending, 10)
	if err != nil {
		t.Fatalf("top entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries for empty store, got %d", len(entries))
	}

	for i := 0; i < 5; i++ {
		_ = store.AppendResult(ctx, domain.GameResult{
			UserID: string(rune('a' + i)), GameTag: "hangman", MetricValue: i,
		})
	}
	entries, _ = store.TopEntries(ctx, "hangman", domain.RankAscending, 3)
	if len(entries) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(entries))
	}
}
