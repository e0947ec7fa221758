package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"lamed-game-service/internal/domain"
)

func TestResultStoreKeepsBestPerUser(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewResultStore(newClient(mr))

	record := func(user string, metric int) {
		t.Helper()
		if err := store.AppendResult(ctx, domain.GameResult{
			UserID: user, GameTag: "memory-match", MetricValue: metric,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	record("u1", 42)
	record("u1", 30)
	record("u2", 35)

	entries, err := store.TopEntries(ctx, "memory-match", domain.RankAscending, 10)
	if err != nil {
		t.Fatalf("top entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserID != "u1" || entries[0].MetricValue != 30 || entries[0].AttemptCount != 2 {
		t.Fatalf("expected u1 best 30 over 2 attempts, got %+v", entries[0])
	}
}

func TestResultStoreDescendingReadsMaxSet(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewResultStore(newClient(mr))

	for _, r := range []struct {
		user   string
		metric int
	}{{"u1", 60}, {"u1", 80}, {"u2", 40}} {
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
	if entries[0].UserID != "u1" || entries[0].MetricValue != 80 {
		t.Fatalf("expected u1 leading with 80, got %+v", entries[0])
	}
	if entries[1].UserID != "u2" || entries[1].MetricValue != 40 {
		t.Fatalf("expected u2 second with 40, got %+v", entries[1])
	}
}

func TestResultStoreEmptyLeaderboard(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewResultStore(newClient(mr))
	entries, err := store.TopEntries(context.Background(), "hangman", domain.RankAscending, 10)
	if err != nil {
		t.Fatalf("top entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %d entries", len(entries))
	}
}
