package memory

import (
	"context"
	"sort"
	"sync"

	"lamed-game-service/internal/domain"
)

// ResultStore keeps completed game results in memory and serves ranked
// leaderboards from them. Every completed session appends a new row;
// TopEntries aggregates the best metric per user.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]domain.GameResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string][]domain.GameResult),
	}
}

func (s *ResultStore) AppendResult(_ context.Context, result domain.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.GameTag] = append(s.results[result.GameTag], result)
	return nil
}

func (s *ResultStore) TopEntries(_ context.Context, gameTag string, order domain.RankOrder, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := make(map[string]*domain.LeaderboardEntry)
	for _, result := range s.results[gameTag] {
		entry, ok := best[result.UserID]
		if !ok {
			best[result.UserID] = &domain.LeaderboardEntry{
				UserID:       result.UserID,
				MetricValue:  result.MetricValue,
				AttemptCount: 1,
			}
			continue
		}
		entry.AttemptCount++
		if better(result.MetricValue, entry.MetricValue, order) {
			entry.MetricValue = result.MetricValue
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(best))
	for _, entry := range best {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].MetricValue != entries[j].MetricValue {
			return better(entries[i].MetricValue, entries[j].MetricValue, order)
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func better(candidate, current int, order domain.RankOrder) bool {
	if order == domain.RankAscending {
		return candidate < current
	}
	return candidate > current
}
