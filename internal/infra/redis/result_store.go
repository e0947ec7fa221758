package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"lamed-game-service/internal/domain"
)

// ResultStore keeps leaderboards in Redis sorted sets. Each append
// updates two sets per game tag, one holding every user's lowest metric
// and one their highest, so a ranked read works for both best-time
// (ascending) and best-score (descending) games:
//
//	ZADD LT lb:{gameTag}:min {metric} {userID}
//	ZADD GT lb:{gameTag}:max {metric} {userID}
//	HINCRBY lb:{gameTag}:attempts {userID} 1
type ResultStore struct {
	client *redis.Client
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

func (s *ResultStore) AppendResult(ctx context.Context, result domain.GameResult) error {
	member := redis.Z{
		Score:  float64(result.MetricValue),
		Member: result.UserID,
	}
	pipe := s.client.Pipeline()
	pipe.ZAddLT(ctx, s.minKey(result.GameTag), member)
	pipe.ZAddGT(ctx, s.maxKey(result.GameTag), member)
	pipe.HIncrBy(ctx, s.attemptsKey(result.GameTag), result.UserID, 1)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *ResultStore) TopEntries(ctx context.Context, gameTag string, order domain.RankOrder, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		ranked []redis.Z
		err    error
	)
	if order == domain.RankAscending {
		ranked, err = s.client.ZRangeWithScores(ctx, s.minKey(gameTag), 0, int64(limit-1)).Result()
	} else {
		ranked, err = s.client.ZRevRangeWithScores(ctx, s.maxKey(gameTag), 0, int64(limit-1)).Result()
	}
	if err != nil {
		return nil, err
	}

	attempts, err := s.client.HGetAll(ctx, s.attemptsKey(gameTag)).Result()
	if err != nil {
		attempts = map[string]string{}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for _, z := range ranked {
		userID, _ := z.Member.(string)
		count := 1
		if raw, ok := attempts[userID]; ok {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				count = n
			}
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:       userID,
			MetricValue:  int(z.Score),
			AttemptCount: count,
		})
	}
	return entries, nil
}

func (s *ResultStore) minKey(gameTag string) string {
	return "lb:" + gameTag + ":min"
}

func (s *ResultStore) maxKey(gameTag string) string {
	return "lb:" + gameTag + ":max"
}

func (s *ResultStore) attemptsKey(gameTag string) string {
	return "lb:" + gameTag + ":attempts"
}
