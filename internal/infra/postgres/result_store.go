package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"lamed-game-service/internal/domain"
)

// ResultStore appends completed results to Postgres and serves ranked
// leaderboards. Each session is one row; best-per-user aggregation
// happens in the top-N query.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) AppendResult(ctx context.Context, result domain.GameResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO game_results (user_id, game_tag, metric_value, elapsed_seconds, score_percent, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		result.UserID, result.GameTag, result.MetricValue, result.ElapsedSeconds, result.ScorePercent, result.CompletedAt)
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

func (s *ResultStore) TopEntries(ctx context.Context, gameTag string, order domain.RankOrder, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT user_id, MAX(metric_value) AS best, COUNT(*)
		 FROM game_results WHERE game_tag=$1 GROUP BY user_id ORDER BY best DESC LIMIT $2`
	if order == domain.RankAscending {
		query = `SELECT user_id, MIN(metric_value) AS best, COUNT(*)
		 FROM game_results WHERE game_tag=$1 GROUP BY user_id ORDER BY best ASC LIMIT $2`
	}

	rows, err := s.pool.Query(ctx, query, gameTag, limit)
	if err != nil {
		return nil, fmt.Errorf("top entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.MetricValue, &entry.AttemptCount); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top entries: %w", err)
	}
	return entries, nil
}
