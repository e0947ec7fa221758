package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lamed-game-service/internal/domain"
)

// ContentLoader loads vocabulary pools from Postgres.
type ContentLoader struct {
	pool *pgxpool.Pool
}

func NewContentLoader(pool *pgxpool.Pool) *ContentLoader {
	return &ContentLoader{pool: pool}
}

func (l *ContentLoader) LoadPool(ctx context.Context, category domain.Category) ([]domain.ContentItem, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if category.All() {
		rows, err = l.pool.Query(ctx,
			`SELECT id, primary_text, secondary_text, COALESCE(annotation, ''), category FROM vocabulary_items`)
	} else {
		rows, err = l.pool.Query(ctx,
			`SELECT id, primary_text, secondary_text, COALESCE(annotation, ''), category FROM vocabulary_items WHERE category=$1`,
			string(category))
	}
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		var item domain.ContentItem
		var cat string
		if err := rows.Scan(&item.ID, &item.Primary, &item.Secondary, &item.Annotation, &cat); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Category = domain.Category(cat)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrContentNotFound
	}
	return items, nil
}
