package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/yurieos/yurie-search/internal/domain"
	"github.com/yurieos/yurie-search/internal/repository"
)

type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) RecordBatch(ctx context.Context, query string, results []domain.UnifiedSearchResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `
        INSERT INTO search_history (query, provider, url, title, quality)
        VALUES ($1, $2, $3, $4, $5)
    `

	for _, res := range results {
		for _, s := range res.Sources {
			if _, err := tx.Exec(ctx, insert,
				query,
				res.Provider.String(),
				s.URL,
				s.Title,
				s.Quality,
			); err != nil {
				return fmt.Errorf("insert record: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *HistoryRepo) RecentByProvider(ctx context.Context, provider string, limit int) ([]repository.SearchRecord, error) {
	const query = `
        SELECT id, query, provider, url, title, quality, created_at
        FROM search_history
        WHERE provider = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := r.db.Pool.Query(ctx, query, provider, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []repository.SearchRecord
	for rows.Next() {
		var rec repository.SearchRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Query,
			&rec.Provider,
			&rec.URL,
			&rec.Title,
			&rec.Quality,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

func (r *HistoryRepo) CountByProvider(ctx context.Context, provider string) (int, error) {
	const query = `SELECT COUNT(*) FROM search_history WHERE provider = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, provider).Scan(&count); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

func (r *HistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM search_history WHERE created_at < $1`

	tag, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return tag.RowsAffected(), nil
}
