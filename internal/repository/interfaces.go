package repository

import (
	"context"
	"time"

	"github.com/yurieos/yurie-search/internal/domain"
)

// SearchRecord - одна строка архива: источник, найденный по запросу
type SearchRecord struct {
	ID        int64
	Query     string
	Provider  string
	URL       string
	Title     string
	Quality   float64
	CreatedAt time.Time
}

// HistoryRepository - опциональный архив результатов поиска. Пишется в
// фоне после агрегации и никогда не влияет на путь запроса.
type HistoryRepository interface {
	RecordBatch(ctx context.Context, query string, results []domain.UnifiedSearchResult) error
	RecentByProvider(ctx context.Context, provider string, limit int) ([]SearchRecord, error)
	CountByProvider(ctx context.Context, provider string) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
