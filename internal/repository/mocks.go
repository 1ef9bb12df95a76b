package repository

import (
	"context"
	"sync"
	"time"

	"github.com/yurieos/yurie-search/internal/domain"
)

type MockHistoryRepository struct {
	mu      sync.RWMutex
	records []SearchRecord
	nextID  int64

	RecordErr error
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{nextID: 1}
}

func (m *MockHistoryRepository) RecordBatch(ctx context.Context, query string, results []domain.UnifiedSearchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RecordErr != nil {
		return m.RecordErr
	}

	for _, res := range results {
		for _, s := range res.Sources {
			m.records = append(m.records, SearchRecord{
				ID:        m.nextID,
				Query:     query,
				Provider:  res.Provider.String(),
				URL:       s.URL,
				Title:     s.Title,
				Quality:   s.Quality,
				CreatedAt: time.Now(),
			})
			m.nextID++
		}
	}
	return nil
}

func (m *MockHistoryRepository) RecentByProvider(ctx context.Context, provider string, limit int) ([]SearchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []SearchRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].Provider == provider {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *MockHistoryRepository) CountByProvider(ctx context.Context, provider string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, r := range m.records {
		if r.Provider == provider {
			count++
		}
	}
	return count, nil
}

func (m *MockHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []SearchRecord
	var deleted int64
	for _, r := range m.records {
		if r.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

// Len - всего записей, для тестов
func (m *MockHistoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
