package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yurieos/yurie-search/internal/domain"
)

const maxQueryLength = 2000

// Search - запрос целиком: классификация, fan-out по кандидатам, сбор
// уцелевших. Частичный отказ - норма, ошибки отдельных провайдеров
// наружу не выходят.
func (o *Orchestrator) Search(ctx context.Context, query string, limit int) (*domain.AggregatedResult, error) {
	start := time.Now()

	if o.metrics != nil {
		o.metrics.IncQueriesInFlight()
		defer o.metrics.DecQueriesInFlight()
	}

	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if len(query) > maxQueryLength {
		return nil, domain.ErrQueryTooLong
	}

	qc := o.classifier.Classify(query)

	agg := &domain.AggregatedResult{
		Query:          query,
		Classification: qc,
	}

	if len(qc.Candidates) == 0 {
		if o.metrics != nil {
			o.metrics.RecordQuery(string(qc.Category), "no_candidates", time.Since(start))
		}
		return agg, nil
	}

	o.logger.Info("processing federated query",
		zap.String("category", string(qc.Category)),
		zap.Int("candidates", len(qc.Candidates)),
		zap.Int("query_length", len(query)),
	)

	agg.Results, agg.Failed = o.SearchProviders(ctx, qc.Candidates, query, limit)
	for i := range agg.Results {
		agg.Results[i].Classification = qc.Category
	}

	status := "success"
	if len(agg.Results) == 0 {
		status = "all_failed"
	}
	if o.metrics != nil {
		o.metrics.RecordQuery(string(qc.Category), status, time.Since(start))
	}

	o.logger.Info("federated query processed",
		zap.String("category", string(qc.Category)),
		zap.Int("providers_succeeded", len(agg.Results)),
		zap.Int("providers_failed", len(agg.Failed)),
	)

	// в фоне пишем в архив, путь запроса от этого не зависит
	if o.history != nil && len(agg.Results) > 0 {
		results := agg.Results
		go func() {
			if err := o.history.RecordBatch(context.Background(), query, results); err != nil {
				o.logger.Warn("failed to record search history", zap.Error(err))
			}
		}()
	}

	return agg, nil
}

// SearchProviders опрашивает провайдеров конкурентно и ждет пока все
// не рассчитаются. Упавший провайдер попадает в список отказов и не
// мешает остальным.
func (o *Orchestrator) SearchProviders(ctx context.Context, providers []domain.ProviderName, query string, limit int) ([]domain.UnifiedSearchResult, []domain.ProviderFailure) {
	if len(providers) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	var results []domain.UnifiedSearchResult
	var failed []domain.ProviderFailure

	g := new(errgroup.Group)

	for _, name := range providers {
		name := name
		g.Go(func() error {
			res, err := o.SearchProvider(ctx, name, query, limit)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				o.logger.Warn("provider excluded from aggregation",
					zap.String("provider", name.String()),
					zap.Error(err),
				)
				failed = append(failed, domain.ProviderFailure{Provider: name, Err: err.Error()})
				return nil
			}

			results = append(results, *res)
			return nil
		})
	}

	g.Wait()
	return results, failed
}
