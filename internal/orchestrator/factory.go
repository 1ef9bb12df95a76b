package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yurieos/yurie-search/internal/cache"
	"github.com/yurieos/yurie-search/internal/domain"
	"github.com/yurieos/yurie-search/internal/retry"
	"github.com/yurieos/yurie-search/internal/search"
)

// SearchProvider - стандартизированная операция поиска одного
// провайдера: кеш, дедупликация, breaker, retry, нормализация.
// Порядок фиксированный: свежее значение из кеша закорачивает все
// остальное, дедупликация накрывает breaker и retry целиком.
func (o *Orchestrator) SearchProvider(ctx context.Context, name domain.ProviderName, query string, limit int) (*domain.UnifiedSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if _, ok := o.registry.Definition(name); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	if limit <= 0 {
		limit = o.config.DefaultLimit
	}

	key := cache.Key(query, name.String(), limit)

	if cached, ok := o.cache.Get(key); ok {
		if res, ok := cached.(domain.UnifiedSearchResult); ok {
			if o.metrics != nil {
				o.metrics.RecordCacheHit()
			}
			res.Metadata.FromCache = true
			return &res, nil
		}
	}
	if o.metrics != nil {
		o.metrics.RecordCacheMiss()
	}

	v, shared, err := o.dedup.Execute(key, func() (interface{}, error) {
		return o.fetch(ctx, name, query, limit, key)
	})
	if shared && o.metrics != nil {
		o.metrics.RecordDedupShared()
	}
	if err != nil {
		return nil, err
	}

	res := v.(domain.UnifiedSearchResult)
	return &res, nil
}

// fetch - участок под дедупликацией: breaker, retry, сам вызов,
// нормализация и запись в кеш
func (o *Orchestrator) fetch(ctx context.Context, name domain.ProviderName, query string, limit int, key string) (interface{}, error) {
	br := o.breakers.Get(name.String())

	if err := br.Allow(); err != nil {
		// отказ открытого breaker'а не считается новым сбоем
		if o.metrics != nil {
			o.metrics.RecordBreakerReject(name.String())
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrProviderUnavailable, name, err)
	}

	start := time.Now()
	var resp *search.Response

	err := retry.Do(ctx, retry.Config{
		MaxRetries: o.config.MaxRetries,
		BaseDelay:  o.config.RetryBaseDelay,
	}, func() error {
		r, err := o.registry.Search(ctx, name, query, limit)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})

	elapsed := time.Since(start)

	if err != nil {
		br.RecordFailure()
		o.publishBreakerState(name)
		if o.metrics != nil {
			o.metrics.RecordProviderRequest(name.String(), "error", elapsed)
		}
		o.logger.Warn("provider search failed",
			zap.String("provider", name.String()),
			zap.Error(err),
		)
		return nil, err
	}

	br.RecordSuccess()
	o.publishBreakerState(name)
	if o.metrics != nil {
		o.metrics.RecordProviderRequest(name.String(), "success", elapsed)
	}

	res := o.toUnified(name, resp, elapsed)
	o.cache.Set(key, res, o.config.CacheTTL)

	return res, nil
}

// toUnified приводит сырые результаты к каноничной форме Source.
// Результаты без url или title выбрасываются - контракт адаптера
// нарушен, чинить его здесь нечем.
func (o *Orchestrator) toUnified(name domain.ProviderName, resp *search.Response, elapsed time.Duration) domain.UnifiedSearchResult {
	def, _ := o.registry.Definition(name)

	sources := make([]domain.Source, 0, len(resp.Results))
	for _, raw := range resp.Results {
		if raw.URL == "" || raw.Title == "" {
			continue
		}

		quality := raw.Score
		if quality <= 0 || quality > 1 {
			quality = def.DefaultQuality
		}

		summary := raw.Summary
		if summary == "" {
			summary = raw.Content
		}

		sources = append(sources, domain.Source{
			URL:     raw.URL,
			Title:   raw.Title,
			Content: raw.Content,
			Quality: quality,
			Summary: truncate(summary, o.config.SummaryBudget),
		})
	}

	total := resp.Total
	if !def.ReportsTotal || total < len(sources) {
		total = len(sources)
	}

	return domain.UnifiedSearchResult{
		Provider:  name,
		Sources:   sources,
		Metadata:  domain.ResultMetadata{TotalResults: total, Elapsed: elapsed},
		FetchedAt: time.Now(),
	}
}

func (o *Orchestrator) publishBreakerState(name domain.ProviderName) {
	if o.metrics == nil {
		return
	}
	o.metrics.SetBreakerState(name.String(), float64(o.breakers.Get(name.String()).State()))
}

func truncate(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + "..."
}
