package search

import (
	"context"
	"errors"
)

var (
	ErrUnauthorized   = errors.New("invalid API key")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrInvalidRequest = errors.New("invalid request parameters")
	ErrSearchFailed   = errors.New("search request failed")
)

// RawResult - сырой результат провайдера до нормализации. URL и Title
// обязательны, остальное по возможности.
type RawResult struct {
	URL       string
	Title     string
	Content   string
	Score     float64
	Summary   string
	Published string
}

type Response struct {
	Results []RawResult
	// Total - сколько всего нашлось у провайдера, 0 если он не сообщает
	Total int
}

type Options struct {
	Limit      int
	SortByDate bool
	TimeRange  string
}

// Adapter - общий знаменатель всех клиентов провайдеров. Конкретную
// форму вызова (Searcher/OptionSearcher) выбирает реестр по стратегии
// из определения провайдера.
type Adapter interface {
	ProviderName() string
}

type Searcher interface {
	Adapter
	Search(ctx context.Context, query string, limit int) (*Response, error)
}

type OptionSearcher interface {
	Adapter
	SearchWithOptions(ctx context.Context, query string, opts Options) (*Response, error)
}

// AvailabilityReporter могут реализовать адаптеры, умеющие сами
// сообщать о своей недоступности (нет ключа, выключены конфигом)
type AvailabilityReporter interface {
	Available() bool
}
