// Package rest - универсальный клиент для провайдеров, отдающих
// результаты во внутреннем прокси-формате JSON. Специфичный маппинг
// полей конкретных API живет в отдельных адаптерах, не здесь.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/yurieos/yurie-search/internal/ratelimit"
	"github.com/yurieos/yurie-search/internal/search"
)

type Config struct {
	Name       string
	BaseURL    string
	SearchPath string
	APIKey     string
	Timeout    time.Duration
}

type Client struct {
	name       string
	baseURL    string
	searchPath string
	apiKey     string
	client     *http.Client
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
}

func New(cfg Config, limiter *ratelimit.Limiter, logger *zap.Logger) *Client {
	if cfg.SearchPath == "" {
		cfg.SearchPath = "/search"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		name:       cfg.Name,
		baseURL:    cfg.BaseURL,
		searchPath: cfg.SearchPath,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

type wireResult struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	Summary   string  `json:"summary"`
	Published string  `json:"published_date"`
}

type wireResponse struct {
	Results []wireResult `json:"results"`
	Total   int          `json:"total"`
}

func (c *Client) ProviderName() string { return c.name }

func (c *Client) Search(ctx context.Context, query string, limit int) (*search.Response, error) {
	return c.do(ctx, query, search.Options{Limit: limit})
}

func (c *Client) SearchWithOptions(ctx context.Context, query string, opts search.Options) (*search.Response, error) {
	return c.do(ctx, query, opts)
}

func (c *Client) do(ctx context.Context, query string, opts search.Options) (*search.Response, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	// вежливость к чужому API: пережидаем свое окно
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.name); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	if opts.SortByDate {
		params.Set("sort", "date")
	}
	if opts.TimeRange != "" {
		params.Set("time_range", opts.TimeRange)
	}

	reqURL := c.baseURL + c.searchPath + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var wire wireResponse
		if err := json.Unmarshal(respBody, &wire); err != nil {
			// битый ответ приравниваем к транспортному сбою, пусть
			// retry/breaker разбираются
			return nil, fmt.Errorf("%w: unmarshal: %v", search.ErrSearchFailed, err)
		}
		return c.toResponse(&wire), nil

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, search.ErrUnauthorized

	case http.StatusTooManyRequests:
		return nil, search.ErrRateLimit

	case http.StatusBadRequest:
		return nil, search.ErrInvalidRequest

	default:
		c.logger.Debug("unexpected upstream status",
			zap.String("provider", c.name),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", search.ErrSearchFailed, resp.StatusCode)
	}
}

func (c *Client) toResponse(wire *wireResponse) *search.Response {
	results := make([]search.RawResult, len(wire.Results))
	for i, r := range wire.Results {
		results[i] = search.RawResult{
			URL:       r.URL,
			Title:     r.Title,
			Content:   r.Content,
			Score:     r.Score,
			Summary:   r.Summary,
			Published: r.Published,
		}
	}

	return &search.Response{
		Results: results,
		Total:   wire.Total,
	}
}
