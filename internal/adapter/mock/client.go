package mock

import (
	"context"
	"sync"
	"time"

	"github.com/yurieos/yurie-search/internal/search"
)

// Client - тестовый адаптер. Реализует обе формы вызова плюс отчет о
// доступности, чтобы можно было гонять любую стратегию реестра.
type Client struct {
	Name        string
	Results     []search.RawResult
	Total       int
	Error       error
	Delay       time.Duration
	Unavailable bool

	CallCount   int
	LastQuery   string
	LastLimit   int
	LastOptions search.Options

	mu sync.Mutex
}

func New(name string) *Client {
	return &Client{Name: name}
}

func (c *Client) WithResults(results []search.RawResult) *Client {
	c.Results = results
	return c
}

func (c *Client) WithTotal(total int) *Client {
	c.Total = total
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) WithUnavailable() *Client {
	c.Unavailable = true
	return c
}

func (c *Client) ProviderName() string { return c.Name }

func (c *Client) Available() bool { return !c.Unavailable }

func (c *Client) Search(ctx context.Context, query string, limit int) (*search.Response, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastQuery = query
	c.LastLimit = limit
	delay := c.Delay
	err := c.Error
	results := c.Results
	total := c.Total
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}

	return &search.Response{Results: results, Total: total}, nil
}

func (c *Client) SearchWithOptions(ctx context.Context, query string, opts search.Options) (*search.Response, error) {
	c.mu.Lock()
	c.LastOptions = opts
	c.mu.Unlock()

	return c.Search(ctx, query, opts.Limit)
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastQuery = ""
	c.LastLimit = 0
	c.LastOptions = search.Options{}
}
