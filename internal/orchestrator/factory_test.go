package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yurieos/yurie-search/internal/adapter/mock"
	"github.com/yurieos/yurie-search/internal/cache/memory"
	"github.com/yurieos/yurie-search/internal/classifier"
	"github.com/yurieos/yurie-search/internal/domain"
	"github.com/yurieos/yurie-search/internal/provider"
	"github.com/yurieos/yurie-search/internal/search"
)

// scriptedAdapter отвечает по сценарию от номера вызова
type scriptedAdapter struct {
	name   string
	mu     sync.Mutex
	calls  int
	script func(call int) (*search.Response, error)
}

func (a *scriptedAdapter) ProviderName() string { return a.name }

func (a *scriptedAdapter) Search(ctx context.Context, query string, limit int) (*search.Response, error) {
	a.mu.Lock()
	a.calls++
	call := a.calls
	a.mu.Unlock()
	return a.script(call)
}

func (a *scriptedAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func adapterDef(name domain.ProviderName, client search.Adapter) provider.Definition {
	return provider.Definition{
		Name:           name,
		DefaultQuality: 0.8,
		Args:           provider.ArgsStandard,
		Build: func(deps provider.BuildDeps) (search.Adapter, error) {
			return client, nil
		},
	}
}

func newTestOrchestrator(t *testing.T, cfg Config, defs ...provider.Definition) *Orchestrator {
	t.Helper()

	c := memory.New()
	t.Cleanup(c.Stop)

	return New(Deps{
		Registry:   provider.NewRegistry(defs, nil, zap.NewNop()),
		Classifier: classifier.New(),
		Cache:      c,
		Logger:     zap.NewNop(),
		Config:     cfg,
	})
}

func oneResult(url, title string) []search.RawResult {
	return []search.RawResult{{URL: url, Title: title, Content: "content"}}
}

func TestSearchProvider_CacheTTL(t *testing.T) {
	client := mock.New("arxiv").WithResults(oneResult("https://arxiv.org/1", "Paper"))
	o := newTestOrchestrator(t, Config{
		CacheTTL:       80 * time.Millisecond,
		RetryBaseDelay: time.Millisecond,
	}, adapterDef("arxiv", client))

	ctx := context.Background()

	// t=0: идем наверх
	res, err := o.SearchProvider(ctx, "arxiv", "quantum computing", 5)
	if err != nil {
		t.Fatalf("SearchProvider() error = %v", err)
	}
	if res.Metadata.FromCache {
		t.Error("first call must not come from cache")
	}
	if client.Calls() != 1 {
		t.Fatalf("upstream called %d times, want 1", client.Calls())
	}

	// t<W: из кеша, наверх не ходим
	res, err = o.SearchProvider(ctx, "arxiv", "quantum computing", 5)
	if err != nil {
		t.Fatalf("SearchProvider() error = %v", err)
	}
	if !res.Metadata.FromCache {
		t.Error("second call within TTL must come from cache")
	}
	if client.Calls() != 1 {
		t.Errorf("upstream called %d times, want still 1", client.Calls())
	}

	// t>=W: снова наверх
	time.Sleep(120 * time.Millisecond)
	if _, err := o.SearchProvider(ctx, "arxiv", "quantum computing", 5); err != nil {
		t.Fatalf("SearchProvider() after expiry error = %v", err)
	}
	if client.Calls() != 2 {
		t.Errorf("upstream called %d times after TTL, want 2", client.Calls())
	}
}

func TestSearchProvider_CacheKeyRespectsLimit(t *testing.T) {
	client := mock.New("arxiv").WithResults(oneResult("https://arxiv.org/1", "Paper"))
	o := newTestOrchestrator(t, Config{RetryBaseDelay: time.Millisecond}, adapterDef("arxiv", client))

	ctx := context.Background()
	o.SearchProvider(ctx, "arxiv", "q", 5)
	o.SearchProvider(ctx, "arxiv", "q", 10)

	if client.Calls() != 2 {
		t.Errorf("upstream called %d times for different limits, want 2", client.Calls())
	}
}

func TestSearchProvider_Deduplication(t *testing.T) {
	client := mock.New("pubmed").
		WithResults(oneResult("https://pubmed.gov/1", "Study")).
		WithDelay(100 * time.Millisecond)
	o := newTestOrchestrator(t, Config{RetryBaseDelay: time.Millisecond}, adapterDef("pubmed", client))

	const n = 8
	var wg sync.WaitGroup
	results := make([]*domain.UnifiedSearchResult, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = o.SearchProvider(context.Background(), "pubmed", "sleep deprivation", 5)
		}(i)
	}
	wg.Wait()

	if client.Calls() != 1 {
		t.Errorf("upstream called %d times for %d concurrent callers, want 1", client.Calls(), n)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d error = %v", i, errs[i])
			continue
		}
		if len(results[i].Sources) != 1 {
			t.Errorf("caller %d got %d sources, want 1", i, len(results[i].Sources))
		}
	}
}

func TestSearchProvider_BreakerSequence(t *testing.T) {
	upstreamErr := errors.New("connection refused")
	client := mock.New("gbif").WithError(upstreamErr)

	o := newTestOrchestrator(t, Config{
		RetryBaseDelay:   time.Millisecond,
		BreakerThreshold: 3,
		BreakerCooldown:  100 * time.Millisecond,
	}, adapterDef("gbif", client))
	// без повторов, чтобы каждый вызов был ровно одним походом наверх
	o.config.MaxRetries = -1

	ctx := context.Background()

	// 3 сбоя подряд открывают breaker
	for i := 0; i < 3; i++ {
		if _, err := o.SearchProvider(ctx, "gbif", "bird species", 5); !errors.Is(err, upstreamErr) {
			t.Fatalf("call %d error = %v, want upstream error", i+1, err)
		}
	}
	if client.Calls() != 3 {
		t.Fatalf("upstream called %d times, want 3", client.Calls())
	}

	// 4-й вызов внутри остывания отбивается не трогая провайдера
	_, err := o.SearchProvider(ctx, "gbif", "bird species", 5)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("call during cooldown error = %v, want ErrProviderUnavailable", err)
	}
	if client.Calls() != 3 {
		t.Errorf("upstream called %d times after rejection, want still 3", client.Calls())
	}

	// после остывания проходит ровно одна проба; успех закрывает breaker
	time.Sleep(150 * time.Millisecond)
	client.Error = nil
	client.Results = oneResult("https://gbif.org/species/1", "Sturnus vulgaris")

	res, err := o.SearchProvider(ctx, "gbif", "starling", 5)
	if err != nil {
		t.Fatalf("probe call error = %v", err)
	}
	if len(res.Sources) != 1 {
		t.Errorf("probe call returned %d sources, want 1", len(res.Sources))
	}

	if got := o.Breakers().Get("gbif").State(); got.String() != "closed" {
		t.Errorf("breaker state = %v after successful probe, want closed", got)
	}
}

func TestSearchProvider_BreakerReopensOnProbeFailure(t *testing.T) {
	upstreamErr := errors.New("timeout")
	client := mock.New("nasa").WithError(upstreamErr)

	o := newTestOrchestrator(t, Config{
		RetryBaseDelay:   time.Millisecond,
		BreakerThreshold: 2,
		BreakerCooldown:  60 * time.Millisecond,
	}, adapterDef("nasa", client))
	o.config.MaxRetries = -1

	ctx := context.Background()
	o.SearchProvider(ctx, "nasa", "mars", 5)
	o.SearchProvider(ctx, "nasa", "mars", 5)

	time.Sleep(90 * time.Millisecond)

	// проба проваливается - снова Open
	if _, err := o.SearchProvider(ctx, "nasa", "mars", 5); !errors.Is(err, upstreamErr) {
		t.Fatalf("probe error = %v, want upstream error", err)
	}
	if _, err := o.SearchProvider(ctx, "nasa", "mars", 5); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("post-probe error = %v, want ErrProviderUnavailable", err)
	}
}

func TestSearchProvider_RetryRecovery(t *testing.T) {
	flaky := &scriptedAdapter{
		name: "crossref",
		script: func(call int) (*search.Response, error) {
			if call < 3 {
				return nil, errors.New("transient")
			}
			return &search.Response{Results: oneResult("https://doi.org/10.1/1", "Paper")}, nil
		},
	}

	o := newTestOrchestrator(t, Config{
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
	}, adapterDef("crossref", flaky))

	res, err := o.SearchProvider(context.Background(), "crossref", "citation graph", 5)
	if err != nil {
		t.Fatalf("SearchProvider() error = %v, want recovery on 3rd attempt", err)
	}
	if flaky.callCount() != 3 {
		t.Errorf("upstream called %d times, want 3", flaky.callCount())
	}
	if len(res.Sources) != 1 {
		t.Errorf("got %d sources, want 1", len(res.Sources))
	}

	// один успешный проход не должен был оставить сбоев на breaker'е
	if got := o.Breakers().Get("crossref").ConsecutiveFailures(); got != 0 {
		t.Errorf("ConsecutiveFailures() = %d, want 0", got)
	}
}

func TestSearchProvider_RetryExhaustion(t *testing.T) {
	wantErr := errors.New("permanent failure")
	always := &scriptedAdapter{
		name:   "worldbank",
		script: func(int) (*search.Response, error) { return nil, wantErr },
	}

	o := newTestOrchestrator(t, Config{
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
	}, adapterDef("worldbank", always))

	_, err := o.SearchProvider(context.Background(), "worldbank", "gdp", 5)
	if !errors.Is(err, wantErr) {
		t.Errorf("SearchProvider() error = %v, want last upstream error", err)
	}
	// 1 изначальная + 2 повтора
	if always.callCount() != 3 {
		t.Errorf("upstream called %d times, want 3", always.callCount())
	}
	if got := o.Breakers().Get("worldbank").ConsecutiveFailures(); got != 1 {
		t.Errorf("ConsecutiveFailures() = %d, want 1 per exhausted operation", got)
	}
}

func TestSearchProvider_MissingCredential(t *testing.T) {
	client := mock.New("core").WithResults(oneResult("https://core.ac.uk/1", "Paper"))
	def := adapterDef("core", client)
	def.CredentialEnv = "TEST_ORCH_CORE_KEY"

	o := newTestOrchestrator(t, Config{RetryBaseDelay: time.Millisecond}, def)

	res, err := o.SearchProvider(context.Background(), "core", "open access", 5)
	if err != nil {
		t.Fatalf("SearchProvider() error = %v, want silent empty result", err)
	}
	if len(res.Sources) != 0 || res.Metadata.TotalResults != 0 {
		t.Errorf("got %+v, want empty result", res)
	}
	if client.Calls() != 0 {
		t.Error("adapter must not be called without credential")
	}
	if got := o.Breakers().Get("core").ConsecutiveFailures(); got != 0 {
		t.Errorf("ConsecutiveFailures() = %d, want 0 for missing credential", got)
	}
}

func TestSearchProvider_UnknownProvider(t *testing.T) {
	o := newTestOrchestrator(t, Config{RetryBaseDelay: time.Millisecond})

	_, err := o.SearchProvider(context.Background(), "nonexistent", "q", 5)
	if !errors.Is(err, domain.ErrUnknownProvider) {
		t.Errorf("SearchProvider() error = %v, want ErrUnknownProvider", err)
	}
}

func TestSearchProvider_EmptyQuery(t *testing.T) {
	o := newTestOrchestrator(t, Config{RetryBaseDelay: time.Millisecond})

	_, err := o.SearchProvider(context.Background(), "arxiv", "  ", 5)
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("SearchProvider() error = %v, want ErrEmptyQuery", err)
	}
}

func TestToUnified_Normalization(t *testing.T) {
	long := make([]rune, 600)
	for i := range long {
		long[i] = 'a'
	}

	client := mock.New("wikipedia").WithResults([]search.RawResult{
		{URL: "https://en.wikipedia.org/wiki/Mars", Title: "Mars", Content: string(long), Score: 0.65},
		{URL: "https://en.wikipedia.org/wiki/Phobos", Title: "Phobos"}, // score не задан
		{URL: "", Title: "no url"},                                    // контракт нарушен
		{URL: "https://en.wikipedia.org/wiki/Deimos", Title: ""},      // контракт нарушен
	}).WithTotal(2)

	def := adapterDef("wikipedia", client)
	def.DefaultQuality = 0.7
	def.ReportsTotal = true

	o := newTestOrchestrator(t, Config{
		RetryBaseDelay: time.Millisecond,
		SummaryBudget:  500,
	}, def)

	res, err := o.SearchProvider(context.Background(), "wikipedia", "mars moons", 5)
	if err != nil {
		t.Fatalf("SearchProvider() error = %v", err)
	}

	if len(res.Sources) != 2 {
		t.Fatalf("got %d sources, want 2 (malformed results dropped)", len(res.Sources))
	}

	if res.Sources[0].Quality != 0.65 {
		t.Errorf("explicit score: quality = %v, want 0.65", res.Sources[0].Quality)
	}
	if res.Sources[1].Quality != 0.7 {
		t.Errorf("default backfill: quality = %v, want 0.7", res.Sources[1].Quality)
	}

	if got := len([]rune(res.Sources[0].Summary)); got != 503 { // 500 + "..."
		t.Errorf("summary length = %d runes, want 503", got)
	}

	if res.Metadata.TotalResults != 2 {
		t.Errorf("TotalResults = %d, want 2", res.Metadata.TotalResults)
	}
}
