package provider

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/yurieos/yurie-search/internal/domain"
	"github.com/yurieos/yurie-search/internal/ratelimit"
	"github.com/yurieos/yurie-search/internal/search"
)

// Registry приводит разношерстные клиенты провайдеров к одному
// контракту поиска. Клиенты создаются лениво при первом обращении и
// живут до конца процесса; сломавшийся конструктор - это "провайдер
// недоступен", а не отказ всего сервиса.
type Registry struct {
	mu      sync.Mutex
	defs    map[domain.ProviderName]Definition
	order   []domain.ProviderName
	clients map[domain.ProviderName]search.Adapter
	broken  map[domain.ProviderName]bool

	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

func NewRegistry(defs []Definition, limiter *ratelimit.Limiter, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		defs:    make(map[domain.ProviderName]Definition, len(defs)),
		order:   make([]domain.ProviderName, 0, len(defs)),
		clients: make(map[domain.ProviderName]search.Adapter),
		broken:  make(map[domain.ProviderName]bool),
		limiter: limiter,
		logger:  logger,
	}
	for _, d := range defs {
		r.defs[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r
}

func (r *Registry) Definition(name domain.ProviderName) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Search выполняет один вызов провайдера. Недоступный провайдер
// (нет ключа, сломанный конструктор, сам о себе доложил) дает пустой
// результат без ошибки - это штатная ситуация.
func (r *Registry) Search(ctx context.Context, name domain.ProviderName, query string, limit int) (*search.Response, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}

	if !r.credentialPresent(def) {
		return &search.Response{}, nil
	}

	client := r.client(def)
	if client == nil {
		return &search.Response{}, nil
	}

	if reporter, ok := client.(search.AvailabilityReporter); ok && !reporter.Available() {
		return &search.Response{}, nil
	}

	switch def.Args {
	case ArgsStandard:
		s, ok := client.(search.Searcher)
		if !ok {
			return nil, fmt.Errorf("%w: %s adapter lacks standard call shape", domain.ErrProviderUnavailable, name)
		}
		return s.Search(ctx, query, limit)

	case ArgsWithOptions:
		s, ok := client.(search.OptionSearcher)
		if !ok {
			return nil, fmt.Errorf("%w: %s adapter lacks options call shape", domain.ErrProviderUnavailable, name)
		}
		return s.SearchWithOptions(ctx, query, search.Options{Limit: limit})

	case ArgsDateSorted:
		s, ok := client.(search.OptionSearcher)
		if !ok {
			return nil, fmt.Errorf("%w: %s adapter lacks options call shape", domain.ErrProviderUnavailable, name)
		}
		return s.SearchWithOptions(ctx, query, search.Options{Limit: limit, SortByDate: true})
	}

	return nil, fmt.Errorf("%w: %s has unknown args strategy", domain.ErrProviderUnavailable, name)
}

func (r *Registry) IsAvailable(name domain.ProviderName) bool {
	def, ok := r.defs[name]
	if !ok {
		return false
	}
	if !r.credentialPresent(def) {
		return false
	}

	r.mu.Lock()
	brokenNow := r.broken[name]
	r.mu.Unlock()
	if brokenNow {
		return false
	}

	if client := r.client(def); client != nil {
		if reporter, ok := client.(search.AvailabilityReporter); ok {
			return reporter.Available()
		}
		return true
	}
	return false
}

func (r *Registry) AvailableProviders() []domain.ProviderName {
	var names []domain.ProviderName
	for _, name := range r.order {
		if r.IsAvailable(name) {
			names = append(names, name)
		}
	}
	return names
}

// Preload прогревает ленивые конструкторы перед чувствительными к
// задержке путями. Ошибки глотаются так же, как при обычном обращении.
func (r *Registry) Preload(ctx context.Context, names []domain.ProviderName) {
	var wg sync.WaitGroup
	for _, name := range names {
		def, ok := r.defs[name]
		if !ok || !r.credentialPresent(def) {
			continue
		}

		wg.Add(1)
		go func(def Definition) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			default:
			}
			r.client(def)
		}(def)
	}
	wg.Wait()
}

// Reset сбрасывает ленивые клиенты, нужен для изоляции тестов
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = make(map[domain.ProviderName]search.Adapter)
	r.broken = make(map[domain.ProviderName]bool)
}

func (r *Registry) credentialPresent(def Definition) bool {
	if def.CredentialEnv == "" {
		return true
	}
	return os.Getenv(def.CredentialEnv) != ""
}

func (r *Registry) client(def Definition) search.Adapter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[def.Name]; ok {
		return c
	}
	if r.broken[def.Name] {
		return nil
	}

	apiKey := ""
	if def.CredentialEnv != "" {
		apiKey = os.Getenv(def.CredentialEnv)
	}

	c, err := def.Build(BuildDeps{
		APIKey:  apiKey,
		Limiter: r.limiter,
		Logger:  r.logger,
	})
	if err != nil {
		r.logger.Warn("provider client construction failed",
			zap.String("provider", def.Name.String()),
			zap.Error(err),
		)
		r.broken[def.Name] = true
		return nil
	}

	r.clients[def.Name] = c
	return c
}
