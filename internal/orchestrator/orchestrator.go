package orchestrator

import (
	"time"

	"go.uber.org/zap"

	"github.com/yurieos/yurie-search/internal/breaker"
	"github.com/yurieos/yurie-search/internal/cache"
	"github.com/yurieos/yurie-search/internal/classifier"
	"github.com/yurieos/yurie-search/internal/dedup"
	"github.com/yurieos/yurie-search/internal/metrics"
	"github.com/yurieos/yurie-search/internal/provider"
	"github.com/yurieos/yurie-search/internal/repository"
)

type Config struct {
	CacheTTL         time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
	SummaryBudget    int
	DefaultLimit     int
}

// Deps - зависимости оркестратора. History опционален: nil выключает
// архив без каких-либо последствий для пути запроса.
type Deps struct {
	Registry   *provider.Registry
	Classifier *classifier.Classifier
	Cache      cache.Cache
	History    repository.HistoryRepository
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Config     Config
}

// Orchestrator владеет всем разделяемым состоянием конвейера: кешем,
// in-flight картой дедупликатора и breaker'ами провайдеров. Создается
// один раз на процесс и передается явно - никаких глобальных синглтонов.
type Orchestrator struct {
	registry   *provider.Registry
	classifier *classifier.Classifier
	cache      cache.Cache
	history    repository.HistoryRepository
	logger     *zap.Logger
	metrics    *metrics.Metrics
	config     Config

	dedup    *dedup.Group
	breakers *breaker.Set
}

func New(deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.CacheTTL == 0 {
		deps.Config.CacheTTL = 5 * time.Minute
	}
	if deps.Config.MaxRetries == 0 {
		deps.Config.MaxRetries = 2
	}
	if deps.Config.RetryBaseDelay == 0 {
		deps.Config.RetryBaseDelay = 500 * time.Millisecond
	}
	if deps.Config.BreakerThreshold == 0 {
		deps.Config.BreakerThreshold = 3
	}
	if deps.Config.BreakerCooldown == 0 {
		deps.Config.BreakerCooldown = time.Minute
	}
	if deps.Config.SummaryBudget == 0 {
		deps.Config.SummaryBudget = 500
	}
	if deps.Config.DefaultLimit == 0 {
		deps.Config.DefaultLimit = 10
	}

	return &Orchestrator{
		registry:   deps.Registry,
		classifier: deps.Classifier,
		cache:      deps.Cache,
		history:    deps.History,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		config:     deps.Config,
		dedup:      dedup.New(),
		breakers:   breaker.NewSet(deps.Config.BreakerThreshold, deps.Config.BreakerCooldown),
	}
}

// Breakers отдает набор breaker'ов, нужен тестам и диагностике
func (o *Orchestrator) Breakers() *breaker.Set {
	return o.breakers
}
