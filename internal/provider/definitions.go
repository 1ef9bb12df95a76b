package provider

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yurieos/yurie-search/internal/adapter/rest"
	"github.com/yurieos/yurie-search/internal/domain"
	"github.com/yurieos/yurie-search/internal/ratelimit"
	"github.com/yurieos/yurie-search/internal/search"
)

// ArgsStrategy - закрытый набор форм вызова адаптера. Каждый провайдер
// в таблице называет вариант, диспетчеризация - явный switch в реестре.
type ArgsStrategy int

const (
	ArgsStandard ArgsStrategy = iota
	ArgsWithOptions
	ArgsDateSorted
)

type BuildDeps struct {
	APIKey  string
	Limiter *ratelimit.Limiter
	Logger  *zap.Logger
}

type BuildFunc func(deps BuildDeps) (search.Adapter, error)

// Definition - статичная запись о провайдере. Таблица создается на
// старте процесса и дальше не меняется.
type Definition struct {
	Name           domain.ProviderName
	DefaultQuality float64
	// CredentialEnv - имя переменной окружения с ключом; пустая строка
	// значит ключ не нужен. Отсутствие ключа - не ошибка, провайдер
	// просто молча недоступен.
	CredentialEnv string
	Args          ArgsStrategy
	ReportsTotal  bool
	Build         BuildFunc
}

// адаптеры конкретных API живут за HTTP-прокси и отдают единый
// wire-формат, поэтому всем хватает одного rest-клиента
func restBuild(name, pathSuffix string) BuildFunc {
	return func(deps BuildDeps) (search.Adapter, error) {
		base := os.Getenv("SEARCH_ADAPTER_BASE_URL")
		if base == "" {
			base = "http://localhost:3000/api/providers"
		}
		return rest.New(rest.Config{
			Name:       name,
			BaseURL:    base,
			SearchPath: "/" + pathSuffix,
			APIKey:     deps.APIKey,
			Timeout:    15 * time.Second,
		}, deps.Limiter, deps.Logger), nil
	}
}

// Defaults - представительный срез источников: открытые и закрытые
// ключом, со всеми стратегиями вызова
func Defaults() []Definition {
	return []Definition{
		{Name: "arxiv", DefaultQuality: 0.9, Args: ArgsDateSorted, ReportsTotal: true, Build: restBuild("arxiv", "arxiv")},
		{Name: "pubmed", DefaultQuality: 0.95, Args: ArgsStandard, ReportsTotal: true, Build: restBuild("pubmed", "pubmed")},
		{Name: "crossref", DefaultQuality: 0.85, Args: ArgsStandard, ReportsTotal: true, Build: restBuild("crossref", "crossref")},
		{Name: "openalex", DefaultQuality: 0.85, Args: ArgsWithOptions, ReportsTotal: true, Build: restBuild("openalex", "openalex")},
		{Name: "semanticscholar", DefaultQuality: 0.85, Args: ArgsWithOptions, ReportsTotal: true, Build: restBuild("semanticscholar", "semantic-scholar")},
		{Name: "wikipedia", DefaultQuality: 0.7, Args: ArgsStandard, Build: restBuild("wikipedia", "wikipedia")},
		{Name: "duckduckgo", DefaultQuality: 0.5, Args: ArgsStandard, Build: restBuild("duckduckgo", "duckduckgo")},
		{Name: "gbif", DefaultQuality: 0.8, Args: ArgsStandard, ReportsTotal: true, Build: restBuild("gbif", "gbif")},
		{Name: "worldbank", DefaultQuality: 0.8, Args: ArgsStandard, Build: restBuild("worldbank", "worldbank")},
		{Name: "nasa", DefaultQuality: 0.85, CredentialEnv: "NASA_API_KEY", Args: ArgsDateSorted, ReportsTotal: true, Build: restBuild("nasa", "nasa")},
		{Name: "github", DefaultQuality: 0.75, CredentialEnv: "GITHUB_TOKEN", Args: ArgsWithOptions, ReportsTotal: true, Build: restBuild("github", "github")},
		{Name: "core", DefaultQuality: 0.8, CredentialEnv: "CORE_API_KEY", Args: ArgsStandard, ReportsTotal: true, Build: restBuild("core", "core")},
	}
}
