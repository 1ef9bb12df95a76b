package domain

import "time"

// Category - грубая тематика запроса, определяется классификатором
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryAcademic   Category = "academic"
	CategoryMedicine   Category = "medicine"
	CategoryChemistry  Category = "chemistry"
	CategoryBiology    Category = "biology"
	CategorySpace      Category = "space"
	CategoryEconomics  Category = "economics"
	CategoryTechnology Category = "technology"
)

type SearchMode string

const (
	ModeQuick SearchMode = "quick"
	ModeDeep  SearchMode = "deep"
)

type QueryClassification struct {
	Category   Category
	Candidates []ProviderName
	Mode       SearchMode
}

type ResultMetadata struct {
	TotalResults int
	FromCache    bool
	Elapsed      time.Duration
}

// UnifiedSearchResult - ответ одного провайдера, без слияния между провайдерами
type UnifiedSearchResult struct {
	Provider       ProviderName
	Classification Category
	Sources        []Source
	Metadata       ResultMetadata
	FetchedAt      time.Time
}

type ProviderFailure struct {
	Provider ProviderName
	Err      string
}

// AggregatedResult - итог fan-out по кандидатам. Failed позволяет отличить
// "никто не подошел" от "все упали": пустые Results и пустой Failed значит
// что кандидатов не было вовсе.
type AggregatedResult struct {
	Query          string
	Classification QueryClassification
	Results        []UnifiedSearchResult
	Failed         []ProviderFailure
}
