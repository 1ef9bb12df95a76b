package classifier

import (
	"regexp"
	"strings"

	"github.com/yurieos/yurie-search/internal/domain"
)

// rule - одно правило классификации. Правила упорядочены, побеждает
// первое совпавшее; без побочных эффектов, одинаковый запрос всегда
// дает одинаковый ответ - иначе кеширование теряет смысл.
type rule struct {
	pattern    *regexp.Regexp
	category   domain.Category
	candidates []domain.ProviderName
}

type Classifier struct {
	rules      []rule
	fallback   []domain.ProviderName
	deepMarker *regexp.Regexp
}

func New() *Classifier {
	return &Classifier{
		rules: []rule{
			{
				pattern:    regexp.MustCompile(`(?i)\b(molecule|chemical|compound|reaction|polymer|catalyst|synthesis)\b`),
				category:   domain.CategoryChemistry,
				candidates: []domain.ProviderName{"arxiv", "crossref", "openalex"},
			},
			{
				pattern:    regexp.MustCompile(`(?i)\b(disease|clinical|vaccine|cancer|drug|symptom|therapy|gene therapy|patient)\b`),
				category:   domain.CategoryMedicine,
				candidates: []domain.ProviderName{"pubmed", "openalex", "crossref"},
			},
			{
				pattern:    regexp.MustCompile(`(?i)\b(species|taxonomy|ecosystem|biodiversity|habitat|organism|bird|insect|mammal)\b`),
				category:   domain.CategoryBiology,
				candidates: []domain.ProviderName{"gbif", "pubmed", "openalex"},
			},
			{
				pattern:    regexp.MustCompile(`(?i)\b(mars|rover|nasa|satellite|galaxy|exoplanet|telescope|asteroid|spacecraft|lunar)\b`),
				category:   domain.CategorySpace,
				candidates: []domain.ProviderName{"nasa", "arxiv", "wikipedia"},
			},
			{
				pattern:    regexp.MustCompile(`(?i)\b(gdp|inflation|poverty|unemployment|trade balance|economic growth|world bank)\b`),
				category:   domain.CategoryEconomics,
				candidates: []domain.ProviderName{"worldbank", "openalex", "wikipedia"},
			},
			{
				pattern:    regexp.MustCompile(`(?i)\b(repository|library|framework|source code|github|compiler|algorithm implementation)\b`),
				category:   domain.CategoryTechnology,
				candidates: []domain.ProviderName{"github", "arxiv", "semanticscholar"},
			},
			{
				pattern:    regexp.MustCompile(`(?i)\b(paper|study|research|journal|peer.?review|citation|preprint|doi)\b`),
				category:   domain.CategoryAcademic,
				candidates: []domain.ProviderName{"arxiv", "openalex", "semanticscholar", "crossref", "core"},
			},
		},
		fallback:   []domain.ProviderName{"duckduckgo", "wikipedia", "openalex"},
		deepMarker: regexp.MustCompile(`(?i)\b(survey|review of|state of the art|comprehensive|literature)\b`),
	}
}

// Classify - чистая функция, никакого скрытого состояния
func (c *Classifier) Classify(query string) domain.QueryClassification {
	query = strings.TrimSpace(query)

	result := domain.QueryClassification{
		Category:   domain.CategoryGeneral,
		Candidates: append([]domain.ProviderName(nil), c.fallback...),
		Mode:       domain.ModeQuick,
	}
	if query == "" {
		result.Candidates = nil
		return result
	}

	for _, r := range c.rules {
		if r.pattern.MatchString(query) {
			result.Category = r.category
			result.Candidates = append([]domain.ProviderName(nil), r.candidates...)
			break
		}
	}

	if c.deepMarker.MatchString(query) {
		result.Mode = domain.ModeDeep
	}

	return result
}
