package recommender

import (
	"math"
	"sort"

	"github.com/MayurUbarhande0/recommendations-api/domain"
)

// Engine turns raw activity rows into a RecommendationResult. It is a pure
// transform: no I/O, no side effects, deterministic for identical input.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.UniqueDivisor == 0 {
		cfg.UniqueDivisor = defaultUniqueDivisor
	}
	if cfg.RecommendLimit <= 0 {
		cfg.RecommendLimit = defaultRecommendLimit
	}
	if cfg.ExploreLimit <= 0 {
		cfg.ExploreLimit = defaultExploreLimit
	}
	return &Engine{cfg: cfg}
}

// Compute aggregates per-category counts from searches and purchases and
// derives the weightages and category lists. Empty input yields the
// zero-valued result with empty lists, not an error.
func (e *Engine) Compute(searches []domain.SearchActivity, purchases []domain.PurchaseActivity) domain.RecommendationResult {
	searchCats := make([]string, 0, len(searches))
	for _, s := range searches {
		if s.Category != "" {
			searchCats = append(searchCats, s.Category)
		}
	}

	purchaseCats := make([]string, 0, len(purchases))
	for _, p := range purchases {
		if p.ProductCategory != "" {
			purchaseCats = append(purchaseCats, p.ProductCategory)
		}
	}

	result := domain.RecommendationResult{
		RecommendedCategories: []string{},
		ExploreCategories:     []string{},
		SearchCount:           len(searchCats),
		PurchaseCount:         len(purchaseCats),
	}

	if len(searchCats) == 0 && len(purchaseCats) == 0 {
		return result
	}

	searchCounts := countByCategory(searchCats)
	purchaseCounts := countByCategory(purchaseCats)

	result.SearchWeight = e.streamWeight(len(searchCats), len(searchCounts), e.cfg.DuplicateSearchBonus)
	result.PurchaseWeight = e.streamWeight(len(purchaseCats), len(purchaseCounts), e.cfg.DuplicatePurchaseBonus)
	result.Weightage = round2(result.SearchWeight + result.PurchaseWeight)

	// combined affinity score per category, purchases weighted heavier
	scores := make(map[string]float64, len(searchCounts)+len(purchaseCounts))
	totals := make(map[string]int, len(searchCounts)+len(purchaseCounts))
	for cat, n := range searchCounts {
		scores[cat] += float64(n) * e.cfg.SearchScore
		totals[cat] += n
	}
	for cat, n := range purchaseCounts {
		scores[cat] += float64(n) * e.cfg.PurchaseScore
		totals[cat] += n
	}

	ranked := make([]string, 0, len(scores))
	for cat := range scores {
		ranked = append(ranked, cat)
	}
	// score descending, ties broken lexicographically for determinism
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] == scores[ranked[j]] {
			return ranked[i] < ranked[j]
		}
		return scores[ranked[i]] > scores[ranked[j]]
	})

	limit := e.cfg.RecommendLimit
	if limit > len(ranked) {
		limit = len(ranked)
	}
	result.RecommendedCategories = append(result.RecommendedCategories, ranked[:limit]...)

	recommended := make(map[string]struct{}, limit)
	for _, cat := range result.RecommendedCategories {
		recommended[cat] = struct{}{}
	}

	// low-affinity leftovers: categories touched exactly once that did not
	// make the recommended list
	explore := make([]string, 0)
	for cat, n := range totals {
		if n != 1 {
			continue
		}
		if _, ok := recommended[cat]; ok {
			continue
		}
		explore = append(explore, cat)
	}
	sort.Strings(explore)
	if len(explore) > e.cfg.ExploreLimit {
		explore = explore[:e.cfg.ExploreLimit]
	}
	result.ExploreCategories = explore

	return result
}

// streamWeight scores one activity stream: each repeated interaction earns
// the duplicate bonus, breadth contributes uniqueCount / UniqueDivisor.
func (e *Engine) streamWeight(total, unique int, duplicateBonus float64) float64 {
	duplicates := total - unique
	return round2(float64(duplicates)*duplicateBonus + float64(unique)/e.cfg.UniqueDivisor)
}

func countByCategory(categories []string) map[string]int {
	counts := make(map[string]int, len(categories))
	for _, cat := range categories {
		counts[cat]++
	}
	return counts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
