package recommender

// Scoring knobs. The defaults reproduce the documented weighting scheme:
// repeated activity in a category is worth more than one-off activity, and
// purchases are worth more than searches.
type Config struct {
	// per-event contribution to a category's combined score
	SearchScore   float64
	PurchaseScore float64

	// repeated-interaction bonus used for the stream weightages
	DuplicateSearchBonus   float64
	DuplicatePurchaseBonus float64

	// divisor applied to the unique-category count in the weightages
	UniqueDivisor float64

	// list shaping
	RecommendLimit int
	ExploreLimit   int
}

const (
	defaultSearchScore            = 1.0
	defaultPurchaseScore          = 3.0
	defaultDuplicateSearchBonus   = 2.0
	defaultDuplicatePurchaseBonus = 3.0
	defaultUniqueDivisor          = 10.0
	defaultRecommendLimit         = 10
	defaultExploreLimit           = 5
)

func DefaultConfig() Config {
	return Config{
		SearchScore:            defaultSearchScore,
		PurchaseScore:          defaultPurchaseScore,
		DuplicateSearchBonus:   defaultDuplicateSearchBonus,
		DuplicatePurchaseBonus: defaultDuplicatePurchaseBonus,
		UniqueDivisor:          defaultUniqueDivisor,
		RecommendLimit:         defaultRecommendLimit,
		ExploreLimit:           defaultExploreLimit,
	}
}
