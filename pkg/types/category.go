package types

// Category classifies a library item into the fixed taxonomy.
type Category string

const (
	CategoryEbook               Category = "ebook"
	CategoryGame                Category = "game"
	CategorySoftware            Category = "software"
	CategoryAudio               Category = "audio"
	CategoryVideo               Category = "video"
	CategoryComic               Category = "comic"
	CategoryBundle              Category = "bundle"
	CategorySubscriptionContent Category = "subscription_content"
	CategoryUnknown             Category = "unknown"
)

// AllCategories lists every category in declaration order. The order is
// load-bearing: the categorization engine breaks exact score ties by
// taking the first category in this slice with the maximum score.
var AllCategories = []Category{
	CategoryEbook,
	CategoryGame,
	CategorySoftware,
	CategoryAudio,
	CategoryVideo,
	CategoryComic,
	CategoryBundle,
	CategorySubscriptionContent,
	CategoryUnknown,
}

// Valid reports whether c is a member of the fixed taxonomy.
func (c Category) Valid() bool {
	for _, cat := range AllCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// SubcategoryGeneral is the fallback subcategory when no keyword rule
// matches or the category has no subcategory table.
const SubcategoryGeneral = "general"

// CategoryResult is the outcome of categorizing a single item.
type CategoryResult struct {
	Category    Category
	Subcategory string

	// Confidence is the aggregate score of the winning category clamped
	// to 1.0. It is a raw weighted sum, not a probability: two items can
	// both report 1.0 with very different rule support.
	Confidence float64

	// Method names the matcher types that contributed, joined with "+".
	Method string

	// MatchedRules lists rules that contributed a non-zero score.
	MatchedRules []string

	// Scores is the full per-category score vector, kept for diagnostics.
	Scores map[Category]float64
}
