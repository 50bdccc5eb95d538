package rules

import (
	"github.com/vaultscan/assetvault/pkg/types"
)

// SubcategoryRule pairs a subcategory label with the keywords that select
// it. Keywords are matched as case-insensitive substrings of the item's
// display name.
type SubcategoryRule struct {
	Subcategory string
	Keywords    []string
}

// subcategoryTables holds the per-category subcategory rules. Order within
// a table matters: the first rule with any keyword present wins.
var subcategoryTables = map[types.Category][]SubcategoryRule{
	types.CategoryEbook: {
		{Subcategory: "programming", Keywords: []string{"programming", "coding", "development"}},
		{Subcategory: "security", Keywords: []string{"security", "hacking", "pentesting"}},
		{Subcategory: "cooking", Keywords: []string{"cooking", "recipe", "kitchen"}},
		{Subcategory: "gardening", Keywords: []string{"gardening", "garden", "plant"}},
		{Subcategory: "arts", Keywords: []string{"art", "design", "creative"}},
		{Subcategory: "survival", Keywords: []string{"survival", "outdoor", "wilderness"}},
	},
	types.CategoryGame: {
		{Subcategory: "strategy", Keywords: []string{"strategy", "rts", "turn-based"}},
		{Subcategory: "rpg", Keywords: []string{"rpg", "role playing", "adventure"}},
		{Subcategory: "simulation", Keywords: []string{"simulation", "simulator", "sim"}},
		{Subcategory: "puzzle", Keywords: []string{"puzzle", "brain", "logic"}},
		{Subcategory: "action", Keywords: []string{"action", "shooter", "fps"}},
	},
	types.CategorySubscriptionContent: {
		{Subcategory: "coupon", Keywords: []string{"coupon"}},
		{Subcategory: "monthly_choice", Keywords: []string{"choice"}},
	},
}

// SubcategoriesFor returns the subcategory rules for a category, or nil
// when the category resolves everything to "general".
func SubcategoriesFor(cat types.Category) []SubcategoryRule {
	return subcategoryTables[cat]
}
