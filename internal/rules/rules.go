// Package rules defines the declarative categorization rule model and the
// built-in rule sets. Rules are pure data: pattern strings, weights, and
// gating patterns. The compiled regex form is owned by the classifier's
// pattern matcher, which rebuilds it whenever the rule set changes.
package rules

import (
	"github.com/vaultscan/assetvault/pkg/types"
)

// Rule maps text patterns to a category with a weight.
type Rule struct {
	// Name uniquely identifies the rule; it is reported in MatchedRules.
	Name string

	// Category receives this rule's score.
	Category types.Category

	// Subcategory is the rule's default subcategory label.
	Subcategory string

	// Patterns are case-insensitive regexes. Each pattern that matches a
	// weighted field contributes Weight * FieldWeights[field] to the
	// rule's score. A pattern matching in two weighted fields contributes
	// twice: scores accumulate, they are not capped per pattern.
	Patterns []string

	// Weight is the base multiplier, typically 1.0-2.0.
	Weight float64

	// FieldWeights maps item field names to weights in (0, 1].
	FieldWeights map[string]float64

	// RequiredPatterns must all match somewhere in the item's match
	// fields, else the rule scores 0.
	RequiredPatterns []string

	// ExclusionPatterns force the rule's score to 0 when any of them
	// matches any match field. Checked after RequiredPatterns.
	ExclusionPatterns []string
}

// Default returns the built-in rule set. Callers receive a fresh slice
// and may append to it without affecting later calls.
func Default() []Rule {
	return []Rule{
		// Ebook rules
		{
			Name:        "ebook_keywords",
			Category:    types.CategoryEbook,
			Subcategory: "general",
			Patterns:    []string{`\bbook\b`, `\bguide\b`, `\bmanual\b`, `\btutorial\b`, `\bhandbook\b`},
			Weight:      1.0,
			FieldWeights: map[string]float64{
				"name": 0.8, "human_name": 0.8, "description": 0.3, "machine_name": 0.5,
			},
		},
		{
			Name:        "ebook_programming",
			Category:    types.CategoryEbook,
			Subcategory: "programming",
			Patterns:    []string{`\bprogramming\b`, `\bcoding\b`, `\bdevelopment\b`, `\bpython\b`, `\bjava\b`, `\bjavascript\b`},
			Weight:      1.2,
			FieldWeights: map[string]float64{
				"name": 0.9, "human_name": 0.9, "description": 0.4,
			},
		},
		{
			Name:        "ebook_security",
			Category:    types.CategoryEbook,
			Subcategory: "security",
			Patterns:    []string{`\bsecurity\b`, `\bhacking\b`, `\bpentesting\b`, `\bcyber\b`, `\bmalware\b`},
			Weight:      1.2,
			FieldWeights: map[string]float64{
				"name": 0.9, "human_name": 0.9, "description": 0.4,
			},
		},

		// Game rules
		{
			Name:        "game_keywords",
			Category:    types.CategoryGame,
			Subcategory: "general",
			Patterns:    []string{`\bgame\b`, `\badventure\b`, `\bquest\b`, `\blegend\b`},
			Weight:      1.0,
			FieldWeights: map[string]float64{
				"name": 0.8, "human_name": 0.8, "description": 0.3,
			},
		},
		{
			Name:        "game_strategy",
			Category:    types.CategoryGame,
			Subcategory: "strategy",
			Patterns:    []string{`\bstrategy\b`, `\brts\b`, `\bturn.based\b`, `\bcivilization\b`, `\bwar\b`},
			Weight:      1.1,
			FieldWeights: map[string]float64{
				"name": 0.9, "human_name": 0.9, "description": 0.4,
			},
		},

		// Software rules
		{
			Name:        "software_keywords",
			Category:    types.CategorySoftware,
			Subcategory: "general",
			Patterns:    []string{`\bsoftware\b`, `\btool\b`, `\butility\b`, `\bapp\b`, `\bsuite\b`, `\bstudio\b`},
			Weight:      1.0,
			FieldWeights: map[string]float64{
				"name": 0.8, "human_name": 0.8, "description": 0.3,
			},
		},

		// Audio rules
		{
			Name:        "audio_keywords",
			Category:    types.CategoryAudio,
			Subcategory: "general",
			Patterns:    []string{`\bsoundtrack\b`, `\bmusic\b`, `\baudio\b`, `\bmp3\b`, `\balbum\b`},
			Weight:      1.0,
			FieldWeights: map[string]float64{
				"name": 0.8, "human_name": 0.8, "description": 0.3,
			},
		},

		// Subscription content rules. High weights: a single coupon or
		// choice hit should dominate weaker keyword matches.
		{
			Name:        "subscription_coupons",
			Category:    types.CategorySubscriptionContent,
			Subcategory: "coupon",
			Patterns:    []string{`\bcoupon\b`, `\bdiscount\b`, `\%\s*off\b`},
			Weight:      2.0,
			FieldWeights: map[string]float64{
				"name": 1.0, "human_name": 1.0, "machine_name": 0.8,
			},
		},
		{
			Name:        "subscription_choice",
			Category:    types.CategorySubscriptionContent,
			Subcategory: "monthly_choice",
			Patterns:    []string{`\bchoice\b`, `\bsubscription\b`},
			Weight:      1.8,
			FieldWeights: map[string]float64{
				"name": 1.0, "human_name": 1.0, "machine_name": 0.8,
			},
		},
	}
}

// Storefront returns the rules appended by the storefront-tuned engine
// factory, on top of Default.
func Storefront() []Rule {
	return []Rule{
		{
			Name:        "storefront_bundle",
			Category:    types.CategoryBundle,
			Subcategory: "storefront_bundle",
			Patterns:    []string{`\bbundle\b`, `\bhumble\b`},
			Weight:      1.5,
			FieldWeights: map[string]float64{
				"name": 1.0, "human_name": 1.0,
			},
		},
	}
}
