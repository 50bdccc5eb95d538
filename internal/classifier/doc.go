// Package classifier implements weighted rule-based categorization of
// library items with confidence scoring.
//
// The engine aggregates per-category scores from an ordered list of
// matchers. The built-in PatternMatcher compiles the declarative rules
// from internal/rules into case-insensitive regexes and scores each item
// by accumulating weight * field_weight for every pattern hit in every
// weighted field.
//
// # Scoring
//
// Per rule:
//
//  1. Required patterns must all match somewhere in the item's match
//     fields, or the rule scores 0.
//  2. Any exclusion pattern hit forces the rule to 0.
//  3. Otherwise each pattern adds weight * field_weight for every
//     weighted field it matches. Contributions accumulate; a pattern
//     matching both name and description counts twice.
//
// Rule scores sum into their target category. The winning category is the
// arg-max of the aggregate vector, with AllCategories declaration order
// breaking exact ties. Confidence is the winning score clamped to 1.0: a
// raw weighted sum, not a normalized probability. Two items can both
// reach confidence 1.0 with very different rule support; consumers that
// need calibrated probabilities must post-process.
//
// # Basic Usage
//
//	engine, err := classifier.NewStorefrontEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := engine.Categorize(&types.Item{
//	    HumanName: "Python Programming Guide",
//	})
//	// result.Category == types.CategoryEbook
//	// result.Subcategory == "programming"
//
// # Extending
//
// AddRule appends a rule and rebuilds the compiled matcher as a new
// immutable value, swapping it in atomically. AddMatcher layers in a
// custom strategy; its score map is summed into the aggregate alongside
// the pattern matcher's.
package classifier
