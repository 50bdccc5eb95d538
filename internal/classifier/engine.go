package classifier

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vaultscan/assetvault/internal/rules"
	"github.com/vaultscan/assetvault/pkg/types"
)

// Engine categorizes items by aggregating scores from an ordered list of
// matchers. The default engine carries a single PatternMatcher seeded with
// the built-in rule set; additional matchers can be appended to layer in
// other strategies without changing the public contract.
type Engine struct {
	mu       sync.RWMutex
	rules    []rules.Rule
	pattern  *PatternMatcher
	matchers []Matcher
}

// NewEngine creates an engine with the default rule set.
func NewEngine() (*Engine, error) {
	return newEngine(rules.Default())
}

// NewStorefrontEngine creates an engine tuned for storefront libraries:
// the default rules plus the bundle-specific rules.
func NewStorefrontEngine() (*Engine, error) {
	return newEngine(append(rules.Default(), rules.Storefront()...))
}

func newEngine(ruleSet []rules.Rule) (*Engine, error) {
	pm, err := NewPatternMatcher(ruleSet)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule set: %w", err)
	}
	return &Engine{
		rules:    ruleSet,
		pattern:  pm,
		matchers: []Matcher{pm},
	}, nil
}

// Categorize scores the item with every matcher and returns the winning
// category with its subcategory and clamped confidence. It never fails:
// sparse or empty items degrade to zero scores and come back as
// CategoryUnknown with zero confidence.
func (e *Engine) Categorize(item *types.Item) types.CategoryResult {
	e.mu.RLock()
	matchers := e.matchers
	e.mu.RUnlock()

	aggregate := make(map[types.Category]float64, len(types.AllCategories))
	for _, cat := range types.AllCategories {
		aggregate[cat] = 0
	}

	var matchedRules []string
	methods := make([]string, 0, len(matchers))
	for _, m := range matchers {
		scores, matched := m.Match(item)
		for cat, score := range scores {
			aggregate[cat] += score
		}
		matchedRules = append(matchedRules, matched...)
		methods = append(methods, m.Name())
	}

	// Arg-max with declaration order as the tie-break. Iterating
	// AllCategories (not the map) keeps ties deterministic.
	best := types.AllCategories[0]
	for _, cat := range types.AllCategories {
		if aggregate[cat] > aggregate[best] {
			best = cat
		}
	}
	if aggregate[best] == 0 {
		// Nothing fired at all: the item is unclassified, not an ebook.
		best = types.CategoryUnknown
	}

	confidence := aggregate[best]
	if confidence > 1.0 {
		confidence = 1.0
	}

	return types.CategoryResult{
		Category:     best,
		Subcategory:  resolveSubcategory(best, item),
		Confidence:   confidence,
		Method:       strings.Join(methods, "+"),
		MatchedRules: matchedRules,
		Scores:       aggregate,
	}
}

// resolveSubcategory walks the winning category's keyword table in
// declaration order and returns the first subcategory with any keyword
// present in the item's display name.
func resolveSubcategory(cat types.Category, item *types.Item) string {
	table := rules.SubcategoriesFor(cat)
	if len(table) == 0 {
		return types.SubcategoryGeneral
	}

	name := strings.ToLower(item.DisplayName())
	for _, sub := range table {
		for _, kw := range sub.Keywords {
			if strings.Contains(name, kw) {
				return sub.Subcategory
			}
		}
	}
	return types.SubcategoryGeneral
}

// AddRule appends a rule and swaps in a freshly compiled pattern matcher.
// Compilation of the whole set runs again; rule additions are rare,
// configuration-time operations. Readers never observe a half-built
// matcher: the swap happens under the lock after compilation succeeds.
func (e *Engine) AddRule(r rules.Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := append(append([]rules.Rule{}, e.rules...), r)
	pm, err := NewPatternMatcher(next)
	if err != nil {
		return fmt.Errorf("failed to compile rule %q: %w", r.Name, err)
	}

	e.rules = next
	matchers := make([]Matcher, len(e.matchers))
	copy(matchers, e.matchers)
	for i, m := range matchers {
		if m == e.pattern {
			matchers[i] = pm
			break
		}
	}
	e.pattern = pm
	e.matchers = matchers
	return nil
}

// AddMatcher appends a custom matcher to the aggregation list.
func (e *Engine) AddMatcher(m Matcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	matchers := make([]Matcher, len(e.matchers), len(e.matchers)+1)
	copy(matchers, e.matchers)
	e.matchers = append(matchers, m)
}

// Rules returns a copy of the current rule definitions.
func (e *Engine) Rules() []rules.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]rules.Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
