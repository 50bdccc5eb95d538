package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vaultscan/assetvault/internal/rules"
	"github.com/vaultscan/assetvault/pkg/types"
)

// Matcher scores an item against every category. Implementations must be
// safe for concurrent use once constructed.
type Matcher interface {
	// Match returns the per-category score map plus the names of rules
	// that contributed a non-zero score.
	Match(item *types.Item) (map[types.Category]float64, []string)
	// Name identifies the matcher type in CategoryResult.Method.
	Name() string
}

// compiledRule is the derived form of a rules.Rule. It is built once per
// matcher and never mutated; rule definitions stay pure data.
type compiledRule struct {
	def        rules.Rule
	patterns   []*regexp.Regexp
	required   []*regexp.Regexp
	exclusions []*regexp.Regexp
}

// PatternMatcher is an immutable value compiled from a rule list. Changing
// the rule set means building a new PatternMatcher, not mutating this one.
type PatternMatcher struct {
	compiled []compiledRule
}

// NewPatternMatcher compiles the given rules. A malformed pattern in any
// rule fails the whole construction.
func NewPatternMatcher(ruleSet []rules.Rule) (*PatternMatcher, error) {
	compiled := make([]compiledRule, 0, len(ruleSet))
	for _, r := range ruleSet {
		cr := compiledRule{def: r}

		var err error
		if cr.patterns, err = compileAll(r.Patterns); err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		if cr.required, err = compileAll(r.RequiredPatterns); err != nil {
			return nil, fmt.Errorf("rule %q required: %w", r.Name, err)
		}
		if cr.exclusions, err = compileAll(r.ExclusionPatterns); err != nil {
			return nil, fmt.Errorf("rule %q exclusion: %w", r.Name, err)
		}

		compiled = append(compiled, cr)
	}
	return &PatternMatcher{compiled: compiled}, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Name implements Matcher.
func (m *PatternMatcher) Name() string { return "PatternMatcher" }

// Match implements Matcher. Every category appears in the returned map,
// zero-valued when no rule fired.
func (m *PatternMatcher) Match(item *types.Item) (map[types.Category]float64, []string) {
	scores := make(map[types.Category]float64, len(types.AllCategories))
	for _, cat := range types.AllCategories {
		scores[cat] = 0
	}

	var matched []string
	for i := range m.compiled {
		cr := &m.compiled[i]
		score := scoreRule(cr, item)
		if score > 0 {
			matched = append(matched, cr.def.Name)
		}
		scores[cr.def.Category] += score
	}
	return scores, matched
}

// scoreRule evaluates a single compiled rule against an item.
func scoreRule(cr *compiledRule, item *types.Item) float64 {
	// Required patterns gate the whole rule: every one must match
	// somewhere in the item.
	for _, re := range cr.required {
		if !matchesAnywhere(re, item) {
			return 0
		}
	}

	// Any exclusion hit zeroes the rule, regardless of pattern support.
	for _, re := range cr.exclusions {
		if matchesAnywhere(re, item) {
			return 0
		}
	}

	var total float64
	for _, re := range cr.patterns {
		for field, fieldWeight := range cr.def.FieldWeights {
			text := item.Field(field)
			if text == "" {
				continue
			}
			if re.MatchString(strings.ToLower(text)) {
				total += cr.def.Weight * fieldWeight
			}
		}
	}
	return total
}

// matchesAnywhere scans the fixed match-field list, not the rule's
// weighted fields. The asymmetry is intentional: gating sees text that
// scoring may ignore.
func matchesAnywhere(re *regexp.Regexp, item *types.Item) bool {
	for _, field := range types.MatchFields {
		text := item.Field(field)
		if text == "" {
			continue
		}
		if re.MatchString(strings.ToLower(text)) {
			return true
		}
	}
	return false
}
