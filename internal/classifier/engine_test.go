package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultscan/assetvault/internal/rules"
	"github.com/vaultscan/assetvault/pkg/types"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	require.NoError(t, err)
	return e
}

func TestCategorizeEbook(t *testing.T) {
	e := newTestEngine(t)

	result := e.Categorize(&types.Item{Name: "Crash Course Guide"})
	assert.Equal(t, types.CategoryEbook, result.Category)
	assert.Equal(t, types.SubcategoryGeneral, result.Subcategory)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
	assert.Equal(t, "PatternMatcher", result.Method)
	assert.Equal(t, []string{"ebook_keywords"}, result.MatchedRules)
}

func TestCategorizeGameWithSubcategory(t *testing.T) {
	e := newTestEngine(t)

	// game_keywords 1.0*0.8 plus game_strategy 1.1*0.9 on the name field.
	result := e.Categorize(&types.Item{Name: "Stellar Strategy Game"})
	assert.Equal(t, types.CategoryGame, result.Category)
	assert.Equal(t, "strategy", result.Subcategory)
	assert.InDelta(t, 1.79, result.Scores[types.CategoryGame], 1e-9)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestCategorizeConfidenceClamped(t *testing.T) {
	e := newTestEngine(t)

	result := e.Categorize(&types.Item{
		Name:      "Woodworking Handbook",
		HumanName: "Woodworking Handbook",
	})
	assert.Equal(t, 1.0, result.Confidence)
	// The score vector keeps the unclamped aggregate.
	assert.InDelta(t, 1.6, result.Scores[types.CategoryEbook], 1e-9)
}

func TestCategorizeTieBreaksByDeclarationOrder(t *testing.T) {
	e := newTestEngine(t)

	// ebook_keywords and game_keywords both score 0.8 on the name. Ebook
	// is declared first in AllCategories and must win every time.
	for i := 0; i < 20; i++ {
		result := e.Categorize(&types.Item{Name: "Game Guide"})
		require.Equal(t, types.CategoryEbook, result.Category)
		require.InDelta(t, result.Scores[types.CategoryEbook], result.Scores[types.CategoryGame], 1e-9)
	}
}

func TestCategorizeUnmatchedIsUnknown(t *testing.T) {
	e := newTestEngine(t)

	result := e.Categorize(&types.Item{Name: "Zzzz Qqqq"})
	assert.Equal(t, types.CategoryUnknown, result.Category)
	assert.Equal(t, types.SubcategoryGeneral, result.Subcategory)
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.MatchedRules)
}

func TestCategorizeEmptyItem(t *testing.T) {
	e := newTestEngine(t)

	result := e.Categorize(&types.Item{})
	assert.Equal(t, types.CategoryUnknown, result.Category)
	assert.Zero(t, result.Confidence)
}

func TestCategorizeSubscriptionDominates(t *testing.T) {
	e := newTestEngine(t)

	result := e.Categorize(&types.Item{Name: "Store Discount Coupon"})
	assert.Equal(t, types.CategorySubscriptionContent, result.Category)
	assert.Equal(t, "coupon", result.Subcategory)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestSubcategoryFirstTableEntryWins(t *testing.T) {
	e := newTestEngine(t)

	// Both programming and security keywords appear; the programming row
	// comes first in the ebook table.
	result := e.Categorize(&types.Item{Name: "Programming Security Handbook"})
	assert.Equal(t, types.CategoryEbook, result.Category)
	assert.Equal(t, "programming", result.Subcategory)
}

func TestSubcategoryUsesHumanNameFallback(t *testing.T) {
	e := newTestEngine(t)

	result := e.Categorize(&types.Item{HumanName: "Strategy Game Collection"})
	assert.Equal(t, types.CategoryGame, result.Category)
	assert.Equal(t, "strategy", result.Subcategory)
}

func TestStorefrontEngineCategorizesBundles(t *testing.T) {
	e, err := NewStorefrontEngine()
	require.NoError(t, err)

	result := e.Categorize(&types.Item{Name: "Learn You Some Code Bundle"})
	assert.Equal(t, types.CategoryBundle, result.Category)
	assert.Contains(t, result.MatchedRules, "storefront_bundle")
}

func TestAddRule(t *testing.T) {
	e := newTestEngine(t)

	before := e.Categorize(&types.Item{Name: "Documentary Feature"})
	require.Equal(t, types.CategoryUnknown, before.Category)

	err := e.AddRule(rules.Rule{
		Name:         "video_documentary",
		Category:     types.CategoryVideo,
		Subcategory:  "documentary",
		Patterns:     []string{`\bdocumentary\b`},
		Weight:       1.0,
		FieldWeights: map[string]float64{"name": 1.0},
	})
	require.NoError(t, err)

	after := e.Categorize(&types.Item{Name: "Documentary Feature"})
	assert.Equal(t, types.CategoryVideo, after.Category)
	assert.Equal(t, []string{"video_documentary"}, after.MatchedRules)
}

func TestAddRuleInvalidPatternLeavesEngineIntact(t *testing.T) {
	e := newTestEngine(t)
	before := len(e.Rules())

	err := e.AddRule(rules.Rule{
		Name:     "broken",
		Category: types.CategoryVideo,
		Patterns: []string{"[unclosed"},
	})
	require.Error(t, err)
	assert.Len(t, e.Rules(), before)

	// The engine keeps categorizing with the previous matcher.
	result := e.Categorize(&types.Item{Name: "Crash Course Guide"})
	assert.Equal(t, types.CategoryEbook, result.Category)
}

type stubMatcher struct{}

func (stubMatcher) Match(*types.Item) (map[types.Category]float64, []string) {
	return map[types.Category]float64{types.CategoryComic: 0.5}, []string{"stub_rule"}
}

func (stubMatcher) Name() string { return "stub" }

func TestAddMatcherAggregates(t *testing.T) {
	e := newTestEngine(t)
	e.AddMatcher(stubMatcher{})

	// Nothing in the rule set fires, so the stub's comic score wins.
	result := e.Categorize(&types.Item{Name: "Zzzz Qqqq"})
	assert.Equal(t, types.CategoryComic, result.Category)
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
	assert.Equal(t, "PatternMatcher+stub", result.Method)
	assert.Contains(t, result.MatchedRules, "stub_rule")
}

func TestRulesReturnsCopy(t *testing.T) {
	e := newTestEngine(t)

	got := e.Rules()
	require.NotEmpty(t, got)
	got[0].Name = "mutated"
	assert.NotEqual(t, "mutated", e.Rules()[0].Name)
}
