package search

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultscan/assetvault/internal/storage"
	"github.com/vaultscan/assetvault/pkg/types"
)

// fakeStore evaluates conjunctive conditions in memory against a fixed
// record set. It understands exactly the condition shapes the provider
// emits.
type fakeStore struct {
	records []types.SearchRecord
	queries int
	fail    error
}

func (f *fakeStore) QueryRecords(_ context.Context, conds []string, args []interface{}) ([]types.SearchRecord, error) {
	f.queries++
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]types.SearchRecord, 0, len(f.records))
	for _, r := range f.records {
		match := true
		argIdx := 0
		for _, cond := range conds {
			n := strings.Count(cond, "?")
			condArgs := args[argIdx : argIdx+n]
			argIdx += n
			if !evalCond(r, cond, condArgs) {
				match = false
				break
			}
		}
		if match {
			out = append(out, r)
		}
	}
	return out, nil
}

func evalCond(r types.SearchRecord, cond string, args []interface{}) bool {
	// OR-groups of LIKE conditions
	if strings.HasPrefix(cond, "(") {
		parts := splitGroup(cond)
		result := false
		allMatched := true
		for i, part := range parts {
			matched := evalCond(r, part, args[i:i+1])
			if matched {
				result = true
			} else {
				allMatched = false
			}
		}
		if strings.Contains(cond, " AND ") && !strings.Contains(cond, " OR ") {
			return allMatched
		}
		return result
	}

	switch {
	case strings.Contains(cond, "LIKE"):
		col := columnField(cond)
		needle := strings.Trim(args[0].(string), "%")
		return strings.Contains(strings.ToLower(r.FieldValue(col)), strings.ToLower(needle))
	case cond == "p.category = ?":
		return r.Category == args[0].(string)
	case cond == "a.source_name = ?":
		return r.SourceName == args[0].(string)
	case cond == "d.platform = ?":
		return r.Platform == args[0].(string)
	case cond == "p.rating >= ?":
		return r.Rating >= args[0].(float64)
	case cond == "p.rating <= ?":
		return r.Rating <= args[0].(float64)
	}
	return false
}

func splitGroup(cond string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(cond, "("), ")")
	byOr := strings.Split(inner, " OR ")
	if len(byOr) > 1 {
		return byOr
	}
	return strings.Split(inner, " AND ")
}

var columnRe = regexp.MustCompile(`[pbad]\.(\w+)`)

func columnField(cond string) string {
	m := columnRe.FindStringSubmatch(cond)
	if m == nil {
		return ""
	}
	if m[1] == "source_name" {
		return "source_name"
	}
	return m[1]
}

func (f *fakeStore) CountProducts(context.Context) (int, error) {
	if f.fail != nil {
		return 0, f.fail
	}
	return len(f.records), nil
}

func (f *fakeStore) CountBundles(context.Context) (int, error) { return 2, nil }

func (f *fakeStore) CategoryDistribution(context.Context) ([]storage.CategoryCount, error) {
	return []storage.CategoryCount{{Category: "ebook", Count: 2}, {Category: "game", Count: 1}}, nil
}

func (f *fakeStore) SourceDistribution(context.Context) ([]storage.SourceCount, error) {
	return []storage.SourceCount{{Source: "humblebundle", Count: 3}}, nil
}

func testRecords() []types.SearchRecord {
	return []types.SearchRecord{
		{
			ProductID: "p1", HumanName: "Python Crash Course",
			Category: "ebook", Subcategory: "programming",
			Developer: "No Starch Press", Tags: "python,programming",
			Rating: 4.5, SourceName: "humblebundle",
			BundleName:  "Programming Books Bundle",
			Description: "A hands-on introduction to Python programming",
		},
		{
			ProductID: "p2", HumanName: "Black Hat Python",
			Category: "ebook", Subcategory: "security",
			Developer: "No Starch Press", Tags: "python,security",
			Rating: 4.2, SourceName: "humblebundle",
			Description: "Python programming for hackers and pentesters",
		},
		{
			ProductID: "p3", HumanName: "Stellar Tactics",
			Category: "game", Subcategory: "strategy",
			Developer: "Maverick Games", Rating: 3.8,
			SourceName: "humblebundle", Platform: "windows",
			Description: "Turn-based tactical combat in deep space",
		},
	}
}

func newTestProvider() (*Provider, *fakeStore) {
	store := &fakeStore{records: testRecords()}
	return NewProvider(store), store
}

func TestSearchAssetsText(t *testing.T) {
	p, _ := newTestProvider()

	records, err := p.SearchAssets(context.Background(), "python", Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Case-insensitive by default
	records, err = p.SearchAssets(context.Background(), "PYTHON", Options{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearchAssetsTextIgnoresCaseSensitive(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()

	// Text mode is always case-insensitive; the flag only affects regex
	// compilation
	lower, err := p.SearchAssets(ctx, "python", Options{CaseSensitive: true})
	require.NoError(t, err)
	upper, err := p.SearchAssets(ctx, "PYTHON", Options{CaseSensitive: true})
	require.NoError(t, err)

	require.Len(t, lower, 2)
	assert.Equal(t, lower, upper)
}

func TestSearchAssetsEmptyQueryMatchesAll(t *testing.T) {
	p, _ := newTestProvider()

	records, err := p.SearchAssets(context.Background(), "", Options{})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Filters still narrow an empty query
	records, err = p.SearchAssets(context.Background(), "", Options{
		Filters: Filters{Category: "game"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Stellar Tactics", records[0].HumanName)
}

func TestSearchAssetsRegex(t *testing.T) {
	p, _ := newTestProvider()

	records, err := p.SearchAssets(context.Background(), `^Black Hat`, Options{Regex: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p2", records[0].ProductID)

	// Regex matches description too
	records, err = p.SearchAssets(context.Background(), `tactical|pentesters`, Options{Regex: true})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearchAssetsRegexCaseSensitivity(t *testing.T) {
	p, _ := newTestProvider()

	records, err := p.SearchAssets(context.Background(), `^black hat`, Options{Regex: true})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = p.SearchAssets(context.Background(), `^black hat`, Options{
		Regex: true, CaseSensitive: true,
	})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchAssetsInvalidRegexFailsBeforeQuery(t *testing.T) {
	p, store := newTestProvider()

	_, err := p.SearchAssets(context.Background(), `[unclosed`, Options{Regex: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidPattern)
	assert.Zero(t, store.queries)
}

func TestFiltersApplyBeforeRegex(t *testing.T) {
	p, _ := newTestProvider()

	// "python" matches two ebooks; the game filter excludes both before
	// the regex runs
	records, err := p.SearchAssets(context.Background(), `python`, Options{
		Regex:   true,
		Filters: Filters{Category: "game"},
	})
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = p.SearchAssets(context.Background(), `python`, Options{
		Regex:   true,
		Filters: Filters{RatingMin: 4.3},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p1", records[0].ProductID)
}

func TestSearchByField(t *testing.T) {
	p, _ := newTestProvider()

	records, err := p.SearchByField(context.Background(), "developer", "no starch", Options{})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// Field-scoped: "python" in tags but not in the game's anything
	records, err = p.SearchByField(context.Background(), "tags", "security", Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p2", records[0].ProductID)
}

func TestSearchByFieldUnknownField(t *testing.T) {
	p, store := newTestProvider()

	_, err := p.SearchByField(context.Background(), "machine_name", "x", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownField)
	assert.Zero(t, store.queries)

	// The message names the field and lists the valid set
	assert.Contains(t, err.Error(), `"machine_name"`)
	for _, f := range types.SearchableFields {
		assert.Contains(t, err.Error(), f)
	}
}

func TestFilterCondsUseStoreColumns(t *testing.T) {
	conds, args := filterConds(Filters{
		Category: "ebook", Source: "humblebundle", Platform: "windows",
		RatingMin: 3.0, RatingMax: 5.0,
	})
	require.Len(t, conds, 5)
	require.Len(t, args, 5)

	for i, key := range []string{"category", "source", "platform", "rating", "rating"} {
		col, ok := storage.FilterColumn(key)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(conds[i], col+" "), "cond %q should use column %q", conds[i], col)
	}
}

func TestSearchAdvancedAND(t *testing.T) {
	p, _ := newTestProvider()

	records, err := p.SearchAdvanced(context.Background(), map[string]string{
		"category": "ebook",
		"tags":     "security",
	}, "AND", Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p2", records[0].ProductID)
}

func TestSearchAdvancedOR(t *testing.T) {
	p, _ := newTestProvider()

	records, err := p.SearchAdvanced(context.Background(), map[string]string{
		"subcategory": "strategy",
		"tags":        "security",
	}, "or", Options{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearchAdvancedRegex(t *testing.T) {
	p, _ := newTestProvider()

	records, err := p.SearchAdvanced(context.Background(), map[string]string{
		"human_name":  `python`,
		"description": `hackers`,
	}, "AND", Options{Regex: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p2", records[0].ProductID)
}

func TestSearchAdvancedValidation(t *testing.T) {
	p, store := newTestProvider()
	ctx := context.Background()

	_, err := p.SearchAdvanced(ctx, nil, "AND", Options{})
	assert.ErrorIs(t, err, types.ErrEmptyQuerySet)

	_, err = p.SearchAdvanced(ctx, map[string]string{"category": "x"}, "XOR", Options{})
	assert.ErrorIs(t, err, types.ErrInvalidOperator)

	_, err = p.SearchAdvanced(ctx, map[string]string{"nope": "x"}, "AND", Options{})
	assert.ErrorIs(t, err, types.ErrUnknownField)

	// Defaults to AND when operator is empty
	_, err = p.SearchAdvanced(ctx, map[string]string{"category": "ebook"}, "", Options{})
	assert.NoError(t, err)

	assert.Equal(t, 1, store.queries)
}

func TestRegexMatchesNaiveReference(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()

	pattern := `(?i)python`
	re := regexp.MustCompile(pattern)

	want := make([]string, 0)
	for _, r := range testRecords() {
		for _, f := range types.SearchableFields {
			if re.MatchString(r.FieldValue(f)) {
				want = append(want, r.ProductID)
				break
			}
		}
	}

	records, err := p.SearchAssets(ctx, `python`, Options{Regex: true})
	require.NoError(t, err)
	got := make([]string, 0, len(records))
	for _, r := range records {
		got = append(got, r.ProductID)
	}
	assert.Equal(t, want, got)
}

func TestQueryCache(t *testing.T) {
	p, store := newTestProvider()
	ctx := context.Background()
	opts := Options{UseCache: true}

	records, err := p.SearchAssets(ctx, "python", opts)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, store.queries)

	// Second identical search hits the cache
	_, err = p.SearchAssets(ctx, "python", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, store.queries)

	// Different options miss
	_, err = p.SearchAssets(ctx, "python", Options{UseCache: true, Regex: true})
	require.NoError(t, err)
	assert.Equal(t, 2, store.queries)

	// Invalidation forces a refetch
	p.InvalidateCache()
	_, err = p.SearchAssets(ctx, "python", opts)
	require.NoError(t, err)
	assert.Equal(t, 3, store.queries)
}

func TestSearchableFieldsCopy(t *testing.T) {
	p, _ := newTestProvider()

	fields := p.SearchableFields()
	assert.Equal(t, types.SearchableFields, fields)

	fields[0] = "mutated"
	assert.Equal(t, "human_name", types.SearchableFields[0])
}

func TestStats(t *testing.T) {
	p, _ := newTestProvider()

	stats := p.Stats(context.Background())
	assert.Empty(t, stats.Error)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalBundles)
	assert.Len(t, stats.Categories, 2)
	assert.Len(t, stats.Sources, 1)
	assert.True(t, stats.Capabilities.RegexSupport)
	assert.Equal(t, types.SearchableFields, stats.Capabilities.SearchableFields)
	assert.Equal(t, AvailableFilters, stats.Capabilities.AvailableFilters)
}

func TestStatsNeverFails(t *testing.T) {
	store := &fakeStore{fail: errors.New("database locked")}
	p := NewProvider(store)

	stats := p.Stats(context.Background())
	assert.Equal(t, "database locked", stats.Error)
	assert.Zero(t, stats.TotalProducts)
	// Capabilities render even on failure
	assert.NotEmpty(t, stats.Capabilities.SearchableFields)
}

// End-to-end against the real SQLite store.
func TestSearchAgainstSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "search.db")
	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	require.NoError(t, store.UpsertSource(ctx, &storage.Source{
		SourceID: "hb", SourceName: "humblebundle", SourceType: "storefront",
	}))
	require.NoError(t, store.UpsertProduct(ctx, &storage.Product{
		ProductID: "p1", SourceID: "hb", HumanName: "Python Crash Course",
		Category: "ebook", Subcategory: "programming", Rating: 4.5,
		Description: "A hands-on introduction to Python programming",
	}))
	require.NoError(t, store.UpsertProduct(ctx, &storage.Product{
		ProductID: "p2", SourceID: "hb", HumanName: "Stellar Tactics",
		Category: "game", Subcategory: "strategy", Rating: 3.8,
	}))

	p := NewProvider(store)

	records, err := p.SearchAssets(ctx, "python", Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Python Crash Course", records[0].HumanName)

	records, err = p.SearchAssets(ctx, "PYTHON", Options{CaseSensitive: true})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = p.SearchByField(ctx, "description", `hands-?on`, Options{Regex: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p1", records[0].ProductID)

	records, err = p.SearchAssets(ctx, "", Options{
		Filters: Filters{Category: "game", RatingMin: 3.0},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Stellar Tactics", records[0].HumanName)
}
