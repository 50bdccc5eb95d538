package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vaultscan/assetvault/internal/storage"
	"github.com/vaultscan/assetvault/pkg/types"
)

// Filters narrow a search before any query matching happens. They are
// always applied at the SQL stage, in both text and regex mode.
type Filters struct {
	Category  string
	Source    string
	Platform  string
	RatingMin float64
	RatingMax float64
}

// Options controls how a search executes. CaseSensitive only affects
// regex mode; text matching is always case-insensitive.
type Options struct {
	Filters       Filters
	Regex         bool
	CaseSensitive bool
	UseCache      bool
	CacheTTL      time.Duration // zero means DefaultCacheTTL
}

// AvailableFilters is the fixed set of filter keys exposed by
// introspection.
var AvailableFilters = []string{"category", "source", "platform", "rating_min", "rating_max"}

// Store is the subset of the storage layer the search provider needs.
type Store interface {
	QueryRecords(ctx context.Context, conds []string, args []interface{}) ([]types.SearchRecord, error)
	CountProducts(ctx context.Context) (int, error)
	CountBundles(ctx context.Context) (int, error)
	CategoryDistribution(ctx context.Context) ([]storage.CategoryCount, error)
	SourceDistribution(ctx context.Context) ([]storage.SourceCount, error)
}

// Provider executes searches over the asset store. Text queries push
// matching down to SQL; regex queries narrow with filters at the SQL
// stage and match in process.
type Provider struct {
	store Store
	cache *queryCache
}

// NewProvider creates a search provider backed by the given store.
func NewProvider(store Store) *Provider {
	return &Provider{
		store: store,
		cache: newQueryCache(cacheSize),
	}
}

// SearchableFields returns the field names callers may target.
func (p *Provider) SearchableFields() []string {
	out := make([]string, len(types.SearchableFields))
	copy(out, types.SearchableFields)
	return out
}

// SearchAssets searches the query across all searchable fields. An empty
// query matches everything the filters allow.
func (p *Provider) SearchAssets(ctx context.Context, query string, opts Options) ([]types.SearchRecord, error) {
	return p.search(ctx, types.SearchableFields, query, opts)
}

// SearchByField searches the query against a single field. Unknown field
// names fail fast with ErrUnknownField.
func (p *Provider) SearchByField(ctx context.Context, field, query string, opts Options) ([]types.SearchRecord, error) {
	if !types.IsSearchableField(field) {
		return nil, unknownFieldError(field)
	}
	return p.search(ctx, []string{field}, query, opts)
}

func (p *Provider) search(ctx context.Context, fields []string, query string, opts Options) ([]types.SearchRecord, error) {
	if opts.UseCache {
		key := cacheKey("search", fields, map[string]string{"": query}, "", opts)
		if records, ok := p.cache.get(key); ok {
			return records, nil
		}
		records, err := p.searchUncached(ctx, fields, query, opts)
		if err != nil {
			return nil, err
		}
		p.cache.put(key, records, opts.CacheTTL)
		return records, nil
	}
	return p.searchUncached(ctx, fields, query, opts)
}

func (p *Provider) searchUncached(ctx context.Context, fields []string, query string, opts Options) ([]types.SearchRecord, error) {
	conds, args := filterConds(opts.Filters)

	if query == "" {
		return p.store.QueryRecords(ctx, conds, args)
	}

	if opts.Regex {
		re, err := compilePattern(query, opts.CaseSensitive)
		if err != nil {
			return nil, err
		}
		records, err := p.store.QueryRecords(ctx, conds, args)
		if err != nil {
			return nil, err
		}
		return filterRegex(records, fields, re), nil
	}

	cond, qargs := textCond(fields, query)
	conds = append(conds, cond)
	args = append(args, qargs...)
	return p.store.QueryRecords(ctx, conds, args)
}

// SearchAdvanced runs one query per field and combines them with the
// given boolean operator. The operator must be AND or OR; an empty
// operator defaults to AND. All field names are validated before any
// query runs.
func (p *Provider) SearchAdvanced(ctx context.Context, queries map[string]string, operator string, opts Options) ([]types.SearchRecord, error) {
	if len(queries) == 0 {
		return nil, types.ErrEmptyQuerySet
	}

	op := strings.ToUpper(strings.TrimSpace(operator))
	if op == "" {
		op = "AND"
	}
	if op != "AND" && op != "OR" {
		return nil, fmt.Errorf("%w: got %q", types.ErrInvalidOperator, operator)
	}

	// Walk fields in the introspection order so SQL and cache keys are
	// deterministic regardless of map iteration.
	fields := make([]string, 0, len(queries))
	for _, f := range types.SearchableFields {
		if _, ok := queries[f]; ok {
			fields = append(fields, f)
		}
	}
	if len(fields) != len(queries) {
		for f := range queries {
			if !types.IsSearchableField(f) {
				return nil, unknownFieldError(f)
			}
		}
	}

	if opts.UseCache {
		key := cacheKey("advanced", fields, queries, op, opts)
		if records, ok := p.cache.get(key); ok {
			return records, nil
		}
		records, err := p.advancedUncached(ctx, fields, queries, op, opts)
		if err != nil {
			return nil, err
		}
		p.cache.put(key, records, opts.CacheTTL)
		return records, nil
	}
	return p.advancedUncached(ctx, fields, queries, op, opts)
}

func (p *Provider) advancedUncached(ctx context.Context, fields []string, queries map[string]string, op string, opts Options) ([]types.SearchRecord, error) {
	conds, args := filterConds(opts.Filters)

	if opts.Regex {
		regexes := make(map[string]*regexp.Regexp, len(fields))
		for _, f := range fields {
			re, err := compilePattern(queries[f], opts.CaseSensitive)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f, err)
			}
			regexes[f] = re
		}
		records, err := p.store.QueryRecords(ctx, conds, args)
		if err != nil {
			return nil, err
		}
		return filterRegexSet(records, fields, regexes, op), nil
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		cond, qargs := textCond([]string{f}, queries[f])
		parts = append(parts, cond)
		args = append(args, qargs...)
	}
	conds = append(conds, "("+strings.Join(parts, " "+op+" ")+")")
	return p.store.QueryRecords(ctx, conds, args)
}

// InvalidateCache drops every cached result. The sync pipeline calls
// this after writing new library data.
func (p *Provider) InvalidateCache() {
	p.cache.purge()
}

// unknownFieldError names the offending field and the valid set.
func unknownFieldError(field string) error {
	return fmt.Errorf("%w: %q (searchable fields: %s)",
		types.ErrUnknownField, field, strings.Join(types.SearchableFields, ", "))
}

// filterConds translates filters into SQL conjuncts. Column expressions
// come from the store's filter map so the two layers cannot drift.
func filterConds(f Filters) ([]string, []interface{}) {
	conds := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	add := func(key, op string, val interface{}) {
		if col, ok := storage.FilterColumn(key); ok {
			conds = append(conds, col+" "+op+" ?")
			args = append(args, val)
		}
	}
	if f.Category != "" {
		add("category", "=", f.Category)
	}
	if f.Source != "" {
		add("source", "=", f.Source)
	}
	if f.Platform != "" {
		add("platform", "=", f.Platform)
	}
	if f.RatingMin > 0 {
		add("rating", ">=", f.RatingMin)
	}
	if f.RatingMax > 0 {
		add("rating", "<=", f.RatingMax)
	}
	return conds, args
}

// textCond builds one OR-group of substring conditions over the given
// fields. Text mode is always case-insensitive; CaseSensitive only
// changes regex compilation. SQLite LIKE is case-insensitive for ASCII.
func textCond(fields []string, query string) (string, []interface{}) {
	parts := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		col, ok := storage.SearchColumn(f)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("COALESCE(%s, '') LIKE ?", col))
		args = append(args, "%"+query+"%")
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func compilePattern(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidPattern, err)
	}
	return re, nil
}

// filterRegex keeps records where the regex matches any of the fields.
func filterRegex(records []types.SearchRecord, fields []string, re *regexp.Regexp) []types.SearchRecord {
	out := make([]types.SearchRecord, 0, len(records))
	for i := range records {
		for _, f := range fields {
			if re.MatchString(records[i].FieldValue(f)) {
				out = append(out, records[i])
				break
			}
		}
	}
	return out
}

// filterRegexSet applies one regex per field, combined with AND or OR.
func filterRegexSet(records []types.SearchRecord, fields []string, regexes map[string]*regexp.Regexp, op string) []types.SearchRecord {
	out := make([]types.SearchRecord, 0, len(records))
	for i := range records {
		keep := op == "AND"
		for _, f := range fields {
			matched := regexes[f].MatchString(records[i].FieldValue(f))
			if op == "AND" && !matched {
				keep = false
				break
			}
			if op == "OR" && matched {
				keep = true
				break
			}
		}
		if keep {
			out = append(out, records[i])
		}
	}
	return out
}
