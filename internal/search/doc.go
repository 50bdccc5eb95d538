// Package search provides multi-field search over the asset store.
//
// Two query modes share one result shape:
//
//   - Text mode treats the query as a substring and pushes matching down
//     to SQL via LIKE. It is always case-insensitive; the CaseSensitive
//     option only changes how regex patterns compile.
//   - Regex mode compiles the query with Go regexp, fetches the
//     filter-narrowed record set from SQL, and matches in process. The
//     pattern is validated before any database work happens.
//
// Filters (category, source, platform, rating bounds) always apply at
// the SQL stage, so regex mode only post-filters the rows the filters
// let through.
//
// Results are cached in an LRU keyed by a hash of every parameter that
// affects the result set. The sync pipeline calls InvalidateCache after
// writing new data.
//
// # Basic Usage
//
//	provider := search.NewProvider(store)
//
//	records, err := provider.SearchAssets(ctx, "python", search.Options{
//	    Filters: search.Filters{Category: "ebook"},
//	})
//
//	records, err = provider.SearchByField(ctx, "developer", `(?i)^no starch`,
//	    search.Options{Regex: true})
//
//	records, err = provider.SearchAdvanced(ctx, map[string]string{
//	    "category": "ebook",
//	    "tags":     "security",
//	}, "AND", search.Options{})
package search
