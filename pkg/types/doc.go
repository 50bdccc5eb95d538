// Package types provides shared type definitions for the assetvault server.
//
// This package defines the fixed category taxonomy, the item attributes
// inspected during categorization, and the search projection returned by
// every search entry point.
//
// # Taxonomy
//
// Category is a closed enumeration. Declaration order matters: when two
// categories tie on aggregate score, the engine picks the one appearing
// first in AllCategories:
//
//	result := engine.Categorize(&types.Item{HumanName: "Python Guide"})
//	// result.Category == types.CategoryEbook
//
// # Search Projection
//
// SearchRecord is the only row shape search providers return. Field-scoped
// queries must name a member of SearchableFields; anything else is rejected
// with ErrUnknownField before any store query runs.
package types
