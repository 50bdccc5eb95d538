package search

import (
	"context"

	"github.com/vaultscan/assetvault/internal/storage"
)

// Capabilities describes what the search surface supports, for
// introspection by clients.
type Capabilities struct {
	RegexSupport     bool     `json:"regex_support"`
	CaseSensitive    bool     `json:"case_sensitive_support"`
	SearchableFields []string `json:"searchable_fields"`
	AvailableFilters []string `json:"available_filters"`
}

// Stats summarizes the searchable corpus and the search capabilities.
// When the store fails, Error carries the message and the counts stay
// zero.
type Stats struct {
	TotalProducts int                     `json:"total_products"`
	TotalBundles  int                     `json:"total_bundles"`
	Categories    []storage.CategoryCount `json:"categories"`
	Sources       []storage.SourceCount   `json:"sources"`
	Capabilities  Capabilities            `json:"search_capabilities"`
	Error         string                  `json:"error,omitempty"`
}

// Stats gathers corpus counts and capability flags. It never returns an
// error: store failures come back inside the Stats value so status
// surfaces always render something.
func (p *Provider) Stats(ctx context.Context) Stats {
	stats := Stats{
		Capabilities: Capabilities{
			RegexSupport:     true,
			CaseSensitive:    true,
			SearchableFields: p.SearchableFields(),
			AvailableFilters: append([]string{}, AvailableFilters...),
		},
	}

	products, err := p.store.CountProducts(ctx)
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	stats.TotalProducts = products

	bundles, err := p.store.CountBundles(ctx)
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	stats.TotalBundles = bundles

	categories, err := p.store.CategoryDistribution(ctx)
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	stats.Categories = categories

	sources, err := p.store.SourceDistribution(ctx)
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	stats.Sources = sources

	return stats
}
