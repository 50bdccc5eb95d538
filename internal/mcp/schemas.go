package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vaultscan/assetvault/pkg/types"
)

// filtersSchema is shared by every search tool.
func filtersSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional filters applied before query matching",
		"properties": map[string]interface{}{
			"category": map[string]interface{}{
				"type":        "string",
				"description": "Filter by category (ebook, game, software, audio, ...)",
			},
			"source": map[string]interface{}{
				"type":        "string",
				"description": "Filter by source name",
			},
			"platform": map[string]interface{}{
				"type":        "string",
				"description": "Filter by download platform",
			},
			"rating_min": map[string]interface{}{
				"type":        "number",
				"description": "Minimum rating (inclusive)",
			},
			"rating_max": map[string]interface{}{
				"type":        "number",
				"description": "Maximum rating (inclusive)",
			},
		},
	}
}

func searchModeProperties() map[string]interface{} {
	return map[string]interface{}{
		"regex": map[string]interface{}{
			"type":        "boolean",
			"description": "Treat the query as a Go regular expression instead of a substring",
			"default":     false,
		},
		"case_sensitive": map[string]interface{}{
			"type":        "boolean",
			"description": "Match case-sensitively (regex mode only; text matching is always case-insensitive)",
			"default":     false,
		},
		"use_cache": map[string]interface{}{
			"type":        "boolean",
			"description": "Serve repeated queries from the result cache",
			"default":     true,
		},
	}
}

// syncLibraryTool returns the tool definition for sync_library
func syncLibraryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "sync_library",
		Description: "Scrape the storefront library, categorize every item, and persist the inventory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"enrich": map[string]interface{}{
					"type":        "boolean",
					"description": "Look up external book metadata for items categorized as ebooks",
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Concurrent item processors (1-16)",
					"minimum":     1,
					"maximum":     16,
				},
			},
		},
	}
}

// searchAssetsTool returns the tool definition for search_assets
func searchAssetsTool() mcp.Tool {
	props := map[string]interface{}{
		"query": map[string]interface{}{
			"type":        "string",
			"description": "Search query matched across all searchable fields; empty matches everything the filters allow",
		},
		"filters": filtersSchema(),
	}
	for k, v := range searchModeProperties() {
		props[k] = v
	}
	return mcp.Tool{
		Name:        "search_assets",
		Description: "Search the asset library across all searchable fields",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
		},
	}
}

// searchByFieldTool returns the tool definition for search_by_field
func searchByFieldTool() mcp.Tool {
	props := map[string]interface{}{
		"field": map[string]interface{}{
			"type":        "string",
			"description": "Field to search",
			"enum":        types.SearchableFields,
		},
		"query": map[string]interface{}{
			"type":        "string",
			"description": "Search query for the field",
		},
		"filters": filtersSchema(),
	}
	for k, v := range searchModeProperties() {
		props[k] = v
	}
	return mcp.Tool{
		Name:        "search_by_field",
		Description: "Search a single field of the asset library",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"field", "query"},
		},
	}
}

// searchAdvancedTool returns the tool definition for search_advanced
func searchAdvancedTool() mcp.Tool {
	props := map[string]interface{}{
		"queries": map[string]interface{}{
			"type":        "object",
			"description": "Map of field name to query; keys must be searchable fields",
			"additionalProperties": map[string]interface{}{
				"type": "string",
			},
		},
		"operator": map[string]interface{}{
			"type":        "string",
			"description": "How per-field queries combine",
			"enum":        []string{"AND", "OR"},
			"default":     "AND",
		},
		"filters": filtersSchema(),
	}
	for k, v := range searchModeProperties() {
		props[k] = v
	}
	return mcp.Tool{
		Name:        "search_advanced",
		Description: "Search multiple fields with per-field queries combined by AND or OR",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"queries"},
		},
	}
}

// getSearchStatsTool returns the tool definition for get_search_stats
func getSearchStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_search_stats",
		Description: "Report library counts, category and source distributions, and search capabilities",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// categorizeItemTool returns the tool definition for categorize_item
func categorizeItemTool() mcp.Tool {
	return mcp.Tool{
		Name:        "categorize_item",
		Description: "Run the categorization engine on a single item and report scores",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Item name",
				},
				"human_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name, used when name is empty",
				},
				"machine_name": map[string]interface{}{
					"type":        "string",
					"description": "Machine identifier slug",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Item description text",
				},
			},
			Required: []string{"name"},
		},
	}
}

// getLibrarySummaryTool returns the tool definition for get_library_summary
func getLibrarySummaryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_library_summary",
		Description: "Summarize the library by category, subcategory, and source, with last sync info",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
