package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vaultscan/assetvault/internal/search"
	"github.com/vaultscan/assetvault/internal/storage"
	"github.com/vaultscan/assetvault/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeUnknownField    = -32001 // Field is not searchable
	ErrorCodeInvalidPattern  = -32002 // Regex query failed to compile
	ErrorCodeInvalidOperator = -32003 // Boolean operator is not AND/OR
	ErrorCodeEmptyQuerySet   = -32004 // Advanced search got no field queries
	ErrorCodeSyncFailed      = -32005 // Library sync aborted
)

// handleSyncLibrary handles the sync_library tool invocation
func (s *Server) handleSyncLibrary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	enrichEbooks := getBoolDefault(args, "enrich", s.cfg.Enrich.Enabled)
	workers := getIntDefault(args, "workers", s.cfg.Sync.Workers)
	if workers < 1 || workers > 16 {
		return nil, newMCPError(ErrorCodeInvalidParams, "workers must be between 1 and 16", map[string]interface{}{
			"param": "workers",
			"value": workers,
		})
	}

	fetcher, cleanup, err := s.newFetcher(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to start browser session", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cleanup()

	stats, err := s.newSyncer(fetcher, enrichEbooks, workers).Sync(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeSyncFailed, "library sync failed", map[string]interface{}{
			"error":  err.Error(),
			"status": stats.Status,
		})
	}

	response := map[string]interface{}{
		"run_id":          stats.RunID,
		"status":          stats.Status,
		"products_synced": stats.ProductsSynced,
		"products_failed": stats.ProductsFailed,
		"bundles_synced":  stats.BundlesSynced,
		"bundles_failed":  stats.BundlesFailed,
		"duration_ms":     stats.Duration.Milliseconds(),
	}
	if len(stats.Errors) > 0 {
		errorCount := len(stats.Errors)
		if errorCount > 5 {
			response["errors"] = stats.Errors[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.Errors
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchAssets handles the search_assets tool invocation
func (s *Server) handleSearchAssets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	query := getStringDefault(args, "query", "")
	opts := parseOptions(args)

	records, err := s.provider.SearchAssets(ctx, query, opts)
	if err != nil {
		return nil, searchError(err)
	}
	return searchResult(records), nil
}

// handleSearchByField handles the search_by_field tool invocation
func (s *Server) handleSearchByField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	field, ok := args["field"].(string)
	if !ok || field == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "field parameter is required", map[string]interface{}{
			"param":   "field",
			"reason":  "missing or empty",
			"allowed": types.SearchableFields,
		})
	}

	query := getStringDefault(args, "query", "")
	opts := parseOptions(args)

	records, err := s.provider.SearchByField(ctx, field, query, opts)
	if err != nil {
		return nil, searchError(err)
	}
	return searchResult(records), nil
}

// handleSearchAdvanced handles the search_advanced tool invocation
func (s *Server) handleSearchAdvanced(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rawQueries, ok := args["queries"].(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "queries parameter is required", map[string]interface{}{
			"param":  "queries",
			"reason": "missing or not an object",
		})
	}

	queries := make(map[string]string, len(rawQueries))
	for field, v := range rawQueries {
		q, ok := v.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "query values must be strings", map[string]interface{}{
				"param": "queries",
				"field": field,
			})
		}
		queries[field] = q
	}

	operator := getStringDefault(args, "operator", "AND")
	opts := parseOptions(args)

	records, err := s.provider.SearchAdvanced(ctx, queries, operator, opts)
	if err != nil {
		return nil, searchError(err)
	}
	return searchResult(records), nil
}

// handleGetSearchStats handles the get_search_stats tool invocation.
// Stats never fail: store errors come back inside the payload.
func (s *Server) handleGetSearchStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.provider.Stats(ctx)
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf(`{"error": %q}`, err.Error())), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleCategorizeItem handles the categorize_item tool invocation
func (s *Server) handleCategorizeItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	item := &types.Item{
		Name:        name,
		HumanName:   getStringDefault(args, "human_name", ""),
		MachineName: getStringDefault(args, "machine_name", ""),
		Description: getStringDefault(args, "description", ""),
	}
	result := s.engine.Categorize(item)

	response := map[string]interface{}{
		"category":      result.Category,
		"subcategory":   result.Subcategory,
		"confidence":    result.Confidence,
		"method":        result.Method,
		"matched_rules": result.MatchedRules,
		"scores":        result.Scores,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetLibrarySummary handles the get_library_summary tool invocation
func (s *Server) handleGetLibrarySummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.store.LibrarySummary(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to summarize library", map[string]interface{}{
			"error": err.Error(),
		})
	}

	products, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count products", map[string]interface{}{
			"error": err.Error(),
		})
	}
	bundles, err := s.store.CountBundles(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count bundles", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"total_products": products,
		"total_bundles":  bundles,
		"breakdown":      summary,
	}

	if last, err := s.store.LastSync(ctx, ""); err == nil {
		response["last_sync"] = map[string]interface{}{
			"source_id":       last.SourceID,
			"synced_at":       last.SyncedAt.Format("2006-01-02T15:04:05Z07:00"),
			"status":          last.Status,
			"products_synced": last.ProductsSynced,
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read sync history", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// parseOptions extracts the shared search options and filters.
func parseOptions(args map[string]interface{}) search.Options {
	opts := search.Options{
		Regex:         getBoolDefault(args, "regex", false),
		CaseSensitive: getBoolDefault(args, "case_sensitive", false),
		UseCache:      getBoolDefault(args, "use_cache", true),
	}
	if filters, ok := args["filters"].(map[string]interface{}); ok {
		opts.Filters = search.Filters{
			Category:  getStringDefault(filters, "category", ""),
			Source:    getStringDefault(filters, "source", ""),
			Platform:  getStringDefault(filters, "platform", ""),
			RatingMin: getFloatDefault(filters, "rating_min", 0),
			RatingMax: getFloatDefault(filters, "rating_max", 0),
		}
	}
	return opts
}

// searchError maps provider errors to MCP error codes.
func searchError(err error) error {
	data := map[string]interface{}{"error": err.Error()}
	switch {
	case errors.Is(err, types.ErrUnknownField):
		data["allowed"] = types.SearchableFields
		return newMCPError(ErrorCodeUnknownField, "unknown searchable field", data)
	case errors.Is(err, types.ErrInvalidPattern):
		return newMCPError(ErrorCodeInvalidPattern, "invalid regex pattern", data)
	case errors.Is(err, types.ErrInvalidOperator):
		return newMCPError(ErrorCodeInvalidOperator, "operator must be AND or OR", data)
	case errors.Is(err, types.ErrEmptyQuerySet):
		return newMCPError(ErrorCodeEmptyQuerySet, "at least one field query is required", data)
	default:
		return newMCPError(ErrorCodeInternalError, "search failed", data)
	}
}

// searchResult formats records as a tool result.
func searchResult(records []types.SearchRecord) *mcp.CallToolResult {
	payload := map[string]interface{}{
		"total_results": len(records),
		"results":       records,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("%v", payload))
	}
	return mcp.NewToolResultText(string(data))
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
