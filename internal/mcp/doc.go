// Package mcp implements the Model Context Protocol (MCP) server for
// AssetVault.
//
// The MCP server exposes the asset library to AI assistants as tools:
//   - sync_library: Scrape the storefront library and persist the inventory
//   - search_assets: Search across all searchable fields
//   - search_by_field: Search one field
//   - search_advanced: Per-field queries combined with AND/OR
//   - get_search_stats: Library counts and search capabilities
//   - categorize_item: Run the categorization engine on one item
//   - get_library_summary: Category/source breakdown with sync history
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Tool: search_assets
//
//	Request:
//	{
//	  "name": "search_assets",
//	  "arguments": {
//	    "query": "python",
//	    "regex": false,
//	    "filters": {"category": "ebook", "rating_min": 4.0}
//	  }
//	}
//
//	Response:
//	{
//	  "total_results": 2,
//	  "results": [
//	    {
//	      "product_id": "...",
//	      "human_name": "Python Crash Course",
//	      "category": "ebook",
//	      "subcategory": "programming",
//	      ...
//	    }
//	  ]
//	}
//
// # Tool: search_advanced
//
//	Request:
//	{
//	  "name": "search_advanced",
//	  "arguments": {
//	    "queries": {"category": "ebook", "tags": "security"},
//	    "operator": "AND"
//	  }
//	}
//
// # Error Handling
//
// Parameter and domain errors return JSON-RPC error codes:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  field is not searchable
//	-32002  regex query failed to compile
//	-32003  operator is not AND/OR
//	-32004  advanced search got no field queries
//	-32005  library sync aborted
//
// get_search_stats is the exception: it always returns a text result,
// carrying any store failure inside the payload, so status displays
// never break.
package mcp
