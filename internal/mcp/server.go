package mcp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/vaultscan/assetvault/internal/classifier"
	"github.com/vaultscan/assetvault/internal/config"
	"github.com/vaultscan/assetvault/internal/enrich"
	"github.com/vaultscan/assetvault/internal/scraper"
	"github.com/vaultscan/assetvault/internal/search"
	"github.com/vaultscan/assetvault/internal/storage"
	"github.com/vaultscan/assetvault/internal/syncer"
)

const (
	// ServerName is the MCP server name
	ServerName = "assetvault-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// fetcherFactory builds the library fetcher for a sync run. The default
// launches a browser session; tests substitute a canned capture.
type fetcherFactory func(ctx context.Context) (syncer.Fetcher, func(), error)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	store    storage.Store
	engine   *classifier.Engine
	provider *search.Provider

	newFetcher fetcherFactory
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	engine, err := classifier.NewStorefrontEngine()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		cfg:      cfg,
		store:    store,
		engine:   engine,
		provider: search.NewProvider(store),
	}
	s.newFetcher = s.browserFetcher

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(syncLibraryTool(), s.handleSyncLibrary)
	s.mcp.AddTool(searchAssetsTool(), s.handleSearchAssets)
	s.mcp.AddTool(searchByFieldTool(), s.handleSearchByField)
	s.mcp.AddTool(searchAdvancedTool(), s.handleSearchAdvanced)
	s.mcp.AddTool(getSearchStatsTool(), s.handleGetSearchStats)
	s.mcp.AddTool(categorizeItemTool(), s.handleCategorizeItem)
	s.mcp.AddTool(getLibrarySummaryTool(), s.handleGetLibrarySummary)
}

// browserFetcher launches a Chrome session for one sync run.
func (s *Server) browserFetcher(ctx context.Context) (syncer.Fetcher, func(), error) {
	session := scraper.NewSession(scraper.Config{
		RemoteURL: s.cfg.Scraper.RemoteURL,
		Headless:  s.cfg.Scraper.Headless,
	})
	if err := session.Start(ctx); err != nil {
		return nil, nil, err
	}
	return session, func() { _ = session.Close() }, nil
}

// newSyncer assembles the pipeline for one sync run.
func (s *Server) newSyncer(fetcher syncer.Fetcher, enrichEbooks bool, workers int) *syncer.Syncer {
	var enricher syncer.Enricher
	if enrichEbooks {
		opts := []enrich.Option{
			enrich.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		}
		if s.cfg.Enrich.BaseURL != "" {
			opts = append(opts, enrich.WithBaseURL(s.cfg.Enrich.BaseURL))
		}
		if s.cfg.Enrich.APIKey != "" {
			opts = append(opts, enrich.WithAPIKey(s.cfg.Enrich.APIKey))
		}
		enricher = enrich.NewClient(opts...)
	}

	return syncer.New(syncer.Config{
		SourceID:     s.cfg.Source.ID,
		SourceName:   s.cfg.Source.Name,
		SourceURL:    s.cfg.Source.URL,
		LibraryURL:   s.cfg.Scraper.LibraryURL,
		Workers:      workers,
		EnrichEbooks: enrichEbooks,
	}, s.store, fetcher, s.engine, enricher, s.provider)
}
