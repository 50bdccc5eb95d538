package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vaultscan/assetvault/internal/enrich"
	"github.com/vaultscan/assetvault/internal/scraper"
	"github.com/vaultscan/assetvault/internal/storage"
	"github.com/vaultscan/assetvault/pkg/types"
)

// Fetcher captures the library page. Satisfied by *scraper.Session.
type Fetcher interface {
	FetchLibrary(ctx context.Context, pageURL string) (*scraper.PageCapture, error)
}

// Categorizer assigns a category to an item. Satisfied by
// *classifier.Engine.
type Categorizer interface {
	Categorize(item *types.Item) types.CategoryResult
}

// Enricher looks up external metadata for a title. Satisfied by
// *enrich.Client.
type Enricher interface {
	Lookup(ctx context.Context, title string) (*enrich.Metadata, error)
}

// Invalidator drops cached search results after a write. Satisfied by
// *search.Provider.
type Invalidator interface {
	InvalidateCache()
}

// Config configures a sync run.
type Config struct {
	SourceID   string // e.g. "humblebundle"
	SourceName string
	SourceURL  string
	LibraryURL string

	// Workers bounds concurrent item processing. Default: 4.
	Workers int

	// EnrichEbooks enables metadata lookups for items categorized as
	// ebooks.
	EnrichEbooks bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Statistics summarizes one sync run.
type Statistics struct {
	RunID          string        `json:"run_id"`
	Status         string        `json:"status"`
	ProductsSynced int           `json:"products_synced"`
	ProductsFailed int           `json:"products_failed"`
	BundlesSynced  int           `json:"bundles_synced"`
	BundlesFailed  int           `json:"bundles_failed"`
	Duration       time.Duration `json:"duration"`
	Errors         []string      `json:"errors,omitempty"`
}

// Syncer orchestrates scrape, categorize, enrich, and persist.
type Syncer struct {
	cfg         Config
	store       storage.Store
	fetcher     Fetcher
	categorizer Categorizer
	enricher    Enricher
	invalidator Invalidator
}

// New creates a Syncer. The enricher and invalidator may be nil.
func New(cfg Config, store storage.Store, fetcher Fetcher, categorizer Categorizer, enricher Enricher, invalidator Invalidator) *Syncer {
	cfg.defaults()
	return &Syncer{
		cfg:         cfg,
		store:       store,
		fetcher:     fetcher,
		categorizer: categorizer,
		enricher:    enricher,
		invalidator: invalidator,
	}
}

// Sync runs the full pipeline against the configured source. Per-item
// failures are recorded and skipped; only infrastructure failures
// (fetch, storage) abort the run.
func (s *Syncer) Sync(ctx context.Context) (*Statistics, error) {
	start := time.Now()
	log := s.cfg.Logger
	stats := &Statistics{RunID: uuid.NewString()}

	log.Info("sync: starting", "run_id", stats.RunID, "source", s.cfg.SourceID)

	if err := s.store.UpsertSource(ctx, &storage.Source{
		SourceID:   s.cfg.SourceID,
		SourceName: s.cfg.SourceName,
		SourceType: "storefront",
		SourceURL:  s.cfg.SourceURL,
		AuthMethod: "session_cookies",
		SyncStatus: "active",
		LastSyncAt: start,
	}); err != nil {
		return s.finish(ctx, stats, start, fmt.Errorf("sync: upsert source: %w", err))
	}

	capture, err := s.fetcher.FetchLibrary(ctx, s.cfg.LibraryURL)
	if err != nil {
		return s.finish(ctx, stats, start, fmt.Errorf("sync: fetch library: %w", err))
	}

	items := scraper.ParseLibrary(capture)
	log.Info("sync: parsed library page", "candidates", len(items))
	if len(items) == 0 {
		return s.finish(ctx, stats, start, errors.New("sync: no products found on page"))
	}

	var bundles []scraper.RawItem
	var products []scraper.RawItem
	for _, it := range items {
		if it.IsBundle {
			bundles = append(bundles, it)
		} else {
			products = append(products, it)
		}
	}

	built, itemErrs := s.processItems(ctx, products)
	stats.Errors = append(stats.Errors, itemErrs...)
	stats.ProductsFailed = len(itemErrs)

	if err := s.persist(ctx, built, bundles, stats); err != nil {
		return s.finish(ctx, stats, start, fmt.Errorf("sync: persist: %w", err))
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateCache()
	}

	return s.finish(ctx, stats, start, nil)
}

// processItems categorizes and enriches items concurrently. Failures
// collect as messages; a bad item never aborts the batch.
func (s *Syncer) processItems(ctx context.Context, items []scraper.RawItem) ([]*storage.Product, []string) {
	var mu sync.Mutex
	built := make([]*storage.Product, 0, len(items))
	var errs []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, it := range items {
		it := it
		g.Go(func() error {
			product, err := s.buildProduct(gctx, it)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", it.Name, err))
				return nil
			}
			built = append(built, product)
			return nil
		})
	}
	_ = g.Wait()
	return built, errs
}

func (s *Syncer) buildProduct(ctx context.Context, it scraper.RawItem) (*storage.Product, error) {
	item := &types.Item{
		Name:        it.Name,
		HumanName:   it.Name,
		MachineName: it.MachineName,
	}
	result := s.categorizer.Categorize(item)

	product := &storage.Product{
		ProductID:   ProductID(s.cfg.SourceID, it.MachineName),
		SourceID:    s.cfg.SourceID,
		HumanName:   it.Name,
		MachineName: it.MachineName,
		Category:    string(result.Category),
		Subcategory: result.Subcategory,
		Confidence:  result.Confidence,
		Method:      result.Method,
		Language:    "en",
	}

	if s.cfg.EnrichEbooks && s.enricher != nil && result.Category == types.CategoryEbook {
		meta, err := s.enricher.Lookup(ctx, it.Name)
		switch {
		case err == nil:
			applyMetadata(product, meta)
			// Re-run categorization with the richer description; a
			// better signal may change the subcategory or confidence.
			item.Description = meta.Description
			if again := s.categorizer.Categorize(item); again.Confidence > result.Confidence {
				product.Category = string(again.Category)
				product.Subcategory = again.Subcategory
				product.Confidence = again.Confidence
				product.Method = again.Method
			}
		case errors.Is(err, enrich.ErrNoMatch):
			// nothing to add
		default:
			s.cfg.Logger.Warn("sync: enrichment failed", "title", it.Name, "error", err)
		}
	}

	return product, nil
}

func applyMetadata(p *storage.Product, meta *enrich.Metadata) {
	if meta.Description != "" {
		p.Description = meta.Description
	}
	if len(meta.Authors) > 0 {
		p.Developer = meta.Authors[0]
	}
	if meta.Publisher != "" {
		p.Publisher = meta.Publisher
	}
	if len(meta.Categories) > 0 {
		p.Tags = strings.Join(meta.Categories, ",")
	}
	if meta.AverageRating > 0 {
		p.Rating = meta.AverageRating
		p.RatingCount = meta.RatingsCount
	}
	if meta.PublishedDate != "" {
		p.ReleaseDate = meta.PublishedDate
	}
	if meta.Language != "" {
		p.Language = meta.Language
	}
}

// persist writes everything in one transaction. SQLite has a single
// writer anyway, and a half-written sync is worse than a failed one.
func (s *Syncer) persist(ctx context.Context, products []*storage.Product, bundles []scraper.RawItem, stats *Statistics) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range products {
		if err := tx.UpsertProduct(ctx, p); err != nil {
			stats.ProductsFailed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", p.HumanName, err))
			continue
		}
		stats.ProductsSynced++
	}

	for _, b := range bundles {
		bundle := &storage.Bundle{
			BundleID:   ProductID(s.cfg.SourceID, b.MachineName),
			SourceID:   s.cfg.SourceID,
			BundleName: b.Name,
			BundleType: "purchased",
		}
		if err := tx.UpsertBundle(ctx, bundle); err != nil {
			stats.BundlesFailed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", b.Name, err))
			continue
		}
		stats.BundlesSynced++
	}

	return tx.Commit()
}

// finish records the sync outcome and assembles statistics. The record
// write is best effort; it must not mask the pipeline error.
func (s *Syncer) finish(ctx context.Context, stats *Statistics, start time.Time, runErr error) (*Statistics, error) {
	stats.Duration = time.Since(start)

	switch {
	case runErr != nil:
		stats.Status = "failed"
		stats.Errors = append(stats.Errors, runErr.Error())
	case stats.ProductsFailed > 0 || stats.BundlesFailed > 0:
		stats.Status = "partial"
	default:
		stats.Status = "completed"
	}

	rec := &storage.SyncRecord{
		SourceID:       s.cfg.SourceID,
		Status:         stats.Status,
		ProductsSynced: stats.ProductsSynced,
		ProductsFailed: stats.ProductsFailed,
		BundlesSynced:  stats.BundlesSynced,
		BundlesFailed:  stats.BundlesFailed,
		ErrorLog:       errorLog(stats.Errors),
		Duration:       stats.Duration,
	}
	if err := s.store.RecordSync(ctx, rec); err != nil {
		s.cfg.Logger.Warn("sync: record sync failed", "error", err)
	}

	s.cfg.Logger.Info("sync: finished",
		"run_id", stats.RunID,
		"status", stats.Status,
		"products_synced", stats.ProductsSynced,
		"products_failed", stats.ProductsFailed,
		"bundles_synced", stats.BundlesSynced,
		"duration", stats.Duration)

	return stats, runErr
}

func errorLog(errs []string) string {
	return strings.Join(errs, "; ")
}

// ProductID derives a stable identifier from the source and machine
// name, so re-syncing updates rows instead of duplicating them.
func ProductID(sourceID, machineName string) string {
	sum := sha256.Sum256([]byte(sourceID + ":" + machineName))
	return hex.EncodeToString(sum[:16])
}
