package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultscan/assetvault/internal/classifier"
	"github.com/vaultscan/assetvault/internal/enrich"
	"github.com/vaultscan/assetvault/internal/scraper"
	"github.com/vaultscan/assetvault/internal/storage"
)

type fakeFetcher struct {
	capture *scraper.PageCapture
	err     error
}

func (f *fakeFetcher) FetchLibrary(context.Context, string) (*scraper.PageCapture, error) {
	return f.capture, f.err
}

type fakeEnricher struct {
	metas   map[string]*enrich.Metadata
	lookups int
}

func (f *fakeEnricher) Lookup(_ context.Context, title string) (*enrich.Metadata, error) {
	f.lookups++
	if m, ok := f.metas[title]; ok {
		return m, nil
	}
	return nil, enrich.ErrNoMatch
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateCache() { c.calls++ }

const libraryHTML = `
<html><body>
<h2>Python Crash Course Handbook</h2>
<h2>Stellar Tactics Strategy Game</h2>
<h3>Learn You Some Code Bundle</h3>
</body></html>
`

func newTestSyncer(t *testing.T, fetcher Fetcher, enricher Enricher, inv Invalidator, enrichEbooks bool) (*Syncer, *storage.SQLiteStore) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	engine, err := classifier.NewStorefrontEngine()
	require.NoError(t, err)

	s := New(Config{
		SourceID:     "humblebundle",
		SourceName:   "humblebundle",
		SourceURL:    "https://example.test",
		LibraryURL:   "https://example.test/home/library",
		Workers:      2,
		EnrichEbooks: enrichEbooks,
	}, store, fetcher, engine, enricher, inv)
	return s, store
}

func TestSyncEndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{capture: &scraper.PageCapture{HTML: libraryHTML}}
	inv := &countingInvalidator{}
	s, store := newTestSyncer(t, fetcher, nil, inv, false)
	ctx := context.Background()

	stats, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, "completed", stats.Status)
	assert.Equal(t, 2, stats.ProductsSynced)
	assert.Equal(t, 1, stats.BundlesSynced)
	assert.Zero(t, stats.ProductsFailed)
	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 1, inv.calls)

	// Products landed with categorization annotations
	p, err := store.GetProduct(ctx, ProductID("humblebundle", "python_crash_course_handbook"))
	require.NoError(t, err)
	assert.Equal(t, "ebook", p.Category)
	assert.Greater(t, p.Confidence, 0.0)
	assert.NotEmpty(t, p.Method)

	g, err := store.GetProduct(ctx, ProductID("humblebundle", "stellar_tactics_strategy_game"))
	require.NoError(t, err)
	assert.Equal(t, "game", g.Category)
	assert.Equal(t, "strategy", g.Subcategory)

	// Bundle recorded separately
	b, err := store.GetBundle(ctx, ProductID("humblebundle", "learn_you_some_code_bundle"))
	require.NoError(t, err)
	assert.Equal(t, "Learn You Some Code Bundle", b.BundleName)

	// Sync run recorded
	rec, err := store.LastSync(ctx, "humblebundle")
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.Status)
	assert.Equal(t, 2, rec.ProductsSynced)

	// Source marked active
	src, err := store.GetSource(ctx, "humblebundle")
	require.NoError(t, err)
	assert.Equal(t, "active", src.SyncStatus)
}

func TestSyncIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{capture: &scraper.PageCapture{HTML: libraryHTML}}
	s, store := newTestSyncer(t, fetcher, nil, nil, false)
	ctx := context.Background()

	_, err := s.Sync(ctx)
	require.NoError(t, err)
	_, err = s.Sync(ctx)
	require.NoError(t, err)

	count, err := store.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSyncEnrichesEbooks(t *testing.T) {
	fetcher := &fakeFetcher{capture: &scraper.PageCapture{HTML: libraryHTML}}
	enricher := &fakeEnricher{metas: map[string]*enrich.Metadata{
		"Python Crash Course Handbook": {
			Title:         "Python Crash Course",
			Authors:       []string{"Eric Matthes"},
			Publisher:     "No Starch Press",
			Description:   "A hands-on programming guide to the Python language",
			Categories:    []string{"Computers"},
			AverageRating: 4.5,
			RatingsCount:  120,
			PublishedDate: "2019-05-03",
			Language:      "en",
		},
	}}
	s, store := newTestSyncer(t, fetcher, enricher, nil, true)
	ctx := context.Background()

	stats, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, "completed", stats.Status)

	// Only the ebook gets a lookup; the game does not
	assert.Equal(t, 1, enricher.lookups)

	p, err := store.GetProduct(ctx, ProductID("humblebundle", "python_crash_course_handbook"))
	require.NoError(t, err)
	assert.Equal(t, "Eric Matthes", p.Developer)
	assert.Equal(t, "No Starch Press", p.Publisher)
	assert.Contains(t, p.Description, "Python")
	assert.InDelta(t, 4.5, p.Rating, 0.0001)
	assert.Equal(t, "Computers", p.Tags)
}

func TestSyncFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("chrome crashed")}
	s, store := newTestSyncer(t, fetcher, nil, nil, false)
	ctx := context.Background()

	stats, err := s.Sync(ctx)
	require.Error(t, err)
	assert.Equal(t, "failed", stats.Status)
	assert.NotEmpty(t, stats.Errors)

	// Failure still recorded
	rec, recErr := store.LastSync(ctx, "humblebundle")
	require.NoError(t, recErr)
	assert.Equal(t, "failed", rec.Status)
	assert.Contains(t, rec.ErrorLog, "chrome crashed")
}

func TestSyncEmptyPage(t *testing.T) {
	fetcher := &fakeFetcher{capture: &scraper.PageCapture{HTML: "<html><body></body></html>"}}
	s, _ := newTestSyncer(t, fetcher, nil, nil, false)

	stats, err := s.Sync(context.Background())
	require.Error(t, err)
	assert.Equal(t, "failed", stats.Status)
	assert.Zero(t, stats.ProductsSynced)
}

func TestProductIDStable(t *testing.T) {
	a := ProductID("humblebundle", "python_crash_course")
	b := ProductID("humblebundle", "python_crash_course")
	c := ProductID("other", "python_crash_course")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}
