package storage

import (
	"context"
	"time"

	"github.com/vaultscan/assetvault/pkg/types"
)

// Store defines the interface for persisting and querying the asset
// inventory.
type Store interface {
	// Source operations
	UpsertSource(ctx context.Context, src *Source) error
	GetSource(ctx context.Context, sourceID string) (*Source, error)
	ListSources(ctx context.Context) ([]*Source, error)

	// Bundle operations
	UpsertBundle(ctx context.Context, bundle *Bundle) error
	GetBundle(ctx context.Context, bundleID string) (*Bundle, error)

	// Product operations
	UpsertProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, productID string) (*Product, error)
	LinkBundleProduct(ctx context.Context, bundleID, productID string) error

	// Download operations
	UpsertDownload(ctx context.Context, download *Download) error
	ListDownloadsByProduct(ctx context.Context, productID string) ([]*Download, error)

	// Sync bookkeeping
	RecordSync(ctx context.Context, rec *SyncRecord) error
	LastSync(ctx context.Context, sourceID string) (*SyncRecord, error)

	// Search primitives consumed by internal/search. QueryRecords runs
	// the fixed search projection with the given conjunctive WHERE
	// conditions, ordered by human_name ascending.
	QueryRecords(ctx context.Context, conds []string, args []interface{}) ([]types.SearchRecord, error)

	// Aggregates for stats and reporting
	CountProducts(ctx context.Context) (int, error)
	CountBundles(ctx context.Context) (int, error)
	CategoryDistribution(ctx context.Context) ([]CategoryCount, error)
	SourceDistribution(ctx context.Context) ([]SourceCount, error)
	LibrarySummary(ctx context.Context) ([]SummaryRow, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction scoped to the write operations the
// sync pipeline batches together.
type Tx interface {
	Commit() error
	Rollback() error

	UpsertSource(ctx context.Context, src *Source) error
	UpsertBundle(ctx context.Context, bundle *Bundle) error
	UpsertProduct(ctx context.Context, product *Product) error
	LinkBundleProduct(ctx context.Context, bundleID, productID string) error
	UpsertDownload(ctx context.Context, download *Download) error
}

// Source represents a storefront or other origin of library items.
type Source struct {
	SourceID   string
	SourceName string
	SourceType string
	SourceURL  string
	AuthMethod string
	LastSyncAt time.Time
	SyncStatus string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Bundle represents a purchased bundle of products.
type Bundle struct {
	BundleID     string
	SourceID     string
	BundleName   string
	BundleType   string
	PurchaseDate string
	AmountSpent  float64
	Currency     string
	Charity      string
	BundleURL    string
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Product represents a single library item with its categorization.
type Product struct {
	ProductID   string
	SourceID    string
	HumanName   string
	MachineName string

	Category    string
	Subcategory string
	// Confidence and Method are the categorization annotations attached
	// at sync time.
	Confidence float64
	Method     string

	Developer   string
	Publisher   string
	URL         string
	Description string
	Tags        string // comma-separated
	Rating      float64
	RatingCount int
	RetailPrice float64
	Currency    string
	ReleaseDate string
	Language    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Download represents a downloadable artifact of a product.
type Download struct {
	DownloadID      string
	ProductID       string
	SourceID        string
	Platform        string
	Architecture    string
	DownloadType    string
	FileName        string
	FileSize        int64
	FileSizeDisplay string
	DownloadURL     string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SyncRecord captures the outcome of one sync run for a source.
type SyncRecord struct {
	ID             int64
	SourceID       string
	SyncedAt       time.Time
	Status         string
	ProductsSynced int
	ProductsFailed int
	BundlesSynced  int
	BundlesFailed  int
	ErrorLog       string
	Duration       time.Duration
}

// CategoryCount is one row of the category distribution aggregate.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// SourceCount is one row of the source distribution aggregate.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// SummaryRow is one row of the library summary report.
type SummaryRow struct {
	Category     string `json:"category"`
	Subcategory  string `json:"subcategory"`
	SourceName   string `json:"source_name"`
	ProductCount int    `json:"product_count"`
	BundleCount  int    `json:"bundle_count"`
}
