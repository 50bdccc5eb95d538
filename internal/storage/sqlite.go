package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vaultscan/assetvault/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, store: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) UpsertSource(ctx context.Context, src *Source) error {
	return t.store.upsertSourceWithQuerier(ctx, t.tx, src)
}

func (t *sqliteTx) UpsertBundle(ctx context.Context, bundle *Bundle) error {
	return t.store.upsertBundleWithQuerier(ctx, t.tx, bundle)
}

func (t *sqliteTx) UpsertProduct(ctx context.Context, product *Product) error {
	return t.store.upsertProductWithQuerier(ctx, t.tx, product)
}

func (t *sqliteTx) LinkBundleProduct(ctx context.Context, bundleID, productID string) error {
	return t.store.linkBundleProductWithQuerier(ctx, t.tx, bundleID, productID)
}

func (t *sqliteTx) UpsertDownload(ctx context.Context, download *Download) error {
	return t.store.upsertDownloadWithQuerier(ctx, t.tx, download)
}

// querier returns the DB querier
func (s *SQLiteStore) querier() querier {
	return s.db
}

// Source operations

func (s *SQLiteStore) upsertSourceWithQuerier(ctx context.Context, q querier, src *Source) error {
	query := `
		INSERT INTO asset_sources (source_id, source_name, source_type, source_url,
		                           authentication_method, last_sync_timestamp, sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			source_name = excluded.source_name,
			source_type = excluded.source_type,
			source_url = excluded.source_url,
			authentication_method = excluded.authentication_method,
			last_sync_timestamp = excluded.last_sync_timestamp,
			sync_status = excluded.sync_status,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	status := src.SyncStatus
	if status == "" {
		status = "inactive"
	}
	_, err := q.ExecContext(ctx, query,
		src.SourceID, src.SourceName, src.SourceType, src.SourceURL,
		src.AuthMethod, nullTime(src.LastSyncAt), status, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	src.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertSource(ctx context.Context, src *Source) error {
	return s.upsertSourceWithQuerier(ctx, s.querier(), src)
}

func (s *SQLiteStore) GetSource(ctx context.Context, sourceID string) (*Source, error) {
	query := `
		SELECT source_id, source_name, source_type, source_url, authentication_method,
		       last_sync_timestamp, sync_status, created_at, updated_at
		FROM asset_sources
		WHERE source_id = ?
	`
	var src Source
	var url, auth sql.NullString
	var lastSync sql.NullTime
	err := s.db.QueryRowContext(ctx, query, sourceID).Scan(
		&src.SourceID, &src.SourceName, &src.SourceType, &url, &auth,
		&lastSync, &src.SyncStatus, &src.CreatedAt, &src.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	src.SourceURL = url.String
	src.AuthMethod = auth.String
	if lastSync.Valid {
		src.LastSyncAt = lastSync.Time
	}
	return &src, nil
}

func (s *SQLiteStore) ListSources(ctx context.Context) ([]*Source, error) {
	query := `
		SELECT source_id, source_name, source_type, source_url, authentication_method,
		       last_sync_timestamp, sync_status, created_at, updated_at
		FROM asset_sources
		ORDER BY source_name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*Source, 0)
	for rows.Next() {
		var src Source
		var url, auth sql.NullString
		var lastSync sql.NullTime
		err := rows.Scan(&src.SourceID, &src.SourceName, &src.SourceType, &url, &auth,
			&lastSync, &src.SyncStatus, &src.CreatedAt, &src.UpdatedAt)
		if err != nil {
			return nil, err
		}
		src.SourceURL = url.String
		src.AuthMethod = auth.String
		if lastSync.Valid {
			src.LastSyncAt = lastSync.Time
		}
		sources = append(sources, &src)
	}
	return sources, rows.Err()
}

// Bundle operations

func (s *SQLiteStore) upsertBundleWithQuerier(ctx context.Context, q querier, bundle *Bundle) error {
	query := `
		INSERT INTO bundles (bundle_id, source_id, bundle_name, bundle_type, purchase_date,
		                     amount_spent, currency, charity, bundle_url, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bundle_id) DO UPDATE SET
			source_id = excluded.source_id,
			bundle_name = excluded.bundle_name,
			bundle_type = excluded.bundle_type,
			purchase_date = excluded.purchase_date,
			amount_spent = excluded.amount_spent,
			currency = excluded.currency,
			charity = excluded.charity,
			bundle_url = excluded.bundle_url,
			description = excluded.description,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	currency := bundle.Currency
	if currency == "" {
		currency = "USD"
	}
	_, err := q.ExecContext(ctx, query,
		bundle.BundleID, bundle.SourceID, bundle.BundleName, bundle.BundleType,
		bundle.PurchaseDate, bundle.AmountSpent, currency, bundle.Charity,
		bundle.BundleURL, bundle.Description, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert bundle: %w", err)
	}
	bundle.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertBundle(ctx context.Context, bundle *Bundle) error {
	return s.upsertBundleWithQuerier(ctx, s.querier(), bundle)
}

func (s *SQLiteStore) GetBundle(ctx context.Context, bundleID string) (*Bundle, error) {
	query := `
		SELECT bundle_id, source_id, bundle_name, bundle_type, purchase_date, amount_spent,
		       currency, charity, bundle_url, description, created_at, updated_at
		FROM bundles
		WHERE bundle_id = ?
	`
	var b Bundle
	var bundleType, purchaseDate, charity, bundleURL, description sql.NullString
	err := s.db.QueryRowContext(ctx, query, bundleID).Scan(
		&b.BundleID, &b.SourceID, &b.BundleName, &bundleType, &purchaseDate,
		&b.AmountSpent, &b.Currency, &charity, &bundleURL, &description,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.BundleType = bundleType.String
	b.PurchaseDate = purchaseDate.String
	b.Charity = charity.String
	b.BundleURL = bundleURL.String
	b.Description = description.String
	return &b, nil
}

// Product operations

func (s *SQLiteStore) upsertProductWithQuerier(ctx context.Context, q querier, product *Product) error {
	query := `
		INSERT INTO products (product_id, source_id, human_name, machine_name, category, subcategory,
		                      categorization_confidence, categorization_method, developer, publisher,
		                      url, description, tags, rating, rating_count, retail_price, currency,
		                      release_date, language, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			source_id = excluded.source_id,
			human_name = excluded.human_name,
			machine_name = excluded.machine_name,
			category = excluded.category,
			subcategory = excluded.subcategory,
			categorization_confidence = excluded.categorization_confidence,
			categorization_method = excluded.categorization_method,
			developer = excluded.developer,
			publisher = excluded.publisher,
			url = excluded.url,
			description = excluded.description,
			tags = excluded.tags,
			rating = excluded.rating,
			rating_count = excluded.rating_count,
			retail_price = excluded.retail_price,
			currency = excluded.currency,
			release_date = excluded.release_date,
			language = excluded.language,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	currency := product.Currency
	if currency == "" {
		currency = "USD"
	}
	_, err := q.ExecContext(ctx, query,
		product.ProductID, product.SourceID, product.HumanName, product.MachineName,
		product.Category, product.Subcategory, product.Confidence, product.Method,
		product.Developer, product.Publisher, product.URL, product.Description,
		product.Tags, product.Rating, product.RatingCount, product.RetailPrice,
		currency, product.ReleaseDate, product.Language, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	product.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertProduct(ctx context.Context, product *Product) error {
	return s.upsertProductWithQuerier(ctx, s.querier(), product)
}

func (s *SQLiteStore) GetProduct(ctx context.Context, productID string) (*Product, error) {
	query := `
		SELECT product_id, source_id, human_name, machine_name, category, subcategory,
		       categorization_confidence, categorization_method, developer, publisher,
		       url, description, tags, rating, rating_count, retail_price, currency,
		       release_date, language, created_at, updated_at
		FROM products
		WHERE product_id = ?
	`
	var p Product
	var machineName, category, subcategory, method, developer, publisher sql.NullString
	var url, description, tags, releaseDate, language sql.NullString
	err := s.db.QueryRowContext(ctx, query, productID).Scan(
		&p.ProductID, &p.SourceID, &p.HumanName, &machineName, &category, &subcategory,
		&p.Confidence, &method, &developer, &publisher, &url, &description, &tags,
		&p.Rating, &p.RatingCount, &p.RetailPrice, &p.Currency,
		&releaseDate, &language, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.MachineName = machineName.String
	p.Category = category.String
	p.Subcategory = subcategory.String
	p.Method = method.String
	p.Developer = developer.String
	p.Publisher = publisher.String
	p.URL = url.String
	p.Description = description.String
	p.Tags = tags.String
	p.ReleaseDate = releaseDate.String
	p.Language = language.String
	return &p, nil
}

func (s *SQLiteStore) linkBundleProductWithQuerier(ctx context.Context, q querier, bundleID, productID string) error {
	query := `
		INSERT OR IGNORE INTO bundle_products (bundle_id, product_id)
		VALUES (?, ?)
	`
	_, err := q.ExecContext(ctx, query, bundleID, productID)
	if err != nil {
		return fmt.Errorf("failed to link bundle product: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LinkBundleProduct(ctx context.Context, bundleID, productID string) error {
	return s.linkBundleProductWithQuerier(ctx, s.querier(), bundleID, productID)
}

// Download operations

func (s *SQLiteStore) upsertDownloadWithQuerier(ctx context.Context, q querier, download *Download) error {
	query := `
		INSERT INTO downloads (download_id, product_id, source_id, platform, architecture,
		                       download_type, file_name, file_size, file_size_display,
		                       download_url, download_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(download_id) DO UPDATE SET
			product_id = excluded.product_id,
			source_id = excluded.source_id,
			platform = excluded.platform,
			architecture = excluded.architecture,
			download_type = excluded.download_type,
			file_name = excluded.file_name,
			file_size = excluded.file_size,
			file_size_display = excluded.file_size_display,
			download_url = excluded.download_url,
			download_status = excluded.download_status,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	status := download.Status
	if status == "" {
		status = "available"
	}
	_, err := q.ExecContext(ctx, query,
		download.DownloadID, download.ProductID, download.SourceID, download.Platform,
		download.Architecture, download.DownloadType, download.FileName, download.FileSize,
		download.FileSizeDisplay, download.DownloadURL, status, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert download: %w", err)
	}
	download.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertDownload(ctx context.Context, download *Download) error {
	return s.upsertDownloadWithQuerier(ctx, s.querier(), download)
}

func (s *SQLiteStore) ListDownloadsByProduct(ctx context.Context, productID string) ([]*Download, error) {
	query := `
		SELECT download_id, product_id, source_id, platform, architecture, download_type,
		       file_name, file_size, file_size_display, download_url, download_status,
		       created_at, updated_at
		FROM downloads
		WHERE product_id = ?
		ORDER BY platform, download_type
	`
	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	downloads := make([]*Download, 0)
	for rows.Next() {
		var d Download
		var sourceID, platform, arch, dlType, fileName, sizeDisplay, dlURL sql.NullString
		err := rows.Scan(&d.DownloadID, &d.ProductID, &sourceID, &platform, &arch, &dlType,
			&fileName, &d.FileSize, &sizeDisplay, &dlURL, &d.Status, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, err
		}
		d.SourceID = sourceID.String
		d.Platform = platform.String
		d.Architecture = arch.String
		d.DownloadType = dlType.String
		d.FileName = fileName.String
		d.FileSizeDisplay = sizeDisplay.String
		d.DownloadURL = dlURL.String
		downloads = append(downloads, &d)
	}
	return downloads, rows.Err()
}

// Sync bookkeeping

func (s *SQLiteStore) RecordSync(ctx context.Context, rec *SyncRecord) error {
	query := `
		INSERT INTO sync_metadata (source_id, last_sync_timestamp, sync_status,
		                           products_synced, products_failed, bundles_synced,
		                           bundles_failed, error_log, sync_duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	syncedAt := rec.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}
	result, err := s.db.ExecContext(ctx, query,
		rec.SourceID, syncedAt, rec.Status,
		rec.ProductsSynced, rec.ProductsFailed, rec.BundlesSynced, rec.BundlesFailed,
		rec.ErrorLog, rec.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		rec.ID = id
	}
	rec.SyncedAt = syncedAt
	return nil
}

func (s *SQLiteStore) LastSync(ctx context.Context, sourceID string) (*SyncRecord, error) {
	query := `
		SELECT id, source_id, last_sync_timestamp, sync_status, products_synced,
		       products_failed, bundles_synced, bundles_failed, error_log, sync_duration_ms
		FROM sync_metadata
	`
	args := []interface{}{}
	if sourceID != "" {
		query += " WHERE source_id = ?"
		args = append(args, sourceID)
	}
	query += " ORDER BY last_sync_timestamp DESC LIMIT 1"

	var rec SyncRecord
	var errorLog sql.NullString
	var durationMs int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.ID, &rec.SourceID, &rec.SyncedAt, &rec.Status,
		&rec.ProductsSynced, &rec.ProductsFailed, &rec.BundlesSynced, &rec.BundlesFailed,
		&errorLog, &durationMs,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.ErrorLog = errorLog.String
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	return &rec, nil
}

// Search primitives

// searchProjection is the fixed column set of every search query. The
// description column rides along for in-process regex matching but is not
// part of the rendered result shape.
const searchProjection = `
	SELECT p.product_id, p.human_name, p.category, p.subcategory, p.developer, p.publisher,
	       p.tags, p.rating, p.release_date, a.source_name, b.bundle_name,
	       d.platform, d.download_type, d.file_size_display, p.description
	FROM products p
	JOIN asset_sources a ON p.source_id = a.source_id
	LEFT JOIN bundle_products bp ON p.product_id = bp.product_id
	LEFT JOIN bundles b ON bp.bundle_id = b.bundle_id
	LEFT JOIN downloads d ON p.product_id = d.product_id
`

// searchColumns maps searchable field names to their SQL expressions in
// the search projection.
var searchColumns = map[string]string{
	"human_name":  "p.human_name",
	"description": "p.description",
	"category":    "p.category",
	"subcategory": "p.subcategory",
	"developer":   "p.developer",
	"publisher":   "p.publisher",
	"tags":        "p.tags",
	"bundle_name": "b.bundle_name",
}

// filterColumns maps filter keys to their SQL expressions.
var filterColumns = map[string]string{
	"category": "p.category",
	"source":   "a.source_name",
	"platform": "d.platform",
	"rating":   "p.rating",
}

// SearchColumn resolves a searchable field name to its SQL expression.
func SearchColumn(field string) (string, bool) {
	col, ok := searchColumns[field]
	return col, ok
}

// FilterColumn resolves a filter key to its SQL expression.
func FilterColumn(key string) (string, bool) {
	col, ok := filterColumns[key]
	return col, ok
}

// QueryRecords executes the search projection with the given conjunctive
// conditions and returns records ordered by human_name ascending. Ties
// keep the underlying store order.
func (s *SQLiteStore) QueryRecords(ctx context.Context, conds []string, args []interface{}) ([]types.SearchRecord, error) {
	query := searchProjection
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.human_name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]types.SearchRecord, 0)
	for rows.Next() {
		var r types.SearchRecord
		var category, subcategory, developer, publisher, tags, releaseDate sql.NullString
		var bundleName, platform, downloadType, sizeDisplay, description sql.NullString
		var rating sql.NullFloat64
		err := rows.Scan(
			&r.ProductID, &r.HumanName, &category, &subcategory, &developer, &publisher,
			&tags, &rating, &releaseDate, &r.SourceName, &bundleName,
			&platform, &downloadType, &sizeDisplay, &description,
		)
		if err != nil {
			return nil, err
		}
		r.Category = category.String
		r.Subcategory = subcategory.String
		r.Developer = developer.String
		r.Publisher = publisher.String
		r.Tags = tags.String
		r.Rating = rating.Float64
		r.ReleaseDate = releaseDate.String
		r.BundleName = bundleName.String
		r.Platform = platform.String
		r.DownloadType = downloadType.String
		r.FileSizeDisplay = sizeDisplay.String
		r.Description = description.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// Aggregates

func (s *SQLiteStore) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	return count, err
}

func (s *SQLiteStore) CountBundles(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bundles").Scan(&count)
	return count, err
}

func (s *SQLiteStore) CategoryDistribution(ctx context.Context) ([]CategoryCount, error) {
	query := `
		SELECT COALESCE(category, ''), COUNT(*) as count
		FROM products
		GROUP BY category
		ORDER BY count DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make([]CategoryCount, 0)
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) SourceDistribution(ctx context.Context) ([]SourceCount, error) {
	query := `
		SELECT a.source_name, COUNT(p.product_id) as count
		FROM asset_sources a
		LEFT JOIN products p ON a.source_id = p.source_id
		GROUP BY a.source_name
		ORDER BY count DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make([]SourceCount, 0)
	for rows.Next() {
		var c SourceCount
		if err := rows.Scan(&c.Source, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) LibrarySummary(ctx context.Context) ([]SummaryRow, error) {
	query := `
		SELECT COALESCE(p.category, ''), COALESCE(p.subcategory, ''), a.source_name,
		       COUNT(*) as product_count, COUNT(DISTINCT b.bundle_id) as bundle_count
		FROM products p
		JOIN asset_sources a ON p.source_id = a.source_id
		LEFT JOIN bundle_products bp ON p.product_id = bp.product_id
		LEFT JOIN bundles b ON bp.bundle_id = b.bundle_id
		GROUP BY p.category, p.subcategory, a.source_name
		ORDER BY product_count DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	summary := make([]SummaryRow, 0)
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.Category, &row.Subcategory, &row.SourceName,
			&row.ProductCount, &row.BundleCount); err != nil {
			return nil, err
		}
		summary = append(summary, row)
	}
	return summary, rows.Err()
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
