// Package storage provides SQLite-based persistence for the asset library.
//
// The storage layer manages:
//   - Asset sources (storefront accounts)
//   - Purchased bundles and their product links
//   - Products with categorization annotations
//   - Per-platform download artifacts
//   - Sync run bookkeeping
//
// # Database Schema
//
// Tables:
//   - asset_sources: Storefront origins and their sync state
//   - bundles: Purchased bundles (name, price, charity, purchase date)
//   - products: Library items with category, subcategory, confidence
//   - bundle_products: Many-to-many bundle membership
//   - downloads: Downloadable artifacts per product and platform
//   - sync_metadata: Outcome of each sync run
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStore("~/.assetvault/library.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.UpsertProduct(ctx, &storage.Product{
//	    ProductID: "prod-1",
//	    SourceID:  "humblebundle",
//	    HumanName: "Python Crash Course",
//	    Category:  "ebook",
//	})
//
// # Transactions
//
// The sync pipeline batches writes for one bundle in a transaction:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.UpsertBundle(ctx, bundle)
//	for _, p := range products {
//	    _ = tx.UpsertProduct(ctx, p)
//	    _ = tx.LinkBundleProduct(ctx, bundle.BundleID, p.ProductID)
//	}
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Search Projection
//
// QueryRecords runs the fixed search projection (products joined with
// sources, bundles, and downloads) used by internal/search. Callers pass
// conjunctive WHERE conditions; the column set and ordering never change.
package storage
