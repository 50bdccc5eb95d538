// Package syncer orchestrates the library sync pipeline: capture the
// storefront library page, parse product candidates, categorize each
// item, optionally enrich ebooks with external metadata, and persist
// everything in one transaction.
//
// Per-item failures are recorded in the run's Statistics and skipped.
// Only infrastructure failures (page fetch, storage) abort a run, and
// even then a sync_metadata row records the outcome. Product and bundle
// identifiers derive from the source and machine name so repeated syncs
// update rows in place.
package syncer
