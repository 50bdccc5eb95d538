// Package enrich fetches book metadata from a Google-Books-style
// volumes API to fill in descriptions, authors, and ratings the library
// page doesn't expose.
//
// The client retries transient API failures with exponential backoff and
// caches both hits and misses in memory for the lifetime of the client.
// A title with no volume entry returns ErrNoMatch; the sync pipeline
// treats that as "nothing to add", not a failure.
package enrich
