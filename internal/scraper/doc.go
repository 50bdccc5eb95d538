// Package scraper captures a storefront library page through a real
// browser and extracts product candidates from it.
//
// The Session half drives Chrome via rod with stealth patches applied,
// because storefront library pages render their purchase lists with
// JavaScript and block obvious automation. The parsing half is pure:
// ParseLibrary works on a captured DOM and rendered text, so the
// heuristics are unit-testable without a browser.
//
// Extraction is heuristic by nature. Library pages carry no stable
// machine-readable product list, so ParseLibrary combines HTML structure
// patterns (headings, title-classed containers, download links),
// rendered-text line filters, and storefront-specific bundle patterns,
// then dedupes. False positives are expected upstream; the sync
// pipeline's categorization and validation narrow them further.
package scraper
