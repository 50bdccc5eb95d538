package search

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vaultscan/assetvault/pkg/types"
)

const (
	// cacheSize caps the number of cached query results
	cacheSize = 1000

	// DefaultCacheTTL is how long a cached result stays valid when the
	// caller doesn't set one
	DefaultCacheTTL = 5 * time.Minute
)

// cacheEntry holds cached records with an expiration time
type cacheEntry struct {
	records   []types.SearchRecord
	expiresAt time.Time
}

// queryCache is an LRU cache of search results keyed by query hash
type queryCache struct {
	mu    sync.RWMutex
	cache *lru.Cache[[32]byte, *cacheEntry]
}

func newQueryCache(size int) *queryCache {
	cache, err := lru.New[[32]byte, *cacheEntry](size)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &queryCache{cache: cache}
}

func (c *queryCache) get(key [32]byte) ([]types.SearchRecord, bool) {
	c.mu.RLock()
	entry, ok := c.cache.Get(key)
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		c.cache.Remove(key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.records, true
}

func (c *queryCache) put(key [32]byte, records []types.SearchRecord, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c.mu.Lock()
	c.cache.Add(key, &cacheEntry{records: records, expiresAt: time.Now().Add(ttl)})
	c.mu.Unlock()
}

func (c *queryCache) purge() {
	c.mu.Lock()
	c.cache.Purge()
	c.mu.Unlock()
}

// cacheKey hashes every parameter that affects the result set. Fields
// must arrive in deterministic order.
func cacheKey(kind string, fields []string, queries map[string]string, operator string, opts Options) [32]byte {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('|')
	b.WriteString(operator)
	b.WriteByte('|')
	for _, f := range fields {
		b.WriteString(f)
		b.WriteByte('=')
		b.WriteString(queries[f])
		b.WriteByte('|')
	}
	if q, ok := queries[""]; ok {
		b.WriteString(q)
		b.WriteByte('|')
	}
	fmt.Fprintf(&b, "regex=%t|cs=%t|", opts.Regex, opts.CaseSensitive)
	f := opts.Filters
	fmt.Fprintf(&b, "cat=%s|src=%s|plat=%s|rmin=%g|rmax=%g",
		f.Category, f.Source, f.Platform, f.RatingMin, f.RatingMax)
	return sha256.Sum256([]byte(b.String()))
}
