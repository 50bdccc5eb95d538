package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the volumes API endpoint
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	// MaxResults caps how many volumes one lookup fetches
	MaxResults = 3

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

var (
	// ErrNoMatch is returned when the volumes API has no entry for a title
	ErrNoMatch = errors.New("no metadata match for title")
	// ErrLookupFailed is returned when the API call fails after retries
	ErrLookupFailed = errors.New("metadata lookup failed")
)

// Metadata is the enrichment result for one title.
type Metadata struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	AverageRating float64  `json:"average_rating"`
	RatingsCount  int      `json:"ratings_count"`
	PublishedDate string   `json:"published_date"`
	Language      string   `json:"language"`
}

// Client fetches book metadata from a Google-Books-style volumes API.
// Lookups are cached in memory for the lifetime of the client; a sync
// run hits the same titles repeatedly across bundles.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu    sync.RWMutex
	cache map[[32]byte]*Metadata
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternate API endpoint.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(base, "/") }
}

// WithAPIKey attaches an API key to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a metadata client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: make(map[[32]byte]*Metadata),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches metadata for a title. Titles that return no volumes
// come back as ErrNoMatch; transient API failures retry with backoff
// before surfacing as ErrLookupFailed.
func (c *Client) Lookup(ctx context.Context, title string) (*Metadata, error) {
	key := cacheKey(title)
	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		if cached == nil {
			return nil, ErrNoMatch
		}
		return cached, nil
	}

	config := DefaultRetryConfig()
	meta, err := retryWithBackoff(ctx, config, func() (*Metadata, error) {
		return c.callAPI(ctx, title)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w after %d retries: %v", ErrLookupFailed, MaxRetries, err)
	}
	if meta == nil {
		// Negative results cache too: retrying an unknown title on the
		// next bundle wastes the API quota.
		c.mu.Lock()
		c.cache[key] = nil
		c.mu.Unlock()
		return nil, ErrNoMatch
	}

	c.mu.Lock()
	c.cache[key] = meta
	c.mu.Unlock()
	return meta, nil
}

// volumesResponse mirrors the wire shape of the volumes API.
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			Description   string   `json:"description"`
			Categories    []string `json:"categories"`
			AverageRating float64  `json:"averageRating"`
			RatingsCount  int      `json:"ratingsCount"`
			PublishedDate string   `json:"publishedDate"`
			Language      string   `json:"language"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (c *Client) callAPI(ctx context.Context, title string) (*Metadata, error) {
	q := url.Values{}
	q.Set("q", "intitle:"+title)
	q.Set("maxResults", fmt.Sprintf("%d", MaxResults))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	reqURL := c.baseURL + "/volumes?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var volumes volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&volumes); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// No match is a result, not a retryable failure
	if volumes.TotalItems == 0 || len(volumes.Items) == 0 {
		return nil, nil
	}

	info := volumes.Items[0].VolumeInfo
	return &Metadata{
		Title:         info.Title,
		Authors:       info.Authors,
		Publisher:     info.Publisher,
		Description:   info.Description,
		Categories:    info.Categories,
		AverageRating: info.AverageRating,
		RatingsCount:  info.RatingsCount,
		PublishedDate: info.PublishedDate,
		Language:      info.Language,
	}, nil
}

func cacheKey(title string) [32]byte {
	return sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(title))))
}
