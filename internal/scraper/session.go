package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Config configures the browser session.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headless controls whether a locally launched Chrome shows a window.
	Headless bool

	// NavTimeout bounds navigation plus page load. Default: 30s.
	NavTimeout time.Duration

	// SettleDelay is extra wait after load for lazy-rendered lists.
	// Default: 3s.
	SettleDelay time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 3 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session manages one Chrome connection for library scraping.
type Session struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewSession creates a Session. Call Start to launch or attach Chrome.
func NewSession(cfg Config) *Session {
	cfg.defaults()
	return &Session{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance).
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("scraper: session is closed")
	}
	if s.browser != nil {
		return nil
	}

	log := s.cfg.Logger
	var wsURL string

	if s.cfg.RemoteURL != "" {
		wsURL = s.cfg.RemoteURL
		log.Info("scraper: connecting to remote chrome", "url", wsURL)
	} else {
		l := launcher.New().Headless(s.cfg.Headless)
		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("scraper: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
		log.Info("scraper: launched local chrome", "headless", s.cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("scraper: connect: %w", err)
	}
	s.browser = b
	return nil
}

// Close shuts down Chrome.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return nil
}

// PageCapture is the raw material the parser works from: the serialized
// DOM and the rendered text of the library page.
type PageCapture struct {
	URL  string
	HTML string
	Text string
}

// FetchLibrary navigates to the library page with stealth applied,
// scrolls to trigger lazy loading, and captures the DOM and text.
func (s *Session) FetchLibrary(ctx context.Context, pageURL string) (*PageCapture, error) {
	s.mu.Lock()
	b := s.browser
	s.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("scraper: session not started")
	}

	log := s.cfg.Logger

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("scraper: create tab: %w", err)
	}
	defer func() { _ = page.Close() }()

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("scraper: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("scraper: wait load timeout", "url", pageURL, "error", err)
	}

	// Lazy-rendered purchase lists only populate on scroll.
	if err := triggerLazyLoading(navCtx, page); err != nil {
		log.Warn("scraper: lazy loading trigger failed", "error", err)
	}

	select {
	case <-time.After(s.cfg.SettleDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	htmlRes, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("scraper: get DOM: %w", err)
	}
	textRes, err := page.Context(navCtx).Eval(`() => document.body ? document.body.innerText : ''`)
	if err != nil {
		return nil, fmt.Errorf("scraper: get text: %w", err)
	}

	capture := &PageCapture{
		URL:  pageURL,
		HTML: htmlRes.Value.Str(),
		Text: textRes.Value.Str(),
	}
	log.Info("scraper: captured library page",
		"url", pageURL, "html_bytes", len(capture.HTML))
	return capture, nil
}

func triggerLazyLoading(ctx context.Context, page *rod.Page) error {
	if _, err := page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return err
	}
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		return ctx.Err()
	}
	if _, err := page.Context(ctx).Eval(`() => window.scrollTo(0, 0)`); err != nil {
		return err
	}
	return nil
}

// Authenticated reports whether the storefront session cookie is
// present, without navigating.
func (s *Session) Authenticated(ctx context.Context, cookieName, domain string) (bool, error) {
	s.mu.Lock()
	b := s.browser
	s.mu.Unlock()
	if b == nil {
		return false, fmt.Errorf("scraper: session not started")
	}

	cookies, err := b.GetCookies()
	if err != nil {
		return false, fmt.Errorf("scraper: get cookies: %w", err)
	}
	for _, c := range cookies {
		if c.Name == cookieName && (domain == "" || c.Domain == domain) {
			return true, nil
		}
	}
	return false, nil
}

// SetCookies installs session cookies, for cookie-based authentication
// captured out of band.
func (s *Session) SetCookies(ctx context.Context, cookies []*proto.NetworkCookieParam) error {
	s.mu.Lock()
	b := s.browser
	s.mu.Unlock()
	if b == nil {
		return fmt.Errorf("scraper: session not started")
	}
	if err := b.SetCookies(cookies); err != nil {
		return fmt.Errorf("scraper: set cookies: %w", err)
	}
	return nil
}
