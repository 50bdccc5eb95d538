package scraper

import (
	"regexp"
	"sort"
	"strings"
)

// RawItem is one product candidate extracted from the library page.
type RawItem struct {
	Name        string
	MachineName string
	// IsBundle marks names that look like bundle titles rather than
	// individual products.
	IsBundle bool
}

const (
	minNameLen = 10
	maxNameLen = 200
)

// HTML patterns that tend to wrap product names on storefront library
// pages: headings, title/name-classed containers, download links.
var htmlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<h[1-6][^>]*>([^<]{10,200})</h[1-6]>`),
	regexp.MustCompile(`(?i)<div[^>]*class="[^"]*title[^"]*"[^>]*>([^<]{10,200})</div>`),
	regexp.MustCompile(`(?i)<a[^>]*href="[^"]*download[^"]*"[^>]*>([^<]{10,200})</a>`),
	regexp.MustCompile(`(?i)<span[^>]*class="[^"]*name[^"]*"[^>]*>([^<]{10,200})</span>`),
}

// Storefront-specific patterns: bundle titles, subscription choice items.
var bundlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<[^>]*>([A-Z][a-z\s]+Bundle[^<]{0,50})</[^>]*>`),
	regexp.MustCompile(`(?i)<[^>]*>([A-Z][^<]*Choice[^<]{0,50})</[^>]*>`),
}

var bundleNameRe = regexp.MustCompile(`(?i)\b(bundle|choice)\b`)

// Navigation and chrome text to skip during text extraction.
var skipWords = []string{
	"humble", "bundle store", "library", "welcome", "account", "settings",
	"logout", "login", "search", "filter", "sort by",
	"previous", "next", "loading", "please wait",
	"copyright", "privacy", "terms", "help", "support",
	"menu", "navigation", "breadcrumb", "footer", "header",
}

// Hints that a line of page text is a product rather than chrome.
var productHints = []string{
	"Collection", "Edition", "Game", "Software", "Book", "Comic",
	"Audio", "Music", "Download", "Install", "Play", "Read", "Listen",
}

// ParseLibrary extracts product candidates from a captured library page.
// It combines HTML structure patterns, rendered-text heuristics, and
// storefront-specific bundle patterns, then dedupes by name. Results are
// sorted by name for determinism.
func ParseLibrary(capture *PageCapture) []RawItem {
	seen := make(map[string]bool)
	add := func(names []string) {
		for _, n := range names {
			seen[n] = true
		}
	}

	add(extractFromHTML(capture.HTML))
	add(extractFromText(capture.Text))
	add(extractBundleNames(capture.HTML))

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	items := make([]RawItem, 0, len(names))
	for _, n := range names {
		items = append(items, RawItem{
			Name:        n,
			MachineName: MachineName(n),
			IsBundle:    bundleNameRe.MatchString(n),
		})
	}
	return items
}

// extractFromHTML pulls candidate names out of HTML structure.
func extractFromHTML(html string) []string {
	var names []string
	for _, re := range htmlPatterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			name := strings.TrimSpace(m[1])
			if ValidProductName(name) {
				names = append(names, name)
			}
		}
	}
	return names
}

// extractFromText scans the rendered page text line by line.
func extractFromText(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < minNameLen {
			continue
		}
		lower := strings.ToLower(line)
		skip := false
		for _, w := range skipWords {
			if strings.Contains(lower, w) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		hinted := false
		for _, h := range productHints {
			if strings.Contains(line, h) {
				hinted = true
				break
			}
		}
		if hinted && ValidProductName(line) {
			names = append(names, line)
			continue
		}
		// Lines that simply look like titles: long enough, mixed case,
		// starting alphanumeric.
		if len(line) >= 15 && line != strings.ToUpper(line) && ValidProductName(line) {
			names = append(names, line)
		}
	}
	return names
}

// extractBundleNames applies the storefront-specific patterns.
func extractBundleNames(html string) []string {
	var names []string
	for _, re := range bundlePatterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			name := strings.TrimSpace(m[1])
			if ValidProductName(name) {
				names = append(names, name)
			}
		}
	}
	return names
}

// ValidProductName filters out navigation text, shouting, and noise.
func ValidProductName(name string) bool {
	if len(name) < minNameLen || len(name) > maxNameLen {
		return false
	}

	// Mostly alphanumeric or whitespace
	clean := 0
	for _, r := range name {
		if isAlnum(r) || r == ' ' || r == '\t' {
			clean++
		}
	}
	if float64(clean) < float64(len([]rune(name)))*0.7 {
		return false
	}

	// All caps reads as navigation
	if name == strings.ToUpper(name) {
		return false
	}

	if !isAlnum([]rune(name)[0]) {
		return false
	}

	lower := strings.ToLower(name)
	for _, w := range skipWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}

// MachineName derives a stable identifier slug from a display name.
func MachineName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
