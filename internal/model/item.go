package model

import (
	"net/url"
	"strings"
)

// Source identifies the e-commerce platform an item is tracked on.
type Source string

const (
	SourceAmazon   Source = "amazon"
	SourceFlipkart Source = "flipkart"
	SourceMyntra   Source = "myntra"
)

// ParseSource normalizes a source string from an items file. Unknown or
// empty values fall back to amazon, matching the historical default.
func ParseSource(s string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceFlipkart:
		return SourceFlipkart
	case SourceMyntra:
		return SourceMyntra
	default:
		return SourceAmazon
	}
}

// DetectSource guesses the platform from a product URL's host. Returns
// false when the host matches no supported platform.
func DetectSource(rawURL string) (Source, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "amazon"):
		return SourceAmazon, true
	case strings.Contains(host, "flipkart"):
		return SourceFlipkart, true
	case strings.Contains(host, "myntra"):
		return SourceMyntra, true
	}
	return "", false
}

// Item is a single tracked product. Items are created by the CLI (or an
// external caller) and read-only to the tracking engine; only Threshold is
// expected to change between cycles.
type Item struct {
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Source    Source  `json:"source,omitempty"`
	Threshold float64 `json:"threshold,omitempty"` // <= 0 disables the target alert
	Owner     string  `json:"owner,omitempty"`     // opaque routing id for notification sinks
}

// Normalize fills derived fields after decoding: the source default and
// whitespace trimming. Called at ingestion so the engine never re-parses.
func (it *Item) Normalize() {
	it.Name = strings.TrimSpace(it.Name)
	it.URL = strings.TrimSpace(it.URL)
	it.Source = ParseSource(string(it.Source))
}
