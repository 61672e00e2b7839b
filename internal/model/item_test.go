package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in   string
		want Source
	}{
		{"amazon", SourceAmazon},
		{"flipkart", SourceFlipkart},
		{"myntra", SourceMyntra},
		{"FLIPKART", SourceFlipkart},
		{"  myntra  ", SourceMyntra},
		{"", SourceAmazon},
		{"ebay", SourceAmazon},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSource(tt.in), "input %q", tt.in)
	}
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		url    string
		want   Source
		wantOK bool
	}{
		{"https://www.amazon.in/dp/B0ABC123", SourceAmazon, true},
		{"https://amazon.com/gp/product/X", SourceAmazon, true},
		{"https://www.flipkart.com/watch/p/itm123", SourceFlipkart, true},
		{"https://www.myntra.com/watches/titan/123/buy", SourceMyntra, true},
		{"https://example.com/product", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectSource(tt.url)
		assert.Equal(t, tt.wantOK, ok, "url %q", tt.url)
		assert.Equal(t, tt.want, got, "url %q", tt.url)
	}
}

func TestItemNormalize(t *testing.T) {
	it := Item{Name: "  Watch  ", URL: " https://www.flipkart.com/x ", Source: "FLIPKART"}
	it.Normalize()
	assert.Equal(t, "Watch", it.Name)
	assert.Equal(t, "https://www.flipkart.com/x", it.URL)
	assert.Equal(t, SourceFlipkart, it.Source)

	unset := Item{Name: "Phone", URL: "https://example.com"}
	unset.Normalize()
	assert.Equal(t, SourceAmazon, unset.Source)
}
