package fetch

import "math/rand"

// headerSet is one browser fingerprint presented to a product page.
type headerSet struct {
	UserAgent string
	Accept    string
	Language  string
}

// fingerprints is a fixed pool of realistic desktop browser identities.
// Rotation only reduces trivial request-pattern blocking; it is not an
// evasion layer and sites that insist on JavaScript still win.
var fingerprints = []headerSet{
	{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Accept:    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		Language:  "en-IN,en-US;q=0.9,en;q=0.8,hi;q=0.7",
	},
	{
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Accept:    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		Language:  "en-IN,en-US;q=0.9,en;q=0.8,hi;q=0.7",
	},
	{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		Accept:    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		Language:  "en-IN,en;q=0.8,hi;q=0.6",
	},
	{
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
		Accept:    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		Language:  "en-IN,en-US;q=0.9,en;q=0.8",
	},
	{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
		Accept:    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		Language:  "en-IN,en-US;q=0.9,en;q=0.8,hi;q=0.7",
	},
}

// pickFingerprint draws a random fingerprint from the pool. Pure choice
// over an immutable table; no rotation state is kept between calls.
func pickFingerprint() headerSet {
	return fingerprints[rand.Intn(len(fingerprints))]
}
