// Package price normalizes scraped price text into numeric values.
package price

import (
	"strconv"
	"strings"
)

// Parse extracts a numeric price from raw page text such as "₹15,999" or
// "1.299,00 MRP". Every rune that is not a digit or '.' is stripped; when
// several dots survive, all but the last are treated as thousands
// separators. Returns false for text with no digits. This is a deliberate
// heuristic, not a locale-aware parser: listing pages mix currency symbols,
// separators, and labels too freely for strict parsing to survive.
func Parse(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	// "1.299.99" -> "1299.99": keep only the final dot as the decimal point.
	if strings.Count(cleaned, ".") > 1 {
		parts := strings.Split(cleaned, ".")
		cleaned = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
