// Package extract pulls a product title and current price out of fetched
// page HTML. Each supported platform gets its own extractor applying an
// ordered list of strategies (embedded product JSON first where the site
// ships it, then CSS selector chains); the first strategy that yields a
// parseable price wins.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/pricedrop/tracker-cli/internal/model"
	"github.com/pricedrop/tracker-cli/internal/price"
)

// ErrNoPrice reports that every strategy ran without finding a price.
var ErrNoPrice = eris.New("extract: no price found")

// defaultTitle stands in when a page yields a price but no usable title.
const defaultTitle = "Unknown Product"

// Result is a successful extraction. Price is always > 0; Title falls back
// to a placeholder rather than emptying out.
type Result struct {
	Title string
	Price float64
}

// Extractor turns raw page content into a Result for one platform.
type Extractor interface {
	Source() model.Source
	Extract(content []byte) (*Result, error)
}

// chains holds the selector fallback lists an extractor walks. Earlier
// entries are the more specific, current markup; later ones are legacy
// shapes kept because old pages still serve them.
type chains struct {
	priceSel []string
	titleSel []string
}

// apply swaps in rule-file overrides where present.
func (c *chains) apply(r SourceRules) {
	if len(r.Price) > 0 {
		c.priceSel = r.Price
	}
	if len(r.Title) > 0 {
		c.titleSel = r.Title
	}
}

func parseDoc(content []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse html")
	}
	return doc, nil
}

// firstText returns the trimmed text of the first selector that matches a
// non-empty element.
func firstText(doc *goquery.Document, selectors []string) (string, bool) {
	for _, sel := range selectors {
		if txt := strings.TrimSpace(doc.Find(sel).First().Text()); txt != "" {
			return txt, true
		}
	}
	return "", false
}

// firstPrice walks the selector chain and returns the first matched text
// that parses to a price. A selector whose text fails to parse does not
// stop the walk.
func firstPrice(doc *goquery.Document, selectors []string) (float64, bool) {
	for _, sel := range selectors {
		txt := strings.TrimSpace(doc.Find(sel).First().Text())
		if txt == "" {
			continue
		}
		if v, ok := price.Parse(txt); ok {
			return v, true
		}
	}
	return 0, false
}

func titleOrDefault(doc *goquery.Document, selectors []string) string {
	if t, ok := firstText(doc, selectors); ok {
		return t
	}
	return defaultTitle
}
