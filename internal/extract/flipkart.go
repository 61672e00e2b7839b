package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/pricedrop/tracker-cli/internal/model"
	"github.com/pricedrop/tracker-cli/internal/price"
)

// Flipkart extracts from flipkart.com product pages. The page usually
// carries JSON-LD product metadata, which survives markup redesigns far
// better than the class-name soup, so structured data goes first and the
// selector chain is the fallback.
type Flipkart struct {
	chains
}

// NewFlipkart creates the Flipkart extractor with the built-in chains.
func NewFlipkart() *Flipkart {
	return &Flipkart{chains: chains{
		priceSel: []string{
			"div.Nx9bqj.CxhGGd",
			"div.hZ3P6w.bnqy13",
			"div._30jeq3._16Jk6d",
			"div.hl05eU",
		},
		titleSel: []string{
			"span.VU-ZEz",
			"span.B_NuCI",
			"h1",
		},
	}}
}

func (f *Flipkart) Source() model.Source { return model.SourceFlipkart }

func (f *Flipkart) Extract(content []byte) (*Result, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	if v, name, ok := productFromJSONLD(doc); ok {
		title := name
		if title == "" {
			title = titleOrDefault(doc, f.titleSel)
		}
		return &Result{Title: title, Price: v}, nil
	}

	if v, ok := firstPrice(doc, f.priceSel); ok {
		return &Result{Title: titleOrDefault(doc, f.titleSel), Price: v}, nil
	}
	return nil, ErrNoPrice
}

// productFromJSONLD scans the page's ld+json blocks for a Product (or bare
// Offer) carrying a positive price. Blocks may hold a single object or an
// array; malformed JSON and priceless entries fall through silently so the
// selector strategy still gets its turn.
func productFromJSONLD(doc *goquery.Document) (float64, string, bool) {
	var (
		amount float64
		name   string
		found  bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.Text()
		if !gjson.Valid(raw) {
			return true
		}
		parsed := gjson.Parse(raw)
		entries := []gjson.Result{parsed}
		if parsed.IsArray() {
			entries = parsed.Array()
		}
		for _, entry := range entries {
			var candidate gjson.Result
			switch entry.Get("@type").String() {
			case "Product":
				candidate = entry.Get("offers.price")
				if n := entry.Get("name").String(); n != "" {
					name = n
				}
			case "Offer":
				candidate = entry.Get("price")
			default:
				continue
			}
			if !candidate.Exists() {
				continue
			}
			if v, ok := price.Parse(candidate.String()); ok && v > 0 {
				amount = v
				found = true
				return false
			}
		}
		return true
	})
	return amount, name, found
}
