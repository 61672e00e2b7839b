package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/pricedrop/tracker-cli/internal/model"
)

// myntraStateMarker opens the inline script that seeds Myntra's SPA with
// the full product state. Everything after the assignment is one JSON
// object (usually with a trailing semicolon).
const myntraStateMarker = "window.__myx ="

// Myntra extracts from myntra.com product pages. The rendered markup is
// mostly a JavaScript shell, so the page-state object is the primary
// strategy and the lone price selector is a thin fallback for the rare
// server-rendered variant.
type Myntra struct {
	chains
}

// NewMyntra creates the Myntra extractor with the built-in chains.
func NewMyntra() *Myntra {
	return &Myntra{chains: chains{
		priceSel: []string{
			".pdp-price",
		},
		titleSel: []string{
			"h1.pdp-title",
			"h1.pdp-name",
			"h1",
		},
	}}
}

func (m *Myntra) Source() model.Source { return model.SourceMyntra }

func (m *Myntra) Extract(content []byte) (*Result, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	title := titleOrDefault(doc, m.titleSel)

	if v, name, ok := myntraPageState(doc); ok {
		if name != "" {
			title = name
		}
		return &Result{Title: title, Price: v}, nil
	}

	if v, ok := firstPrice(doc, m.priceSel); ok {
		return &Result{Title: title, Price: v}, nil
	}
	return nil, ErrNoPrice
}

// myntraPageState finds the window.__myx assignment and reads the price
// out of pdpData. The discounted price wins; the MRP is the fallback when
// the discount field is zero or missing. pdpData.name, when present, is a
// cleaner title than the h1.
func myntraPageState(doc *goquery.Document) (float64, string, bool) {
	var (
		amount float64
		name   string
		found  bool
	)
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, myntraStateMarker)
		if idx < 0 {
			return true
		}
		raw := strings.TrimSpace(text[idx+len(myntraStateMarker):])
		raw = strings.TrimSuffix(raw, ";")
		if !gjson.Valid(raw) {
			return true
		}
		state := gjson.Parse(raw)
		p := state.Get("pdpData.price.discounted")
		if !p.Exists() || p.Float() <= 0 {
			p = state.Get("pdpData.price.mrp")
		}
		if p.Exists() && p.Float() > 0 {
			amount = p.Float()
			name = state.Get("pdpData.name").String()
			found = true
			return false
		}
		return true
	})
	return amount, name, found
}
