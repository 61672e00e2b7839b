package extract

import "github.com/pricedrop/tracker-cli/internal/model"

// Amazon extracts from amazon.* product pages. Amazon ships no reliable
// structured data on the desktop page, so it is selector chains all the
// way down; the price markup has cycled through many shapes over the years
// and every shape that is still seen in the wild stays in the chain.
type Amazon struct {
	chains
}

// NewAmazon creates the Amazon extractor with the built-in chains.
func NewAmazon() *Amazon {
	return &Amazon{chains: chains{
		priceSel: []string{
			".a-price-whole",
			"#corePriceDisplay_desktop_feature_div .a-price-whole",
			"#corePrice_desktop .a-price-whole",
			".a-price .a-offscreen",
			"#priceblock_ourprice",
			"#priceblock_dealprice",
			"#corePriceDisplay_desktop_feature_div .a-offscreen",
			"#apex_desktop .a-offscreen",
			`.a-price span[aria-hidden="true"]`,
			"#tp_price_block_total_price_ww .a-offscreen",
			".reinventPricePriceToPayMargin .a-offscreen",
		},
		titleSel: []string{
			"#productTitle",
			"#title",
			"h1",
		},
	}}
}

func (a *Amazon) Source() model.Source { return model.SourceAmazon }

func (a *Amazon) Extract(content []byte) (*Result, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	v, ok := firstPrice(doc, a.priceSel)
	if !ok {
		return nil, ErrNoPrice
	}
	return &Result{Title: titleOrDefault(doc, a.titleSel), Price: v}, nil
}
