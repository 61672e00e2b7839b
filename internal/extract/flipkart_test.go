package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlipkartExtractJSONLDProduct(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@context":"https://schema.org","@type":"Product","name":"Noise Smart Watch",
		 "offers":{"@type":"Offer","price":"1999.00","priceCurrency":"INR"}}
		</script>
	</head><body><span class="VU-ZEz">Ignored Fallback Title</span></body></html>`

	res, err := NewFlipkart().Extract([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, 1999.0, res.Price)
	assert.Equal(t, "Noise Smart Watch", res.Title)
}

func TestFlipkartExtractJSONLDArray(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		[{"@type":"BreadcrumbList"},
		 {"@type":"Product","name":"Boat Earbuds","offers":{"price":1299}}]
		</script>
	</head><body></body></html>`

	res, err := NewFlipkart().Extract([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, 1299.0, res.Price)
	assert.Equal(t, "Boat Earbuds", res.Title)
}

func TestFlipkartExtractBareOffer(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Offer","price":"499"}</script>
	</head><body><h1>Phone Cover</h1></body></html>`

	res, err := NewFlipkart().Extract([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, 499.0, res.Price)
	assert.Equal(t, "Phone Cover", res.Title)
}

func TestFlipkartExtractMalformedJSONLDFallsThrough(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Product","offers":{</script>
	</head><body>
		<span class="B_NuCI">Redmi Note</span>
		<div class="_30jeq3 _16Jk6d">₹11,999</div>
	</body></html>`

	res, err := NewFlipkart().Extract([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, 11999.0, res.Price)
	assert.Equal(t, "Redmi Note", res.Title)
}

func TestFlipkartExtractSelectorChain(t *testing.T) {
	html := `<html><body>
		<span class="VU-ZEz">Fire-Boltt Watch</span>
		<div class="Nx9bqj CxhGGd">₹999</div>
	</body></html>`

	res, err := NewFlipkart().Extract([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, 999.0, res.Price)
	assert.Equal(t, "Fire-Boltt Watch", res.Title)
}

func TestFlipkartExtractPricelessProduct(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Product","name":"Out of Stock Thing"}</script>
	</head><body><p>Sold out</p></body></html>`

	_, err := NewFlipkart().Extract([]byte(html))
	assert.ErrorIs(t, err, ErrNoPrice)
}
