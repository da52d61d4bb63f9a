package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureMarkup = `
<html><body>
	<a class="simple_container__llX1q" href="/mercari/item/m100">
		<img src="https://static.buyee.jp/img/m100.jpg">
		<span class="simple_name__XMcbt">Vintage camera</span>
		<span class="simple_price__h13DP">¥ 12,300</span>
	</a>
	<a class="simple_container__llX1q" href="/mercari/item/m101">
		<span class="sold_text__yvzaS">SOLD</span>
		<span class="simple_name__XMcbt">Gone already</span>
		<span class="simple_price__h13DP">¥ 500</span>
	</a>
	<a class="simple_container__llX1q" href="https://buyee.jp/mercari/item/m102">
		<span class="simple_price__h13DP">¥ 800</span>
	</a>
</body></html>`

func TestExtractListings(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)
	d := doc(t, fixtureMarkup)

	selector := InferItemSelector(d)
	assert.Equal(t, "a.simple_container__llX1q", selector)

	listings := ExtractListings(d, selector, "cam123", now)
	require.Len(t, listings, 2, "sold-out items must be excluded")

	first := listings[0]
	assert.Equal(t, "cam123", first.Code)
	assert.Equal(t, "Vintage camera", first.Title)
	assert.Equal(t, "¥ 12,300", first.PriceText)
	assert.Equal(t, "https://static.buyee.jp/img/m100.jpg", first.ImageRef)
	assert.Equal(t, "https://buyee.jp/mercari/item/m100", first.ItemURL, "relative href must be absolutized")
	assert.Equal(t, now, first.CapturedAt)

	second := listings[1]
	assert.Empty(t, second.Title, "missing title defaults to empty")
	assert.Empty(t, second.ImageRef, "missing image defaults to empty")
	assert.Equal(t, "https://buyee.jp/mercari/item/m102", second.ItemURL, "absolute href kept as-is")
}

func TestExtractListingsPreservesDocumentOrder(t *testing.T) {
	html := `
		<a class="c" href="/mercari/item/m1"><span class="simple_price__x">¥ 1</span></a>
		<a class="c" href="/mercari/item/m2"><span class="simple_price__x">¥ 2</span></a>
		<a class="c" href="/mercari/item/m3"><span class="simple_price__x">¥ 3</span></a>`

	listings := ExtractListings(doc(t, html), "a.c", "k", time.Now())
	require.Len(t, listings, 3)
	assert.Equal(t, "https://buyee.jp/mercari/item/m1", listings[0].ItemURL)
	assert.Equal(t, "https://buyee.jp/mercari/item/m2", listings[1].ItemURL)
	assert.Equal(t, "https://buyee.jp/mercari/item/m3", listings[2].ItemURL)
}

func TestAbsoluteItemURL(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{"relative path", "/mercari/item/m1", "https://buyee.jp/mercari/item/m1"},
		{"already absolute", "https://buyee.jp/mercari/item/m1", "https://buyee.jp/mercari/item/m1"},
		{"missing leading slash", "mercari/item/m1", "https://buyee.jp/mercari/item/m1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AbsoluteItemURL(tt.href))
		})
	}
}
