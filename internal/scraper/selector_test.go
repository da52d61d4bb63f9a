package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestInferItemSelectorPicksMostFrequentClass(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString(`<a class="x" href="/mercari/item/m1">a</a>`)
	}
	for i := 0; i < 3; i++ {
		b.WriteString(`<a class="y" href="/mercari/item/m2">b</a>`)
	}

	selector := InferItemSelector(doc(t, b.String()))
	assert.Equal(t, "a.x", selector)
}

func TestInferItemSelectorIgnoresNonItemAnchors(t *testing.T) {
	html := `
		<a class="nav" href="/help">help</a>
		<a class="nav" href="/faq">faq</a>
		<a class="nav" href="/terms">terms</a>
		<a class="card__a1b2" href="/mercari/item/m1">item</a>
		<a class="card__a1b2" href="/mercari/item/m2">item</a>`

	selector := InferItemSelector(doc(t, html))
	assert.Equal(t, "a.card__a1b2", selector)
}

func TestInferItemSelectorSplitsClassTokens(t *testing.T) {
	html := `
		<a class="card featured" href="/mercari/item/m1">a</a>
		<a class="card" href="/mercari/item/m2">b</a>`

	selector := InferItemSelector(doc(t, html))
	assert.Equal(t, "a.card", selector)
}

func TestInferItemSelectorFallsBackWithoutClasses(t *testing.T) {
	html := `<a href="/mercari/item/m1">item</a>`

	selector := InferItemSelector(doc(t, html))
	assert.Equal(t, `a[href*="/item/"]`, selector)
}

func TestInferItemSelectorFallsBackOnEmptyMarkup(t *testing.T) {
	selector := InferItemSelector(doc(t, "<html><body></body></html>"))
	assert.Equal(t, `a[href*="/item/"]`, selector)
}
