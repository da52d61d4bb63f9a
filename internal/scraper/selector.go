package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fallbackItemSelector matches any anchor pointing at an item page,
// with no class constraint.
var fallbackItemSelector = fmt.Sprintf(`a[href*="%s"]`, itemPathMarker)

// InferItemSelector derives a CSS selector for item links from rendered
// markup. Buyee ships machine-generated class names that differ across
// builds, so a hardcoded selector is not durable. Instead, the class
// tokens of every anchor whose href contains the item-path marker are
// tallied, and the single most frequent token becomes the selector
// basis; it recovers the structurally dominant listing pattern without
// knowing the exact class string.
//
// When no qualifying anchors carry classes, the path-pattern fallback
// selector is returned.
func InferItemSelector(doc *goquery.Document) string {
	counts := make(map[string]int)

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, itemPathMarker) {
			return
		}
		class, _ := sel.Attr("class")
		for _, token := range strings.Fields(class) {
			counts[token]++
		}
	})

	best := ""
	bestCount := 0
	for token, count := range counts {
		if count > bestCount || (count == bestCount && token < best) {
			best = token
			bestCount = count
		}
	}

	if best == "" {
		return fallbackItemSelector
	}
	return "a." + best
}
