package scraper

import (
	"fmt"
	"net/url"
	"strings"
)

// Site constants for Buyee's Mercari proxy search. The results list is
// served by asf.buyee.jp and embedded into buyee.jp either as an iframe
// or as a standalone document, depending on the deployment.
const (
	Origin = "https://buyee.jp"

	resultsHost         = "asf.buyee.jp"
	resultsFramePattern = "asf.buyee.jp/mercari"
	resultsFrameName    = "mercari_search"

	// itemPathMarker identifies links that point at an individual
	// listing page.
	itemPathMarker = "/item/"
)

// SearchURL is the buyee.jp entry page for a keyword search.
func SearchURL(keyword string) string {
	return fmt.Sprintf("%s/mercari/search?keyword=%s", Origin, url.QueryEscape(keyword))
}

// FallbackResultsURL reconstructs the results-service URL directly from
// the keyword. Used as a last resort when no frame can be located on
// the entry page.
func FallbackResultsURL(keyword string) string {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("conversionType", "mercari")
	q.Set("currency", "JPY")
	q.Set("member", "false")
	q.Set("locale", "en-US")
	return fmt.Sprintf("https://%s/mercari/search?%s", resultsHost, q.Encode())
}

// AbsoluteItemURL resolves a listing href against the canonical origin.
// Item URLs are used as deduplication keys and must always be absolute.
func AbsoluteItemURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return Origin + href
}
