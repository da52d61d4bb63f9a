package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kwondev/buyee-mercari-scraper/internal/models"
)

// Sub-element roles inside one item anchor. The hashed suffix of these
// class names changes between site builds, so matching is on the stable
// prefix only.
const (
	soldMarkerSelector = `[class*="sold"]`
	titleSelector      = `span[class*="simple_name"]`
	priceSelector      = `span[class*="simple_price"]`
)

// ExtractListings parses each candidate item element into a listing, in
// document order. Sold-out items are skipped entirely. Missing title,
// price or image sub-elements default to empty strings rather than
// failing the element.
func ExtractListings(doc *goquery.Document, selector, keyword string, now time.Time) []models.Listing {
	var listings []models.Listing

	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if sel.Find(soldMarkerSelector).Length() > 0 {
			return
		}

		href, _ := sel.Attr("href")
		image, _ := sel.Find("img").First().Attr("src")

		listings = append(listings, models.Listing{
			Code:       keyword,
			Title:      strings.TrimSpace(sel.Find(titleSelector).First().Text()),
			PriceText:  strings.TrimSpace(sel.Find(priceSelector).First().Text()),
			ImageRef:   image,
			ItemURL:    AbsoluteItemURL(href),
			CapturedAt: now,
		})
	})

	return listings
}
