package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the capture-time format written to the list sheet.
// The sheet is sorted on this column, so it must stay lexicographically
// ordered.
const TimestampLayout = "2006-01-02 15:04:05"

// NoResultsTitle is the placeholder title written when a keyword yields
// no qualifying listings.
const NoResultsTitle = "결과 없음"

// SearchTask is one row of the code sheet: a search keyword (doubling as
// the result grouping code) and an optional price ceiling in yen.
type SearchTask struct {
	Keyword string
	Ceiling *int
}

// ParseCeiling converts the raw ceiling cell into an optional limit.
// Thousands separators are tolerated; an empty or non-numeric cell means
// no ceiling.
func ParseCeiling(raw string) *int {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &v
}

// Listing is a single item scraped from the results frame. ItemURL is
// always absolute and serves as the deduplication key.
type Listing struct {
	Code       string
	Title      string
	PriceText  string
	ImageRef   string
	ItemURL    string
	CapturedAt time.Time
}

// CrawlResult is the ordered set of listings produced for one task.
type CrawlResult struct {
	Keyword  string
	Listings []Listing
}

// OutputRow is a Listing projected into the list sheet's column order:
// code, title, price display, image directive, url, timestamp.
type OutputRow struct {
	Code      string
	Title     string
	PriceText string
	ImageCell string
	ItemURL   string
	Timestamp string
}

// Values returns the row in sheet column order.
func (r OutputRow) Values() []interface{} {
	return []interface{}{r.Code, r.Title, r.PriceText, r.ImageCell, r.ItemURL, r.Timestamp}
}

// NowTimestamp returns the current time in the sheet's timestamp
// format.
func NowTimestamp() string {
	return time.Now().Format(TimestampLayout)
}

// ImageFormula renders an image reference as a sheet display directive.
// An empty reference yields an empty cell.
func ImageFormula(imageRef string) string {
	if imageRef == "" {
		return ""
	}
	return fmt.Sprintf(`=IMAGE("%s",1)`, imageRef)
}
