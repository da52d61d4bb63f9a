package pipeline

import (
	"log/slog"
	"regexp"
	"strconv"

	"github.com/kwondev/buyee-mercari-scraper/internal/models"
)

var nonDigits = regexp.MustCompile(`[^\d]`)

// ParsePrice strips everything but digits from a price display string.
// An empty or non-numeric price yields 0. Combined with a finite
// ceiling that means an unparseable price passes the filter; the
// reference behavior is kept deliberately so listings are never lost to
// a display-format change.
func ParsePrice(priceText string) int {
	digits := nonDigits.ReplaceAllString(priceText, "")
	if digits == "" {
		return 0
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return value
}

// Seen tracks every item URL already present in the output store,
// extended in memory as new rows are accepted so duplicates within the
// same run are suppressed too.
type Seen interface {
	Has(url string) bool
	Add(url string)
}

// SeenSet is the in-memory Seen implementation, seeded from the store's
// existing URL column before a run.
type SeenSet map[string]struct{}

func NewSeenSet(urls []string) SeenSet {
	s := make(SeenSet, len(urls))
	for _, u := range urls {
		s[u] = struct{}{}
	}
	return s
}

func (s SeenSet) Has(url string) bool {
	_, ok := s[url]
	return ok
}

func (s SeenSet) Add(url string) {
	s[url] = struct{}{}
}

// Pipeline filters a crawl result down to the rows that belong in the
// output store: price ceiling, then dedup, then projection. It is a
// pure filter-and-fold; the only state it touches is the seen-set it is
// handed.
type Pipeline struct {
	logger *slog.Logger
}

func New() *Pipeline {
	return &Pipeline{
		logger: slog.Default().With("component", "pipeline"),
	}
}

// Process applies the task's ceiling and the seen-set to a crawl result
// and returns the surviving rows in crawl order. Accepted URLs are
// added to seen immediately, so a later listing in the same batch can
// never duplicate an earlier one.
//
// A crawl with zero listings yields a single no-results sentinel row
// with an empty URL, but only if the empty-url sentinel is not already
// recorded; at most one sentinel exists per run regardless of how many
// keywords come up empty.
func (p *Pipeline) Process(result models.CrawlResult, task models.SearchTask, seen Seen) []models.OutputRow {
	if len(result.Listings) == 0 {
		if seen.Has("") {
			return nil
		}
		seen.Add("")
		return []models.OutputRow{sentinelRow(task.Keyword)}
	}

	var rows []models.OutputRow
	for _, listing := range result.Listings {
		price := ParsePrice(listing.PriceText)
		if task.Ceiling != nil && price > *task.Ceiling {
			continue
		}
		if seen.Has(listing.ItemURL) {
			continue
		}

		rows = append(rows, models.OutputRow{
			Code:      listing.Code,
			Title:     listing.Title,
			PriceText: listing.PriceText,
			ImageCell: models.ImageFormula(listing.ImageRef),
			ItemURL:   listing.ItemURL,
			Timestamp: listing.CapturedAt.Format(models.TimestampLayout),
		})
		seen.Add(listing.ItemURL)
	}

	p.logger.Debug("pipeline processed crawl", "keyword", task.Keyword, "in", len(result.Listings), "out", len(rows))

	return rows
}

func sentinelRow(keyword string) models.OutputRow {
	return models.OutputRow{
		Code:      keyword,
		Title:     models.NoResultsTitle,
		Timestamp: models.NowTimestamp(),
	}
}
