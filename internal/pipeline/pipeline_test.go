package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwondev/buyee-mercari-scraper/internal/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name      string
		priceText string
		expected  int
	}{
		{"yen with separator", "¥ 12,300", 12300},
		{"plain digits", "3000", 3000},
		{"empty", "", 0},
		{"no digits", "SOLD", 0},
		{"currency suffix", "1,500円", 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePrice(tt.priceText))
		})
	}
}

func listing(keyword, url, priceText string) models.Listing {
	return models.Listing{
		Code:       keyword,
		Title:      "item",
		PriceText:  priceText,
		ItemURL:    url,
		CapturedAt: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestProcessCeilingFilter(t *testing.T) {
	p := New()
	ceiling := 5000
	task := models.SearchTask{Keyword: "abc123", Ceiling: &ceiling}
	result := models.CrawlResult{
		Keyword: "abc123",
		Listings: []models.Listing{
			listing("abc123", "https://buyee.jp/mercari/item/m1", "3,000"),
			listing("abc123", "https://buyee.jp/mercari/item/m2", "7,000"),
		},
	}

	seen := NewSeenSet(nil)
	rows := p.Process(result, task, seen)

	require.Len(t, rows, 1)
	assert.Equal(t, "https://buyee.jp/mercari/item/m1", rows[0].ItemURL)
	assert.True(t, seen.Has("https://buyee.jp/mercari/item/m1"))
	assert.False(t, seen.Has("https://buyee.jp/mercari/item/m2"))
	assert.Len(t, seen, 1)
}

func TestProcessNoCeilingAdmitsEverything(t *testing.T) {
	p := New()
	task := models.SearchTask{Keyword: "xyz"}
	result := models.CrawlResult{
		Keyword: "xyz",
		Listings: []models.Listing{
			listing("xyz", "https://buyee.jp/mercari/item/m1", "999,999"),
		},
	}

	rows := p.Process(result, task, NewSeenSet(nil))
	assert.Len(t, rows, 1)
}

func TestProcessDedupIsRunCumulative(t *testing.T) {
	p := New()
	seen := NewSeenSet(nil)
	url := "https://buyee.jp/mercari/item/m1"

	first := p.Process(models.CrawlResult{
		Keyword:  "a",
		Listings: []models.Listing{listing("a", url, "100")},
	}, models.SearchTask{Keyword: "a"}, seen)
	require.Len(t, first, 1)

	// The same item surfacing under a second keyword must be dropped.
	second := p.Process(models.CrawlResult{
		Keyword:  "b",
		Listings: []models.Listing{listing("b", url, "100")},
	}, models.SearchTask{Keyword: "b"}, seen)
	assert.Empty(t, second)
}

func TestProcessIdempotentAgainstPriorRun(t *testing.T) {
	p := New()
	urls := []string{
		"https://buyee.jp/mercari/item/m1",
		"https://buyee.jp/mercari/item/m2",
	}
	result := models.CrawlResult{
		Keyword: "a",
		Listings: []models.Listing{
			listing("a", urls[0], "100"),
			listing("a", urls[1], "200"),
		},
	}

	rows := p.Process(result, models.SearchTask{Keyword: "a"}, NewSeenSet(urls))
	assert.Empty(t, rows)
}

func TestProcessEmptyCrawlEmitsOneSentinel(t *testing.T) {
	p := New()
	seen := NewSeenSet(nil)

	rows := p.Process(models.CrawlResult{Keyword: "xyz"}, models.SearchTask{Keyword: "xyz"}, seen)
	require.Len(t, rows, 1)
	assert.Equal(t, "xyz", rows[0].Code)
	assert.Equal(t, models.NoResultsTitle, rows[0].Title)
	assert.Empty(t, rows[0].ItemURL)

	// A second empty keyword in the same run must not add another.
	again := p.Process(models.CrawlResult{Keyword: "other"}, models.SearchTask{Keyword: "other"}, seen)
	assert.Empty(t, again)
}

func TestProcessSentinelSuppressedByExistingRecord(t *testing.T) {
	p := New()
	seen := NewSeenSet([]string{""})

	rows := p.Process(models.CrawlResult{Keyword: "xyz"}, models.SearchTask{Keyword: "xyz"}, seen)
	assert.Empty(t, rows)
}

func TestProcessUnparseablePricePassesCeiling(t *testing.T) {
	p := New()
	ceiling := 100
	task := models.SearchTask{Keyword: "a", Ceiling: &ceiling}
	result := models.CrawlResult{
		Keyword:  "a",
		Listings: []models.Listing{listing("a", "https://buyee.jp/mercari/item/m1", "price unknown")},
	}

	// Unparseable price parses to zero, which a finite ceiling admits.
	rows := p.Process(result, task, NewSeenSet(nil))
	assert.Len(t, rows, 1)
}
