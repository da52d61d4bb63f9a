package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/kwondev/buyee-mercari-scraper/internal/browser"
	"github.com/kwondev/buyee-mercari-scraper/internal/config"
	"github.com/kwondev/buyee-mercari-scraper/internal/models"
)

// Crawler drives one keyword's full scrape sequence: navigate the entry
// page, resolve the results frame, exhaust lazy-loaded pagination,
// infer the item selector and extract listings.
type Crawler struct {
	browser    *browser.Browser
	resolver   *FrameResolver
	pagination *PaginationDriver
	navTimeout time.Duration
	debug      bool
	debugDir   string
	logger     *slog.Logger
}

func NewCrawler(b *browser.Browser, cfg config.ScraperConfig) *Crawler {
	return &Crawler{
		browser:    b,
		resolver:   NewFrameResolver(cfg.NavTimeout),
		pagination: NewPaginationDriver(cfg.ScrollSettle, cfg.MaxScrolls, cfg.MaxScrollTime),
		navTimeout: cfg.NavTimeout,
		debug:      cfg.Debug,
		debugDir:   cfg.DebugDir,
		logger:     slog.Default().With("component", "crawler"),
	}
}

// Crawl scrapes all listings for one task. Any failure here is scoped
// to the task; the caller converts it into an empty result and moves on
// to the next keyword.
func (c *Crawler) Crawl(ctx context.Context, task models.SearchTask) (models.CrawlResult, error) {
	result := models.CrawlResult{Keyword: task.Keyword}

	page, err := c.browser.NewPage()
	if err != nil {
		return result, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := c.browser.Navigate(page, SearchURL(task.Keyword), c.navTimeout); err != nil {
		return result, err
	}

	frame, err := c.resolver.Resolve(page, task.Keyword)
	if err != nil {
		return result, err
	}

	if err := c.pagination.Exhaust(ctx, frameScroller{frame}); err != nil {
		// Extraction can still work on whatever loaded so far.
		c.logger.Warn("pagination did not complete", "keyword", task.Keyword, "error", err)
	}

	markup, err := frame.Content()
	if err != nil {
		return result, fmt.Errorf("failed to read frame markup: %w", err)
	}

	if c.debug {
		c.dumpArtifacts(page, task.Keyword, markup)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return result, fmt.Errorf("failed to parse frame markup: %w", err)
	}

	selector := InferItemSelector(doc)
	result.Listings = ExtractListings(doc, selector, task.Keyword, time.Now())

	c.logger.Info("crawl finished", "keyword", task.Keyword, "selector", selector, "listings", len(result.Listings))

	return result, nil
}

// dumpArtifacts persists a markup snapshot and a full-page capture of
// the results view for diagnostics. Failures here are logged, never
// surfaced.
func (c *Crawler) dumpArtifacts(page playwright.Page, keyword, markup string) {
	if err := os.MkdirAll(c.debugDir, 0o755); err != nil {
		c.logger.Warn("failed to create debug dir", "error", err)
		return
	}

	htmlPath := filepath.Join(c.debugDir, keyword+".html")
	if err := os.WriteFile(htmlPath, []byte(markup), 0o644); err != nil {
		c.logger.Warn("failed to write markup snapshot", "path", htmlPath, "error", err)
	}

	pngPath := filepath.Join(c.debugDir, keyword+".png")
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(pngPath),
		FullPage: playwright.Bool(true),
	}); err != nil {
		c.logger.Warn("failed to capture screenshot", "path", pngPath, "error", err)
	}
}
