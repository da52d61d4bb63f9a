package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kwondev/buyee-mercari-scraper/internal/database"
	"github.com/kwondev/buyee-mercari-scraper/internal/metrics"
	"github.com/kwondev/buyee-mercari-scraper/internal/models"
	"github.com/kwondev/buyee-mercari-scraper/internal/pipeline"
	"github.com/kwondev/buyee-mercari-scraper/internal/ratelimit"
	"github.com/kwondev/buyee-mercari-scraper/internal/seencache"
)

// TaskSource supplies the run's input: the ordered keyword tasks and
// the store's already-recorded item URLs.
type TaskSource interface {
	Tasks(ctx context.Context) ([]models.SearchTask, error)
	ExistingURLs(ctx context.Context) ([]string, error)
}

// RowSink accepts new output rows and controls final ordering.
type RowSink interface {
	InsertRows(ctx context.Context, rows []models.OutputRow) error
	SortByTimestamp(ctx context.Context) error
}

// Crawler produces one keyword's listings.
type Crawler interface {
	Crawl(ctx context.Context, task models.SearchTask) (models.CrawlResult, error)
}

// Runner drives a full run: one sequential pass over every task, each
// keyword crawled, filtered and flushed before the next begins. A
// keyword whose crawl fails yields zero listings and the run moves on;
// only the task source, the row sink and cancellation abort a run.
type Runner struct {
	crawler Crawler
	pipe    *pipeline.Pipeline
	source  TaskSource
	sink    RowSink
	limiter *ratelimit.Limiter
	metrics *metrics.Metrics
	db      *database.DB
	cache   *seencache.Cache
	logger  *slog.Logger
}

func New(crawler Crawler, source TaskSource, sink RowSink, limiter *ratelimit.Limiter, m *metrics.Metrics) *Runner {
	return &Runner{
		crawler: crawler,
		pipe:    pipeline.New(),
		source:  source,
		sink:    sink,
		limiter: limiter,
		metrics: m,
		logger:  slog.Default().With("component", "runner"),
	}
}

// WithDatabase enables the Postgres mirror of run outcomes and rows.
func (r *Runner) WithDatabase(db *database.DB) *Runner {
	r.db = db
	return r
}

// WithSeenCache enables the Redis write-through over the seen-set.
func (r *Runner) WithSeenCache(cache *seencache.Cache) *Runner {
	r.cache = cache
	return r
}

// Run executes one complete scrape pass. Accepted rows are flushed to
// the sink per keyword so a mid-run failure loses at most the current
// keyword's rows, and the sheet is re-sorted once at the end.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := r.logger.With("run_id", runID)

	tasks, err := r.source.Tasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	existing, err := r.source.ExistingURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load existing urls: %w", err)
	}

	seen := r.buildSeen(ctx, existing)

	log.Info("run started", "tasks", len(tasks), "existing_urls", len(existing))

	total := 0
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		started := time.Now()

		result, crawlErr := r.crawler.Crawl(ctx, task)
		softFailed := crawlErr != nil
		if softFailed {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Per-keyword soft failure: indistinguishable downstream
			// from a genuine empty result.
			log.Warn("keyword crawl failed, recording zero listings", "keyword", task.Keyword, "error", crawlErr)
			r.metrics.SoftFailures.WithLabelValues("crawl").Inc()
			r.limiter.RecordError()
			result = models.CrawlResult{Keyword: task.Keyword}
		} else {
			r.limiter.RecordSuccess()
		}

		r.metrics.KeywordsProcessed.Inc()
		r.metrics.ListingsExtracted.Add(float64(len(result.Listings)))

		rows := r.pipe.Process(result, task, seen)
		r.metrics.RowsAccepted.Add(float64(len(rows)))

		if err := r.sink.InsertRows(ctx, rows); err != nil {
			return fmt.Errorf("failed to flush rows for %q: %w", task.Keyword, err)
		}

		r.mirror(ctx, log, runID, task, result, rows, softFailed, started)

		total += len(rows)
		log.Info("keyword processed",
			"keyword", task.Keyword,
			"listings", len(result.Listings),
			"accepted", len(rows),
			"cumulative", total,
			"soft_failed", softFailed,
		)
	}

	if total > 0 {
		if err := r.sink.SortByTimestamp(ctx); err != nil {
			return fmt.Errorf("failed to sort output: %w", err)
		}
	}

	log.Info("run complete", "keywords", len(tasks), "rows", total)

	return nil
}

// buildSeen seeds the in-memory seen-set from the store and, when the
// Redis cache is configured, layers the write-through over it.
func (r *Runner) buildSeen(ctx context.Context, existing []string) pipeline.Seen {
	set := pipeline.NewSeenSet(existing)
	if r.cache == nil {
		return set
	}
	return &cachedSeen{ctx: ctx, set: set, cache: r.cache, logger: r.logger}
}

// mirror records the keyword's outcome in the optional database. Mirror
// failures never affect the run.
func (r *Runner) mirror(ctx context.Context, log *slog.Logger, runID string, task models.SearchTask, result models.CrawlResult, rows []models.OutputRow, softFailed bool, started time.Time) {
	if r.db == nil {
		return
	}

	run := &database.Run{
		ID:           uuid.NewString(),
		Keyword:      task.Keyword,
		ListingCount: len(result.Listings),
		RowsAccepted: len(rows),
		SoftFailed:   softFailed,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}

	if err := r.db.InsertRun(ctx, run); err != nil {
		log.Warn("failed to mirror run record", "keyword", task.Keyword, "error", err)
	}
	if err := r.db.InsertRows(ctx, runID, rows); err != nil {
		log.Warn("failed to mirror rows", "keyword", task.Keyword, "error", err)
	}
}

// cachedSeen consults Redis for URLs the in-memory set has not seen and
// writes accepted URLs through to it. Cache errors degrade to the
// in-memory answer.
type cachedSeen struct {
	ctx    context.Context
	set    pipeline.SeenSet
	cache  *seencache.Cache
	logger *slog.Logger
}

func (c *cachedSeen) Has(url string) bool {
	if c.set.Has(url) {
		return true
	}
	if url == "" {
		// The sentinel marker is per run; it never lives in the cache.
		return false
	}
	seen, err := c.cache.IsSeen(c.ctx, url)
	if err != nil {
		c.logger.Warn("seen cache lookup failed", "error", err)
		return false
	}
	return seen
}

func (c *cachedSeen) Add(url string) {
	c.set.Add(url)
	if url == "" {
		return
	}
	if err := c.cache.Mark(c.ctx, url); err != nil {
		c.logger.Warn("seen cache write failed", "error", err)
	}
}
