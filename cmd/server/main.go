package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kwondev/buyee-mercari-scraper/internal/api"
	"github.com/kwondev/buyee-mercari-scraper/internal/browser"
	"github.com/kwondev/buyee-mercari-scraper/internal/config"
	"github.com/kwondev/buyee-mercari-scraper/internal/database"
	"github.com/kwondev/buyee-mercari-scraper/internal/metrics"
	"github.com/kwondev/buyee-mercari-scraper/internal/ratelimit"
	"github.com/kwondev/buyee-mercari-scraper/internal/runner"
	"github.com/kwondev/buyee-mercari-scraper/internal/scraper"
	"github.com/kwondev/buyee-mercari-scraper/internal/seencache"
	"github.com/kwondev/buyee-mercari-scraper/internal/sheets"
	"github.com/kwondev/buyee-mercari-scraper/pkg/logger"
)

// Service mode: scrape the full code sheet on an interval and expose
// health, metrics and an ad-hoc crawl endpoint in between.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logg.Info("starting buyee mercari scraper service", "interval", cfg.Server.CrawlInterval.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logg.Info("shutdown signal received")
		cancel()
	}()

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      browser.DefaultOptions().UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		ProxyServer:    cfg.Scraper.ProxyServer,
	})
	if err != nil {
		logg.Error("failed to launch browser session", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	sheetClient, err := sheets.NewClient(ctx, cfg.Sheets)
	if err != nil {
		logg.Error("failed to create sheets client", "error", err)
		os.Exit(1)
	}

	crawler := scraper.NewCrawler(b, cfg.Scraper)
	limiter := ratelimit.New(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)
	r := runner.New(crawler, sheetClient, sheetClient, limiter, metrics.New())

	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			logg.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		r.WithDatabase(db)
	}

	if cfg.Redis.Enabled() {
		cache, err := seencache.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		r.WithSeenCache(cache)
	}

	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: api.NewRouter(api.NewHandlers(crawler, logg)),
	}

	go func() {
		logg.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("http server failed", "error", err)
			cancel()
		}
	}()

	runLoop(ctx, logg, r, cfg.Server.CrawlInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("http server shutdown failed", "error", err)
	}

	logg.Info("service stopped")
}

// runLoop runs one pass immediately, then one per tick until the
// context is cancelled. A failed pass is logged and the next tick tries
// again.
func runLoop(ctx context.Context, logg *slog.Logger, r *runner.Runner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := r.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logg.Error("scrape pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
