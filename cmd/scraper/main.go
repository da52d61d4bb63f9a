package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

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

// One-shot mode: a single full pass over the code sheet, then exit.
func main() {
	var (
		headless = flag.Bool("headless", true, "Run browser in headless mode")
		debug    = flag.Bool("debug", false, "Persist markup snapshots and screenshots per keyword")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cfg.Browser.Headless = *headless && cfg.Browser.Headless
	cfg.Scraper.Debug = *debug || cfg.Scraper.Debug

	logg := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logg.Info("starting buyee mercari scraper")

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

	limiter := ratelimit.New(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)
	crawler := scraper.NewCrawler(b, cfg.Scraper)
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

	if err := r.Run(ctx); err != nil {
		logg.Error("run failed", "error", err)
		b.Close()
		os.Exit(1)
	}

	logg.Info("run finished")
}
