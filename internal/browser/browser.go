package browser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// hideWebdriver runs before any page script and removes the flag most
// bot checks probe first.
const hideWebdriver = `() => { Object.defineProperty(navigator, 'webdriver', {get: () => undefined}); }`

// Browser owns a playwright instance, one Chromium process and one
// browser context. Pages are created from the context and belong to it;
// Close releases everything in reverse order.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	logger  *slog.Logger
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ProxyServer    string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        60 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "ja,en-US;q=0.9,en;q=0.8",
		TimezoneID:     "Asia/Tokyo",
		Locale:         "ja-JP",
	}
}

// New launches a Chromium session hardened against automation
// fingerprinting. A launch failure here is fatal for the whole run; no
// keyword can proceed without a session.
func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	}

	if opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{
			Server: opts.ProxyServer,
		}
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent:       &opts.UserAgent,
		AcceptDownloads: playwright.Bool(false),
		Locale:          &opts.Locale,
		TimezoneId:      &opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": opts.AcceptLanguage,
		},
	}

	context, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if err := context.AddInitScript(playwright.Script{Content: playwright.String(hideWebdriver)}); err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to add init script: %w", err)
	}

	b := &Browser{
		pw:      pw,
		browser: browser,
		context: context,
		logger:  slog.Default().With("component", "browser"),
	}

	b.logger.Info("browser session launched", "headless", opts.Headless, "proxy", opts.ProxyServer != "")

	return b, nil
}

func (b *Browser) NewPage() (playwright.Page, error) {
	page, err := b.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	page.SetDefaultTimeout(float64(DefaultOptions().Timeout.Milliseconds()))

	return page, nil
}

func (b *Browser) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

// Navigate loads a URL on the page with a bounded wait for the DOM to
// be ready.
func (b *Browser) Navigate(page playwright.Page, url string, timeout time.Duration) error {
	_, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}
