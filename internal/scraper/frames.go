package scraper

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrFrameNotFound is returned when every resolution strategy has been
// exhausted for a keyword. Callers treat it as zero listings for that
// keyword, never as a run-wide failure.
var ErrFrameNotFound = errors.New("results frame could not be resolved")

// FrameResolver locates the document that actually renders search
// results. Buyee has shipped the results list both as an embedded
// iframe and as a standalone page, and its markup changes between
// deployments, so resolution is an ordered list of strategies tried
// until one succeeds.
type FrameResolver struct {
	navTimeout time.Duration
	logger     *slog.Logger
}

func NewFrameResolver(navTimeout time.Duration) *FrameResolver {
	return &FrameResolver{
		navTimeout: navTimeout,
		logger:     slog.Default().With("component", "frame_resolver"),
	}
}

type frameStrategy struct {
	name string
	fn   func(page playwright.Page, keyword string) (playwright.Frame, error)
}

// Resolve returns the frame rendering results for the keyword, trying
// each strategy in strict order and stopping at the first success.
func (r *FrameResolver) Resolve(page playwright.Page, keyword string) (playwright.Frame, error) {
	strategies := []frameStrategy{
		{"iframe_src", r.resolveByIframeSrc},
		{"frame_name", r.resolveByFrameName},
		{"frame_url_scan", r.resolveByFrameURL},
		{"fallback_url", r.resolveByFallbackURL},
	}

	for _, s := range strategies {
		frame, err := s.fn(page, keyword)
		if err == nil && frame != nil {
			r.logger.Debug("results frame resolved", "strategy", s.name, "keyword", keyword)
			return frame, nil
		}
		r.logger.Debug("frame strategy failed", "strategy", s.name, "keyword", keyword, "error", err)
	}

	return nil, fmt.Errorf("%w: keyword %q", ErrFrameNotFound, keyword)
}

// resolveByIframeSrc reads the src of the results iframe. When a src is
// present the page itself is navigated there and treated as the frame;
// otherwise the iframe's content document is used directly. Both
// embeddings have been observed in production.
func (r *FrameResolver) resolveByIframeSrc(page playwright.Page, keyword string) (playwright.Frame, error) {
	el, err := page.WaitForSelector(fmt.Sprintf(`iframe[src*="%s"]`, resultsFramePattern), playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(r.navTimeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("results iframe not attached: %w", err)
	}

	src, err := el.GetAttribute("src")
	if err == nil && src != "" {
		if _, err := page.Goto(src, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateNetworkidle,
			Timeout:   playwright.Float(float64(r.navTimeout.Milliseconds())),
		}); err != nil {
			return nil, fmt.Errorf("failed to navigate to iframe src: %w", err)
		}
		return page.MainFrame(), nil
	}

	frame, err := el.ContentFrame()
	if err != nil {
		return nil, fmt.Errorf("failed to get iframe content frame: %w", err)
	}
	if frame == nil {
		return nil, errors.New("iframe has no content frame")
	}
	return frame, nil
}

// resolveByFrameName looks the frame up by its declared logical name.
func (r *FrameResolver) resolveByFrameName(page playwright.Page, keyword string) (playwright.Frame, error) {
	for _, frame := range page.Frames() {
		if frame.Name() == resultsFrameName {
			return frame, nil
		}
	}
	return nil, fmt.Errorf("no frame named %q", resultsFrameName)
}

// resolveByFrameURL scans every attached frame for the results-service
// host.
func (r *FrameResolver) resolveByFrameURL(page playwright.Page, keyword string) (playwright.Frame, error) {
	for _, frame := range page.Frames() {
		if strings.Contains(frame.URL(), resultsHost) {
			return frame, nil
		}
	}
	return nil, fmt.Errorf("no frame with host %q", resultsHost)
}

// resolveByFallbackURL is the last resort: reconstruct the results URL
// from the keyword and navigate the page to it directly. The page must
// render item markers within the bounded wait, otherwise resolution
// fails for this keyword.
func (r *FrameResolver) resolveByFallbackURL(page playwright.Page, keyword string) (playwright.Frame, error) {
	fallback := FallbackResultsURL(keyword)
	r.logger.Info("falling back to constructed results url", "keyword", keyword, "url", fallback)

	if _, err := page.Goto(fallback, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(r.navTimeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("failed to navigate to fallback url: %w", err)
	}

	if _, err := page.WaitForSelector(fmt.Sprintf(`a[href*="%s"]`, itemPathMarker), playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(r.navTimeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("fallback page rendered no item markers: %w", err)
	}

	return page.MainFrame(), nil
}
