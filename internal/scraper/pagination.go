package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// scrollable is the slice of a rendering context the pagination driver
// needs: measure the document height and jump to the bottom.
type scrollable interface {
	ContentHeight() (int, error)
	ScrollToBottom() error
}

// PaginationDriver surfaces lazy-loaded results by scrolling to the
// bottom until the document height stops growing. The site inserts
// items asynchronously, so each scroll is followed by a settle pause
// before re-measuring.
//
// The height comparison alone does not guarantee termination against a
// page whose height fluctuates without bound, so the loop is also
// capped by MaxScrolls and MaxElapsed.
type PaginationDriver struct {
	Settle     time.Duration
	MaxScrolls int
	MaxElapsed time.Duration
	logger     *slog.Logger
}

func NewPaginationDriver(settle time.Duration, maxScrolls int, maxElapsed time.Duration) *PaginationDriver {
	return &PaginationDriver{
		Settle:     settle,
		MaxScrolls: maxScrolls,
		MaxElapsed: maxElapsed,
		logger:     slog.Default().With("component", "pagination"),
	}
}

// Exhaust scrolls until the content height repeats between two
// consecutive measurements, or a bound is hit. Already-loaded content
// is never removed, so stopping early only costs completeness.
func (d *PaginationDriver) Exhaust(ctx context.Context, target scrollable) error {
	deadline := time.Now().Add(d.MaxElapsed)
	prev := -1

	for i := 0; i < d.MaxScrolls; i++ {
		height, err := target.ContentHeight()
		if err != nil {
			return fmt.Errorf("failed to measure content height: %w", err)
		}

		if height == prev {
			return nil
		}
		prev = height

		if time.Now().After(deadline) {
			d.logger.Warn("pagination time bound reached", "height", height, "scrolls", i)
			return nil
		}

		if err := target.ScrollToBottom(); err != nil {
			return fmt.Errorf("failed to scroll: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.Settle):
		}
	}

	d.logger.Warn("pagination scroll bound reached", "max_scrolls", d.MaxScrolls)
	return nil
}

// frameScroller adapts a playwright frame to the scrollable interface.
type frameScroller struct {
	frame playwright.Frame
}

func (s frameScroller) ContentHeight() (int, error) {
	v, err := s.frame.Evaluate(`document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	switch h := v.(type) {
	case int:
		return h, nil
	case float64:
		return int(h), nil
	default:
		return 0, fmt.Errorf("unexpected height type %T", v)
	}
}

func (s frameScroller) ScrollToBottom() error {
	_, err := s.frame.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`)
	return err
}
