package browser

import (
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.Headless {
		t.Error("Expected headless to be true by default")
	}

	if opts.Timeout != 60*time.Second {
		t.Errorf("Expected timeout to be 60s, got %v", opts.Timeout)
	}

	if opts.ViewportWidth != 1920 || opts.ViewportHeight != 1080 {
		t.Errorf("Expected viewport to be 1920x1080, got %dx%d", opts.ViewportWidth, opts.ViewportHeight)
	}

	if opts.Locale != "ja-JP" {
		t.Errorf("Expected locale to be ja-JP, got %s", opts.Locale)
	}

	if opts.ProxyServer != "" {
		t.Errorf("Expected no proxy by default, got %s", opts.ProxyServer)
	}
}
