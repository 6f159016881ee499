// Package chrome hosts the flip widget in a Chrome tab driven over the
// DevTools protocol, and implements the viewer's widget, measurement,
// presentation and feedback interfaces on top of it.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// ErrClosed is returned when attempting to use a closed [Browser].
var ErrClosed = errors.New("chrome: browser is closed")

// Browser manages one browser process. Tabs opened from it share the
// process. It is safe for concurrent use.
//
// Call [Browser.Close] when the Browser is no longer needed to release
// browser resources.
type Browser struct {
	cfg           browserConfig
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewBrowser starts a browser with the given options. The caller must call
// [Browser.Close] when finished.
func NewBrowser(opts ...Option) (*Browser, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", cfg.headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
		// the viewer page and the PDFs it renders are both file:// URLs
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.Flag("headless", cfg.headless),
		chromedp.WindowSize(cfg.width, cfg.height),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chrome: starting browser: %w", err)
	}
	cfg.log.Debug("Browser started",
		zap.String("path", cfg.chromePath), zap.Bool("headless", cfg.headless))

	return &Browser{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Browser, including the browser
// process. Close is idempotent.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.browserCancel()
	b.allocCancel()
	return nil
}

func (b *Browser) checkClosed() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable.
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("chrome: downloading browser: %w", err)
	}
	return path, nil
}
