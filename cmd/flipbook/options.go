package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	flipbook "github.com/porticus-lab/go-flipbook"
	"github.com/porticus-lab/go-flipbook/chrome"
	"github.com/porticus-lab/go-flipbook/config"
)

func padding(p config.PaddingConfig) flipbook.Padding {
	return flipbook.Padding{Top: p.Top, Right: p.Right, Bottom: p.Bottom, Left: p.Left}
}

// viewerOptions translates the viewer section of the configuration.
func viewerOptions(cfg *config.Config, log *zap.Logger) ([]flipbook.Option, error) {
	vc := cfg.Viewer
	dir, err := flipbook.ParseDirection(vc.Direction)
	if err != nil {
		return nil, err
	}
	mode, err := flipbook.ParseDisplayMode(vc.Mode)
	if err != nil {
		return nil, err
	}
	return []flipbook.Option{
		flipbook.WithLogger(log.Named("viewer")),
		flipbook.WithDirection(dir),
		flipbook.WithDisplayMode(mode),
		flipbook.WithPadding(padding(vc.Padding)),
		flipbook.WithAspect(vc.Aspect),
		flipbook.WithEdgeConfig(flipbook.EdgeConfig{Divisor: vc.Edges.Divisor, Cap: vc.Edges.Cap}),
		flipbook.WithZoomConfig(flipbook.ZoomConfig{Min: vc.Zoom.Min, Max: vc.Zoom.Max, Step: vc.Zoom.Step}),
		flipbook.WithResizeDebounce(vc.ResizeDebounce),
		flipbook.WithCueDebounce(vc.CueDebounce),
		flipbook.WithFreezeTimeout(vc.FreezeTimeout),
		flipbook.WithSound(vc.Sound),
		flipbook.WithShadow(vc.Shadow),
		flipbook.WithFlippingTime(vc.FlippingTime),
		flipbook.WithShareURL(vc.ShareURL),
	}, nil
}

// browserOptions translates the browser section of the configuration.
func browserOptions(bc config.BrowserConfig, log *zap.Logger) []chrome.Option {
	opts := []chrome.Option{
		chrome.WithLogger(log.Named("chrome")),
		chrome.WithHeadless(bc.Headless),
		chrome.WithTimeout(bc.Timeout),
		chrome.WithWindowSize(bc.Width, bc.Height),
		chrome.WithScripts(bc.PageFlipURL, bc.PDFJSURL),
	}
	if bc.ChromePath != "" {
		opts = append(opts, chrome.WithChromePath(bc.ChromePath))
	}
	if bc.NoSandbox {
		opts = append(opts, chrome.WithNoSandbox())
	}
	if bc.AutoDownload {
		opts = append(opts, chrome.WithAutoDownload())
	}
	return opts
}

// openOptions translates the render section into source options. The
// measurer is nil for commands that run without a browser.
func openOptions(cfg *config.Config, log *zap.Logger, m flipbook.Measurer) flipbook.OpenOptions {
	rc := cfg.Render
	return flipbook.OpenOptions{
		Scale: rc.Scale,
		HTML: flipbook.HTMLOptions{
			Padding:  padding(rc.PagePadding),
			Covers:   rc.Covers,
			EndTitle: rc.EndTitle,
			Measurer: m,
			Log:      log.Named("html"),
		},
	}
}

// acquire opens path and loads all of its pages, logging progress.
func acquire(ctx context.Context, path string, opts flipbook.OpenOptions, log *zap.Logger) (flipbook.Source, *flipbook.Document, error) {
	src, err := flipbook.OpenSource(path, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	doc, err := flipbook.Acquire(ctx, path, src, func(done, total int) {
		if done == total || done%25 == 0 {
			log.Debug("Loading pages", zap.Int("done", done), zap.Int("total", total))
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return src, doc, nil
}
