package chrome

import (
	"time"

	"go.uber.org/zap"
)

// Default script locations for the widget page.
const (
	DefaultPageFlipURL = "https://cdn.jsdelivr.net/npm/page-flip@2.0.7/dist/js/page-flip.browser.min.js"
	DefaultPDFJSURL    = "https://cdn.jsdelivr.net/npm/pdfjs-dist@4.8.69/build/pdf.min.mjs"
)

// browserConfig holds internal configuration for a Browser.
type browserConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     bool
	autoDownload bool
	width        int
	height       int
	pageFlipURL  string
	pdfjsURL     string
	log          *zap.Logger
}

func defaultConfig() browserConfig {
	return browserConfig{
		timeout:     30 * time.Second,
		headless:    true,
		width:       1280,
		height:      800,
		pageFlipURL: DefaultPageFlipURL,
		pdfjsURL:    DefaultPDFJSURL,
		log:         zap.NewNop(),
	}
}

// Option configures a [Browser].
type Option func(*browserConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *browserConfig) {
		c.chromePath = path
	}
}

// WithTimeout bounds every single browser call. Defaults to 30 seconds. A
// zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *browserConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *browserConfig) {
		c.noSandbox = true
	}
}

// WithHeadless selects between a headless browser and a visible window.
// Headless is the default.
func WithHeadless(on bool) Option {
	return func(c *browserConfig) {
		c.headless = on
	}
}

// WithAutoDownload fetches a known-good Chromium build into the local cache
// when no executable path is configured.
func WithAutoDownload() Option {
	return func(c *browserConfig) {
		c.autoDownload = true
	}
}

// WithWindowSize sets the initial window size in CSS pixels.
func WithWindowSize(width, height int) Option {
	return func(c *browserConfig) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithScripts overrides where the page-flip and pdf.js libraries are loaded
// from. Empty values keep the defaults.
func WithScripts(pageFlipURL, pdfjsURL string) Option {
	return func(c *browserConfig) {
		if pageFlipURL != "" {
			c.pageFlipURL = pageFlipURL
		}
		if pdfjsURL != "" {
			c.pdfjsURL = pdfjsURL
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *browserConfig) {
		if log != nil {
			c.log = log
		}
	}
}
