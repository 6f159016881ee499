package flipbook

import (
	"time"

	"go.uber.org/zap"
)

// viewerConfig holds internal configuration for a Viewer.
type viewerConfig struct {
	log            *zap.Logger
	direction      Direction
	mode           DisplayMode
	padding        Padding
	aspect         float64
	startPage      int
	edge           EdgeConfig
	zoom           ZoomConfig
	resizeDebounce time.Duration
	cueDebounce    time.Duration
	freezeTimeout  time.Duration
	sound          bool
	shadow         float64
	flippingTime   time.Duration
	fontScale      float64
	feedback       Feedback
	location       Location
	presenter      Presenter
	reflower       Reflower
	shareURL       string
}

func defaultConfig() viewerConfig {
	return viewerConfig{
		log:            zap.NewNop(),
		edge:           DefaultEdgeConfig(),
		zoom:           DefaultZoomConfig(),
		resizeDebounce: 200 * time.Millisecond,
		cueDebounce:    500 * time.Millisecond,
		freezeTimeout:  3 * time.Second,
		sound:          true,
		shadow:         0.5,
		flippingTime:   800 * time.Millisecond,
		fontScale:      1,
	}
}

// Option configures a [Viewer].
type Option func(*viewerConfig)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *viewerConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDirection sets the initial reading direction. Defaults to LTR.
func WithDirection(d Direction) Option {
	return func(c *viewerConfig) {
		c.direction = d
	}
}

// WithDisplayMode sets the initial display mode. Defaults to Spread.
func WithDisplayMode(m DisplayMode) Option {
	return func(c *viewerConfig) {
		c.mode = m
	}
}

// WithPadding sets the container padding subtracted from the viewport
// before fitting pages.
func WithPadding(p Padding) Option {
	return func(c *viewerConfig) {
		c.padding = p
	}
}

// WithAspect fixes the page aspect ratio (width / height). By default the
// natural size of page 1 decides it.
func WithAspect(aspect float64) Option {
	return func(c *viewerConfig) {
		c.aspect = aspect
	}
}

// WithStartPage sets the logical page shown by the first build.
func WithStartPage(page int) Option {
	return func(c *viewerConfig) {
		c.startPage = page
	}
}

// WithEdgeConfig sets the read-edge marker divisor and cap.
func WithEdgeConfig(e EdgeConfig) Option {
	return func(c *viewerConfig) {
		c.edge = e.resolved()
	}
}

// WithZoomConfig sets the zoom bounds and step.
func WithZoomConfig(z ZoomConfig) Option {
	return func(c *viewerConfig) {
		c.zoom = z.resolved()
	}
}

// WithResizeDebounce sets the trailing-edge delay applied to resize bursts.
// Defaults to 200ms.
func WithResizeDebounce(d time.Duration) Option {
	return func(c *viewerConfig) {
		c.resizeDebounce = d
	}
}

// WithCueDebounce sets the minimum gap between two audible cues.
// Defaults to 500ms.
func WithCueDebounce(d time.Duration) Option {
	return func(c *viewerConfig) {
		c.cueDebounce = d
	}
}

// WithFreezeTimeout bounds how long edge updates stay suppressed while a
// first/last jump waits for the widget to settle. Defaults to 3 seconds.
func WithFreezeTimeout(d time.Duration) Option {
	return func(c *viewerConfig) {
		c.freezeTimeout = d
	}
}

// WithSound enables or disables the page turn cue. Enabled by default.
func WithSound(on bool) Option {
	return func(c *viewerConfig) {
		c.sound = on
	}
}

// WithShadow sets the widget's maximum shadow opacity. Defaults to 0.5.
func WithShadow(opacity float64) Option {
	return func(c *viewerConfig) {
		c.shadow = opacity
	}
}

// WithFlippingTime sets the widget's page turn duration. Defaults to 800ms.
func WithFlippingTime(d time.Duration) Option {
	return func(c *viewerConfig) {
		c.flippingTime = d
	}
}

// WithFeedback sets the cue and share side channel.
func WithFeedback(f Feedback) Option {
	return func(c *viewerConfig) {
		c.feedback = f
	}
}

// WithLocation keeps the page URL parameter in sync with the current page.
func WithLocation(l Location) Option {
	return func(c *viewerConfig) {
		c.location = l
	}
}

// WithPresenter sets the component that draws the toolbar, edge markers
// and zoom transform from each new [State].
func WithPresenter(p Presenter) Option {
	return func(c *viewerConfig) {
		c.presenter = p
	}
}

// WithReflow makes the document reflowable: every rebuild re-paginates it
// for the fitted page size and current font scale.
func WithReflow(r Reflower, fontScale float64) Option {
	return func(c *viewerConfig) {
		c.reflower = r
		if fontScale > 0 {
			c.fontScale = fontScale
		}
	}
}

// WithShareURL sets the base URL published by [Viewer.Share].
func WithShareURL(u string) Option {
	return func(c *viewerConfig) {
		c.shareURL = u
	}
}
