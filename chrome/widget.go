package chrome

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	flipbook "github.com/porticus-lab/go-flipbook"
)

// Factory builds page-flip widgets inside a [Tab]. Every widget gets a fresh
// container element; events from destroyed containers are ignored.
type Factory struct {
	tab     *Tab
	log     *zap.Logger
	scale   float64
	widgets map[string]*widget
}

// NewFactory returns a factory for tab. renderScale is passed to pdf.js when
// PDF pages are rasterised.
func NewFactory(tab *Tab, renderScale float64) *Factory {
	if renderScale <= 0 {
		renderScale = flipbook.RenderScale
	}
	f := &Factory{tab: tab, log: tab.log, scale: renderScale, widgets: make(map[string]*widget)}
	tab.Subscribe(f.handle)
	return f
}

type widgetOptions struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Size             string  `json:"size"`
	MaxWidth         int     `json:"maxWidth"`
	MaxHeight        int     `json:"maxHeight"`
	MaxShadowOpacity float64 `json:"maxShadowOpacity"`
	ShowCover        bool    `json:"showCover"`
	Portrait         bool    `json:"portrait"`
	StartPage        int     `json:"startPage"`
	FlippingTime     int64   `json:"flippingTime"`
	UseMouseEvents   bool    `json:"useMouseEvents"`
	RenderScale      float64 `json:"renderScale"`
}

type pageSlot struct {
	Kind   string
	URL    string `json:",omitempty"`
	Markup string `json:",omitempty"`
	Index  int
	Page   int
	Class  string `json:",omitempty"`
}

func toPageSlot(s flipbook.Slot) pageSlot {
	ps := pageSlot{Kind: s.Asset.Kind.String(), Page: s.Page, Class: s.Asset.Class}
	switch s.Asset.Kind {
	case flipbook.ImageAsset:
		ps.URL = "data:" + s.Asset.MediaType + ";base64," + base64.StdEncoding.EncodeToString(s.Asset.Data)
	case flipbook.PDFAsset:
		ps.URL, ps.Index = s.Asset.Source, s.Asset.Index
	case flipbook.HTMLAsset:
		ps.Markup = s.Asset.Markup
	}
	return ps
}

// NewWidget implements [flipbook.WidgetFactory].
func (f *Factory) NewWidget(ctx context.Context, cfg flipbook.WidgetConfig, slots []flipbook.Slot, sink flipbook.EventSink) (flipbook.Widget, error) {
	w := &widget{
		id:       "book-" + uuid.NewString(),
		tab:      f.tab,
		sink:     sink,
		index:    cfg.StartIndex,
		owner:    f,
		count:    len(slots),
		portrait: cfg.Portrait,
		cover:    cfg.ShowCover,
		pending:  -1,
	}
	opts := widgetOptions{
		Width:            cfg.Width,
		Height:           cfg.Height,
		Size:             cfg.Size.String(),
		MaxWidth:         cfg.MaxWidth,
		MaxHeight:        cfg.MaxHeight,
		MaxShadowOpacity: cfg.MaxShadowOpacity,
		ShowCover:        cfg.ShowCover,
		Portrait:         cfg.Portrait,
		StartPage:        cfg.StartIndex,
		FlippingTime:     cfg.FlippingTime.Milliseconds(),
		UseMouseEvents:   cfg.CaptureGestures,
		RenderScale:      f.scale,
	}
	pages := make([]pageSlot, len(slots))
	for i, s := range slots {
		pages[i] = toPageSlot(s)
	}

	var idx int
	if err := f.tab.eval(ctx, &idx, "flipbook.build", w.id, opts, pages); err != nil {
		return nil, fmt.Errorf("chrome: building widget: %w", err)
	}
	w.index = idx
	f.widgets[w.id] = w
	f.log.Debug("Widget built", zap.String("id", w.id), zap.Int("slots", len(slots)), zap.Int("index", idx))
	return w, nil
}

// handle routes widget messages to the widget that produced them.
func (f *Factory) handle(m Message) {
	if m.Widget == "" {
		return
	}
	w, ok := f.widgets[m.Widget]
	if !ok {
		return
	}
	switch m.Type {
	case "error":
		f.log.Warn("Page failed to render", zap.String("widget", m.Widget), zap.Int("page", m.Index), zap.String("error", m.Error))
	case "flip":
		w.index = m.Index
		w.sink(flipbook.WidgetEvent{Kind: flipbook.TransitionSettled, Index: m.Index, State: flipbook.Final})
	case "state":
		switch m.State {
		case "user_fold", "flipping":
			if !w.turning {
				w.turning = true
				w.sink(flipbook.WidgetEvent{Kind: flipbook.TransitionStarted, Index: w.target(m.Dir)})
			}
		case "read":
			w.turning = false
			w.pending = -1
			w.index = m.Index
			w.sink(flipbook.WidgetEvent{Kind: flipbook.TransitionSettled, Index: m.Index, State: flipbook.Read})
		}
	}
}

// widget is one StPageFlip instance. Its index is updated from page events
// on the UI goroutine, so reading it needs no browser round trip.
type widget struct {
	id       string
	tab      *Tab
	owner    *Factory
	sink     flipbook.EventSink
	index    int
	turning  bool
	count    int
	portrait bool
	cover    bool
	// pending is the target of the last requested turn, -1 when none
	pending int
}

func (w *widget) CurrentIndex() int { return w.index }

func (w *widget) Next(ctx context.Context) error {
	return w.request(ctx, "next", nil, w.step(1))
}

func (w *widget) Prev(ctx context.Context) error {
	return w.request(ctx, "prev", nil, w.step(-1))
}

func (w *widget) Turn(ctx context.Context, index int) error {
	return w.request(ctx, "flip", index, index)
}

func (w *widget) request(ctx context.Context, method string, arg any, target int) error {
	if !w.turning {
		w.pending = target
	}
	if err := w.call(ctx, method, arg); err != nil {
		w.pending = -1
		return err
	}
	return nil
}

// target resolves where a starting turn is headed: the requested index, or
// one view forward or back for a user gesture on the right or left half.
func (w *widget) target(dir int) int {
	if t := w.pending; t >= 0 {
		w.pending = -1
		return t
	}
	if dir != 0 {
		return w.step(dir)
	}
	return w.index
}

// step returns the index StPageFlip shows after turning one view in dir.
// In landscape it addresses a spread by its left page; with a cover page 0
// stands alone.
func (w *widget) step(dir int) int {
	i := w.index
	switch {
	case w.portrait:
		i += dir
	case w.cover:
		if i > 0 && i%2 == 0 {
			i--
		}
		switch {
		case dir > 0 && i == 0:
			i = 1
		case dir > 0:
			i += 2
		default:
			i = max(i-2, 0)
		}
	default:
		i = i - i%2 + 2*dir
	}
	return min(max(i, 0), max(w.count-1, 0))
}

func (w *widget) call(ctx context.Context, method string, arg any) error {
	var idx int
	if err := w.tab.eval(ctx, &idx, "flipbook.call", w.id, method, arg); err != nil {
		return fmt.Errorf("chrome: %s: %w", method, err)
	}
	if idx < 0 {
		return fmt.Errorf("chrome: widget %s is gone", w.id)
	}
	return nil
}

func (w *widget) Destroy() error {
	delete(w.owner.widgets, w.id)
	if err := w.tab.eval(context.Background(), nil, "flipbook.destroy", w.id); err != nil {
		return fmt.Errorf("chrome: destroying widget: %w", err)
	}
	return nil
}
