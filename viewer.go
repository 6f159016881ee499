package flipbook

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Font scale bounds for reflowable documents.
const (
	FontMin  = 0.5
	FontMax  = 2.5
	FontStep = 0.1
)

// State is a snapshot of everything the toolbar and page chrome display.
type State struct {
	Generation uint64
	Pages      int
	Page       int
	Index      int
	Label      string
	Direction  Direction
	Mode       DisplayMode
	PageSize   Size
	Viewport   Size
	Cover      bool
	Scale      float64
	PanX       float64
	PanY       float64
	Edges      EdgeState
	Frozen     bool
	Sound      bool
	FontScale  float64
}

// Presenter draws a State: page counter, edge markers, zoom transform.
type Presenter interface {
	Present(ctx context.Context, s State) error
}

// Viewer is the navigation controller. It owns the session state (direction,
// display mode, zoom, viewport, page order) and the current widget, and
// applies every layout-affecting change by rebuilding the widget from
// scratch. A Viewer is not safe for concurrent use; drive it from one
// goroutine, normally a [Loop].
type Viewer struct {
	cfg     viewerConfig
	log     *zap.Logger
	sched   Scheduler
	widgets WidgetFactory

	ctx      context.Context
	doc      *Document
	dir      Direction
	mode     DisplayMode
	viewport Size
	zoom     Zoom
	font     float64
	sound    bool

	plan    BuildPlan
	widget  Widget
	gen     uint64
	started bool

	// page size and font scale of the last successful reflow
	flowPage Size
	flowFont float64

	frozen    bool
	freezeSeq uint64
	edges     EdgeState
	lastCue   time.Time
	lastPage  int

	resize    Timer
	resizeSeq uint64

	observers []func(State)
}

// NewViewer creates a viewer for doc. Nothing is built until [Viewer.Start].
func NewViewer(doc *Document, widgets WidgetFactory, sched Scheduler, opts ...Option) *Viewer {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if doc == nil {
		doc = &Document{}
	}
	v := &Viewer{
		cfg:     cfg,
		log:     cfg.log,
		sched:   sched,
		widgets: widgets,
		ctx:     context.Background(),
		doc:     doc,
		dir:     cfg.direction,
		mode:    cfg.mode,
		zoom:    NewZoom(cfg.zoom),
		font:    cfg.fontScale,
		sound:   cfg.sound,
	}
	v.plan = Plan(v.planInput(0))
	return v
}

// OnChange registers fn to receive a State after every update.
func (v *Viewer) OnChange(fn func(State)) {
	v.observers = append(v.observers, fn)
}

// Start builds the first widget for the given viewport. ctx is used for
// widget and side-channel calls made from event callbacks later on.
func (v *Viewer) Start(ctx context.Context, viewport Size) error {
	v.ctx = ctx
	v.viewport = viewport
	v.started = true
	return v.rebuild(v.cfg.startPage)
}

// Close destroys the current widget and cancels pending timers.
func (v *Viewer) Close() error {
	if v.resize != nil {
		v.resize.Stop()
		v.resize = nil
	}
	v.gen++
	v.started = false
	if v.widget == nil {
		return nil
	}
	w := v.widget
	v.widget = nil
	if err := w.Destroy(); err != nil {
		return fmt.Errorf("flipbook: destroying widget: %w", err)
	}
	return nil
}

// Document returns the document currently shown.
func (v *Viewer) Document() *Document { return v.doc }

// Order returns the page order of the current build.
func (v *Viewer) Order() *PageOrder { return v.plan.Order }

// PageSize returns the fitted size of one page in the current build.
func (v *Viewer) PageSize() Size { return v.plan.Page }

// Direction returns the reading direction.
func (v *Viewer) Direction() Direction { return v.dir }

// Mode returns the display mode.
func (v *Viewer) Mode() DisplayMode { return v.mode }

// Zoom returns a copy of the zoom transform.
func (v *Viewer) Zoom() Zoom { return v.zoom }

// Generation counts rebuilds; it changes every time the widget is replaced.
func (v *Viewer) Generation() uint64 { return v.gen }

// Edges returns the read-edge markers as last computed.
func (v *Viewer) Edges() EdgeState { return v.edges }

// Frozen reports whether edge updates are suspended by a first/last jump.
func (v *Viewer) Frozen() bool { return v.frozen }

func (v *Viewer) planInput(resume int) PlanInput {
	return PlanInput{
		Pages:        v.doc.Len(),
		Natural:      v.doc.NaturalSize(),
		Aspect:       v.cfg.aspect,
		Viewport:     v.viewport,
		Padding:      v.cfg.padding,
		Direction:    v.dir,
		Mode:         v.mode,
		Resume:       resume,
		Zoomed:       v.zoom.Zoomed(),
		Shadow:       v.cfg.shadow,
		FlippingTime: v.cfg.flippingTime,
	}
}

// rebuild discards the current widget and constructs a new one from the
// session state, reopening at logical page resume.
func (v *Viewer) rebuild(resume int) error {
	if v.widget != nil {
		if err := v.widget.Destroy(); err != nil {
			v.log.Debug("Unable to destroy widget", zap.Error(err))
		}
		v.widget = nil
	}
	v.gen++
	gen := v.gen
	v.frozen = false

	if v.cfg.reflower != nil {
		if err := v.reflow(); err != nil {
			return err
		}
		resume = min(resume, v.doc.Len())
	}

	v.plan = Plan(v.planInput(resume))
	v.log.Debug("Building book",
		zap.Uint64("gen", gen),
		zap.Int("pages", v.plan.Order.Len()),
		zap.Stringer("direction", v.dir),
		zap.Stringer("mode", v.mode),
		zap.Stringer("page", v.plan.Page),
		zap.Int("start", v.plan.Config.StartIndex),
		zap.Bool("gestures", v.plan.Config.CaptureGestures))

	if v.plan.Order.Len() == 0 {
		v.log.Info("Document is empty, navigation disabled")
		v.refresh()
		return nil
	}

	w, err := v.widgets.NewWidget(v.ctx, v.plan.Config, v.plan.Slots(v.doc), v.sink(gen))
	if err != nil {
		v.refresh()
		return fmt.Errorf("flipbook: building widget: %w", err)
	}
	// a widget may have emitted events for a newer build while constructing
	if gen != v.gen {
		_ = w.Destroy()
		return nil
	}
	v.widget = w
	v.sched.AfterPaint(func() {
		v.dispatch(event{kind: geometryDirty, gen: gen})
	})
	return nil
}

func (v *Viewer) reflow() error {
	aspect := v.cfg.aspect
	if aspect <= 0 {
		aspect = v.doc.NaturalSize().Aspect()
	}
	page := Fit(Size{}, aspect, v.viewport.Shrink(v.cfg.padding), v.mode)
	if page.Empty() || (page == v.flowPage && v.font == v.flowFont) {
		return nil
	}
	doc, err := v.cfg.reflower.Reflow(v.ctx, page, v.font)
	if err != nil {
		if v.doc.Len() == 0 {
			return fmt.Errorf("flipbook: paginating: %w", err)
		}
		v.log.Warn("Unable to paginate, keeping previous pages", zap.Error(err))
		return nil
	}
	v.doc = doc
	v.flowPage, v.flowFont = page, v.font
	return nil
}

// currentIndex returns the widget's index, falling back to the slot of
// page 1 when the widget reports something out of range.
func (v *Viewer) currentIndex() int {
	o := v.plan.Order
	if v.widget == nil || o.Len() == 0 {
		return o.FirstIndex()
	}
	i := v.widget.CurrentIndex()
	if _, ok := o.PageAt(i); !ok {
		v.log.Debug("Widget index out of range", zap.Int("index", i), zap.Int("pages", o.Len()))
		return o.FirstIndex()
	}
	return i
}

// CurrentPage returns the logical page in the widget's current slot. It is 1
// when the widget reports an invalid index and 0 for an empty document.
func (v *Viewer) CurrentPage() int {
	if v.plan.Order.Len() == 0 {
		return 0
	}
	p, ok := v.plan.Order.PageAt(v.currentIndex())
	if !ok {
		return 1
	}
	return p
}

// Label returns the page counter text for the current slot.
func (v *Viewer) Label() string {
	return v.plan.Order.Label(v.currentIndex(), v.mode)
}

// Next turns to what the reader expects next. Under RTL that is the widget's
// backward turn, because the slot order is mirrored.
func (v *Viewer) Next(ctx context.Context) error {
	if v.widget == nil {
		return nil
	}
	v.dispatch(event{kind: transitionRequested, gen: v.gen, cue: true})
	if v.dir == RTL {
		return v.widget.Prev(ctx)
	}
	return v.widget.Next(ctx)
}

// Prev turns back one step in reading order.
func (v *Viewer) Prev(ctx context.Context) error {
	if v.widget == nil {
		return nil
	}
	v.dispatch(event{kind: transitionRequested, gen: v.gen, cue: true})
	if v.dir == RTL {
		return v.widget.Next(ctx)
	}
	return v.widget.Prev(ctx)
}

// First jumps straight to page 1.
func (v *Viewer) First(ctx context.Context) error {
	return v.jump(ctx, v.plan.Order.FirstIndex())
}

// Last jumps straight to the final page.
func (v *Viewer) Last(ctx context.Context) error {
	return v.jump(ctx, v.plan.Order.LastIndex())
}

// jump performs one direct transition to a boundary slot. Edge updates stay
// frozen until the widget reports it has settled.
func (v *Viewer) jump(ctx context.Context, target int) error {
	if v.widget == nil {
		return nil
	}
	cur := v.currentIndex()
	if cur == target {
		return nil
	}
	if p, ok := v.plan.Order.Partner(target); ok && p == cur && v.mode == Spread {
		return nil
	}
	v.dispatch(event{kind: transitionRequested, gen: v.gen, freeze: true, cue: true})
	if err := v.widget.Turn(ctx, target); err != nil {
		v.frozen = false
		v.refresh()
		return fmt.Errorf("flipbook: turning to %d: %w", target, err)
	}
	return nil
}

// GoTo turns to logical page n, clamped into the document.
func (v *Viewer) GoTo(ctx context.Context, n int) error {
	if v.widget == nil {
		return nil
	}
	o := v.plan.Order
	n = min(max(n, 1), o.Len())
	target, _ := o.IndexOf(n)
	if target == v.currentIndex() {
		return nil
	}
	v.dispatch(event{kind: transitionRequested, gen: v.gen, cue: true})
	if err := v.widget.Turn(ctx, target); err != nil {
		return fmt.Errorf("flipbook: turning to page %d: %w", n, err)
	}
	return nil
}

// SetDirection switches the reading direction, keeping the current page.
func (v *Viewer) SetDirection(d Direction) error {
	if d == v.dir {
		return nil
	}
	page := v.CurrentPage()
	v.dir = d
	v.zoom.Reset()
	return v.restart(page)
}

// ToggleDirection flips between LTR and RTL.
func (v *Viewer) ToggleDirection() error {
	return v.SetDirection(v.dir.Toggle())
}

// SetMode switches between spread and single page display.
func (v *Viewer) SetMode(m DisplayMode) error {
	if m == v.mode {
		return nil
	}
	page := v.CurrentPage()
	v.mode = m
	v.zoom.Reset()
	return v.restart(page)
}

// ToggleMode flips the display mode.
func (v *Viewer) ToggleMode() error {
	return v.SetMode(v.mode.Toggle())
}

// Resize records a new viewport. Bursts are collapsed: only the last size
// within the debounce window triggers a rebuild.
func (v *Viewer) Resize(size Size) {
	v.resizeSeq++
	seq := v.resizeSeq
	if v.resize != nil {
		v.resize.Stop()
	}
	v.resize = v.sched.AfterFunc(v.cfg.resizeDebounce, func() {
		if seq != v.resizeSeq {
			return
		}
		v.resize = nil
		if err := v.applyResize(size); err != nil {
			v.log.Error("Unable to rebuild after resize", zap.Stringer("viewport", size), zap.Error(err))
		}
	})
}

func (v *Viewer) applyResize(size Size) error {
	page := v.CurrentPage()
	v.viewport = size
	v.zoom.Reset()
	return v.restart(page)
}

// ZoomIn raises the scale by one step. Entering the zoomed state rebuilds
// the widget with drag gestures released for panning.
func (v *Viewer) ZoomIn() error {
	return v.applyZoom(v.zoom.In())
}

// ZoomOut lowers the scale by one step.
func (v *Viewer) ZoomOut() error {
	return v.applyZoom(v.zoom.Out())
}

// ResetZoom restores scale 1 and clears the pan offset.
func (v *Viewer) ResetZoom() error {
	return v.applyZoom(v.zoom.Reset())
}

func (v *Viewer) applyZoom(crossed bool) error {
	if crossed {
		return v.restart(v.CurrentPage())
	}
	v.refresh()
	return nil
}

// Pan moves a zoomed view by a pointer delta. It is ignored when not zoomed.
func (v *Viewer) Pan(dx, dy float64) {
	if v.zoom.Pan(dx, dy) {
		v.refresh()
	}
}

// FontScale returns the font scale used to paginate reflowable documents.
func (v *Viewer) FontScale() float64 { return v.font }

// SetFontScale re-paginates a reflowable document at a new font scale.
func (v *Viewer) SetFontScale(scale float64) error {
	scale = min(max(math.Round(scale*10)/10, FontMin), FontMax)
	if v.cfg.reflower == nil || scale == v.font {
		return nil
	}
	page := v.CurrentPage()
	v.font = scale
	return v.restart(page)
}

// FontLarger raises the font scale by one step.
func (v *Viewer) FontLarger() error { return v.SetFontScale(v.font + FontStep) }

// FontSmaller lowers the font scale by one step.
func (v *Viewer) FontSmaller() error { return v.SetFontScale(v.font - FontStep) }

// SetSound enables or disables the page turn cue.
func (v *Viewer) SetSound(on bool) {
	v.sound = on
	v.refresh()
}

// Sound reports whether the page turn cue is enabled.
func (v *Viewer) Sound() bool { return v.sound }

// ShareURL returns the share base URL with the current page set, or "" when
// no share URL is configured.
func (v *Viewer) ShareURL() string {
	if v.cfg.shareURL == "" {
		return ""
	}
	u, err := url.Parse(v.cfg.shareURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("p", strconv.Itoa(v.CurrentPage()))
	u.RawQuery = q.Encode()
	return u.String()
}

// Share publishes the current view. Failures are logged and dropped.
func (v *Viewer) Share(ctx context.Context) {
	link := v.ShareURL()
	if v.cfg.feedback == nil || link == "" {
		return
	}
	if err := v.cfg.feedback.Share(ctx, link); err != nil {
		v.log.Debug("Share failed", zap.String("url", link), zap.Error(err))
	}
}

// Thumbnails returns the thumbnail grid for the current build.
func (v *Viewer) Thumbnails() []Thumbnail {
	return Thumbnails(v.plan.Order, v.mode, v.currentIndex())
}

// restart rebuilds only when started; before Start the new state is simply
// picked up by the first build.
func (v *Viewer) restart(page int) error {
	if !v.started {
		v.plan = Plan(v.planInput(page))
		return nil
	}
	return v.rebuild(page)
}

func (v *Viewer) freeze() {
	v.frozen = true
	v.freezeSeq++
	seq, gen := v.freezeSeq, v.gen
	if v.cfg.freezeTimeout > 0 {
		v.sched.AfterFunc(v.cfg.freezeTimeout, func() {
			if gen != v.gen || seq != v.freezeSeq || !v.frozen {
				return
			}
			v.log.Warn("Widget did not settle, resuming edge updates")
			v.frozen = false
			v.refresh()
		})
	}
	v.refresh()
}

func (v *Viewer) cue() {
	if !v.sound || v.cfg.feedback == nil {
		return
	}
	now := v.sched.Now()
	if !v.lastCue.IsZero() && now.Sub(v.lastCue) < v.cfg.cueDebounce {
		return
	}
	v.lastCue = now
	if err := v.cfg.feedback.Cue(v.ctx); err != nil {
		v.log.Debug("Cue failed", zap.Error(err))
	}
}

// refresh recomputes the derived display state and publishes it.
func (v *Viewer) refresh() {
	idx := v.currentIndex()
	v.edges = Edges(idx, v.plan.Order.Len(), v.dir, v.cfg.edge)
	if v.frozen || v.zoom.Zoomed() {
		v.edges.Visible = false
	}

	page := v.CurrentPage()
	if v.cfg.location != nil && page > 0 && page != v.lastPage {
		if err := v.cfg.location.ReplacePage(v.ctx, page); err != nil {
			v.log.Debug("Unable to update location", zap.Int("page", page), zap.Error(err))
		}
	}
	v.lastPage = page

	s := v.State()
	if v.cfg.presenter != nil {
		if err := v.cfg.presenter.Present(v.ctx, s); err != nil {
			v.log.Debug("Unable to present state", zap.Error(err))
		}
	}
	for _, fn := range v.observers {
		fn(s)
	}
}

// State returns a snapshot of the display state.
func (v *Viewer) State() State {
	x, y := v.zoom.Offset()
	return State{
		Generation: v.gen,
		Pages:      v.plan.Order.Len(),
		Page:       v.CurrentPage(),
		Index:      v.currentIndex(),
		Label:      v.Label(),
		Direction:  v.dir,
		Mode:       v.mode,
		PageSize:   v.plan.Page,
		Viewport:   v.viewport,
		Cover:      v.plan.Order.Cover(),
		Scale:      v.zoom.Scale(),
		PanX:       x,
		PanY:       y,
		Edges:      v.edges,
		Frozen:     v.frozen,
		Sound:      v.sound,
		FontScale:  v.font,
	}
}
