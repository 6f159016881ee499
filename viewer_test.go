package flipbook

import (
	"context"
	"errors"
	"math"
	"slices"
	"sort"
	"testing"
	"time"
)

// manualClock is a Scheduler driven by the test.
type manualClock struct {
	now    time.Time
	timers []*manualTimer
	paint  []func()
}

type manualTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) AfterPaint(fn func()) { c.paint = append(c.paint, fn) }

// Advance moves the clock and fires due timers in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	for {
		var due []*manualTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && !t.at.After(c.now) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			return
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		due[0].fired = true
		due[0].fn()
	}
}

// Paint runs the pending after-paint callbacks.
func (c *manualClock) Paint() {
	for len(c.paint) > 0 {
		fn := c.paint[0]
		c.paint = c.paint[1:]
		fn()
	}
}

type fakeWidget struct {
	cfg       WidgetConfig
	slots     []Slot
	sink      EventSink
	index     int
	calls     []string
	destroyed bool
	turnErr   error
}

func (w *fakeWidget) CurrentIndex() int { return w.index }

func (w *fakeWidget) Next(context.Context) error {
	w.calls = append(w.calls, "next")
	w.index = min(w.index+1, len(w.slots)-1)
	return nil
}

func (w *fakeWidget) Prev(context.Context) error {
	w.calls = append(w.calls, "prev")
	w.index = max(w.index-1, 0)
	return nil
}

func (w *fakeWidget) Turn(_ context.Context, i int) error {
	w.calls = append(w.calls, "turn")
	if w.turnErr != nil {
		return w.turnErr
	}
	w.index = i
	return nil
}

func (w *fakeWidget) Destroy() error {
	w.destroyed = true
	return nil
}

func (w *fakeWidget) settle(state TransitionState) {
	w.sink(WidgetEvent{Kind: TransitionSettled, Index: w.index, State: state})
}

type fakeFactory struct {
	built []*fakeWidget
	err   error
}

func (f *fakeFactory) NewWidget(_ context.Context, cfg WidgetConfig, slots []Slot, sink EventSink) (Widget, error) {
	if f.err != nil {
		return nil, f.err
	}
	w := &fakeWidget{cfg: cfg, slots: slots, sink: sink, index: cfg.StartIndex}
	f.built = append(f.built, w)
	return w, nil
}

func (f *fakeFactory) current() *fakeWidget {
	if len(f.built) == 0 {
		return nil
	}
	return f.built[len(f.built)-1]
}

type fakeFeedback struct {
	cues   int
	shared []string
}

func (f *fakeFeedback) Cue(context.Context) error { f.cues++; return nil }

func (f *fakeFeedback) Share(_ context.Context, url string) error {
	f.shared = append(f.shared, url)
	return nil
}

type fakeLocation struct{ pages []int }

func (l *fakeLocation) ReplacePage(_ context.Context, page int) error {
	l.pages = append(l.pages, page)
	return nil
}

func testDoc(n int) *Document {
	doc := &Document{Source: "test", Title: "test"}
	for i := 1; i <= n; i++ {
		doc.Pages = append(doc.Pages, Page{
			Number: i, Width: 600, Height: 800,
			Asset: Asset{Kind: ImageAsset, MediaType: "image/png"},
		})
	}
	return doc
}

var testViewport = Size{Width: 1000, Height: 800}

func newTestViewer(t *testing.T, doc *Document, opts ...Option) (*Viewer, *fakeFactory, *manualClock) {
	t.Helper()
	f := &fakeFactory{}
	c := newManualClock()
	v := NewViewer(doc, f, c, opts...)
	if err := v.Start(context.Background(), testViewport); err != nil {
		t.Fatalf("Start: %v", err)
	}
	c.Paint()
	return v, f, c
}

func TestViewerStart(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(10))
	if len(f.built) != 1 {
		t.Fatalf("built %d widgets, want 1", len(f.built))
	}
	w := f.current()
	if len(w.slots) != 10 {
		t.Errorf("slots = %d, want 10", len(w.slots))
	}
	if w.cfg.Width != 500 || w.cfg.Height != 667 {
		t.Errorf("page = %dx%d, want 500x667", w.cfg.Width, w.cfg.Height)
	}
	if !w.cfg.ShowCover || !w.cfg.CaptureGestures || w.cfg.Portrait {
		t.Errorf("unexpected widget config %+v", w.cfg)
	}
	if v.CurrentPage() != 1 || v.Generation() != 1 {
		t.Errorf("page %d gen %d, want 1 and 1", v.CurrentPage(), v.Generation())
	}
	if !v.Edges().Visible {
		t.Error("edges hidden after first paint")
	}
}

func TestViewerBuildIsDeterministic(t *testing.T) {
	_, f1, _ := newTestViewer(t, testDoc(9), WithDirection(RTL))
	_, f2, _ := newTestViewer(t, testDoc(9), WithDirection(RTL))
	a, b := f1.current(), f2.current()
	if a.cfg != b.cfg {
		t.Errorf("configs differ: %+v vs %+v", a.cfg, b.cfg)
	}
	pa, pb := make([]int, len(a.slots)), make([]int, len(b.slots))
	for i := range a.slots {
		pa[i], pb[i] = a.slots[i].Page, b.slots[i].Page
	}
	if !slices.Equal(pa, pb) {
		t.Errorf("slot pages differ: %v vs %v", pa, pb)
	}
}

func TestViewerGoToRoundTrip(t *testing.T) {
	for _, dir := range []Direction{LTR, RTL} {
		for _, n := range []int{1, 2, 7, 10} {
			v, _, _ := newTestViewer(t, testDoc(n), WithDirection(dir))
			for p := 1; p <= n; p++ {
				if err := v.GoTo(context.Background(), p); err != nil {
					t.Fatalf("GoTo(%d): %v", p, err)
				}
				if got := v.CurrentPage(); got != p {
					t.Errorf("%s n=%d: GoTo(%d) then CurrentPage = %d", dir, n, p, got)
				}
			}
		}
	}
}

func TestViewerGoToClamps(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(6))
	ctx := context.Background()
	_ = v.GoTo(ctx, 99)
	if v.CurrentPage() != 6 {
		t.Errorf("GoTo(99) -> %d, want 6", v.CurrentPage())
	}
	_ = v.GoTo(ctx, -3)
	if v.CurrentPage() != 1 {
		t.Errorf("GoTo(-3) -> %d, want 1", v.CurrentPage())
	}
	calls := len(f.current().calls)
	_ = v.GoTo(ctx, 1)
	if len(f.current().calls) != calls {
		t.Error("GoTo to the current page turned the widget")
	}
}

func TestViewerStartPage(t *testing.T) {
	for _, dir := range []Direction{LTR, RTL} {
		v, _, _ := newTestViewer(t, testDoc(10), WithDirection(dir), WithStartPage(5))
		if v.CurrentPage() != 5 {
			t.Errorf("%s: start page = %d, want 5", dir, v.CurrentPage())
		}
		v, _, _ = newTestViewer(t, testDoc(10), WithDirection(dir), WithStartPage(50))
		if v.CurrentPage() != 1 {
			t.Errorf("%s: out of range start page = %d, want 1", dir, v.CurrentPage())
		}
	}
}

func TestViewerDirectionKeepsPage(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(10))
	_ = v.GoTo(context.Background(), 4)
	old := f.current()

	if err := v.ToggleDirection(); err != nil {
		t.Fatalf("ToggleDirection: %v", err)
	}
	if !old.destroyed {
		t.Error("old widget not destroyed")
	}
	w := f.current()
	if w == old || len(f.built) != 2 {
		t.Fatal("no new widget built")
	}
	if v.Direction() != RTL || w.cfg.Direction != RTL {
		t.Errorf("direction = %s, widget %s", v.Direction(), w.cfg.Direction)
	}
	if v.CurrentPage() != 4 {
		t.Errorf("page after toggle = %d, want 4", v.CurrentPage())
	}
	if p := w.slots[0].Page; p != 10 {
		t.Errorf("RTL slot 0 = page %d, want 10", p)
	}
}

func TestViewerModeKeepsPage(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(10))
	_ = v.GoTo(context.Background(), 7)
	if err := v.ToggleMode(); err != nil {
		t.Fatalf("ToggleMode: %v", err)
	}
	w := f.current()
	if !w.cfg.Portrait || w.cfg.Size != Fixed {
		t.Errorf("single mode config = %+v", w.cfg)
	}
	if w.cfg.Width != 600 || w.cfg.Height != 800 {
		t.Errorf("single page = %dx%d, want 600x800", w.cfg.Width, w.cfg.Height)
	}
	if v.CurrentPage() != 7 {
		t.Errorf("page after toggle = %d, want 7", v.CurrentPage())
	}
}

func TestViewerRTLNextTurnsBackward(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(10), WithDirection(RTL))
	ctx := context.Background()
	if err := v.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if err := v.Prev(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.current().calls; !slices.Equal(got, []string{"prev", "next"}) {
		t.Errorf("widget calls = %v, want [prev next]", got)
	}

	v, f, _ = newTestViewer(t, testDoc(10))
	_ = v.Next(ctx)
	if got := f.current().calls; !slices.Equal(got, []string{"next"}) {
		t.Errorf("LTR widget calls = %v, want [next]", got)
	}
	if v.CurrentPage() != 2 {
		t.Errorf("page after Next = %d, want 2", v.CurrentPage())
	}
}

func TestViewerResizeDebounce(t *testing.T) {
	v, f, c := newTestViewer(t, testDoc(10))
	_ = v.GoTo(context.Background(), 5)

	v.Resize(Size{800, 600})
	c.Advance(100 * time.Millisecond)
	v.Resize(Size{900, 700})
	c.Advance(100 * time.Millisecond)
	v.Resize(Size{1200, 600})
	c.Advance(199 * time.Millisecond)
	if len(f.built) != 1 {
		t.Fatalf("rebuilt during resize burst: %d widgets", len(f.built))
	}
	c.Advance(time.Millisecond)
	if len(f.built) != 2 {
		t.Fatalf("built %d widgets after burst, want 2", len(f.built))
	}
	if got := v.State().Viewport; got != (Size{1200, 600}) {
		t.Errorf("viewport = %v, want last size 1200x600", got)
	}
	if v.CurrentPage() != 5 {
		t.Errorf("page after resize = %d, want 5", v.CurrentPage())
	}
	c.Advance(time.Second)
	if len(f.built) != 2 {
		t.Errorf("extra rebuilds after burst: %d widgets", len(f.built))
	}
}

func TestViewerCueDebounce(t *testing.T) {
	fb := &fakeFeedback{}
	v, f, c := newTestViewer(t, testDoc(10), WithFeedback(fb))
	ctx := context.Background()

	_ = v.Next(ctx)
	_ = v.Next(ctx)
	// the widget reports the turn it just started
	f.current().sink(WidgetEvent{Kind: TransitionStarted, Index: 3})
	if fb.cues != 1 {
		t.Errorf("cues = %d, want 1 inside the debounce window", fb.cues)
	}
	c.Advance(500 * time.Millisecond)
	_ = v.Next(ctx)
	if fb.cues != 2 {
		t.Errorf("cues = %d, want 2 after the window", fb.cues)
	}

	v.SetSound(false)
	c.Advance(time.Second)
	_ = v.Next(ctx)
	if fb.cues != 2 {
		t.Errorf("cue played with sound off")
	}
}

func TestViewerStaleEventsDropped(t *testing.T) {
	f := &fakeFactory{}
	c := newManualClock()
	v := NewViewer(testDoc(10), f, c)
	var states []State
	v.OnChange(func(s State) { states = append(states, s) })

	if err := v.Start(context.Background(), testViewport); err != nil {
		t.Fatal(err)
	}
	old := f.current()
	if err := v.ToggleMode(); err != nil {
		t.Fatal(err)
	}
	c.Paint()
	if len(states) != 1 {
		t.Fatalf("got %d state updates, want 1 (stale geometry ignored)", len(states))
	}
	if states[0].Generation != 2 {
		t.Errorf("update generation = %d, want 2", states[0].Generation)
	}

	old.sink(WidgetEvent{Kind: TransitionSettled, Index: 4, State: Read})
	old.sink(WidgetEvent{Kind: TransitionStarted, Index: 4})
	if len(states) != 1 {
		t.Errorf("events from a destroyed widget changed state")
	}
}

func TestViewerFirstLastFreeze(t *testing.T) {
	v, f, c := newTestViewer(t, testDoc(10))
	ctx := context.Background()

	if err := v.Last(ctx); err != nil {
		t.Fatal(err)
	}
	if !v.Frozen() || v.Edges().Visible {
		t.Fatalf("frozen %t, edges visible %t after Last", v.Frozen(), v.Edges().Visible)
	}
	w := f.current()
	w.settle(Final)
	if !v.Frozen() {
		t.Error("unfrozen by a final event")
	}
	w.settle(Read)
	if v.Frozen() || !v.Edges().Visible {
		t.Errorf("still frozen after read event")
	}
	if v.CurrentPage() != 10 {
		t.Errorf("page after Last = %d, want 10", v.CurrentPage())
	}

	if err := v.First(ctx); err != nil {
		t.Fatal(err)
	}
	if !v.Frozen() {
		t.Fatal("First did not freeze")
	}
	c.Advance(3 * time.Second)
	if v.Frozen() {
		t.Error("freeze did not time out")
	}
}

func TestViewerJumpToPartnerIsNoop(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(9))
	ctx := context.Background()
	// slots 7 and 8 form the last spread
	_ = v.GoTo(ctx, 8)
	calls := len(f.current().calls)
	if err := v.Last(ctx); err != nil {
		t.Fatal(err)
	}
	if len(f.current().calls) != calls || v.Frozen() {
		t.Error("Last turned although its page was already shown")
	}

	_ = v.SetMode(Single)
	calls = len(f.current().calls)
	_ = v.Last(ctx)
	if len(f.current().calls) == calls {
		t.Error("single mode Last did not turn")
	}
}

func TestViewerTurnErrorUnfreezes(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(10))
	f.current().turnErr = errors.New("boom")
	if err := v.Last(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if v.Frozen() {
		t.Error("failed jump left edges frozen")
	}
}

func TestViewerZoomRebuilds(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(10))
	steps := []struct {
		op       func() error
		built    int
		gestures bool
	}{
		{v.ZoomIn, 2, false},
		{v.ZoomIn, 2, false},
		{v.ZoomOut, 2, false},
		{v.ZoomOut, 3, true},
		{v.ZoomOut, 3, true},
		{v.ResetZoom, 3, true},
	}
	for i, s := range steps {
		if err := s.op(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if len(f.built) != s.built {
			t.Fatalf("step %d: built %d widgets, want %d", i, len(f.built), s.built)
		}
		if got := f.current().cfg.CaptureGestures; got != s.gestures {
			t.Errorf("step %d: CaptureGestures = %t, want %t", i, got, s.gestures)
		}
	}
}

func TestViewerZoomHidesEdgesAndPans(t *testing.T) {
	v, _, c := newTestViewer(t, testDoc(10))
	v.Pan(5, 5)
	if s := v.State(); s.PanX != 0 {
		t.Error("pan applied while not zoomed")
	}
	_ = v.ZoomIn()
	c.Paint()
	if v.Edges().Visible {
		t.Error("edges visible while zoomed")
	}
	v.Pan(12, -3)
	if s := v.State(); s.PanX != 12 || s.PanY != -3 {
		t.Errorf("pan = %v,%v, want 12,-3", s.PanX, s.PanY)
	}
}

func TestViewerEmptyDocument(t *testing.T) {
	v, f, _ := newTestViewer(t, nil)
	ctx := context.Background()
	if len(f.built) != 0 {
		t.Errorf("built %d widgets for an empty document", len(f.built))
	}
	for _, op := range []func(context.Context) error{v.Next, v.Prev, v.First, v.Last} {
		if err := op(ctx); err != nil {
			t.Errorf("navigation on empty document: %v", err)
		}
	}
	if err := v.GoTo(ctx, 3); err != nil {
		t.Errorf("GoTo on empty document: %v", err)
	}
	if v.CurrentPage() != 0 || v.Label() != "0 / 0" {
		t.Errorf("page %d label %q, want 0 and 0 / 0", v.CurrentPage(), v.Label())
	}
}

func TestViewerInvalidWidgetIndex(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(10), WithDirection(RTL))
	f.current().index = 42
	if v.CurrentPage() != 1 {
		t.Errorf("CurrentPage with bad index = %d, want 1", v.CurrentPage())
	}
}

func TestViewerBuildError(t *testing.T) {
	f := &fakeFactory{err: errors.New("no widget")}
	v := NewViewer(testDoc(4), f, newManualClock())
	if err := v.Start(context.Background(), testViewport); err == nil {
		t.Fatal("expected build error")
	}
	if v.CurrentPage() != 1 {
		t.Errorf("CurrentPage = %d, want 1", v.CurrentPage())
	}
}

func TestViewerLocation(t *testing.T) {
	loc := &fakeLocation{}
	v, f, _ := newTestViewer(t, testDoc(10), WithLocation(loc))
	_ = v.GoTo(context.Background(), 3)
	f.current().settle(Final)
	if !slices.Contains(loc.pages, 3) {
		t.Errorf("location pages = %v, want 3 recorded", loc.pages)
	}
	n := len(loc.pages)
	f.current().settle(Read)
	if len(loc.pages) != n {
		t.Error("location updated without a page change")
	}
}

func TestViewerShare(t *testing.T) {
	fb := &fakeFeedback{}
	v, _, _ := newTestViewer(t, testDoc(10), WithFeedback(fb), WithShareURL("https://example.com/view?src=book.pdf"))
	_ = v.GoTo(context.Background(), 4)
	want := "https://example.com/view?p=4&src=book.pdf"
	if got := v.ShareURL(); got != want {
		t.Errorf("ShareURL = %q, want %q", got, want)
	}
	v.Share(context.Background())
	if !slices.Equal(fb.shared, []string{want}) {
		t.Errorf("shared = %v", fb.shared)
	}

	v, _, _ = newTestViewer(t, testDoc(3))
	if v.ShareURL() != "" {
		t.Error("ShareURL without base should be empty")
	}
}

// pagedReflower yields 20 pages per unit of font scale.
type pagedReflower struct {
	calls []Size
}

func (r *pagedReflower) Reflow(_ context.Context, page Size, fontScale float64) (*Document, error) {
	r.calls = append(r.calls, page)
	n := int(math.Round(20 * fontScale))
	doc := &Document{Title: "reflowed"}
	for i := 1; i <= n; i++ {
		doc.Pages = append(doc.Pages, Page{
			Number: i, Width: page.Width, Height: page.Height,
			Asset: Asset{Kind: HTMLAsset, Markup: "<p>x</p>"},
		})
	}
	return doc, nil
}

func TestViewerReflow(t *testing.T) {
	r := &pagedReflower{}
	v, f, _ := newTestViewer(t, &Document{}, WithReflow(r, 1), WithAspect(0.75))
	if len(r.calls) != 1 || r.calls[0] != (Size{500, 667}) {
		t.Fatalf("reflow calls = %v, want one at 500x667", r.calls)
	}
	if got := len(f.current().slots); got != 20 {
		t.Fatalf("slots = %d, want 20", got)
	}
	_ = v.GoTo(context.Background(), 10)

	if err := v.FontLarger(); err != nil {
		t.Fatal(err)
	}
	if !almostEqual(v.FontScale(), 1.1, 1e-9) {
		t.Errorf("font scale = %v, want 1.1", v.FontScale())
	}
	if got := len(f.current().slots); got != 22 {
		t.Errorf("slots after larger font = %d, want 22", got)
	}
	if v.CurrentPage() != 10 {
		t.Errorf("page after reflow = %d, want 10", v.CurrentPage())
	}

	_ = v.SetFontScale(0.5)
	if got := len(f.current().slots); got != 10 || v.CurrentPage() != 10 {
		t.Errorf("slots %d page %d after smaller font, want 10 and 10", got, v.CurrentPage())
	}
	_ = v.SetFontScale(9)
	if v.FontScale() != FontMax {
		t.Errorf("font scale = %v, want clamped %v", v.FontScale(), FontMax)
	}
}

func TestViewerReflowOnlyOnLayoutChange(t *testing.T) {
	r := &pagedReflower{}
	v, f, _ := newTestViewer(t, &Document{}, WithReflow(r, 1), WithAspect(0.75))

	if err := v.ToggleDirection(); err != nil {
		t.Fatal(err)
	}
	if err := v.ZoomIn(); err != nil {
		t.Fatal(err)
	}
	if len(f.built) != 3 {
		t.Fatalf("widgets = %d, want 3", len(f.built))
	}
	if len(r.calls) != 1 {
		t.Errorf("reflow calls = %v, want the first only", r.calls)
	}

	if err := v.ToggleMode(); err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 2 {
		t.Errorf("reflow calls after mode change = %v, want 2", r.calls)
	}
	if err := v.SetFontScale(1.5); err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 3 {
		t.Errorf("reflow calls after font change = %v, want 3", r.calls)
	}
}

func TestViewerFontIgnoredWithoutReflow(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(4))
	_ = v.FontLarger()
	if v.FontScale() != 1 || len(f.built) != 1 {
		t.Errorf("font change on fixed document: scale %v, widgets %d", v.FontScale(), len(f.built))
	}
}

func TestViewerBeforeStart(t *testing.T) {
	f := &fakeFactory{}
	v := NewViewer(testDoc(10), f, newManualClock())
	_ = v.SetDirection(RTL)
	_ = v.SetMode(Single)
	if len(f.built) != 0 {
		t.Fatal("built a widget before Start")
	}
	if err := v.Start(context.Background(), testViewport); err != nil {
		t.Fatal(err)
	}
	w := f.current()
	if w.cfg.Direction != RTL || !w.cfg.Portrait {
		t.Errorf("first build ignored earlier settings: %+v", w.cfg)
	}
}

func TestViewerClose(t *testing.T) {
	v, f, _ := newTestViewer(t, testDoc(10))
	w := f.current()
	if err := v.Close(); err != nil {
		t.Fatal(err)
	}
	if !w.destroyed {
		t.Error("widget not destroyed")
	}
	if err := v.Next(context.Background()); err != nil {
		t.Errorf("Next after Close: %v", err)
	}
	if len(w.calls) != 0 {
		t.Error("closed viewer still drives its widget")
	}
}

func TestViewerThumbnails(t *testing.T) {
	v, _, _ := newTestViewer(t, testDoc(5))
	got := v.Thumbnails()
	labels := make([]string, len(got))
	for i, th := range got {
		labels[i] = th.Label
	}
	if want := []string{"1", "2-3", "4-5"}; !slices.Equal(labels, want) {
		t.Errorf("thumbnail labels = %v, want %v", labels, want)
	}
	if !got[0].Current {
		t.Error("cover thumbnail not current")
	}
}
