package chrome

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"text/template"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	flipbook "github.com/porticus-lab/go-flipbook"
)

// binding is the page-side function that forwards messages to Go.
const binding = "flipbookEmit"

//go:embed shell.html
var shellHTML string

var shell = template.Must(template.New("shell").Parse(shellHTML))

// Poster hands work to the viewer's UI goroutine. [flipbook.Loop] implements it.
type Poster interface {
	Post(fn func()) bool
}

// Message is one notification sent by the page.
type Message struct {
	Type   string  `json:"type"`
	Widget string  `json:"widget,omitempty"`
	Index  int     `json:"index"`
	State  string  `json:"state,omitempty"`
	Key    string  `json:"key,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Dir    int     `json:"dir,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Tab is one browser tab running the viewer page. Messages from the page are
// decoded on the DevTools event goroutine and handed to subscribers through
// the Poster, so subscribers run on the UI goroutine.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    browserConfig
	post   Poster
	log    *zap.Logger
	file   string

	mu   sync.Mutex
	subs []func(Message)
}

// OpenTab opens a tab, installs the message binding and loads the viewer page.
func (b *Browser) OpenTab(ctx context.Context, title string, post Poster) (*Tab, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "flipbook-*.html")
	if err != nil {
		return nil, fmt.Errorf("chrome: creating temp file: %w", err)
	}
	name := f.Name()
	err = shell.Execute(f, map[string]string{
		"Title":       html.EscapeString(title),
		"PageFlipURL": b.cfg.pageFlipURL,
		"PDFJSURL":    b.cfg.pdfjsURL,
		"Binding":     binding,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(name)
		return nil, fmt.Errorf("chrome: writing viewer page: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		os.Remove(name)
		return nil, fmt.Errorf("chrome: resolving path: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	t := &Tab{ctx: tabCtx, cancel: tabCancel, cfg: b.cfg, post: post, log: b.cfg.log, file: name}
	chromedp.ListenTarget(tabCtx, t.listen)

	if err := t.run(ctx,
		runtime.AddBinding(binding),
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("#book-area", chromedp.ByQuery),
	); err != nil {
		t.Close()
		return nil, fmt.Errorf("chrome: loading viewer page: %w", err)
	}
	return t, nil
}

// Close closes the tab and removes the page file.
func (t *Tab) Close() error {
	t.cancel()
	if err := os.Remove(t.file); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("chrome: removing viewer page: %w", err)
	}
	return nil
}

// Subscribe registers fn for every message sent by the page.
func (t *Tab) Subscribe(fn func(Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

func (t *Tab) listen(ev any) {
	called, ok := ev.(*runtime.EventBindingCalled)
	if !ok || called.Name != binding {
		return
	}
	var m Message
	if err := json.Unmarshal([]byte(called.Payload), &m); err != nil {
		t.log.Debug("Malformed page message", zap.String("payload", called.Payload), zap.Error(err))
		return
	}
	t.mu.Lock()
	subs := slices.Clone(t.subs)
	t.mu.Unlock()
	t.post.Post(func() {
		for _, fn := range subs {
			fn(m)
		}
	})
}

// run executes actions in the tab. The caller's ctx bounds the call together
// with the configured timeout; the tab's own lifetime is not affected.
func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	if t.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.timeout)
		defer cancel()
	}
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(t.ctx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// eval calls a page function with JSON-encoded arguments and decodes its
// result into res, which may be nil.
func (t *Tab) eval(ctx context.Context, res any, fn string, args ...any) error {
	parts := make([]string, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encoding argument %d of %s: %w", i, fn, err)
		}
		parts[i] = string(b)
	}
	expr := fmt.Sprintf("%s(%s)", fn, strings.Join(parts, ","))
	return t.run(ctx, chromedp.Evaluate(expr, res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
}

// Viewport returns the size of the book area in CSS pixels.
func (t *Tab) Viewport(ctx context.Context) (flipbook.Size, error) {
	var s flipbook.Size
	if err := t.eval(ctx, &s, "flipbook.viewport"); err != nil {
		return flipbook.Size{}, fmt.Errorf("chrome: reading viewport: %w", err)
	}
	return s, nil
}

// SetWindowSize overrides the page's layout viewport, which fires the page's
// resize handler. Used to drive headless sessions.
func (t *Tab) SetWindowSize(ctx context.Context, width, height int) error {
	err := t.run(ctx, emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false))
	if err != nil {
		return fmt.Errorf("chrome: resizing window: %w", err)
	}
	return nil
}

// Screenshot captures the visible page as PNG.
func (t *Tab) Screenshot(ctx context.Context) (*Result, error) {
	var buf []byte
	err := t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("chrome: capturing screenshot: %w", err)
	}
	return &Result{data: buf, mediaType: "image/png"}, nil
}
