package flipbook

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	nethtml "golang.org/x/net/html"
)

// defaultHTMLPage is the page size used when an HTML source is acquired
// before any viewport is known.
var defaultHTMLPage = Size{Width: 450, Height: 600}

// HTMLOptions controls how an HTML content stream is cut into pages.
type HTMLOptions struct {
	// Padding is the inner margin of every page's content box.
	Padding Padding
	// Covers adds a title page in front and an end page behind the content.
	Covers bool
	// EndTitle is the heading on the end page. Defaults to "The End".
	EndTitle string
	Measurer Measurer
	Log      *zap.Logger
}

// HTMLSource is a reflowable document made of the top-level nodes of an HTML
// content stream. Its pages depend on the page size and font scale, so every
// call to Reflow produces a new [Document].
type HTMLSource struct {
	name  string
	title string
	nodes []string
	opts  HTMLOptions

	paged *Document // default pagination, built on first use
}

// contentRoot selects the element whose children are the content stream.
const contentRoot = "#content-source"

// NewHTMLSource parses r and collects the content nodes: the children of
// #content-source when present, otherwise the children of body. Loose text is
// wrapped in paragraphs; comments and whitespace are dropped.
func NewHTMLSource(name string, r io.Reader, opts HTMLOptions) (*HTMLSource, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	if opts.Measurer == nil {
		opts.Measurer = Estimator{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.EndTitle == "" {
		opts.EndTitle = "The End"
	}

	root := doc.Find(contentRoot).First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	root.Find("script, style").Remove()

	s := &HTMLSource{name: name, opts: opts}
	for _, n := range root.Contents().Nodes {
		switch n.Type {
		case nethtml.ElementNode:
			markup, err := goquery.OuterHtml(goquery.NewDocumentFromNode(n).Selection)
			if err != nil {
				return nil, fmt.Errorf("rendering node <%s>: %w", n.Data, err)
			}
			s.nodes = append(s.nodes, markup)
		case nethtml.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				s.nodes = append(s.nodes, "<p>"+html.EscapeString(text)+"</p>")
			}
		}
	}

	s.title = strings.TrimSpace(doc.Find("title").First().Text())
	if s.title == "" {
		s.title = strings.TrimSpace(root.Find("h1").First().Text())
	}
	if s.title == "" {
		s.title = name
	}
	opts.Log.Debug("Parsed content stream", zap.String("source", name), zap.Int("nodes", len(s.nodes)))
	return s, nil
}

// Title returns the document title.
func (s *HTMLSource) Title() string { return s.title }

// Nodes returns the number of content nodes.
func (s *HTMLSource) Nodes() int { return len(s.nodes) }

// Len implements [Source] using the default page size.
func (s *HTMLSource) Len(ctx context.Context) (int, error) {
	if err := s.ensureDefault(ctx); err != nil {
		return 0, err
	}
	return s.paged.Len(), nil
}

// Page implements [Source] using the default page size.
func (s *HTMLSource) Page(ctx context.Context, n int) (Page, error) {
	if err := s.ensureDefault(ctx); err != nil {
		return Page{}, err
	}
	p, ok := s.paged.Page(n)
	if !ok {
		return Page{}, fmt.Errorf("page %d out of range", n)
	}
	return p, nil
}

func (s *HTMLSource) ensureDefault(ctx context.Context) error {
	if s.paged != nil {
		return nil
	}
	doc, err := s.Reflow(ctx, defaultHTMLPage, 1)
	if err != nil {
		return err
	}
	s.paged = doc
	return nil
}

// Reflow implements [Reflower]: it measures the content at the page's inner
// width and packs it greedily into pages of the inner height.
func (s *HTMLSource) Reflow(ctx context.Context, page Size, fontScale float64) (*Document, error) {
	inner := page.Shrink(s.opts.Padding)
	if inner.Empty() {
		return nil, errors.New("page too small for content")
	}
	boxes, err := s.opts.Measurer.Measure(ctx, s.nodes, inner.Width, fontScale)
	if err != nil {
		return nil, fmt.Errorf("measuring content: %w", err)
	}
	if len(boxes) != len(s.nodes) {
		return nil, fmt.Errorf("measured %d boxes for %d nodes", len(boxes), len(s.nodes))
	}
	groups := Paginate(boxes, float64(inner.Height))

	doc := &Document{Source: s.name, Title: s.title}
	add := func(markup, class string) {
		doc.Pages = append(doc.Pages, Page{
			Number: len(doc.Pages) + 1,
			Width:  page.Width,
			Height: page.Height,
			Asset: Asset{
				Kind:      HTMLAsset,
				MediaType: "text/html",
				Markup:    `<div class="page-content">` + markup + `</div>`,
				Class:     class,
			},
		})
	}

	if s.opts.Covers {
		add(fmt.Sprintf(`<h1>%s</h1><p class="subtitle">%d pages at %d%% font</p>`,
			html.EscapeString(s.title), len(groups), int(math.Round(fontScale*100))), "page-cover")
	}
	for _, g := range groups {
		var b strings.Builder
		for _, i := range g {
			b.WriteString(s.nodes[i])
		}
		add(b.String(), "")
	}
	if s.opts.Covers {
		add("<h1>"+html.EscapeString(s.opts.EndTitle)+"</h1>", "page-cover page-back")
	}

	s.opts.Log.Debug("Paginated content",
		zap.Stringer("page", page), zap.Float64("font", fontScale), zap.Int("pages", doc.Len()))
	return doc, nil
}
