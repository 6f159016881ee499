package flipbook

import (
	"context"
	"errors"
	"fmt"
)

// AssetKind identifies how a page is rendered by the widget page.
type AssetKind int

const (
	// ImageAsset carries encoded image bytes.
	ImageAsset AssetKind = iota
	// HTMLAsset carries a DOM fragment as markup.
	HTMLAsset
	// PDFAsset references one page of a PDF file, rasterised in the browser.
	PDFAsset
)

func (k AssetKind) String() string {
	switch k {
	case HTMLAsset:
		return "html"
	case PDFAsset:
		return "pdf"
	}
	return "image"
}

// Asset is the renderable content of one page.
type Asset struct {
	Kind      AssetKind
	MediaType string
	Data      []byte // ImageAsset
	Markup    string // HTMLAsset
	Source    string // PDFAsset: document location
	Index     int    // PDFAsset: zero-based page index
	Class     string // extra CSS class for the page element, e.g. "page-cover"
}

// Page is one logical page with its natural size in pixels. Only page 1's
// size drives the layout; all pages are assumed to share its aspect ratio.
type Page struct {
	Number int
	Width  int
	Height int
	Asset  Asset
}

// Size returns the natural size of the page.
func (p Page) Size() Size { return Size{Width: p.Width, Height: p.Height} }

// Document is an ordered, immutable sequence of pages numbered from 1.
type Document struct {
	Source string
	Title  string
	Pages  []Page
}

// Len returns the page count. A nil document has no pages.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Page returns logical page n.
func (d *Document) Page(n int) (Page, bool) {
	if n < 1 || n > d.Len() {
		return Page{}, false
	}
	return d.Pages[n-1], true
}

// NaturalSize returns the size of page 1.
func (d *Document) NaturalSize() Size {
	if p, ok := d.Page(1); ok {
		return p.Size()
	}
	return Size{}
}

// Source yields the pages of one document. Page numbers are 1-based.
type Source interface {
	Len(ctx context.Context) (int, error)
	Page(ctx context.Context, n int) (Page, error)
}

// Reflower re-paginates reflowable content (an HTML stream) for a page size
// and font scale, returning a new immutable document.
type Reflower interface {
	Reflow(ctx context.Context, page Size, fontScale float64) (*Document, error)
}

// Progress is called after each page has been acquired.
type Progress func(done, total int)

// Acquire loads every page from src, one at a time and in order, so progress
// is reported monotonically. Any failure aborts the whole acquisition and is
// reported as ErrAcquisition; no partial document is returned.
func Acquire(ctx context.Context, name string, src Source, progress Progress) (*Document, error) {
	n, err := src.Len(ctx)
	if err != nil {
		return nil, acquisitionError(name, err)
	}
	doc := &Document{Source: name, Title: name, Pages: make([]Page, 0, n)}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, acquisitionError(name, err)
		}
		page, err := src.Page(ctx, i)
		if err != nil {
			return nil, acquisitionError(name, fmt.Errorf("page %d: %w", i, err))
		}
		page.Number = i
		doc.Pages = append(doc.Pages, page)
		if progress != nil {
			progress(i, n)
		}
	}
	if t, ok := src.(interface{ Title() string }); ok && t.Title() != "" {
		doc.Title = t.Title()
	}
	return doc, nil
}

func acquisitionError(name string, err error) error {
	if errors.Is(err, ErrAcquisition) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrAcquisition, name, err)
}
