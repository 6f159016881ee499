package flipbook

import (
	"context"
	"fmt"
	"math"

	"github.com/porticus-lab/go-flipbook/pdf"
)

// RenderScale is the factor applied to PDF point sizes to get page pixels.
const RenderScale = 1.5

// PDFSource yields the pages of a PDF file. Pages carry a reference to the
// file; rasterisation happens in the widget page.
type PDFSource struct {
	path  string
	url   string
	title string
	scale float64
	pages []pdf.PageInfo
}

// NewPDFSource loads the page tree of the PDF at path. url is the location
// the widget page fetches the file from; it defaults to path.
func NewPDFSource(path, url string, scale float64) (*PDFSource, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	pages, err := doc.Pages()
	if err != nil {
		return nil, fmt.Errorf("reading page tree: %w", err)
	}
	if url == "" {
		url = path
	}
	if scale <= 0 {
		scale = RenderScale
	}
	return &PDFSource{path: path, url: url, title: doc.Title(), scale: scale, pages: pages}, nil
}

// Title returns the document title from the PDF info dictionary.
func (s *PDFSource) Title() string { return s.title }

// Len implements [Source].
func (s *PDFSource) Len(context.Context) (int, error) { return len(s.pages), nil }

// Page implements [Source].
func (s *PDFSource) Page(_ context.Context, n int) (Page, error) {
	if n < 1 || n > len(s.pages) {
		return Page{}, fmt.Errorf("page %d out of range", n)
	}
	w, h := s.pages[n-1].Size()
	return Page{
		Number: n,
		Width:  int(math.Round(w * s.scale)),
		Height: int(math.Round(h * s.scale)),
		Asset: Asset{
			Kind:      PDFAsset,
			MediaType: "application/pdf",
			Source:    s.url,
			Index:     n - 1,
		},
	}, nil
}
