package flipbook

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Box is the vertical extent of one laid-out content node, in pixels from the
// top of a single continuous column.
type Box struct {
	Top    float64
	Bottom float64
}

// Height returns the box height.
func (b Box) Height() float64 { return b.Bottom - b.Top }

// Measurer lays out content nodes in one column of the given width and
// reports where each node ends up.
type Measurer interface {
	Measure(ctx context.Context, nodes []string, width int, fontScale float64) ([]Box, error)
}

// Paginate packs consecutive boxes into pages of the given height and returns
// the node indexes on each page. A node is added to the current page while the
// page still fits; the first node that overflows starts a new page. A node
// taller than a whole page is placed on a page of its own.
func Paginate(boxes []Box, height float64) [][]int {
	var pages [][]int
	var cur []int
	var top float64
	for i, b := range boxes {
		if len(cur) == 0 {
			top = b.Top
		}
		if b.Bottom-top <= height {
			cur = append(cur, i)
			continue
		}
		if len(cur) > 0 {
			pages = append(pages, cur)
		}
		cur, top = []int{i}, b.Top
		if b.Height() > height {
			pages = append(pages, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		pages = append(pages, cur)
	}
	return pages
}

// Estimator is a Measurer that approximates layout from text length and a
// few element hints. It needs no browser and is used when none is available.
type Estimator struct {
	FontSize   float64 // base font size in px, default 16
	LineHeight float64 // multiple of the font size, default 1.5
	CharWidth  float64 // average glyph width as a fraction of the font size, default 0.5
}

func (e Estimator) resolved() Estimator {
	if e.FontSize <= 0 {
		e.FontSize = 16
	}
	if e.LineHeight <= 0 {
		e.LineHeight = 1.5
	}
	if e.CharWidth <= 0 {
		e.CharWidth = 0.5
	}
	return e
}

var headingScale = map[string]float64{
	"h1": 2, "h2": 1.5, "h3": 1.17, "h4": 1, "h5": 0.83, "h6": 0.67,
}

// Measure implements [Measurer].
func (e Estimator) Measure(ctx context.Context, nodes []string, width int, fontScale float64) ([]Box, error) {
	e = e.resolved()
	if fontScale <= 0 {
		fontScale = 1
	}
	boxes := make([]Box, len(nodes))
	var y float64
	for i, markup := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := e.height(markup, float64(width), fontScale)
		if err != nil {
			return nil, err
		}
		boxes[i] = Box{Top: y, Bottom: y + h}
		y += h
	}
	return boxes, nil
}

func (e Estimator) height(markup string, width, fontScale float64) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return 0, err
	}
	root := doc.Find("body").Children().First()
	tag := goquery.NodeName(root)

	if tag == "img" || tag == "figure" {
		img := root
		if tag == "figure" {
			img = root.Find("img").First()
		}
		if h, ok := imageHeight(img, width); ok {
			return h, nil
		}
	}
	if tag == "hr" {
		return e.FontSize * fontScale, nil
	}

	size := e.FontSize * fontScale
	if s, ok := headingScale[tag]; ok {
		size *= s
	}
	text := strings.Join(strings.Fields(root.Text()), " ")
	perLine := math.Max(math.Floor(width/(size*e.CharWidth)), 1)
	lines := math.Max(math.Ceil(float64(len([]rune(text)))/perLine), 1)
	// paragraph margins of one line above and below collapse to one
	return (lines + 1) * size * e.LineHeight, nil
}

// imageHeight scales declared image dimensions to the column width.
func imageHeight(img *goquery.Selection, width float64) (float64, bool) {
	w, errW := strconv.ParseFloat(img.AttrOr("width", ""), 64)
	h, errH := strconv.ParseFloat(img.AttrOr("height", ""), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, false
	}
	if w > width {
		h = h * width / w
	}
	return h, true
}
