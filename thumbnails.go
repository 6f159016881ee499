package flipbook

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Thumbnail is one cell of the thumbnail grid. In spread mode a cell holds
// both pages of a spread.
type Thumbnail struct {
	Index   int   // visual slot to turn to
	Pages   []int // logical pages, ascending
	Label   string
	Current bool
}

// Thumbnails lists the grid for order in visual order. Spread mode pairs
// slots by the same parity rule the page label uses.
func Thumbnails(order *PageOrder, mode DisplayMode, current int) []Thumbnail {
	n := order.Len()
	out := make([]Thumbnail, 0, n)
	for i := 0; i < n; i++ {
		p, _ := order.PageAt(i)
		t := Thumbnail{Index: i, Pages: []int{p}}
		if mode == Spread && order.SpreadStart(i) && i+1 < n {
			q, _ := order.PageAt(i + 1)
			t.Pages = []int{min(p, q), max(p, q)}
			t.Current = current == i || current == i+1
			i++
		} else {
			t.Current = current == i
		}
		if len(t.Pages) == 2 {
			t.Label = fmt.Sprintf("%d-%d", t.Pages[0], t.Pages[1])
		} else {
			t.Label = fmt.Sprint(p)
		}
		out = append(out, t)
	}
	return out
}

// RenderThumbnail decodes an image asset and scales it down to fit bound,
// keeping the aspect ratio. Only image assets can be rendered here; PDF and
// HTML pages are rasterised by the browser.
func RenderThumbnail(a Asset, bound Size) (image.Image, error) {
	if a.Kind != ImageAsset {
		return nil, fmt.Errorf("flipbook: cannot render %s asset as thumbnail", a.Kind)
	}
	if bound.Empty() {
		return nil, fmt.Errorf("flipbook: invalid thumbnail size %s", bound)
	}
	img, err := imaging.Decode(bytes.NewReader(a.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("flipbook: decoding thumbnail: %w", err)
	}
	return imaging.Fit(img, bound.Width, bound.Height, imaging.Lanczos), nil
}

// ContactSheet lays out thumbnail images in a grid of cols columns, each cell
// cell pixels large with gap pixels between cells, and writes it as JPEG.
func ContactSheet(w io.Writer, thumbs []image.Image, cols int, cell Size, gap int) error {
	if len(thumbs) == 0 {
		return fmt.Errorf("flipbook: no thumbnails")
	}
	if cols < 1 {
		cols = 1
	}
	rows := (len(thumbs) + cols - 1) / cols
	sheet := imaging.New(
		cols*cell.Width+(cols+1)*gap,
		rows*cell.Height+(rows+1)*gap,
		color.NRGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff})

	for i, img := range thumbs {
		if img == nil {
			continue
		}
		col, row := i%cols, i/cols
		x := gap + col*(cell.Width+gap)
		y := gap + row*(cell.Height+gap)
		b := img.Bounds()
		// centre inside the cell
		x += (cell.Width - b.Dx()) / 2
		y += (cell.Height - b.Dy()) / 2
		sheet = imaging.Paste(sheet, img, image.Pt(x, y))
	}
	return imaging.Encode(w, sheet, imaging.JPEG, imaging.JPEGQuality(85))
}
