package pdf

import (
	"errors"
	"fmt"
)

// letter is the media box assumed when a page and all its ancestors omit one.
var letter = Rect{0, 0, 612, 792}

// Rect is a rectangle in default user space units (1/72 inch).
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

func (r Rect) normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

func (r Rect) intersect(o Rect) (Rect, bool) {
	out := Rect{max(r.X0, o.X0), max(r.Y0, o.Y0), min(r.X1, o.X1), min(r.Y1, o.Y1)}
	return out, out.X1 > out.X0 && out.Y1 > out.Y0
}

// PageInfo is the geometry of one page.
type PageInfo struct {
	MediaBox Rect
	CropBox  Rect
	Rotation int // clockwise, one of 0, 90, 180, 270
}

// Size returns the displayed size in points: the crop box, with width and
// height swapped for quarter-turn rotations.
func (p PageInfo) Size() (w, h float64) {
	w, h = p.CropBox.Width(), p.CropBox.Height()
	if p.Rotation == 90 || p.Rotation == 270 {
		return h, w
	}
	return w, h
}

// inherited holds the page attributes that pass down the page tree.
type inherited struct {
	media  *Rect
	crop   *Rect
	rotate int
}

// Pages walks the page tree and returns every page's geometry in order.
func (doc *Document) Pages() ([]PageInfo, error) {
	cat, err := doc.Catalog()
	if err != nil {
		return nil, err
	}
	root, err := doc.Resolve(cat["Pages"])
	if err != nil {
		return nil, err
	}
	if root.Kind != Dictionary {
		return nil, errors.New("pdf: page tree root is not a dictionary")
	}
	var pages []PageInfo
	visited := map[*Object]bool{}
	if err := doc.walk(root, inherited{}, visited, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// NumPages returns the page count.
func (doc *Document) NumPages() (int, error) {
	pages, err := doc.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

func (doc *Document) walk(node *Object, attrs inherited, visited map[*Object]bool, out *[]PageInfo) error {
	if visited[node] {
		return errors.New("pdf: cycle in page tree")
	}
	visited[node] = true
	d := node.Dict

	if r, ok := doc.rect(d["MediaBox"]); ok {
		attrs.media = &r
	}
	if r, ok := doc.rect(d["CropBox"]); ok {
		attrs.crop = &r
	}
	if o, err := doc.Resolve(d["Rotate"]); err == nil && o.Kind == Int {
		attrs.rotate = int(o.Int)
	}

	kids, err := doc.Resolve(d["Kids"])
	if err != nil {
		return err
	}
	typ, _ := d.Name("Type")
	if typ == "Page" || (typ != "Pages" && kids.Kind != Array) {
		*out = append(*out, attrs.page())
		return nil
	}
	if kids.Kind != Array {
		return nil
	}
	for i, k := range kids.Array {
		kid, err := doc.Resolve(k)
		if err != nil {
			return fmt.Errorf("pdf: page tree kid %d: %w", i, err)
		}
		if kid.Kind != Dictionary {
			continue
		}
		if err := doc.walk(kid, attrs, visited, out); err != nil {
			return err
		}
	}
	return nil
}

func (a inherited) page() PageInfo {
	media := letter
	if a.media != nil {
		media = *a.media
	}
	crop := media
	if a.crop != nil {
		if r, ok := a.crop.intersect(media); ok {
			crop = r
		}
	}
	rot := a.rotate % 360
	if rot < 0 {
		rot += 360
	}
	if rot%90 != 0 {
		rot = 0
	}
	return PageInfo{MediaBox: media, CropBox: crop, Rotation: rot}
}

func (doc *Document) rect(o *Object) (Rect, bool) {
	arr, err := doc.Resolve(o)
	if err != nil || arr.Kind != Array || len(arr.Array) != 4 {
		return Rect{}, false
	}
	var v [4]float64
	for i, e := range arr.Array {
		e, err := doc.Resolve(e)
		if err != nil {
			return Rect{}, false
		}
		n, ok := e.Number()
		if !ok {
			return Rect{}, false
		}
		v[i] = n
	}
	r := Rect{v[0], v[1], v[2], v[3]}.normalize()
	if r.Width() <= 0 || r.Height() <= 0 {
		return Rect{}, false
	}
	return r, true
}
