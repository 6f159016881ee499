package flipbook

import "fmt"

// PageOrder maps the widget's visual slots to logical page numbers.
//
// The forward slice and its inverse are built together, so lookups in both
// directions are constant time. A PageOrder is immutable.
type PageOrder struct {
	dir   Direction
	cover bool
	pages []int // visual index -> logical page
	index []int // logical page -> visual index, index[0] unused
}

// BuildOrder returns the slot order for a document of n pages.
//
// LTR keeps logical order and always shows slot 0 as a lone cover. RTL
// reverses the order; page 1 then sits in the last slot and must stay
// unpaired, which holds exactly when n is even and slot 0 is a cover.
func BuildOrder(n int, dir Direction) *PageOrder {
	if n < 0 {
		n = 0
	}
	o := &PageOrder{
		dir:   dir,
		cover: dir == LTR || n%2 == 0,
		pages: make([]int, n),
		index: make([]int, n+1),
	}
	for i := range n {
		page := i + 1
		if dir == RTL {
			page = n - i
		}
		o.pages[i] = page
		o.index[page] = i
	}
	return o
}

// Len returns the number of slots, which equals the page count.
func (o *PageOrder) Len() int { return len(o.pages) }

// Direction returns the direction the order was built for.
func (o *PageOrder) Direction() Direction { return o.dir }

// Cover reports whether slot 0 is shown alone.
func (o *PageOrder) Cover() bool { return o.cover }

// Pages returns a copy of the logical page numbers in visual order.
func (o *PageOrder) Pages() []int {
	out := make([]int, len(o.pages))
	copy(out, o.pages)
	return out
}

// PageAt returns the logical page shown in slot i.
func (o *PageOrder) PageAt(i int) (int, bool) {
	if i < 0 || i >= len(o.pages) {
		return 0, false
	}
	return o.pages[i], true
}

// IndexOf returns the slot holding logical page p.
func (o *PageOrder) IndexOf(p int) (int, bool) {
	if p < 1 || p >= len(o.index) {
		return 0, false
	}
	return o.index[p], true
}

// FirstIndex returns the slot of page 1: slot 0 for LTR, the last slot for RTL.
func (o *PageOrder) FirstIndex() int {
	i, _ := o.IndexOf(1)
	return i
}

// LastIndex returns the slot of the final logical page.
func (o *PageOrder) LastIndex() int {
	i, _ := o.IndexOf(len(o.pages))
	return i
}

// ClampIndex pulls i into [0, Len()-1]. An empty order always yields 0.
func (o *PageOrder) ClampIndex(i int) int {
	switch {
	case len(o.pages) == 0 || i < 0:
		return 0
	case i >= len(o.pages):
		return len(o.pages) - 1
	}
	return i
}

// SpreadStart reports whether slot i opens a two-page spread. With a cover,
// spreads start at odd slots; without one, at even slots.
func (o *PageOrder) SpreadStart(i int) bool {
	if i < 0 || i >= len(o.pages) {
		return false
	}
	if o.cover {
		return i > 0 && i%2 == 1
	}
	return i%2 == 0
}

// Partner returns the slot shown next to i in spread mode, if any.
func (o *PageOrder) Partner(i int) (int, bool) {
	switch {
	case o.SpreadStart(i) && i+1 < len(o.pages):
		return i + 1, true
	case i > 0 && o.SpreadStart(i-1):
		return i - 1, true
	}
	return 0, false
}

// Label renders the page counter for slot i, "2-3 / 10" when i is either
// half of a spread and "4 / 10" for a single page.
func (o *PageOrder) Label(i int, mode DisplayMode) string {
	n := len(o.pages)
	page, ok := o.PageAt(i)
	if !ok {
		return fmt.Sprintf("0 / %d", n)
	}
	if j, ok := o.Partner(i); ok && mode == Spread {
		other := o.pages[j]
		return fmt.Sprintf("%d-%d / %d", min(page, other), max(page, other), n)
	}
	return fmt.Sprintf("%d / %d", page, n)
}
