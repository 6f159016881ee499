package flipbook

import (
	"fmt"
	"math"
	"strings"
)

// Size is a width and height in whole device pixels.
type Size struct {
	Width  int
	Height int
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Aspect returns width / height, or 0 for an empty size.
func (s Size) Aspect() float64 {
	if s.Empty() {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// Shrink returns s reduced by the given padding on every side.
func (s Size) Shrink(p Padding) Size {
	return Size{
		Width:  max(s.Width-p.Left-p.Right, 0),
		Height: max(s.Height-p.Top-p.Bottom, 0),
	}
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Padding is the inner padding of the container the widget mounts into.
type Padding struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// UniformPadding returns a Padding with the same value on all sides.
func UniformPadding(px int) Padding {
	return Padding{Top: px, Right: px, Bottom: px, Left: px}
}

// Direction is the reading direction. It changes the order in which logical
// pages are assigned to visual slots, never the document itself.
type Direction int

const (
	// LTR assigns page 1 to the first visual slot.
	LTR Direction = iota
	// RTL mirrors the order, page 1 lands in the last visual slot.
	RTL
)

func (d Direction) String() string {
	if d == RTL {
		return "rtl"
	}
	return "ltr"
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == RTL {
		return LTR
	}
	return RTL
}

// ParseDirection parses "ltr" or "rtl" (case insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ltr":
		return LTR, nil
	case "rtl":
		return RTL, nil
	}
	return LTR, fmt.Errorf("flipbook: unknown direction %q", s)
}

// DisplayMode selects between two-page spreads and one page at a time.
type DisplayMode int

const (
	// Spread shows two pages side by side, stretched to the container.
	Spread DisplayMode = iota
	// Single shows one page at a fixed size.
	Single
)

func (m DisplayMode) String() string {
	if m == Single {
		return "single"
	}
	return "spread"
}

// Toggle returns the other display mode.
func (m DisplayMode) Toggle() DisplayMode {
	if m == Single {
		return Spread
	}
	return Single
}

// ParseDisplayMode parses "spread" (or "double") and "single".
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "spread", "double":
		return Spread, nil
	case "single", "page":
		return Single, nil
	}
	return Spread, fmt.Errorf("flipbook: unknown display mode %q", s)
}

// Fit computes the pixel size of one page inside avail.
//
// The page is first sized to the available height. In Spread mode, when two
// such pages do not fit side by side the size is re-derived from half the
// available width; in Single mode it is re-derived from the full width only
// when one page is too wide. The result is then clamped to natural so pages
// are never upscaled. A zero natural size disables the clamp.
func Fit(natural Size, aspect float64, avail Size, mode DisplayMode) Size {
	if avail.Empty() || aspect <= 0 || math.IsInf(aspect, 0) || math.IsNaN(aspect) {
		return Size{}
	}

	w := int(math.Round(float64(avail.Height) * aspect))
	h := avail.Height

	switch mode {
	case Single:
		if w > avail.Width {
			w = avail.Width
			h = int(math.Round(float64(w) / aspect))
		}
	default:
		if 2*w > avail.Width {
			w = avail.Width / 2
			h = int(math.Round(float64(w) / aspect))
		}
	}

	if natural.Width > 0 && w > natural.Width {
		w = natural.Width
	}
	if natural.Height > 0 && h > natural.Height {
		h = natural.Height
	}
	return Size{Width: w, Height: h}
}
