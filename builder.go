package flipbook

import "time"

// PlanInput is the state a book build is derived from.
type PlanInput struct {
	Pages     int
	Natural   Size
	Aspect    float64 // zero means Natural.Aspect()
	Viewport  Size
	Padding   Padding
	Direction Direction
	Mode      DisplayMode
	// Resume is the logical page to open at. Zero or out of range selects
	// the direction default, which is always page 1.
	Resume       int
	Zoomed       bool
	Shadow       float64
	FlippingTime time.Duration
}

// BuildPlan is the immutable description of one widget instance.
type BuildPlan struct {
	Order  *PageOrder
	Page   Size
	Config WidgetConfig
}

// Plan derives the order, fitted geometry and widget configuration for a
// build. It is pure: the same input always yields the same plan.
func Plan(in PlanInput) BuildPlan {
	order := BuildOrder(in.Pages, in.Direction)

	aspect := in.Aspect
	if aspect <= 0 {
		aspect = in.Natural.Aspect()
	}
	page := Fit(in.Natural, aspect, in.Viewport.Shrink(in.Padding), in.Mode)

	start := order.FirstIndex()
	if i, ok := order.IndexOf(in.Resume); ok {
		start = i
	}

	strategy := Stretch
	if in.Mode == Single {
		strategy = Fixed
	}

	return BuildPlan{
		Order: order,
		Page:  page,
		Config: WidgetConfig{
			Width:            page.Width,
			Height:           page.Height,
			MaxWidth:         page.Width,
			MaxHeight:        page.Height,
			Size:             strategy,
			MaxShadowOpacity: in.Shadow,
			ShowCover:        order.Cover(),
			StartIndex:       start,
			CaptureGestures:  !in.Zoomed,
			Portrait:         in.Mode == Single,
			FlippingTime:     in.FlippingTime,
			Direction:        in.Direction,
		},
	}
}

// Slots returns the document's pages in visual order, each tagged with its
// logical page number.
func (p BuildPlan) Slots(doc *Document) []Slot {
	slots := make([]Slot, 0, p.Order.Len())
	for i := range p.Order.Len() {
		n, _ := p.Order.PageAt(i)
		page, ok := doc.Page(n)
		if !ok {
			continue
		}
		slots = append(slots, Slot{Index: i, Page: n, Asset: page.Asset})
	}
	return slots
}
