package flipbook

import "math"

// ZoomConfig bounds the zoom scale and sets the step used by In and Out.
type ZoomConfig struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultZoomConfig allows 0.5x to 3x in steps of 0.1.
func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{Min: 0.5, Max: 3.0, Step: 0.1}
}

func (c ZoomConfig) resolved() ZoomConfig {
	d := DefaultZoomConfig()
	if c.Min <= 0 || c.Min > 1 {
		c.Min = d.Min
	}
	if c.Max < 1 {
		c.Max = d.Max
	}
	if c.Step <= 0 {
		c.Step = d.Step
	}
	return c
}

// Zoom is the scale and pan transform layered over the built book.
//
// The book counts as zoomed only while the scale is above 1. Crossing that
// boundary changes whether pointer drags pan the view or flip pages, so every
// mutator reports whether it crossed.
type Zoom struct {
	cfg   ZoomConfig
	scale float64
	panX  float64
	panY  float64
}

// NewZoom returns an identity transform.
func NewZoom(cfg ZoomConfig) Zoom {
	return Zoom{cfg: cfg.resolved(), scale: 1}
}

// Scale returns the current scale factor.
func (z *Zoom) Scale() float64 { return z.scale }

// Offset returns the current pan translation.
func (z *Zoom) Offset() (x, y float64) { return z.panX, z.panY }

// Zoomed reports whether the scale is above 1.
func (z *Zoom) Zoomed() bool { return z.scale > 1+1e-9 }

// In raises the scale by one step.
func (z *Zoom) In() (crossed bool) {
	return z.set(z.scale + z.cfg.Step)
}

// Out lowers the scale by one step.
func (z *Zoom) Out() (crossed bool) {
	return z.set(z.scale - z.cfg.Step)
}

// Reset restores scale 1 and clears the pan offset.
func (z *Zoom) Reset() (crossed bool) {
	return z.set(1)
}

// Pan moves the view by the pointer delta. It does nothing unless zoomed.
func (z *Zoom) Pan(dx, dy float64) bool {
	if !z.Zoomed() {
		return false
	}
	z.panX += dx
	z.panY += dy
	return true
}

func (z *Zoom) set(scale float64) bool {
	if z.cfg.Step == 0 {
		z.cfg = z.cfg.resolved()
	}
	before := z.Zoomed()
	// round to hundredths so repeated steps land exactly on 1
	scale = math.Round(scale*100) / 100
	z.scale = min(max(scale, z.cfg.Min), z.cfg.Max)
	if !z.Zoomed() {
		z.panX, z.panY = 0, 0
	}
	return before != z.Zoomed()
}
