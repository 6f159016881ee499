package flipbook

import "testing"

func TestZoomCrossing(t *testing.T) {
	z := NewZoom(DefaultZoomConfig())
	if z.Zoomed() || z.Scale() != 1 {
		t.Fatalf("new zoom = %v zoomed %t, want 1 not zoomed", z.Scale(), z.Zoomed())
	}

	if !z.In() {
		t.Error("1.0 -> 1.1 did not report a crossing")
	}
	if !almostEqual(z.Scale(), 1.1, 1e-9) {
		t.Errorf("scale = %v, want 1.1", z.Scale())
	}
	if z.In() {
		t.Error("1.1 -> 1.2 reported a crossing")
	}
	if z.Out() {
		t.Error("1.2 -> 1.1 reported a crossing")
	}
	if !z.Out() {
		t.Error("1.1 -> 1.0 did not report a crossing")
	}
	if z.Scale() != 1 {
		t.Errorf("scale = %v, want exactly 1", z.Scale())
	}
	if z.Out() {
		t.Error("1.0 -> 0.9 reported a crossing")
	}
	if z.Zoomed() {
		t.Error("0.9 counts as zoomed")
	}
}

func TestZoomBounds(t *testing.T) {
	z := NewZoom(DefaultZoomConfig())
	for range 50 {
		z.In()
	}
	if z.Scale() != 3 {
		t.Errorf("max scale = %v, want 3", z.Scale())
	}
	for range 100 {
		z.Out()
	}
	if z.Scale() != 0.5 {
		t.Errorf("min scale = %v, want 0.5", z.Scale())
	}
}

func TestZoomPan(t *testing.T) {
	z := NewZoom(DefaultZoomConfig())
	if z.Pan(10, 10) {
		t.Error("pan accepted while not zoomed")
	}
	z.In()
	if !z.Pan(10, -4) || !z.Pan(5, 0) {
		t.Error("pan rejected while zoomed")
	}
	if x, y := z.Offset(); x != 15 || y != -4 {
		t.Errorf("offset = %v,%v, want 15,-4", x, y)
	}
	if !z.Reset() {
		t.Error("reset from 1.1 did not report a crossing")
	}
	if x, y := z.Offset(); x != 0 || y != 0 {
		t.Errorf("offset after reset = %v,%v, want 0,0", x, y)
	}
}

func TestZoomConfigResolved(t *testing.T) {
	z := NewZoom(ZoomConfig{})
	z.In()
	if !almostEqual(z.Scale(), 1.1, 1e-9) {
		t.Errorf("zero config step gave %v, want 1.1", z.Scale())
	}
	z = NewZoom(ZoomConfig{Min: 0.25, Max: 4, Step: 0.5})
	z.In()
	if z.Scale() != 1.5 {
		t.Errorf("custom step gave %v, want 1.5", z.Scale())
	}
}
