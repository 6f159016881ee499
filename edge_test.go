package flipbook

import "testing"

func TestEdges(t *testing.T) {
	cfg := DefaultEdgeConfig()
	tests := []struct {
		name         string
		index, total int
		dir          Direction
		progress     float64
		read, unread int
		side         Side
	}{
		{"ltr start", 0, 10, LTR, 0, 0, 3, Left},
		{"ltr end", 9, 10, LTR, 1, 3, 0, Left},
		{"rtl start", 9, 10, RTL, 0, 0, 3, Right},
		{"rtl end", 0, 10, RTL, 1, 3, 0, Right},
		{"capped", 199, 200, LTR, 1, 20, 0, Left},
		{"single page", 0, 1, LTR, 0, 0, 1, Left},
		{"clamped index", 50, 10, LTR, 1, 3, 0, Left},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Edges(tt.index, tt.total, tt.dir, cfg)
			if !e.Visible {
				t.Error("edges not visible")
			}
			if !almostEqual(e.Progress, tt.progress, 1e-9) {
				t.Errorf("Progress = %v, want %v", e.Progress, tt.progress)
			}
			if e.ReadWidth != tt.read || e.UnreadWidth != tt.unread {
				t.Errorf("widths = %d/%d, want %d/%d", e.ReadWidth, e.UnreadWidth, tt.read, tt.unread)
			}
			if e.ReadSide != tt.side {
				t.Errorf("ReadSide = %s, want %s", e.ReadSide, tt.side)
			}
			if e.UnreadSide() == e.ReadSide {
				t.Error("unread side equals read side")
			}
		})
	}
}

func TestEdgesEmpty(t *testing.T) {
	if e := Edges(0, 0, LTR, DefaultEdgeConfig()); e.Visible {
		t.Errorf("Edges on empty book = %+v, want hidden", e)
	}
}

func TestEdgeConfigDefaults(t *testing.T) {
	e := Edges(5, 10, LTR, EdgeConfig{})
	if e.ReadWidth+e.UnreadWidth != 3 {
		t.Errorf("zero config thickness = %d, want default 3", e.ReadWidth+e.UnreadWidth)
	}
	e = Edges(5, 10, LTR, EdgeConfig{Divisor: 1, Cap: 6})
	if e.ReadWidth+e.UnreadWidth != 6 {
		t.Errorf("thickness = %d, want cap 6", e.ReadWidth+e.UnreadWidth)
	}
}
