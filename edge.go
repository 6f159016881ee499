package flipbook

import "math"

// Side is the horizontal side a read-edge marker is drawn on.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// EdgeConfig sizes the read-edge markers. The total marker thickness is
// min(ceil(pages/Divisor), Cap) pixels.
type EdgeConfig struct {
	Divisor int
	Cap     int
}

// DefaultEdgeConfig is the denser marker variant.
func DefaultEdgeConfig() EdgeConfig {
	return EdgeConfig{Divisor: 4, Cap: 20}
}

func (c EdgeConfig) resolved() EdgeConfig {
	d := DefaultEdgeConfig()
	if c.Divisor <= 0 {
		c.Divisor = d.Divisor
	}
	if c.Cap <= 0 {
		c.Cap = d.Cap
	}
	return c
}

// EdgeState describes the two page-stack markers on either side of the book.
type EdgeState struct {
	Visible bool
	// Progress is the fraction of the book already read, in [0, 1].
	Progress    float64
	ReadWidth   int
	UnreadWidth int
	ReadSide    Side
}

// UnreadSide is the side opposite the read marker.
func (e EdgeState) UnreadSide() Side {
	if e.ReadSide == Left {
		return Right
	}
	return Left
}

// Edges computes the markers for visual index of total slots. Under RTL the
// progress is mirrored and the read marker moves to the right.
func Edges(index, total int, dir Direction, cfg EdgeConfig) EdgeState {
	if total <= 0 {
		return EdgeState{}
	}
	cfg = cfg.resolved()
	index = min(max(index, 0), total-1)

	progress := float64(index) / float64(max(total-1, 1))
	side := Left
	if dir == RTL {
		progress = 1 - progress
		side = Right
	}

	thickness := min(int(math.Ceil(float64(total)/float64(cfg.Divisor))), cfg.Cap)
	read := int(math.Round(float64(thickness) * progress))

	return EdgeState{
		Visible:     true,
		Progress:    progress,
		ReadWidth:   read,
		UnreadWidth: thickness - read,
		ReadSide:    side,
	}
}
