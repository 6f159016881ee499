package flipbook

import (
	"context"
	"time"
)

// SizeStrategy tells the widget how to lay pages out in its container.
type SizeStrategy int

const (
	// Stretch scales pages to the container, bounded by the max size.
	Stretch SizeStrategy = iota
	// Fixed keeps the configured page size.
	Fixed
)

func (s SizeStrategy) String() string {
	if s == Fixed {
		return "fixed"
	}
	return "stretch"
}

// WidgetConfig is everything a flip widget needs at construction time.
// Widgets cannot be reconfigured in place; a new config means a new widget.
type WidgetConfig struct {
	Width            int
	Height           int
	MaxWidth         int
	MaxHeight        int
	Size             SizeStrategy
	MaxShadowOpacity float64
	ShowCover        bool
	StartIndex       int
	// CaptureGestures lets pointer drags flip pages. It is off while zoomed
	// so the same drags can pan instead.
	CaptureGestures bool
	// Portrait shows a single page instead of a spread.
	Portrait     bool
	FlippingTime time.Duration
	Direction    Direction
}

// Slot is one page in visual order, tagged with its logical page number.
type Slot struct {
	Index int
	Page  int
	Asset Asset
}

// TransitionState is the widget's final state after a transition.
type TransitionState int

const (
	// Final is reported when a page turn completes.
	Final TransitionState = iota
	// Read is reported when the widget settles and is ready for input.
	Read
)

func (s TransitionState) String() string {
	if s == Read {
		return "read"
	}
	return "final"
}

// WidgetEventKind is the kind of a WidgetEvent.
type WidgetEventKind int

const (
	// TransitionStarted reports that a turn began; Index is its target.
	TransitionStarted WidgetEventKind = iota
	// TransitionStep reports animation progress.
	TransitionStep
	// TransitionSettled reports the end of a turn, first in the Final state
	// and again once the widget is Read.
	TransitionSettled
)

func (k WidgetEventKind) String() string {
	switch k {
	case TransitionStep:
		return "step"
	case TransitionSettled:
		return "settled"
	}
	return "started"
}

// WidgetEvent is emitted by a widget while it animates.
type WidgetEvent struct {
	Kind     WidgetEventKind
	Index    int     // target index for started, current index for settled
	Progress float64 // 0..1 for step
	State    TransitionState
}

// EventSink receives widget events. Widgets must call it on the viewer's UI
// goroutine, for example by posting through a [Loop].
type EventSink func(WidgetEvent)

// Widget is one live flip-widget instance. Its visual index space is the
// slot order it was constructed with.
type Widget interface {
	CurrentIndex() int
	// Next and Prev invoke the widget's forward and backward page turn.
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	// Turn requests a single direct transition to index.
	Turn(ctx context.Context, index int) error
	// Destroy removes the widget and every listener it registered.
	Destroy() error
}

// WidgetFactory mounts a new widget into a freshly created container.
type WidgetFactory interface {
	NewWidget(ctx context.Context, cfg WidgetConfig, slots []Slot, sink EventSink) (Widget, error)
}

// Feedback is the fire-and-forget side channel for cues and sharing.
type Feedback interface {
	Cue(ctx context.Context) error
	Share(ctx context.Context, url string) error
}

// Location mirrors the current logical page into the page parameter of the
// viewer URL without creating a history entry.
type Location interface {
	ReplacePage(ctx context.Context, page int) error
}
