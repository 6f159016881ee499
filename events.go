package flipbook

import "go.uber.org/zap"

type eventKind int

const (
	// transitionRequested: the viewer asked the widget to turn.
	transitionRequested eventKind = iota
	// transitionSettled: the widget finished a turn or became idle.
	transitionSettled
	// geometryDirty: the widget has laid itself out after a rebuild.
	geometryDirty
)

func (k eventKind) String() string {
	switch k {
	case transitionSettled:
		return "transition-settled"
	case geometryDirty:
		return "geometry-dirty"
	}
	return "transition-requested"
}

// event is the only input the dispatcher understands. gen ties it to the
// widget instance it was produced for.
type event struct {
	kind   eventKind
	gen    uint64
	index  int
	state  TransitionState
	freeze bool
	cue    bool
}

// dispatch applies one event. It runs on the UI goroutine only, so the
// ordering of freeze, settle and geometry updates is the order of events.
func (v *Viewer) dispatch(ev event) {
	if ev.gen != v.gen {
		v.log.Debug("Dropping stale event",
			zap.Stringer("kind", ev.kind), zap.Uint64("gen", ev.gen), zap.Uint64("current", v.gen))
		return
	}

	switch ev.kind {
	case transitionRequested:
		if ev.cue {
			v.cue()
		}
		if ev.freeze {
			v.freeze()
			return
		}
	case transitionSettled:
		if ev.state == Read && v.frozen {
			v.frozen = false
			v.log.Debug("Edge updates resumed", zap.Int("index", ev.index))
		}
	case geometryDirty:
		v.log.Debug("Geometry settled", zap.Uint64("gen", ev.gen), zap.Stringer("page", v.plan.Page))
	}
	v.refresh()
}

// sink adapts widget events for the instance built at generation gen.
func (v *Viewer) sink(gen uint64) EventSink {
	return func(we WidgetEvent) {
		switch we.Kind {
		case TransitionStarted:
			v.dispatch(event{kind: transitionRequested, gen: gen, index: we.Index, cue: true})
		case TransitionSettled:
			v.dispatch(event{kind: transitionSettled, gen: gen, index: we.Index, state: we.State})
		case TransitionStep:
			// animation progress does not affect layout state
		}
	}
}
