package flipbook

import (
	"context"
	"sync"
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs deferred work on the viewer's UI goroutine.
type Scheduler interface {
	Now() time.Time
	// AfterFunc runs fn on the UI goroutine once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// AfterPaint runs fn after the current UI update has completed.
	AfterPaint(fn func())
}

// Loop is a single-goroutine work queue. Everything that touches a [Viewer]
// runs inside [Loop.Run]; other goroutines hand work over with Post or Call.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

// NewLoop returns an idle loop. Work posted before Run is kept.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the loop and waits for its result.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	if !l.Post(func() { done <- fn() }) {
		return context.Canceled
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes posted work until ctx is done. Pending work is dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
	}()

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn()
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Now implements [Scheduler].
func (l *Loop) Now() time.Time { return time.Now() }

// AfterFunc implements [Scheduler]. The callback is posted back onto the loop.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// AfterPaint implements [Scheduler]. The callback runs after everything
// already queued, which gives the widget page one turn to lay itself out.
func (l *Loop) AfterPaint(fn func()) {
	l.Post(fn)
}
