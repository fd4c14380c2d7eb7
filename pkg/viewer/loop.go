package viewer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is an input applied to the viewer between ticks.
type Event func(v *Viewer)

// Loop drives a Viewer at a fixed frame rate. Other goroutines hand it
// input through Post; queued events are applied in order right before the
// next tick, so the viewer itself is only ever touched by the loop.
type Loop struct {
	viewer   *Viewer
	interval time.Duration
	log      *zap.Logger

	// AfterTick runs on the loop goroutine after every tick, e.g. to
	// present the rendered frame.
	AfterTick func(v *Viewer)

	mu      sync.Mutex
	pending []Event

	next     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop ticking v fps times per second and installs it as
// v's scheduler.
func NewLoop(v *Viewer, fps int) *Loop {
	if fps <= 0 {
		fps = 60
	}
	l := &Loop{
		viewer:   v,
		interval: time.Second / time.Duration(fps),
		log:      v.log,
		next:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	v.SetScheduler(l)
	return l
}

// Interval returns the time between ticks.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Post queues an event. It never blocks and is safe for concurrent use.
func (l *Loop) Post(e Event) {
	if e == nil {
		return
	}
	l.mu.Lock()
	l.pending = append(l.pending, e)
	l.mu.Unlock()
}

// RequestFrame asks for another tick. Requests made before the next tick
// collapse into one.
func (l *Loop) RequestFrame() {
	select {
	case l.next <- struct{}{}:
	default:
	}
}

// Step applies queued events and, if a frame was requested, ticks the
// viewer at now. It reports whether a tick ran.
func (l *Loop) Step(now time.Time) bool {
	l.drain()
	select {
	case <-l.next:
	default:
		return false
	}
	l.viewer.Tick(now)
	if l.AfterTick != nil {
		l.AfterTick(l.viewer)
	}
	return true
}

func (l *Loop) drain() {
	l.mu.Lock()
	events := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, e := range events {
		e(l.viewer)
	}
}

// Run ticks until ctx is done or Stop is called. Both are a normal
// shutdown and return nil.
func (l *Loop) Run(ctx context.Context) error {
	l.RequestFrame()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Debug("frame loop started", zap.Duration("interval", l.interval))
	defer l.log.Debug("frame loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.stop:
			return nil
		case now := <-ticker.C:
			l.Step(now)
		}
	}
}

// Stop ends Run. It is safe to call more than once and from any
// goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool {
	select {
	case <-l.stop:
		return true
	default:
		return false
	}
}
