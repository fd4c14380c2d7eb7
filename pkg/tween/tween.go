// Package tween runs time-based transitions driven by an external clock.
//
// An Engine never reads the wall clock itself: the frame loop passes the
// current time to Update, which makes transitions deterministic in tests.
package tween

import (
	"time"

	"github.com/taigrr/vitrine/pkg/math3d"
)

// Handle controls one started transition.
type Handle struct {
	key        string
	start      time.Time
	started    bool
	duration   time.Duration
	onUpdate   func(alpha float64)
	onComplete func()
	cancelled  bool
	done       bool
}

// Cancel stops the transition. No further updates or completion are
// delivered. Cancelling a finished transition has no effect.
func (h *Handle) Cancel() {
	if h == nil || h.done {
		return
	}
	h.cancelled = true
}

// Done reports whether the transition has completed or been cancelled.
func (h *Handle) Done() bool {
	return h == nil || h.done || h.cancelled
}

// Engine advances all in-flight transitions once per Update call.
type Engine struct {
	active []*Handle
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{}
}

// Start begins a transition lasting d. onUpdate receives a linear progress
// value in [0,1] on every Update until completion; onComplete runs once
// after the final update. A transition already running under the same
// non-empty key is cancelled first. Either callback may be nil.
//
// The start time is taken from the first Update that sees the transition.
func (e *Engine) Start(key string, d time.Duration, onUpdate func(alpha float64), onComplete func()) *Handle {
	if key != "" {
		for _, h := range e.active {
			if h.key == key {
				h.Cancel()
			}
		}
	}
	h := &Handle{
		key:        key,
		duration:   d,
		onUpdate:   onUpdate,
		onComplete: onComplete,
	}
	e.active = append(e.active, h)
	return h
}

// CancelAll cancels every transition in flight.
func (e *Engine) CancelAll() {
	for _, h := range e.active {
		h.Cancel()
	}
}

// Active reports the number of transitions still in flight.
func (e *Engine) Active() int {
	n := 0
	for _, h := range e.active {
		if !h.Done() {
			n++
		}
	}
	return n
}

// Running reports whether a transition with key is in flight.
func (e *Engine) Running(key string) bool {
	for _, h := range e.active {
		if h.key == key && !h.Done() {
			return true
		}
	}
	return false
}

// Update advances every transition to now. All update callbacks run first;
// completion callbacks of transitions that finished in this step run
// afterwards, in start order. Callbacks may start or cancel transitions;
// transitions started during Update are first advanced on the next call.
func (e *Engine) Update(now time.Time) {
	current := e.active
	var finished []*Handle

	for _, h := range current {
		if h.Done() {
			continue
		}
		if !h.started {
			h.start = now
			h.started = true
		}

		alpha := 1.0
		if h.duration > 0 {
			alpha = float64(now.Sub(h.start)) / float64(h.duration)
			alpha = max(0, min(1, alpha))
		}
		if h.onUpdate != nil {
			h.onUpdate(alpha)
		}
		if alpha >= 1 && !h.cancelled {
			h.done = true
			finished = append(finished, h)
		}
	}

	for _, h := range finished {
		if h.onComplete != nil {
			h.onComplete()
		}
	}

	// Drop finished handles, keeping any started by callbacks.
	kept := e.active[:0]
	for _, h := range e.active {
		if !h.Done() {
			kept = append(kept, h)
		}
	}
	clear(e.active[len(kept):])
	e.active = kept
}

// Vec3 starts a linear transition between two points.
func Vec3(e *Engine, key string, from, to math3d.Vec3, d time.Duration, onUpdate func(math3d.Vec3), onComplete func()) *Handle {
	return e.Start(key, d, func(alpha float64) {
		if onUpdate == nil {
			return
		}
		if alpha >= 1 {
			onUpdate(to)
			return
		}
		onUpdate(from.Lerp(to, alpha))
	}, onComplete)
}

// Float starts a linear transition between two scalars.
func Float(e *Engine, key string, from, to float64, d time.Duration, onUpdate func(float64), onComplete func()) *Handle {
	return e.Start(key, d, func(alpha float64) {
		if onUpdate == nil {
			return
		}
		if alpha >= 1 {
			onUpdate(to)
			return
		}
		onUpdate(from + (to-from)*alpha)
	}, onComplete)
}
