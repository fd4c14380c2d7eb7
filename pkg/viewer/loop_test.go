package viewer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopStepDrainsEventsBeforeTick(t *testing.T) {
	v, r := newTestViewer(t)
	l := NewLoop(v, 30)
	assert.Equal(t, time.Second/30, l.Interval())

	var order []string
	l.Post(func(v *Viewer) { order = append(order, "event") })
	l.AfterTick = func(v *Viewer) { order = append(order, "tick") }
	l.Post(nil)

	l.RequestFrame()
	require.True(t, l.Step(at(0)))
	assert.Equal(t, []string{"event", "tick"}, order)
	assert.Equal(t, 1, r.frames)
}

func TestLoopTickRequestsNextFrame(t *testing.T) {
	v, r := newTestViewer(t)
	l := NewLoop(v, 60)

	assert.False(t, l.Step(at(0)), "no frame requested yet")
	l.RequestFrame()
	l.RequestFrame()
	assert.True(t, l.Step(at(0)))
	assert.True(t, l.Step(at(16)), "the tick asked for the next frame")
	assert.Equal(t, 2, r.frames)
}

func TestLoopAppliesQueuedEventsWithoutFrame(t *testing.T) {
	v, _ := newTestViewer(t)
	l := NewLoop(v, 60)

	l.Post(func(v *Viewer) { v.SetRotateSpeed(7) })
	l.Step(at(0))
	assert.Equal(t, -7.0, v.RotateSpeed())
}

func TestLoopPostConcurrent(t *testing.T) {
	v, _ := newTestViewer(t)
	l := NewLoop(v, 60)

	count := 0
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				l.Post(func(*Viewer) { count++ })
			}
		}()
	}
	wg.Wait()
	l.Step(at(0))
	assert.Equal(t, 800, count)
}

func TestLoopRunStop(t *testing.T) {
	v, _ := newTestViewer(t)
	l := NewLoop(v, 200)

	ticked := make(chan struct{}, 1)
	l.AfterTick = func(*Viewer) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	}

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick")
	}

	l.Stop()
	l.Stop()
	assert.True(t, l.Stopped())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestLoopRunContextCancel(t *testing.T) {
	v, _ := newTestViewer(t)
	l := NewLoop(v, 60)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, l.Run(ctx))
	assert.False(t, l.Stopped())
}

func TestClock(t *testing.T) {
	var c Clock
	assert.Zero(t, c.Tick(at(100)))
	assert.Equal(t, 50*time.Millisecond, c.Tick(at(150)))
	assert.Equal(t, 50*time.Millisecond, c.Delta())
	assert.Zero(t, c.Tick(at(120)), "time never runs backwards")
	assert.Equal(t, 30*time.Millisecond, c.Tick(at(180)))
	assert.Equal(t, 80*time.Millisecond, c.Elapsed())

	c.Reset()
	assert.Zero(t, c.Tick(at(1000)))
	assert.Zero(t, c.Elapsed())
}
