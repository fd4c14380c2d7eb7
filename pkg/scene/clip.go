package scene

import (
	"math"
	"sort"

	"github.com/taigrr/vitrine/pkg/math3d"
)

// Path is the node property an animation channel drives.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

func (p Path) stride() int {
	if p == PathRotation {
		return 4
	}
	return 3
}

// Channel animates one property of one node from keyframes.
type Channel struct {
	Node *Node
	Path Path
	Step bool

	// Times are keyframe times in seconds, ascending. Values holds
	// Path.stride() components per keyframe.
	Times  []float64
	Values []float64
}

// Clip is a named set of channels played together.
type Clip struct {
	Name     string
	Duration float64
	Channels []*Channel
}

func (c *Channel) key(i int) []float64 {
	s := c.Path.stride()
	return c.Values[i*s : (i+1)*s]
}

// Apply samples the channel at time t and writes the result to the node.
// Times outside the keyframe range clamp to the first or last key.
func (c *Channel) Apply(t float64) {
	n := len(c.Times)
	if s := c.Path.stride(); len(c.Values) < n*s {
		n = len(c.Values) / s
	}
	if c.Node == nil || n == 0 {
		return
	}

	i := sort.SearchFloat64s(c.Times[:n], t)
	var a, b []float64
	alpha := 0.0
	switch {
	case i == 0:
		a, b = c.key(0), c.key(0)
	case i >= n:
		a, b = c.key(n-1), c.key(n-1)
	default:
		a, b = c.key(i-1), c.key(i)
		if span := c.Times[i] - c.Times[i-1]; span > 0 && !c.Step {
			alpha = (t - c.Times[i-1]) / span
		}
		if c.Times[i] == t {
			a, alpha = b, 0
		}
	}

	switch c.Path {
	case PathTranslation:
		v := math3d.V3(a[0], a[1], a[2]).Lerp(math3d.V3(b[0], b[1], b[2]), alpha)
		c.Node.SetPosition(v)
	case PathScale:
		v := math3d.V3(a[0], a[1], a[2]).Lerp(math3d.V3(b[0], b[1], b[2]), alpha)
		c.Node.SetScale(v)
	case PathRotation:
		qa := math3d.Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}
		qb := math3d.Quat{X: b[0], Y: b[1], Z: b[2], W: b[3]}
		c.Node.SetRotation(qa.Slerp(qb, alpha).Normalize())
	}
}

// Mixer plays every clip of a model on a loop.
type Mixer struct {
	clips []*Clip
	time  float64
}

// NewMixer creates a mixer for the given clips.
func NewMixer(clips []*Clip) *Mixer {
	return &Mixer{clips: clips}
}

// Time returns the accumulated playback time in seconds.
func (m *Mixer) Time() float64 {
	return m.time
}

// Update advances playback by dt seconds and applies all channels.
func (m *Mixer) Update(dt float64) {
	if m == nil || len(m.clips) == 0 {
		return
	}
	if dt > 0 && !math.IsInf(dt, 0) {
		m.time += dt
	}
	for _, clip := range m.clips {
		t := m.time
		if clip.Duration > 0 {
			t = math.Mod(t, clip.Duration)
		}
		for _, ch := range clip.Channels {
			ch.Apply(t)
		}
	}
}
