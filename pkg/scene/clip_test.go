package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taigrr/vitrine/pkg/math3d"
)

func TestChannelApplyTranslation(t *testing.T) {
	n := NewNode("n", KindGroup)
	ch := &Channel{
		Node:   n,
		Path:   PathTranslation,
		Times:  []float64{0, 1, 2},
		Values: []float64{0, 0, 0, 10, 0, 0, 10, 10, 0},
	}

	tests := []struct {
		name string
		t    float64
		want math3d.Vec3
	}{
		{"before first key", -1, math3d.V3(0, 0, 0)},
		{"on first key", 0, math3d.V3(0, 0, 0)},
		{"halfway", 0.5, math3d.V3(5, 0, 0)},
		{"on middle key", 1, math3d.V3(10, 0, 0)},
		{"second segment", 1.25, math3d.V3(10, 2.5, 0)},
		{"after last key", 5, math3d.V3(10, 10, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch.Apply(tt.t)
			assertVec(t, tt.want, n.Position())
		})
	}
}

func TestChannelApplyStep(t *testing.T) {
	n := NewNode("n", KindGroup)
	ch := &Channel{
		Node:   n,
		Path:   PathScale,
		Step:   true,
		Times:  []float64{0, 1},
		Values: []float64{1, 1, 1, 2, 2, 2},
	}
	ch.Apply(0.9)
	assertVec(t, math3d.V3(1, 1, 1), n.Scale())
	ch.Apply(1)
	assertVec(t, math3d.V3(2, 2, 2), n.Scale())
}

func TestChannelApplyRotation(t *testing.T) {
	n := NewNode("n", KindGroup)
	q := math3d.QuatFromAxisAngle(math3d.Up(), math.Pi/2)
	ch := &Channel{
		Node:   n,
		Path:   PathRotation,
		Times:  []float64{0, 1},
		Values: []float64{0, 0, 0, 1, q.X, q.Y, q.Z, q.W},
	}
	ch.Apply(0.5)
	want := math3d.QuatFromAxisAngle(math3d.Up(), math.Pi/4)
	assertVec(t, want.Rotate(math3d.V3(1, 0, 0)), n.Rotation().Rotate(math3d.V3(1, 0, 0)))
}

func TestChannelIgnoresShortValues(t *testing.T) {
	n := NewNode("n", KindGroup)
	ch := &Channel{Node: n, Path: PathTranslation, Times: []float64{0, 1}, Values: []float64{1, 2}}
	ch.Apply(0.5)
	assertVec(t, math3d.Zero3(), n.Position())
}

func TestMixerLoops(t *testing.T) {
	n := NewNode("n", KindGroup)
	clip := &Clip{
		Name:     "slide",
		Duration: 2,
		Channels: []*Channel{{
			Node:   n,
			Path:   PathTranslation,
			Times:  []float64{0, 2},
			Values: []float64{0, 0, 0, 2, 0, 0},
		}},
	}
	m := NewMixer([]*Clip{clip})

	m.Update(0.5)
	assertVec(t, math3d.V3(0.5, 0, 0), n.Position())

	m.Update(2)
	assert.InDelta(t, 2.5, m.Time(), 1e-9)
	assertVec(t, math3d.V3(0.5, 0, 0), n.Position())

	// Negative and NaN deltas do not move time backwards.
	m.Update(-1)
	m.Update(math.NaN())
	assert.InDelta(t, 2.5, m.Time(), 1e-9)
}

func TestMixerNilSafe(t *testing.T) {
	var m *Mixer
	assert.NotPanics(t, func() { m.Update(1) })
	assert.NotPanics(t, func() { NewMixer(nil).Update(1) })
}
