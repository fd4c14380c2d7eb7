package picking

import (
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/vitrine/pkg/scene"
)

func hitsFor(nodes ...*scene.Node) []Hit {
	var hits []Hit
	for i, n := range nodes {
		hits = append(hits, Hit{Node: n, Distance: float64(i + 1)})
	}
	return hits
}

func meshes() (a, b *scene.Node) {
	a = scene.NewMesh("A", nil, color.RGBA{R: 100, G: 40, B: 40, A: 255})
	b = scene.NewMesh("B", nil, color.RGBA{R: 40, G: 40, B: 100, A: 255})
	return a, b
}

func TestHoverEnterLeave(t *testing.T) {
	h := NewHighlighter()
	a, _ := meshes()
	def := a.Color

	h.UpdateHover(hitsFor(a))
	assert.Same(t, a, h.Hovered())
	got, ok := h.DefaultColor(a)
	require.True(t, ok)
	assert.Equal(t, def, got)
	assert.Equal(t, lighten(def, DefaultLighten), a.Color)
	assert.NotEqual(t, def, a.Color)

	// Repeated frames over the same node do not compound.
	h.UpdateHover(hitsFor(a))
	assert.Equal(t, lighten(def, DefaultLighten), a.Color)

	h.UpdateHover(nil)
	assert.Nil(t, h.Hovered())
	assert.Equal(t, def, a.Color)
}

func TestHoverMovesBetweenNodes(t *testing.T) {
	h := NewHighlighter()
	a, b := meshes()
	defA, defB := a.Color, b.Color

	h.UpdateHover(hitsFor(a, b))
	h.UpdateHover(hitsFor(b, a))

	assert.Same(t, b, h.Hovered())
	assert.Equal(t, defA, a.Color)
	assert.Equal(t, lighten(defB, DefaultLighten), b.Color)
}

func TestClickSelectAndToggle(t *testing.T) {
	h := NewHighlighter()
	a, b := meshes()
	defA, defB := a.Color, b.Color

	h.Click(hitsFor(a))
	assert.Same(t, a, h.Selected())
	assert.Equal(t, h.SelectColor, a.Color)

	h.Click(hitsFor(b))
	assert.Same(t, b, h.Selected())
	assert.Equal(t, defA, a.Color)
	assert.Equal(t, h.SelectColor, b.Color)

	h.Click(hitsFor(b))
	assert.Nil(t, h.Selected())
	assert.Equal(t, defB, b.Color)
}

func TestClickEmptyClearsSelection(t *testing.T) {
	h := NewHighlighter()
	a, _ := meshes()
	def := a.Color

	h.Click(hitsFor(a))
	h.Click(nil)
	assert.Nil(t, h.Selected())
	assert.Equal(t, def, a.Color)
}

func TestSelectionWinsOverHover(t *testing.T) {
	h := NewHighlighter()
	a, _ := meshes()
	def := a.Color

	h.UpdateHover(hitsFor(a))
	h.Click(hitsFor(a))
	assert.Equal(t, h.SelectColor, a.Color)

	h.UpdateHover(hitsFor(a))
	assert.Equal(t, h.SelectColor, a.Color)

	// Leaving a selected node keeps the selection color.
	h.UpdateHover(nil)
	assert.Equal(t, h.SelectColor, a.Color)

	// The default recorded before hover is the material color.
	got, _ := h.DefaultColor(a)
	assert.Equal(t, def, got)
}

func TestDeselectWhileHovered(t *testing.T) {
	h := NewHighlighter()
	a, _ := meshes()
	def := a.Color

	h.Click(hitsFor(a))
	h.UpdateHover(hitsFor(a))
	h.Click(hitsFor(a))
	assert.Nil(t, h.Selected())
	assert.Equal(t, lighten(def, DefaultLighten), a.Color)

	h.UpdateHover(nil)
	assert.Equal(t, def, a.Color)
}

func TestClearAndReset(t *testing.T) {
	h := NewHighlighter()
	a, b := meshes()
	defA, defB := a.Color, b.Color

	h.Click(hitsFor(a))
	h.UpdateHover(hitsFor(b))
	h.Clear()
	assert.Nil(t, h.Selected())
	assert.Nil(t, h.Hovered())
	assert.Equal(t, defA, a.Color)
	assert.Equal(t, defB, b.Color)

	h.Click(hitsFor(a))
	h.Reset()
	assert.Nil(t, h.Selected())
	_, ok := h.DefaultColor(a)
	assert.False(t, ok)
}

// For any sequence of hover and click events, a node that is neither
// hovered nor selected shows its material color.
func TestHighlightInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	nodes := make([]*scene.Node, 5)
	material := make(map[scene.NodeID]color.RGBA)
	for i := range nodes {
		c := color.RGBA{R: uint8(40 * i), G: 90, B: uint8(200 - 30*i), A: 255}
		nodes[i] = scene.NewMesh("n", nil, c)
		material[nodes[i].ID] = c
	}
	h := NewHighlighter()

	randomHits := func() []Hit {
		k := rng.IntN(len(nodes) + 1)
		if k == len(nodes) {
			return nil
		}
		return hitsFor(nodes[k])
	}

	for step := range 2000 {
		if rng.IntN(3) == 0 {
			h.Click(randomHits())
		} else {
			h.UpdateHover(randomHits())
		}

		for _, n := range nodes {
			switch n {
			case h.Selected():
				require.Equal(t, h.SelectColor, n.Color, "step %d", step)
			case h.Hovered():
				require.Equal(t, lighten(material[n.ID], h.Lighten), n.Color, "step %d", step)
			default:
				require.Equal(t, material[n.ID], n.Color, "step %d", step)
			}
		}
	}
}

func TestLighten(t *testing.T) {
	c := color.RGBA{R: 128, G: 0, B: 0, A: 200}
	got := lighten(c, 0.2)
	assert.Equal(t, uint8(200), got.A)
	assert.Greater(t, got.R, c.R)
	assert.Greater(t, got.G, c.G)

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, white, lighten(white, 0.2))
	assert.Equal(t, c, lighten(c, 0))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8800")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 136, B: 0, A: 255}, c)

	_, err = ParseColor("orange")
	assert.Error(t, err)
}
