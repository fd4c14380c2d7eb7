package picking

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/vitrine/pkg/scene"
)

// Highlight defaults.
const (
	DefaultLighten     = 0.2
	DefaultSelectColor = "#ff8800"
)

// Highlighter owns the hover and selection state. The material color a
// node had before it was first highlighted is remembered by node ID; a node
// that is neither hovered nor selected always displays that color.
type Highlighter struct {
	// Lighten is added to the HSL lightness of a hovered node's default
	// color.
	Lighten float64

	// SelectColor is shown on the selected node, even while hovered.
	SelectColor color.RGBA

	hovered  *scene.Node
	selected *scene.Node
	defaults map[scene.NodeID]color.RGBA
}

// NewHighlighter creates a highlighter with the default colors.
func NewHighlighter() *Highlighter {
	c, _ := ParseColor(DefaultSelectColor)
	return &Highlighter{
		Lighten:     DefaultLighten,
		SelectColor: c,
		defaults:    make(map[scene.NodeID]color.RGBA),
	}
}

// Hovered returns the hovered node or nil.
func (h *Highlighter) Hovered() *scene.Node {
	return h.hovered
}

// Selected returns the selected node or nil.
func (h *Highlighter) Selected() *scene.Node {
	return h.selected
}

// DefaultColor returns the remembered material color of n.
func (h *Highlighter) DefaultColor(n *scene.Node) (color.RGBA, bool) {
	if n == nil {
		return color.RGBA{}, false
	}
	c, ok := h.defaults[n.ID]
	return c, ok
}

// UpdateHover applies the result of this frame's pick. The previous hover
// target is restored first unless it is the selection; then the nearest
// hit, if any, becomes the hover target and shows a lightened default.
func (h *Highlighter) UpdateHover(hits []Hit) {
	if h.hovered != nil && h.hovered != h.selected {
		h.restore(h.hovered)
	}

	hit, ok := Nearest(hits)
	if !ok {
		h.hovered = nil
		return
	}

	n := hit.Node
	def := h.remember(n)
	h.hovered = n
	if n != h.selected {
		n.Color = lighten(def, h.Lighten)
	}
}

// Click resolves a click against hits. Clicking the selected node again
// deselects it; clicking empty space clears the selection.
func (h *Highlighter) Click(hits []Hit) {
	hit, ok := Nearest(hits)
	if !ok {
		h.Deselect()
		return
	}

	n := hit.Node
	prev := h.selected
	if prev != nil {
		h.unselect(prev)
	}
	if n == prev {
		h.selected = nil
		return
	}
	h.remember(n)
	h.selected = n
	n.Color = h.SelectColor
}

// Deselect clears the selection and restores the node's color.
func (h *Highlighter) Deselect() {
	if h.selected == nil {
		return
	}
	h.unselect(h.selected)
	h.selected = nil
}

// Clear restores every highlighted node and drops all state.
func (h *Highlighter) Clear() {
	if h.selected != nil {
		h.restore(h.selected)
		h.selected = nil
	}
	if h.hovered != nil {
		h.restore(h.hovered)
		h.hovered = nil
	}
}

// Reset forgets all state without touching nodes. Use it when the scene
// the nodes belong to has been discarded.
func (h *Highlighter) Reset() {
	h.hovered = nil
	h.selected = nil
	clear(h.defaults)
}

func (h *Highlighter) remember(n *scene.Node) color.RGBA {
	if c, ok := h.defaults[n.ID]; ok {
		return c
	}
	h.defaults[n.ID] = n.Color
	return n.Color
}

// unselect returns a node leaving the selection to its hover or default
// color.
func (h *Highlighter) unselect(n *scene.Node) {
	h.restore(n)
	if n == h.hovered {
		n.Color = lighten(n.Color, h.Lighten)
	}
}

func (h *Highlighter) restore(n *scene.Node) {
	if c, ok := h.defaults[n.ID]; ok {
		n.Color = c
	}
}

// lighten raises the HSL lightness of c by amount, keeping alpha.
func lighten(c color.RGBA, amount float64) color.RGBA {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return c
	}
	hue, sat, l := cf.Hsl()
	l = min(1, max(0, l+amount))
	r, g, b := colorful.Hsl(hue, sat, l).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: c.A}
}

// ParseColor parses a "#rrggbb" hex color.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
