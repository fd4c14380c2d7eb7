// Package explode spreads the parts of a model away from a pivot so its
// assembly structure can be inspected, and puts them back exactly.
package explode

import (
	"math"

	"github.com/taigrr/vitrine/pkg/math3d"
	"github.com/taigrr/vitrine/pkg/scene"
)

// DefaultScale is the factor applied to a part's offset from the pivot at
// full power.
const DefaultScale = 3

// endpoints is the cached explode path of one node.
type endpoints struct {
	original math3d.Vec3
	from     math3d.Vec3
	to       math3d.Vec3
}

// visit is the per-node traversal context.
type visit struct {
	power float64
	pivot math3d.Vec3
	depth int
}

// Exploder applies the explode transform to a model tree. It remembers the
// original local position of every node it visits, keyed by node ID, for
// as long as the model lives; call Reset when a new model is loaded.
type Exploder struct {
	Scale float64

	power float64
	cache map[scene.NodeID]*endpoints
}

// New returns an Exploder with the default scale.
func New() *Exploder {
	return &Exploder{
		Scale: DefaultScale,
		cache: make(map[scene.NodeID]*endpoints),
	}
}

// Power returns the power of the last Set call.
func (e *Exploder) Power() float64 {
	return e.power
}

// Reset forgets all cached positions and the current power.
func (e *Exploder) Reset() {
	clear(e.cache)
	e.power = 0
}

// Original returns the cached original local position of n.
func (e *Exploder) Original(n *scene.Node) (math3d.Vec3, bool) {
	if n == nil {
		return math3d.Vec3{}, false
	}
	ep, ok := e.cache[n.ID]
	if !ok {
		return math3d.Vec3{}, false
	}
	return ep.original, true
}

// Endpoints returns the positions n moves between as power goes from 0
// to 1.
func (e *Exploder) Endpoints(n *scene.Node) (from, to math3d.Vec3, ok bool) {
	if n == nil {
		return from, to, false
	}
	ep, ok := e.cache[n.ID]
	if !ok {
		return from, to, false
	}
	return ep.from, ep.to, true
}

// Set moves every part under root to the given power, clamped to [0,1],
// between its original position and its exploded position away from the
// world-space pivot. The root itself stays put. Direct children of the
// root are pushed out along their offset from the pivot; deeper nodes keep
// their original position relative to their parent. At power 0 every
// visited node is back at exactly its original position. A nil root is a
// no-op.
func (e *Exploder) Set(root *scene.Node, power float64, pivot math3d.Vec3) {
	if root == nil {
		return
	}
	if math.IsNaN(power) {
		power = 0
	}
	power = max(0, min(1, power))
	e.power = power
	root.UpdateWorldMatrix()
	e.visit(root, visit{power: power, pivot: pivot, depth: 0})
}

func (e *Exploder) visit(n *scene.Node, v visit) {
	ep := e.endpointsFor(n)

	ep.from = ep.original
	switch v.depth {
	case 1:
		ep.to = ep.original.Sub(parentLocal(n, v.pivot)).Scale(e.Scale)
	default:
		ep.to = ep.original
	}

	if v.power == 0 {
		n.SetPosition(ep.from)
	} else {
		n.SetPosition(ep.from.Lerp(ep.to, v.power))
	}

	if n.IsPrimitive() || IsTerminalWrapper(n) {
		return
	}
	child := visit{power: v.power, pivot: v.pivot, depth: v.depth + 1}
	for _, c := range n.Children() {
		e.visit(c, child)
	}
}

func (e *Exploder) endpointsFor(n *scene.Node) *endpoints {
	if ep, ok := e.cache[n.ID]; ok {
		return ep
	}
	ep := &endpoints{original: n.Position()}
	e.cache[n.ID] = ep
	return ep
}

// parentLocal converts a world-space point into the local space n's
// position is expressed in.
func parentLocal(n *scene.Node, p math3d.Vec3) math3d.Vec3 {
	if parent := n.Parent(); parent != nil {
		return parent.WorldToLocal(p)
	}
	return p
}

// IsTerminalWrapper reports whether n only wraps a single drawable
// primitive. Such a wrapper moves as one part with its geometry, so the
// traversal does not descend into it.
func IsTerminalWrapper(n *scene.Node) bool {
	children := n.Children()
	return len(children) == 1 && children[0].IsPrimitive()
}
