// Package scene provides the scene graph the viewer inspects: a tree of
// group, mesh and line nodes with local transforms, cached world matrices
// and per-node display colors.
package scene

import (
	"image/color"
	"sync/atomic"

	"github.com/taigrr/vitrine/pkg/math3d"
)

// NodeID identifies a node for its whole lifetime. IDs are never reused
// within a process, so they are safe keys for out-of-band caches.
type NodeID uint64

var nextNodeID atomic.Uint64

// Kind is the drawable type of a node.
type Kind int

const (
	KindGroup Kind = iota // Transform-only container
	KindMesh              // Triangle geometry
	KindLine              // Line-segment geometry
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindLine:
		return "line"
	default:
		return "group"
	}
}

// Node is an element of the scene graph.
type Node struct {
	ID   NodeID
	Name string
	Kind Kind

	// Local transform relative to the parent.
	position math3d.Vec3
	rotation math3d.Quat
	scale    math3d.Vec3

	// Geometry is nil for groups.
	Geometry *Geometry

	// Color is the displayed material color. Highlighting mutates it; the
	// material default is remembered outside the node.
	Color color.RGBA

	parent   *Node
	children []*Node

	world      math3d.Mat4
	worldDirty bool
}

// NewNode creates a node with an identity transform.
func NewNode(name string, kind Kind) *Node {
	return &Node{
		ID:         NodeID(nextNodeID.Add(1)),
		Name:       name,
		Kind:       kind,
		rotation:   math3d.IdentityQuat(),
		scale:      math3d.V3(1, 1, 1),
		world:      math3d.Identity(),
		worldDirty: true,
	}
}

// NewMesh creates a mesh node for the given geometry and color.
func NewMesh(name string, geom *Geometry, c color.RGBA) *Node {
	n := NewNode(name, KindMesh)
	n.Geometry = geom
	n.Color = c
	return n
}

// IsPrimitive reports whether the node draws geometry itself.
func (n *Node) IsPrimitive() bool {
	return n.Kind == KindMesh || n.Kind == KindLine
}

// Add appends children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
		c.markDirty()
	}
}

// Remove detaches child from n. It is a no-op if child is not a direct child.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			child.markDirty()
			return
		}
	}
}

// Parent returns the parent node or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the ordered children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Position returns the local position.
func (n *Node) Position() math3d.Vec3 {
	return n.position
}

// SetPosition sets the local position.
func (n *Node) SetPosition(p math3d.Vec3) {
	n.position = p
	n.markDirty()
}

// Rotation returns the local rotation.
func (n *Node) Rotation() math3d.Quat {
	return n.rotation
}

// SetRotation sets the local rotation.
func (n *Node) SetRotation(q math3d.Quat) {
	n.rotation = q
	n.markDirty()
}

// Scale returns the local scale.
func (n *Node) Scale() math3d.Vec3 {
	return n.scale
}

// SetScale sets the local scale.
func (n *Node) SetScale(s math3d.Vec3) {
	n.scale = s
	n.markDirty()
}

// LocalMatrix returns the TRS matrix of the local transform.
func (n *Node) LocalMatrix() math3d.Mat4 {
	return math3d.Compose(n.position, n.rotation, n.scale)
}

// WorldMatrix returns the node's world transform, recomputing it and any
// stale ancestors first.
func (n *Node) WorldMatrix() math3d.Mat4 {
	if n.worldDirty {
		local := n.LocalMatrix()
		if n.parent != nil {
			n.world = n.parent.WorldMatrix().Mul(local)
		} else {
			n.world = local
		}
		n.worldDirty = false
	}
	return n.world
}

// UpdateWorldMatrix brings the world matrices of n and its whole subtree
// up to date.
func (n *Node) UpdateWorldMatrix() {
	n.Traverse(func(c *Node) bool {
		c.WorldMatrix()
		return true
	})
}

// WorldToLocal converts a world-space point into this node's local space.
func (n *Node) WorldToLocal(p math3d.Vec3) math3d.Vec3 {
	return n.WorldMatrix().Inverse().MulVec3(p)
}

// LocalToWorld converts a point in this node's local space to world space.
func (n *Node) LocalToWorld(p math3d.Vec3) math3d.Vec3 {
	return n.WorldMatrix().MulVec3(p)
}

func (n *Node) markDirty() {
	if n.worldDirty {
		// Descendants of a dirty node are already dirty.
		return
	}
	n.worldDirty = true
	for _, c := range n.children {
		c.markDirty()
	}
}

// Traverse visits n and its descendants depth-first in child order.
// Returning false from fn skips the node's children.
func (n *Node) Traverse(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// Find returns the first node in the subtree with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Traverse(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Bounds returns the world-space bounding box of all geometry in the
// subtree, computed from transformed vertices.
func (n *Node) Bounds() math3d.Box3 {
	box := math3d.EmptyBox3()
	n.Traverse(func(c *Node) bool {
		if c.Geometry == nil {
			return true
		}
		world := c.WorldMatrix()
		for _, p := range c.Geometry.Positions {
			box = box.ExpandByPoint(world.MulVec3(p))
		}
		return true
	})
	return box
}
