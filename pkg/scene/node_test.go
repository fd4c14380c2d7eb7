package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/vitrine/pkg/math3d"
)

func assertVec(t *testing.T, want, got math3d.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestNodeIDsUnique(t *testing.T) {
	seen := make(map[NodeID]bool)
	for range 100 {
		n := NewNode("n", KindGroup)
		require.False(t, seen[n.ID])
		seen[n.ID] = true
	}
}

func TestAddReparents(t *testing.T) {
	a := NewNode("a", KindGroup)
	b := NewNode("b", KindGroup)
	c := NewNode("c", KindGroup)

	a.Add(c)
	b.Add(c)

	assert.Empty(t, a.Children())
	assert.Equal(t, []*Node{c}, b.Children())
	assert.Same(t, b, c.Parent())

	b.Remove(c)
	assert.Nil(t, c.Parent())
	assert.Empty(t, b.Children())
}

func TestWorldMatrixFollowsParents(t *testing.T) {
	root := NewNode("root", KindGroup)
	mid := NewNode("mid", KindGroup)
	leaf := NewNode("leaf", KindGroup)
	root.Add(mid)
	mid.Add(leaf)

	root.SetPosition(math3d.V3(1, 0, 0))
	mid.SetRotation(math3d.QuatFromAxisAngle(math3d.Up(), math.Pi/2))
	leaf.SetPosition(math3d.V3(0, 0, 1))

	assertVec(t, math3d.V3(2, 0, 0), leaf.WorldMatrix().Translation())

	// Moving an ancestor invalidates cached descendants.
	root.SetPosition(math3d.V3(0, 5, 0))
	assertVec(t, math3d.V3(1, 5, 0), leaf.WorldMatrix().Translation())
}

func TestWorldToLocalRoundTrip(t *testing.T) {
	parent := NewNode("p", KindGroup)
	parent.SetPosition(math3d.V3(3, -2, 1))
	parent.SetScale(math3d.V3(2, 2, 2))
	parent.SetRotation(math3d.QuatFromAxisAngle(math3d.V3(1, 1, 0), 0.7))

	p := math3d.V3(4, 5, 6)
	assertVec(t, p, parent.LocalToWorld(parent.WorldToLocal(p)))
	assertVec(t, math3d.V3(3, -2, 1), parent.LocalToWorld(math3d.Zero3()))
}

func TestTraverseAndFind(t *testing.T) {
	root := NewNode("root", KindGroup)
	a := NewNode("a", KindGroup)
	b := NewNode("b", KindGroup)
	a1 := NewNode("a1", KindGroup)
	root.Add(a, b)
	a.Add(a1)

	var order []string
	root.Traverse(func(n *Node) bool {
		order = append(order, n.Name)
		return true
	})
	assert.Equal(t, []string{"root", "a", "a1", "b"}, order)

	order = nil
	root.Traverse(func(n *Node) bool {
		order = append(order, n.Name)
		return n.Name != "a"
	})
	assert.Equal(t, []string{"root", "a", "b"}, order)

	assert.Same(t, a1, root.Find("a1"))
	assert.Nil(t, root.Find("missing"))
}

func TestBoundsUsesWorldTransform(t *testing.T) {
	root := NewNode("root", KindGroup)
	box := NewMesh("box", NewBoxGeometry(2, 2, 2), DefaultColor)
	box.SetPosition(math3d.V3(10, 0, 0))
	root.Add(box)

	b := root.Bounds()
	assertVec(t, math3d.V3(9, -1, -1), b.Min)
	assertVec(t, math3d.V3(11, 1, 1), b.Max)

	assert.True(t, NewNode("empty", KindGroup).Bounds().IsEmpty())
}

func TestBoxGeometryNormalsPointOutward(t *testing.T) {
	g := NewBoxGeometry(1, 1, 1)
	require.Equal(t, 12, g.TriangleCount())
	for i := range g.TriangleCount() {
		f := g.GetFace(i)
		v0, v1, v2 := g.Positions[f[0]], g.Positions[f[1]], g.Positions[f[2]]
		normal := v2.Sub(v0).Cross(v1.Sub(v0))
		centroid := v0.Add(v1).Add(v2).Scale(1.0 / 3)
		assert.Greater(t, normal.Dot(centroid), 0.0, "face %d", i)
	}
	for i := range g.VertexCount() {
		pos, n := g.GetVertex(i)
		assert.Greater(t, n.Dot(pos), 0.0, "vertex %d", i)
	}
}

func TestIsPrimitive(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindGroup, false},
		{KindMesh, true},
		{KindLine, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, NewNode("n", tt.kind).IsPrimitive())
		})
	}
}
