// Package picking resolves which mesh lies under the pointer and keeps the
// hover and selection highlight colors of scene nodes consistent.
package picking

import (
	"math"
	"slices"

	"github.com/taigrr/vitrine/pkg/math3d"
	"github.com/taigrr/vitrine/pkg/scene"
)

// Rect is the on-screen area the scene is drawn into, in the same pixel
// space as pointer coordinates.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Valid reports whether r has a finite, positive area.
func (r Rect) Valid() bool {
	for _, v := range []float64{r.Left, r.Top, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

// NDC maps a pointer position inside r to normalized device coordinates,
// with +y pointing up.
func (r Rect) NDC(px, py float64) (x, y float64) {
	x = (px-r.Left)/r.Width*2 - 1
	y = -((py-r.Top)/r.Height)*2 + 1
	return x, y
}

// RayCaster produces world-space rays through NDC points.
// *render.Camera implements it.
type RayCaster interface {
	RayFromNDC(x, y float64) math3d.Ray
}

// Hit is one intersected node.
type Hit struct {
	Node     *scene.Node
	Point    math3d.Vec3
	Distance float64
}

// Pick casts a ray through the pointer position and returns the meshes it
// intersects under root, nearest first. Each mesh appears at most once, at
// its nearest intersection. Group and line nodes are never hit. A degenerate
// rect, a non-finite pointer or a nil root yields no hits.
func Pick(px, py float64, rect Rect, caster RayCaster, root *scene.Node) []Hit {
	if root == nil || caster == nil || !rect.Valid() {
		return nil
	}
	x, y := rect.NDC(px, py)
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return nil
	}
	ray := caster.RayFromNDC(x, y)
	if !ray.Origin.IsFinite() || !ray.Direction.IsFinite() {
		return nil
	}
	return Intersect(ray, root)
}

// Intersect returns the meshes under root hit by ray, nearest first.
func Intersect(ray math3d.Ray, root *scene.Node) []Hit {
	var hits []Hit
	root.Traverse(func(n *scene.Node) bool {
		if n.Kind != scene.KindMesh || n.Geometry == nil || len(n.Geometry.Faces) == 0 {
			return true
		}
		if hit, ok := intersectMesh(ray, n); ok {
			hits = append(hits, hit)
		}
		return true
	})
	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return hits
}

// Nearest returns the first hit, if any.
func Nearest(hits []Hit) (Hit, bool) {
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

func intersectMesh(ray math3d.Ray, n *scene.Node) (Hit, bool) {
	g := n.Geometry
	world := n.WorldMatrix()

	// Broad phase against the world-space bounds.
	if _, ok := ray.IntersectBox(g.Box().Transform(world)); !ok {
		return Hit{}, false
	}

	best := math.Inf(1)
	for _, f := range g.Faces {
		if f[0] >= len(g.Positions) || f[1] >= len(g.Positions) || f[2] >= len(g.Positions) {
			continue
		}
		v0 := world.MulVec3(g.Positions[f[0]])
		v1 := world.MulVec3(g.Positions[f[1]])
		v2 := world.MulVec3(g.Positions[f[2]])
		if t, ok := ray.IntersectTriangle(v0, v1, v2); ok && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return Hit{}, false
	}
	return Hit{Node: n, Point: ray.At(best), Distance: best}, true
}
