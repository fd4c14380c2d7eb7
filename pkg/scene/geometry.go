package scene

import (
	"github.com/taigrr/vitrine/pkg/math3d"
)

// Geometry holds the vertex data of a mesh or line node in local space.
type Geometry struct {
	Positions []math3d.Vec3
	Normals   []math3d.Vec3

	// Faces index triangles for meshes; Segments index line pairs.
	Faces    [][3]int
	Segments [][2]int

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewTriangleGeometry builds mesh geometry and fills in missing normals.
func NewTriangleGeometry(positions []math3d.Vec3, faces [][3]int) *Geometry {
	g := &Geometry{Positions: positions, Faces: faces}
	g.CalculateSmoothNormals()
	g.CalculateBounds()
	return g
}

// NewLineGeometry builds line-segment geometry.
func NewLineGeometry(positions []math3d.Vec3, segments [][2]int) *Geometry {
	g := &Geometry{Positions: positions, Segments: segments}
	g.CalculateBounds()
	return g
}

// CalculateBounds computes the local axis-aligned bounding box.
func (g *Geometry) CalculateBounds() {
	if len(g.Positions) == 0 {
		return
	}

	g.BoundsMin = g.Positions[0]
	g.BoundsMax = g.Positions[0]

	for _, p := range g.Positions[1:] {
		g.BoundsMin = g.BoundsMin.Min(p)
		g.BoundsMax = g.BoundsMax.Max(p)
	}
}

// CalculateSmoothNormals computes averaged normals for smooth shading.
func (g *Geometry) CalculateSmoothNormals() {
	g.Normals = make([]math3d.Vec3, len(g.Positions))

	// Accumulate unnormalized face normals per vertex (area weighted).
	// Faces are wound clockwise, so the outward normal is (v2-v0)×(v1-v0).
	for _, f := range g.Faces {
		v0 := g.Positions[f[0]]
		v1 := g.Positions[f[1]]
		v2 := g.Positions[f[2]]

		normal := v2.Sub(v0).Cross(v1.Sub(v0))

		g.Normals[f[0]] = g.Normals[f[0]].Add(normal)
		g.Normals[f[1]] = g.Normals[f[1]].Add(normal)
		g.Normals[f[2]] = g.Normals[f[2]].Add(normal)
	}

	for i := range g.Normals {
		g.Normals[i] = g.Normals[i].Normalize()
	}
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Faces)
}

// GetVertex returns the position and normal for vertex i.
// Implements render.MeshRenderer interface.
func (g *Geometry) GetVertex(i int) (pos, normal math3d.Vec3) {
	pos = g.Positions[i]
	if i < len(g.Normals) {
		normal = g.Normals[i]
	}
	return pos, normal
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer interface.
func (g *Geometry) GetFace(i int) [3]int {
	return g.Faces[i]
}

// GetBounds returns the local axis-aligned bounding box.
// Implements render.BoundedMeshRenderer interface.
func (g *Geometry) GetBounds() (min, max math3d.Vec3) {
	return g.BoundsMin, g.BoundsMax
}

// Box returns the local bounds as a Box3.
func (g *Geometry) Box() math3d.Box3 {
	if len(g.Positions) == 0 {
		return math3d.EmptyBox3()
	}
	return math3d.NewBox3(g.BoundsMin, g.BoundsMax)
}

// NewBoxGeometry returns an axis-aligned cuboid centered on the origin.
func NewBoxGeometry(w, h, d float64) *Geometry {
	x, y, z := w/2, h/2, d/2
	positions := []math3d.Vec3{
		{X: -x, Y: -y, Z: -z}, {X: x, Y: -y, Z: -z}, {X: x, Y: y, Z: -z}, {X: -x, Y: y, Z: -z},
		{X: -x, Y: -y, Z: z}, {X: x, Y: -y, Z: z}, {X: x, Y: y, Z: z}, {X: -x, Y: y, Z: z},
	}
	// Clockwise winding when viewed from outside, matching the rasterizer.
	faces := [][3]int{
		{4, 6, 5}, {4, 7, 6}, // front (+Z)
		{1, 2, 0}, {0, 2, 3}, // back (-Z)
		{5, 2, 1}, {5, 6, 2}, // right (+X)
		{0, 3, 4}, {4, 3, 7}, // left (-X)
		{3, 2, 6}, {3, 6, 7}, // top (+Y)
		{0, 5, 1}, {0, 4, 5}, // bottom (-Y)
	}
	return NewTriangleGeometry(positions, faces)
}
