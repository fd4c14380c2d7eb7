package render

import (
	"math"

	"github.com/taigrr/vitrine/pkg/math3d"
)

// DefaultAmbient is the light intensity of surfaces facing away from the light.
const DefaultAmbient = 0.3

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	Color    Color       // Vertex color
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera                 *Camera
	fb                     *Framebuffer
	zbuffer                []float64    // Depth buffer (1D array, row-major)
	frustum                Frustum      // Cached frustum planes
	frustumDirty           bool         // Whether frustum needs recalculation
	CullingStats           CullingStats // Statistics for debugging/benchmarking
	DisableBackfaceCulling bool         // If true, render both sides of triangles
	Ambient                float64      // Minimum light intensity in [0,1]
}

// CullingStats tracks frustum culling performance.
type CullingStats struct {
	MeshesTested int // Total meshes tested for culling
	MeshesCulled int // Meshes culled (not rendered)
	MeshesDrawn  int // Meshes that passed culling
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
		Ambient:      DefaultAmbient,
	}
	r.Resize()
	return r
}

// SetCamera changes the camera used for projection.
func (r *Rasterizer) SetCamera(c *Camera) {
	r.camera = c
	r.frustumDirty = true
}

// SetFramebuffer swaps the render target and resizes the depth buffer.
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.Resize()
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// InvalidateFrustum marks the frustum as needing recalculation.
// Call this when the camera moves or rotates.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

// UpdateFrustum recalculates the frustum planes from the camera.
func (r *Rasterizer) UpdateFrustum() {
	if r.frustumDirty {
		r.frustum = r.camera.Frustum()
		r.frustumDirty = false
	}
}

// ResetCullingStats resets the culling statistics (call once per frame).
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests if a world-space box is visible in the frustum.
func (r *Rasterizer) IsVisible(worldBounds math3d.Box3) bool {
	r.UpdateFrustum()
	return r.frustum.IntersectsBox(worldBounds)
}

func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y  float64 // Screen coordinates
	Z     float64 // Depth (for Z-buffer)
	W     float64 // Clip-space W
	Color Color
}

func (r *Rasterizer) toScreen(clip math3d.Vec4) screenVertex {
	sv := screenVertex{W: clip.W}
	ndc := clip.PerspectiveDivide()
	sv.X = (ndc.X + 1) * 0.5 * float64(r.Width())
	sv.Y = (1 - ndc.Y) * 0.5 * float64(r.Height())
	sv.Z = ndc.Z
	return sv
}

// shade applies Lambert lighting with an ambient floor.
func (r *Rasterizer) shade(c Color, normal, light math3d.Vec3) Color {
	intensity := math.Max(0, normal.Dot(light))
	intensity = r.Ambient + (1-r.Ambient)*intensity
	return RGB(
		uint8(float64(c.R)*intensity),
		uint8(float64(c.G)*intensity),
		uint8(float64(c.B)*intensity),
	)
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C, which is
// positive to the left of the edge, negative to the right.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// DrawTriangleGouraud rasterizes a triangle with Gouraud shading (per-vertex
// lighting) using incremental edge functions. Triangles crossing behind the
// camera are dropped.
func (r *Rasterizer) DrawTriangleGouraud(tri Triangle, lightDir math3d.Vec3) {
	var sv [3]screenVertex

	viewProj := r.camera.ViewProjectionMatrix()
	normLight := lightDir.Normalize()

	for i := range 3 {
		clipPos := viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))
		if clipPos.W <= 0 {
			return
		}
		sv[i] = r.toScreen(clipPos)
		sv[i].Color = r.shade(tri.V[i].Color, tri.V[i].Normal, normLight)
	}

	// Backface culling
	edge1X := sv[1].X - sv[0].X
	edge1Y := sv[1].Y - sv[0].Y
	edge2X := sv[2].X - sv[0].X
	edge2Y := sv[2].Y - sv[0].Y
	cross := edge1X*edge2Y - edge1Y*edge2X
	if cross < 0 {
		if !r.DisableBackfaceCulling {
			return
		}
		sv[1], sv[2] = sv[2], sv[1]
		cross = -cross
	}
	if cross == 0 {
		return
	}

	// Bounding box (clamped to screen)
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	invArea := 1.0 / cross

	r0, g0, b0 := float64(sv[0].Color.R), float64(sv[0].Color.G), float64(sv[0].Color.B)
	r1, g1, b1 := float64(sv[1].Color.R), float64(sv[1].Color.G), float64(sv[1].Color.B)
	r2, g2, b2 := float64(sv[2].Color.R), float64(sv[2].Color.G), float64(sv[2].Color.B)

	// Evaluate edge functions at the first pixel center.
	px := float64(minX) + 0.5
	py := float64(minY) + 0.5

	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	width := r.Width()
	zbuffer := r.zbuffer
	pixels := r.fb.Pixels

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0 := w0 * invArea
				bc1 := w1 * invArea
				bc2 := w2 * invArea

				z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z

				idx := rowOffset + x
				if z < zbuffer[idx] {
					zbuffer[idx] = z
					pixels[idx] = RGB(
						uint8(r0*bc0+r1*bc1+r2*bc2),
						uint8(g0*bc0+g1*bc1+g2*bc2),
						uint8(b0*bc0+b1*bc1+b2*bc2),
					)
				}
			}

			w0 += A0
			w1 += A1
			w2 += A2
		}

		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

// MeshRenderer is the geometry view the rasterizer needs. It is declared
// here so render does not depend on the scene package.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// tryFrustumCull reports whether a mesh with known bounds is entirely
// outside the frustum.
func (r *Rasterizer) tryFrustumCull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++

	minBounds, maxBounds := bounded.GetBounds()
	if !r.IsVisible(math3d.NewBox3(minBounds, maxBounds).Transform(transform)) {
		r.CullingStats.MeshesCulled++
		return true
	}

	r.CullingStats.MeshesDrawn++
	return false
}

// DrawMeshGouraud renders a mesh with Gouraud shading.
// Automatically performs frustum culling if the mesh provides bounds.
func (r *Rasterizer) DrawMeshGouraud(mesh MeshRenderer, transform math3d.Mat4, color Color, lightDir math3d.Vec3) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		p0, n0 := mesh.GetVertex(face[0])
		p1, n1 := mesh.GetVertex(face[1])
		p2, n2 := mesh.GetVertex(face[2])

		tri := Triangle{
			V: [3]Vertex{
				{Position: transform.MulVec3(p0), Normal: transform.MulVec3Dir(n0).Normalize(), Color: color},
				{Position: transform.MulVec3(p1), Normal: transform.MulVec3Dir(n1).Normalize(), Color: color},
				{Position: transform.MulVec3(p2), Normal: transform.MulVec3Dir(n2).Normalize(), Color: color},
			},
		}

		r.DrawTriangleGouraud(tri, lightDir)
	}
}

// DrawLine3D draws a depth-tested world-space line segment. The part of the
// segment behind the camera is clipped away.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, color Color) {
	const minW = 1e-5

	viewProj := r.camera.ViewProjectionMatrix()
	clipA := viewProj.MulVec4(math3d.V4FromV3(a, 1))
	clipB := viewProj.MulVec4(math3d.V4FromV3(b, 1))

	if clipA.W < minW && clipB.W < minW {
		return
	}
	if clipA.W < minW {
		clipA = clipLerp(clipA, clipB, (minW-clipA.W)/(clipB.W-clipA.W))
	} else if clipB.W < minW {
		clipB = clipLerp(clipB, clipA, (minW-clipB.W)/(clipA.W-clipB.W))
	}

	sa, sb := r.toScreen(clipA), r.toScreen(clipB)

	sa, sb, ok := clipToRect(sa, sb, float64(r.Width()), float64(r.Height()))
	if !ok {
		return
	}

	x0, y0 := int(sa.X), int(sa.Y)
	x1, y1 := int(sb.X), int(sb.Y)
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		r.plotDepth(x0, y0, sa.Z, color)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(float64(x1-x0)*t))
		y := y0 + int(math.Round(float64(y1-y0)*t))
		r.plotDepth(x, y, sa.Z+(sb.Z-sa.Z)*t, color)
	}
}

func (r *Rasterizer) plotDepth(x, y int, z float64, c Color) {
	if z > r.getDepth(x, y) || z < -1 || z > 1 {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
	r.fb.Pixels[y*r.Width()+x] = c
}

// clipToRect clips a screen-space segment to [0,w)x[0,h) (Liang-Barsky),
// interpolating depth along with position.
func clipToRect(a, b screenVertex, w, h float64) (screenVertex, screenVertex, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X},
		{dx, w - 1 - a.X},
		{-dy, a.Y},
		{dy, h - 1 - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	at := func(t float64) screenVertex {
		return screenVertex{X: a.X + dx*t, Y: a.Y + dy*t, Z: a.Z + (b.Z-a.Z)*t}
	}
	return at(t0), at(t1), true
}

func clipLerp(a, b math3d.Vec4, t float64) math3d.Vec4 {
	return math3d.V4(
		a.X+(b.X-a.X)*t,
		a.Y+(b.Y-a.Y)*t,
		a.Z+(b.Z-a.Z)*t,
		a.W+(b.W-a.W)*t,
	)
}
