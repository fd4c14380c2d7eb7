package render

import (
	"math"
	"testing"

	"github.com/taigrr/vitrine/pkg/math3d"
)

// mockMesh implements MeshRenderer for testing.
type mockMesh struct {
	positions []math3d.Vec3
	normals   []math3d.Vec3
	faces     [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.positions) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3) {
	return m.positions[i], m.normals[i]
}

// boundedMock adds bounds so the rasterizer can frustum cull it.
type boundedMock struct {
	mockMesh
	min, max math3d.Vec3
}

func (m *boundedMock) GetBounds() (min, max math3d.Vec3) { return m.min, m.max }

// quadMesh is a 10x10 quad at z=0 facing +Z, wound clockwise.
func quadMesh() mockMesh {
	n := math3d.V3(0, 0, 1)
	return mockMesh{
		positions: []math3d.Vec3{
			math3d.V3(-5, -5, 0), math3d.V3(5, -5, 0), math3d.V3(5, 5, 0), math3d.V3(-5, 5, 0),
		},
		normals: []math3d.Vec3{n, n, n, n},
		faces: [][3]int{
			{0, 3, 2}, // CW: bottom-left, top-left, top-right
			{0, 2, 1}, // CW: bottom-left, top-right, bottom-right
		},
	}
}

// createTestRasterizer creates a rasterizer looking at the origin from +Z.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetFOV(math.Pi / 3)
	rasterizer := NewRasterizer(camera, fb)
	rasterizer.ClearDepth()
	fb.Clear(ColorBlack)
	return rasterizer, fb
}

func countLit(fb *Framebuffer) int {
	n := 0
	for _, c := range fb.Pixels {
		if c.R > 0 || c.G > 0 || c.B > 0 {
			n++
		}
	}
	return n
}

func TestDrawTriangleGouraud_VertexLighting(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	// Light from z+ direction (toward camera)
	lightDir := math3d.V3(0, 0, 1)

	// CW winding for front-facing (engine convention due to Y-flip)
	tri := Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, 0), Normal: math3d.V3(0, 0, 1), Color: RGB(200, 200, 200)},
			{Position: math3d.V3(0, 5, 0), Normal: math3d.V3(0, 0, 1), Color: RGB(200, 200, 200)},
			{Position: math3d.V3(5, -5, 0), Normal: math3d.V3(0.5, 0, 0.866), Color: RGB(200, 200, 200)},
		},
	}

	r.DrawTriangleGouraud(tri, lightDir)

	if countLit(fb) == 0 {
		t.Error("DrawTriangleGouraud should draw visible pixels")
	}

	// Center pixel faces the light almost head on.
	c := fb.GetPixel(50, 55)
	if c.R < 180 {
		t.Errorf("center pixel R = %d, want a brightly lit value", c.R)
	}
}

func TestDrawTriangleGouraud_BackfaceCulling(t *testing.T) {
	tests := []struct {
		name    string
		disable bool
		want    bool
	}{
		{"culled", false, false},
		{"double sided", true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(100, 100)
			r.DisableBackfaceCulling = tc.disable

			// CCW winding: back-facing
			tri := Triangle{
				V: [3]Vertex{
					{Position: math3d.V3(-5, -5, 0), Normal: math3d.V3(0, 0, 1), Color: RGB(255, 255, 255)},
					{Position: math3d.V3(5, -5, 0), Normal: math3d.V3(0, 0, 1), Color: RGB(255, 255, 255)},
					{Position: math3d.V3(0, 5, 0), Normal: math3d.V3(0, 0, 1), Color: RGB(255, 255, 255)},
				},
			}
			r.DrawTriangleGouraud(tri, math3d.V3(0, 0, 1))

			if got := countLit(fb) > 0; got != tc.want {
				t.Errorf("drawn = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDrawTriangleGouraud_BehindCamera(t *testing.T) {
	r, fb := createTestRasterizer(50, 50)

	tri := Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, 20), Color: RGB(255, 255, 255)},
			{Position: math3d.V3(0, 5, 20), Color: RGB(255, 255, 255)},
			{Position: math3d.V3(5, -5, 0), Color: RGB(255, 255, 255)},
		},
	}
	r.DrawTriangleGouraud(tri, math3d.V3(0, 0, 1))

	if n := countLit(fb); n != 0 {
		t.Errorf("triangle crossing behind the camera drew %d pixels", n)
	}
}

func TestDrawMeshGouraud_DepthTest(t *testing.T) {
	r, fb := createTestRasterizer(60, 60)
	mesh := quadMesh()
	light := math3d.V3(0, 0, 1)

	// Near red quad drawn first, far blue quad must not overwrite it.
	r.DrawMeshGouraud(&mesh, math3d.Translate(math3d.V3(0, 0, 1)), RGB(255, 0, 0), light)
	r.DrawMeshGouraud(&mesh, math3d.Translate(math3d.V3(0, 0, -1)), RGB(0, 0, 255), light)

	c := fb.GetPixel(30, 30)
	if c.R == 0 || c.B != 0 {
		t.Errorf("center pixel = %v, want the nearer red quad", c)
	}
}

func TestDrawMeshGouraud_Ambient(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	r.Ambient = 0.5
	mesh := quadMesh()

	// Light from behind: only the ambient term applies.
	r.DrawMeshGouraud(&mesh, math3d.Identity(), RGB(200, 200, 200), math3d.V3(0, 0, -1))

	c := fb.GetPixel(20, 20)
	if c.R < 99 || c.R > 100 {
		t.Errorf("ambient-only pixel R = %d, want 100", c.R)
	}
}

func TestDrawMeshGouraud_FrustumCulling(t *testing.T) {
	r, fb := createTestRasterizer(40, 40)
	mesh := &boundedMock{mockMesh: quadMesh(), min: math3d.V3(-5, -5, 0), max: math3d.V3(5, 5, 0)}

	r.DrawMeshGouraud(mesh, math3d.Translate(math3d.V3(500, 0, 0)), RGB(255, 255, 255), math3d.V3(0, 0, 1))
	r.DrawMeshGouraud(mesh, math3d.Identity(), RGB(255, 255, 255), math3d.V3(0, 0, 1))

	stats := r.CullingStats
	if stats.MeshesTested != 2 || stats.MeshesCulled != 1 || stats.MeshesDrawn != 1 {
		t.Errorf("stats = %+v, want 2 tested, 1 culled, 1 drawn", stats)
	}
	if countLit(fb) == 0 {
		t.Error("visible mesh should be drawn")
	}

	r.ResetCullingStats()
	if r.CullingStats != (CullingStats{}) {
		t.Error("ResetCullingStats should zero the counters")
	}
}

func TestDrawLine3D(t *testing.T) {
	r, fb := createTestRasterizer(50, 50)
	r.DrawLine3D(math3d.V3(-3, 0, 0), math3d.V3(3, 0, 0), ColorWhite)

	if n := countLit(fb); n == 0 {
		t.Fatal("line should draw pixels")
	}
	if c := fb.GetPixel(25, 25); c != ColorWhite {
		t.Errorf("center pixel = %v, want white", c)
	}
}

func TestDrawLine3D_ClipsBehindCamera(t *testing.T) {
	r, fb := createTestRasterizer(50, 50)

	// Entirely behind the camera.
	r.DrawLine3D(math3d.V3(-3, 0, 20), math3d.V3(3, 0, 20), ColorWhite)
	if n := countLit(fb); n != 0 {
		t.Errorf("line behind camera drew %d pixels", n)
	}

	// Crossing the camera plane: only the visible half is drawn.
	r.DrawLine3D(math3d.V3(0, -1, 20), math3d.V3(0, -1, 0), ColorWhite)
	if n := countLit(fb); n == 0 {
		t.Error("visible part of a clipped line should be drawn")
	}
}

func TestDrawLine3D_Occluded(t *testing.T) {
	r, fb := createTestRasterizer(50, 50)
	mesh := quadMesh()
	r.DrawMeshGouraud(&mesh, math3d.Translate(math3d.V3(0, 0, 1)), RGB(255, 0, 0), math3d.V3(0, 0, 1))

	r.DrawLine3D(math3d.V3(-3, 0, -1), math3d.V3(3, 0, -1), RGB(0, 255, 0))
	if c := fb.GetPixel(25, 25); c.G != 0 {
		t.Errorf("line behind quad should be hidden, got %v", c)
	}
}

func TestMin3Max3(t *testing.T) {
	if min3(1, 2, 3) != 1 || min3(3, 1, 2) != 1 || min3(2, 3, 1) != 1 {
		t.Error("min3 failed")
	}
	if max3(1, 2, 3) != 3 || max3(3, 1, 2) != 3 || max3(2, 3, 1) != 3 {
		t.Error("max3 failed")
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	r.zbuffer[5*10+5] = 1.0
	if r.getDepth(5, 5) != 1.0 {
		t.Error("getDepth failed")
	}

	r.ClearDepth()
	if r.getDepth(5, 5) != math.MaxFloat64 {
		t.Error("ClearDepth should reset to MaxFloat64")
	}
}

func TestRasterizerDepthBoundsCheck(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	// Out of bounds should return MaxFloat64 and not panic
	if r.getDepth(-1, 0) != math.MaxFloat64 {
		t.Error("Out of bounds getDepth should return MaxFloat64")
	}
	if r.getDepth(100, 0) != math.MaxFloat64 {
		t.Error("Out of bounds getDepth should return MaxFloat64")
	}
}

func TestRasterizerSetFramebuffer(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)
	r.SetFramebuffer(NewFramebuffer(20, 8))
	if r.Width() != 20 || r.Height() != 8 || len(r.zbuffer) != 160 {
		t.Errorf("got %dx%d with %d depth entries", r.Width(), r.Height(), len(r.zbuffer))
	}

	r.SetFramebuffer(nil)
	if r.Width() != 0 || r.zbuffer != nil {
		t.Error("nil framebuffer should clear the depth buffer")
	}
}

// Benchmark tests
func BenchmarkDrawTriangleGouraud(b *testing.B) {
	r, _ := createTestRasterizer(200, 200)

	// CW winding for front-facing
	tri := Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, 0), Normal: math3d.V3(0, 0, 1), Color: RGB(255, 100, 50)},
			{Position: math3d.V3(0, 5, 0), Normal: math3d.V3(0, 0, 1), Color: RGB(100, 50, 255)},
			{Position: math3d.V3(5, -5, 0), Normal: math3d.V3(0, 0, 1), Color: RGB(50, 255, 100)},
		},
	}
	lightDir := math3d.V3(0, 0, 1)

	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangleGouraud(tri, lightDir)
	}
}

func BenchmarkDrawMeshGouraud(b *testing.B) {
	r, _ := createTestRasterizer(200, 200)
	mesh := quadMesh()
	lightDir := math3d.V3(0, 0, 1)

	for b.Loop() {
		r.ClearDepth()
		r.DrawMeshGouraud(&mesh, math3d.Identity(), RGB(255, 100, 50), lightDir)
	}
}
