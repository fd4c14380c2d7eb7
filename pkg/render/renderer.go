package render

import (
	"github.com/taigrr/vitrine/pkg/math3d"
	"github.com/taigrr/vitrine/pkg/scene"
)

// SceneRenderer draws a scene graph into a framebuffer.
type SceneRenderer struct {
	fb   *Framebuffer
	rast *Rasterizer

	// Wireframe draws mesh edges instead of shaded faces.
	Wireframe bool

	// Triangles is the number of triangles submitted in the last frame.
	Triangles int
}

// NewSceneRenderer creates a renderer with a width x height framebuffer.
func NewSceneRenderer(width, height int) *SceneRenderer {
	fb := NewFramebuffer(width, height)
	return &SceneRenderer{
		fb:   fb,
		rast: NewRasterizer(NewCamera(), fb),
	}
}

// Framebuffer returns the render target of the last frame.
func (sr *SceneRenderer) Framebuffer() *Framebuffer {
	return sr.fb
}

// Stats returns culling statistics of the last frame.
func (sr *SceneRenderer) Stats() CullingStats {
	return sr.rast.CullingStats
}

// Resize reallocates the framebuffer. Non-positive sizes are ignored.
func (sr *SceneRenderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if sr.fb.Width == width && sr.fb.Height == height {
		return
	}
	sr.fb = NewFramebuffer(width, height)
	sr.rast.SetFramebuffer(sr.fb)
}

// Render draws every mesh and line node of s as seen from cam.
func (sr *SceneRenderer) Render(s *scene.Scene, cam *Camera) {
	sr.rast.SetCamera(cam)
	sr.rast.ResetCullingStats()
	sr.rast.ClearDepth()
	sr.Triangles = 0

	if s == nil {
		sr.fb.Clear(ColorBlack)
		return
	}
	sr.fb.Clear(s.Background)
	sr.rast.Ambient = s.Ambient
	light := s.LightDirection()

	s.Root.UpdateWorldMatrix()
	s.Root.Traverse(func(n *scene.Node) bool {
		if n.Geometry == nil {
			return true
		}
		world := n.WorldMatrix()
		switch n.Kind {
		case scene.KindMesh:
			if sr.Wireframe {
				sr.drawEdges(n.Geometry, world, n.Color)
			} else {
				sr.rast.DrawMeshGouraud(n.Geometry, world, n.Color, light)
			}
			sr.Triangles += n.Geometry.TriangleCount()
		case scene.KindLine:
			for _, seg := range n.Geometry.Segments {
				a := world.MulVec3(n.Geometry.Positions[seg[0]])
				b := world.MulVec3(n.Geometry.Positions[seg[1]])
				sr.rast.DrawLine3D(a, b, n.Color)
			}
		}
		return true
	})
}

func (sr *SceneRenderer) drawEdges(g *scene.Geometry, world math3d.Mat4, c Color) {
	for _, f := range g.Faces {
		v0 := world.MulVec3(g.Positions[f[0]])
		v1 := world.MulVec3(g.Positions[f[1]])
		v2 := world.MulVec3(g.Positions[f[2]])
		sr.rast.DrawLine3D(v0, v1, c)
		sr.rast.DrawLine3D(v1, v2, c)
		sr.rast.DrawLine3D(v2, v0, c)
	}
}
