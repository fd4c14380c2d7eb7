package render

import (
	"math"

	"github.com/taigrr/vitrine/pkg/math3d"
)

// Camera defaults.
const (
	DefaultFOVDegrees = 75
	DefaultNear       = 0.1
	DefaultFar        = 1000

	// MinAspectRatio keeps the projection finite for degenerate viewports.
	MinAspectRatio = 1e-6
)

// Camera is a perspective camera aimed at a target point.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Target is the point the camera looks at.
	Target math3d.Vec3

	// UpVector is the world up direction used to orient the view.
	UpVector math3d.Vec3

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpDirty        bool
}

// NewCamera creates a new camera with default settings.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 10),
		UpVector:    math3d.Up(),
		FOV:         DefaultFOVDegrees * math.Pi / 180,
		AspectRatio: 16.0 / 9.0,
		Near:        DefaultNear,
		Far:         DefaultFar,
		viewDirty:   true,
		projDirty:   true,
		vpDirty:     true,
	}
}

// SetPosition sets the camera position. The target is unchanged.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
	c.vpDirty = true
}

// LookAt aims the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
	c.vpDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
	c.vpDirty = true
}

// SetAspectRatio sets the aspect ratio. Values below MinAspectRatio are
// clamped; non-finite values are ignored.
func (c *Camera) SetAspectRatio(aspect float64) {
	if math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return
	}
	c.AspectRatio = math.Max(aspect, MinAspectRatio)
	c.projDirty = true
	c.vpDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
	c.vpDirty = true
}

// UpdateProjectionMatrix forces the projection to be rebuilt on next use.
func (c *Camera) UpdateProjectionMatrix() {
	c.projDirty = true
	c.vpDirty = true
}

// Forward returns the unit view direction. A camera sitting on its target
// looks down -Z.
func (c *Camera) Forward() math3d.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.LenSq() == 0 {
		return math3d.V3(0, 0, -1)
	}
	return d.Normalize()
}

// Right returns the right direction vector.
func (c *Camera) Right() math3d.Vec3 {
	r := c.Forward().Cross(c.up())
	if r.LenSq() == 0 {
		// Looking straight along up.
		return math3d.V3(1, 0, 0)
	}
	return r.Normalize()
}

// Up returns the camera's up direction vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

func (c *Camera) up() math3d.Vec3 {
	if c.UpVector.LenSq() == 0 {
		return math3d.Up()
	}
	return c.UpVector
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.computeViewMatrix()
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.computeProjectionMatrix()
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.vpDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.vpDirty = false
	}
	return c.viewProjMatrix
}

func (c *Camera) computeViewMatrix() {
	f := c.Forward()
	c.viewMatrix = math3d.LookAt(c.Position, c.Position.Add(f), c.Right().Cross(f))
}

func (c *Camera) computeProjectionMatrix() {
	c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
}

// RayFromNDC returns the world-space ray from the camera through the point
// at normalized device coordinates (x, y), each in [-1, 1] with +y up.
func (c *Camera) RayFromNDC(x, y float64) math3d.Ray {
	inv := c.ViewProjectionMatrix().Inverse()
	far := inv.MulVec4(math3d.V4(x, y, 1, 1)).PerspectiveDivide()
	dir := far.Sub(c.Position)
	if dir.LenSq() == 0 {
		dir = c.Forward()
	}
	return math3d.Ray{Origin: c.Position, Direction: dir.Normalize()}
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	// Transform to clip space
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Check if behind camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	// Perspective divide to NDC (-1 to 1)
	ndc := clipPos.PerspectiveDivide()

	// Check if in view frustum
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	// Convert to screen coordinates
	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	depth = ndc.Z

	return x, y, depth, true
}
