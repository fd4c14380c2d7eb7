// Package controls implements orbit camera controls: the camera circles a
// target point on a sphere, driven by drag, wheel and pan input with
// spring-damped inertia, plus an optional constant auto-rotation.
package controls

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/vitrine/pkg/math3d"
	"github.com/taigrr/vitrine/pkg/render"
)

// Defaults for NewOrbit.
const (
	DefaultFPS               = 60
	DefaultRotateSensitivity = 0.01 // radians per pixel of drag
	DefaultZoomSensitivity   = 0.1  // log-distance per wheel step
	DefaultPanSensitivity    = 0.002
	DefaultMinDistance       = 0.01
	DefaultMaxDistance       = 900

	// restVelocity is the speed below which a damped axis snaps to rest.
	restVelocity = 1e-5

	// polarEpsilon keeps the camera off the poles so the view basis is
	// always defined.
	polarEpsilon = 1e-6
)

// axis tracks one input channel's velocity and decays it toward zero with
// a critically damped spring.
type axis struct {
	Velocity float64
	accel    float64
	spring   harmonica.Spring
}

func newAxis(fps int) axis {
	return axis{
		// Frequency 4 with damping 1 decelerates smoothly without overshoot.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// step returns the velocity to apply this tick and decays it.
func (a *axis) step() float64 {
	v := a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
	if math.Abs(a.Velocity) < restVelocity && math.Abs(a.accel) < restVelocity {
		a.Velocity, a.accel = 0, 0
	}
	return v
}

func (a *axis) stop() {
	a.Velocity, a.accel = 0, 0
}

func (a *axis) moving() bool {
	return a.Velocity != 0
}

// Orbit moves a camera around Target.
type Orbit struct {
	camera *render.Camera

	// Target is the point orbited and looked at.
	Target math3d.Vec3

	// AutoRotate spins the camera around the world Y axis at
	// AutoRotateSpeed; 1 is one revolution per minute at 60 FPS and
	// negative values turn the other way. It runs even when manual input
	// is disabled.
	AutoRotate      bool
	AutoRotateSpeed float64

	RotateSensitivity float64
	ZoomSensitivity   float64
	PanSensitivity    float64
	MinDistance       float64
	MaxDistance       float64

	enabled bool

	yaw, pitch, zoom axis
	panX, panY       axis
}

// NewOrbit creates enabled controls for cam, targeting the origin. fps is
// the nominal tick rate the damping springs are tuned for.
func NewOrbit(cam *render.Camera, fps int) *Orbit {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Orbit{
		camera:            cam,
		RotateSensitivity: DefaultRotateSensitivity,
		ZoomSensitivity:   DefaultZoomSensitivity,
		PanSensitivity:    DefaultPanSensitivity,
		MinDistance:       DefaultMinDistance,
		MaxDistance:       DefaultMaxDistance,
		enabled:           true,
		yaw:               newAxis(fps),
		pitch:             newAxis(fps),
		zoom:              newAxis(fps),
		panX:              newAxis(fps),
		panY:              newAxis(fps),
	}
}

// Camera returns the controlled camera.
func (o *Orbit) Camera() *render.Camera {
	return o.camera
}

// Enabled reports whether manual input is accepted.
func (o *Orbit) Enabled() bool {
	return o.enabled
}

// SetEnabled turns manual input on or off. Disabling also drops any
// remaining inertia so the camera stops where it is.
func (o *Orbit) SetEnabled(enabled bool) {
	o.enabled = enabled
	if !enabled {
		o.Stop()
	}
}

// SetTarget changes the orbit target and re-aims the camera at it.
func (o *Orbit) SetTarget(t math3d.Vec3) {
	o.Target = t
	o.Sync()
}

// Sync re-aims the camera at the target after the camera was moved from
// outside the controls.
func (o *Orbit) Sync() {
	o.camera.LookAt(o.Target)
}

// Rotate adds orbit velocity from a drag of dx, dy pixels.
func (o *Orbit) Rotate(dx, dy float64) {
	if !o.enabled {
		return
	}
	o.yaw.Velocity += dx * o.RotateSensitivity
	o.pitch.Velocity += dy * o.RotateSensitivity
}

// Zoom adds dolly velocity. Positive steps move toward the target.
func (o *Orbit) Zoom(steps float64) {
	if !o.enabled {
		return
	}
	o.zoom.Velocity += steps * o.ZoomSensitivity
}

// Pan adds velocity that slides the target in the view plane by a drag of
// dx, dy pixels, scaled by the distance to the target.
func (o *Orbit) Pan(dx, dy float64) {
	if !o.enabled {
		return
	}
	o.panX.Velocity += dx * o.PanSensitivity
	o.panY.Velocity += dy * o.PanSensitivity
}

// Stop drops all input inertia.
func (o *Orbit) Stop() {
	o.yaw.stop()
	o.pitch.stop()
	o.zoom.stop()
	o.panX.stop()
	o.panY.stop()
}

// Moving reports whether input inertia is still being applied.
func (o *Orbit) Moving() bool {
	return o.yaw.moving() || o.pitch.moving() || o.zoom.moving() ||
		o.panX.moving() || o.panY.moving()
}

// AutoRotationAngle returns the azimuth change auto-rotation applies over
// dt seconds. A non-finite speed does not rotate.
func (o *Orbit) AutoRotationAngle(dt float64) float64 {
	speed := o.AutoRotateSpeed
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return 0
	}
	return 2 * math.Pi / 60 * speed * dt
}

// Update advances the controls by dt seconds and moves the camera. It
// reports whether the camera moved. With no auto-rotation and no inertia
// the camera is left untouched, so poses set by other code survive
// exactly.
func (o *Orbit) Update(dt float64) bool {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		dt = 0
	}
	autoAngle := 0.0
	if o.AutoRotate && dt > 0 {
		autoAngle = o.AutoRotationAngle(dt)
	}
	if autoAngle == 0 && !o.Moving() {
		return false
	}

	offset := o.camera.Position.Sub(o.Target)
	radius := offset.Len()
	theta, phi := 0.0, math.Pi/2
	if radius > 0 {
		theta = math.Atan2(offset.X, offset.Z)
		phi = math.Acos(clamp(offset.Y/radius, -1, 1))
	}

	theta -= autoAngle
	theta -= o.yaw.step()
	phi -= o.pitch.step()
	phi = clamp(phi, polarEpsilon, math.Pi-polarEpsilon)

	if z := o.zoom.step(); z != 0 && radius > 0 {
		radius = clamp(radius*math.Exp(-z), o.MinDistance, o.MaxDistance)
	}

	px, py := o.panX.step(), o.panY.step()
	if px != 0 || py != 0 {
		scale := max(radius, o.MinDistance)
		right := o.camera.Right().Scale(-px * scale)
		up := o.camera.Up().Scale(py * scale)
		o.Target = o.Target.Add(right).Add(up)
	}

	sinPhi := math.Sin(phi)
	offset = math3d.V3(
		radius*sinPhi*math.Sin(theta),
		radius*math.Cos(phi),
		radius*sinPhi*math.Cos(theta),
	)
	o.camera.SetPosition(o.Target.Add(offset))
	o.camera.LookAt(o.Target)
	return true
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
