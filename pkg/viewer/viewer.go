// Package viewer is the interactive model inspector: it frames the loaded
// model, runs the Home/Rotate/Explode toolbar actions, resolves hover and
// selection under the pointer and drives one frame per Tick.
//
// A Viewer is not safe for concurrent use. Input methods must be called
// between ticks, from the goroutine that calls Tick; Loop does this.
package viewer

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/taigrr/vitrine/pkg/controls"
	"github.com/taigrr/vitrine/pkg/explode"
	"github.com/taigrr/vitrine/pkg/math3d"
	"github.com/taigrr/vitrine/pkg/picking"
	"github.com/taigrr/vitrine/pkg/render"
	"github.com/taigrr/vitrine/pkg/scene"
	"github.com/taigrr/vitrine/pkg/tween"
	"go.uber.org/zap"
)

// ErrInvalidViewport is returned by Resize for a non-positive size.
var ErrInvalidViewport = errors.New("invalid viewport size")

// Renderer draws the scene as seen from the camera.
type Renderer interface {
	Render(s *scene.Scene, cam *render.Camera)
}

// Resizer is implemented by renderers that own a size-dependent surface.
type Resizer interface {
	Resize(width, height int)
}

// Scheduler is asked for the next frame at the start of every tick.
type Scheduler interface {
	RequestFrame()
}

// Options configures a Viewer.
type Options struct {
	FPS int

	FOVDegrees float64
	Near       float64
	Far        float64

	// PositionRatio places the framed camera at (d·r, 0, d·r) for a model
	// whose longest side is d.
	PositionRatio float64
	HomeDuration  time.Duration

	// RotateSpeed and ExplodePower are the slider defaults restored when
	// their action is switched away from.
	RotateSpeed  float64
	ExplodePower float64
	ExplodeScale float64

	// AnimationTimeScale scales the tick delta fed to model clips.
	AnimationTimeScale float64

	GridRatio     float64
	GridDivisions int
	GridColor     color.RGBA

	Background   color.RGBA
	HoverLighten float64
	SelectColor  color.RGBA

	Logger *zap.Logger
}

// DefaultOptions returns the stock viewer settings.
func DefaultOptions() Options {
	return Options{
		FPS:                controls.DefaultFPS,
		FOVDegrees:         render.DefaultFOVDegrees,
		Near:               render.DefaultNear,
		Far:                render.DefaultFar,
		PositionRatio:      0.9,
		HomeDuration:       300 * time.Millisecond,
		RotateSpeed:        2,
		ExplodePower:       0,
		ExplodeScale:       explode.DefaultScale,
		AnimationTimeScale: 1.0 / 3,
		GridRatio:          3,
		GridDivisions:      20,
		GridColor:          color.RGBA{R: 90, G: 90, B: 100, A: 255},
		Background:         color.RGBA{R: 30, G: 30, B: 40, A: 255},
		HoverLighten:       picking.DefaultLighten,
		SelectColor:        color.RGBA{R: 255, G: 136, B: 0, A: 255},
	}
}

// Viewer holds all state of one inspection session.
type Viewer struct {
	opts Options
	log  *zap.Logger

	scene       *scene.Scene
	camera      *render.Camera
	controls    *controls.Orbit
	tweens      *tween.Engine
	highlighter *picking.Highlighter
	pointer     picking.PointerTracker
	exploder    *explode.Exploder
	mixer       *scene.Mixer
	clock       Clock

	renderer  Renderer
	scheduler Scheduler

	rect          picking.Rect
	width, height int

	longest float64
	pivot   math3d.Vec3

	action       Action
	inAction     bool
	rotateSpeed  float64
	explodePower float64
}

// New creates a viewer with an empty scene. r may be nil.
func New(opts Options, r Renderer) *Viewer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cam := render.NewCamera()
	cam.SetFOV(opts.FOVDegrees * math.Pi / 180)
	cam.SetClipPlanes(opts.Near, opts.Far)

	s := scene.New()
	s.Background = opts.Background

	hl := picking.NewHighlighter()
	hl.Lighten = opts.HoverLighten
	hl.SelectColor = opts.SelectColor

	ex := explode.New()
	ex.Scale = opts.ExplodeScale

	v := &Viewer{
		opts:         opts,
		log:          log,
		scene:        s,
		camera:       cam,
		controls:     controls.NewOrbit(cam, opts.FPS),
		tweens:       tween.New(),
		highlighter:  hl,
		exploder:     ex,
		renderer:     r,
		rotateSpeed:  -opts.RotateSpeed,
		explodePower: opts.ExplodePower,
	}
	v.Frame(0)
	return v
}

// Scene returns the scene being viewed.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Camera returns the viewing camera.
func (v *Viewer) Camera() *render.Camera { return v.camera }

// Controls returns the orbit controls.
func (v *Viewer) Controls() *controls.Orbit { return v.controls }

// Highlighter returns the hover and selection state.
func (v *Viewer) Highlighter() *picking.Highlighter { return v.highlighter }

// Exploder returns the explode transform state.
func (v *Viewer) Exploder() *explode.Exploder { return v.exploder }

// Clock returns the frame clock.
func (v *Viewer) Clock() *Clock { return &v.clock }

// Longest returns the longest side of the loaded model's bounds.
func (v *Viewer) Longest() float64 { return v.longest }

// Rect returns the canvas rectangle pointer positions are mapped through.
func (v *Viewer) Rect() picking.Rect { return v.rect }

// SetScheduler installs the frame scheduler.
func (v *Viewer) SetScheduler(s Scheduler) { v.scheduler = s }

// Load replaces the viewed model. All action, highlight and explode state
// is reset, lighting and the floor grid are fitted to the model and the
// camera is framed. A nil model clears the scene.
func (v *Viewer) Load(m *scene.Model) {
	v.highlighter.Reset()
	v.exploder.Reset()
	v.tweens.CancelAll()
	v.action, v.inAction = ActionDefault, false
	v.rotateSpeed = -v.opts.RotateSpeed
	v.explodePower = v.opts.ExplodePower
	v.controls.AutoRotate = false
	v.controls.AutoRotateSpeed = v.rotateSpeed
	v.controls.SetEnabled(true)

	v.scene.SetModel(m)
	v.mixer = nil
	v.longest = 0
	v.pivot = math3d.Zero3()

	if m != nil {
		bounds := m.Bounds()
		v.longest = bounds.Size().MaxComponent()
		v.pivot = bounds.Center()
		if !bounds.IsEmpty() {
			v.scene.AddGrid(bounds, v.opts.GridRatio, v.opts.GridDivisions, v.opts.GridColor)
		}
		v.mixer = scene.NewMixer(m.Clips)
		v.log.Info("model loaded",
			zap.String("name", m.Name),
			zap.Float64("longest", v.longest),
			zap.Int("clips", len(m.Clips)),
		)
	}
	v.scene.SetLight(v.longest)
	v.Frame(v.longest)
}

// FramingPosition returns the camera position that frames a model of the
// current longest dimension.
func (v *Viewer) FramingPosition() math3d.Vec3 {
	d := v.longest * v.opts.PositionRatio
	return math3d.V3(d, 0, d)
}

// Frame places the camera at (d·r, 0, d·r) aimed at the origin, refreshes
// the projection and re-targets the orbit controls.
func (v *Viewer) Frame(longest float64) {
	if math.IsNaN(longest) || math.IsInf(longest, 0) || longest < 0 {
		longest = 0
	}
	v.longest = longest
	v.camera.SetPosition(v.FramingPosition())
	v.camera.LookAt(math3d.Zero3())
	v.camera.UpdateProjectionMatrix()
	v.controls.SetTarget(math3d.Zero3())
}

// Resize sets the viewport size in pixels. A non-positive size is
// rejected with ErrInvalidViewport and changes nothing.
func (v *Viewer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	v.width, v.height = width, height
	v.camera.SetAspectRatio(float64(width) / float64(height))
	v.camera.UpdateProjectionMatrix()
	v.rect = picking.Rect{Width: float64(width), Height: float64(height)}
	if rs, ok := v.renderer.(Resizer); ok {
		rs.Resize(width, height)
	}
	return nil
}

// Size returns the viewport size.
func (v *Viewer) Size() (width, height int) {
	return v.width, v.height
}

// PointerMove records the pointer position. Moving with the button held
// orbits the camera.
func (v *Viewer) PointerMove(x, y float64) {
	dx, dy, dragging := v.pointer.Move(x, y)
	if dragging {
		v.controls.Rotate(dx, dy)
	}
}

// PointerDown records a button press.
func (v *Viewer) PointerDown(x, y float64) {
	v.pointer.Down(x, y)
}

// PointerUp records a button release. A release where the press happened
// is a click and resolves the selection at that position; a drag leaves
// the selection alone.
func (v *Viewer) PointerUp(x, y float64) {
	if !v.pointer.Up(x, y) {
		return
	}
	v.highlighter.Click(v.pick(x, y))
	if n := v.highlighter.Selected(); n != nil {
		v.log.Debug("selected", zap.String("node", n.Name), zap.Uint64("id", uint64(n.ID)))
	}
}

// PointerLeave forgets the pointer, clearing hover on the next tick.
func (v *Viewer) PointerLeave() {
	v.pointer.Leave()
}

// Wheel zooms by delta steps; positive moves closer.
func (v *Viewer) Wheel(delta float64) {
	v.controls.Zoom(delta)
}

// Orbit rotates the camera as if dragged by dx, dy pixels.
func (v *Viewer) Orbit(dx, dy float64) {
	v.controls.Rotate(dx, dy)
}

// Pan slides the orbit target as if dragged by dx, dy pixels.
func (v *Viewer) Pan(dx, dy float64) {
	v.controls.Pan(dx, dy)
}

// Deselect clears the selection.
func (v *Viewer) Deselect() {
	v.highlighter.Deselect()
}

// Pick returns the model nodes under the given canvas position.
func (v *Viewer) Pick(x, y float64) []picking.Hit {
	return v.pick(x, y)
}

func (v *Viewer) pick(x, y float64) []picking.Hit {
	if v.scene.Model == nil {
		return nil
	}
	return picking.Pick(x, y, v.rect, v.camera, v.scene.Model.Root)
}

// Tick runs one frame: transitions advance and fire completions, the next
// frame is requested, hover is resolved at the last pointer position,
// model clips advance, the controls move the camera and the scene is
// rendered.
func (v *Viewer) Tick(now time.Time) {
	dt := v.clock.Tick(now).Seconds()

	v.tweens.Update(now)

	if v.scheduler != nil {
		v.scheduler.RequestFrame()
	}

	if x, y, ok := v.pointer.Position(); ok {
		v.highlighter.UpdateHover(v.pick(x, y))
	} else {
		v.highlighter.UpdateHover(nil)
	}

	v.mixer.Update(dt * v.opts.AnimationTimeScale)

	v.controls.Update(dt)

	if v.renderer != nil {
		v.renderer.Render(v.scene, v.camera)
	}
}
