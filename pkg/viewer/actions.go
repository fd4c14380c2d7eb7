package viewer

import (
	"math"

	"github.com/taigrr/vitrine/pkg/math3d"
	"github.com/taigrr/vitrine/pkg/tween"
	"go.uber.org/zap"
)

// Action is a toolbar action.
type Action int

const (
	ActionDefault Action = iota
	ActionHome
	ActionRotate
	ActionExplode
)

func (a Action) String() string {
	switch a {
	case ActionHome:
		return "home"
	case ActionRotate:
		return "rotate"
	case ActionExplode:
		return "explode"
	default:
		return "default"
	}
}

// homeKey identifies the camera flight in the transition engine.
const homeKey = "camera.home"

// Action returns the active toolbar action and whether it is running.
func (v *Viewer) Action() (Action, bool) {
	return v.action, v.inAction
}

// Click handles a toolbar click. Switching away from a running action
// first undoes it. Clicking the running action again turns it off.
func (v *Viewer) Click(target Action) {
	prev := v.action
	if prev != target {
		v.reset(prev)
	}

	wasRunning := prev == target && v.inAction
	if wasRunning {
		v.action, v.inAction = ActionDefault, false
	} else {
		v.action, v.inAction = target, true
	}
	v.log.Debug("toolbar click",
		zap.Stringer("target", target),
		zap.Stringer("previous", prev),
		zap.Bool("toggledOff", wasRunning),
	)

	switch target {
	case ActionHome:
		v.AnimateHome()
	case ActionRotate:
		if wasRunning {
			v.stopAutoRotate()
		} else {
			v.startAutoRotate()
		}
	case ActionExplode:
		if wasRunning {
			v.applyExplode(0)
		} else {
			v.applyExplode(v.explodePower)
		}
	}
}

// reset undoes the effects of a.
func (v *Viewer) reset(a Action) {
	switch a {
	case ActionRotate:
		v.stopAutoRotate()
		v.rotateSpeed = -v.opts.RotateSpeed
		v.AnimateHome()
	case ActionExplode:
		v.applyExplode(0)
		v.explodePower = v.opts.ExplodePower
		v.AnimateHome()
	}
}

func (v *Viewer) startAutoRotate() {
	v.controls.SetEnabled(false)
	v.controls.AutoRotate = true
	v.controls.AutoRotateSpeed = v.rotateSpeed
	v.controls.SetTarget(math3d.Zero3())
}

func (v *Viewer) stopAutoRotate() {
	v.controls.AutoRotate = false
	if !v.tweens.Running(homeKey) {
		v.controls.SetEnabled(true)
	}
}

func (v *Viewer) applyExplode(power float64) {
	if v.scene.Model == nil {
		return
	}
	v.exploder.Set(v.scene.Model.Root, power, v.pivot)
}

// RotateSpeed returns the auto-rotate speed as applied to the controls.
// It is the negated slider value.
func (v *Viewer) RotateSpeed() float64 {
	return v.rotateSpeed
}

// SetRotateSpeed applies a rotate speed slider value. Non-finite values
// are ignored.
func (v *Viewer) SetRotateSpeed(speed float64) {
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return
	}
	v.rotateSpeed = -speed
	v.controls.AutoRotateSpeed = v.rotateSpeed
}

// ExplodePower returns the explode slider value.
func (v *Viewer) ExplodePower() float64 {
	return v.explodePower
}

// SetExplodePower applies an explode slider value, clamped to [0,1] with
// NaN read as 0. The model only moves while Explode is running.
func (v *Viewer) SetExplodePower(power float64) {
	if math.IsNaN(power) {
		power = 0
	}
	v.explodePower = max(0, min(1, power))
	if v.action == ActionExplode && v.inAction {
		v.applyExplode(v.explodePower)
	}
}

// AnimateHome flies the camera back to the framing position, aiming at the
// origin throughout. Manual orbit is disabled during the flight and turned
// back on when it lands, unless auto-rotate is running.
func (v *Viewer) AnimateHome() {
	v.controls.SetEnabled(false)
	v.controls.Target = math3d.Zero3()

	origin := math3d.Zero3()
	tween.Vec3(v.tweens, homeKey, v.camera.Position, v.FramingPosition(), v.opts.HomeDuration,
		func(p math3d.Vec3) {
			v.camera.SetPosition(p)
			v.camera.LookAt(origin)
		},
		func() {
			if !v.controls.AutoRotate {
				v.controls.SetEnabled(true)
			}
			v.log.Debug("camera home")
		},
	)
}
