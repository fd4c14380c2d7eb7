package main

import (
	"github.com/taigrr/vitrine/pkg/render"
	"github.com/taigrr/vitrine/pkg/viewer"
)

const (
	rotateSpeedStep  = 0.5
	maxRotateSpeed   = 10
	explodePowerStep = 0.1
	orbitStep        = 40 // pixels of simulated drag per arrow press
)

// session is the terminal-side state touched by key bindings. Bindings run
// on the loop goroutine.
type session struct {
	viewer   *viewer.Viewer
	renderer *render.SceneRenderer
	hud      *HUD
	quit     func()
}

type binding struct {
	keys []string
	help string
	run  func(s *session)
}

var bindings = []binding{
	{keys: []string{"h"}, help: "Home", run: func(s *session) { s.viewer.Click(viewer.ActionHome) }},
	{keys: []string{"r"}, help: "Toggle auto-rotate", run: func(s *session) { s.viewer.Click(viewer.ActionRotate) }},
	{keys: []string{"e"}, help: "Toggle explode", run: func(s *session) { s.viewer.Click(viewer.ActionExplode) }},
	{keys: []string{"]"}, help: "Rotate faster", run: func(s *session) { nudgeRotateSpeed(s.viewer, rotateSpeedStep) }},
	{keys: []string{"["}, help: "Rotate slower", run: func(s *session) { nudgeRotateSpeed(s.viewer, -rotateSpeedStep) }},
	{keys: []string{"+", "="}, help: "Explode further", run: func(s *session) {
		s.viewer.SetExplodePower(s.viewer.ExplodePower() + explodePowerStep)
	}},
	{keys: []string{"-", "_"}, help: "Explode less", run: func(s *session) {
		s.viewer.SetExplodePower(s.viewer.ExplodePower() - explodePowerStep)
	}},
	{keys: []string{"left", "a"}, help: "Orbit left", run: func(s *session) { s.viewer.Orbit(-orbitStep, 0) }},
	{keys: []string{"right", "d"}, help: "Orbit right", run: func(s *session) { s.viewer.Orbit(orbitStep, 0) }},
	{keys: []string{"up", "w"}, help: "Orbit up", run: func(s *session) { s.viewer.Orbit(0, -orbitStep) }},
	{keys: []string{"down", "s"}, help: "Orbit down", run: func(s *session) { s.viewer.Orbit(0, orbitStep) }},
	{keys: []string{"x"}, help: "Toggle wireframe", run: func(s *session) {
		if s.renderer != nil {
			s.renderer.Wireframe = !s.renderer.Wireframe
		}
	}},
	{keys: []string{"?", "shift+/"}, help: "Toggle HUD", run: func(s *session) { s.hud.Visible = !s.hud.Visible }},
	{keys: []string{"escape"}, help: "Deselect, or quit with nothing selected", run: func(s *session) {
		if s.viewer.Highlighter().Selected() != nil {
			s.viewer.Deselect()
			return
		}
		s.quit()
	}},
	{keys: []string{"q", "ctrl+c"}, help: "Quit", run: func(s *session) { s.quit() }},
}

// match returns the first binding accepted by matches, which is handed
// each binding's key names.
func match(matches func(keys ...string) bool) *binding {
	for i := range bindings {
		if matches(bindings[i].keys...) {
			return &bindings[i]
		}
	}
	return nil
}

func nudgeRotateSpeed(v *viewer.Viewer, step float64) {
	speed := -v.RotateSpeed() + step
	v.SetRotateSpeed(max(-maxRotateSpeed, min(maxRotateSpeed, speed)))
}
