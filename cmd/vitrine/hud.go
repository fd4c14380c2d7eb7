package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/vitrine/pkg/viewer"
)

var (
	hudBg     = color.RGBA{0, 0, 0, 255}
	hudFg     = color.RGBA{230, 230, 230, 255}
	hudGreen  = color.RGBA{90, 220, 120, 255}
	hudYellow = color.RGBA{240, 200, 80, 255}
)

// HUD renders an overlay with model info and viewer state
type HUD struct {
	filename  string
	Visible   bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(filename string, visible bool) *HUD {
	return &HUD{
		filename: filename,
		Visible:  visible,
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS(now time.Time) {
	if h.fpsTime.IsZero() {
		h.fpsTime = now
	}
	h.fpsFrames++
	elapsed := now.Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 { return h.fps }

// SetFilename changes the title shown after a reload.
func (h *HUD) SetFilename(name string) { h.filename = name }

// Status returns the top and bottom HUD lines.
func (h *HUD) Status(v *viewer.Viewer, triangles int) (top, bottom string) {
	top = fmt.Sprintf(" %.0f FPS | %s | %d tris ", h.fps, h.filename, triangles)

	action := "-"
	if a, ok := v.Action(); ok {
		action = a.String()
	}
	hovered, selected := "-", "-"
	if n := v.Highlighter().Hovered(); n != nil {
		hovered = n.Name
	}
	if n := v.Highlighter().Selected(); n != nil {
		selected = n.Name
	}
	bottom = fmt.Sprintf(" [%s] speed %.1f  power %.2f | hover %s | selected %s | h r e ? ",
		action, -v.RotateSpeed(), v.ExplodePower(), hovered, selected)
	return top, bottom
}

// Draw writes the overlay onto the first and last rows of area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, v *viewer.Viewer, triangles int) {
	if !h.Visible || area.Max.Y-area.Min.Y < 2 {
		return
	}
	top, bottom := h.Status(v, triangles)
	drawText(scr, area, area.Min.Y, top, hudGreen)
	fg := hudFg
	if _, ok := v.Action(); ok {
		fg = hudYellow
	}
	drawText(scr, area, area.Max.Y-1, bottom, fg)
}

func drawText(scr uv.Screen, area uv.Rectangle, row int, text string, fg color.Color) {
	col := area.Min.X
	for _, r := range text {
		if col >= area.Max.X {
			return
		}
		scr.SetCell(col, row, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: fg, Bg: hudBg},
		})
		col++
	}
}
