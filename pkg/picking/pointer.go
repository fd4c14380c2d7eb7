package picking

// PointerTracker follows one pointer and tells clicks from drags: a press
// and release at the same coordinates is a click, anything else is a drag.
type PointerTracker struct {
	x, y         float64
	known        bool
	down         bool
	downX, downY float64
}

// Position returns the last known pointer position.
func (p *PointerTracker) Position() (x, y float64, ok bool) {
	return p.x, p.y, p.known
}

// Pressed reports whether the button is held.
func (p *PointerTracker) Pressed() bool {
	return p.down
}

// Move records a new pointer position and returns the offset from the
// previous one. dragging is true while the button is held.
func (p *PointerTracker) Move(x, y float64) (dx, dy float64, dragging bool) {
	if p.known {
		dx, dy = x-p.x, y-p.y
	}
	p.x, p.y, p.known = x, y, true
	return dx, dy, p.down
}

// Down records a button press.
func (p *PointerTracker) Down(x, y float64) {
	p.x, p.y, p.known = x, y, true
	p.down = true
	p.downX, p.downY = x, y
}

// Up records a button release and reports whether the press was a click.
func (p *PointerTracker) Up(x, y float64) bool {
	p.x, p.y, p.known = x, y, true
	if !p.down {
		return false
	}
	p.down = false
	return x == p.downX && y == p.downY
}

// Leave forgets the pointer position, e.g. when it leaves the canvas.
func (p *PointerTracker) Leave() {
	p.known = false
	p.down = false
}
