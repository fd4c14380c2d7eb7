package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointerClickVsDrag(t *testing.T) {
	tests := []struct {
		name      string
		down, up  [2]float64
		wantClick bool
	}{
		{"same spot", [2]float64{10, 10}, [2]float64{10, 10}, true},
		{"moved x", [2]float64{10, 10}, [2]float64{11, 10}, false},
		{"moved y", [2]float64{10, 10}, [2]float64{10, 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PointerTracker
			p.Down(tt.down[0], tt.down[1])
			assert.True(t, p.Pressed())
			assert.Equal(t, tt.wantClick, p.Up(tt.up[0], tt.up[1]))
			assert.False(t, p.Pressed())
		})
	}
}

func TestPointerReturnToPressPointIsClick(t *testing.T) {
	var p PointerTracker
	p.Down(5, 5)
	p.Move(20, 20)
	assert.True(t, p.Up(5, 5))
}

func TestPointerUpWithoutDown(t *testing.T) {
	var p PointerTracker
	assert.False(t, p.Up(1, 1))
}

func TestPointerMove(t *testing.T) {
	var p PointerTracker
	_, _, ok := p.Position()
	assert.False(t, ok)

	dx, dy, dragging := p.Move(3, 4)
	assert.Zero(t, dx)
	assert.Zero(t, dy)
	assert.False(t, dragging)

	p.Down(3, 4)
	dx, dy, dragging = p.Move(5, 1)
	assert.Equal(t, 2.0, dx)
	assert.Equal(t, -3.0, dy)
	assert.True(t, dragging)

	x, y, ok := p.Position()
	assert.True(t, ok)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 1.0, y)

	p.Leave()
	_, _, ok = p.Position()
	assert.False(t, ok)
	assert.False(t, p.Pressed())
}
