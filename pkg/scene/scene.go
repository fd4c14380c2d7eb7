package scene

import (
	"errors"
	"image/color"

	"github.com/taigrr/vitrine/pkg/math3d"
)

// ErrNoScene is returned when a model file contains no renderable scene.
var ErrNoScene = errors.New("model has no scene")

// GridName is the name given to the floor grid helper node.
const GridName = "__Grid"

// PointLight is a positional light.
type PointLight struct {
	Position  math3d.Vec3
	Intensity float64
}

// Scene is the root of everything drawn in one frame: the loaded model,
// helpers such as the floor grid, and lighting.
type Scene struct {
	Root  *Node
	Model *Model
	Grid  *Node

	Ambient float64
	Lights  []PointLight

	// Background is the clear color.
	Background color.RGBA
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		Root:       NewNode("scene", KindGroup),
		Ambient:    0.3,
		Background: color.RGBA{30, 30, 40, 255},
	}
}

// SetModel replaces the current model (and its grid helper) with m.
// Passing nil clears the scene.
func (s *Scene) SetModel(m *Model) {
	if s.Model != nil {
		s.Root.Remove(s.Model.Root)
	}
	if s.Grid != nil {
		s.Root.Remove(s.Grid)
		s.Grid = nil
	}
	s.Model = m
	if m != nil && m.Root != nil {
		s.Root.Add(m.Root)
	}
}

// SetLight places lighting relative to the model's longest dimension: a
// fixed ambient term plus one point light on the (1,1,1) diagonal.
func (s *Scene) SetLight(longest float64) {
	if longest <= 0 {
		longest = 1
	}
	s.Ambient = 0.3
	s.Lights = []PointLight{
		{Position: math3d.V3(longest, longest, longest), Intensity: 0.7},
	}
}

// LightDirection returns the unit direction toward the primary light,
// falling back to a fixed key light when none is set.
func (s *Scene) LightDirection() math3d.Vec3 {
	if len(s.Lights) == 0 {
		return math3d.V3(0.5, 1, 0.3).Normalize()
	}
	return s.Lights[0].Position.Normalize()
}

// AddGrid adds a floor grid of side size·ratio with the given number of
// divisions, centered under bounds at its lowest Y.
func (s *Scene) AddGrid(bounds math3d.Box3, ratio float64, divisions int, c color.RGBA) *Node {
	if s.Grid != nil {
		s.Root.Remove(s.Grid)
	}
	size := bounds.Size().MaxComponent() * ratio
	grid := NewNode(GridName, KindLine)
	grid.Geometry = gridGeometry(size, divisions)
	grid.Color = c

	center := bounds.Center()
	minY := 0.0
	if !bounds.IsEmpty() {
		minY = bounds.Min.Y
	}
	grid.SetPosition(math3d.V3(center.X, minY, center.Z))

	s.Root.Add(grid)
	s.Grid = grid
	return grid
}

func gridGeometry(size float64, divisions int) *Geometry {
	if divisions < 1 {
		divisions = 1
	}
	half := size / 2
	step := size / float64(divisions)

	var positions []math3d.Vec3
	var segments [][2]int
	for i := 0; i <= divisions; i++ {
		k := -half + float64(i)*step
		base := len(positions)
		positions = append(positions,
			math3d.V3(-half, 0, k), math3d.V3(half, 0, k),
			math3d.V3(k, 0, -half), math3d.V3(k, 0, half),
		)
		segments = append(segments, [2]int{base, base + 1}, [2]int{base + 2, base + 3})
	}
	return NewLineGeometry(positions, segments)
}
