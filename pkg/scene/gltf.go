package scene

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/vitrine/pkg/math3d"
)

// ErrUnsupportedFormat is returned for files that are neither .glb nor .gltf.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// DefaultColor is used for primitives without a material.
var DefaultColor = color.RGBA{200, 200, 200, 255}

// Model is a loaded model: a group node holding the file's scene roots, plus
// any animation clips targeting nodes in that subtree.
type Model struct {
	Name  string
	Root  *Node
	Clips []*Clip
}

// Bounds returns the world-space bounding box of the model.
func (m *Model) Bounds() math3d.Box3 {
	if m == nil || m.Root == nil {
		return math3d.EmptyBox3()
	}
	m.Root.UpdateWorldMatrix()
	return m.Root.Bounds()
}

// GLTFLoader loads GLTF/GLB files into a node hierarchy.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals for primitives without them.
	CalculateNormals bool

	// DefaultColor is used when a primitive has no material.
	DefaultColor color.RGBA
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		DefaultColor:     DefaultColor,
	}
}

// LoadGLTF loads a .glb or .gltf file with default options.
func LoadGLTF(path string) (*Model, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file.
func (l *GLTFLoader) Load(path string) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	model, err := l.Build(doc)
	if err != nil {
		return nil, err
	}
	model.Name = filepath.Base(path)
	model.Root.Name = model.Name
	return model, nil
}

// Build converts a decoded document into a Model.
func (l *GLTFLoader) Build(doc *gltf.Document) (*Model, error) {
	colors := make([]color.RGBA, len(doc.Materials))
	for i, m := range doc.Materials {
		colors[i] = l.DefaultColor
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			colors[i] = colorFromFactor(pbr.BaseColorFactorOrDefault())
		}
	}

	// One node per primitive, per mesh.
	prims := make([][]*Node, len(doc.Meshes))
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			n, err := l.processPrimitive(doc, prim, colors)
			if err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
			}
			if n == nil {
				continue
			}
			n.Name = fmt.Sprintf("%s_%d", m.Name, pi)
			prims[mi] = append(prims[mi], n)
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}

		var n *Node
		var meshPrims []*Node
		if gn.Mesh != nil && *gn.Mesh < len(prims) {
			meshPrims = prims[*gn.Mesh]
		}
		if len(meshPrims) == 1 {
			// Single primitive: the node itself is the drawable. Primitive
			// nodes are shared between instances, so clone per use.
			n = meshPrims[0].clone()
			n.Name = name
		} else {
			n = NewNode(name, KindGroup)
			for _, p := range meshPrims {
				n.Add(p.clone())
			}
		}

		if gn.Matrix != [16]float64{} && gn.Matrix != gltf.DefaultMatrix {
			t, r, s := math3d.Mat4(gn.Matrix).Decompose()
			n.SetPosition(t)
			n.SetRotation(r)
			n.SetScale(s)
		} else {
			t := gn.TranslationOrDefault()
			r := gn.RotationOrDefault()
			s := gn.ScaleOrDefault()
			n.SetPosition(math3d.V3(t[0], t[1], t[2]))
			n.SetRotation(math3d.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]})
			n.SetScale(math3d.V3(s[0], s[1], s[2]))
		}
		nodes[i] = n
	}

	hasParent := make([]bool, len(nodes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) && !hasParent[c] && c != i {
				nodes[i].Add(nodes[c])
				hasParent[c] = true
			}
		}
	}

	root := NewNode("model", KindGroup)
	var gs *gltf.Scene
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		gs = doc.Scenes[*doc.Scene]
	case len(doc.Scenes) > 0:
		gs = doc.Scenes[0]
	}
	switch {
	case gs != nil:
		if gs.Name != "" {
			root.Name = gs.Name
		}
		addRoots(root, nodes, gs.Nodes)
	default:
		for i, n := range nodes {
			if !hasParent[i] {
				root.Add(n)
			}
		}
	}
	if len(root.Children()) == 0 {
		return nil, ErrNoScene
	}

	clips, err := readClips(doc, nodes)
	if err != nil {
		return nil, err
	}

	return &Model{Name: root.Name, Root: root, Clips: clips}, nil
}

func addRoots(root *Node, nodes []*Node, idx []int) {
	for _, i := range idx {
		if i >= 0 && i < len(nodes) && nodes[i].Parent() == nil {
			root.Add(nodes[i])
		}
	}
}

// processPrimitive extracts geometry from a GLTF primitive. Unsupported
// primitive modes yield a nil node.
func (l *GLTFLoader) processPrimitive(doc *gltf.Document, prim *gltf.Primitive, colors []color.RGBA) (*Node, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	raw, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	positions := make([]math3d.Vec3, len(raw))
	for i, p := range raw {
		positions[i] = math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
	}

	var indices []int
	if prim.Indices != nil {
		idx, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		indices = make([]int, len(idx))
		for i, x := range idx {
			indices[i] = int(x)
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}
	for _, i := range indices {
		if i < 0 || i >= len(positions) {
			return nil, fmt.Errorf("index %d out of range (%d vertices)", i, len(positions))
		}
	}

	c := l.DefaultColor
	if prim.Material != nil && *prim.Material < len(colors) {
		c = colors[*prim.Material]
	}

	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		// GLTF uses CCW winding for front-facing, but our engine uses CW
		// (due to Y-flip in screen space), so we reverse the winding here
		faces := make([][3]int, 0, len(indices)/3)
		for i := 0; i+2 < len(indices); i += 3 {
			faces = append(faces, [3]int{indices[i], indices[i+2], indices[i+1]})
		}
		geom := &Geometry{Positions: positions, Faces: faces}
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err := modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
			if len(normals) == len(positions) {
				geom.Normals = make([]math3d.Vec3, len(normals))
				for i, n := range normals {
					geom.Normals[i] = math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))
				}
			}
		}
		if geom.Normals == nil && l.CalculateNormals {
			geom.CalculateSmoothNormals()
		}
		geom.CalculateBounds()
		return NewMesh("", geom, c), nil

	case gltf.PrimitiveLines:
		segments := make([][2]int, 0, len(indices)/2)
		for i := 0; i+1 < len(indices); i += 2 {
			segments = append(segments, [2]int{indices[i], indices[i+1]})
		}
		n := NewNode("", KindLine)
		n.Geometry = NewLineGeometry(positions, segments)
		n.Color = c
		return n, nil
	}

	// Points, strips and fans are skipped.
	return nil, nil
}

func colorFromFactor(f [4]float64) color.RGBA {
	return color.RGBA{
		R: unitToByte(f[0]),
		G: unitToByte(f[1]),
		B: unitToByte(f[2]),
		A: unitToByte(f[3]),
	}
}

func unitToByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// clone copies a primitive node. Geometry is shared.
func (n *Node) clone() *Node {
	c := NewNode(n.Name, n.Kind)
	c.Geometry = n.Geometry
	c.Color = n.Color
	c.SetPosition(n.position)
	c.SetRotation(n.rotation)
	c.SetScale(n.scale)
	return c
}

// readClips converts animations into clips bound to the built nodes.
// Channels targeting morph weights or missing nodes are dropped.
func readClips(doc *gltf.Document, nodes []*Node) ([]*Clip, error) {
	var clips []*Clip
	for ai, a := range doc.Animations {
		clip := &Clip{Name: a.Name}
		if clip.Name == "" {
			clip.Name = fmt.Sprintf("animation_%d", ai)
		}
		for _, ch := range a.Channels {
			if ch.Target.Node == nil || *ch.Target.Node >= len(nodes) || ch.Sampler >= len(a.Samplers) {
				continue
			}
			var path Path
			switch ch.Target.Path {
			case gltf.TRSTranslation:
				path = PathTranslation
			case gltf.TRSRotation:
				path = PathRotation
			case gltf.TRSScale:
				path = PathScale
			default:
				continue
			}

			s := a.Samplers[ch.Sampler]
			times, _, err := readFloats(doc, s.Input)
			if err != nil {
				return nil, fmt.Errorf("animation %q input: %w", clip.Name, err)
			}
			values, stride, err := readFloats(doc, s.Output)
			if err != nil {
				// Normalized integer outputs are not supported.
				continue
			}
			if stride != path.stride() {
				continue
			}
			if s.Interpolation == gltf.InterpolationCubicSpline {
				values = cubicKeyValues(values, stride)
			}

			clip.Channels = append(clip.Channels, &Channel{
				Node:   nodes[*ch.Target.Node],
				Path:   path,
				Step:   s.Interpolation == gltf.InterpolationStep,
				Times:  times,
				Values: values,
			})
			if n := len(times); n > 0 && times[n-1] > clip.Duration {
				clip.Duration = times[n-1]
			}
		}
		if len(clip.Channels) > 0 {
			clips = append(clips, clip)
		}
	}
	return clips, nil
}

// readFloats reads a float accessor into a flat slice and reports the number
// of components per element.
func readFloats(doc *gltf.Document, idx int) ([]float64, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[idx], nil)
	if err != nil {
		return nil, 0, err
	}
	switch v := data.(type) {
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, 1, nil
	case [][3]float32:
		out := make([]float64, 0, len(v)*3)
		for _, x := range v {
			out = append(out, float64(x[0]), float64(x[1]), float64(x[2]))
		}
		return out, 3, nil
	case [][4]float32:
		out := make([]float64, 0, len(v)*4)
		for _, x := range v {
			out = append(out, float64(x[0]), float64(x[1]), float64(x[2]), float64(x[3]))
		}
		return out, 4, nil
	}
	return nil, 0, fmt.Errorf("unexpected accessor data type: %T", data)
}

// cubicKeyValues keeps only the value of each (in-tangent, value,
// out-tangent) triplet; cubic curves are then sampled linearly.
func cubicKeyValues(values []float64, stride int) []float64 {
	out := make([]float64, 0, len(values)/3)
	for i := 0; i+3*stride <= len(values); i += 3 * stride {
		out = append(out, values[i+stride:i+2*stride]...)
	}
	return out
}
