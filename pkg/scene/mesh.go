// Package scene provides the mesh, morph target and renderer model the
// blendshape baker reads and rewrites.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-shapebake/pkg/math"
)

// Mesh errors.
var (
	ErrShapeIndex     = errors.New("blendshape index out of range")
	ErrShapeFrame     = errors.New("blendshape frame out of range")
	ErrDeltaLength    = errors.New("delta array length does not match vertex count")
	ErrDuplicateShape = errors.New("blendshape name already exists")
	ErrEmptyShapeName = errors.New("blendshape name is empty")
	ErrNoShapeFrames  = errors.New("blendshape has no frames")
)

// ShapeFrame is one weight-keyed delta set of a morph target.
type ShapeFrame struct {
	Weight   float32     // Frame weight (0-100)
	Vertices []math.Vec3 // Per-vertex position delta
	Normals  []math.Vec3 // Per-vertex normal delta
	Tangents []math.Vec3 // Per-vertex tangent delta
}

// BlendShape is a named morph target.
type BlendShape struct {
	Name   string
	Frames []ShapeFrame
}

// Mesh holds vertex data and an ordered list of morph targets.
type Mesh struct {
	Name     string
	Vertices []math.Vec3
	Normals  []math.Vec3
	Tangents []math.Vec3
	Indices  []uint32
	Shapes   []BlendShape
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// ShapeCount returns the number of morph targets.
func (m *Mesh) ShapeCount() int {
	return len(m.Shapes)
}

// ShapeName returns the name of morph target i, or "" when out of range.
func (m *Mesh) ShapeName(i int) string {
	if i < 0 || i >= len(m.Shapes) {
		return ""
	}
	return m.Shapes[i].Name
}

// ShapeIndex returns the index of the named morph target, or -1.
func (m *Mesh) ShapeIndex(name string) int {
	for i := range m.Shapes {
		if m.Shapes[i].Name == name {
			return i
		}
	}
	return -1
}

// ShapeFrameDeltas copies the deltas of one frame of morph target i into the
// given buffers. Any buffer may be nil. Buffers must be vertex-count sized.
func (m *Mesh) ShapeFrameDeltas(i, frame int, vertices, normals, tangents []math.Vec3) error {
	if i < 0 || i >= len(m.Shapes) {
		return fmt.Errorf("%w: %d of %d", ErrShapeIndex, i, len(m.Shapes))
	}
	shape := &m.Shapes[i]
	if frame < 0 || frame >= len(shape.Frames) {
		return fmt.Errorf("%w: shape %q frame %d of %d", ErrShapeFrame, shape.Name, frame, len(shape.Frames))
	}
	f := &shape.Frames[frame]

	n := m.VertexCount()
	for _, pair := range [...]struct {
		dst, src []math.Vec3
	}{
		{vertices, f.Vertices},
		{normals, f.Normals},
		{tangents, f.Tangents},
	} {
		if pair.dst == nil {
			continue
		}
		if len(pair.dst) != n {
			return fmt.Errorf("%w: buffer %d, mesh %d", ErrDeltaLength, len(pair.dst), n)
		}
		// Missing normal/tangent deltas read as zero.
		if pair.src == nil {
			clear(pair.dst)
			continue
		}
		if len(pair.src) != n {
			return fmt.Errorf("%w: shape %q has %d deltas, mesh %d", ErrDeltaLength, shape.Name, len(pair.src), n)
		}
		copy(pair.dst, pair.src)
	}
	return nil
}

// AddShapeFrame appends a new single-frame morph target. The delta arrays are
// copied. Existing morph targets keep their indices.
func (m *Mesh) AddShapeFrame(name string, weight float32, vertices, normals, tangents []math.Vec3) error {
	if name == "" {
		return ErrEmptyShapeName
	}
	if m.ShapeIndex(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateShape, name)
	}
	n := m.VertexCount()
	for _, d := range [][]math.Vec3{vertices, normals, tangents} {
		if d != nil && len(d) != n {
			return fmt.Errorf("%w: shape %q has %d deltas, mesh %d", ErrDeltaLength, name, len(d), n)
		}
	}

	m.Shapes = append(m.Shapes, BlendShape{
		Name: name,
		Frames: []ShapeFrame{{
			Weight:   weight,
			Vertices: cloneVecs(vertices),
			Normals:  cloneVecs(normals),
			Tangents: cloneVecs(tangents),
		}},
	})
	return nil
}

// Validate checks that every morph target has at least one frame and that
// every delta array matches the vertex count.
func (m *Mesh) Validate() error {
	n := m.VertexCount()
	for _, attr := range []struct {
		name string
		data []math.Vec3
	}{{"normals", m.Normals}, {"tangents", m.Tangents}} {
		if attr.data != nil && len(attr.data) != n {
			return fmt.Errorf("mesh %q: %w: %s has %d entries, want %d", m.Name, ErrDeltaLength, attr.name, len(attr.data), n)
		}
	}
	for i := range m.Shapes {
		s := &m.Shapes[i]
		if s.Name == "" {
			return fmt.Errorf("mesh %q shape %d: %w", m.Name, i, ErrEmptyShapeName)
		}
		if len(s.Frames) == 0 {
			return fmt.Errorf("mesh %q shape %q: %w", m.Name, s.Name, ErrNoShapeFrames)
		}
		for fi, f := range s.Frames {
			for _, d := range [][]math.Vec3{f.Vertices, f.Normals, f.Tangents} {
				if d != nil && len(d) != n {
					return fmt.Errorf("mesh %q shape %q frame %d: %w", m.Name, s.Name, fi, ErrDeltaLength)
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh. Morph target order is preserved,
// so weight arrays indexed against m stay valid against the clone.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Name:     m.Name,
		Vertices: cloneVecs(m.Vertices),
		Normals:  cloneVecs(m.Normals),
		Tangents: cloneVecs(m.Tangents),
		Shapes:   make([]BlendShape, len(m.Shapes)),
	}
	if m.Indices != nil {
		out.Indices = append([]uint32(nil), m.Indices...)
	}
	for i, s := range m.Shapes {
		frames := make([]ShapeFrame, len(s.Frames))
		for fi, f := range s.Frames {
			frames[fi] = ShapeFrame{
				Weight:   f.Weight,
				Vertices: cloneVecs(f.Vertices),
				Normals:  cloneVecs(f.Normals),
				Tangents: cloneVecs(f.Tangents),
			}
		}
		out.Shapes[i] = BlendShape{Name: s.Name, Frames: frames}
	}
	return out
}

func cloneVecs(v []math.Vec3) []math.Vec3 {
	if v == nil {
		return nil
	}
	return append([]math.Vec3(nil), v...)
}
