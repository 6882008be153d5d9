package bake

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-shapebake/pkg/math"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

// ErrAlreadyApplied is returned when a MeshState is applied twice.
var ErrAlreadyApplied = errors.New("mesh state already applied")

// WeightEntry is one name/weight pair of an applied renderer.
type WeightEntry struct {
	Name   string
	Weight float32
}

// MeshState owns the baking buffers for one mesh and its single renderer.
type MeshState struct {
	Renderer *scene.Renderer
	MeshID   scene.MeshID
	Mesh     *scene.Mesh // pristine, never written
	Output   *scene.Mesh // clone that receives the baseline and baked shapes

	baseline   []math.Vec3 // negative of everything folded into the base pose
	output     []math.Vec3 // per-clip accumulator
	zero       []math.Vec3 // normal/tangent delta for baked frames
	shapeDelta []math.Vec3 // scratch for frame-0 reads

	weights  []float32 // working weights, zeroed as shapes are absorbed
	original []float32 // weights at construction

	applied bool
}

// NewMeshState snapshots the renderer's weights and clones its mesh.
func NewMeshState(s *scene.Scene, r *scene.Renderer) (*MeshState, error) {
	mesh, ok := s.RendererMesh(r)
	if !ok {
		return nil, fmt.Errorf("renderer %q has no mesh", r.Path)
	}

	out := mesh.Clone()
	out.Name = mesh.Name + MeshSuffix

	n := mesh.VertexCount()
	st := &MeshState{
		Renderer:   r,
		MeshID:     r.Mesh,
		Mesh:       mesh,
		Output:     out,
		baseline:   make([]math.Vec3, n),
		output:     make([]math.Vec3, n),
		zero:       make([]math.Vec3, n),
		shapeDelta: make([]math.Vec3, n),
		weights:    make([]float32, mesh.ShapeCount()),
		original:   make([]float32, mesh.ShapeCount()),
	}
	for i := range st.weights {
		w := r.Weight(i)
		st.weights[i] = w
		st.original[i] = w
	}
	return st, nil
}

// FoldBaseline moves the current weight of every named shape into the base
// pose of the output mesh and zeroes its working weight. The folded amount
// is subtracted from the baseline so each clip can add it back exactly once.
func (st *MeshState) FoldBaseline(shapes []string) error {
	positions := st.Output.Vertices
	for _, name := range shapes {
		idx := st.Mesh.ShapeIndex(name)
		if idx < 0 {
			continue
		}
		weight := st.weights[idx]
		if err := st.Mesh.ShapeFrameDeltas(idx, 0, st.shapeDelta, nil, nil); err != nil {
			return fmt.Errorf("reading shape %q of %q: %w", name, st.Mesh.Name, err)
		}

		for i := range positions {
			d := st.shapeDelta[i].Scale(weight / 100)
			st.baseline[i] = st.baseline[i].Sub(d)
			positions[i] = positions[i].Add(d)
		}

		st.weights[idx] = 0
	}
	return nil
}

// ResetForNewClip reloads the accumulator from the baseline.
func (st *MeshState) ResetForNewClip() {
	copy(st.output, st.baseline)
}

// Accumulate adds shape idx's frame-0 delta at weight (0-100).
func (st *MeshState) Accumulate(idx int, weight float32) error {
	if weight == 0 {
		return nil
	}
	if err := st.Mesh.ShapeFrameDeltas(idx, 0, st.shapeDelta, nil, nil); err != nil {
		return fmt.Errorf("reading shape %d of %q: %w", idx, st.Mesh.Name, err)
	}
	math.AddScaled(st.output, st.shapeDelta, weight/100)
	return nil
}

// EmitShape appends the accumulator as a full-weight morph target.
func (st *MeshState) EmitShape(name string) error {
	return st.Output.AddShapeFrame(name, 100, st.output, st.zero, st.zero)
}

// Accumulator returns a copy of the current per-clip accumulator.
func (st *MeshState) Accumulator() []math.Vec3 {
	return append([]math.Vec3(nil), st.output...)
}

// Baseline returns a copy of the baseline buffer.
func (st *MeshState) Baseline() []math.Vec3 {
	return append([]math.Vec3(nil), st.baseline...)
}

// OriginalWeight returns the renderer weight of shape idx at construction.
func (st *MeshState) OriginalWeight(idx int) float32 {
	if idx < 0 || idx >= len(st.original) {
		return 0
	}
	return st.original[idx]
}

// Apply stores the output mesh in the scene, assigns it to the renderer and
// reasserts the working weights by index. Writes are bounded by both the
// weight array and the output mesh's morph target count. It returns the
// resulting name/weight pairs.
func (st *MeshState) Apply(s *scene.Scene) ([]WeightEntry, error) {
	if st.applied {
		return nil, ErrAlreadyApplied
	}
	st.applied = true

	st.Renderer.Mesh = s.AddMesh(st.Output)
	st.Renderer.ResizeWeights(st.Output.ShapeCount())

	n := min(len(st.weights), st.Output.ShapeCount())
	for i := 0; i < n; i++ {
		st.Renderer.SetWeight(i, st.weights[i])
	}

	entries := make([]WeightEntry, st.Output.ShapeCount())
	for i := range entries {
		entries[i] = WeightEntry{Name: st.Output.ShapeName(i), Weight: st.Renderer.Weight(i)}
	}
	return entries, nil
}
