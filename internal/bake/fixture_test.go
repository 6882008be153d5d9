package bake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/math"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

const eps = 1e-5

var (
	dSmile  = []math.Vec3{{0, 1, 0}, {0, 2, 0}, {0, 0, 0}}
	dBlink  = []math.Vec3{{0, 0, 0}, {0, 0, -1}, {0, 0, 3}}
	dViseme = []math.Vec3{{5, 0, 0}, {5, 0, 0}, {5, 0, 0}}
)

func frame(d []math.Vec3) []scene.ShapeFrame {
	return []scene.ShapeFrame{{Weight: 100, Vertices: append([]math.Vec3(nil), d...)}}
}

// newFaceMesh returns a three-vertex mesh with Smile, Blink and a reserved
// viseme shape.
func newFaceMesh() *scene.Mesh {
	return &scene.Mesh{
		Name:     "Face",
		Vertices: []math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		Indices:  []uint32{0, 1, 2},
		Shapes: []scene.BlendShape{
			{Name: "Smile", Frames: frame(dSmile)},
			{Name: "Blink", Frames: frame(dBlink)},
			{Name: "vrc.v_aa", Frames: frame(dViseme)},
		},
	}
}

type fixture struct {
	scene    *scene.Scene
	body     *scene.Renderer
	meshID   scene.MeshID
	pristine *scene.Mesh
}

// newFixture builds a scene with one renderer "Body" exclusively using the
// face mesh at weights Smile=20, Blink=0, vrc.v_aa=50.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := scene.New()
	mesh := newFaceMesh()
	id := s.AddMesh(mesh)
	body := &scene.Renderer{Path: "Body", Mesh: id, Weights: []float32{20, 0, 50}, Active: true}
	require.NoError(t, s.AddRenderer(body))
	return &fixture{scene: s, body: body, meshID: id, pristine: mesh.Clone()}
}

func clipWith(name string, curves map[anim.Binding]float32) *anim.Clip {
	c := anim.NewClip(name)
	for b, v := range curves {
		c.SetCurve(b, anim.NewCurve(anim.Keyframe{Time: 0, Value: v}))
	}
	return c
}

func smile(v float32) map[anim.Binding]float32 {
	return map[anim.Binding]float32{anim.BlendshapeBinding("Body", "Smile"): v}
}

// deform applies weights (0-100) to frame 0 of every shape of m.
func deform(t *testing.T, m *scene.Mesh, weights []float32) []math.Vec3 {
	t.Helper()
	out := append([]math.Vec3(nil), m.Vertices...)
	delta := make([]math.Vec3, m.VertexCount())
	for i := 0; i < m.ShapeCount() && i < len(weights); i++ {
		require.NoError(t, m.ShapeFrameDeltas(i, 0, delta, nil, nil))
		math.AddScaled(out, delta, weights[i]/100)
	}
	return out
}

type term struct {
	scale float32
	delta []math.Vec3
}

// combine returns the sum of scale*delta over terms.
func combine(terms ...term) []math.Vec3 {
	out := make([]math.Vec3, 3)
	for _, tm := range terms {
		math.AddScaled(out, tm.delta, tm.scale)
	}
	return out
}

func requireVecsEqual(t *testing.T, want, got []math.Vec3) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Truef(t, want[i].ApproxEqual(got[i], eps), "vertex %d: want %v, got %v", i, want[i], got[i])
	}
}
