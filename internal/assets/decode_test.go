package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-shapebake/internal/avatar"
	"github.com/Faultbox/midgard-shapebake/internal/bake"
	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/math"
)

func loadKitsune(t *testing.T) *avatar.Avatar {
	t.Helper()
	av, err := NewLoader(NewManager()).LoadAvatar(filepath.Join("testdata", "kitsune.yaml"))
	require.NoError(t, err)
	return av
}

func TestLoadAvatar(t *testing.T) {
	av := loadKitsune(t)
	assert.Equal(t, "Kitsune", av.Name)

	renderers := av.Scene.Renderers()
	require.Len(t, renderers, 2)

	body := renderers[0]
	assert.True(t, body.Active)
	assert.Equal(t, []float32{20, 0, 0}, body.Weights, "weights are padded to the shape count")
	mesh, ok := av.Scene.RendererMesh(body)
	require.True(t, ok)
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, "vrc.v_aa", mesh.ShapeName(2))
	assert.Equal(t, math.Vec3{Z: 1}, mesh.Shapes[1].Frames[0].Vertices[1])

	hidden := renderers[1]
	assert.False(t, hidden.Active)
	assert.False(t, hidden.HasMesh())

	targets := av.TargetClips()
	require.Len(t, targets, 1)
	happy := targets[0]
	assert.Equal(t, "Happy", happy.Name)
	assert.Equal(t, float32(60), happy.Settings.FrameRate)
	assert.Equal(t, 2, happy.CurveCount())

	curve, ok := happy.Curve(anim.BlendshapeBinding("Body", "Smile"))
	require.True(t, ok)
	first, _ := curve.First()
	assert.Equal(t, float32(100), first)

	obj := happy.ObjectBindings()
	require.Len(t, obj, 1)
	oc, _ := happy.ObjectCurve(obj[0])
	assert.Equal(t, "Blush", oc.Keys[0].Ref)

	require.NotNil(t, av.Animator)
	assert.Equal(t, "Locomotion", av.Animator.Name)
	require.Len(t, av.Descriptor.Layers, 2)
	fx := av.Descriptor.Layers[1]
	assert.Equal(t, avatar.LayerFX, fx.Type)
	assert.Same(t, happy, fx.Controller.Layers[0].States[1].Motion, "clips are shared by reference")
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "unknown mesh",
			doc:     "name: a\nrenderers:\n  - path: Body\n    mesh: Nope\n",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "unknown motion",
			doc:     "name: a\ncontrollers:\n  - name: FX\n    layers:\n      - name: L\n        states:\n          - name: S\n            motion: Nope\n",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "unknown baker motion",
			doc:     "name: a\nbakers:\n  - path: B\n    motions: [Nope]\n",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "unknown shape weight",
			doc:     "name: a\nmeshes:\n  - name: M\n    vertices: [[0, 0, 0]]\nrenderers:\n  - path: R\n    mesh: M\n    shape_weights:\n      Smile: 10\n",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "duplicate mesh",
			doc:     "name: a\nmeshes:\n  - name: M\n  - name: M\n",
			wantErr: ErrDuplicateName,
		},
		{
			name:    "duplicate clip",
			doc:     "name: a\nclips:\n  - name: C\n  - name: C\n",
			wantErr: ErrDuplicateName,
		},
		{
			name:    "bad layer",
			doc:     "name: a\nlayers:\n  - type: sitting\n",
			wantErr: ErrInvalidLayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "name: a\ncolour: red\n"},
		{"short vector", "name: a\nmeshes:\n  - name: M\n    vertices: [[0, 0]]\n"},
		{"delta length", "name: a\nmeshes:\n  - name: M\n    vertices: [[0, 0, 0]]\n    shapes:\n      - name: S\n        frames:\n          - weight: 100\n            vertices: [[0, 0, 0], [1, 1, 1]]\n"},
		{"overrides without controller", "name: a\nlayers:\n  - type: fx\n    overrides:\n      name: O\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	av := loadKitsune(t)

	first, err := Encode(av)
	require.NoError(t, err)

	again, err := Decode(first)
	require.NoError(t, err)
	second, err := Encode(again)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestEncode_AfterBake(t *testing.T) {
	av := loadKitsune(t)
	changes := NewChanges()

	out, err := avatar.Bake(context.Background(), av, bake.DefaultNaming(), changes)
	require.NoError(t, err)
	require.Len(t, out.Pairs, 1)
	assert.Equal(t, 1, out.Installed)
	assert.Equal(t, []string{"Body"}, changes.Dirty())
	assert.Len(t, changes.Pairs(), 1)

	data, err := Encode(av)
	require.NoError(t, err)

	reloaded, err := Decode(data)
	require.NoError(t, err)

	body, ok := reloaded.Scene.Find("Body")
	require.True(t, ok)
	mesh, ok := reloaded.Scene.RendererMesh(body)
	require.True(t, ok)
	assert.Equal(t, "Body"+bake.MeshSuffix, mesh.Name)
	assert.Equal(t, 3, mesh.ShapeIndex("Baked Happy"))

	// The baked Smile baseline of 20 was folded into the vertices.
	assert.InDelta(t, 0.2, mesh.Vertices[0].Y, 1e-6)

	require.Nil(t, reloaded.Animator)
	fx := reloaded.Descriptor.Layers[1]
	require.NotNil(t, fx.Override)
	assert.Equal(t, avatar.FXOverridesName, fx.Override.Name)

	pairs := fx.Override.Overrides()
	require.Len(t, pairs, 1)
	assert.Equal(t, "Happy", pairs[0].Original.Name)
	assert.Equal(t, "Baked Happy", pairs[0].Baked.Name)
	_, ok = pairs[0].Baked.Curve(anim.BlendshapeBinding("Body", "Baked Happy"))
	assert.True(t, ok)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	require.NoError(t, Save(path, []byte("name: a\n")))
	require.NoError(t, Save(path, []byte("name: b\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name: b\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	// The lock file stays so a concurrent writer never locks a replaced inode.
	assert.ElementsMatch(t, []string{"out.yaml", "out.yaml.lock"}, names)

	// A leftover lock file does not block the next save.
	require.NoError(t, Save(path, []byte("name: c\n")))
}

func TestSave_Locked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	held := flock.New(path + ".lock")
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	err = Save(path, []byte("name: a\n"))
	assert.ErrorIs(t, err, ErrLocked)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "a locked save must not write")
}

func TestDecode_NormalizesNames(t *testing.T) {
	// The shape is written composed, the curve and weight key decomposed.
	doc := "name: a\n" +
		"meshes:\n  - name: M\n    vertices: [[0, 0, 0]]\n    shapes:\n      - name: \"\\u304c\"\n        frames:\n          - weight: 100\n            vertices: [[0, 1, 0]]\n" +
		"renderers:\n  - path: 'Armature\\Face'\n    mesh: M\n    shape_weights:\n      \"\\u304b\\u3099\": 30\n" +
		"clips:\n  - name: C\n    curves:\n      - path: Armature/Face\n        type: SkinnedMeshRenderer\n        property: \"blendShape.\\u304b\\u3099\"\n        keys: [{t: 0, v: 100}]\n" +
		"bakers:\n  - path: B\n    motions: [C]\n"

	av, err := Decode([]byte(doc))
	require.NoError(t, err)

	r, ok := av.Scene.Find("Armature/Face")
	require.True(t, ok)
	assert.Equal(t, []float32{30}, r.Weights)

	require.Len(t, av.TargetClips(), 1)
	_, ok = av.TargetClips()[0].Curve(anim.BlendshapeBinding("Armature/Face", "\u304c"))
	assert.True(t, ok)
}

func writeFaceGLB(t *testing.T, path string) {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	smile := modeler.WritePosition(doc, [][3]float32{{0, 0.5, 0}, {0, 0, 0}, {0, 0, 0}})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "Face",
		Primitives: []*gltf.Primitive{{
			Attributes: gltf.Attribute{gltf.POSITION: pos},
			Targets:    []gltf.Attribute{{gltf.POSITION: smile}},
		}},
		Extras: map[string]any{"targetNames": []string{"Smile"}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "Head", Mesh: gltf.Index(0)})
	require.NoError(t, gltf.SaveBinary(doc, path))
}

func TestLoadAvatar_GLTFThroughManager(t *testing.T) {
	dir := t.TempDir()
	glb := filepath.Join(dir, "face.glb")
	writeFaceGLB(t, glb)
	avatarPath := filepath.Join(dir, "avatar.yaml")
	require.NoError(t, os.WriteFile(avatarPath, []byte("name: a\n"+
		"meshes:\n  - name: Face\n    gltf: face.glb\n"+
		"renderers:\n  - path: Head\n    mesh: Face\n"), 0o644))

	m := NewManager()
	require.NoError(t, m.AddRoot(dir))
	_, err := m.Load("face.glb")
	require.NoError(t, err)

	// The loader must decode the cached bytes, not reread the file.
	require.NoError(t, os.WriteFile(glb, []byte("not a glb"), 0o644))

	av, err := NewLoader(m).LoadAvatar(avatarPath)
	require.NoError(t, err)

	r, ok := av.Scene.Find("Head")
	require.True(t, ok)
	mesh, ok := av.Scene.RendererMesh(r)
	require.True(t, ok)
	assert.Equal(t, 3, mesh.VertexCount())
	require.Equal(t, 1, mesh.ShapeCount())
	assert.Equal(t, "Smile", mesh.ShapeName(0))

	hits, misses := m.Stats()
	assert.Equal(t, 1, hits, "face.glb is served from the cache")
	assert.Equal(t, 2, misses)
}

func TestLoadAvatar_InvalidGLTF(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "face.glb"), []byte("not a glb"), 0o644))
	avatarPath := filepath.Join(dir, "avatar.yaml")
	require.NoError(t, os.WriteFile(avatarPath, []byte("name: a\n"+
		"meshes:\n  - name: Face\n    gltf: face.glb\n"), 0o644))

	_, err := NewLoader(NewManager()).LoadAvatar(avatarPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `mesh "Face"`)
}
