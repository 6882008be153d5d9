package assets

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-shapebake/internal/avatar"
	"github.com/Faultbox/midgard-shapebake/internal/gltfimport"
	"github.com/Faultbox/midgard-shapebake/internal/logger"
	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/encoding"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

// Document errors.
var (
	ErrUnknownReference = errors.New("unknown reference")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrInvalidLayer     = errors.New("invalid layer type")
)

// Loader decodes avatar documents, resolving referenced glTF files through
// a Manager. Each glTF file is imported once per Loader.
type Loader struct {
	Manager *Manager
	gltf    map[string]*gltfimport.Result
}

// NewLoader creates a loader backed by m.
func NewLoader(m *Manager) *Loader {
	return &Loader{
		Manager: m,
		gltf:    make(map[string]*gltfimport.Result),
	}
}

// Decode parses a YAML avatar document without a search root.
func Decode(data []byte) (*avatar.Avatar, error) {
	return NewLoader(NewManager()).Decode(data)
}

// LoadAvatar reads and decodes the avatar document at path. The document's
// directory is added as a search root for the files it references.
func (l *Loader) LoadAvatar(path string) (*avatar.Avatar, error) {
	resolved, err := l.Manager.Resolve(path)
	if err != nil {
		return nil, err
	}
	if err := l.Manager.AddRoot(filepath.Dir(resolved)); err != nil {
		return nil, err
	}
	data, err := l.Manager.Load(resolved)
	if err != nil {
		return nil, err
	}
	av, err := l.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", resolved, err)
	}

	hits, misses := l.Manager.Stats()
	logger.Debug("avatar loaded",
		zap.String("path", resolved),
		zap.Int("gltf_files", len(l.gltf)),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses),
	)
	return av, nil
}

// Decode parses a YAML avatar document. Unknown fields are rejected.
func (l *Loader) Decode(data []byte) (*avatar.Avatar, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	return l.build(&doc)
}

func (l *Loader) build(doc *Document) (*avatar.Avatar, error) {
	av := &avatar.Avatar{Name: doc.Name, Scene: scene.New()}

	meshes := make(map[string]scene.MeshID, len(doc.Meshes))
	for i := range doc.Meshes {
		md := &doc.Meshes[i]
		if md.Name == "" {
			return nil, fmt.Errorf("mesh %d: missing name", i)
		}
		if _, dup := meshes[md.Name]; dup {
			return nil, fmt.Errorf("mesh %q: %w", md.Name, ErrDuplicateName)
		}
		m, err := l.mesh(md)
		if err != nil {
			return nil, err
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		meshes[md.Name] = av.Scene.AddMesh(m)
	}

	for _, rd := range doc.Renderers {
		r, err := buildRenderer(av.Scene, meshes, rd)
		if err != nil {
			return nil, err
		}
		if err := av.Scene.AddRenderer(r); err != nil {
			return nil, err
		}
	}

	clips := make(map[string]*anim.Clip, len(doc.Clips))
	for _, cd := range doc.Clips {
		if _, dup := clips[cd.Name]; dup {
			return nil, fmt.Errorf("clip %q: %w", cd.Name, ErrDuplicateName)
		}
		clips[cd.Name] = buildClip(cd)
	}
	clipRef := func(owner, name string) (*anim.Clip, error) {
		c, ok := clips[name]
		if !ok {
			return nil, fmt.Errorf("%s: clip %q: %w", owner, name, ErrUnknownReference)
		}
		return c, nil
	}

	controllers := make(map[string]*anim.Controller, len(doc.Controllers))
	for _, cd := range doc.Controllers {
		if _, dup := controllers[cd.Name]; dup {
			return nil, fmt.Errorf("controller %q: %w", cd.Name, ErrDuplicateName)
		}
		ctrl := &anim.Controller{Name: cd.Name}
		for _, ld := range cd.Layers {
			layer := anim.Layer{Name: ld.Name}
			for _, sd := range ld.States {
				st := anim.State{Name: sd.Name}
				if sd.Motion != "" {
					c, err := clipRef("controller "+cd.Name, sd.Motion)
					if err != nil {
						return nil, err
					}
					st.Motion = c
				}
				layer.States = append(layer.States, st)
			}
			ctrl.Layers = append(ctrl.Layers, layer)
		}
		controllers[cd.Name] = ctrl
	}
	controllerRef := func(owner, name string) (*anim.Controller, error) {
		if name == "" {
			return nil, nil
		}
		c, ok := controllers[name]
		if !ok {
			return nil, fmt.Errorf("%s: controller %q: %w", owner, name, ErrUnknownReference)
		}
		return c, nil
	}

	var err error
	if av.Animator, err = controllerRef("animator", doc.Animator); err != nil {
		return nil, err
	}

	for i, ld := range doc.Layers {
		owner := fmt.Sprintf("layer %d", i)
		lt := avatar.LayerType(ld.Type)
		switch lt {
		case avatar.LayerBase, avatar.LayerAdditive, avatar.LayerGesture, avatar.LayerAction, avatar.LayerFX:
		default:
			return nil, fmt.Errorf("%s: %w: %q", owner, ErrInvalidLayer, ld.Type)
		}
		ctrl, err := controllerRef(owner, ld.Controller)
		if err != nil {
			return nil, err
		}
		layer := avatar.AnimLayer{Type: lt, IsDefault: ld.Default, Controller: ctrl}
		if ld.Overrides != nil {
			if ctrl == nil {
				return nil, fmt.Errorf("%s: overrides without a controller", owner)
			}
			oc := anim.NewOverrideController(ld.Overrides.Name, ctrl)
			pairs := make([]anim.ClipPair, 0, len(ld.Overrides.Pairs))
			for _, pd := range ld.Overrides.Pairs {
				orig, err := clipRef(owner, pd.Original)
				if err != nil {
					return nil, err
				}
				baked, err := clipRef(owner, pd.Baked)
				if err != nil {
					return nil, err
				}
				pairs = append(pairs, anim.ClipPair{Original: orig, Baked: baked})
			}
			oc.ApplyOverrides(pairs)
			layer.Override = oc
		}
		av.Descriptor.Layers = append(av.Descriptor.Layers, layer)
	}

	for _, bd := range doc.Bakers {
		b := avatar.Baker{Path: bd.Path}
		for _, name := range bd.Motions {
			c, err := clipRef("baker "+bd.Path, name)
			if err != nil {
				return nil, err
			}
			b.Motions = append(b.Motions, c)
		}
		av.Bakers = append(av.Bakers, b)
	}

	return av, nil
}

func (l *Loader) mesh(md *MeshDoc) (*scene.Mesh, error) {
	if md.GLTF == "" {
		m := &scene.Mesh{
			Name:     md.Name,
			Vertices: toVecs(md.Vertices),
			Normals:  toVecs(md.Normals),
			Tangents: toVecs(md.Tangents),
			Indices:  md.Indices,
		}
		for _, sd := range md.Shapes {
			shape := scene.BlendShape{Name: encoding.NormalizeName(sd.Name)}
			for _, fd := range sd.Frames {
				shape.Frames = append(shape.Frames, scene.ShapeFrame{
					Weight:   fd.Weight,
					Vertices: toVecs(fd.Vertices),
					Normals:  toVecs(fd.Normals),
					Tangents: toVecs(fd.Tangents),
				})
			}
			m.Shapes = append(m.Shapes, shape)
		}
		return m, nil
	}

	imported, err := l.importGLTF(md.GLTF)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", md.Name, err)
	}
	source := md.GLTFMesh
	if source == "" {
		source = md.Name
	}
	src, err := imported.MeshByName(source)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", md.Name, err)
	}
	m := src.Clone()
	m.Name = md.Name
	return m, nil
}

func (l *Loader) importGLTF(ref string) (*gltfimport.Result, error) {
	path, err := l.Manager.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if res, ok := l.gltf[path]; ok {
		return res, nil
	}
	data, err := l.Manager.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := gltfimport.ImportBytes(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	l.gltf[path] = res
	return res, nil
}

func buildRenderer(s *scene.Scene, meshes map[string]scene.MeshID, rd RendererDoc) (*scene.Renderer, error) {
	r := &scene.Renderer{
		Path:    encoding.NormalizePath(rd.Path),
		Mesh:    scene.NoMesh,
		Weights: append([]float32(nil), rd.Weights...),
		Active:  rd.Active == nil || *rd.Active,
	}
	if rd.Mesh == "" {
		return r, nil
	}

	id, ok := meshes[rd.Mesh]
	if !ok {
		return nil, fmt.Errorf("renderer %q: mesh %q: %w", rd.Path, rd.Mesh, ErrUnknownReference)
	}
	r.Mesh = id
	mesh, _ := s.Mesh(id)
	if len(r.Weights) < mesh.ShapeCount() {
		r.ResizeWeights(mesh.ShapeCount())
	}
	for name, w := range rd.ShapeWeights {
		idx := mesh.ShapeIndex(encoding.NormalizeName(name))
		if idx < 0 {
			return nil, fmt.Errorf("renderer %q: shape %q: %w", rd.Path, name, ErrUnknownReference)
		}
		r.SetWeight(idx, w)
	}
	return r, nil
}

func buildClip(cd ClipDoc) *anim.Clip {
	c := anim.NewClip(cd.Name)
	c.Settings = anim.ClipSettings{FrameRate: cd.FrameRate, Loop: cd.Loop}
	for _, curve := range cd.Curves {
		c.SetCurve(normalizeBinding(curve.Binding), anim.NewCurve(curve.Keys...))
	}
	for _, curve := range cd.ObjectCurves {
		c.SetObjectCurve(normalizeBinding(curve.Binding), &anim.ObjectCurve{Keys: append([]anim.ObjectKeyframe(nil), curve.Keys...)})
	}
	return c
}

func normalizeBinding(b anim.Binding) anim.Binding {
	b.Path = encoding.NormalizePath(b.Path)
	b.Property = encoding.NormalizeName(b.Property)
	return b
}
