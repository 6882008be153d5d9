package assets

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-shapebake/internal/avatar"
	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

// Encode writes the avatar as a YAML document. Only meshes bound to a
// renderer are written, always inline. Clips are written once each: those
// used by layers and bakers followed by any installed override clips.
func Encode(av *avatar.Avatar) ([]byte, error) {
	doc := Document{Name: av.Name}

	meshNames, err := encodeMeshes(&doc, av.Scene)
	if err != nil {
		return nil, err
	}

	for _, r := range av.Scene.Renderers() {
		rd := RendererDoc{Path: r.Path, Weights: append([]float32(nil), r.Weights...)}
		if r.HasMesh() {
			rd.Mesh = meshNames[r.Mesh]
		}
		if !r.Active {
			inactive := false
			rd.Active = &inactive
		}
		doc.Renderers = append(doc.Renderers, rd)
	}

	clipNames := make(map[*anim.Clip]string)
	usedNames := make(map[string]bool)
	addClip := func(c *anim.Clip) error {
		if c == nil {
			return nil
		}
		if _, ok := clipNames[c]; ok {
			return nil
		}
		if usedNames[c.Name] {
			return fmt.Errorf("clip %q: %w", c.Name, ErrDuplicateName)
		}
		usedNames[c.Name] = true
		clipNames[c] = c.Name
		doc.Clips = append(doc.Clips, encodeClip(c))
		return nil
	}
	for _, c := range av.Clips() {
		if err := addClip(c); err != nil {
			return nil, err
		}
	}
	for _, layer := range av.Descriptor.Layers {
		if layer.Override == nil {
			continue
		}
		for _, p := range layer.Override.Overrides() {
			if err := addClip(p.Baked); err != nil {
				return nil, err
			}
		}
	}
	if av.Animator != nil {
		for _, c := range av.Animator.ReferencedClips() {
			if err := addClip(c); err != nil {
				return nil, err
			}
		}
	}

	controllerNames := make(map[*anim.Controller]string)
	addController := func(ctrl *anim.Controller) (string, error) {
		if ctrl == nil {
			return "", nil
		}
		if name, ok := controllerNames[ctrl]; ok {
			return name, nil
		}
		for _, name := range controllerNames {
			if name == ctrl.Name {
				return "", fmt.Errorf("controller %q: %w", ctrl.Name, ErrDuplicateName)
			}
		}
		controllerNames[ctrl] = ctrl.Name
		doc.Controllers = append(doc.Controllers, encodeController(ctrl, clipNames))
		return ctrl.Name, nil
	}

	if doc.Animator, err = addController(av.Animator); err != nil {
		return nil, err
	}
	for _, layer := range av.Descriptor.Layers {
		name, err := addController(layer.Controller)
		if err != nil {
			return nil, err
		}
		ld := LayerDoc{Type: string(layer.Type), Default: layer.IsDefault, Controller: name}
		if layer.Override != nil {
			od := &OverrideDoc{Name: layer.Override.Name}
			for _, p := range layer.Override.Overrides() {
				od.Pairs = append(od.Pairs, ClipPairDoc{
					Original: clipNames[p.Original],
					Baked:    clipNames[p.Baked],
				})
			}
			ld.Overrides = od
		}
		doc.Layers = append(doc.Layers, ld)
	}

	for _, b := range av.Bakers {
		bd := BakerDoc{Path: b.Path, Motions: []string{}}
		for _, m := range b.Motions {
			if m != nil {
				bd.Motions = append(bd.Motions, clipNames[m])
			}
		}
		doc.Bakers = append(doc.Bakers, bd)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeMeshes writes every mesh a renderer uses, in handle order. Clashing
// mesh names get a numeric suffix.
func encodeMeshes(doc *Document, s *scene.Scene) (map[scene.MeshID]string, error) {
	var ids []scene.MeshID
	seen := make(map[scene.MeshID]bool)
	for _, r := range s.Renderers() {
		if r.HasMesh() && !seen[r.Mesh] {
			seen[r.Mesh] = true
			ids = append(ids, r.Mesh)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make(map[scene.MeshID]string, len(ids))
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		m, ok := s.Mesh(id)
		if !ok {
			return nil, fmt.Errorf("mesh %d: %w", id, ErrUnknownReference)
		}
		name := m.Name
		for n := 2; taken[name] || name == ""; n++ {
			name = fmt.Sprintf("%s #%d", m.Name, n)
		}
		taken[name] = true
		names[id] = name
		doc.Meshes = append(doc.Meshes, encodeMesh(name, m))
	}
	return names, nil
}

func encodeMesh(name string, m *scene.Mesh) MeshDoc {
	md := MeshDoc{
		Name:     name,
		Vertices: fromVecs(m.Vertices),
		Normals:  fromVecs(m.Normals),
		Tangents: fromVecs(m.Tangents),
		Indices:  m.Indices,
	}
	for _, shape := range m.Shapes {
		sd := ShapeDoc{Name: shape.Name}
		for _, f := range shape.Frames {
			sd.Frames = append(sd.Frames, FrameDoc{
				Weight:   f.Weight,
				Vertices: fromVecs(f.Vertices),
				Normals:  fromVecs(f.Normals),
				Tangents: fromVecs(f.Tangents),
			})
		}
		md.Shapes = append(md.Shapes, sd)
	}
	return md
}

func encodeClip(c *anim.Clip) ClipDoc {
	cd := ClipDoc{Name: c.Name, FrameRate: c.Settings.FrameRate, Loop: c.Settings.Loop}
	for _, b := range c.Bindings() {
		curve, _ := c.Curve(b)
		cd.Curves = append(cd.Curves, CurveDoc{Binding: b, Keys: curve.Keys})
	}
	for _, b := range c.ObjectBindings() {
		curve, _ := c.ObjectCurve(b)
		cd.ObjectCurves = append(cd.ObjectCurves, ObjectCurveDoc{Binding: b, Keys: curve.Keys})
	}
	return cd
}

func encodeController(ctrl *anim.Controller, clipNames map[*anim.Clip]string) ControllerDoc {
	cd := ControllerDoc{Name: ctrl.Name}
	for _, layer := range ctrl.Layers {
		ld := ControllerLayerDoc{Name: layer.Name}
		for _, st := range layer.States {
			ld.States = append(ld.States, StateDoc{Name: st.Name, Motion: clipNames[st.Motion]})
		}
		cd.Layers = append(cd.Layers, ld)
	}
	return cd
}
