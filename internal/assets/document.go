package assets

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/math"
)

// Document is the YAML form of an avatar.
type Document struct {
	Name        string          `yaml:"name"`
	Meshes      []MeshDoc       `yaml:"meshes"`
	Renderers   []RendererDoc   `yaml:"renderers"`
	Clips       []ClipDoc       `yaml:"clips"`
	Controllers []ControllerDoc `yaml:"controllers,omitempty"`
	Animator    string          `yaml:"animator,omitempty"`
	Layers      []LayerDoc      `yaml:"layers,omitempty"`
	Bakers      []BakerDoc      `yaml:"bakers,omitempty"`
}

// MeshDoc is either inline mesh data or a reference to a mesh in a glTF file.
type MeshDoc struct {
	Name     string     `yaml:"name"`
	GLTF     string     `yaml:"gltf,omitempty"`      // glTF/GLB path
	GLTFMesh string     `yaml:"gltf_mesh,omitempty"` // mesh name inside the file, defaults to Name
	Vertices []Vec3     `yaml:"vertices,omitempty"`
	Normals  []Vec3     `yaml:"normals,omitempty"`
	Tangents []Vec3     `yaml:"tangents,omitempty"`
	Indices  []uint32   `yaml:"indices,flow,omitempty"`
	Shapes   []ShapeDoc `yaml:"shapes,omitempty"`
}

// ShapeDoc is one morph target.
type ShapeDoc struct {
	Name   string     `yaml:"name"`
	Frames []FrameDoc `yaml:"frames"`
}

// FrameDoc is one morph target frame.
type FrameDoc struct {
	Weight   float32 `yaml:"weight"`
	Vertices []Vec3  `yaml:"vertices,omitempty"`
	Normals  []Vec3  `yaml:"normals,omitempty"`
	Tangents []Vec3  `yaml:"tangents,omitempty"`
}

// RendererDoc binds a mesh by name at a scene path.
type RendererDoc struct {
	Path         string             `yaml:"path"`
	Mesh         string             `yaml:"mesh,omitempty"`
	Active       *bool              `yaml:"active,omitempty"`
	Weights      []float32          `yaml:"weights,flow,omitempty"`
	ShapeWeights map[string]float32 `yaml:"shape_weights,omitempty"` // applied over Weights by shape name
}

// ClipDoc is one animation clip.
type ClipDoc struct {
	Name         string           `yaml:"name"`
	FrameRate    float32          `yaml:"frame_rate,omitempty"`
	Loop         bool             `yaml:"loop,omitempty"`
	Curves       []CurveDoc       `yaml:"curves,omitempty"`
	ObjectCurves []ObjectCurveDoc `yaml:"object_curves,omitempty"`
}

// CurveDoc is a scalar curve and its binding.
type CurveDoc struct {
	anim.Binding `yaml:",inline"`
	Keys         []anim.Keyframe `yaml:"keys,flow"`
}

// ObjectCurveDoc is an object-reference curve and its binding.
type ObjectCurveDoc struct {
	anim.Binding `yaml:",inline"`
	Keys         []anim.ObjectKeyframe `yaml:"keys"`
}

// ControllerDoc is an animator controller.
type ControllerDoc struct {
	Name   string               `yaml:"name"`
	Layers []ControllerLayerDoc `yaml:"layers"`
}

// ControllerLayerDoc is one controller layer.
type ControllerLayerDoc struct {
	Name   string     `yaml:"name"`
	States []StateDoc `yaml:"states"`
}

// StateDoc is an animator state and its motion clip name.
type StateDoc struct {
	Name   string `yaml:"name"`
	Motion string `yaml:"motion,omitempty"`
}

// LayerDoc is one descriptor layer.
type LayerDoc struct {
	Type       string       `yaml:"type"`
	Default    bool         `yaml:"default,omitempty"`
	Controller string       `yaml:"controller,omitempty"`
	Overrides  *OverrideDoc `yaml:"overrides,omitempty"`
}

// OverrideDoc is an override controller installed on a layer.
type OverrideDoc struct {
	Name  string        `yaml:"name"`
	Pairs []ClipPairDoc `yaml:"pairs,omitempty"`
}

// ClipPairDoc maps an original clip to its replacement by name.
type ClipPairDoc struct {
	Original string `yaml:"original"`
	Baked    string `yaml:"baked"`
}

// BakerDoc is a baker marker naming target clips.
type BakerDoc struct {
	Path    string   `yaml:"path"`
	Motions []string `yaml:"motions,flow"`
}

// Vec3 is a vector written as a flow sequence [x, y, z].
type Vec3 [3]float32

// MarshalYAML writes the vector in flow style.
func (v Vec3) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range v {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(float64(c), 'g', -1, 32),
		})
	}
	return node, nil
}

// UnmarshalYAML reads a three-element sequence.
func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	var parts []float32
	if err := value.Decode(&parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("line %d: vector needs 3 components, got %d", value.Line, len(parts))
	}
	copy(v[:], parts)
	return nil
}

func toVecs(in []Vec3) []math.Vec3 {
	if in == nil {
		return nil
	}
	out := make([]math.Vec3, len(in))
	for i, v := range in {
		out[i] = math.FromArray(v)
	}
	return out
}

func fromVecs(in []math.Vec3) []Vec3 {
	if in == nil {
		return nil
	}
	out := make([]Vec3, len(in))
	for i, v := range in {
		out[i] = Vec3(v.Array())
	}
	return out
}
