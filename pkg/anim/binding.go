// Package anim provides the curve, binding and clip model driven by the
// blendshape baker.
package anim

import "strings"

// BlendshapePrefix prefixes the property name of every blendshape binding.
const BlendshapePrefix = "blendShape."

// ComponentType names the component a binding targets.
type ComponentType string

// Component types that appear in clip bindings.
const (
	SkinnedMeshRenderer ComponentType = "SkinnedMeshRenderer"
	Transform           ComponentType = "Transform"
	GameObject          ComponentType = "GameObject"
	Animator            ComponentType = "Animator"
)

// Binding addresses a curve target as (path, component type, property).
type Binding struct {
	Path     string        `yaml:"path"`
	Type     ComponentType `yaml:"type"`
	Property string        `yaml:"property"`
}

// BlendshapeBinding returns the binding that drives the named shape on the
// renderer at path.
func BlendshapeBinding(path, shape string) Binding {
	return Binding{
		Path:     path,
		Type:     SkinnedMeshRenderer,
		Property: BlendshapePrefix + shape,
	}
}

// IsBlendshape reports whether b drives a blendshape weight.
func (b Binding) IsBlendshape() bool {
	return b.Type == SkinnedMeshRenderer && strings.HasPrefix(b.Property, BlendshapePrefix)
}

// ShapeName returns the shape a blendshape binding drives. The prefix is
// checked before it is stripped.
func (b Binding) ShapeName() (string, bool) {
	if !b.IsBlendshape() {
		return "", false
	}
	return strings.TrimPrefix(b.Property, BlendshapePrefix), true
}

// String returns "path:Type.property".
func (b Binding) String() string {
	return b.Path + ":" + string(b.Type) + "." + b.Property
}
