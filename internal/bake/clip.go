package bake

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

// ErrEmptyCurve is returned when a target clip drives an in-scope shape with
// a curve that has no keyframes.
var ErrEmptyCurve = errors.New("blendshape curve has no keyframes")

// clipBaker rewrites target clips against a fixed set of mesh states.
type clipBaker struct {
	scene  *scene.Scene
	scope  Scope
	states []*MeshState // ascending mesh handle order
	naming Naming
	log    *zap.Logger
}

// bake produces the baked copy of clip and appends its combined shape to
// every mesh state's output mesh.
func (b *clipBaker) bake(clip *anim.Clip) (anim.ClipPair, error) {
	shapeName := b.naming.BakedName(clip.Name)
	baked := clip.Clone(shapeName)
	baked.ClearCurves()

	for _, st := range b.states {
		st.ResetForNewClip()
	}

	driven := b.drivenShapes(clip)
	for _, st := range b.states {
		for _, shape := range b.scope[st.MeshID].Names() {
			idx := st.Mesh.ShapeIndex(shape)
			if idx < 0 {
				continue
			}
			weight := st.OriginalWeight(idx)
			if curve, ok := driven[st.Renderer][shape]; ok {
				first, ok := curve.First()
				if !ok {
					return anim.ClipPair{}, fmt.Errorf("clip %q: %s: %w",
						clip.Name, anim.BlendshapeBinding(st.Renderer.Path, shape), ErrEmptyCurve)
				}
				// Only the first keyframe is consulted.
				if !curve.IsConstant() {
					b.log.Warn("animated blendshape curve baked from its first key",
						zap.String("clip", clip.Name),
						zap.String("renderer", st.Renderer.Path),
						zap.String("shape", shape),
						zap.Float32("weight", first),
					)
				}
				weight = first
			}
			if err := st.Accumulate(idx, weight); err != nil {
				return anim.ClipPair{}, fmt.Errorf("clip %q: %w", clip.Name, err)
			}
		}
	}

	dropped := 0
	for _, binding := range clip.Bindings() {
		curve, _ := clip.Curve(binding)
		if b.absorbed(binding) {
			dropped++
			continue
		}
		baked.SetCurve(binding, curve.Clone())
	}
	for _, binding := range clip.ObjectBindings() {
		curve, _ := clip.ObjectCurve(binding)
		baked.SetObjectCurve(binding, curve.Clone())
	}

	var peak float32
	for _, st := range b.states {
		for _, d := range st.Accumulator() {
			peak = max(peak, d.Length())
		}
		if err := st.EmitShape(shapeName); err != nil {
			return anim.ClipPair{}, fmt.Errorf("clip %q on %q: %w", clip.Name, st.Renderer.Path, err)
		}
		baked.SetCurve(
			anim.BlendshapeBinding(st.Renderer.Path, shapeName),
			anim.ConstantCurve(100, 0, 1),
		)
	}

	b.log.Debug("clip baked",
		zap.String("clip", clip.Name),
		zap.String("baked", shapeName),
		zap.Int("absorbed_curves", dropped),
		zap.Int("curves", baked.CurveCount()),
		zap.Float32("peak_delta", peak),
	)

	return anim.ClipPair{Original: clip, Baked: baked}, nil
}

// drivenShapes maps each baked renderer to the curves clip binds to its
// in-scope shapes. A binding on the renderer's exact path wins over one that
// only resolves to it through a parent path.
func (b *clipBaker) drivenShapes(clip *anim.Clip) map[*scene.Renderer]map[string]*anim.Curve {
	baked := make(map[*scene.Renderer]bool, len(b.states))
	for _, st := range b.states {
		baked[st.Renderer] = true
	}

	driven := make(map[*scene.Renderer]map[string]*anim.Curve)
	exact := make(map[*scene.Renderer]map[string]bool)
	for _, binding := range clip.Bindings() {
		shape, ok := binding.ShapeName()
		if !ok {
			continue
		}
		r, id, ok := b.scene.FindMesh(binding.Path)
		if !ok || !baked[r] || !b.scope.Contains(id, shape) {
			continue
		}
		if driven[r] == nil {
			driven[r] = make(map[string]*anim.Curve)
			exact[r] = make(map[string]bool)
		}
		isExact := binding.Path == r.Path
		if _, seen := driven[r][shape]; seen && (exact[r][shape] || !isExact) {
			continue
		}
		curve, _ := clip.Curve(binding)
		driven[r][shape] = curve
		exact[r][shape] = isExact
	}
	return driven
}

// absorbed reports whether binding drives an in-scope shape whose
// contribution now lives in the baked shape.
func (b *clipBaker) absorbed(binding anim.Binding) bool {
	shape, ok := binding.ShapeName()
	if !ok {
		return false
	}
	_, id, ok := b.scene.FindMesh(binding.Path)
	if !ok {
		return false
	}
	return b.scope.Contains(id, shape)
}
