// Package avatar models the avatar root the bake pass runs against: its
// scene, animation layers and the baker markers that name target clips.
package avatar

import (
	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

// FXOverridesName names the override controller installed on the FX layer.
const FXOverridesName = "FX Overrides"

// LayerType identifies a playable animation layer.
type LayerType string

// Playable layer types.
const (
	LayerBase     LayerType = "base"
	LayerAdditive LayerType = "additive"
	LayerGesture  LayerType = "gesture"
	LayerAction   LayerType = "action"
	LayerFX       LayerType = "fx"
)

// AnimLayer is one playable layer of the avatar descriptor. A layer runs
// either a plain controller or an override controller wrapping one.
type AnimLayer struct {
	Type       LayerType
	IsDefault  bool
	Controller *anim.Controller
	Override   *anim.OverrideController
}

// Descriptor holds the avatar's playable layers.
type Descriptor struct {
	Layers []AnimLayer
}

// Baker marks a set of clips for blendshape baking.
type Baker struct {
	Path    string
	Motions []*anim.Clip
}

// Avatar is the root of one bake pass.
type Avatar struct {
	Name       string
	Scene      *scene.Scene
	Animator   *anim.Controller // runtime controller on the root animator
	Descriptor Descriptor
	Bakers     []Baker
}

// TargetClips returns every clip named by a baker, in document order.
// Missing motions are skipped.
func (a *Avatar) TargetClips() []*anim.Clip {
	var clips []*anim.Clip
	for _, b := range a.Bakers {
		for _, m := range b.Motions {
			if m != nil {
				clips = append(clips, m)
			}
		}
	}
	return clips
}

// GatherFXOverrides clears the root animator's runtime controller and wraps
// the first non-default FX layer's controller in a new override controller,
// which it installs on that layer. Without such a layer the result is empty.
func (a *Avatar) GatherFXOverrides() []*anim.OverrideController {
	a.Animator = nil

	for i := range a.Descriptor.Layers {
		layer := &a.Descriptor.Layers[i]
		if layer.Type != LayerFX || layer.IsDefault || layer.Controller == nil {
			continue
		}
		oc := anim.NewOverrideController(FXOverridesName, layer.Controller)
		layer.Override = oc
		return []*anim.OverrideController{oc}
	}
	return nil
}

// ReachableClips returns every clip the given override controllers can
// play, deduplicated.
func ReachableClips(overrides []*anim.OverrideController) []*anim.Clip {
	seen := make(map[*anim.Clip]bool)
	var clips []*anim.Clip
	for _, oc := range overrides {
		for _, c := range oc.ReferencedClips() {
			if seen[c] {
				continue
			}
			seen[c] = true
			clips = append(clips, c)
		}
	}
	return clips
}

// ApplyOverrides installs the clip pairs on every override controller and
// returns the total number installed.
func ApplyOverrides(overrides []*anim.OverrideController, pairs []anim.ClipPair) int {
	n := 0
	for _, oc := range overrides {
		n += oc.ApplyOverrides(pairs)
	}
	return n
}

// Clips returns every distinct clip referenced by bakers and layers.
func (a *Avatar) Clips() []*anim.Clip {
	seen := make(map[*anim.Clip]bool)
	var clips []*anim.Clip
	add := func(c *anim.Clip) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		clips = append(clips, c)
	}
	for _, layer := range a.Descriptor.Layers {
		for _, c := range layer.Controller.ReferencedClips() {
			add(c)
		}
	}
	for _, c := range a.TargetClips() {
		add(c)
	}
	return clips
}
