package anim

// State is one animator state playing a motion.
type State struct {
	Name   string
	Motion *Clip
}

// Layer is one animator layer.
type Layer struct {
	Name   string
	States []State
}

// Controller is an animator controller asset.
type Controller struct {
	Name   string
	Layers []Layer
}

// ReferencedClips returns every clip used by the controller's states,
// deduplicated, in first-seen order.
func (c *Controller) ReferencedClips() []*Clip {
	if c == nil {
		return nil
	}
	seen := make(map[*Clip]bool)
	var clips []*Clip
	for _, layer := range c.Layers {
		for _, st := range layer.States {
			if st.Motion == nil || seen[st.Motion] {
				continue
			}
			seen[st.Motion] = true
			clips = append(clips, st.Motion)
		}
	}
	return clips
}

// ClipPair maps an original clip to its replacement.
type ClipPair struct {
	Original *Clip
	Baked    *Clip
}

// OverrideController replaces clips of a base controller without editing it.
type OverrideController struct {
	Name      string
	Base      *Controller
	overrides map[*Clip]*Clip
}

// NewOverrideController wraps base.
func NewOverrideController(name string, base *Controller) *OverrideController {
	return &OverrideController{
		Name:      name,
		Base:      base,
		overrides: make(map[*Clip]*Clip),
	}
}

// ReferencedClips returns the base controller's clips.
func (o *OverrideController) ReferencedClips() []*Clip {
	return o.Base.ReferencedClips()
}

// ApplyOverrides installs every pair whose original clip is used by the base
// controller and returns how many were installed. Other pairs are ignored.
func (o *OverrideController) ApplyOverrides(pairs []ClipPair) int {
	if o.overrides == nil {
		o.overrides = make(map[*Clip]*Clip)
	}
	used := make(map[*Clip]bool)
	for _, c := range o.ReferencedClips() {
		used[c] = true
	}

	applied := 0
	for _, p := range pairs {
		if p.Original == nil || !used[p.Original] {
			continue
		}
		o.overrides[p.Original] = p.Baked
		applied++
	}
	return applied
}

// Resolve returns the clip that plays in place of c.
func (o *OverrideController) Resolve(c *Clip) *Clip {
	if baked, ok := o.overrides[c]; ok && baked != nil {
		return baked
	}
	return c
}

// Overrides returns the installed pairs in base controller order.
func (o *OverrideController) Overrides() []ClipPair {
	var pairs []ClipPair
	for _, c := range o.ReferencedClips() {
		if baked, ok := o.overrides[c]; ok {
			pairs = append(pairs, ClipPair{Original: c, Baked: baked})
		}
	}
	return pairs
}
