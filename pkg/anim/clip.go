package anim

// ClipSettings holds clip-level playback settings carried through copies.
type ClipSettings struct {
	FrameRate float32 `yaml:"frame_rate"`
	Loop      bool    `yaml:"loop"`
}

// Clip is a named set of scalar and object-reference curves keyed by
// binding. Bindings iterate in insertion order.
type Clip struct {
	Name     string
	Settings ClipSettings

	bindings    []Binding
	curves      map[Binding]*Curve
	objBindings []Binding
	objCurves   map[Binding]*ObjectCurve
}

// NewClip creates an empty clip.
func NewClip(name string) *Clip {
	return &Clip{
		Name:      name,
		curves:    make(map[Binding]*Curve),
		objCurves: make(map[Binding]*ObjectCurve),
	}
}

// Curve returns the scalar curve bound to b.
func (c *Clip) Curve(b Binding) (*Curve, bool) {
	curve, ok := c.curves[b]
	return curve, ok
}

// SetCurve binds a scalar curve. A nil curve removes the binding.
func (c *Clip) SetCurve(b Binding, curve *Curve) {
	if c.curves == nil {
		c.curves = make(map[Binding]*Curve)
	}
	if curve == nil {
		if _, ok := c.curves[b]; ok {
			delete(c.curves, b)
			c.bindings = removeBinding(c.bindings, b)
		}
		return
	}
	if _, ok := c.curves[b]; !ok {
		c.bindings = append(c.bindings, b)
	}
	c.curves[b] = curve
}

// Bindings returns the scalar curve bindings.
func (c *Clip) Bindings() []Binding {
	return append([]Binding(nil), c.bindings...)
}

// ObjectCurve returns the object-reference curve bound to b.
func (c *Clip) ObjectCurve(b Binding) (*ObjectCurve, bool) {
	curve, ok := c.objCurves[b]
	return curve, ok
}

// SetObjectCurve binds an object-reference curve. A nil curve removes the
// binding.
func (c *Clip) SetObjectCurve(b Binding, curve *ObjectCurve) {
	if c.objCurves == nil {
		c.objCurves = make(map[Binding]*ObjectCurve)
	}
	if curve == nil {
		if _, ok := c.objCurves[b]; ok {
			delete(c.objCurves, b)
			c.objBindings = removeBinding(c.objBindings, b)
		}
		return
	}
	if _, ok := c.objCurves[b]; !ok {
		c.objBindings = append(c.objBindings, b)
	}
	c.objCurves[b] = curve
}

// ObjectBindings returns the object-reference curve bindings.
func (c *Clip) ObjectBindings() []Binding {
	return append([]Binding(nil), c.objBindings...)
}

// CurveCount returns the number of scalar curves.
func (c *Clip) CurveCount() int {
	return len(c.bindings)
}

// ClearCurves removes every scalar and object-reference curve.
func (c *Clip) ClearCurves() {
	c.bindings = nil
	c.curves = make(map[Binding]*Curve)
	c.objBindings = nil
	c.objCurves = make(map[Binding]*ObjectCurve)
}

// Clone returns a deep copy of the clip under a new name.
func (c *Clip) Clone(name string) *Clip {
	out := NewClip(name)
	out.Settings = c.Settings
	for _, b := range c.bindings {
		out.SetCurve(b, c.curves[b].Clone())
	}
	for _, b := range c.objBindings {
		out.SetObjectCurve(b, c.objCurves[b].Clone())
	}
	return out
}

func removeBinding(list []Binding, b Binding) []Binding {
	for i := range list {
		if list[i] == b {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
