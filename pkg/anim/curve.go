package anim

// Keyframe is one (time, value) sample of a scalar curve.
type Keyframe struct {
	Time  float32 `yaml:"t"`
	Value float32 `yaml:"v"`
}

// Curve is an ordered sequence of keyframes.
type Curve struct {
	Keys []Keyframe `yaml:"keys"`
}

// NewCurve creates a curve from keyframes.
func NewCurve(keys ...Keyframe) *Curve {
	return &Curve{Keys: append([]Keyframe(nil), keys...)}
}

// ConstantCurve returns a two-key curve holding value from t0 to t1.
func ConstantCurve(value, t0, t1 float32) *Curve {
	return NewCurve(Keyframe{Time: t0, Value: value}, Keyframe{Time: t1, Value: value})
}

// First returns the value of the first keyframe. Later keyframes are not
// consulted.
func (c *Curve) First() (float32, bool) {
	if c == nil || len(c.Keys) == 0 {
		return 0, false
	}
	return c.Keys[0].Value, true
}

// IsConstant reports whether every keyframe holds the same value.
func (c *Curve) IsConstant() bool {
	if c == nil {
		return true
	}
	for i := 1; i < len(c.Keys); i++ {
		if c.Keys[i].Value != c.Keys[0].Value {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (c *Curve) Clone() *Curve {
	if c == nil {
		return nil
	}
	return NewCurve(c.Keys...)
}

// ObjectKeyframe is one sample of an object-reference curve.
type ObjectKeyframe struct {
	Time float32 `yaml:"t"`
	Ref  string  `yaml:"ref"`
}

// ObjectCurve is an ordered sequence of object-reference keyframes.
type ObjectCurve struct {
	Keys []ObjectKeyframe `yaml:"keys"`
}

// Clone returns a deep copy.
func (c *ObjectCurve) Clone() *ObjectCurve {
	if c == nil {
		return nil
	}
	return &ObjectCurve{Keys: append([]ObjectKeyframe(nil), c.Keys...)}
}
