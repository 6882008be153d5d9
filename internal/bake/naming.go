// Package bake folds clip-driven blendshape weights into one precomputed
// morph target per clip and rewrites each clip to drive only that target.
package bake

import "strings"

// Default naming prefixes.
const (
	DefaultReservedPrefix = "vrc."
	DefaultBakedPrefix    = "Baked "
	MeshSuffix            = " (baked shapes)"
)

// Naming holds the prefixes that decide which shapes are reserved and how
// baked clips and shapes are named.
type Naming struct {
	ReservedPrefix string // Shapes with this prefix are never baked
	BakedPrefix    string // Prefix for baked clip and shape names
}

// DefaultNaming returns the standard prefixes.
func DefaultNaming() Naming {
	return Naming{
		ReservedPrefix: DefaultReservedPrefix,
		BakedPrefix:    DefaultBakedPrefix,
	}
}

// IsReserved reports whether a shape name is owned by the avatar system.
func (n Naming) IsReserved(shape string) bool {
	return n.ReservedPrefix != "" && strings.HasPrefix(shape, n.ReservedPrefix)
}

// BakedName returns the clip and shape name used for a baked clip.
func (n Naming) BakedName(clipName string) string {
	return n.BakedPrefix + clipName
}

func (n Naming) orDefault() Naming {
	if n == (Naming{}) {
		return DefaultNaming()
	}
	return n
}
