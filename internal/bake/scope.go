package bake

import (
	"sort"

	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

// ShapeSet is an insertion-ordered set of shape names.
type ShapeSet struct {
	order []string
	index map[string]bool
}

func newShapeSet() *ShapeSet {
	return &ShapeSet{index: make(map[string]bool)}
}

// Add inserts a name. Adding an existing name is a no-op.
func (s *ShapeSet) Add(name string) {
	if s.index[name] {
		return
	}
	s.index[name] = true
	s.order = append(s.order, name)
}

// Remove deletes a name.
func (s *ShapeSet) Remove(name string) {
	if !s.index[name] {
		return
	}
	delete(s.index, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether name is in the set.
func (s *ShapeSet) Contains(name string) bool {
	return s != nil && s.index[name]
}

// Names returns the names in insertion order.
func (s *ShapeSet) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Len returns the number of names.
func (s *ShapeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Scope maps each candidate mesh to the shapes eligible for baking.
type Scope map[scene.MeshID]*ShapeSet

// Meshes returns the mesh handles in ascending order.
func (sc Scope) Meshes() []scene.MeshID {
	ids := make([]scene.MeshID, 0, len(sc))
	for id := range sc {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Contains reports whether shape on mesh id is in scope.
func (sc Scope) Contains(id scene.MeshID, shape string) bool {
	return sc[id].Contains(shape)
}

// GatherInScopeShapes computes, per mesh, the shapes that may be baked.
//
// Every mesh animated by a target clip is seeded with all of its
// non-reserved shapes. Any shape that a clip outside targets also animates
// is then removed, so a baked shape is never driven by foreign animation.
// Bindings that do not resolve to a renderer with a mesh are skipped.
func GatherInScopeShapes(s *scene.Scene, targets, reachable []*anim.Clip, naming Naming) Scope {
	naming = naming.orDefault()
	scope := make(Scope)

	isTarget := make(map[*anim.Clip]bool, len(targets))
	for _, clip := range targets {
		if clip == nil {
			continue
		}
		isTarget[clip] = true

		for _, b := range clip.Bindings() {
			if !b.IsBlendshape() {
				continue
			}
			_, id, ok := s.FindMesh(b.Path)
			if !ok {
				continue
			}
			if _, seeded := scope[id]; seeded {
				continue
			}
			mesh, _ := s.Mesh(id)
			shapes := newShapeSet()
			for i := 0; i < mesh.ShapeCount(); i++ {
				name := mesh.ShapeName(i)
				if naming.IsReserved(name) {
					continue
				}
				shapes.Add(name)
			}
			scope[id] = shapes
		}
	}

	for _, clip := range reachable {
		if clip == nil || isTarget[clip] {
			continue
		}
		for _, b := range clip.Bindings() {
			shape, ok := b.ShapeName()
			if !ok {
				continue
			}
			_, id, ok := s.FindMesh(b.Path)
			if !ok {
				continue
			}
			if shapes, seeded := scope[id]; seeded {
				shapes.Remove(shape)
			}
		}
	}

	return scope
}
