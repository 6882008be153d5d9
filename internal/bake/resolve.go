package bake

import (
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

// GatherRenderers collects, for every mesh in scope, each renderer (active
// or not) that has it assigned.
func GatherRenderers(s *scene.Scene, scope Scope) map[scene.MeshID][]*scene.Renderer {
	renderers := make(map[scene.MeshID][]*scene.Renderer)
	for _, r := range s.Renderers() {
		if !r.HasMesh() {
			continue
		}
		if _, ok := scope[r.Mesh]; !ok {
			continue
		}
		renderers[r.Mesh] = append(renderers[r.Mesh], r)
	}
	return renderers
}

// PruneShared removes every mesh that is not used by exactly one renderer
// and returns the removed handles in ascending order.
func (sc Scope) PruneShared(renderers map[scene.MeshID][]*scene.Renderer) []scene.MeshID {
	var removed []scene.MeshID
	for _, id := range sc.Meshes() {
		if len(renderers[id]) != 1 {
			delete(sc, id)
			removed = append(removed, id)
		}
	}
	return removed
}
