package scene

import (
	"fmt"
	"strings"
)

// MeshID is a stable handle for a mesh stored in a Scene.
type MeshID int

// NoMesh marks a renderer without an assigned mesh.
const NoMesh MeshID = -1

// Scene is an arena of meshes and the renderers that reference them by handle.
type Scene struct {
	meshes    []*Mesh
	renderers []*Renderer
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// AddMesh stores a mesh and returns its handle.
func (s *Scene) AddMesh(m *Mesh) MeshID {
	s.meshes = append(s.meshes, m)
	return MeshID(len(s.meshes) - 1)
}

// Mesh returns the mesh for a handle.
func (s *Scene) Mesh(id MeshID) (*Mesh, bool) {
	if id < 0 || int(id) >= len(s.meshes) {
		return nil, false
	}
	m := s.meshes[id]
	return m, m != nil
}

// MeshCount returns the number of mesh handles issued.
func (s *Scene) MeshCount() int {
	return len(s.meshes)
}

// AddRenderer appends a renderer. Renderers keep insertion order, which is
// the hierarchy order used by path resolution.
func (s *Scene) AddRenderer(r *Renderer) error {
	if r.HasMesh() {
		if _, ok := s.Mesh(r.Mesh); !ok {
			return fmt.Errorf("renderer %q: unknown mesh handle %d", r.Path, r.Mesh)
		}
	}
	s.renderers = append(s.renderers, r)
	return nil
}

// Renderers returns every renderer, including inactive ones.
func (s *Scene) Renderers() []*Renderer {
	return s.renderers
}

// RendererMesh returns the mesh assigned to r.
func (s *Scene) RendererMesh(r *Renderer) (*Mesh, bool) {
	if r == nil || !r.HasMesh() {
		return nil, false
	}
	return s.Mesh(r.Mesh)
}

// Find resolves a scene path to the first active renderer at or below it.
// The empty path is the root. A miss is a normal result.
func (s *Scene) Find(path string) (*Renderer, bool) {
	path = strings.Trim(path, "/")
	for _, r := range s.renderers {
		if !r.Active {
			continue
		}
		if path == "" || r.Path == path || strings.HasPrefix(r.Path, path+"/") {
			return r, true
		}
	}
	return nil, false
}

// FindMesh resolves a scene path to its renderer and that renderer's mesh.
func (s *Scene) FindMesh(path string) (*Renderer, MeshID, bool) {
	r, ok := s.Find(path)
	if !ok || !r.HasMesh() {
		return nil, NoMesh, false
	}
	if _, ok := s.Mesh(r.Mesh); !ok {
		return nil, NoMesh, false
	}
	return r, r.Mesh, true
}
