package scene

// Renderer binds one mesh and holds its morph target weights (0-100).
type Renderer struct {
	Path    string    // Scene path relative to the avatar root
	Mesh    MeshID    // Assigned mesh, NoMesh when unassigned
	Weights []float32 // One weight per morph target of the assigned mesh
	Active  bool      // Inactive renderers are skipped by path resolution
}

// HasMesh reports whether a mesh is assigned.
func (r *Renderer) HasMesh() bool {
	return r.Mesh != NoMesh
}

// Weight returns the weight at index i, or 0 when out of range.
func (r *Renderer) Weight(i int) float32 {
	if i < 0 || i >= len(r.Weights) {
		return 0
	}
	return r.Weights[i]
}

// SetWeight sets the weight at index i. Out-of-range writes are dropped.
func (r *Renderer) SetWeight(i int, w float32) {
	if i < 0 || i >= len(r.Weights) {
		return
	}
	r.Weights[i] = w
}

// ResizeWeights grows or shrinks the weight array to n entries, keeping
// existing values and zero-filling new ones.
func (r *Renderer) ResizeWeights(n int) {
	if n == len(r.Weights) {
		return
	}
	w := make([]float32, n)
	copy(w, r.Weights)
	r.Weights = w
}
