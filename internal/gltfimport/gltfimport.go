// Package gltfimport builds a scene from the meshes, morph targets and mesh
// nodes of a glTF or GLB file.
package gltfimport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/midgard-shapebake/pkg/encoding"
	"github.com/Faultbox/midgard-shapebake/pkg/math"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

// Import errors.
var (
	ErrNoPosition      = errors.New("primitive has no POSITION attribute")
	ErrTargetMismatch  = errors.New("primitives disagree on morph target count")
	ErrUnknownGLTFMesh = errors.New("glTF mesh not found")
)

// Result is an imported scene plus a lookup of its meshes by glTF name.
type Result struct {
	Scene  *scene.Scene
	Meshes map[string]scene.MeshID
}

// MeshByName returns the imported mesh with the given glTF mesh name.
func (r *Result) MeshByName(name string) (*scene.Mesh, error) {
	id, ok := r.Meshes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGLTFMesh, name)
	}
	m, _ := r.Scene.Mesh(id)
	return m, nil
}

// ImportFile opens and imports a .gltf or .glb file.
func ImportFile(path string) (*Result, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	res, err := Import(doc)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return res, nil
}

// ImportBytes decodes and imports a .gltf or .glb file already read into
// memory. External buffers are read relative to dir.
func ImportBytes(data []byte, dir string) (*Result, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(bytes.NewReader(data), os.DirFS(dir)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}
	return Import(doc)
}

// Import converts a decoded glTF document. Each glTF mesh becomes one scene
// mesh with its primitives concatenated; each node with a mesh becomes an
// active renderer at its slash-joined node path. Weights are scaled from
// glTF's 0-1 range to 0-100.
func Import(doc *gltf.Document) (*Result, error) {
	res := &Result{
		Scene:  scene.New(),
		Meshes: make(map[string]scene.MeshID),
	}

	ids := make([]scene.MeshID, len(doc.Meshes))
	for i, gm := range doc.Meshes {
		m, err := convertMesh(doc, gm, i)
		if err != nil {
			return nil, err
		}
		ids[i] = res.Scene.AddMesh(m)
		if _, dup := res.Meshes[m.Name]; !dup {
			res.Meshes[m.Name] = ids[i]
		}
	}

	for _, np := range walkNodes(doc) {
		node := doc.Nodes[np.index]
		if node.Mesh == nil {
			continue
		}
		meshIdx := int(*node.Mesh)
		if meshIdx < 0 || meshIdx >= len(ids) {
			return nil, fmt.Errorf("node %q: mesh index %d out of range", np.path, meshIdx)
		}
		mesh, _ := res.Scene.Mesh(ids[meshIdx])
		gm := doc.Meshes[meshIdx]

		weights := make([]float32, mesh.ShapeCount())
		src := gm.Weights
		if len(node.Weights) > 0 {
			src = node.Weights
		}
		for i, w := range src {
			if i < len(weights) {
				weights[i] = float32(w) * 100
			}
		}

		if err := res.Scene.AddRenderer(&scene.Renderer{
			Path:    np.path,
			Mesh:    ids[meshIdx],
			Weights: weights,
			Active:  true,
		}); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func convertMesh(doc *gltf.Document, gm *gltf.Mesh, index int) (*scene.Mesh, error) {
	name := encoding.NormalizeName(gm.Name)
	if name == "" {
		name = fmt.Sprintf("mesh%d", index)
	}
	m := &scene.Mesh{Name: name}

	targetCount := -1
	hasNormals, hasTangents := false, false
	var shapeDeltas [][]math.Vec3

	for pi, prim := range gm.Primitives {
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", name, pi, ErrNoPosition)
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: read positions: %w", name, pi, err)
		}
		base := uint32(len(m.Vertices))
		n := len(positions)
		for _, p := range positions {
			m.Vertices = append(m.Vertices, math.FromArray(p))
		}

		normals := make([]math.Vec3, n)
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			data, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: read normals: %w", name, pi, err)
			}
			copyArrays(normals, data)
			hasNormals = true
		}
		m.Normals = append(m.Normals, normals...)

		tangents := make([]math.Vec3, n)
		if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
			data, err := modeler.ReadTangent(doc, doc.Accessors[idx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: read tangents: %w", name, pi, err)
			}
			for i := 0; i < n && i < len(data); i++ {
				tangents[i] = math.Vec3{X: data[i][0], Y: data[i][1], Z: data[i][2]}
			}
			hasTangents = true
		}
		m.Tangents = append(m.Tangents, tangents...)

		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: read indices: %w", name, pi, err)
			}
			for _, ix := range indices {
				m.Indices = append(m.Indices, base+ix)
			}
		} else {
			for i := 0; i < n; i++ {
				m.Indices = append(m.Indices, base+uint32(i))
			}
		}

		if targetCount < 0 {
			targetCount = len(prim.Targets)
			shapeDeltas = make([][]math.Vec3, targetCount)
		} else if len(prim.Targets) != targetCount {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", name, pi, ErrTargetMismatch)
		}
		for ti, target := range prim.Targets {
			deltas := make([]math.Vec3, n)
			if idx, ok := target[gltf.POSITION]; ok {
				data, err := modeler.ReadPosition(doc, doc.Accessors[idx], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q primitive %d target %d: %w", name, pi, ti, err)
				}
				copyArrays(deltas, data)
			}
			shapeDeltas[ti] = append(shapeDeltas[ti], deltas...)
		}
	}

	if !hasNormals {
		m.Normals = nil
	}
	if !hasTangents {
		m.Tangents = nil
	}

	names := targetNames(gm.Extras)
	for ti, deltas := range shapeDeltas {
		shapeName := fmt.Sprintf("shape%d", ti)
		if ti < len(names) {
			if n := encoding.NormalizeName(names[ti]); n != "" {
				shapeName = n
			}
		}
		m.Shapes = append(m.Shapes, scene.BlendShape{
			Name:   shapeName,
			Frames: []scene.ShapeFrame{{Weight: 100, Vertices: deltas}},
		})
	}

	return m, nil
}

// targetNames reads the conventional extras.targetNames list.
func targetNames(extras any) []string {
	if extras == nil {
		return nil
	}
	raw, err := json.Marshal(extras)
	if err != nil {
		return nil
	}
	var parsed struct {
		TargetNames []string `json:"targetNames"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	return parsed.TargetNames
}

type nodePath struct {
	index int
	path  string
}

// walkNodes lists nodes depth-first from every root, with slash-joined
// name paths.
func walkNodes(doc *gltf.Document) []nodePath {
	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[c] = true
			}
		}
	}

	var out []nodePath
	visited := make([]bool, len(doc.Nodes))
	var visit func(idx int, parent string)
	visit = func(idx int, parent string) {
		if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
			return
		}
		visited[idx] = true
		node := doc.Nodes[idx]
		name := encoding.NormalizeName(node.Name)
		if name == "" {
			name = fmt.Sprintf("node%d", idx)
		}
		name = strings.ReplaceAll(name, "/", "_")
		path := name
		if parent != "" {
			path = parent + "/" + name
		}
		out = append(out, nodePath{index: idx, path: path})
		for _, c := range node.Children {
			visit(int(c), path)
		}
	}
	for i := range doc.Nodes {
		if !isChild[i] {
			visit(i, "")
		}
	}
	return out
}

func copyArrays(dst []math.Vec3, src [][3]float32) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] = math.FromArray(src[i])
	}
}
