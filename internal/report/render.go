package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/Faultbox/midgard-shapebake/internal/bake"
	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

const (
	ansiReset = "\x1b[0m"
	ansiBlue  = "\x1b[34m"
)

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Header returns a section title and its underline.
func Header(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// WeightTable lists the post-commit blendshape weights of every baked
// renderer.
func WeightTable(reports []bake.MeshReport) string {
	var rows [][]string
	for _, r := range reports {
		for _, w := range r.Weights {
			rows = append(rows, []string{r.Path, r.Mesh, w.Name, formatWeight(w.Weight)})
		}
	}
	return Table(
		[]string{"Renderer", "Mesh", "Shape", "Weight"},
		rows,
		[]Alignment{AlignLeft, AlignLeft, AlignLeft, AlignRight},
	)
}

// ScopeTable lists the meshes a bake pass covers and the ones it excluded.
func ScopeTable(s *scene.Scene, res *bake.Result) string {
	var rows [][]string
	for _, st := range res.States {
		names := res.Scope[st.MeshID].Names()
		rows = append(rows, []string{
			st.Renderer.Path,
			st.Mesh.Name,
			strconv.Itoa(len(names)),
			strings.Join(names, ", "),
		})
	}
	for _, id := range res.Excluded {
		name := fmt.Sprintf("#%d", id)
		if m, ok := s.Mesh(id); ok {
			name = m.Name
		}
		rows = append(rows, []string{"-", name, "0", "excluded"})
	}
	return Table(
		[]string{"Renderer", "Mesh", "Shapes", "In scope"},
		rows,
		[]Alignment{AlignLeft, AlignLeft, AlignRight, AlignLeft},
	)
}

// PairTable lists baked clips next to the clips they replace.
func PairTable(pairs []anim.ClipPair) string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{
			p.Original.Name,
			p.Baked.Name,
			strconv.Itoa(p.Original.CurveCount()),
			strconv.Itoa(p.Baked.CurveCount()),
		})
	}
	return Table(
		[]string{"Clip", "Baked", "Curves", "Baked curves"},
		rows,
		[]Alignment{AlignLeft, AlignLeft, AlignRight, AlignRight},
	)
}

// MeshTable lists every mesh renderer in a scene with its shapes and
// current weights.
func MeshTable(s *scene.Scene) string {
	var rows [][]string
	for _, r := range s.Renderers() {
		m, ok := s.RendererMesh(r)
		if !ok {
			rows = append(rows, []string{r.Path, "", "", ""})
			continue
		}
		for i := 0; i < m.ShapeCount(); i++ {
			rows = append(rows, []string{r.Path, m.Name, m.ShapeName(i), formatWeight(r.Weight(i))})
		}
	}
	return Table(
		[]string{"Renderer", "Mesh", "Shape", "Weight"},
		rows,
		[]Alignment{AlignLeft, AlignLeft, AlignLeft, AlignRight},
	)
}

func formatWeight(w float32) string {
	return strconv.FormatFloat(float64(w), 'f', 2, 32)
}
