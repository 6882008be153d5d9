package bake

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shapebake/internal/logger"
	"github.com/Faultbox/midgard-shapebake/pkg/anim"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

// ErrAlreadyCommitted is returned when a Result is committed twice.
var ErrAlreadyCommitted = errors.New("bake result already committed")

// Input describes one bake pass.
type Input struct {
	Scene     *scene.Scene
	Targets   []*anim.Clip // clips to bake
	Reachable []*anim.Clip // every clip the animator can play, targets included
	Naming    Naming
}

// MeshReport is the post-commit weight dump of one renderer.
type MeshReport struct {
	Path    string
	Mesh    string
	Weights []WeightEntry
}

// Result holds the output of a bake pass. Meshes are not swapped onto
// renderers until Commit.
type Result struct {
	RunID    string
	Pairs    []anim.ClipPair
	States   []*MeshState
	Scope    Scope
	Excluded []scene.MeshID // meshes dropped for not having exactly one renderer

	scene     *scene.Scene
	log       *zap.Logger
	committed bool
}

// Run analyses scope, folds baselines and bakes every target clip. The
// scene is only read until Commit is called on the result.
func Run(ctx context.Context, in Input) (*Result, error) {
	if in.Scene == nil {
		return nil, errors.New("bake: nil scene")
	}
	naming := in.Naming.orDefault()
	runID := uuid.NewString()
	log := logger.With(zap.String("run", runID))

	targets := uniqueClips(in.Targets)
	reachable := in.Reachable
	if reachable == nil {
		reachable = targets
	}

	scope := GatherInScopeShapes(in.Scene, targets, reachable, naming)
	renderers := GatherRenderers(in.Scene, scope)
	excluded := scope.PruneShared(renderers)
	for _, id := range excluded {
		log.Debug("mesh excluded: not used by exactly one renderer",
			zap.Int("mesh", int(id)),
			zap.Int("renderers", len(renderers[id])),
		)
	}

	res := &Result{
		RunID:    runID,
		Scope:    scope,
		Excluded: excluded,
		scene:    in.Scene,
		log:      log,
	}

	for _, id := range scope.Meshes() {
		st, err := NewMeshState(in.Scene, renderers[id][0])
		if err != nil {
			return nil, err
		}
		if err := st.FoldBaseline(scope[id].Names()); err != nil {
			return nil, err
		}
		res.States = append(res.States, st)
		log.Info("mesh in scope",
			zap.String("renderer", st.Renderer.Path),
			zap.String("mesh", st.Mesh.Name),
			zap.Strings("shapes", scope[id].Names()),
		)
	}

	b := &clipBaker{
		scene:  in.Scene,
		scope:  scope,
		states: res.States,
		naming: naming,
		log:    log,
	}
	for _, clip := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pair, err := b.bake(clip)
		if err != nil {
			return nil, err
		}
		res.Pairs = append(res.Pairs, pair)
	}

	log.Info("bake pass complete",
		zap.Int("clips", len(res.Pairs)),
		zap.Int("meshes", len(res.States)),
		zap.Int("excluded", len(excluded)),
	)
	return res, nil
}

// Commit swaps every output mesh onto its renderer and reasserts the
// remaining weights. It must run after all clips are baked.
func (r *Result) Commit() ([]MeshReport, error) {
	if r.committed {
		return nil, ErrAlreadyCommitted
	}
	r.committed = true

	reports := make([]MeshReport, 0, len(r.States))
	for _, st := range r.States {
		entries, err := st.Apply(r.scene)
		if err != nil {
			return nil, fmt.Errorf("applying %q: %w", st.Renderer.Path, err)
		}

		r.log.Debug("applying baked mesh", zap.String("renderer", st.Renderer.Path))
		for _, e := range entries {
			r.log.Debug("blendshape weight", zap.String("shape", e.Name), zap.Float32("weight", e.Weight))
		}

		reports = append(reports, MeshReport{
			Path:    st.Renderer.Path,
			Mesh:    st.Output.Name,
			Weights: entries,
		})
	}
	return reports, nil
}

func uniqueClips(clips []*anim.Clip) []*anim.Clip {
	seen := make(map[*anim.Clip]bool, len(clips))
	out := make([]*anim.Clip, 0, len(clips))
	for _, c := range clips {
		if c == nil || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
