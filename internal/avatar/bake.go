package avatar

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shapebake/internal/bake"
	"github.com/Faultbox/midgard-shapebake/internal/logger"
	"github.com/Faultbox/midgard-shapebake/pkg/anim"
)

// Sink receives the results of a bake that must be persisted or wired
// elsewhere.
type Sink interface {
	RecordOverrides(pairs []anim.ClipPair)
	MarkDirty(asset string)
}

// Outcome summarizes a completed bake.
type Outcome struct {
	RunID     string
	Pairs     []anim.ClipPair
	Overrides []*anim.OverrideController
	Installed int
	Reports   []bake.MeshReport
	Result    *bake.Result
}

// Bake runs the blendshape bake pass over the avatar: it installs the FX
// override controller, bakes every target clip, wires the baked clips into
// the overrides and finally swaps the baked meshes onto their renderers.
func Bake(ctx context.Context, av *Avatar, naming bake.Naming, sink Sink) (*Outcome, error) {
	overrides := av.GatherFXOverrides()
	targets := av.TargetClips()

	res, err := bake.Run(ctx, bake.Input{
		Scene:     av.Scene,
		Targets:   targets,
		Reachable: ReachableClips(overrides),
		Naming:    naming,
	})
	if err != nil {
		return nil, fmt.Errorf("baking %s: %w", av.Name, err)
	}

	for _, st := range res.States {
		sink.MarkDirty(st.Renderer.Path)
	}

	installed := ApplyOverrides(overrides, res.Pairs)
	sink.RecordOverrides(res.Pairs)
	if len(overrides) == 0 && len(res.Pairs) > 0 {
		logger.Warn("no FX layer to override; baked clips are not wired",
			zap.String("avatar", av.Name),
			zap.Int("clips", len(res.Pairs)),
		)
	}

	// Meshes are swapped only after every clip has been baked.
	reports, err := res.Commit()
	if err != nil {
		return nil, fmt.Errorf("committing %s: %w", av.Name, err)
	}

	return &Outcome{
		RunID:     res.RunID,
		Pairs:     res.Pairs,
		Overrides: overrides,
		Installed: installed,
		Reports:   reports,
		Result:    res,
	}, nil
}
