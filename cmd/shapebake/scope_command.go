package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/midgard-shapebake/internal/avatar"
	"github.com/Faultbox/midgard-shapebake/internal/bake"
	"github.com/Faultbox/midgard-shapebake/internal/report"
)

func newScopeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scope <avatar.yaml>",
		Short: "Show which meshes and shapes a bake would cover, without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			av, err := ctx.loadAvatar(args[0])
			if err != nil {
				return err
			}

			overrides := av.GatherFXOverrides()
			res, err := bake.Run(cmd.Context(), bake.Input{
				Scene:     av.Scene,
				Targets:   av.TargetClips(),
				Reachable: avatar.ReachableClips(overrides),
				Naming:    cfg.Naming(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)
			for _, line := range report.Header("Scope", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, report.ScopeTable(av.Scene, res))
			for _, line := range report.Header("Clips", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, report.PairTable(res.Pairs))
			return nil
		},
	}
}
