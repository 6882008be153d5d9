package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shapebake/internal/assets"
	"github.com/Faultbox/midgard-shapebake/internal/avatar"
	"github.com/Faultbox/midgard-shapebake/internal/logger"
	"github.com/Faultbox/midgard-shapebake/internal/report"
)

func newBakeCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "bake <avatar.yaml>",
		Short: "Bake every marked clip and write the result",
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

			changes := assets.NewChanges()
			outcome, err := avatar.Bake(cmd.Context(), av, cfg.Naming(), changes)
			if err != nil {
				return err
			}

			data, err := assets.Encode(av)
			if err != nil {
				return fmt.Errorf("encode avatar: %w", err)
			}
			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = cfg.Output.Path(args[0])
			}
			if err := assets.Save(target, data); err != nil {
				return err
			}
			logger.Info("baked avatar written",
				zap.String("run", outcome.RunID),
				zap.String("path", target),
				zap.Strings("modified", changes.Dirty()),
			)

			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)
			for _, line := range report.Header("Baked clips", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, report.PairTable(outcome.Pairs))
			if cfg.Output.ShowWeights && len(outcome.Reports) > 0 {
				for _, line := range report.Header("Weights", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, report.WeightTable(outcome.Reports))
			}
			fmt.Fprintf(out, "%d clips baked, %d overrides installed, wrote %s\n",
				len(outcome.Pairs), outcome.Installed, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output document path (defaults to <input>.baked.<ext>)")
	return cmd
}
