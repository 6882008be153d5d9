package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/midgard-shapebake/internal/logger"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "shapebake",
		Short:         "Bake blendshape animation into one morph target per clip",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.overrides.ConfigPath, "config", "c", "", "Configuration file path")
	flags.BoolVar(&ctx.overrides.Debug, "debug", false, "Enable debug logging")
	flags.StringVar(&ctx.overrides.LogFile, "log-file", "", "Also write logs to this file")
	flags.StringSliceVar(&ctx.overrides.Roots, "root", nil, "Extra asset search root (repeatable)")

	rootCmd.AddCommand(newBakeCommand(ctx))
	rootCmd.AddCommand(newScopeCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
