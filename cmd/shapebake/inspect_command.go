package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/midgard-shapebake/internal/gltfimport"
	"github.com/Faultbox/midgard-shapebake/internal/report"
	"github.com/Faultbox/midgard-shapebake/pkg/scene"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <avatar.yaml|model.glb>",
		Short: "List renderers, shapes and weights of an avatar or glTF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)

			var s *scene.Scene
			switch strings.ToLower(filepath.Ext(args[0])) {
			case ".glb", ".gltf":
				res, err := gltfimport.ImportFile(args[0])
				if err != nil {
					return err
				}
				s = res.Scene
			default:
				av, err := ctx.loadAvatar(args[0])
				if err != nil {
					return err
				}
				s = av.Scene

				rows := make([][]string, 0)
				for _, c := range av.Clips() {
					rows = append(rows, []string{c.Name, strconv.Itoa(c.CurveCount()), strconv.Itoa(len(c.ObjectBindings()))})
				}
				for _, line := range report.Header("Clips", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, report.Table(
					[]string{"Clip", "Curves", "Object curves"},
					rows,
					[]report.Alignment{report.AlignLeft, report.AlignRight, report.AlignRight},
				))
			}

			for _, line := range report.Header("Renderers", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, report.MeshTable(s))
			return nil
		},
	}
}
