package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var meshCmd = &cobra.Command{
	Use:   "mesh <model> [element...]",
	Short: "Render preview meshes of the converted surfaces",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readModel(cmd, args[0])
		if err != nil {
			return err
		}
		meshes, evalErrs, err := app.Mesh(source, args[1:]...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(evalErrs) > 0 {
			printEvalErrors(out, evalErrs)
			return errFindings
		}
		if flagJSON {
			return writeJSON(out, meshes)
		}
		for _, m := range meshes {
			fmt.Fprintf(out, "%s\t%d triangles\t%s\n", m.Element, m.Triangles, m.Color)
		}
		return nil
	},
}
