package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/planarize/pkg/document"
)

var validateCmd = &cobra.Command{
	Use:   "validate <model>",
	Short: "Check a model for dangling references and bad dimensions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readModel(cmd, args[0])
		if err != nil {
			return err
		}
		d, evalErrs, err := app.Load(source)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(evalErrs) > 0 {
			printEvalErrors(out, evalErrs)
			return errFindings
		}

		vr := document.Validate(d)
		if flagJSON {
			if err := writeJSON(out, vr); err != nil {
				return err
			}
		} else {
			for _, v := range append(vr.Errors, vr.Warnings...) {
				fmt.Fprintln(out, v.Error())
			}
			fmt.Fprintf(out, "%d elements, %d errors, %d warnings\n", d.Len(), len(vr.Errors), len(vr.Warnings))
		}
		if !vr.OK() {
			return errFindings
		}
		return nil
	},
}
