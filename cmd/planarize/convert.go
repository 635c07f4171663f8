package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <model>",
	Short: "Convert every wall, floor, roof and ceiling into planar surfaces",
	Long: `Convert evaluates the model and runs profile extraction, loop joining,
classification, opening resolution and assignment for every host element.
Problems with one element are reported and do not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readModel(cmd, args[0])
		if err != nil {
			return err
		}
		report, err := app.Convert(source)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			if err := writeJSON(out, report); err != nil {
				return err
			}
		} else {
			printReport(out, report)
		}
		if report.Failed() {
			return errFindings
		}
		return nil
	},
}

func printReport(w io.Writer, r *Report) {
	if len(r.Errors) > 0 {
		printEvalErrors(w, r.Errors)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ELEMENT\tCATEGORY\tSOURCE\tSURFACES\tOPENINGS\tAREA")
	for _, e := range r.Elements {
		if e.Skipped {
			fmt.Fprintf(tw, "%s\t%s\t-\tskipped\t-\t-\n", e.Name, e.Category)
			continue
		}
		var openings int
		var area float64
		for _, s := range e.Surfaces {
			openings += len(s.Openings)
			area += s.Area()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.3f\n", e.Name, e.Category, e.Source, len(e.Surfaces), openings, area)
	}
	tw.Flush()
	for _, d := range r.Diagnostics {
		fmt.Fprintln(w, d.Error())
	}
	for _, v := range r.Validation {
		fmt.Fprintln(w, v.Error())
	}
}
