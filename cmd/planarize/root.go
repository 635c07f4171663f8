package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/planarize/pkg/config"
)

// Global flag values.
var (
	flagConfig string
	flagJSON   bool
)

// app is built by PersistentPreRunE for every command that needs it.
var app *App

var rootCmd = &cobra.Command{
	Use:           "planarize",
	Short:         "Extract planar surfaces and openings from building models",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		app, err = NewApp(cfg)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./planarize.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(meshCmd)
	rootCmd.AddCommand(validateCmd)
}

// readModel returns the source at path, or stdin for "-".
func readModel(cmd *cobra.Command, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read model: %w", err)
	}
	return string(b), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEvalErrors(w io.Writer, errs []EvalErrorData) {
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(w, "line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintln(w, e.Message)
		}
	}
}
