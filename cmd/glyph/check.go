package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glyph-dev/glyph/internal/build"
	"github.com/glyph-dev/glyph/internal/config"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Type-check every component without writing output",
		Long: `Compile every .glyph component in memory and report diagnostics.

Nothing is written to the output directory. Diagnostics from all
components are collected and sorted by file and position, so one broken
component never hides errors in another.

Examples:
  glyph check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck()
		},
	}

	return cmd
}

func runCheck() error {
	cfg, err := config.Find(".")
	if err != nil {
		return err
	}

	builder := build.New(cfg, build.Options{CheckOnly: true})

	ctx, cancel := signalContext()
	defer cancel()

	result, err := builder.Build(ctx)
	if result != nil && result.Diagnostics.HasErrors() {
		fmt.Println(result.Diagnostics.Format())
	}
	if err != nil {
		return err
	}

	success("%d components, no errors", len(result.Artifacts))
	return nil
}
