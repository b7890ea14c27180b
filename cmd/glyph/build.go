package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glyph-dev/glyph/internal/build"
	"github.com/glyph-dev/glyph/internal/config"
)

func buildCmd() *cobra.Command {
	var (
		output      string
		noCache     bool
		parallelism int
		clean       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile every component to the output directory",
		Long: `Compile every .glyph component in the project.

This command:
  • Type-checks every component, collecting all diagnostics
  • Writes one render artifact per component
  • Writes the scoped CSS bundle and the manifest

Examples:
  glyph build
  glyph build --output=dist
  glyph build --no-cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(output, noCache, parallelism, clean)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from glyph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the artifact cache")
	cmd.Flags().IntVarP(&parallelism, "parallelism", "j", 0, "Max concurrent compilations (default one per CPU)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Clean output directory before build")

	return cmd
}

func runBuild(output string, noCache bool, parallelism int, clean bool) error {
	cfg, err := config.Find(".")
	if err != nil {
		return err
	}

	if output != "" {
		cfg.Build.Output = output
	}
	if noCache {
		cfg.Build.NoCache = true
	}

	builder := build.New(cfg, build.Options{
		Parallelism: parallelism,
		OnProgress: func(step string) {
			info(step)
		},
	})

	if clean {
		info("Cleaning output directory...")
		builder.Clean()
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := builder.Build(ctx)
	if result != nil && result.Diagnostics.HasErrors() {
		fmt.Println(result.Diagnostics.Format())
	}
	if err != nil {
		return err
	}

	fmt.Println()
	success("Built %d components in %s (%d cached)",
		len(result.Artifacts), result.Duration.Round(time.Millisecond), result.Cached)
	info("Output: %s", result.Output)
	return nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
