package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/glyph-dev/glyph/internal/build"
	"github.com/glyph-dev/glyph/internal/config"
	"github.com/glyph-dev/glyph/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port     int
		host     string
		noReload bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with live reload.

The dev server watches for component changes, recompiles, and
automatically refreshes connected browsers. Each component gets a
preview page rendered from its compiled artifact.

Features:
  • Live reload on component change
  • Compile error overlay in browser
  • Per-component preview pages

Examples:
  glyph dev
  glyph dev --port=8080
  glyph dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host, noReload, verbose)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from glyph.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from glyph.json)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Disable live reload")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every request")

	return cmd
}

func runDev(port int, host string, noReload, verbose bool) error {
	cfg, err := config.Find(".")
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if noReload {
		off := false
		cfg.Dev.LiveReload = &off
	}

	printBanner()
	fmt.Println("  dev")
	fmt.Println()

	server := dev.NewServer(dev.ServerOptions{
		Config:  cfg,
		Verbose: verbose,
		OnBuildComplete: func(result *build.Result) {
			if !result.Diagnostics.HasErrors() {
				success("Built %d components in %s",
					len(result.Artifacts), result.Duration.Round(time.Millisecond))
			}
		},
	})

	ctx, cancel := signalContext()
	defer cancel()

	return server.Start(ctx)
}
