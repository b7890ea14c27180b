package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬  ┬ ┬┌─┐┬ ┬
  │ ┬│  └┬┘├─┘├─┤
  └─┘┴─┘ ┴ ┴  ┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "glyph",
		Short: "The Glyph component compiler",
		Long: `Glyph compiles declarative single-file components into
portable render artifacts.

A component bundles its template, scoped styles, and typed state
transitions in one .glyph file. The compiler checks the whole file,
including exhaustive match coverage, before anything ships:

  • Typed model and message declarations
  • Exhaustiveness-checked match expressions
  • Option types instead of null
  • Scoped CSS per component
  • Live-reloading dev server`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		createCmd(),
		checkCmd(),
		buildCmd(),
		devCmd(),
		deployCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Glyph ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
