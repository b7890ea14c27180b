package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/glyph-dev/glyph/internal/config"
)

func createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new Glyph project",
		Long: `Create a new Glyph project with the specified name.

The project gets a glyph.json and a components directory with a
starter counter component.

Examples:
  glyph create my-widgets`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0])
		},
	}

	return cmd
}

var projectNameRe = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

func runCreate(name string) error {
	printBanner()
	fmt.Println("  Creating a new Glyph project...")
	fmt.Println()

	if !projectNameRe.MatchString(name) {
		errorMsg("Invalid project name %q", name)
		info("Use lowercase letters, numbers, and hyphens")
		return fmt.Errorf("invalid project name")
	}

	projectDir, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(projectDir); !os.IsNotExist(err) {
		errorMsg("Directory %q already exists", name)
		return fmt.Errorf("directory exists")
	}

	if err := os.MkdirAll(filepath.Join(projectDir, config.DefaultComponents), 0755); err != nil {
		return err
	}

	cfg := config.New()
	cfg.Name = name
	if err := cfg.SaveTo(filepath.Join(projectDir, config.ConfigFileName)); err != nil {
		return err
	}

	counter := filepath.Join(projectDir, config.DefaultComponents, "counter.glyph")
	if err := os.WriteFile(counter, []byte(starterComponent), 0644); err != nil {
		return err
	}

	success("Created %s", name)
	fmt.Println()
	fmt.Println("  Next steps:")
	info("cd %s", name)
	info("glyph dev")
	fmt.Println()
	return nil
}

const starterComponent = `<template>
  <div class="counter">
    <span class="count">{ count }</span>
    <button on-click="Increment">+</button>
    <button on-click="Decrement">-</button>
  </div>
</template>

<style>
  .counter {
    display: flex;
    gap: 0.5rem;
    align-items: center;
  }
  .count {
    min-width: 2rem;
    text-align: center;
  }
</style>

<script>
type Model = { count: int }

enum Msg = { Increment | Decrement }

fn init(attrs: Attrs): Model {
  Model(count: 0)
}

fn update(msg: Msg, model: Model): Model {
  match msg {
    Increment => Model(count: model.count + 1),
    Decrement => Model(count: model.count - 1),
  }
}
</script>
`
