// Package build compiles every component of a Glyph project.
//
// This package handles:
//   - Discovering .glyph files under the components directory
//   - Compiling components in parallel (files are independent)
//   - Caching artifacts keyed by source hash
//   - Writing the dist directory and manifest
//
// # Usage
//
//	builder := build.New(cfg, build.Options{})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Built %d components in %s\n", len(result.Artifacts), result.Duration)
//
// # Output Structure
//
//	dist/
//	├── counter.json        # Compiled artifact per component
//	├── bundle.css          # Combined scoped stylesheets
//	└── manifest.json       # Component -> artifact file map
package build
