package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glyph-dev/glyph/internal/codegen"
	"github.com/glyph-dev/glyph/internal/compiler"
	"github.com/glyph-dev/glyph/internal/config"
	"github.com/glyph-dev/glyph/internal/errors"
)

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Artifacts are the compiled components, sorted by name.
	Artifacts []*codegen.Artifact

	// Compiled counts components compiled this run.
	Compiled int

	// Cached counts components served from the artifact cache.
	Cached int

	// Failed counts components with diagnostics.
	Failed int

	// Diagnostics collects every diagnostic across files.
	Diagnostics errors.List

	// Output is the dist directory the artifacts were written to, empty
	// for check-only builds.
	Output string
}

// Options configures the builder.
type Options struct {
	// CheckOnly compiles without writing the output directory.
	CheckOnly bool

	// Parallelism caps concurrent compilations. Zero takes the config
	// value, then one per CPU.
	Parallelism int

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder compiles every component of a project.
type Builder struct {
	config  *config.Config
	options Options
	cache   *Cache
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if options.Parallelism == 0 {
		options.Parallelism = cfg.Build.Parallelism
	}
	if options.Parallelism <= 0 {
		options.Parallelism = runtime.NumCPU()
	}

	var cache *Cache
	if dir := cfg.CacheDir(); dir != "" {
		cache = NewCache(dir)
	}
	return &Builder{config: cfg, options: options, cache: cache}
}

// Build compiles every .glyph file under the components directory. Files are
// independent, so they compile in parallel; diagnostics from all files are
// collected, not just the first failure.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	files, err := b.discover()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("G500").
			WithDetailf("no %s files under %s", "*"+glyphExt, b.config.ComponentsDir())
	}

	b.progress("compiling " + plural(len(files), "component"))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.options.Parallelism)

	for _, path := range files {
		path := path
		g.Go(func() error {
			art, cached, diags := b.compileOne(gctx, path)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case diags.HasErrors():
				result.Failed++
				for _, d := range diags {
					result.Diagnostics.Add(d)
				}
				compileResults.WithLabelValues("failed").Inc()
			case cached:
				result.Cached++
				result.Artifacts = append(result.Artifacts, art)
				compileResults.WithLabelValues("cached").Inc()
			default:
				result.Compiled++
				result.Artifacts = append(result.Artifacts, art)
				compileResults.WithLabelValues("compiled").Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Artifacts, func(i, j int) bool {
		return result.Artifacts[i].Name < result.Artifacts[j].Name
	})
	result.Duration = time.Since(start)
	buildDuration.Observe(result.Duration.Seconds())
	buildsTotal.Inc()

	if result.Failed > 0 {
		result.Diagnostics.Sort()
		return result, errors.New("G501").
			WithDetailf("%s failed to compile", plural(result.Failed, "component"))
	}

	if !b.options.CheckOnly {
		b.progress("writing " + b.config.OutputDir())
		if err := b.writeOutput(result); err != nil {
			return nil, err
		}
		result.Output = b.config.OutputDir()
	}
	return result, nil
}

const glyphExt = ".glyph"

// discover walks the components directory for .glyph files.
func (b *Builder) discover() ([]string, error) {
	root := b.config.ComponentsDir()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, glyphExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New("G500").
			WithDetailf("scan %s: %v", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// compileOne compiles one file, consulting the artifact cache first.
func (b *Builder) compileOne(ctx context.Context, path string) (*codegen.Artifact, bool, errors.List) {
	content, err := os.ReadFile(path)
	if err != nil {
		var diags errors.List
		diags.Add(errors.New("G500").WithDetailf("read %s: %v", path, err))
		return nil, false, diags
	}

	name := strings.TrimSuffix(filepath.Base(path), glyphExt)
	hash := codegen.SourceHash(string(content))
	if b.cache != nil {
		if art, ok := b.cache.Get(name, hash); ok {
			return art, true, nil
		}
	}

	art, diags := compiler.CompileSource(ctx, path, string(content))
	if diags.HasErrors() {
		return nil, false, diags
	}
	if b.cache != nil {
		b.cache.Put(art)
	}
	return art, false, nil
}

// writeOutput writes per-component artifact files, the combined stylesheet,
// and the manifest into the dist directory.
func (b *Builder) writeOutput(result *Result) error {
	outDir := b.config.OutputDir()
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return errors.New("G502").WithDetailf("create %s: %v", outDir, err)
	}

	manifest := make(map[string]string, len(result.Artifacts))
	var css strings.Builder
	for _, art := range result.Artifacts {
		data, err := json.MarshalIndent(art, "", "  ")
		if err != nil {
			return errors.New("G502").WithDetailf("encode %s: %v", art.Name, err)
		}
		name := art.Name + ".json"
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0644); err != nil {
			return errors.New("G502").WithDetailf("write %s: %v", name, err)
		}
		manifest[art.Name] = name

		if art.CSS != "" {
			if css.Len() > 0 {
				css.WriteByte('\n')
			}
			css.WriteString("/* " + art.Name + " */\n")
			css.WriteString(art.CSS)
		}
	}

	if css.Len() > 0 {
		if err := os.WriteFile(filepath.Join(outDir, "bundle.css"), []byte(css.String()), 0644); err != nil {
			return errors.New("G502").WithDetailf("write bundle.css: %v", err)
		}
		manifest["css"] = "bundle.css"
	}

	return b.writeManifest(outDir, manifest)
}

// writeManifest writes the artifact manifest.
func (b *Builder) writeManifest(outputDir string, manifest map[string]string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	manifestPath := filepath.Join(outputDir, "manifest.json")
	return os.WriteFile(manifestPath, data, 0644)
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputDir())
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
