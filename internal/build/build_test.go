package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glyph-dev/glyph/internal/config"
)

const counterSource = `<template>
  <div>
    <span>{ count }</span>
    <button on-click="Increment">+</button>
  </div>
</template>
<style>
  div { padding: 1rem; }
</style>
<script>
type Model = { count: int }
enum Msg = { Increment }
fn init(attrs: Attrs): Model { Model(count: 0) }
fn update(msg: Msg, model: Model): Model {
  match msg { Increment => Model(count: model.count + 1) }
}
</script>`

const bannerSource = `<template>
  <h1>welcome</h1>
</template>
<style>
  h1 { margin: 0; }
</style>`

// project lays out a project directory with the given components.
func project(t *testing.T, components map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	compDir := filepath.Join(dir, "components")
	if err := os.MkdirAll(compDir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, src := range components {
		if err := os.WriteFile(filepath.Join(compDir, name+".glyph"), []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestBuildProject(t *testing.T) {
	cfg := project(t, map[string]string{
		"counter": counterSource,
		"banner":  bannerSource,
	})

	var steps []string
	builder := New(cfg, Options{OnProgress: func(s string) { steps = append(steps, s) }})
	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if result.Compiled != 2 || result.Cached != 0 || result.Failed != 0 {
		t.Errorf("compiled=%d cached=%d failed=%d", result.Compiled, result.Cached, result.Failed)
	}
	if len(result.Artifacts) != 2 || result.Artifacts[0].Name != "banner" {
		t.Errorf("artifacts not sorted by name: %v", result.Artifacts)
	}
	if len(steps) == 0 {
		t.Error("no progress reported")
	}

	// dist holds one artifact per component, the bundle, and the manifest.
	for _, name := range []string{"counter.json", "banner.json", "bundle.css", "manifest.json"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir(), name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir(), "manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	var manifest map[string]string
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatal(err)
	}
	if manifest["counter"] != "counter.json" {
		t.Errorf("manifest = %v", manifest)
	}

	bundle, err := os.ReadFile(filepath.Join(cfg.OutputDir(), "bundle.css"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bundle), "[data-g-") {
		t.Error("bundled css is not scoped")
	}
}

func TestBuildUsesCacheOnRebuild(t *testing.T) {
	cfg := project(t, map[string]string{"counter": counterSource})
	builder := New(cfg, Options{})

	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("first build: %v", err)
	}
	result, err := New(cfg, Options{}).Build(context.Background())
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if result.Cached != 1 || result.Compiled != 0 {
		t.Errorf("rebuild compiled=%d cached=%d, want all cached", result.Compiled, result.Cached)
	}
}

func TestBuildNoCache(t *testing.T) {
	cfg := project(t, map[string]string{"counter": counterSource})
	cfg.Build.NoCache = true

	builder := New(cfg, Options{})
	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	result, err := New(cfg, Options{}).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Cached != 0 {
		t.Errorf("cache hit despite noCache: %+v", result)
	}
}

func TestBuildCollectsDiagnosticsAcrossFiles(t *testing.T) {
	bad1 := `<script>
type Model = { count: Whoops }
fn init(attrs: Attrs): Model { Model(count: 0) }
</script>`
	bad2 := `<script>
type Model = { count: int }
type Model = { count: int }
fn init(attrs: Attrs): Model { Model(count: 0) }
</script>`
	cfg := project(t, map[string]string{
		"one":  bad1,
		"two":  bad2,
		"fine": counterSource,
	})

	result, err := New(cfg, Options{CheckOnly: true}).Build(context.Background())
	if err == nil {
		t.Fatal("build of broken project succeeded")
	}
	if result.Failed != 2 || result.Compiled != 1 {
		t.Errorf("failed=%d compiled=%d", result.Failed, result.Compiled)
	}
	codes := map[string]bool{}
	for _, d := range result.Diagnostics {
		codes[d.Code] = true
	}
	if !codes["G200"] || !codes["G201"] {
		t.Errorf("diagnostic codes = %v, want both files reported", codes)
	}
}

func TestCheckOnlySkipsOutput(t *testing.T) {
	cfg := project(t, map[string]string{"counter": counterSource})
	result, err := New(cfg, Options{CheckOnly: true}).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Output != "" {
		t.Errorf("check-only build wrote output to %q", result.Output)
	}
	if _, err := os.Stat(cfg.OutputDir()); !os.IsNotExist(err) {
		t.Error("dist directory created by check-only build")
	}
}

func TestBuildEmptyProject(t *testing.T) {
	cfg := project(t, nil)
	if _, err := New(cfg, Options{}).Build(context.Background()); err == nil {
		t.Error("empty project should fail")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cfg := project(t, map[string]string{"counter": counterSource})
	result, err := New(cfg, Options{CheckOnly: true}).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	art := result.Artifacts[0]

	cache := NewCache(filepath.Join(t.TempDir(), "cache"))
	cache.Put(art)

	got, ok := cache.Get(art.Name, art.SourceHash)
	if !ok {
		t.Fatal("cache miss after put")
	}
	if got.Name != art.Name || got.Scope != art.Scope || got.CSS != art.CSS {
		t.Errorf("cache round trip changed artifact: %+v", got)
	}
	if got.Component.Msg == nil || len(got.Component.Msg.Variants) != 1 {
		t.Error("cached component lost its msg schema")
	}

	if _, ok := cache.Get(art.Name, "0000000000000000"); ok {
		t.Error("hit for unknown hash")
	}
	if _, ok := cache.Get("other", art.SourceHash); ok {
		t.Error("hit for a different component with the same source")
	}
}

func TestIdenticalSourcesKeepDistinctArtifacts(t *testing.T) {
	// Two components with byte-identical source, e.g. two copies of the
	// scaffolded starter. Each file is its own component with its own
	// scope marker; the cache must never collapse them.
	cfg := project(t, map[string]string{
		"alpha": counterSource,
		"beta":  counterSource,
	})

	builder := New(cfg, Options{Parallelism: 1})
	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(result.Artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(result.Artifacts))
	}
	if result.Artifacts[0].Name != "alpha" || result.Artifacts[1].Name != "beta" {
		t.Errorf("artifact names = %q, %q", result.Artifacts[0].Name, result.Artifacts[1].Name)
	}
	if result.Artifacts[0].Scope == result.Artifacts[1].Scope {
		t.Errorf("both artifacts share scope %q", result.Artifacts[0].Scope)
	}

	// And a rebuild serves each from its own cache entry.
	rebuilt, err := New(cfg, Options{Parallelism: 1}).Build(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rebuilt.Cached != 2 || len(rebuilt.Artifacts) != 2 {
		t.Errorf("rebuild cached=%d artifacts=%d, want 2 and 2", rebuilt.Cached, len(rebuilt.Artifacts))
	}
	if rebuilt.Artifacts[0].Name != "alpha" || rebuilt.Artifacts[1].Name != "beta" {
		t.Errorf("rebuild artifact names = %q, %q", rebuilt.Artifacts[0].Name, rebuilt.Artifacts[1].Name)
	}
}
