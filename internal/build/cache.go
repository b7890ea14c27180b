package build

import (
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/glyph-dev/glyph/internal/codegen"
)

// Cache stores compiled artifacts keyed by component name and source hash.
// The name is part of the key because it feeds the scope marker: two files
// with identical source are still distinct components with distinct
// artifacts. A hit skips the whole pipeline for an unchanged file;
// compilation is pure, so the cached artifact is exactly what a recompile
// would produce.
type Cache struct {
	dir string
}

// NewCache opens (and creates) the cache directory.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) path(name, hash string) string {
	return filepath.Join(c.dir, name+"-"+hash+".msgpack")
}

// Get loads the artifact for a component name and source hash. Corrupt or
// mismatched entries read as misses.
func (c *Cache) Get(name, hash string) (*codegen.Artifact, bool) {
	data, err := os.ReadFile(c.path(name, hash))
	if err != nil {
		return nil, false
	}
	var art codegen.Artifact
	if err := msgpack.Unmarshal(data, &art); err != nil {
		return nil, false
	}
	if art.Name != name || art.SourceHash != hash || art.Component == nil {
		return nil, false
	}
	return &art, true
}

// Put stores an artifact. Cache writes are best effort; a failed write only
// costs a recompile next run.
func (c *Cache) Put(art *codegen.Artifact) {
	data, err := msgpack.Marshal(art)
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return
	}
	target := c.path(art.Name, art.SourceHash)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return
	}
	_ = os.Rename(tmp, target)
}

// Clear removes every cached artifact.
func (c *Cache) Clear() error {
	return os.RemoveAll(c.dir)
}
