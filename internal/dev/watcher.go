package dev

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeComponent ChangeType = iota // a .glyph source changed
	ChangeConfig                      // glyph.json changed
	ChangeOther
)

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch.
	Paths []string

	// Ignore names to skip anywhere in the tree.
	Ignore []string

	// Interval is the polling period.
	Interval time.Duration
}

// DefaultIgnore contains default names to ignore.
var DefaultIgnore = []string{
	".git",
	"dist",
	".glyph-cache",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors files for changes by polling modification times. Polling
// keeps the dev server dependency-free on every platform; the interval is
// short enough that edits feel instant.
type Watcher struct {
	config      WatcherConfig
	onChange    func(Change)
	mu          sync.Mutex
	running     bool
	initialized bool
	stopCh      chan struct{}
	timestamps  map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 150 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching. It blocks until the context is cancelled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	w.scanInitial()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) scanInitial() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if w.shouldIgnore(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.shouldIgnore(p) {
				w.timestamps[p] = info.ModTime()
			}
			return nil
		})
	}
	w.initialized = true
}

func (w *Watcher) checkForChanges() {
	w.mu.Lock()
	callback := w.onChange
	initialized := w.initialized
	w.mu.Unlock()

	if callback == nil {
		return
	}

	var changes []Change
	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if w.shouldIgnore(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if w.shouldIgnore(p) {
				return nil
			}

			w.mu.Lock()
			lastMod, exists := w.timestamps[p]
			modTime := info.ModTime()
			if !exists || modTime.After(lastMod) {
				w.timestamps[p] = modTime
				if exists || initialized {
					changes = append(changes, Change{Path: p, Type: classifyChange(p)})
				}
			}
			w.mu.Unlock()
			return nil
		})
	}

	// Deleted files count as changes too.
	w.mu.Lock()
	for p := range w.timestamps {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			delete(w.timestamps, p)
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	w.mu.Unlock()

	// One callback per change type per poll.
	reported := make(map[ChangeType]bool)
	for _, change := range changes {
		if !reported[change.Type] {
			reported[change.Type] = true
			callback(change)
		}
	}
}

func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	for _, pattern := range w.config.Ignore {
		if name == pattern {
			return true
		}
		if strings.ContainsAny(pattern, "*?[") {
			if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
		}
	}
	return false
}

func classifyChange(path string) ChangeType {
	switch {
	case strings.HasSuffix(path, glyphSourceExt):
		return ChangeComponent
	case filepath.Base(path) == "glyph.json":
		return ChangeConfig
	default:
		return ChangeOther
	}
}

const glyphSourceExt = ".glyph"
