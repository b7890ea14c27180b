package dev

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glyph-dev/glyph/internal/build"
	"github.com/glyph-dev/glyph/internal/codegen"
	"github.com/glyph-dev/glyph/internal/config"
	"github.com/glyph-dev/glyph/pkg/runtime"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Verbose enables verbose logging.
	Verbose bool

	// OnBuildStart is called when a rebuild starts.
	OnBuildStart func()

	// OnBuildComplete is called when a rebuild completes.
	OnBuildComplete func(result *build.Result)

	// OnReload is called when browsers are reloaded.
	OnReload func(clients int)
}

// Server is the development server. It compiles the project's components,
// serves rendered previews of each one, and pushes reload events to connected
// browsers when sources change.
type Server struct {
	config       *config.Config
	options      ServerOptions
	builder      *build.Builder
	watcher      *Watcher
	reloadServer *ReloadServer
	changeCh     chan Change
	httpServer   *http.Server
	logger       *slog.Logger

	mu         sync.Mutex
	running    bool
	artifacts  map[string]*codegen.Artifact
	lastResult *build.Result
	liveReload bool
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	liveReload := cfg.LiveReload()

	watcher := NewWatcher(WatcherConfig{
		Paths:  append([]string{cfg.ComponentsDir(), cfg.Dir()}, cfg.Dev.Watch...),
		Ignore: DefaultIgnore,
	})

	var reloadServer *ReloadServer
	if liveReload {
		reloadServer = NewReloadServer()
	}

	return &Server{
		config:       cfg,
		options:      options,
		builder:      build.New(cfg, build.Options{}),
		watcher:      watcher,
		reloadServer: reloadServer,
		artifacts:    make(map[string]*codegen.Artifact),
		liveReload:   liveReload,
		logger:       slog.Default().With("component", "dev"),
	}
}

// Start starts the development server. It blocks until the context is
// cancelled or the HTTP server fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	// Initial build
	s.log("Building...")
	s.rebuild(ctx)

	// Set up watcher callback
	s.changeCh = make(chan Change, 64)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
		}
	})

	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	s.httpServer = &http.Server{
		Addr:    s.config.DevAddress(),
		Handler: s.routes(),
	}

	s.log("Server running at %s", s.config.DevURL())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	s.watcher.Stop()
	if s.reloadServer != nil {
		s.reloadServer.Close()
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// routes builds the dev server router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	if s.options.Verbose {
		r.Use(chimiddleware.Logger)
	}

	r.Get("/", s.handleIndex)
	r.Get("/components/{name}", s.handlePreview)
	r.Get("/artifacts/{name}.json", s.handleArtifact)
	r.Get("/assets/bundle.css", s.handleBundleCSS)
	r.Handle("/metrics", promhttp.Handler())
	if s.reloadEnabled() {
		r.Get("/_glyph/reload", s.reloadServer.HandleWebSocket)
	}
	return r
}

// processChanges serializes file change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			changes := []Change{change}
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next)
				default:
					draining = false
				}
			}
			s.handleChanges(ctx, changes)
		}
	}
}

// handleChanges handles a batch of file changes.
func (s *Server) handleChanges(ctx context.Context, changes []Change) {
	hasComponent := false
	hasConfig := false
	for _, change := range changes {
		s.log("Changed: %s", change.Path)
		switch change.Type {
		case ChangeComponent:
			hasComponent = true
		case ChangeConfig:
			hasConfig = true
		}
	}

	if hasConfig {
		s.reloadConfig()
	}
	if !hasComponent && !hasConfig {
		return
	}

	if s.options.OnBuildStart != nil {
		s.options.OnBuildStart()
	}
	s.log("Rebuilding...")
	s.rebuild(ctx)
}

// rebuild compiles the project and publishes the result to connected
// browsers: an error overlay when compilation fails, a reload otherwise.
func (s *Server) rebuild(ctx context.Context) {
	result, err := s.builder.Build(ctx)
	if s.options.OnBuildComplete != nil && result != nil {
		s.options.OnBuildComplete(result)
	}

	if result != nil {
		s.mu.Lock()
		s.lastResult = result
		s.artifacts = make(map[string]*codegen.Artifact, len(result.Artifacts))
		for _, art := range result.Artifacts {
			s.artifacts[art.Name] = art
		}
		s.mu.Unlock()
	}

	if err != nil {
		var detail string
		if result != nil && result.Diagnostics.HasErrors() {
			detail = result.Diagnostics.Error()
		} else {
			detail = err.Error()
		}
		s.logError("Build failed:\n%s", detail)
		s.notifyError(detail)
		return
	}

	s.log("Built %d components in %s", len(result.Artifacts), result.Duration.Round(time.Millisecond))
	s.clearReloadError()
	s.notifyReload()
}

// reloadConfig re-reads glyph.json so port-independent settings (component
// dir, output, cache) take effect without a restart. Address changes still
// need a restart.
func (s *Server) reloadConfig() {
	cfg, err := config.LoadFile(s.config.Path())
	if err != nil {
		s.logError("Config reload failed: %v", err)
		return
	}
	s.mu.Lock()
	s.config = cfg
	s.builder = build.New(cfg, build.Options{})
	s.mu.Unlock()
	s.log("Reloaded %s", config.ConfigFileName)
}

// handleIndex lists every compiled component with a link to its preview.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	names := make([]string, 0, len(s.artifacts))
	for name := range s.artifacts {
		names = append(names, name)
	}
	result := s.lastResult
	s.mu.Unlock()
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, name := range names {
		fmt.Fprintf(&b, `<li><a href="/components/%s">%s</a></li>`+"\n",
			html.EscapeString(name), html.EscapeString(name))
	}
	b.WriteString("</ul>\n")
	if result != nil && result.Diagnostics.HasErrors() {
		fmt.Fprintf(&b, "<pre>%s</pre>\n", html.EscapeString(result.Diagnostics.Error()))
	}

	s.writePage(w, "Glyph", b.String())
}

// handlePreview mounts a fresh instance of the component and serves its
// rendered HTML with the scoped stylesheet inlined.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	art := s.artifact(name)
	if art == nil {
		http.NotFound(w, r)
		return
	}

	// Query parameters become host attributes, so previews can exercise
	// attr() lookups in init.
	attrs := make(map[string]string)
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			attrs[key] = vals[0]
		}
	}

	inst, err := runtime.Mount(art, attrs, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	if inst.CSS() != "" {
		fmt.Fprintf(&b, "<style>\n%s</style>\n", inst.CSS())
	}
	b.WriteString(inst.HTML())
	s.writePage(w, art.Name, b.String())
}

// handleArtifact serves the compiled artifact as JSON.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	art := s.artifact(chi.URLParam(r, "name"))
	if art == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(art)
}

// handleBundleCSS serves the concatenated scoped stylesheets.
func (s *Server) handleBundleCSS(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	result := s.lastResult
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	if result == nil {
		return
	}
	for _, art := range result.Artifacts {
		if art.CSS == "" {
			continue
		}
		fmt.Fprintf(w, "/* %s */\n%s", art.Name, art.CSS)
	}
}

func (s *Server) artifact(name string) *codegen.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifacts[name]
}

// writePage wraps body in the dev page chrome and injects the reload client.
func (s *Server) writePage(w http.ResponseWriter, title, body string) {
	script := ""
	if s.reloadEnabled() {
		script = ReloadClientScript
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<link rel="stylesheet" href="/assets/bundle.css">
</head>
<body>
%s%s
</body>
</html>`, html.EscapeString(title), body, script)
}

func (s *Server) log(format string, args ...any) {
	s.logger.Info(fmt.Sprintf(format, args...))
}

func (s *Server) logError(format string, args ...any) {
	s.logger.Error(fmt.Sprintf(format, args...))
}

func (s *Server) reloadEnabled() bool {
	return s.liveReload && s.reloadServer != nil
}

func (s *Server) notifyReload() {
	if !s.reloadEnabled() {
		return
	}
	s.reloadServer.NotifyReload()
	if s.options.OnReload != nil {
		s.options.OnReload(s.reloadServer.ClientCount())
	}
	s.log("Reloaded %d browsers", s.reloadServer.ClientCount())
}

func (s *Server) notifyError(errMsg string) {
	if !s.reloadEnabled() {
		return
	}
	s.reloadServer.NotifyError(errMsg)
}

func (s *Server) clearReloadError() {
	if !s.reloadEnabled() {
		return
	}
	s.reloadServer.ClearError()
}
