// Package dev provides the development server and live reload functionality.
//
// This package implements:
//   - File watching for component and config changes
//   - In-process recompilation via the build package
//   - Rendered component previews in the browser
//   - WebSocket-based browser refresh
//   - Error overlay in browser
//
// # Architecture
//
// The development server consists of several components:
//
//   - Watcher: Monitors the file system for changes
//   - Server: Rebuilds on change and serves component previews
//   - ReloadServer: Notifies browsers of changes via WebSocket
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{Config: cfg})
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Live Reload Protocol
//
// The browser connects to /_glyph/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "css"}                   // Triggers CSS-only reload
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
//
// Live reload can be disabled via glyph.json (dev.liveReload=false).
package dev
