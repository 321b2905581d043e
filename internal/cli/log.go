// Package cli implements the tsaview command-line interface.
//
// This package provides commands for rendering graph documents, serving a
// graph store over HTTP, inspecting selections in the terminal and managing
// the artifact cache. The CLI is built using cobra and logs via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Draw graph files as SVG, JSON, PDF, PNG or DOT
//   - serve: Serve a system file or MongoDB store over HTTP and WebSocket
//   - inspect: Browse a graph's nodes and edges and preview selections
//   - random: Generate random graph documents
//   - store: Import graphs into the configured store
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Render,
// cache and server events reach the log through observability hooks
// registered when the configuration is loaded.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tsa-lab/tsaview/pkg/observability"
)

// newLogger creates a logger on w with "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a batch operation.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info with the given key-value pairs and the elapsed
// time under "took".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports render, cache and server events at debug level, and
// failures at warn.
type logHooks struct {
	logger *log.Logger
}

func registerHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("hooks")}
	observability.SetRenderHooks(h)
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)
}

func (h logHooks) OnPreprocess(_ context.Context, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("preprocess failed", "nodes", nodes, "edges", edges, "err", err)
		return
	}
	h.logger.Debug("preprocessed", "nodes", nodes, "edges", edges, "dur", d)
}

func (h logHooks) OnRender(_ context.Context, s observability.RenderStats, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "surface", s.Surface, "err", err)
		return
	}
	h.logger.Debug("rendered", "surface", s.Surface, "enter", s.Entered, "update", s.Updated,
		"exit", s.Exited, "swept", s.Swept, "dur", d)
}

func (h logHooks) OnSelect(_ context.Context, sel string, err error) {
	if err != nil {
		h.logger.Warn("selection failed", "selection", sel, "err", err)
		return
	}
	h.logger.Debug("selected", "selection", sel)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// OnRequest is a no-op: the server middleware already logs requests.
func (h logHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

func (h logHooks) OnSession(_ context.Context, id string, open bool) {
	if open {
		h.logger.Info("session opened", "id", id)
	} else {
		h.logger.Info("session closed", "id", id)
	}
}
