// Package observability provides hooks around the scan pipeline.
//
// Instrumentation is optional: the default hooks do nothing, and main
// registers real ones at startup. Libraries only call the hooks, so they stay
// free of any metrics or tracing backend.
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Stages report their start and completion:
//
//	observability.Pipeline().OnScanStart(ctx, root)
//	// ... walk the package ...
//	observability.Pipeline().OnScanComplete(ctx, root, len(nodes), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// PipelineHooks receives events from the scan pipeline.
type PipelineHooks interface {
	// Scan events
	OnScanStart(ctx context.Context, root string)
	OnScanComplete(ctx context.Context, root string, nodeCount int, duration time.Duration, err error)

	// Inference events
	OnInferStart(ctx context.Context, nodeCount int)
	OnInferComplete(ctx context.Context, associationCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnScanStart(context.Context, string)                                 {}
func (NoopPipelineHooks) OnScanComplete(context.Context, string, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnInferStart(context.Context, int)                                   {}
func (NoopPipelineHooks) OnInferComplete(context.Context, int, time.Duration, error)          {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// LogHooks reports pipeline events as debug log lines, and failures at
// error level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnScanStart(_ context.Context, root string) {
	h.Logger.Debug("scan started", "root", root)
}

func (h *LogHooks) OnScanComplete(_ context.Context, root string, nodeCount int, d time.Duration, err error) {
	h.done("scan", err, "root", root, "nodes", nodeCount, "duration", d)
}

func (h *LogHooks) OnInferStart(_ context.Context, nodeCount int) {
	h.Logger.Debug("inference started", "nodes", nodeCount)
}

func (h *LogHooks) OnInferComplete(_ context.Context, associationCount int, d time.Duration, err error) {
	h.done("inference", err, "associations", associationCount, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.Logger.Debug("render started", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.done("render", err, "format", format, "bytes", size, "duration", d)
}

func (h *LogHooks) done(stage string, err error, kv ...any) {
	if err != nil {
		h.Logger.Error(stage+" failed", append(kv, "err", err)...)
		return
	}
	h.Logger.Debug(stage+" complete", kv...)
}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
}
