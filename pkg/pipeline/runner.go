package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jdigger/aem-grapher/pkg/descriptor"
	"github.com/jdigger/aem-grapher/pkg/errors"
	"github.com/jdigger/aem-grapher/pkg/io"
	"github.com/jdigger/aem-grapher/pkg/jcr"
	"github.com/jdigger/aem-grapher/pkg/jcrroot"
	"github.com/jdigger/aem-grapher/pkg/observability"
	"github.com/jdigger/aem-grapher/pkg/render/dot"
)

// Runner executes pipeline stages. It holds no per-run state, so one Runner
// can serve concurrent runs with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger uses [log.Default].
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete scan → infer → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{ScanID: uuid.New()}
	logger := r.Logger.With("scan", result.ScanID.String()[:8])

	// Stage 1: Scan
	scanStart := time.Now()
	root, nodes, err := r.scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	scanTime := time.Since(scanStart)
	logger.Info("scanned package", "root", root, "nodes", len(nodes), "duration", scanTime)

	// Stage 2: Infer
	inferStart := time.Now()
	assocs, err := r.Infer(ctx, nodes, opts)
	if err != nil {
		return nil, err
	}
	inferTime := time.Since(inferStart)
	logger.Info("inferred associations", "associations", len(assocs), "duration", inferTime)

	jcr.SortNodes(nodes)
	result.Root = root
	result.Nodes = nodes
	result.Associations = assocs

	// Stage 3: Render
	renderStart := time.Now()
	out, err := r.Render(ctx, result.Document(), opts)
	if err != nil {
		return nil, err
	}
	result.Output = out

	result.Stats = newStats(nodes, assocs)
	result.Stats.ScanTime = scanTime
	result.Stats.InferTime = inferTime
	result.Stats.RenderTime = time.Since(renderStart)
	logger.Info("rendered output", "format", opts.Format, "bytes", len(out), "duration", result.Stats.RenderTime)

	return result, nil
}

// Scan opens the package at opts.Path and extracts its nodes.
func (r *Runner) Scan(ctx context.Context, opts Options) ([]jcr.Node, error) {
	if err := opts.ValidateForScan(); err != nil {
		return nil, err
	}
	_, nodes, err := r.scan(ctx, opts)
	return nodes, err
}

func (r *Runner) scan(ctx context.Context, opts Options) (_ string, _ []jcr.Node, err error) {
	hooks := observability.Pipeline()
	hooks.OnScanStart(ctx, opts.Path)
	start := time.Now()
	var nodes []jcr.Node
	defer func() { hooks.OnScanComplete(ctx, opts.Path, len(nodes), time.Since(start), err) }()

	root, err := jcrroot.Open(opts.Path)
	if err != nil {
		return "", nil, err
	}
	defer root.Close()
	root.Exclude = opts.Exclude

	r.Logger.Debug("resolved jcr_root", "path", opts.Path, "root", root.Path)
	nodes, err = root.Nodes(ctx, descriptor.NewExtractor(r.Logger))
	if err != nil {
		return "", nil, err
	}
	return root.Path, nodes, nil
}

// Infer computes the association set for nodes.
func (r *Runner) Infer(ctx context.Context, nodes []jcr.Node, opts Options) (assocs []jcr.Association, err error) {
	hooks := observability.Pipeline()
	hooks.OnInferStart(ctx, len(nodes))
	start := time.Now()
	defer func() { hooks.OnInferComplete(ctx, len(assocs), time.Since(start), err) }()

	in := &jcr.Inferrer{Logger: r.Logger, Workers: opts.Workers}
	return in.Infer(ctx, nodes)
}

// Render produces the output for doc in opts.Format.
func (r *Runner) Render(ctx context.Context, doc io.Document, opts Options) (out []byte, err error) {
	opts.SetDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Format, len(out), time.Since(start), err) }()

	switch opts.Format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := io.WriteJSON(doc, &buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render json")
		}
		return buf.Bytes(), nil
	default:
		text := dot.ToDOT(doc.Associations, dot.Options{Name: opts.Name, Detailed: opts.Detailed})
		if opts.Validate {
			if err := dot.Validate(text); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "generated DOT is invalid")
			}
			r.Logger.Debug("validated DOT output")
		}
		return []byte(text), nil
	}
}
