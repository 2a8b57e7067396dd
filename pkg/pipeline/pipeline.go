// Package pipeline runs the scan → infer → render pipeline.
//
// The CLI commands share this package so that every entry point resolves
// packages, infers associations, and renders output the same way.
//
// # Stages
//
//  1. Scan: open the package (zip or directory) and extract descriptor nodes
//  2. Infer: compute the association set over all node pairs
//  3. Render: produce DOT text or a JSON scan document
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Path: "mypackage.zip"})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Output)
//
// Stages can also run on their own:
//
//	nodes, err := runner.Scan(ctx, opts)
//	assocs, err := runner.Infer(ctx, nodes, opts)
//	out, err := runner.Render(ctx, doc, opts)
package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jdigger/aem-grapher/pkg/errors"
	"github.com/jdigger/aem-grapher/pkg/io"
	"github.com/jdigger/aem-grapher/pkg/jcr"
	"github.com/jdigger/aem-grapher/pkg/jcrroot"
	"github.com/jdigger/aem-grapher/pkg/render/dot"
)

const (
	// DefaultName is the default DOT graph name.
	DefaultName = dot.DefaultName

	// DefaultWorkers runs inference sequentially.
	DefaultWorkers = 1

	// MaxWorkers bounds the inference worker pool.
	MaxWorkers = 64
)

// Format constants for pipeline output.
const (
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatJSON: true,
}

// Options configures one pipeline run.
type Options struct {
	// Path is a package .zip or a directory at or inside a package tree.
	Path string `json:"path" toml:"-"`
	// Name is the DOT graph name.
	Name string `json:"name,omitempty" toml:"name"`
	// Format selects the rendered output.
	Format string `json:"format,omitempty" toml:"-"`
	// Detailed adds node declarations and edge labels to DOT output.
	Detailed bool `json:"detailed,omitempty" toml:"detailed"`
	// Validate checks DOT output with the Graphviz parser.
	Validate bool `json:"validate,omitempty" toml:"validate"`
	// Workers is the number of inference workers.
	Workers int `json:"workers,omitempty" toml:"workers"`
	// Exclude holds doublestar patterns relative to jcr_root.
	Exclude []string `json:"exclude,omitempty" toml:"exclude"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ScanID identifies this run in exported documents and logs.
	ScanID uuid.UUID
	// Root is the resolved jcr_root, or the archive path.
	Root string
	// Nodes are the extracted descriptors in canonical order.
	Nodes []jcr.Node
	// Associations are the inferred associations in canonical order.
	Associations []jcr.Association
	// Output is the rendered artifact in the requested format.
	Output []byte
	// Stats contains timing and size information.
	Stats Stats
}

// Document returns the result as a JSON scan document.
func (r *Result) Document() io.Document {
	return io.Document{
		ScanID:       r.ScanID,
		Root:         r.Root,
		Nodes:        r.Nodes,
		Associations: r.Associations,
	}
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ScanTime   time.Duration
	InferTime  time.Duration
	RenderTime time.Duration

	NodeCount        int
	ComponentCount   int
	ClientlibCount   int
	AssociationCount int
	// ByType counts associations per type.
	ByType map[jcr.AssociationType]int
}

func newStats(nodes []jcr.Node, assocs []jcr.Association) Stats {
	kinds := lo.CountValuesBy(nodes, func(n jcr.Node) jcr.Kind { return n.Kind() })
	return Stats{
		NodeCount:        len(nodes),
		ComponentCount:   kinds[jcr.KindComponent],
		ClientlibCount:   kinds[jcr.KindClientlib],
		AssociationCount: len(assocs),
		ByType:           lo.CountValuesBy(assocs, func(a jcr.Association) jcr.AssociationType { return a.Type }),
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format %q (must be dot or json)", format)
	}
	return nil
}

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Format == "" {
		o.Format = FormatDOT
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
}

// ValidateAndSetDefaults fills unset options and validates the result.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if err := o.ValidateForScan(); err != nil {
		return err
	}
	if o.Workers < 1 || o.Workers > MaxWorkers {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be between 1 and %d, got %d", MaxWorkers, o.Workers)
	}
	return ValidateFormat(o.Format)
}

// ValidateForScan checks the options the scan stage needs.
func (o *Options) ValidateForScan() error {
	if o.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a package path is required")
	}
	return jcrroot.ValidateExclude(o.Exclude)
}
