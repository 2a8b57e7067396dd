package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	aemio "github.com/jdigger/aem-grapher/pkg/io"
	"github.com/jdigger/aem-grapher/pkg/pipeline"
)

// renderCommand creates the render command, which turns an exported scan
// document into DOT (or normalized JSON) without rescanning the package.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  pipeline.Options
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "render <scan.json>",
		Short: "Render a JSON scan document as DOT or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			opts := c.options(cmd, flags, args[0])
			opts.Format = format
			return runRender(cmd.Context(), cmd.OutOrStdout(), opts, output)
		},
	}

	addGraphFlags(cmd, &flags)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format (dot or json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to a file instead of stdout")

	return cmd
}

func runRender(ctx context.Context, w io.Writer, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)

	doc, err := aemio.ImportJSON(opts.Path)
	if err != nil {
		return err
	}
	logger.Debug("imported scan", "scan", doc.ScanID, "nodes", len(doc.Nodes), "associations", len(doc.Associations))

	out, err := newRunner(logger).Render(ctx, doc, opts)
	if err != nil {
		return err
	}
	return writeOutput(w, output, out)
}
